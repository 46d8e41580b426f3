// Package inmemdb provides map-backed repositories for tests and local development.
package inmemdb

import (
	"sync"

	"github.com/mwongozo/backend/core/objective"
	"github.com/mwongozo/backend/core/planning"
	"github.com/mwongozo/backend/core/task"
	"github.com/mwongozo/backend/core/user"
)

type (
	DB struct {
		user      *userTable
		objective *objectiveTable
		task      *taskTable
		event     *eventTable
	}

	userTable struct {
		mutex sync.RWMutex
		table map[string]*user.User
	}
	objectiveTable struct {
		mutex sync.RWMutex
		table map[string]*objective.Objective
	}
	taskTable struct {
		mutex sync.RWMutex
		table map[string]*task.Task
	}
	eventTable struct {
		mutex sync.RWMutex
		table map[string]*planning.Event
	}
)

func NewDB() *DB {
	return &DB{
		user:      &userTable{table: make(map[string]*user.User)},
		objective: &objectiveTable{table: make(map[string]*objective.Objective)},
		task:      &taskTable{table: make(map[string]*task.Task)},
		event:     &eventTable{table: make(map[string]*planning.Event)},
	}
}
