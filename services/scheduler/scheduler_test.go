package schedsvc

import (
	"context"
	"testing"
	"time"

	"github.com/mwongozo/backend/core"
	"github.com/mwongozo/backend/core/planning"
	"github.com/mwongozo/backend/core/task"
	"github.com/mwongozo/backend/core/user"
	emailsvc "github.com/mwongozo/backend/services/email"
	inmemdb "github.com/mwongozo/backend/storage/database/inmem"
)

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func TestSendAgendaReminders(t *testing.T) {
	ctx := context.Background()
	conf := &core.Config{AppName: "Mwongozo", DefaultFromEmailAddr: "noreply@localhost"}

	db := inmemdb.NewDB()
	usrRepo := inmemdb.NewUserRepository(db)
	planRepo := inmemdb.NewPlanningRepository(db)

	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	usrSvc := user.NewService(usrRepo, mailSvc, conf)
	planSvc := planning.NewService(planRepo, inmemdb.NewTaskRepository(db), inmemdb.NewObjectiveRepository(db), nopLogger{}, nil)

	active := true
	now := time.Now().UTC()
	student, err := usrRepo.CreateUser(ctx, user.User{
		Name: "Hero", Username: "hero01", Email: "hero@test.cd",
		IsActive: &active, Roles: []string{user.RoleStudent}, CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateUser() failed, %v", err)
	}
	// a student with no events today; must not get a reminder
	if _, err := usrRepo.CreateUser(ctx, user.User{
		Name: "Idle", Username: "idle01", Email: "idle@test.cd",
		IsActive: &active, Roles: []string{user.RoleStudent}, CreatedAt: now, UpdatedAt: now,
	}); err != nil {
		t.Fatalf("CreateUser() failed, %v", err)
	}

	// one event today for student, none for idle
	local := time.Now()
	start := time.Date(local.Year(), local.Month(), local.Day(), 10, 0, 0, 0, local.Location())
	if _, err := planRepo.CreateEvents(ctx, []planning.Event{{
		Title:   "Algebra drills",
		StartAt: start,
		EndAt:   start.Add(time.Hour),
		Type:    planning.EventTypeTaskGenerated,
		Status:  planning.EventStatusToDo,
		OwnerID: student.ID,
		Provenance: planning.Provenance{
			TaskID: "t1", ObjectiveID: "o1", Frequency: task.FreqDaily,
		},
		CreatedAt: now, UpdatedAt: now,
	}}); err != nil {
		t.Fatalf("CreateEvents() failed, %v", err)
	}

	sched := NewScheduler(usrSvc, planSvc, mailSvc, conf, nopLogger{})

	before := len(emailsvc.SentMessages)
	sched.sendAgendaReminders()

	sent := emailsvc.SentMessages[before:]
	if len(sent) != 1 {
		t.Fatalf("expected 1 reminder, got %d", len(sent))
	}
	msg := sent[0]
	if len(msg.To) != 1 || msg.To[0].Address != student.Email {
		t.Errorf("reminder sent to %v, want %s", msg.To, student.Email)
	}
	if msg.Subject == "" {
		t.Error("expected a subject")
	}
}
