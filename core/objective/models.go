package objective

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/mwongozo/backend/core"
)

type Objective struct {
	ID          string    `json:"id"`
	StudentID   string    `json:"student_id"`
	CoachID     string    `json:"coach_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Deadline    null.Time `json:"deadline,omitempty"`
	CreatedAt   time.Time `json:"created_at"` // UTC; immutable
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

// NewObjective contains information needed to create a new Objective.
type NewObjective struct {
	StudentID   string    `json:"student_id" validate:"required"`
	CoachID     string    `json:"coach_id" validate:"required"`
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description"`
	Deadline    null.Time `json:"deadline"`
}

func (no *NewObjective) Validate(validate *validator.Validate) error {
	no.Title = core.CleanString(no.Title)
	no.Description = core.CleanString(no.Description)
	return validate.Struct(no)
}

// UpdateObjective defines what information may be provided to modify an existing Objective.
type UpdateObjective struct {
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Deadline    *null.Time `json:"deadline"`
}

func (uo *UpdateObjective) Validate(origObj Objective, validate *validator.Validate) error {
	title := core.CleanString(uo.Title)
	if title != "" {
		uo.Title = title
	} else {
		uo.Title = origObj.Title
	}
	return validate.Struct(uo)
}

// Apply merges the update into obj, returning the updated copy.
func (uo UpdateObjective) Apply(obj Objective) Objective {
	obj.Title = uo.Title
	if uo.Description != nil {
		obj.Description = *uo.Description
	}
	if uo.Deadline != nil {
		obj.Deadline = *uo.Deadline
	}
	obj.UpdatedAt = time.Now().UTC()
	return obj
}

type QueryFilter struct {
	Search    string `query:"search"`
	StudentID string `query:"student_id"`
	CoachID   string `query:"coach_id"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.StudentID == "" && qf.CoachID == ""
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
