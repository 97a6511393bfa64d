package subject

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/bunkmate-io/bunkmate/core"
)

// Subject is a course a user tracks attendance for.
type Subject struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Name      string    `json:"name" db:"name"`
	Code      string    `json:"code" db:"code"`
	Goal      float64   `json:"goal" db:"goal"` // minimum required attendance percentage, (0, 100]
	CreatedAt time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"` // UTC
}

// NewSubject contains information needed to register a new Subject.
type NewSubject struct {
	Name string  `json:"name" validate:"required,max=120"`
	Code string  `json:"code" validate:"omitempty,max=20,alphanum_"`
	Goal float64 `json:"goal" validate:"omitempty,gt=0,lte=100"`
}

func (ns *NewSubject) Validate(validate *validator.Validate, svc Service, userID string) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Code = core.CleanString(ns.Code, true /* lower */)
	if ns.Goal == 0 {
		ns.Goal = core.DefaultAttendanceGoal
	}
	if err := validate.Struct(ns); err != nil {
		return err
	}
	return svc.CheckNameUniqueness(userID, ns.Name)
}

// UpdateSubject defines what information may be provided to modify an existing Subject.
type UpdateSubject struct {
	Name string  `json:"name" validate:"omitempty,max=120"`
	Code string  `json:"code" validate:"omitempty,max=20,alphanum_"`
	Goal float64 `json:"goal" validate:"omitempty,gt=0,lte=100"`
}

func (us *UpdateSubject) Validate(orig Subject, validate *validator.Validate, svc Service) error {
	name := core.CleanString(us.Name)
	if name != "" {
		us.Name = name
	} else {
		us.Name = orig.Name
	}

	code := core.CleanString(us.Code, true /* lower */)
	if code != "" {
		us.Code = code
	} else {
		us.Code = orig.Code
	}

	if us.Goal == 0 {
		us.Goal = orig.Goal
	}

	if err := validate.Struct(us); err != nil {
		return err
	}
	return svc.CheckNameUniqueness(orig.UserID, us.Name, orig)
}
