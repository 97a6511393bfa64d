package timetable

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/bunkmate-io/bunkmate/core"
)

// Entry is one recurring weekly class slot.
// Display only: the attendance math never reads the timetable.
type Entry struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	SubjectID string    `json:"subject_id" db:"subject_id"`
	Weekday   int       `json:"weekday" db:"weekday"` // 0 = Sunday .. 6 = Saturday
	Slot      int       `json:"slot" db:"slot"`
	StartTime string    `json:"start_time" db:"start_time"` // "HH:MM"
	EndTime   string    `json:"end_time" db:"end_time"`     // "HH:MM"
	CreatedAt time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"` // UTC
}

// NewEntry contains information needed to add a timetable Entry.
type NewEntry struct {
	SubjectID string `json:"subject_id" validate:"required,uuid4"`
	Weekday   *int   `json:"weekday" validate:"required,min=0,max=6"`
	Slot      int    `json:"slot" validate:"omitempty,min=1,max=12"`
	StartTime string `json:"start_time" validate:"required,hhmm"`
	EndTime   string `json:"end_time" validate:"required,hhmm"`
}

func (ne *NewEntry) Validate(validate *validator.Validate) error {
	ne.StartTime = core.CleanString(ne.StartTime)
	ne.EndTime = core.CleanString(ne.EndTime)
	if ne.Slot == 0 {
		ne.Slot = 1
	}
	if err := validate.Struct(ne); err != nil {
		return err
	}
	// "HH:MM" zero-padded strings order lexicographically
	if ne.EndTime <= ne.StartTime {
		return core.NewValidationError(nil, core.FieldError{Field: "end_time", Error: "must be after start_time"})
	}
	return nil
}

// UpdateEntry defines what information may be provided to modify an Entry.
type UpdateEntry struct {
	Weekday   *int   `json:"weekday" validate:"omitempty,min=0,max=6"`
	Slot      int    `json:"slot" validate:"omitempty,min=1,max=12"`
	StartTime string `json:"start_time" validate:"omitempty,hhmm"`
	EndTime   string `json:"end_time" validate:"omitempty,hhmm"`
}

func (ue *UpdateEntry) Validate(orig Entry, validate *validator.Validate) error {
	if ue.Weekday == nil {
		ue.Weekday = &orig.Weekday
	}
	if ue.Slot == 0 {
		ue.Slot = orig.Slot
	}

	start := core.CleanString(ue.StartTime)
	if start != "" {
		ue.StartTime = start
	} else {
		ue.StartTime = orig.StartTime
	}
	end := core.CleanString(ue.EndTime)
	if end != "" {
		ue.EndTime = end
	} else {
		ue.EndTime = orig.EndTime
	}

	if err := validate.Struct(ue); err != nil {
		return err
	}
	if ue.EndTime <= ue.StartTime {
		return core.NewValidationError(nil, core.FieldError{Field: "end_time", Error: "must be after start_time"})
	}
	return nil
}
