package attendance

import (
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/bunkmate-io/bunkmate/core"
)

// Session statuses
const (
	StatusPresent   = "present"
	StatusAbsent    = "absent"
	StatusCancelled = "cancelled"
)

var Statuses = []string{StatusPresent, StatusAbsent, StatusCancelled}

// Session is one logged occurrence of a subject on a given date.
// Slot disambiguates multiple same-day sessions (labs, tutorials).
type Session struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	SubjectID string    `json:"subject_id" db:"subject_id"`
	Date      time.Time `json:"date" db:"date"`
	Slot      int       `json:"slot" db:"slot"`
	Status    string    `json:"status" db:"status"`
	Note      string    `json:"note" db:"note"`
	CreatedAt time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"` // UTC
}

// Tally aggregates a subject's logged sessions by outcome.
// Cancelled is carried for display only and never enters ratio math.
type Tally struct {
	Present   int `json:"present" db:"present"`
	Absent    int `json:"absent" db:"absent"`
	Cancelled int `json:"cancelled" db:"cancelled"`
}

// NewSession contains information needed to log a new Session.
type NewSession struct {
	SubjectID string    `json:"subject_id" validate:"required,uuid4"`
	Date      time.Time `json:"date" validate:"required"`
	Slot      int       `json:"slot" validate:"omitempty,min=1,max=12"`
	Status    string    `json:"status" validate:"required,sessionstatus"`
	Note      string    `json:"note" validate:"omitempty,max=500"`
}

func (ns *NewSession) Validate(validate *validator.Validate) error {
	ns.Status = core.CleanString(ns.Status, true /* lower */)
	ns.Note = core.CleanString(ns.Note)
	if ns.Slot == 0 {
		ns.Slot = 1
	}
	return validate.Struct(ns)
}

// UpdateSession defines what information may be provided to modify a logged Session.
type UpdateSession struct {
	Status string `json:"status" validate:"omitempty,sessionstatus"`
	Note   string `json:"note" validate:"omitempty,max=500"`
}

func (us *UpdateSession) Validate(orig Session, validate *validator.Validate) error {
	status := core.CleanString(us.Status, true /* lower */)
	if status != "" {
		us.Status = status
	} else {
		us.Status = orig.Status
	}
	us.Note = core.CleanString(us.Note)
	return validate.Struct(us)
}

// QueryFilter applies AND operation on available fields.
type QueryFilter struct {
	SubjectID string    `query:"subject_id"`
	Status    string    `query:"status"`
	DateFrom  time.Time `query:"date_from"`
	DateTo    time.Time `query:"date_to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.SubjectID == "" && qf.Status == "" && qf.DateFrom.IsZero() && qf.DateTo.IsZero()
}

func (qf *QueryFilter) Clean() {
	qf.SubjectID = core.CleanString(qf.SubjectID)
	qf.Status = core.CleanString(qf.Status, true /* lower */)
}

var sessionStatusTag = "sessionstatus"

// InitValidators registers this package's custom validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(sessionStatusTag, validateSessionStatus)
	core.RegisterCustomTranslation(
		validate, translator, sessionStatusTag,
		"must be one of: present, absent, cancelled",
	)
}

func validateSessionStatus(fl validator.FieldLevel) bool {
	status, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	for _, s := range Statuses {
		if status == s {
			return true
		}
	}
	return false
}
