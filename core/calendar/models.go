package calendar

import (
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/bunkmate-io/bunkmate/core"
)

// Day kinds
const (
	KindHoliday   = "holiday"
	KindEvent     = "event"
	KindPlacement = "placement" // placement-training day
)

var Kinds = []string{KindHoliday, KindEvent, KindPlacement}

// Day marks a non-instructional date on a user's calendar.
// Neutral to the attendance math, like cancelled sessions.
type Day struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Date      time.Time `json:"date" db:"date"`
	Kind      string    `json:"kind" db:"kind"`
	Label     string    `json:"label" db:"label"`
	CreatedAt time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"` // UTC
}

// NewDay contains information needed to mark a Day.
type NewDay struct {
	Date  time.Time `json:"date" validate:"required"`
	Kind  string    `json:"kind" validate:"required,daykind"`
	Label string    `json:"label" validate:"omitempty,max=120"`
}

func (nd *NewDay) Validate(validate *validator.Validate) error {
	nd.Kind = core.CleanString(nd.Kind, true /* lower */)
	nd.Label = core.CleanString(nd.Label)
	return validate.Struct(nd)
}

// UpdateDay defines what information may be provided to modify a Day.
type UpdateDay struct {
	Kind  string `json:"kind" validate:"omitempty,daykind"`
	Label string `json:"label" validate:"omitempty,max=120"`
}

func (ud *UpdateDay) Validate(orig Day, validate *validator.Validate) error {
	kind := core.CleanString(ud.Kind, true /* lower */)
	if kind != "" {
		ud.Kind = kind
	} else {
		ud.Kind = orig.Kind
	}
	ud.Label = core.CleanString(ud.Label)
	return validate.Struct(ud)
}

// QueryFilter applies AND operation on available fields.
type QueryFilter struct {
	Kind     string    `query:"kind"`
	DateFrom time.Time `query:"date_from"`
	DateTo   time.Time `query:"date_to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Kind == "" && qf.DateFrom.IsZero() && qf.DateTo.IsZero()
}

func (qf *QueryFilter) Clean() {
	qf.Kind = core.CleanString(qf.Kind, true /* lower */)
}

var dayKindTag = "daykind"

// InitValidators registers this package's custom validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(dayKindTag, validateDayKind)
	core.RegisterCustomTranslation(
		validate, translator, dayKindTag,
		"must be one of: holiday, event, placement",
	)
}

func validateDayKind(fl validator.FieldLevel) bool {
	kind, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	for _, k := range Kinds {
		if kind == k {
			return true
		}
	}
	return false
}
