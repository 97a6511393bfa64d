package calendar

import (
	"time"

	"github.com/pkg/errors"

	"github.com/bunkmate-io/bunkmate/core"
)

var (
	// errors
	ErrNotFound   = errors.New("calendar day not found")
	ErrDateExists = errors.New("this date is already marked")
)

type (
	Repository interface {
		CheckDateUniqueness(userID string, date time.Time, excludedDays ...Day) error
		CreateDay(day Day) (Day, error)
		// FilterDays applies AND operation on available QueryFilter fields.
		FilterDays(userID string, filter QueryFilter) ([]Day, error)
		GetDayByID(userID, id string) (Day, error)
		UpdateDay(day Day) (Day, error)
		DeleteDaysByID(userID string, ids ...string) error
	}

	Service interface {
		Mark(userID string, nd NewDay) (Day, error)
		Filter(userID string, filter QueryFilter) ([]Day, error)
		GetByID(userID, id string) (Day, error)
		Update(orig Day, ud UpdateDay) (Day, error)
		Delete(userID string, ids ...string) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Mark(userID string, nd NewDay) (Day, error) {
	if err := svc.repo.CheckDateUniqueness(userID, nd.Date); err != nil {
		if err == ErrDateExists {
			return Day{}, core.NewValidationError(err, core.FieldError{Field: "date", Error: err.Error()})
		}
		return Day{}, err
	}

	now := time.Now().UTC()
	day := Day{
		UserID:    userID,
		Date:      nd.Date,
		Kind:      nd.Kind,
		Label:     nd.Label,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateDay(day)
}

func (svc *service) Filter(userID string, filter QueryFilter) ([]Day, error) {
	return svc.repo.FilterDays(userID, filter)
}

func (svc *service) GetByID(userID, id string) (Day, error) {
	return svc.repo.GetDayByID(userID, id)
}

func (svc *service) Update(orig Day, ud UpdateDay) (Day, error) {
	day := orig
	day.Kind = ud.Kind
	day.Label = ud.Label
	day.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateDay(day)
}

func (svc *service) Delete(userID string, ids ...string) error {
	return svc.repo.DeleteDaysByID(userID, ids...)
}
