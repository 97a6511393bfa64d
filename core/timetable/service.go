package timetable

import (
	"time"

	"github.com/pkg/errors"

	"github.com/bunkmate-io/bunkmate/core"
	"github.com/bunkmate-io/bunkmate/core/subject"
)

var (
	// errors
	ErrNotFound   = errors.New("timetable entry not found")
	ErrSlotExists = errors.New("an entry for this weekday and slot already exists")
)

type (
	Repository interface {
		CheckSlotUniqueness(userID string, weekday, slot int, excludedEntries ...Entry) error
		CreateEntry(entry Entry) (Entry, error)
		// QueryEntries returns all entries; pass a weekday (0-6) to narrow down.
		QueryEntries(userID string, weekday *int) ([]Entry, error)
		GetEntryByID(userID, id string) (Entry, error)
		UpdateEntry(entry Entry) (Entry, error)
		DeleteEntriesByID(userID string, ids ...string) error
	}

	Service interface {
		Create(userID string, ne NewEntry) (Entry, error)
		Query(userID string, weekday *int) ([]Entry, error)
		GetByID(userID, id string) (Entry, error)
		Update(orig Entry, ue UpdateEntry) (Entry, error)
		Delete(userID string, ids ...string) error
	}

	service struct {
		repo     Repository
		subjRepo subject.Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, subjRepo subject.Repository) Service {
	return &service{repo: repo, subjRepo: subjRepo}
}

func (svc *service) checkSlotUniqueness(userID string, weekday, slot int, excl ...Entry) error {
	if err := svc.repo.CheckSlotUniqueness(userID, weekday, slot, excl...); err != nil {
		if err == ErrSlotExists {
			return core.NewValidationError(err, core.FieldError{Field: "slot", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *service) Create(userID string, ne NewEntry) (Entry, error) {
	if _, err := svc.subjRepo.GetSubjectByID(userID, ne.SubjectID); err != nil {
		if err == subject.ErrNotFound {
			return Entry{}, core.NewValidationError(err, core.FieldError{Field: "subject_id", Error: err.Error()})
		}
		return Entry{}, errors.Wrap(err, "finding subject")
	}
	if err := svc.checkSlotUniqueness(userID, *ne.Weekday, ne.Slot); err != nil {
		return Entry{}, err
	}

	now := time.Now().UTC()
	entry := Entry{
		UserID:    userID,
		SubjectID: ne.SubjectID,
		Weekday:   *ne.Weekday,
		Slot:      ne.Slot,
		StartTime: ne.StartTime,
		EndTime:   ne.EndTime,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateEntry(entry)
}

func (svc *service) Query(userID string, weekday *int) ([]Entry, error) {
	return svc.repo.QueryEntries(userID, weekday)
}

func (svc *service) GetByID(userID, id string) (Entry, error) {
	return svc.repo.GetEntryByID(userID, id)
}

func (svc *service) Update(orig Entry, ue UpdateEntry) (Entry, error) {
	if *ue.Weekday != orig.Weekday || ue.Slot != orig.Slot {
		if err := svc.checkSlotUniqueness(orig.UserID, *ue.Weekday, ue.Slot, orig); err != nil {
			return Entry{}, err
		}
	}

	entry := orig
	entry.Weekday = *ue.Weekday
	entry.Slot = ue.Slot
	entry.StartTime = ue.StartTime
	entry.EndTime = ue.EndTime
	entry.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateEntry(entry)
}

func (svc *service) Delete(userID string, ids ...string) error {
	return svc.repo.DeleteEntriesByID(userID, ids...)
}
