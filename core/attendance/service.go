package attendance

import (
	"time"

	"github.com/pkg/errors"

	"github.com/bunkmate-io/bunkmate/core"
	"github.com/bunkmate-io/bunkmate/core/subject"
)

var (
	// errors
	ErrNotFound   = errors.New("session not found")
	ErrSlotExists = errors.New("a session for this subject, date and slot is already logged")
)

type (
	Repository interface {
		CheckSlotUniqueness(userID, subjectID string, date time.Time, slot int, excludedSessions ...Session) error
		CreateSession(sess Session) (Session, error)
		GetSessionByID(userID, id string) (Session, error)
		// FilterSessions applies AND operation on available QueryFilter fields.
		FilterSessions(userID string, filter QueryFilter, orderings []core.DBOrdering) ([]Session, error)
		UpdateSession(sess Session) (Session, error)
		DeleteSessionsByID(userID string, ids ...string) error
		// TallySubject counts a subject's sessions by status.
		TallySubject(userID, subjectID string) (Tally, error)
		// TallyAll counts every subject's sessions by status, keyed by subject ID.
		TallyAll(userID string) (map[string]Tally, error)
	}

	Service interface {
		CheckSlotUniqueness(userID, subjectID string, date time.Time, slot int, excl ...Session) error
		Log(userID string, ns NewSession) (Session, error)
		GetByID(userID, id string) (Session, error)
		Filter(userID string, filter QueryFilter, orderings []core.DBOrdering) ([]Session, error)
		Update(orig Session, us UpdateSession) (Session, error)
		Delete(userID string, ids ...string) error
		SubjectStats(subj subject.Subject) (Stats, error)
		Overview(userID string) (Overview, error)
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

// SubjectOverview pairs a subject with its computed stats.
type SubjectOverview struct {
	Subject subject.Subject `json:"subject"`
	Stats   Stats           `json:"stats"`
}

// Overview is the per-subject and overall standing of a user.
// Overall is computed at DefaultGoal over the summed counts.
type Overview struct {
	Subjects []SubjectOverview `json:"subjects"`
	Overall  Stats             `json:"overall"`
}

func (svc *service) CheckSlotUniqueness(userID, subjectID string, date time.Time, slot int, excl ...Session) error {
	if err := svc.repo.CheckSlotUniqueness(userID, subjectID, date, slot, excl...); err != nil {
		if err == ErrSlotExists {
			return core.NewValidationError(err, core.FieldError{Field: "slot", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *service) Log(userID string, ns NewSession) (Session, error) {
	if _, err := svc.subjRepo.GetSubjectByID(userID, ns.SubjectID); err != nil {
		if err == subject.ErrNotFound {
			return Session{}, core.NewValidationError(err, core.FieldError{Field: "subject_id", Error: err.Error()})
		}
		return Session{}, errors.Wrap(err, "finding subject")
	}
	if err := svc.CheckSlotUniqueness(userID, ns.SubjectID, ns.Date, ns.Slot); err != nil {
		return Session{}, err
	}

	now := time.Now().UTC()
	sess := Session{
		UserID:    userID,
		SubjectID: ns.SubjectID,
		Date:      ns.Date,
		Slot:      ns.Slot,
		Status:    ns.Status,
		Note:      ns.Note,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateSession(sess)
}

func (svc *service) GetByID(userID, id string) (Session, error) {
	return svc.repo.GetSessionByID(userID, id)
}

func (svc *service) Filter(userID string, filter QueryFilter, orderings []core.DBOrdering) ([]Session, error) {
	return svc.repo.FilterSessions(userID, filter, orderings)
}

func (svc *service) Update(orig Session, us UpdateSession) (Session, error) {
	sess := orig
	sess.Status = us.Status
	sess.Note = us.Note
	sess.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateSession(sess)
}

func (svc *service) Delete(userID string, ids ...string) error {
	return svc.repo.DeleteSessionsByID(userID, ids...)
}

func (svc *service) SubjectStats(subj subject.Subject) (Stats, error) {
	tally, err := svc.repo.TallySubject(subj.UserID, subj.ID)
	if err != nil {
		return Stats{}, errors.Wrap(err, "tallying sessions")
	}
	return ComputeStats(tally.Present, tally.Absent, tally.Cancelled, subj.Goal), nil
}

func (svc *service) Overview(userID string) (Overview, error) {
	subjects, err := svc.subjRepo.QuerySubjects(userID)
	if err != nil {
		return Overview{}, errors.Wrap(err, "querying subjects")
	}
	tallies, err := svc.repo.TallyAll(userID)
	if err != nil {
		return Overview{}, errors.Wrap(err, "tallying sessions")
	}

	ov := Overview{Subjects: make([]SubjectOverview, 0, len(subjects))}
	var sum Tally
	for _, subj := range subjects {
		tally := tallies[subj.ID]
		sum.Present += tally.Present
		sum.Absent += tally.Absent
		sum.Cancelled += tally.Cancelled
		ov.Subjects = append(ov.Subjects, SubjectOverview{
			Subject: subj,
			Stats:   ComputeStats(tally.Present, tally.Absent, tally.Cancelled, subj.Goal),
		})
	}
	ov.Overall = ComputeStats(sum.Present, sum.Absent, sum.Cancelled, DefaultGoal)
	return ov, nil
}
