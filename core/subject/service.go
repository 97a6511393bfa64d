package subject

import (
	"time"

	"github.com/pkg/errors"

	"github.com/bunkmate-io/bunkmate/core"
)

var (
	// errors
	ErrNotFound   = errors.New("subject not found")
	ErrNameExists = errors.New("a subject with this name already exists")
)

type (
	Repository interface {
		CheckNameUniqueness(userID, name string, excludedSubjects ...Subject) error
		CreateSubject(subj Subject) (Subject, error)
		QuerySubjects(userID string) ([]Subject, error)
		GetSubjectByID(userID, id string) (Subject, error)
		UpdateSubject(subj Subject) (Subject, error)
		DeleteSubjectsByID(userID string, ids ...string) error
	}

	Service interface {
		CheckNameUniqueness(userID, name string, excl ...Subject) error
		Create(userID string, ns NewSubject) (Subject, error)
		Query(userID string) ([]Subject, error)
		GetByID(userID, id string) (Subject, error)
		Update(orig Subject, us UpdateSubject) (Subject, error)
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

func (svc *service) CheckNameUniqueness(userID, name string, excl ...Subject) error {
	if err := svc.repo.CheckNameUniqueness(userID, name, excl...); err != nil {
		if err == ErrNameExists {
			return core.NewValidationError(err, core.FieldError{Field: "name", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *service) Create(userID string, ns NewSubject) (Subject, error) {
	now := time.Now().UTC()
	subj := Subject{
		UserID:    userID,
		Name:      ns.Name,
		Code:      ns.Code,
		Goal:      ns.Goal,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateSubject(subj)
}

func (svc *service) Query(userID string) ([]Subject, error) {
	return svc.repo.QuerySubjects(userID)
}

func (svc *service) GetByID(userID, id string) (Subject, error) {
	return svc.repo.GetSubjectByID(userID, id)
}

func (svc *service) Update(orig Subject, us UpdateSubject) (Subject, error) {
	subj := orig
	subj.Name = us.Name
	subj.Code = us.Code
	subj.Goal = us.Goal
	subj.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateSubject(subj)
}

func (svc *service) Delete(userID string, ids ...string) error {
	return svc.repo.DeleteSubjectsByID(userID, ids...)
}
