package inmemdb

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/bunkmate-io/bunkmate/core/subject"
)

type subjectRepository struct {
	db *subjectTable
}

var _ subject.Repository = (*subjectRepository)(nil)

func NewSubjectRepository(db *DB) subject.Repository {
	return &subjectRepository{db: db.subject}
}

func (repo *subjectRepository) query(userID string) []subject.Subject {
	subjects := make([]subject.Subject, 0, len(repo.db.table))
	for _, subj := range repo.db.table {
		if subj.UserID == userID {
			subjects = append(subjects, *subj)
		}
	}
	return subjects
}

func (repo *subjectRepository) CheckNameUniqueness(userID, name string, excludedSubjects ...subject.Subject) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	exclIDs := make([]string, 0, len(excludedSubjects))
	for _, subj := range excludedSubjects {
		exclIDs = append(exclIDs, subj.ID)
	}
	excl := exclusionSet(exclIDs)

	for _, subj := range repo.query(userID) {
		if isExcluded(subj.ID, excl) {
			continue
		}
		if strings.EqualFold(subj.Name, name) {
			return subject.ErrNameExists
		}
	}
	return nil
}

func (repo *subjectRepository) CreateSubject(subj subject.Subject) (subject.Subject, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	subj.ID = uuid.New().String()
	repo.db.table[subj.ID] = &subj
	return subj, nil
}

func (repo *subjectRepository) QuerySubjects(userID string) ([]subject.Subject, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	subjects := repo.query(userID)
	sort.Slice(subjects, func(i, j int) bool {
		return strings.ToLower(subjects[i].Name) < strings.ToLower(subjects[j].Name)
	})
	return subjects, nil
}

func (repo *subjectRepository) GetSubjectByID(userID, id string) (subject.Subject, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if subj, ok := repo.db.table[id]; ok && subj.UserID == userID {
		return *subj, nil
	}
	return subject.Subject{}, subject.ErrNotFound
}

func (repo *subjectRepository) UpdateSubject(subj subject.Subject) (subject.Subject, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	// only save set fields
	orig, ok := repo.db.table[subj.ID]
	if !ok || orig.UserID != subj.UserID {
		return subject.Subject{}, subject.ErrNotFound
	}
	if subj.Name != "" {
		orig.Name = subj.Name
	}
	if subj.Code != "" {
		orig.Code = subj.Code
	}
	if subj.Goal != 0 {
		orig.Goal = subj.Goal
	}
	orig.UpdatedAt = subj.UpdatedAt

	repo.db.table[subj.ID] = orig
	return *orig, nil
}

func (repo *subjectRepository) DeleteSubjectsByID(userID string, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		if subj, ok := repo.db.table[id]; ok && subj.UserID == userID {
			delete(repo.db.table, id)
		}
	}
	return nil
}
