package sqlxrepos

import (
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/bunkmate-io/bunkmate/core/subject"
)

type subjectRepository struct {
	db *sqlx.DB
}

var _ subject.Repository = (*subjectRepository)(nil)

func NewSubjectRepository(db *sqlx.DB) subject.Repository {
	return &subjectRepository{db: db}
}

func (repo *subjectRepository) CheckNameUniqueness(userID, name string, excludedSubjects ...subject.Subject) error {
	exclIDs := make([]string, 0, len(excludedSubjects))
	for _, subj := range excludedSubjects {
		exclIDs = append(exclIDs, subj.ID)
	}

	var exists bool
	err := repo.db.Get(
		&exists,
		`SELECT EXISTS (SELECT 1 FROM subject WHERE user_id = $1 AND lower(name) = lower($2) AND id <> ALL($3))`,
		userID, name, pq.Array(exclIDs),
	)
	if err != nil {
		return errors.Wrap(err, "checking name uniqueness")
	}
	if exists {
		return subject.ErrNameExists
	}
	return nil
}

func (repo *subjectRepository) CreateSubject(subj subject.Subject) (subject.Subject, error) {
	subj.ID = uuid.New().String()
	_, err := repo.db.Exec(
		`INSERT INTO subject (id, user_id, name, code, goal, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		subj.ID, subj.UserID, subj.Name, subj.Code, subj.Goal, subj.CreatedAt, subj.UpdatedAt,
	)
	if err != nil {
		return subject.Subject{}, errors.Wrap(err, "creating subject")
	}
	return subj, nil
}

func (repo *subjectRepository) QuerySubjects(userID string) ([]subject.Subject, error) {
	subjects := make([]subject.Subject, 0)
	err := repo.db.Select(
		&subjects,
		`SELECT * FROM subject WHERE user_id = $1 ORDER BY lower(name)`,
		userID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying subjects")
	}
	return subjects, nil
}

func (repo *subjectRepository) GetSubjectByID(userID, id string) (subject.Subject, error) {
	var subj subject.Subject
	err := repo.db.Get(&subj, `SELECT * FROM subject WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return subject.Subject{}, subject.ErrNotFound
		}
		return subject.Subject{}, errors.Wrap(err, "getting subject")
	}
	return subj, nil
}

func (repo *subjectRepository) UpdateSubject(subj subject.Subject) (subject.Subject, error) {
	orig, err := repo.GetSubjectByID(subj.UserID, subj.ID)
	if err != nil {
		return subject.Subject{}, err
	}

	// only save set fields
	if subj.Name == "" {
		subj.Name = orig.Name
	}
	if subj.Code == "" {
		subj.Code = orig.Code
	}
	if subj.Goal == 0 {
		subj.Goal = orig.Goal
	}
	subj.CreatedAt = orig.CreatedAt

	_, err = repo.db.Exec(
		`UPDATE subject SET name = $3, code = $4, goal = $5, updated_at = $6 WHERE user_id = $1 AND id = $2`,
		subj.UserID, subj.ID, subj.Name, subj.Code, subj.Goal, subj.UpdatedAt,
	)
	if err != nil {
		return subject.Subject{}, errors.Wrap(err, "updating subject")
	}
	return subj, nil
}

func (repo *subjectRepository) DeleteSubjectsByID(userID string, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := repo.db.Exec(`DELETE FROM subject WHERE user_id = $1 AND id = ANY($2)`, userID, pq.Array(ids)); err != nil {
		return errors.Wrap(err, "deleting subjects")
	}
	return nil
}
