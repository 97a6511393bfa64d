package sqlxrepos

import (
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/bunkmate-io/bunkmate/core"
	"github.com/bunkmate-io/bunkmate/core/attendance"
)

type attendanceRepository struct {
	db *sqlx.DB
}

var _ attendance.Repository = (*attendanceRepository)(nil)

func NewAttendanceRepository(db *sqlx.DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

// sessionOrderings whitelists the fields FilterSessions may order by.
var sessionOrderings = map[string]string{
	"date":       "date",
	"slot":       "slot",
	"status":     "status",
	"created_at": "created_at",
}

func (repo *attendanceRepository) CheckSlotUniqueness(
	userID, subjectID string, date time.Time, slot int, excludedSessions ...attendance.Session,
) error {
	exclIDs := make([]string, 0, len(excludedSessions))
	for _, sess := range excludedSessions {
		exclIDs = append(exclIDs, sess.ID)
	}

	var exists bool
	err := repo.db.Get(
		&exists,
		`SELECT EXISTS (
			SELECT 1 FROM session
			WHERE user_id = $1 AND subject_id = $2 AND date = $3 AND slot = $4 AND id <> ALL($5)
		)`,
		userID, subjectID, date, slot, pq.Array(exclIDs),
	)
	if err != nil {
		return errors.Wrap(err, "checking slot uniqueness")
	}
	if exists {
		return attendance.ErrSlotExists
	}
	return nil
}

func (repo *attendanceRepository) CreateSession(sess attendance.Session) (attendance.Session, error) {
	sess.ID = uuid.New().String()
	_, err := repo.db.Exec(
		`INSERT INTO session (id, user_id, subject_id, date, slot, status, note, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		sess.ID, sess.UserID, sess.SubjectID, sess.Date, sess.Slot, sess.Status, sess.Note,
		sess.CreatedAt, sess.UpdatedAt,
	)
	if err != nil {
		return attendance.Session{}, errors.Wrap(err, "creating session")
	}
	return sess, nil
}

func (repo *attendanceRepository) GetSessionByID(userID, id string) (attendance.Session, error) {
	var sess attendance.Session
	err := repo.db.Get(&sess, `SELECT * FROM session WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return attendance.Session{}, attendance.ErrNotFound
		}
		return attendance.Session{}, errors.Wrap(err, "getting session")
	}
	return sess, nil
}

func (repo *attendanceRepository) FilterSessions(
	userID string, filter attendance.QueryFilter, orderings []core.DBOrdering,
) ([]attendance.Session, error) {
	var b argBuilder
	where := []string{"user_id = " + b.add(userID)}

	if filter.SubjectID != "" {
		where = append(where, "subject_id = "+b.add(filter.SubjectID))
	}
	if filter.Status != "" {
		where = append(where, "status = "+b.add(filter.Status))
	}
	if !filter.DateFrom.IsZero() {
		where = append(where, "date >= "+b.add(filter.DateFrom))
	}
	if !filter.DateTo.IsZero() {
		where = append(where, "date <= "+b.add(filter.DateTo))
	}

	query := `SELECT * FROM session WHERE ` + strings.Join(where, " AND ") +
		orderByClause(orderings, sessionOrderings, "date DESC, slot DESC")

	sessions := make([]attendance.Session, 0)
	if err := repo.db.Select(&sessions, query, b.args...); err != nil {
		return nil, errors.Wrap(err, "filtering sessions")
	}
	return sessions, nil
}

func (repo *attendanceRepository) UpdateSession(sess attendance.Session) (attendance.Session, error) {
	orig, err := repo.GetSessionByID(sess.UserID, sess.ID)
	if err != nil {
		return attendance.Session{}, err
	}

	// only save set fields
	if sess.Date.IsZero() {
		sess.Date = orig.Date
	}
	if sess.Slot == 0 {
		sess.Slot = orig.Slot
	}
	if sess.Status == "" {
		sess.Status = orig.Status
	}
	sess.SubjectID = orig.SubjectID
	sess.CreatedAt = orig.CreatedAt

	_, err = repo.db.Exec(
		`UPDATE session SET date = $3, slot = $4, status = $5, note = $6, updated_at = $7
		 WHERE user_id = $1 AND id = $2`,
		sess.UserID, sess.ID, sess.Date, sess.Slot, sess.Status, sess.Note, sess.UpdatedAt,
	)
	if err != nil {
		return attendance.Session{}, errors.Wrap(err, "updating session")
	}
	return sess, nil
}

func (repo *attendanceRepository) DeleteSessionsByID(userID string, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := repo.db.Exec(`DELETE FROM session WHERE user_id = $1 AND id = ANY($2)`, userID, pq.Array(ids)); err != nil {
		return errors.Wrap(err, "deleting sessions")
	}
	return nil
}

func (repo *attendanceRepository) TallySubject(userID, subjectID string) (attendance.Tally, error) {
	var tally attendance.Tally
	err := repo.db.Get(
		&tally,
		`SELECT
			count(*) FILTER (WHERE status = 'present')   AS present,
			count(*) FILTER (WHERE status = 'absent')    AS absent,
			count(*) FILTER (WHERE status = 'cancelled') AS cancelled
		 FROM session WHERE user_id = $1 AND subject_id = $2`,
		userID, subjectID,
	)
	if err != nil {
		return attendance.Tally{}, errors.Wrap(err, "tallying subject sessions")
	}
	return tally, nil
}

func (repo *attendanceRepository) TallyAll(userID string) (map[string]attendance.Tally, error) {
	rows := make([]struct {
		SubjectID string `db:"subject_id"`
		attendance.Tally
	}, 0)
	err := repo.db.Select(
		&rows,
		`SELECT
			subject_id,
			count(*) FILTER (WHERE status = 'present')   AS present,
			count(*) FILTER (WHERE status = 'absent')    AS absent,
			count(*) FILTER (WHERE status = 'cancelled') AS cancelled
		 FROM session WHERE user_id = $1 GROUP BY subject_id`,
		userID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "tallying sessions")
	}

	tallies := make(map[string]attendance.Tally, len(rows))
	for _, row := range rows {
		tallies[row.SubjectID] = row.Tally
	}
	return tallies, nil
}
