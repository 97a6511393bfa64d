package sqlxrepos

import (
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/bunkmate-io/bunkmate/core/timetable"
)

type timetableRepository struct {
	db *sqlx.DB
}

var _ timetable.Repository = (*timetableRepository)(nil)

func NewTimetableRepository(db *sqlx.DB) timetable.Repository {
	return &timetableRepository{db: db}
}

func (repo *timetableRepository) CheckSlotUniqueness(userID string, weekday, slot int, excludedEntries ...timetable.Entry) error {
	exclIDs := make([]string, 0, len(excludedEntries))
	for _, entry := range excludedEntries {
		exclIDs = append(exclIDs, entry.ID)
	}

	var exists bool
	err := repo.db.Get(
		&exists,
		`SELECT EXISTS (
			SELECT 1 FROM timetable_entry
			WHERE user_id = $1 AND weekday = $2 AND slot = $3 AND id <> ALL($4)
		)`,
		userID, weekday, slot, pq.Array(exclIDs),
	)
	if err != nil {
		return errors.Wrap(err, "checking slot uniqueness")
	}
	if exists {
		return timetable.ErrSlotExists
	}
	return nil
}

func (repo *timetableRepository) CreateEntry(entry timetable.Entry) (timetable.Entry, error) {
	entry.ID = uuid.New().String()
	_, err := repo.db.Exec(
		`INSERT INTO timetable_entry (id, user_id, subject_id, weekday, slot, start_time, end_time, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		entry.ID, entry.UserID, entry.SubjectID, entry.Weekday, entry.Slot,
		entry.StartTime, entry.EndTime, entry.CreatedAt, entry.UpdatedAt,
	)
	if err != nil {
		return timetable.Entry{}, errors.Wrap(err, "creating timetable entry")
	}
	return entry, nil
}

func (repo *timetableRepository) QueryEntries(userID string, weekday *int) ([]timetable.Entry, error) {
	var b argBuilder
	query := `SELECT * FROM timetable_entry WHERE user_id = ` + b.add(userID)
	if weekday != nil {
		query += ` AND weekday = ` + b.add(*weekday)
	}
	query += ` ORDER BY weekday, slot`

	entries := make([]timetable.Entry, 0)
	if err := repo.db.Select(&entries, query, b.args...); err != nil {
		return nil, errors.Wrap(err, "querying timetable entries")
	}
	return entries, nil
}

func (repo *timetableRepository) GetEntryByID(userID, id string) (timetable.Entry, error) {
	var entry timetable.Entry
	err := repo.db.Get(&entry, `SELECT * FROM timetable_entry WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return timetable.Entry{}, timetable.ErrNotFound
		}
		return timetable.Entry{}, errors.Wrap(err, "getting timetable entry")
	}
	return entry, nil
}

func (repo *timetableRepository) UpdateEntry(entry timetable.Entry) (timetable.Entry, error) {
	orig, err := repo.GetEntryByID(entry.UserID, entry.ID)
	if err != nil {
		return timetable.Entry{}, err
	}

	// only save set fields
	if entry.Slot == 0 {
		entry.Slot = orig.Slot
	}
	if entry.StartTime == "" {
		entry.StartTime = orig.StartTime
	}
	if entry.EndTime == "" {
		entry.EndTime = orig.EndTime
	}
	entry.SubjectID = orig.SubjectID
	entry.CreatedAt = orig.CreatedAt

	_, err = repo.db.Exec(
		`UPDATE timetable_entry
		 SET weekday = $3, slot = $4, start_time = $5, end_time = $6, updated_at = $7
		 WHERE user_id = $1 AND id = $2`,
		entry.UserID, entry.ID, entry.Weekday, entry.Slot, entry.StartTime, entry.EndTime, entry.UpdatedAt,
	)
	if err != nil {
		return timetable.Entry{}, errors.Wrap(err, "updating timetable entry")
	}
	return entry, nil
}

func (repo *timetableRepository) DeleteEntriesByID(userID string, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := repo.db.Exec(`DELETE FROM timetable_entry WHERE user_id = $1 AND id = ANY($2)`, userID, pq.Array(ids)); err != nil {
		return errors.Wrap(err, "deleting timetable entries")
	}
	return nil
}
