package sqlxrepos

import (
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/bunkmate-io/bunkmate/core/calendar"
)

type calendarRepository struct {
	db *sqlx.DB
}

var _ calendar.Repository = (*calendarRepository)(nil)

func NewCalendarRepository(db *sqlx.DB) calendar.Repository {
	return &calendarRepository{db: db}
}

func (repo *calendarRepository) CheckDateUniqueness(userID string, date time.Time, excludedDays ...calendar.Day) error {
	exclIDs := make([]string, 0, len(excludedDays))
	for _, day := range excludedDays {
		exclIDs = append(exclIDs, day.ID)
	}

	var exists bool
	err := repo.db.Get(
		&exists,
		`SELECT EXISTS (SELECT 1 FROM calendar_day WHERE user_id = $1 AND date = $2 AND id <> ALL($3))`,
		userID, date, pq.Array(exclIDs),
	)
	if err != nil {
		return errors.Wrap(err, "checking date uniqueness")
	}
	if exists {
		return calendar.ErrDateExists
	}
	return nil
}

func (repo *calendarRepository) CreateDay(day calendar.Day) (calendar.Day, error) {
	day.ID = uuid.New().String()
	_, err := repo.db.Exec(
		`INSERT INTO calendar_day (id, user_id, date, kind, label, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		day.ID, day.UserID, day.Date, day.Kind, day.Label, day.CreatedAt, day.UpdatedAt,
	)
	if err != nil {
		return calendar.Day{}, errors.Wrap(err, "creating calendar day")
	}
	return day, nil
}

func (repo *calendarRepository) FilterDays(userID string, filter calendar.QueryFilter) ([]calendar.Day, error) {
	var b argBuilder
	where := []string{"user_id = " + b.add(userID)}

	if filter.Kind != "" {
		where = append(where, "kind = "+b.add(filter.Kind))
	}
	if !filter.DateFrom.IsZero() {
		where = append(where, "date >= "+b.add(filter.DateFrom))
	}
	if !filter.DateTo.IsZero() {
		where = append(where, "date <= "+b.add(filter.DateTo))
	}

	query := `SELECT * FROM calendar_day WHERE ` + strings.Join(where, " AND ") + ` ORDER BY date`
	days := make([]calendar.Day, 0)
	if err := repo.db.Select(&days, query, b.args...); err != nil {
		return nil, errors.Wrap(err, "filtering calendar days")
	}
	return days, nil
}

func (repo *calendarRepository) GetDayByID(userID, id string) (calendar.Day, error) {
	var day calendar.Day
	err := repo.db.Get(&day, `SELECT * FROM calendar_day WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return calendar.Day{}, calendar.ErrNotFound
		}
		return calendar.Day{}, errors.Wrap(err, "getting calendar day")
	}
	return day, nil
}

func (repo *calendarRepository) UpdateDay(day calendar.Day) (calendar.Day, error) {
	orig, err := repo.GetDayByID(day.UserID, day.ID)
	if err != nil {
		return calendar.Day{}, err
	}

	// only save set fields
	if day.Date.IsZero() {
		day.Date = orig.Date
	}
	if day.Kind == "" {
		day.Kind = orig.Kind
	}
	day.CreatedAt = orig.CreatedAt

	_, err = repo.db.Exec(
		`UPDATE calendar_day SET date = $3, kind = $4, label = $5, updated_at = $6
		 WHERE user_id = $1 AND id = $2`,
		day.UserID, day.ID, day.Date, day.Kind, day.Label, day.UpdatedAt,
	)
	if err != nil {
		return calendar.Day{}, errors.Wrap(err, "updating calendar day")
	}
	return day, nil
}

func (repo *calendarRepository) DeleteDaysByID(userID string, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := repo.db.Exec(`DELETE FROM calendar_day WHERE user_id = $1 AND id = ANY($2)`, userID, pq.Array(ids)); err != nil {
		return errors.Wrap(err, "deleting calendar days")
	}
	return nil
}
