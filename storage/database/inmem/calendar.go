package inmemdb

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/bunkmate-io/bunkmate/core/calendar"
)

type calendarRepository struct {
	db *calendarTable
}

var _ calendar.Repository = (*calendarRepository)(nil)

func NewCalendarRepository(db *DB) calendar.Repository {
	return &calendarRepository{db: db.calendar}
}

func (repo *calendarRepository) query(userID string) []calendar.Day {
	days := make([]calendar.Day, 0, len(repo.db.table))
	for _, day := range repo.db.table {
		if day.UserID == userID {
			days = append(days, *day)
		}
	}
	return days
}

func (repo *calendarRepository) CheckDateUniqueness(userID string, date time.Time, excludedDays ...calendar.Day) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	exclIDs := make([]string, 0, len(excludedDays))
	for _, day := range excludedDays {
		exclIDs = append(exclIDs, day.ID)
	}
	excl := exclusionSet(exclIDs)

	for _, day := range repo.query(userID) {
		if isExcluded(day.ID, excl) {
			continue
		}
		if sameDay(day.Date, date) {
			return calendar.ErrDateExists
		}
	}
	return nil
}

func (repo *calendarRepository) CreateDay(day calendar.Day) (calendar.Day, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	day.ID = uuid.New().String()
	repo.db.table[day.ID] = &day
	return day, nil
}

func (repo *calendarRepository) FilterDays(userID string, filter calendar.QueryFilter) ([]calendar.Day, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	days := make([]calendar.Day, 0)
	for _, day := range repo.query(userID) {
		if filter.Kind != "" && day.Kind != filter.Kind {
			continue
		}
		if !filter.DateFrom.IsZero() && day.Date.Before(filter.DateFrom) {
			continue
		}
		if !filter.DateTo.IsZero() && day.Date.After(filter.DateTo) {
			continue
		}
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date.Before(days[j].Date) })
	return days, nil
}

func (repo *calendarRepository) GetDayByID(userID, id string) (calendar.Day, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if day, ok := repo.db.table[id]; ok && day.UserID == userID {
		return *day, nil
	}
	return calendar.Day{}, calendar.ErrNotFound
}

func (repo *calendarRepository) UpdateDay(day calendar.Day) (calendar.Day, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	// only save set fields
	orig, ok := repo.db.table[day.ID]
	if !ok || orig.UserID != day.UserID {
		return calendar.Day{}, calendar.ErrNotFound
	}
	if !day.Date.IsZero() {
		orig.Date = day.Date
	}
	if day.Kind != "" {
		orig.Kind = day.Kind
	}
	orig.Label = day.Label
	orig.UpdatedAt = day.UpdatedAt

	repo.db.table[day.ID] = orig
	return *orig, nil
}

func (repo *calendarRepository) DeleteDaysByID(userID string, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		if day, ok := repo.db.table[id]; ok && day.UserID == userID {
			delete(repo.db.table, id)
		}
	}
	return nil
}
