package inmemdb

import (
	"sort"

	"github.com/google/uuid"

	"github.com/bunkmate-io/bunkmate/core/timetable"
)

type timetableRepository struct {
	db *timetableTable
}

var _ timetable.Repository = (*timetableRepository)(nil)

func NewTimetableRepository(db *DB) timetable.Repository {
	return &timetableRepository{db: db.timetable}
}

func (repo *timetableRepository) query(userID string) []timetable.Entry {
	entries := make([]timetable.Entry, 0, len(repo.db.table))
	for _, entry := range repo.db.table {
		if entry.UserID == userID {
			entries = append(entries, *entry)
		}
	}
	return entries
}

func (repo *timetableRepository) CheckSlotUniqueness(userID string, weekday, slot int, excludedEntries ...timetable.Entry) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	exclIDs := make([]string, 0, len(excludedEntries))
	for _, entry := range excludedEntries {
		exclIDs = append(exclIDs, entry.ID)
	}
	excl := exclusionSet(exclIDs)

	for _, entry := range repo.query(userID) {
		if isExcluded(entry.ID, excl) {
			continue
		}
		if entry.Weekday == weekday && entry.Slot == slot {
			return timetable.ErrSlotExists
		}
	}
	return nil
}

func (repo *timetableRepository) CreateEntry(entry timetable.Entry) (timetable.Entry, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	entry.ID = uuid.New().String()
	repo.db.table[entry.ID] = &entry
	return entry, nil
}

func (repo *timetableRepository) QueryEntries(userID string, weekday *int) ([]timetable.Entry, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	entries := make([]timetable.Entry, 0)
	for _, entry := range repo.query(userID) {
		if weekday != nil && entry.Weekday != *weekday {
			continue
		}
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Weekday != entries[j].Weekday {
			return entries[i].Weekday < entries[j].Weekday
		}
		return entries[i].Slot < entries[j].Slot
	})
	return entries, nil
}

func (repo *timetableRepository) GetEntryByID(userID, id string) (timetable.Entry, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if entry, ok := repo.db.table[id]; ok && entry.UserID == userID {
		return *entry, nil
	}
	return timetable.Entry{}, timetable.ErrNotFound
}

func (repo *timetableRepository) UpdateEntry(entry timetable.Entry) (timetable.Entry, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	// only save set fields
	orig, ok := repo.db.table[entry.ID]
	if !ok || orig.UserID != entry.UserID {
		return timetable.Entry{}, timetable.ErrNotFound
	}
	orig.Weekday = entry.Weekday
	if entry.Slot != 0 {
		orig.Slot = entry.Slot
	}
	if entry.StartTime != "" {
		orig.StartTime = entry.StartTime
	}
	if entry.EndTime != "" {
		orig.EndTime = entry.EndTime
	}
	orig.UpdatedAt = entry.UpdatedAt

	repo.db.table[entry.ID] = orig
	return *orig, nil
}

func (repo *timetableRepository) DeleteEntriesByID(userID string, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		if entry, ok := repo.db.table[id]; ok && entry.UserID == userID {
			delete(repo.db.table, id)
		}
	}
	return nil
}
