// Package inmemdb provides in-memory repository implementations,
// meant for tests and local development.
package inmemdb

import (
	"sync"

	"github.com/bunkmate-io/bunkmate/core/attendance"
	"github.com/bunkmate-io/bunkmate/core/calendar"
	"github.com/bunkmate-io/bunkmate/core/subject"
	"github.com/bunkmate-io/bunkmate/core/timetable"
	"github.com/bunkmate-io/bunkmate/core/user"
)

type (
	DB struct {
		user      *userTable
		subject   *subjectTable
		session   *sessionTable
		timetable *timetableTable
		calendar  *calendarTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}
	subjectTable struct {
		sync.RWMutex
		table map[string]*subject.Subject
	}
	sessionTable struct {
		sync.RWMutex
		table map[string]*attendance.Session
	}
	timetableTable struct {
		sync.RWMutex
		table map[string]*timetable.Entry
	}
	calendarTable struct {
		sync.RWMutex
		table map[string]*calendar.Day
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:      &userTable{table: make(map[string]*user.User)},
		subject:   &subjectTable{table: make(map[string]*subject.Subject)},
		session:   &sessionTable{table: make(map[string]*attendance.Session)},
		timetable: &timetableTable{table: make(map[string]*timetable.Entry)},
		calendar:  &calendarTable{table: make(map[string]*calendar.Day)},
	}
	return db, nil
}

// Reset empties every table. Meant for tests.
func (db *DB) Reset() {
	db.user.Lock()
	db.user.table = make(map[string]*user.User)
	db.user.Unlock()

	db.subject.Lock()
	db.subject.table = make(map[string]*subject.Subject)
	db.subject.Unlock()

	db.session.Lock()
	db.session.table = make(map[string]*attendance.Session)
	db.session.Unlock()

	db.timetable.Lock()
	db.timetable.table = make(map[string]*timetable.Entry)
	db.timetable.Unlock()

	db.calendar.Lock()
	db.calendar.table = make(map[string]*calendar.Day)
	db.calendar.Unlock()
}

func isExcluded(id string, exclIDs map[string]struct{}) bool {
	_, ok := exclIDs[id]
	return ok
}

func exclusionSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
