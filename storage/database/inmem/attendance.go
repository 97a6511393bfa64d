package inmemdb

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/bunkmate-io/bunkmate/core"
	"github.com/bunkmate-io/bunkmate/core/attendance"
)

type attendanceRepository struct {
	db *sessionTable
}

var _ attendance.Repository = (*attendanceRepository)(nil)

func NewAttendanceRepository(db *DB) attendance.Repository {
	return &attendanceRepository{db: db.session}
}

func (repo *attendanceRepository) query(userID string) []attendance.Session {
	sessions := make([]attendance.Session, 0, len(repo.db.table))
	for _, sess := range repo.db.table {
		if sess.UserID == userID {
			sessions = append(sessions, *sess)
		}
	}
	return sessions
}

func (repo *attendanceRepository) CheckSlotUniqueness(
	userID, subjectID string, date time.Time, slot int, excludedSessions ...attendance.Session,
) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	exclIDs := make([]string, 0, len(excludedSessions))
	for _, sess := range excludedSessions {
		exclIDs = append(exclIDs, sess.ID)
	}
	excl := exclusionSet(exclIDs)

	for _, sess := range repo.query(userID) {
		if isExcluded(sess.ID, excl) {
			continue
		}
		if sess.SubjectID == subjectID && sameDay(sess.Date, date) && sess.Slot == slot {
			return attendance.ErrSlotExists
		}
	}
	return nil
}

func sameDay(t1, t2 time.Time) bool {
	y1, m1, d1 := t1.Date()
	y2, m2, d2 := t2.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

func (repo *attendanceRepository) CreateSession(sess attendance.Session) (attendance.Session, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	sess.ID = uuid.New().String()
	repo.db.table[sess.ID] = &sess
	return sess, nil
}

func (repo *attendanceRepository) GetSessionByID(userID, id string) (attendance.Session, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if sess, ok := repo.db.table[id]; ok && sess.UserID == userID {
		return *sess, nil
	}
	return attendance.Session{}, attendance.ErrNotFound
}

func (repo *attendanceRepository) FilterSessions(
	userID string, filter attendance.QueryFilter, orderings []core.DBOrdering,
) ([]attendance.Session, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	sessions := make([]attendance.Session, 0)
	for _, sess := range repo.query(userID) {
		if filter.SubjectID != "" && sess.SubjectID != filter.SubjectID {
			continue
		}
		if filter.Status != "" && sess.Status != filter.Status {
			continue
		}
		if !filter.DateFrom.IsZero() && sess.Date.Before(filter.DateFrom) {
			continue
		}
		if !filter.DateTo.IsZero() && sess.Date.After(filter.DateTo) {
			continue
		}
		sessions = append(sessions, sess)
	}
	sortSessions(sessions, orderings)
	return sessions, nil
}

func sortSessions(sessions []attendance.Session, orderings []core.DBOrdering) {
	cmp := func(s1, s2 attendance.Session, field string) int {
		switch field {
		case "slot":
			return s1.Slot - s2.Slot
		case "status":
			switch {
			case s1.Status < s2.Status:
				return -1
			case s1.Status > s2.Status:
				return 1
			}
			return 0
		case "created_at":
			switch {
			case s1.CreatedAt.Before(s2.CreatedAt):
				return -1
			case s1.CreatedAt.After(s2.CreatedAt):
				return 1
			}
			return 0
		default: // date
			switch {
			case s1.Date.Before(s2.Date):
				return -1
			case s1.Date.After(s2.Date):
				return 1
			}
			return 0
		}
	}
	if len(orderings) == 0 {
		orderings = []core.DBOrdering{{Field: "date"}, {Field: "slot"}} // latest first
	}
	sort.SliceStable(sessions, func(i, j int) bool {
		for _, ord := range orderings {
			res := cmp(sessions[i], sessions[j], ord.Field)
			if res == 0 {
				continue
			}
			if ord.Ascending {
				return res < 0
			}
			return res > 0
		}
		return false
	})
}

func (repo *attendanceRepository) UpdateSession(sess attendance.Session) (attendance.Session, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	// only save set fields
	orig, ok := repo.db.table[sess.ID]
	if !ok || orig.UserID != sess.UserID {
		return attendance.Session{}, attendance.ErrNotFound
	}
	if !sess.Date.IsZero() {
		orig.Date = sess.Date
	}
	if sess.Slot != 0 {
		orig.Slot = sess.Slot
	}
	if sess.Status != "" {
		orig.Status = sess.Status
	}
	orig.Note = sess.Note
	orig.UpdatedAt = sess.UpdatedAt

	repo.db.table[sess.ID] = orig
	return *orig, nil
}

func (repo *attendanceRepository) DeleteSessionsByID(userID string, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		if sess, ok := repo.db.table[id]; ok && sess.UserID == userID {
			delete(repo.db.table, id)
		}
	}
	return nil
}

func (repo *attendanceRepository) TallySubject(userID, subjectID string) (attendance.Tally, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var tally attendance.Tally
	for _, sess := range repo.query(userID) {
		if sess.SubjectID == subjectID {
			tallyStatus(&tally, sess.Status)
		}
	}
	return tally, nil
}

func (repo *attendanceRepository) TallyAll(userID string) (map[string]attendance.Tally, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	tallies := make(map[string]attendance.Tally)
	for _, sess := range repo.query(userID) {
		tally := tallies[sess.SubjectID]
		tallyStatus(&tally, sess.Status)
		tallies[sess.SubjectID] = tally
	}
	return tallies, nil
}

func tallyStatus(tally *attendance.Tally, status string) {
	switch status {
	case attendance.StatusPresent:
		tally.Present++
	case attendance.StatusAbsent:
		tally.Absent++
	case attendance.StatusCancelled:
		tally.Cancelled++
	}
}
