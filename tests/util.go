package testutil

import (
	"testing"
	"time"

	"github.com/bunkmate-io/bunkmate/core/attendance"
	"github.com/bunkmate-io/bunkmate/core/calendar"
	"github.com/bunkmate-io/bunkmate/core/subject"
	"github.com/bunkmate-io/bunkmate/core/timetable"
	"github.com/bunkmate-io/bunkmate/core/user"
)

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateSubject(
	t *testing.T,
	repo subject.Repository,
	userID, name, code string,
	goal float64,
) subject.Subject {
	tstamp := time.Now().UTC()
	if goal == 0 {
		goal = attendance.DefaultGoal
	}
	subj := subject.Subject{
		UserID:    userID,
		Name:      name,
		Code:      code,
		Goal:      goal,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	subj, err := repo.CreateSubject(subj)
	if err != nil {
		t.Fatalf("CreateSubject() failed: %v", err)
	}
	return subj
}

func CreateSession(
	t *testing.T,
	repo attendance.Repository,
	userID, subjectID string,
	date time.Time,
	slot int,
	status string,
) attendance.Session {
	tstamp := time.Now().UTC()
	sess := attendance.Session{
		UserID:    userID,
		SubjectID: subjectID,
		Date:      date,
		Slot:      slot,
		Status:    status,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	sess, err := repo.CreateSession(sess)
	if err != nil {
		t.Fatalf("CreateSession() failed: %v", err)
	}
	return sess
}

// CreateSessions logs count sessions of the given status on consecutive days.
func CreateSessions(
	t *testing.T,
	repo attendance.Repository,
	userID, subjectID, status string,
	count int,
	from time.Time,
) []attendance.Session {
	sessions := make([]attendance.Session, 0, count)
	for i := 0; i < count; i++ {
		sessions = append(sessions, CreateSession(t, repo, userID, subjectID, from.AddDate(0, 0, i), 1, status))
	}
	return sessions
}

func CreateEntry(
	t *testing.T,
	repo timetable.Repository,
	userID, subjectID string,
	weekday, slot int,
	startTime, endTime string,
) timetable.Entry {
	tstamp := time.Now().UTC()
	entry := timetable.Entry{
		UserID:    userID,
		SubjectID: subjectID,
		Weekday:   weekday,
		Slot:      slot,
		StartTime: startTime,
		EndTime:   endTime,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	entry, err := repo.CreateEntry(entry)
	if err != nil {
		t.Fatalf("CreateEntry() failed: %v", err)
	}
	return entry
}

func CreateDay(
	t *testing.T,
	repo calendar.Repository,
	userID string,
	date time.Time,
	kind, label string,
) calendar.Day {
	tstamp := time.Now().UTC()
	day := calendar.Day{
		UserID:    userID,
		Date:      date,
		Kind:      kind,
		Label:     label,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	day, err := repo.CreateDay(day)
	if err != nil {
		t.Fatalf("CreateDay() failed: %v", err)
	}
	return day
}
