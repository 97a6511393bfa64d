package tests

import (
	"net/http"
	"testing"
	"time"

	"github.com/bunkmate-io/bunkmate/core/attendance"
	"github.com/bunkmate-io/bunkmate/core/user"
	testutil "github.com/bunkmate-io/bunkmate/tests"
)

func Test_summaryApi(t *testing.T) {
	resetDB(t)

	usr := testutil.CreateUser(t, usrRepo, "User", "awe", "awe@test.cd", "", []string{user.RoleStudent}, true)
	other := testutil.CreateUser(t, usrRepo, "Other", "other", "other@test.cd", "", []string{user.RoleStudent}, true)
	token := getToken(t, usr)

	math := testutil.CreateSubject(t, subjRepo, usr.ID, "Mathematics", "mth101", 0) // 75% goal
	phy := testutil.CreateSubject(t, subjRepo, usr.ID, "Physics", "phy101", 0)      // 75% goal
	chem := testutil.CreateSubject(t, subjRepo, usr.ID, "Chemistry", "chm101", 100)
	otherSubj := testutil.CreateSubject(t, subjRepo, other.ID, "History", "his101", 0)

	from := time.Date(2021, 9, 1, 0, 0, 0, 0, time.UTC)

	// math: 9/10 = 90%, comfortably above goal
	testutil.CreateSessions(t, attRepo, usr.ID, math.ID, attendance.StatusPresent, 9, from)
	testutil.CreateSessions(t, attRepo, usr.ID, math.ID, attendance.StatusAbsent, 1, from.AddDate(0, 0, 9))
	testutil.CreateSession(t, attRepo, usr.ID, math.ID, from.AddDate(0, 0, 10), 2, attendance.StatusCancelled)

	// phy: 6/10 = 60%, needs 6 straight classes to recover to 75%
	testutil.CreateSessions(t, attRepo, usr.ID, phy.ID, attendance.StatusPresent, 6, from)
	testutil.CreateSessions(t, attRepo, usr.ID, phy.ID, attendance.StatusAbsent, 4, from.AddDate(0, 0, 6))

	// chem: 1/5 = 20% against a 100% goal; no way back
	testutil.CreateSessions(t, attRepo, usr.ID, chem.ID, attendance.StatusPresent, 1, from)
	testutil.CreateSessions(t, attRepo, usr.ID, chem.ID, attendance.StatusAbsent, 4, from.AddDate(0, 0, 1))

	// another user's data must not leak into the overview
	testutil.CreateSessions(t, attRepo, other.ID, otherSubj.ID, attendance.StatusAbsent, 7, from)

	// subjects come back name-ordered
	want := attendance.Overview{
		Subjects: []attendance.SubjectOverview{
			{
				Subject: chem,
				Stats: attendance.Stats{
					Present: 1, Absent: 4, Total: 5,
					Percentage: 20, RecoveryUnreachable: true, Band: attendance.BandDanger,
				},
			},
			{
				Subject: math,
				Stats: attendance.Stats{
					Present: 9, Absent: 1, Cancelled: 1, Total: 10,
					Percentage: 90, BunkBuffer: 2, AboveGoal: true, Safe: true, Band: attendance.BandSafe,
				},
			},
			{
				Subject: phy,
				Stats: attendance.Stats{
					Present: 6, Absent: 4, Total: 10,
					Percentage: 60, RecoveryRequired: 6, Band: attendance.BandDanger,
				},
			},
		},
		// 16/25 = 64% overall at the default 75% goal
		Overall: attendance.Stats{
			Present: 16, Absent: 9, Cancelled: 1, Total: 25,
			Percentage: 64, RecoveryRequired: 11, Band: attendance.BandDanger,
		},
	}

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "overview", token: token, wantCode: http.StatusOK, wantData: marchallObj(t, want)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/v1/summary", tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
