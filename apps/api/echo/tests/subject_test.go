package tests

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/bunkmate-io/bunkmate/core/attendance"
	"github.com/bunkmate-io/bunkmate/core/subject"
	"github.com/bunkmate-io/bunkmate/core/user"
	testutil "github.com/bunkmate-io/bunkmate/tests"
)

func Test_subjectApi_create(t *testing.T) {
	resetDB(t)

	usr := testutil.CreateUser(t, usrRepo, "User", "awe", "awe@test.cd", "", []string{user.RoleStudent}, true)
	token := getToken(t, usr)
	testutil.CreateSubject(t, subjRepo, usr.ID, "Mathematics", "mth101", 0)

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "name required", token: token, body: []byte("{}"), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"name": "this field is required"}),
		},
		{
			name: "name taken", token: token, body: marchallObj(t, map[string]interface{}{"name": "mathematics"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"name": subject.ErrNameExists.Error()}),
		},
		{
			name: "goal out of range", token: token,
			body:     marchallObj(t, map[string]interface{}{"name": "Physics", "goal": 120}),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "create with default goal", token: token,
			body:     marchallObj(t, map[string]interface{}{"name": "Physics", "code": "phy101"}),
			wantCode: http.StatusCreated,
		},
		{
			name: "create with custom goal", token: token,
			body:     marchallObj(t, map[string]interface{}{"name": "Chemistry", "goal": 85}),
			wantCode: http.StatusCreated,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/subjects", tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("failed! code = %v; wantCode %v; body = %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantCode == http.StatusCreated {
				var subj subject.Subject
				if err := json.Unmarshal(rec.Body.Bytes(), &subj); err != nil {
					t.Fatalf("unmarshalling response: %v", err)
				}
				if subj.ID == "" {
					t.Error("expected an ID")
				}
				if subj.UserID != usr.ID {
					t.Errorf("UserID = %q; want %q", subj.UserID, usr.ID)
				}
				wantGoal := attendance.DefaultGoal
				if subj.Name == "Chemistry" {
					wantGoal = 85
				}
				if subj.Goal != wantGoal {
					t.Errorf("Goal = %v; want %v", subj.Goal, wantGoal)
				}
			} else if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
			}
		})
	}
}

func Test_subjectApi_query(t *testing.T) {
	resetDB(t)

	usr := testutil.CreateUser(t, usrRepo, "User", "awe", "awe@test.cd", "", []string{user.RoleStudent}, true)
	other := testutil.CreateUser(t, usrRepo, "Other", "other", "other@test.cd", "", []string{user.RoleStudent}, true)

	math := testutil.CreateSubject(t, subjRepo, usr.ID, "Mathematics", "mth101", 0)
	phy := testutil.CreateSubject(t, subjRepo, usr.ID, "Physics", "phy101", 80)
	testutil.CreateSubject(t, subjRepo, other.ID, "Chemistry", "chm101", 0)

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "only own subjects", token: getToken(t, usr), wantCode: http.StatusOK,
			wantData: marchallList(t, math, phy),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/v1/subjects", tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_subjectApi_detail(t *testing.T) {
	resetDB(t)

	usr := testutil.CreateUser(t, usrRepo, "User", "awe", "awe@test.cd", "", []string{user.RoleStudent}, true)
	other := testutil.CreateUser(t, usrRepo, "Other", "other", "other@test.cd", "", []string{user.RoleStudent}, true)
	token := getToken(t, usr)

	math := testutil.CreateSubject(t, subjRepo, usr.ID, "Mathematics", "mth101", 0)
	chem := testutil.CreateSubject(t, subjRepo, other.ID, "Chemistry", "chm101", 0)

	t.Run("retrieve", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, math)}
		req, rec := newAuthRequest(http.MethodGet, "/v1/subjects/"+math.ID, token)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("other user's subject is not found", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFoundResp)}
		req, rec := newAuthRequest(http.MethodGet, "/v1/subjects/"+chem.ID, token)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("update goal", func(t *testing.T) {
		body := marchallObj(t, map[string]interface{}{"goal": 90})
		req, rec := newAuthRequest(http.MethodPut, "/v1/subjects/"+math.ID, token, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; body = %s", rec.Code, rec.Body.String())
		}
		var updated subject.Subject
		if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if updated.Goal != 90 {
			t.Errorf("Goal = %v; want 90", updated.Goal)
		}
		if updated.Name != math.Name {
			t.Errorf("Name = %q; want unchanged %q", updated.Name, math.Name)
		}
	})

	t.Run("destroy", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/subjects/"+math.ID, token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("code = %v; body = %s", rec.Code, rec.Body.String())
		}
		if _, err := subjRepo.GetSubjectByID(usr.ID, math.ID); err != subject.ErrNotFound {
			t.Errorf("expected subject to be gone, err = %v", err)
		}
	})
}

func Test_subjectApi_summary(t *testing.T) {
	resetDB(t)

	usr := testutil.CreateUser(t, usrRepo, "User", "awe", "awe@test.cd", "", []string{user.RoleStudent}, true)
	token := getToken(t, usr)

	math := testutil.CreateSubject(t, subjRepo, usr.ID, "Mathematics", "mth101", 0) // 75% goal
	from := time.Date(2021, 9, 1, 0, 0, 0, 0, time.UTC)
	testutil.CreateSessions(t, attRepo, usr.ID, math.ID, attendance.StatusPresent, 9, from)
	testutil.CreateSessions(t, attRepo, usr.ID, math.ID, attendance.StatusAbsent, 1, from.AddDate(0, 0, 9))
	testutil.CreateSession(t, attRepo, usr.ID, math.ID, from.AddDate(0, 0, 10), 1, attendance.StatusCancelled)

	// 9/10 = 90%; above a 75% goal with a 2-class bunk buffer
	want := attendance.SubjectOverview{
		Subject: math,
		Stats: attendance.Stats{
			Present: 9, Absent: 1, Cancelled: 1, Total: 10,
			Percentage: 90, BunkBuffer: 2, AboveGoal: true, Safe: true, Band: attendance.BandSafe,
		},
	}

	tt := httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, want)}
	req, rec := newAuthRequest(http.MethodGet, "/v1/subjects/"+math.ID+"/summary", token)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, tt, rec)
}
