package tests

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/bunkmate-io/bunkmate/core/attendance"
	"github.com/bunkmate-io/bunkmate/core/subject"
	"github.com/bunkmate-io/bunkmate/core/user"
	testutil "github.com/bunkmate-io/bunkmate/tests"
)

func Test_sessionApi_log(t *testing.T) {
	resetDB(t)

	usr := testutil.CreateUser(t, usrRepo, "User", "awe", "awe@test.cd", "", []string{user.RoleStudent}, true)
	token := getToken(t, usr)
	math := testutil.CreateSubject(t, subjRepo, usr.ID, "Mathematics", "mth101", 0)

	date := time.Date(2021, 9, 6, 0, 0, 0, 0, time.UTC)
	testutil.CreateSession(t, attRepo, usr.ID, math.ID, date, 1, attendance.StatusPresent)

	body := func(subjectID, status string, slot int) []byte {
		return marchallObj(t, map[string]interface{}{
			"subject_id": subjectID, "date": date.Format(time.RFC3339), "slot": slot, "status": status,
		})
	}

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "required fields", token: token, body: []byte("{}"), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"subject_id": "this field is required", "date": "this field is required", "status": "this field is required",
			}),
		},
		{
			name: "invalid status", token: token, body: body(math.ID, "lol", 2), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"status": "must be one of: present, absent, cancelled"}),
		},
		{
			name: "unknown subject", token: token, body: body("d29f0e40-0662-4c42-ae7c-12d1e05525b3", attendance.StatusPresent, 2),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"subject_id": subject.ErrNotFound.Error()}),
		},
		{
			name: "slot already logged", token: token, body: body(math.ID, attendance.StatusAbsent, 1),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"slot": attendance.ErrSlotExists.Error()}),
		},
		{name: "log second slot", token: token, body: body(math.ID, attendance.StatusAbsent, 2), wantCode: http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/sessions", tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("failed! code = %v; wantCode %v; body = %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantCode == http.StatusCreated {
				var sess attendance.Session
				if err := json.Unmarshal(rec.Body.Bytes(), &sess); err != nil {
					t.Fatalf("unmarshalling response: %v", err)
				}
				if sess.ID == "" {
					t.Error("expected an ID")
				}
				if sess.Status != attendance.StatusAbsent || sess.Slot != 2 {
					t.Errorf("got status %q slot %d; want %q slot 2", sess.Status, sess.Slot, attendance.StatusAbsent)
				}
			} else {
				checkCodeAndData(t, tt, rec)
			}
		})
	}
}

func Test_sessionApi_query(t *testing.T) {
	resetDB(t)

	usr := testutil.CreateUser(t, usrRepo, "User", "awe", "awe@test.cd", "", []string{user.RoleStudent}, true)
	other := testutil.CreateUser(t, usrRepo, "Other", "other", "other@test.cd", "", []string{user.RoleStudent}, true)
	token := getToken(t, usr)

	math := testutil.CreateSubject(t, subjRepo, usr.ID, "Mathematics", "mth101", 0)
	phy := testutil.CreateSubject(t, subjRepo, usr.ID, "Physics", "phy101", 0)
	chem := testutil.CreateSubject(t, subjRepo, other.ID, "Chemistry", "chm101", 0)

	day1 := time.Date(2021, 9, 6, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)
	day3 := day1.AddDate(0, 0, 2)

	sess1 := testutil.CreateSession(t, attRepo, usr.ID, math.ID, day1, 1, attendance.StatusPresent)
	sess2 := testutil.CreateSession(t, attRepo, usr.ID, math.ID, day2, 1, attendance.StatusAbsent)
	sess3 := testutil.CreateSession(t, attRepo, usr.ID, phy.ID, day3, 1, attendance.StatusPresent)
	testutil.CreateSession(t, attRepo, other.ID, chem.ID, day1, 1, attendance.StatusPresent)

	path := func(params map[string]string) string {
		v := make(url.Values)
		for key, val := range params {
			v.Add(key, val)
		}
		return "/v1/sessions?" + v.Encode()
	}

	tests := []httpTest{
		{name: "Auth required", path: "/v1/sessions", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "only own sessions", path: "/v1/sessions", token: token, wantCode: http.StatusOK,
			wantData: marchallList(t, sess1, sess2, sess3),
		},
		{
			name: "by subject", path: path(map[string]string{"subject_id": math.ID}), token: token, wantCode: http.StatusOK,
			wantData: marchallList(t, sess1, sess2),
		},
		{
			name: "by status", path: path(map[string]string{"status": attendance.StatusAbsent}), token: token,
			wantCode: http.StatusOK, wantData: marchallList(t, sess2),
		},
		{
			name: "by date range", token: token, wantCode: http.StatusOK,
			path: path(map[string]string{
				"date_from": day2.Format(time.RFC3339), "date_to": day3.Format(time.RFC3339),
			}),
			wantData: marchallList(t, sess2, sess3),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("ordering", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, path(map[string]string{"ordering": "date"}), token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; body = %s", rec.Code, rec.Body.String())
		}
		var sessions []attendance.Session
		if err := json.Unmarshal(rec.Body.Bytes(), &sessions); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		wantIDs := []string{sess1.ID, sess2.ID, sess3.ID} // oldest first
		if len(sessions) != len(wantIDs) {
			t.Fatalf("len = %d; want %d", len(sessions), len(wantIDs))
		}
		for i, sess := range sessions {
			if sess.ID != wantIDs[i] {
				t.Errorf("sessions[%d].ID = %q; want %q", i, sess.ID, wantIDs[i])
			}
		}
	})
}

func Test_sessionApi_detail(t *testing.T) {
	resetDB(t)

	usr := testutil.CreateUser(t, usrRepo, "User", "awe", "awe@test.cd", "", []string{user.RoleStudent}, true)
	other := testutil.CreateUser(t, usrRepo, "Other", "other", "other@test.cd", "", []string{user.RoleStudent}, true)
	token := getToken(t, usr)

	math := testutil.CreateSubject(t, subjRepo, usr.ID, "Mathematics", "mth101", 0)
	chem := testutil.CreateSubject(t, subjRepo, other.ID, "Chemistry", "chm101", 0)

	date := time.Date(2021, 9, 6, 0, 0, 0, 0, time.UTC)
	sess := testutil.CreateSession(t, attRepo, usr.ID, math.ID, date, 1, attendance.StatusPresent)
	otherSess := testutil.CreateSession(t, attRepo, other.ID, chem.ID, date, 1, attendance.StatusPresent)

	t.Run("retrieve", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, sess)}
		req, rec := newAuthRequest(http.MethodGet, "/v1/sessions/"+sess.ID, token)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("other user's session is not found", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFoundResp)}
		req, rec := newAuthRequest(http.MethodGet, "/v1/sessions/"+otherSess.ID, token)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("correct a status", func(t *testing.T) {
		body := marchallObj(t, map[string]string{"status": attendance.StatusCancelled, "note": "strike day"})
		req, rec := newAuthRequest(http.MethodPut, "/v1/sessions/"+sess.ID, token, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; body = %s", rec.Code, rec.Body.String())
		}
		var updated attendance.Session
		if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if updated.Status != attendance.StatusCancelled {
			t.Errorf("Status = %q; want %q", updated.Status, attendance.StatusCancelled)
		}
		if updated.Note != "strike day" {
			t.Errorf("Note = %q; want %q", updated.Note, "strike day")
		}
		if updated.SubjectID != sess.SubjectID {
			t.Errorf("SubjectID = %q; want unchanged %q", updated.SubjectID, sess.SubjectID)
		}
	})

	t.Run("destroy", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/sessions/"+sess.ID, token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("code = %v; body = %s", rec.Code, rec.Body.String())
		}
		if _, err := attRepo.GetSessionByID(usr.ID, sess.ID); err != attendance.ErrNotFound {
			t.Errorf("expected session to be gone, err = %v", err)
		}
	})
}
