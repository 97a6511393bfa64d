package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/bunkmate-io/bunkmate/core/timetable"
	"github.com/bunkmate-io/bunkmate/core/user"
	testutil "github.com/bunkmate-io/bunkmate/tests"
)

func Test_timetableApi_create(t *testing.T) {
	resetDB(t)

	usr := testutil.CreateUser(t, usrRepo, "User", "awe", "awe@test.cd", "", []string{user.RoleStudent}, true)
	token := getToken(t, usr)
	math := testutil.CreateSubject(t, subjRepo, usr.ID, "Mathematics", "mth101", 0)
	testutil.CreateEntry(t, ttRepo, usr.ID, math.ID, 1, 1, "08:00", "09:00")

	body := func(weekday, slot int, start, end string) []byte {
		return marchallObj(t, map[string]interface{}{
			"subject_id": math.ID, "weekday": weekday, "slot": slot, "start_time": start, "end_time": end,
		})
	}

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "required fields", token: token, body: []byte("{}"), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"subject_id": "this field is required", "weekday": "this field is required",
				"start_time": "this field is required", "end_time": "this field is required",
			}),
		},
		{
			name: "invalid times", token: token, body: body(2, 1, "8am", "9am"), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"start_time": "must be a valid time of day in 24h HH:MM format",
				"end_time":   "must be a valid time of day in 24h HH:MM format",
			}),
		},
		{
			name: "end before start", token: token, body: body(2, 1, "09:00", "08:00"), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"end_time": "must be after start_time"}),
		},
		{
			name: "slot taken", token: token, body: body(1, 1, "08:00", "09:00"), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"slot": timetable.ErrSlotExists.Error()}),
		},
		{name: "create", token: token, body: body(2, 1, "10:00", "11:00"), wantCode: http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/timetable", tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("failed! code = %v; wantCode %v; body = %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantCode == http.StatusCreated {
				var entry timetable.Entry
				if err := json.Unmarshal(rec.Body.Bytes(), &entry); err != nil {
					t.Fatalf("unmarshalling response: %v", err)
				}
				if entry.ID == "" {
					t.Error("expected an ID")
				}
				if entry.Weekday != 2 || entry.StartTime != "10:00" {
					t.Errorf("got weekday %d start %q; want weekday 2 start \"10:00\"", entry.Weekday, entry.StartTime)
				}
			} else {
				checkCodeAndData(t, tt, rec)
			}
		})
	}
}

func Test_timetableApi_query(t *testing.T) {
	resetDB(t)

	usr := testutil.CreateUser(t, usrRepo, "User", "awe", "awe@test.cd", "", []string{user.RoleStudent}, true)
	other := testutil.CreateUser(t, usrRepo, "Other", "other", "other@test.cd", "", []string{user.RoleStudent}, true)
	token := getToken(t, usr)

	math := testutil.CreateSubject(t, subjRepo, usr.ID, "Mathematics", "mth101", 0)
	chem := testutil.CreateSubject(t, subjRepo, other.ID, "Chemistry", "chm101", 0)

	mon1 := testutil.CreateEntry(t, ttRepo, usr.ID, math.ID, 1, 1, "08:00", "09:00")
	mon2 := testutil.CreateEntry(t, ttRepo, usr.ID, math.ID, 1, 2, "09:00", "10:00")
	wed := testutil.CreateEntry(t, ttRepo, usr.ID, math.ID, 3, 1, "08:00", "09:00")
	testutil.CreateEntry(t, ttRepo, other.ID, chem.ID, 1, 1, "08:00", "09:00")

	tests := []httpTest{
		{name: "Auth required", path: "/v1/timetable", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "invalid weekday", path: "/v1/timetable?weekday=7", token: token, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"weekday": "must be an integer between 0 and 6"}),
		},
		{
			name: "whole week", path: "/v1/timetable", token: token, wantCode: http.StatusOK,
			wantData: marchallList(t, mon1, mon2, wed),
		},
		{
			name: "monday only", path: "/v1/timetable?weekday=1", token: token, wantCode: http.StatusOK,
			wantData: marchallList(t, mon1, mon2),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_timetableApi_detail(t *testing.T) {
	resetDB(t)

	usr := testutil.CreateUser(t, usrRepo, "User", "awe", "awe@test.cd", "", []string{user.RoleStudent}, true)
	token := getToken(t, usr)
	math := testutil.CreateSubject(t, subjRepo, usr.ID, "Mathematics", "mth101", 0)
	entry := testutil.CreateEntry(t, ttRepo, usr.ID, math.ID, 1, 1, "08:00", "09:00")

	t.Run("retrieve", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, entry)}
		req, rec := newAuthRequest(http.MethodGet, "/v1/timetable/"+entry.ID, token)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("reschedule", func(t *testing.T) {
		body := marchallObj(t, map[string]interface{}{"start_time": "11:00", "end_time": "12:00"})
		req, rec := newAuthRequest(http.MethodPut, "/v1/timetable/"+entry.ID, token, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; body = %s", rec.Code, rec.Body.String())
		}
		var updated timetable.Entry
		if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if updated.StartTime != "11:00" || updated.EndTime != "12:00" {
			t.Errorf("got %q-%q; want \"11:00\"-\"12:00\"", updated.StartTime, updated.EndTime)
		}
		if updated.Weekday != entry.Weekday {
			t.Errorf("Weekday = %d; want unchanged %d", updated.Weekday, entry.Weekday)
		}
	})

	t.Run("destroy", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/timetable/"+entry.ID, token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("code = %v; body = %s", rec.Code, rec.Body.String())
		}
		if _, err := ttRepo.GetEntryByID(usr.ID, entry.ID); err != timetable.ErrNotFound {
			t.Errorf("expected entry to be gone, err = %v", err)
		}
	})
}
