package tests

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/bunkmate-io/bunkmate/core/calendar"
	"github.com/bunkmate-io/bunkmate/core/user"
	testutil "github.com/bunkmate-io/bunkmate/tests"
)

func Test_calendarApi_mark(t *testing.T) {
	resetDB(t)

	usr := testutil.CreateUser(t, usrRepo, "User", "awe", "awe@test.cd", "", []string{user.RoleStudent}, true)
	token := getToken(t, usr)

	date := time.Date(2021, 12, 25, 0, 0, 0, 0, time.UTC)
	testutil.CreateDay(t, calRepo, usr.ID, date, calendar.KindHoliday, "Christmas")

	body := func(date time.Time, kind, label string) []byte {
		return marchallObj(t, map[string]interface{}{
			"date": date.Format(time.RFC3339), "kind": kind, "label": label,
		})
	}

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "required fields", token: token, body: []byte("{}"), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"date": "this field is required", "kind": "this field is required"}),
		},
		{
			name: "invalid kind", token: token, body: body(date.AddDate(0, 0, 1), "lol", ""), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"kind": "must be one of: holiday, event, placement"}),
		},
		{
			name: "date already marked", token: token, body: body(date, calendar.KindEvent, "Tech fest"),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"date": calendar.ErrDateExists.Error()}),
		},
		{name: "mark", token: token, body: body(date.AddDate(0, 0, 1), calendar.KindEvent, "Tech fest"), wantCode: http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/calendar", tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("failed! code = %v; wantCode %v; body = %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantCode == http.StatusCreated {
				var day calendar.Day
				if err := json.Unmarshal(rec.Body.Bytes(), &day); err != nil {
					t.Fatalf("unmarshalling response: %v", err)
				}
				if day.ID == "" {
					t.Error("expected an ID")
				}
				if day.Kind != calendar.KindEvent || day.Label != "Tech fest" {
					t.Errorf("got kind %q label %q; want %q %q", day.Kind, day.Label, calendar.KindEvent, "Tech fest")
				}
			} else {
				checkCodeAndData(t, tt, rec)
			}
		})
	}
}

func Test_calendarApi_query(t *testing.T) {
	resetDB(t)

	usr := testutil.CreateUser(t, usrRepo, "User", "awe", "awe@test.cd", "", []string{user.RoleStudent}, true)
	other := testutil.CreateUser(t, usrRepo, "Other", "other", "other@test.cd", "", []string{user.RoleStudent}, true)
	token := getToken(t, usr)

	dec25 := time.Date(2021, 12, 25, 0, 0, 0, 0, time.UTC)
	xmas := testutil.CreateDay(t, calRepo, usr.ID, dec25, calendar.KindHoliday, "Christmas")
	fest := testutil.CreateDay(t, calRepo, usr.ID, dec25.AddDate(0, 0, 3), calendar.KindEvent, "Tech fest")
	newYear := testutil.CreateDay(t, calRepo, usr.ID, dec25.AddDate(0, 0, 7), calendar.KindHoliday, "New Year")
	testutil.CreateDay(t, calRepo, other.ID, dec25, calendar.KindHoliday, "Christmas")

	path := func(params map[string]string) string {
		v := make(url.Values)
		for key, val := range params {
			v.Add(key, val)
		}
		return "/v1/calendar?" + v.Encode()
	}

	tests := []httpTest{
		{name: "Auth required", path: "/v1/calendar", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "only own days", path: "/v1/calendar", token: token, wantCode: http.StatusOK,
			wantData: marchallList(t, xmas, fest, newYear),
		},
		{
			name: "by kind", path: path(map[string]string{"kind": calendar.KindHoliday}), token: token,
			wantCode: http.StatusOK, wantData: marchallList(t, xmas, newYear),
		},
		{
			name: "by date range", token: token, wantCode: http.StatusOK,
			path: path(map[string]string{
				"date_from": dec25.AddDate(0, 0, 1).Format(time.RFC3339), "date_to": dec25.AddDate(0, 0, 7).Format(time.RFC3339),
			}),
			wantData: marchallList(t, fest, newYear),
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

func Test_calendarApi_detail(t *testing.T) {
	resetDB(t)

	usr := testutil.CreateUser(t, usrRepo, "User", "awe", "awe@test.cd", "", []string{user.RoleStudent}, true)
	token := getToken(t, usr)

	date := time.Date(2021, 12, 25, 0, 0, 0, 0, time.UTC)
	day := testutil.CreateDay(t, calRepo, usr.ID, date, calendar.KindHoliday, "Christmas")

	t.Run("retrieve", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, day)}
		req, rec := newAuthRequest(http.MethodGet, "/v1/calendar/"+day.ID, token)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("relabel", func(t *testing.T) {
		body := marchallObj(t, map[string]string{"label": "Xmas break"})
		req, rec := newAuthRequest(http.MethodPut, "/v1/calendar/"+day.ID, token, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; body = %s", rec.Code, rec.Body.String())
		}
		var updated calendar.Day
		if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if updated.Label != "Xmas break" {
			t.Errorf("Label = %q; want %q", updated.Label, "Xmas break")
		}
		if updated.Kind != day.Kind {
			t.Errorf("Kind = %q; want unchanged %q", updated.Kind, day.Kind)
		}
	})

	t.Run("destroy", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/calendar/"+day.ID, token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("code = %v; body = %s", rec.Code, rec.Body.String())
		}
		if _, err := calRepo.GetDayByID(usr.ID, day.ID); err != calendar.ErrNotFound {
			t.Errorf("expected day to be gone, err = %v", err)
		}
	})
}
