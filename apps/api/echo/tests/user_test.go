package tests

import (
	"encoding/json"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"testing"
	"time"

	"github.com/bunkmate-io/bunkmate/core/user"
	emailsvc "github.com/bunkmate-io/bunkmate/services/email"
	testutil "github.com/bunkmate-io/bunkmate/tests"
)

func Test_userApi_login(t *testing.T) {
	resetDB(t)

	usr := testutil.CreateUser(t, usrRepo, "Awe Someone", "awesome", "awe@test.cd", "LePass123", []string{user.RoleStudent}, true)
	testutil.CreateUser(t, usrRepo, "N Dog", "ndog", "ndog@test.cd", "LePass123", []string{user.RoleStudent}, false)

	tests := []httpTest{
		{
			name: "empty body", body: []byte("{}"), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"username": "this field is required", "password": "this field is required"}),
		},
		{
			name: "unknown user", body: marchallObj(t, map[string]string{"username": "lol", "password": "lol"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "wrong password", body: marchallObj(t, map[string]string{"username": usr.Username, "password": "lol"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "deactivated account", body: marchallObj(t, map[string]string{"username": "ndog", "password": "LePass123"}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
		{name: "login with username", body: marchallObj(t, map[string]string{"username": usr.Username, "password": "LePass123"}), wantCode: http.StatusOK},
		{name: "login with email", body: marchallObj(t, map[string]string{"username": usr.Email, "password": "LePass123"}), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/login", tt.body)
			app.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("failed! code = %v; wantCode %v; body = %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantCode == http.StatusOK {
				var resp struct {
					Token string `json:"token"`
				}
				if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
					t.Fatalf("unmarshalling response: %v", err)
				}
				if resp.Token == "" {
					t.Error("expected a token")
				}
			} else {
				checkCodeAndData(t, tt, rec)
			}
		})
	}
}

func Test_userApi_register(t *testing.T) {
	resetDB(t)

	testutil.CreateUser(t, usrRepo, "Taken", "taken", "taken@test.cd", "", []string{user.RoleStudent}, true)

	tests := []httpTest{
		{
			name: "password mismatch",
			body: marchallObj(t, map[string]string{
				"name": "New Guy", "username": "newguy", "email": "new@test.cd",
				"password": "LolC@t123", "password_confirm": "nope",
			}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"password_confirm": "password_confirm must be equal to Password"}),
		},
		{
			name: "username taken",
			body: marchallObj(t, map[string]string{
				"name": "New Guy", "username": "taken", "email": "new@test.cd",
				"password": "LolC@t123", "password_confirm": "LolC@t123",
			}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"username": user.ErrUsernameExists.Error()}),
		},
		{
			name: "common password",
			body: marchallObj(t, map[string]string{
				"name": "New Guy", "username": "newguy", "email": "new@test.cd",
				"password": "P@$$w0rd", "password_confirm": "P@$$w0rd",
			}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"password": "password is too common"}),
		},
		{
			name: "register",
			body: marchallObj(t, map[string]string{
				"name": "New Guy", "username": "newguy", "email": "new@test.cd",
				"password": "LolC@t123", "password_confirm": "LolC@t123",
			}),
			wantCode: http.StatusCreated,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/register", tt.body)
			app.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("failed! code = %v; wantCode %v; body = %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantCode == http.StatusCreated {
				var usr user.User
				if err := json.Unmarshal(rec.Body.Bytes(), &usr); err != nil {
					t.Fatalf("unmarshalling response: %v", err)
				}
				if usr.ID == "" {
					t.Error("expected an ID")
				}
				if !usr.IsStudent() || usr.IsAdmin() {
					t.Errorf("self sign-up must create a student, got roles %v", usr.Roles)
				}
			} else {
				checkCodeAndData(t, tt, rec)
			}
		})
	}
}

var tokenRegex = regexp.MustCompile(`/password-reset/(?P<uid>[^/]+)/(?P<token>[^/\s"]+)`)

func Test_userApi_passwordResetFlow(t *testing.T) {
	resetDB(t)
	emailsvc.SentMessages = emailsvc.SentMessages[:0]

	usr := testutil.CreateUser(t, usrRepo, "Awe Someone", "awesome", "awe@test.cd", "LePass123", []string{user.RoleStudent}, true)

	// request a reset; unknown emails get the same response
	for _, email := range []string{"unknown@test.cd", usr.Email} {
		req, rec := newRequest(http.MethodPost, "/v1/users/password-reset", marchallObj(t, map[string]string{"email": email}))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("password-reset failed! code = %v; body = %s", rec.Code, rec.Body.String())
		}
	}

	if len(emailsvc.SentMessages) != 1 {
		t.Fatalf("expected 1 sent message, got %d", len(emailsvc.SentMessages))
	}
	match := tokenRegex.FindStringSubmatch(emailsvc.SentMessages[0].TextContent)
	if match == nil {
		t.Fatalf("no reset link in message: %s", emailsvc.SentMessages[0].TextContent)
	}
	uid, token := match[1], match[2]

	// confirm with a bad token
	req, rec := newRequest(http.MethodPost, "/v1/users/password-reset-confirm", marchallObj(t, map[string]string{
		"uid": uid, "token": "le-bad-token", "password": "NewP@ss123", "password_confirm": "NewP@ss123",
	}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("confirm with bad token: code = %v; body = %s", rec.Code, rec.Body.String())
	}

	// confirm with the real token
	req, rec = newRequest(http.MethodPost, "/v1/users/password-reset-confirm", marchallObj(t, map[string]string{
		"uid": uid, "token": token, "password": "NewP@ss123", "password_confirm": "NewP@ss123",
	}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("confirm failed! code = %v; body = %s", rec.Code, rec.Body.String())
	}

	refreshed, err := usrRepo.GetUserByID(usr.ID)
	if err != nil {
		t.Fatalf("GetUserByID() failed: %v", err)
	}
	if err := refreshed.CheckPassword("NewP@ss123"); err != nil {
		t.Error("new password not set")
	}
}

func Test_userApi_query(t *testing.T) {
	resetDB(t)

	path := func(search string, isActive *bool, roles ...string) string {
		v := make(url.Values)
		if search != "" {
			v.Add("search", search)
		}
		if isActive != nil {
			v.Add("is_active", strconv.FormatBool(*isActive))
		}
		for _, r := range roles {
			v.Add("role", r)
		}
		return "/v1/users?" + v.Encode()
	}
	bPtr := func(b bool) *bool { return &b }

	now := time.Now()
	usr1 := testutil.CreateUser(t, usrRepo, "User", "awe", "awe@test.cd", "", []string{user.RoleStudent}, true, now)
	usr2 := testutil.CreateUser(t, usrRepo, "King", "user02", "king@test.cd", "", []string{user.RoleStudent}, true, now)
	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin", "admin@test.cd", "", user.AllRoles, true, now)
	naughty := testutil.CreateUser(t, usrRepo, "N Dog", "ndog", "ndog@test.cd", "", []string{user.RoleStudent}, false, now)

	adminToken := getToken(t, admin)
	empty := marchallList(t, []interface{}{}...)

	tests := []httpTest{
		{name: "Auth required", path: "/v1/users", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Admin required", path: "/v1/users", token: getToken(t, usr1), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, errPermDenied),
		},
		{
			name: "Get all", path: "/v1/users", token: adminToken, wantCode: http.StatusOK,
			wantData: marchallList(t, usr1, usr2, admin, naughty),
		},
		{name: "search (unknown)", path: path("lol", nil), token: adminToken, wantCode: http.StatusOK, wantData: empty},
		{
			name: "search=USE", path: path("USE", nil), token: adminToken, wantCode: http.StatusOK,
			wantData: marchallList(t, usr1, usr2),
		},
		{
			name: "role=admin:", path: path("", nil, user.RoleAdmin), token: adminToken, wantCode: http.StatusOK,
			wantData: marchallList(t, admin),
		},
		{
			name: "is_active=false", path: path("", bPtr(false)), token: adminToken, wantCode: http.StatusOK,
			wantData: marchallList(t, naughty),
		},
		{
			name: "all combo", path: path("dog", bPtr(false), user.RoleStudent), token: adminToken, wantCode: http.StatusOK,
			wantData: marchallList(t, naughty),
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

func Test_userApi_detail(t *testing.T) {
	resetDB(t)

	usr := testutil.CreateUser(t, usrRepo, "User", "awesome", "awe@test.cd", "", []string{user.RoleStudent}, true)
	other := testutil.CreateUser(t, usrRepo, "Other", "other", "other@test.cd", "", []string{user.RoleStudent}, true)
	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin", "admin@test.cd", "", user.AllRoles, true)

	usrToken := getToken(t, usr)
	adminToken := getToken(t, admin)

	t.Run("retrieve self", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, usr)}
		req, rec := newAuthRequest(http.MethodGet, "/v1/users/"+usr.ID, usrToken)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("retrieve other is not found", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFoundResp)}
		req, rec := newAuthRequest(http.MethodGet, "/v1/users/"+other.ID, usrToken)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("admin retrieves other", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, other)}
		req, rec := newAuthRequest(http.MethodGet, "/v1/users/"+other.ID, adminToken)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("non-admin cannot set roles", func(t *testing.T) {
		body := marchallObj(t, map[string]interface{}{"roles": user.AllRoles})
		req, rec := newAuthRequest(http.MethodPut, "/v1/users/"+usr.ID, usrToken, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("code = %v; want %v; body = %s", rec.Code, http.StatusForbidden, rec.Body.String())
		}
	})

	t.Run("self update name", func(t *testing.T) {
		body := marchallObj(t, map[string]string{"name": "Awe Some"})
		req, rec := newAuthRequest(http.MethodPut, "/v1/users/"+usr.ID, usrToken, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; body = %s", rec.Code, rec.Body.String())
		}
		var updated user.User
		if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if updated.Name != "Awe Some" {
			t.Errorf("Name = %q; want %q", updated.Name, "Awe Some")
		}
	})

	t.Run("non-admin cannot delete", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/users/"+usr.ID, usrToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("code = %v; want %v", rec.Code, http.StatusForbidden)
		}
	})

	t.Run("admin cannot delete themselves", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/users/"+admin.ID, adminToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("code = %v; want %v", rec.Code, http.StatusForbidden)
		}
	})

	t.Run("admin deletes other", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/users/"+other.ID, adminToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("code = %v; body = %s", rec.Code, rec.Body.String())
		}
		if _, err := usrRepo.GetUserByID(other.ID); err != user.ErrNotFound {
			t.Errorf("expected user to be gone, err = %v", err)
		}
	})
}

func Test_userApi_tokenRefresh(t *testing.T) {
	resetDB(t)

	usr := testutil.CreateUser(t, usrRepo, "User", "awe", "awe@test.cd", "", []string{user.RoleStudent}, true)
	token := getToken(t, usr)

	req, rec := newAuthRequest(http.MethodPost, "/v1/users/token-refresh", token)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; body = %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}
	if resp.Token == "" {
		t.Error("expected a token")
	}
}
