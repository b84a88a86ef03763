package identity

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taarez/taarez-backend/internal/domain"
	"github.com/taarez/taarez-backend/internal/pkg/httputil"
)

type testAPI struct {
	router  http.Handler
	repo    *mockRepository
	service *Service
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	repo := newMockRepository()
	service := newTestService(t, repo)
	handler := NewHandler(service)

	noLimit := func(next http.Handler) http.Handler { return next }

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		handler.RegisterRoutes(r, noLimit)

		r.Group(func(r chi.Router) {
			r.Use(httputil.AuthMiddleware(service))
			handler.RegisterProtectedRoutes(r)

			r.Group(func(r chi.Router) {
				r.Use(httputil.RequireRole(domain.RoleAdmin))
				handler.RegisterAdminRoutes(r)
			})
		})
	})

	return &testAPI{router: r, repo: repo, service: service}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) login(t *testing.T, path, email, pass string) *httptest.ResponseRecorder {
	t.Helper()

	form := url.Values{"username": {email}, "password": {pass}}
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) tokenFor(t *testing.T, email, pass string) string {
	t.Helper()

	rec := a.login(t, "/api/v1/auth/login", email, pass)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var token Token
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &token))
	return token.AccessToken
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, v))
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope.Error.Message
}

func TestRegisterLoginMe(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":    "a@example.com",
		"password": "pw123456",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created map[string]interface{}
	decodeData(t, rec, &created)
	assert.Equal(t, "a@example.com", created["email"])
	assert.Equal(t, "customer", created["role"])
	assert.Equal(t, true, created["is_active"])
	assert.Equal(t, false, created["is_superuser"])
	assert.NotContains(t, created, "hashed_password")

	loginRec := api.login(t, "/api/v1/auth/login", "a@example.com", "pw123456")
	require.Equal(t, http.StatusOK, loginRec.Code)
	assert.Equal(t, "no-store", loginRec.Header().Get("Cache-Control"))

	var token Token
	require.NoError(t, json.Unmarshal(loginRec.Body.Bytes(), &token))
	assert.Equal(t, "bearer", token.TokenType)
	require.NotEmpty(t, token.AccessToken)

	for _, path := range []string{"/api/v1/users/me", "/api/v1/me"} {
		meRec := api.do(t, http.MethodGet, path, token.AccessToken, nil)
		require.Equal(t, http.StatusOK, meRec.Code, path)

		var me domain.User
		decodeData(t, meRec, &me)
		assert.Equal(t, "a@example.com", me.Email)
		assert.Equal(t, domain.RoleCustomer, me.Role)
	}

	dupRec := api.do(t, http.MethodPost, "/api/v1/users/", "", map[string]string{
		"email":    "a@example.com",
		"password": "another-pass",
	})
	assert.Equal(t, http.StatusBadRequest, dupRec.Code)
	assert.Equal(t, "Email already registered", errorMessage(t, dupRec))
}

func TestRegister_IgnoresClientRole(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]interface{}{
		"email":        "sneaky@example.com",
		"password":     "pw123456",
		"role":         "admin",
		"is_superuser": true,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created domain.User
	decodeData(t, rec, &created)
	assert.Equal(t, domain.RoleCustomer, created.Role)
	assert.False(t, created.IsSuperuser)
}

func TestRegister_Validation(t *testing.T) {
	api := newTestAPI(t)

	tests := []struct {
		name string
		body interface{}
	}{
		{"missing email", map[string]string{"password": "pw123456"}},
		{"bad email", map[string]string{"email": "not-an-email", "password": "pw123456"}},
		{"short password", map[string]string{"email": "s@example.com", "password": "short"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := api.do(t, http.MethodPost, "/api/v1/auth/register", "", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "validation error", errorMessage(t, rec))
		})
	}

	t.Run("invalid json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader("{"))
		rec := httptest.NewRecorder()
		api.router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestLogin_Failures(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":    "a@example.com",
		"password": "pw123456",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	tests := []struct {
		name  string
		email string
		pass  string
	}{
		{"unknown email", "nobody@example.com", "pw123456"},
		{"wrong password", "a@example.com", "wrong-password"},
	}

	for _, tt := range tests {
		for _, path := range []string{"/api/v1/auth/login", "/api/v1/login/access-token"} {
			t.Run(tt.name+" "+path, func(t *testing.T) {
				rec := api.login(t, path, tt.email, tt.pass)
				assert.Equal(t, http.StatusUnauthorized, rec.Code)
				assert.Equal(t, "Incorrect email or password", errorMessage(t, rec))
				assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
			})
		}
	}

	t.Run("missing fields", func(t *testing.T) {
		rec := api.login(t, "/api/v1/auth/login", "", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/v1/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Not authenticated", errorMessage(t, rec))

	rec = api.do(t, http.MethodGet, "/api/v1/users/me", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Could not validate credentials", errorMessage(t, rec))
}

func TestAdminRoutes(t *testing.T) {
	api := newTestAPI(t)
	ctx := t.Context()

	customer, err := api.service.Register(ctx, RegisterInput{Email: "c@example.com", Password: "pw123456"})
	require.NoError(t, err)
	_, err = api.service.CreateUser(ctx, CreateUserInput{
		Email:       "root@example.com",
		Password:    "pw123456",
		Role:        domain.RoleAdmin,
		IsSuperuser: true,
	})
	require.NoError(t, err)
	_, err = api.service.CreateUser(ctx, CreateUserInput{
		Email:    "fake-admin@example.com",
		Password: "pw123456",
		Role:     domain.RoleAdmin,
	})
	require.NoError(t, err)

	customerToken := api.tokenFor(t, "c@example.com", "pw123456")
	rootToken := api.tokenFor(t, "root@example.com", "pw123456")
	fakeAdminToken := api.tokenFor(t, "fake-admin@example.com", "pw123456")

	t.Run("customer is forbidden", func(t *testing.T) {
		rec := api.do(t, http.MethodGet, "/api/v1/users", customerToken, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "The user does not have administrative privileges", errorMessage(t, rec))
	})

	t.Run("admin role without superuser is forbidden", func(t *testing.T) {
		rec := api.do(t, http.MethodGet, "/api/v1/users", fakeAdminToken, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("superuser lists users", func(t *testing.T) {
		rec := api.do(t, http.MethodGet, "/api/v1/users", rootToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var users []domain.User
		decodeData(t, rec, &users)
		assert.Len(t, users, 3)
	})

	t.Run("superuser promotes customer to designer", func(t *testing.T) {
		rec := api.do(t, http.MethodPatch, "/api/v1/users/"+customer.ID, rootToken, map[string]string{
			"role": "designer",
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var updated domain.User
		decodeData(t, rec, &updated)
		assert.Equal(t, domain.RoleDesigner, updated.Role)

		// The role is re-read on every request.
		meRec := api.do(t, http.MethodGet, "/api/v1/users/me", customerToken, nil)
		var me domain.User
		decodeData(t, meRec, &me)
		assert.Equal(t, domain.RoleDesigner, me.Role)
	})

	t.Run("unknown role rejected", func(t *testing.T) {
		rec := api.do(t, http.MethodPatch, "/api/v1/users/"+customer.ID, rootToken, map[string]string{
			"role": "owner",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("deactivation revokes access", func(t *testing.T) {
		rec := api.do(t, http.MethodPatch, "/api/v1/users/"+customer.ID, rootToken, map[string]bool{
			"is_active": false,
		})
		require.Equal(t, http.StatusOK, rec.Code)

		meRec := api.do(t, http.MethodGet, "/api/v1/users/me", customerToken, nil)
		assert.Equal(t, http.StatusUnauthorized, meRec.Code)
		assert.Equal(t, "Could not validate credentials", errorMessage(t, meRec))
	})

	t.Run("malformed and unknown ids are not found", func(t *testing.T) {
		rec := api.do(t, http.MethodGet, "/api/v1/users/not-a-uuid", rootToken, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)

		rec = api.do(t, http.MethodGet, "/api/v1/users/4f1a3c9e-0000-4000-8000-000000000000", rootToken, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "User not found", errorMessage(t, rec))
	})
}
