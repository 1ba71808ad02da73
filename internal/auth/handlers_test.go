package auth_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tawkr/tawkr-backend/internal/auth"
	"github.com/tawkr/tawkr-backend/internal/domain"
	"github.com/tawkr/tawkr-backend/internal/franchise"
	"github.com/tawkr/tawkr-backend/internal/metrics"
	"github.com/tawkr/tawkr-backend/internal/middleware"
	"github.com/tawkr/tawkr-backend/internal/seeds"
	"github.com/tawkr/tawkr-backend/internal/sessions"
	"github.com/tawkr/tawkr-backend/internal/store"
	"github.com/tawkr/tawkr-backend/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

func hash(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

type authFixture struct {
	srv     *httptest.Server
	handler *auth.Handler
	metrics *metrics.Metrics
}

func newAuthFixture(t *testing.T, limiter *middleware.RateLimiter) *authFixture {
	t.Helper()
	name := "Franchise Bordeaux"
	repo, err := store.NewMemory(seeds.Dataset{
		Franchises: []franchise.Franchise{{ID: 1, Name: name}},
		Users: []auth.User{
			{ID: 1, Email: "admin@tawkr.com", HashedPassword: hash(t, "admin123"), Role: utils.RoleAdmin},
			{ID: 2, Email: "franchise.bordeaux@tawkr.com", HashedPassword: hash(t, "franchise123"), Role: utils.RoleFranchise, FranchiseID: utils.UintPtr(1), FranchiseName: &name},
		},
	})
	require.NoError(t, err)

	if limiter == nil {
		limiter = middleware.NewRateLimiter(6000, 1000)
	}
	ss := sessions.NewMemoryStore()
	m := metrics.New()
	h := &auth.Handler{Users: repo, Sessions: ss, Metrics: m, SessionTTL: time.Hour}

	r := chi.NewRouter()
	r.Mount("/auth", auth.SetupRoutes(h, ss, limiter))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &authFixture{srv: srv, handler: h, metrics: m}
}

func (f *authFixture) client(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func (f *authFixture) login(t *testing.T, c *http.Client, body string) (*http.Response, string) {
	t.Helper()
	resp, err := c.Post(f.srv.URL+"/auth/login", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(b)
}

func sessionCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == middleware.SessionCookieName {
			return c
		}
	}
	return nil
}

func TestLogin_Admin(t *testing.T) {
	f := newAuthFixture(t, nil)
	c := f.client(t)

	resp, body := f.login(t, c, `{"email":"Admin@Tawkr.com","password":"admin123"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)

	var out auth.LoginResponse
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	assert.Equal(t, utils.RoleAdmin, out.User.Role)
	assert.Equal(t, "admin@tawkr.com", out.User.Email)
	assert.Nil(t, out.User.FranchiseID)
	assert.Equal(t, "/dashboard", out.Redirect)
	assert.NotContains(t, body, "password")

	cookie := sessionCookie(resp)
	require.NotNil(t, cookie)
	assert.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)

	me, err := c.Get(f.srv.URL + "/auth/me")
	require.NoError(t, err)
	defer me.Body.Close()
	require.Equal(t, http.StatusOK, me.StatusCode)
	var who auth.MeResponse
	require.NoError(t, json.NewDecoder(me.Body).Decode(&who))
	assert.Equal(t, uint(1), who.ID)
}

func TestLogin_Franchise(t *testing.T) {
	f := newAuthFixture(t, nil)

	resp, body := f.login(t, f.client(t), `{"email":"franchise.bordeaux@tawkr.com","password":"franchise123"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)

	var out auth.LoginResponse
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	assert.Equal(t, utils.RoleFranchise, out.User.Role)
	require.NotNil(t, out.User.FranchiseID)
	assert.Equal(t, uint(1), *out.User.FranchiseID)
	require.NotNil(t, out.User.FranchiseName)
	assert.Equal(t, "Franchise Bordeaux", *out.User.FranchiseName)
}

func TestLogin_InvalidCredentialsLookAlike(t *testing.T) {
	f := newAuthFixture(t, nil)

	wrongPass, wrongBody := f.login(t, f.client(t), `{"email":"admin@tawkr.com","password":"wrongpass"}`)
	unknown, unknownBody := f.login(t, f.client(t), `{"email":"nobody@tawkr.com","password":"admin123"}`)

	for _, resp := range []*http.Response{wrongPass, unknown} {
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Nil(t, sessionCookie(resp))
	}
	assert.Equal(t, "Invalid Credentials\n", wrongBody)
	assert.Equal(t, wrongBody, unknownBody)

	rec := httptest.NewRecorder()
	f.metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `tawkr_login_attempts_total{outcome="invalid"} 2`)
}

func TestLogin_BadRequests(t *testing.T) {
	f := newAuthFixture(t, nil)

	for _, body := range []string{
		`{"email":"admin@tawkr.com"}`,
		`{"password":"admin123"}`,
		`{"email":"","password":""}`,
	} {
		resp, msg := f.login(t, f.client(t), body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
		assert.Equal(t, "Email and password are required\n", msg)
	}

	resp, _ := f.login(t, f.client(t), `not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLogout(t *testing.T) {
	f := newAuthFixture(t, nil)
	c := f.client(t)

	resp, body := f.login(t, c, `{"email":"admin@tawkr.com","password":"admin123"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)

	out, err := c.Post(f.srv.URL+"/auth/logout", "application/json", nil)
	require.NoError(t, err)
	msg, err := io.ReadAll(out.Body)
	out.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, out.StatusCode)
	assert.Equal(t, "Logout successful\n", string(msg))
	cleared := sessionCookie(out)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.Equal(t, -1, cleared.MaxAge)

	req, err := http.NewRequest(http.MethodGet, f.srv.URL+"/auth/me", nil)
	require.NoError(t, err)
	req.AddCookie(sessionCookie(resp))
	me, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	me.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, me.StatusCode, "the old cookie no longer opens a session")
}

func TestLogin_RateLimited(t *testing.T) {
	f := newAuthFixture(t, middleware.NewRateLimiter(1, 2))
	c := f.client(t)

	for i := 0; i < 2; i++ {
		resp, _ := f.login(t, c, `{"email":"admin@tawkr.com","password":"wrongpass"}`)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}
	resp, _ := f.login(t, c, `{"email":"admin@tawkr.com","password":"admin123"}`)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))
}

func TestAuthenticate_DelayHonoursContext(t *testing.T) {
	f := newAuthFixture(t, nil)
	h := *f.handler
	h.LoginDelay = time.Minute

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := h.Authenticate(ctx, "admin@tawkr.com", "admin123")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 10*time.Second)
}

func TestAuthenticate(t *testing.T) {
	f := newAuthFixture(t, nil)

	u, err := f.handler.Authenticate(context.Background(), "  ADMIN@tawkr.com ", "admin123")
	require.NoError(t, err)
	assert.Equal(t, uint(1), u.ID)

	_, err = f.handler.Authenticate(context.Background(), "admin@tawkr.com", "Admin123")
	assert.Equal(t, domain.ErrCodeUnauthorized, domain.CodeOf(err))
}
