package franchise_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tawkr/tawkr-backend/internal/franchise"
	"github.com/tawkr/tawkr-backend/internal/middleware"
	"github.com/tawkr/tawkr-backend/internal/seeds"
	"github.com/tawkr/tawkr-backend/internal/sessions"
	"github.com/tawkr/tawkr-backend/internal/store"
	"github.com/tawkr/tawkr-backend/internal/utils"
)

func TestFranchiseRoutes(t *testing.T) {
	repo, err := store.NewMemory(seeds.Dataset{Franchises: []franchise.Franchise{
		{ID: 1, Name: "Franchise Bordeaux", Contact: "bordeaux@tawkr.com", Region: "NOUVELLE-AQUITAINE"},
		{ID: 2, Name: "Franchise Toulouse", Contact: "toulouse@tawkr.com", Region: "OCCITANIE"},
	}})
	require.NoError(t, err)
	ss := sessions.NewMemoryStore()
	srv := httptest.NewServer(franchise.SetupRoutes(&franchise.Handler{Repo: repo}, ss))
	defer srv.Close()

	cookie := func(role string, fid *uint) *http.Cookie {
		s := sessions.New(1, "user@tawkr.com", role, fid, time.Hour)
		require.NoError(t, ss.Create(context.Background(), s))
		return &http.Cookie{Name: middleware.SessionCookieName, Value: s.SessionID}
	}
	get := func(path string, c *http.Cookie) *http.Response {
		req, err := http.NewRequest(http.MethodGet, srv.URL+path, nil)
		require.NoError(t, err)
		req.AddCookie(c)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		t.Cleanup(func() { resp.Body.Close() })
		return resp
	}

	admin := cookie(utils.RoleAdmin, nil)
	resp := get("/", admin)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var fs []franchise.Franchise
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&fs))
	assert.Len(t, fs, 2)
	assert.Equal(t, http.StatusOK, get("/2", admin).StatusCode)
	assert.Equal(t, http.StatusNotFound, get("/9", admin).StatusCode)

	bordeaux := cookie(utils.RoleFranchise, utils.UintPtr(1))
	assert.Equal(t, http.StatusForbidden, get("/", bordeaux).StatusCode)
	assert.Equal(t, http.StatusForbidden, get("/2", bordeaux).StatusCode)

	resp = get("/1", bordeaux)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var own franchise.Franchise
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&own))
	assert.Equal(t, "Franchise Bordeaux", own.Name)
}
