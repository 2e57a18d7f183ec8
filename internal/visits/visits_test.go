package visits

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachkp/portfolio/internal/content/sqlstore"
	"github.com/Zachkp/portfolio/internal/querycache"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := sqlstore.Open("file:visits_" + name + "?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	store := NewStore(db)
	require.NoError(t, store.Migrate(context.Background()))
	return store
}

type memRecorder struct {
	mu     sync.Mutex
	visits []Visit
}

func (m *memRecorder) Record(_ context.Context, v Visit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.visits = append(m.visits, v)
	return nil
}

func (m *memRecorder) all() []Visit {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Visit(nil), m.visits...)
}

func TestHashIP(t *testing.T) {
	a := NewTracker(nil, "salt-a", nil, nil)
	b := NewTracker(nil, "salt-b", nil, nil)

	h := a.HashIP("198.51.100.1")
	assert.Len(t, h, 16)
	assert.Equal(t, h, a.HashIP("198.51.100.1"))
	assert.NotEqual(t, h, a.HashIP("198.51.100.2"))
	assert.NotEqual(t, h, b.HashIP("198.51.100.1"))
	assert.NotContains(t, h, "198")
}

func TestMiddleware(t *testing.T) {
	rec := &memRecorder{}
	tracker := NewTracker(rec, "s", nil, nil)

	r := gin.New()
	r.Use(tracker.Middleware())
	ok := func(c *gin.Context) { c.String(http.StatusOK, "ok") }
	r.GET("/", ok)
	r.GET("/projects", ok)
	r.GET("/static/app.css", ok)
	r.GET("/admin/api/stats", ok)
	r.POST("/contact", ok)

	do := func(method, path string, header map[string]string) {
		req := httptest.NewRequest(method, path, nil)
		req.RemoteAddr = "192.0.2.10:5555"
		for k, v := range header {
			req.Header.Set(k, v)
		}
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	do(http.MethodGet, "/", map[string]string{"User-Agent": "test-agent"})
	do(http.MethodGet, "/projects", map[string]string{"DNT": "1"})
	do(http.MethodGet, "/static/app.css", nil)
	do(http.MethodGet, "/admin/api/stats", nil)
	do(http.MethodGet, "/missing", nil)
	do(http.MethodPost, "/contact", nil)
	tracker.Wait()

	got := rec.all()
	require.Len(t, got, 1)
	assert.Equal(t, "/", got[0].Path)
	assert.Equal(t, "test-agent", got[0].UserAgent)
	assert.Equal(t, tracker.HashIP("192.0.2.10"), got[0].HashedIP)
}

func TestStore_StatsAndCleanup(t *testing.T) {
	store := newTestStore(t)
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	seed := []Visit{
		{HashedIP: "aaaa", Path: "/", Timestamp: now.Add(-time.Hour)},
		{HashedIP: "aaaa", Path: "/projects", Timestamp: now.Add(-2 * time.Hour)},
		{HashedIP: "bbbb", Path: "/", Timestamp: now.Add(-3 * 24 * time.Hour)},
		{HashedIP: "cccc", Path: "/about", Timestamp: now.Add(-400 * 24 * time.Hour)},
	}
	for _, v := range seed {
		require.NoError(t, store.Record(ctx, v))
	}

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.TotalVisits)
	assert.Equal(t, int64(3), stats.UniqueVisitors)
	assert.Equal(t, int64(2), stats.VisitsToday)
	assert.Equal(t, int64(3), stats.VisitsThisWeek)
	require.NotEmpty(t, stats.TopPaths)
	assert.Equal(t, PathStat{Path: "/", Views: 2}, stats.TopPaths[0])
	require.Len(t, stats.RecentVisits, 4)
	assert.Equal(t, "/", stats.RecentVisits[0].Path)
	assert.Equal(t, "aaaa", stats.RecentVisits[0].HashedIP)

	deleted, err := store.Cleanup(ctx, 365*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	recent, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, recent, 3)
}

type fakeRefresher struct{ calls int }

func (f *fakeRefresher) InvalidateAll() []querycache.Key {
	f.calls++
	return []querycache.Key{"projects"}
}

func newAdminRouter(t *testing.T, refresher ContentRefresher) (*gin.Engine, *Store) {
	t.Helper()
	store := newTestStore(t)
	tracker := NewTracker(store, "s", nil, nil)
	admin := NewAdmin(store, tracker, refresher, AdminOptions{
		Username: "admin",
		Password: "correct horse",
		Token:    "tok-123",
	})
	r := gin.New()
	admin.Register(r)
	return r, store
}

func TestAdmin_RequiresAuth(t *testing.T) {
	r, _ := newAdminRouter(t, nil)
	for _, path := range []string{"/admin/api/stats", "/admin/api/visitors", "/admin/api/export/stats"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/api/stats", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdmin_LoginSetsCookie(t *testing.T) {
	r, _ := newAdminRouter(t, nil)

	form := url.Values{"username": {"admin"}, "password": {"nope"}}
	req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	form.Set("password", "correct horse")
	req = httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, tokenCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	req = httptest.NewRequest(http.MethodGet, "/admin/api/stats", nil)
	req.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdmin_StatsAndExport(t *testing.T) {
	r, store := newAdminRouter(t, nil)
	require.NoError(t, store.Record(context.Background(), Visit{HashedIP: "h", Path: "/"}))

	req := httptest.NewRequest(http.MethodGet, "/admin/api/stats", nil)
	req.Header.Set("Authorization", "Bearer tok-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var stats Stats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, int64(1), stats.TotalVisits)

	req = httptest.NewRequest(http.MethodGet, "/admin/api/export/stats", nil)
	req.Header.Set("Authorization", "Bearer tok-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "admin-stats.json")
}

func TestAdmin_VisitorsLimit(t *testing.T) {
	r, _ := newAdminRouter(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/admin/api/visitors?limit=0", nil)
	req.Header.Set("Authorization", "Bearer tok-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdmin_RefreshContent(t *testing.T) {
	refresher := &fakeRefresher{}
	r, _ := newAdminRouter(t, refresher)

	req := httptest.NewRequest(http.MethodPost, "/admin/api/content/refresh", nil)
	req.Header.Set("Authorization", "Bearer tok-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, refresher.calls)
	assert.JSONEq(t, `{"invalidated":["projects"]}`, w.Body.String())
}

func TestAdmin_LoginDisabledWithoutCredentials(t *testing.T) {
	store := newTestStore(t)
	admin := NewAdmin(store, NewTracker(store, "s", nil, nil), nil, AdminOptions{})
	assert.False(t, admin.LoginEnabled())

	r := gin.New()
	admin.Register(r)
	req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(`{"username":"admin","password":"admin123"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
