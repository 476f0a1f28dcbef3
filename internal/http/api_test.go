package http_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/recharge-backend/internal/app"
	"github.com/yungbote/recharge-backend/internal/data/repos/testutil"
	"github.com/yungbote/recharge-backend/internal/domain/catalog"
)

const adminEmail = "admin@example.com"

func newTestApp(t *testing.T) *app.App {
	t.Helper()
	cfg := app.Config{
		DBDriver:            "sqlite",
		SQLitePath:          testutil.SQLiteDSN(),
		DBCallTimeout:       5 * time.Second,
		AdminEmails:         []string{adminEmail},
		AdminIdentityHeader: "X-User-Email",
		LevelThreshold:      100,
		TierMax:             5,
		SeedOnBoot:          true,
		MetricsEnabled:      true,
	}
	require.NoError(t, cfg.Validate())
	a, err := app.NewWithLogger(context.Background(), cfg, testutil.Logger(t))
	require.NoError(t, err)
	t.Cleanup(a.Close)
	require.NoError(t, a.Start(context.Background()))
	return a
}

type call struct {
	method string
	path   string
	body   any
	admin  bool
}

func do(t *testing.T, a *app.App, c call) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	if c.body != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(c.body))
	}
	req := httptest.NewRequest(c.method, c.path, &body)
	req.Header.Set("Content-Type", "application/json")
	if c.admin {
		req.Header.Set("X-User-Email", adminEmail)
	}
	w := httptest.NewRecorder()
	a.Server.Engine.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

type userJSON struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	ProfessionSlug *string   `json:"profession_slug"`
}

func createUser(t *testing.T, a *app.App, email string) userJSON {
	t.Helper()
	w := do(t, a, call{method: http.MethodPost, path: "/api/users", body: map[string]any{"email": email, "name": "Test"}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[userJSON](t, w)
}

func TestHealthcheckAndMetrics(t *testing.T) {
	a := newTestApp(t)

	w := do(t, a, call{method: http.MethodGet, path: "/healthcheck"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, a, call{method: http.MethodGet, path: "/metrics"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "rc_")
}

func TestListProfessionsFromSeed(t *testing.T) {
	a := newTestApp(t)

	w := do(t, a, call{method: http.MethodGet, path: "/api/professions"})
	require.Equal(t, http.StatusOK, w.Code)
	rows := decode[[]map[string]any](t, w)
	assert.Len(t, rows, 15)
}

func TestQuestListFallsBackToSeedThenPrefersAdmin(t *testing.T) {
	a := newTestApp(t)

	w := do(t, a, call{method: http.MethodGet, path: "/api/professions/infirmier/quests"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "seed_fallback", w.Header().Get("X-Quest-Set-Source"))
	quests := decode[[]map[string]any](t, w)
	require.Len(t, quests, 2)
	assert.Equal(t, "Hydratation 2L au service", quests[0]["title"])
	assert.Equal(t, catalog.SeedQuestID("infirmier", "Hydratation 2L au service").Key(), quests[0]["id"])

	w = do(t, a, call{method: http.MethodPost, path: "/api/admin/quests", admin: true, body: map[string]any{
		"profession_slug": "infirmier",
		"title":           "Pause respiration 5 min",
		"points_reward":   20,
		"level":           1,
		"type":            "daily",
	}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, a, call{method: http.MethodGet, path: "/api/professions/infirmier/quests"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin_defined", w.Header().Get("X-Quest-Set-Source"))
	quests = decode[[]map[string]any](t, w)
	require.Len(t, quests, 1)
	assert.Equal(t, "Pause respiration 5 min", quests[0]["title"])
}

func TestUnknownProfessionIs404(t *testing.T) {
	a := newTestApp(t)

	w := do(t, a, call{method: http.MethodGet, path: "/api/professions/astronaute/quests"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminRoutesRequireAdminIdentity(t *testing.T) {
	a := newTestApp(t)
	body := map[string]any{"slug": "podologue", "label": "Podologue"}

	w := do(t, a, call{method: http.MethodPost, path: "/api/admin/professions", body: body})
	assert.Equal(t, http.StatusForbidden, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/professions", strings.NewReader(`{"slug":"x","label":"X"}`))
	req.Header.Set("X-User-Email", "someone@example.com")
	rec := httptest.NewRecorder()
	a.Server.Engine.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	w = do(t, a, call{method: http.MethodPost, path: "/api/admin/professions", body: body, admin: true})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, a, call{method: http.MethodPost, path: "/api/admin/professions", body: body, admin: true})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestEnsureUserIsIdempotent(t *testing.T) {
	a := newTestApp(t)
	u := createUser(t, a, "Nurse@Example.com")
	assert.Equal(t, "nurse@example.com", u.Email)

	w := do(t, a, call{method: http.MethodPost, path: "/api/users", body: map[string]any{"email": "nurse@example.com"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, u.ID, decode[userJSON](t, w).ID)

	w = do(t, a, call{method: http.MethodPost, path: "/api/users", body: map[string]any{"email": "not-an-email"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAssignQuestsIdempotentAndLegacy(t *testing.T) {
	a := newTestApp(t)
	u := createUser(t, a, "kine@example.com")
	path := "/api/professions/kine/assign-quests/" + u.ID.String()

	w := do(t, a, call{method: http.MethodPost, path: path + "?idempotent=true"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 2, decode[map[string]any](t, w)["assigned"])

	w = do(t, a, call{method: http.MethodPost, path: path + "?idempotent=true"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, decode[map[string]any](t, w)["assigned"])

	// Default is the legacy mode, which appends copies.
	w = do(t, a, call{method: http.MethodPost, path: path})
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, decode[map[string]any](t, w)["assigned"])

	w = do(t, a, call{method: http.MethodGet, path: "/api/users/" + u.ID.String() + "/quests"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, w), 4)

	w = do(t, a, call{method: http.MethodPost, path: path + "?idempotent=maybe"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, a, call{method: http.MethodPost, path: "/api/professions/kine/assign-quests/" + uuid.NewString()})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCompleteQuestAwardsOnce(t *testing.T) {
	a := newTestApp(t)
	u := createUser(t, a, "ide@example.com")

	w := do(t, a, call{method: http.MethodPost, path: "/api/professions/infirmier/assign-quests/" + u.ID.String() + "?idempotent=true"})
	require.Equal(t, http.StatusOK, w.Code)

	questID := catalog.SeedQuestID("infirmier", "Hydratation 2L au service").Key()
	completePath := "/api/quests/" + questID + "/complete"
	body := map[string]any{"user_id": u.ID.String()}

	w = do(t, a, call{method: http.MethodPost, path: completePath, body: body})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	first := decode[map[string]any](t, w)
	assert.EqualValues(t, 10, first["awarded_xp"])
	assert.EqualValues(t, 10, first["new_progression_xp"])
	assert.Equal(t, false, first["level_up"])

	w = do(t, a, call{method: http.MethodPost, path: completePath, body: body})
	require.Equal(t, http.StatusOK, w.Code)
	second := decode[map[string]any](t, w)
	assert.EqualValues(t, 0, second["awarded_xp"])
	assert.EqualValues(t, 10, second["new_progression_xp"])

	w = do(t, a, call{method: http.MethodGet, path: "/api/professions/infirmier/progression/full?user_id=" + u.ID.String()})
	require.Equal(t, http.StatusOK, w.Code)
	full := decode[map[string]any](t, w)
	assert.EqualValues(t, 1, full["progression_niveau"])
	assert.EqualValues(t, 10, full["xp_total"])

	w = do(t, a, call{method: http.MethodGet, path: "/api/users/" + u.ID.String() + "/progression-events"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, w), 1)
}

func TestCompleteQuestErrors(t *testing.T) {
	a := newTestApp(t)
	u := createUser(t, a, "err@example.com")

	w := do(t, a, call{method: http.MethodPost, path: "/api/quests/garbage/complete", body: map[string]any{"user_id": u.ID.String()}})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, a, call{method: http.MethodPost, path: "/api/quests/" + uuid.NewString() + "/complete", body: map[string]any{"user_id": u.ID.String()}})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, a, call{method: http.MethodPost, path: "/api/quests/" + uuid.NewString() + "/complete", body: map[string]any{"user_id": "nope"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProgressionDefaultsWithoutUser(t *testing.T) {
	a := newTestApp(t)

	w := do(t, a, call{method: http.MethodGet, path: "/api/professions/infirmier/progression/full"})
	require.Equal(t, http.StatusOK, w.Code)
	full := decode[map[string]any](t, w)
	assert.EqualValues(t, 1, full["progression_niveau"])
	assert.EqualValues(t, 0, full["progression_xp"])
	assert.Equal(t, "Infirmier·ère", full["profession_label"])

	w = do(t, a, call{method: http.MethodGet, path: "/api/professions/infirmier/progression/full?user_id=bad"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEventStreamDeliversCompletion(t *testing.T) {
	a := newTestApp(t)
	u := createUser(t, a, "stream@example.com")

	srv := httptest.NewServer(a.Server.Engine)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/users/"+u.ID.String()+"/events", nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	w := do(t, a, call{method: http.MethodPost, path: "/api/professions/infirmier/assign-quests/" + u.ID.String() + "?idempotent=true"})
	require.Equal(t, http.StatusOK, w.Code)

	scanner := bufio.NewScanner(resp.Body)
	var got string
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "event: ") {
			got = strings.TrimPrefix(line, "event: ")
			break
		}
	}
	assert.Equal(t, "quests.assigned", got)
}

func TestEventStreamUnknownUser(t *testing.T) {
	a := newTestApp(t)

	w := do(t, a, call{method: http.MethodGet, path: "/api/users/" + uuid.NewString() + "/events"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
