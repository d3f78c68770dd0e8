package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/mauv0809/matchdesk/internal/clock"
	"github.com/mauv0809/matchdesk/internal/config"
	"github.com/mauv0809/matchdesk/internal/controller"
	"github.com/mauv0809/matchdesk/internal/database"
	"github.com/mauv0809/matchdesk/internal/events"
	"github.com/mauv0809/matchdesk/internal/match"
	"github.com/mauv0809/matchdesk/internal/metrics"
	"github.com/mauv0809/matchdesk/internal/notifier"
	"github.com/mauv0809/matchdesk/internal/pubsub"
	"github.com/mauv0809/matchdesk/internal/scheduler"
	"github.com/mauv0809/matchdesk/internal/store"
	"github.com/mauv0809/matchdesk/internal/view"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestServer initializes a new server with a test database and mock clients.
func setupTestServer(t *testing.T, n notifier.Notifier) *Server {
	t.Helper()

	db, teardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)
	t.Cleanup(teardown)

	reg := prometheus.NewRegistry()
	metricsSvc := metrics.NewService(reg)
	metricsHandler := metrics.NewMetricsHandler(reg)
	counters := metrics.New(db)

	fc := clockwork.NewFakeClockAt(time.Date(2026, 10, 19, 14, 0, 0, 0, time.UTC))
	rules := clock.DefaultRules()
	ctrl := controller.New(controller.Options{
		ObserverID: "test",
		Rules:      rules,
		Store:      store.NewMatchStore(store.New(db), rules),
		Bus:        pubsub.NewMemory(),
		Scheduler:  scheduler.New(fc, scheduler.DefaultInterval),
		Clock:      fc,
		Metrics:    metricsSvc,
		Counters:   counters,
		Notifier:   n,
	})
	require.NoError(t, ctrl.Load(context.Background()))
	t.Cleanup(ctrl.Close)

	server := NewServer(ctrl, metricsSvc, metricsHandler, counters, config.Config{})
	ctx, cancel := context.WithCancel(context.Background())
	go server.Hub.Run(ctx)
	t.Cleanup(cancel)
	return server
}

func do(t *testing.T, server *Server, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, target, &buf)
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func configureBody() configureRequest {
	team := func(name, prefix string) match.Team {
		return match.Team{Name: name, Color: "#112233", Players: []match.Player{
			{ID: prefix + "1", Name: name + " One", Number: 1, Starter: true},
			{ID: prefix + "2", Name: name + " Two", Number: 2, Starter: true},
			{ID: prefix + "3", Name: name + " Three", Number: 3},
		}}
	}
	return configureRequest{Home: team("Lions", "h"), Away: team("Tigers", "a")}
}

func configured(t *testing.T, server *Server) match.Record {
	t.Helper()
	rr := do(t, server, http.MethodPost, "/match/configure", configureBody())
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decodeBody[match.Record](t, rr)
}

func TestHealthCheckHandler(t *testing.T) {
	server := setupTestServer(t, notifier.NewMock())

	rr := do(t, server, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code, "handler returned wrong status code")
	assert.Equal(t, "OK!", rr.Body.String(), "handler returned unexpected body")
}

func TestCurrentMatch_DefaultIsUnconfigured(t *testing.T) {
	server := setupTestServer(t, notifier.NewMock())

	rr := do(t, server, http.MethodGet, "/match", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	rec := decodeBody[match.Record](t, rr)
	assert.Equal(t, match.StatusUnconfigured, rec.Status)
}

func TestConfigureHandler(t *testing.T) {
	server := setupTestServer(t, notifier.NewMock())
	rec := configured(t, server)
	assert.Equal(t, match.StatusActive, rec.Status)
	assert.Equal(t, "Lions", rec.Home.Name)

	rr := do(t, server, http.MethodPost, "/match/configure", configureBody())
	assert.Equal(t, http.StatusBadRequest, rr.Code, "a second configure is rejected")

	rr = do(t, server, http.MethodPost, "/match/configure", map[string]any{"bogus": true})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestConfigureHandler_RejectsDuplicateNumbers(t *testing.T) {
	server := setupTestServer(t, notifier.NewMock())
	body := configureBody()
	body.Away.Players[1].Number = 1

	rr := do(t, server, http.MethodPost, "/match/configure", body)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "number 1")
}

func TestConfigureHandler_RejectsPlayerIDOnBothTeams(t *testing.T) {
	server := setupTestServer(t, notifier.NewMock())
	body := configureBody()
	body.Away.Players[0].ID = "h1"

	rr := do(t, server, http.MethodPost, "/match/configure", body)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "used by both teams")

	rr = do(t, server, http.MethodGet, "/match", nil)
	got := decodeBody[match.Record](t, rr)
	assert.Equal(t, match.StatusUnconfigured, got.Status)
}

func TestMutations_RequireActiveMatch(t *testing.T) {
	server := setupTestServer(t, notifier.NewMock())

	testCases := []struct {
		target string
		body   any
	}{
		{"/match/clock/start", nil},
		{"/match/shotclock", shotClockRequest{Reset: true}},
		{"/match/possession", possessionRequest{Team: match.Home}},
		{"/match/half", nil},
		{"/match/finish", nil},
	}
	for _, tc := range testCases {
		t.Run(tc.target, func(t *testing.T) {
			rr := do(t, server, http.MethodPost, tc.target, tc.body)
			assert.Equal(t, http.StatusConflict, rr.Code)
		})
	}
}

func TestClockHandlers(t *testing.T) {
	server := setupTestServer(t, notifier.NewMock())
	configured(t, server)

	rr := do(t, server, http.MethodPost, "/match/clock/start", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, decodeBody[match.Record](t, rr).Clocks.Game.Running)

	rr = do(t, server, http.MethodPost, "/match/clock/toggle", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, decodeBody[match.Record](t, rr).Clocks.Game.Running)

	rr = do(t, server, http.MethodPost, "/match/clock/rewind", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, server, http.MethodPost, "/match/shotclock/start", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	seconds := 12.0
	rr = do(t, server, http.MethodPost, "/match/shotclock", shotClockRequest{Seconds: &seconds})
	require.Equal(t, http.StatusOK, rr.Code)
	shot := decodeBody[match.Record](t, rr).Clocks.Shot
	assert.Equal(t, 12.0, shot.Remaining)
	assert.True(t, shot.Running, "editing the value keeps the running flag")

	rr = do(t, server, http.MethodPost, "/match/shotclock", shotClockRequest{Reset: true})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 25.0, decodeBody[match.Record](t, rr).Clocks.Shot.Remaining)

	rr = do(t, server, http.MethodPost, "/match/shotclock", shotClockRequest{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestTimeoutHandler(t *testing.T) {
	server := setupTestServer(t, notifier.NewMock())
	configured(t, server)

	rr := do(t, server, http.MethodPost, "/match/timeout/start", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code, "a timeout needs possession")

	rr = do(t, server, http.MethodPost, "/match/possession", possessionRequest{Team: match.Away})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, server, http.MethodPost, "/match/timeout/start", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	rec := decodeBody[match.Record](t, rr)
	assert.True(t, rec.Clocks.Timeout.Active)
	assert.Equal(t, string(match.Away), rec.Clocks.Timeout.Team)
	assert.Equal(t, 60.0, rec.Clocks.Timeout.Remaining)

	rr = do(t, server, http.MethodPost, "/match/timeout/end", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, decodeBody[match.Record](t, rr).Clocks.Timeout.Active)
}

func TestAppendEventHandler(t *testing.T) {
	server := setupTestServer(t, notifier.NewMock())
	configured(t, server)

	for _, result := range []events.ShotResult{events.ResultGoal, events.ResultGoal, events.ResultMiss} {
		rr := do(t, server, http.MethodPost, "/match/events", eventRequest{
			Type: events.TypeShot, Team: match.Home, PlayerID: "h1", Result: result,
		})
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		ev := decodeBody[events.Event](t, rr)
		assert.Equal(t, result, ev.Result)
		assert.NotEmpty(t, ev.ID)
	}

	testCases := []struct {
		name string
		req  eventRequest
	}{
		{"unknown player", eventRequest{Type: events.TypeShot, Team: match.Home, PlayerID: "a1", Result: events.ResultGoal}},
		{"unknown team", eventRequest{Type: events.TypeFoul, Team: "VISITORS"}},
		{"bad card", eventRequest{Type: events.TypeCard, Team: match.Away, PlayerID: "a1", Card: "GREEN"}},
		{"timeout via events", eventRequest{Type: events.TypeTimeout, Team: match.Home}},
		{"unknown type", eventRequest{Type: "DUNK", Team: match.Home}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rr := do(t, server, http.MethodPost, "/match/events", tc.req)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}

	rr := do(t, server, http.MethodPost, "/match/events", eventRequest{Type: events.TypePenalty, Team: match.Away, PlayerID: "a2"})
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = do(t, server, http.MethodGet, "/views/stats", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var stats struct {
		Home struct {
			Goals   int `json:"goals"`
			Shots   int `json:"shots"`
			ShotPct int `json:"shot_pct"`
		} `json:"home"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.Home.Goals)
	assert.Equal(t, 3, stats.Home.Shots)
	assert.Equal(t, 67, stats.Home.ShotPct)
}

func TestSubstitutionHandler(t *testing.T) {
	server := setupTestServer(t, notifier.NewMock())
	configured(t, server)

	rr := do(t, server, http.MethodPost, "/match/substitutions", substitutionRequest{Team: match.Home, Out: "h1", In: "h3"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	rec := decodeBody[match.Record](t, rr)
	assert.Equal(t, 1, rec.Home.Substitutions)

	rr = do(t, server, http.MethodPost, "/match/substitutions", substitutionRequest{Team: match.Home, Out: "h1", In: "h3"})
	assert.Equal(t, http.StatusBadRequest, rr.Code, "h1 is already on the bench")
}

func TestFinishAndHistory(t *testing.T) {
	mockNotifier := notifier.NewMock()
	server := setupTestServer(t, mockNotifier)
	rec := configured(t, server)

	rr := do(t, server, http.MethodPost, "/match/finish?dry_run=true", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	finished := decodeBody[match.Record](t, rr)
	assert.Equal(t, match.StatusFinished, finished.Status)

	rr = do(t, server, http.MethodGet, "/match", nil)
	assert.Equal(t, match.StatusUnconfigured, decodeBody[match.Record](t, rr).Status)

	rr = do(t, server, http.MethodGet, "/history", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	history := decodeBody[[]match.Record](t, rr)
	require.Len(t, history, 1)
	assert.Equal(t, rec.ID, history[0].ID)

	rr = do(t, server, http.MethodGet, "/stats", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	stats := decodeBody[struct {
		Counters map[string]int `json:"counters"`
	}](t, rr)
	assert.Equal(t, 1, stats.Counters[metrics.KeyMatchesConfigured])
	assert.Equal(t, 1, stats.Counters[metrics.KeyMatchesFinished])

	rr = do(t, server, http.MethodDelete, "/history/"+rec.ID, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = do(t, server, http.MethodDelete, "/history/"+rec.ID, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	server.Controller.Close()
	require.Len(t, mockNotifier.SendMatchResultCalls, 1)
	assert.True(t, mockNotifier.SendMatchResultCalls[0].DryRun, "dry_run reaches the notifier")
}

func TestViewHandler(t *testing.T) {
	server := setupTestServer(t, notifier.NewMock())
	configured(t, server)

	rr := do(t, server, http.MethodGet, "/views/scoreboard", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"score":0`)

	rr = do(t, server, http.MethodGet, "/views/cashier", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	server := setupTestServer(t, notifier.NewMock())
	configured(t, server)

	rr := do(t, server, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "matchdesk_snapshot_writes_total")
}

func TestCORSPreflight(t *testing.T) {
	server := setupTestServer(t, notifier.NewMock())

	req, err := http.NewRequest(http.MethodOptions, "/match/clock/start", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://scoreboard.local")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)

	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestWebSocketFeed(t *testing.T) {
	server := setupTestServer(t, notifier.NewMock())
	ts := httptest.NewServer(server)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?view=scoreboard"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	read := func() viewMessage {
		t.Helper()
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var msg viewMessage
		require.NoError(t, conn.ReadJSON(&msg))
		return msg
	}

	initial := read()
	assert.Equal(t, view.Scoreboard, initial.View)

	assert.Eventually(t, func() bool { return server.Hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)
	configured(t, server)

	update := read()
	assert.Equal(t, view.Scoreboard, update.View)
	payload, ok := update.Payload.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, string(match.StatusActive), payload["status"])
}
