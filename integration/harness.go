// Package integration wires the full encounter stack for end-to-end tests.
package integration

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/bossarena/api/inspect"
	"github.com/kasuganosora/bossarena/audit"
	"github.com/kasuganosora/bossarena/cache"
	"github.com/kasuganosora/bossarena/config"
	"github.com/kasuganosora/bossarena/game/encounter"
	"github.com/kasuganosora/bossarena/game/entity"
	"github.com/kasuganosora/bossarena/game/script"
	"github.com/kasuganosora/bossarena/resource"
	"github.com/kasuganosora/bossarena/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TestServer is a scenario running against a real journal, cache and
// inspector. It mirrors the wiring in main.go.
type TestServer struct {
	DB        *gorm.DB
	Cache     cache.Cache
	PubSub    cache.PubSub
	Encounter *encounter.Encounter
	Recorder  *audit.Recorder
	Events    *encounter.PubSubSink
	Server    *httptest.Server
	URL       string
}

// NewTestServer builds the stack around the given scenario YAML.
func NewTestServer(t *testing.T, scenarioYAML string) *TestServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.SetupTestDB(t)
	c, ps := testutil.SetupTestCache(t)
	logger := zap.NewNop()

	sc, err := resource.ParseScenario([]byte(scenarioYAML))
	require.NoError(t, err)
	store := entity.NewStore()
	sc.Populate(store)

	rec := audit.New(db, logger)
	events := encounter.NewPubSubSink(ps, c, 1024, logger)
	cfg := encounter.Config{
		TickRate:      60,
		Seed:          1,
		SnapshotEvery: 15,
		Cache:         c,
		Sinks:         []encounter.Sink{encounter.NewLogSink(logger), rec, events},
		Logger:        logger,
	}
	if sc.Driver != "" {
		d, err := script.NewDriver(sc.Driver, 0, logger)
		require.NoError(t, err)
		cfg.Driver = d
	}
	enc := encounter.New(cfg, store)

	ctx, cancel := context.WithCancel(context.Background())
	r, err := inspect.NewRouter(ctx, inspect.NewHandler(enc, c, ps, logger), config.SecurityConfig{
		RateLimitRPS:   1000,
		RateLimitBurst: 2000,
	}, logger)
	require.NoError(t, err)
	srv := httptest.NewServer(r)

	ts := &TestServer{
		DB:        db,
		Cache:     c,
		PubSub:    ps,
		Encounter: enc,
		Recorder:  rec,
		Events:    events,
		Server:    srv,
		URL:       srv.URL,
	}
	t.Cleanup(func() {
		srv.Close()
		cancel()
		ts.Flush()
	})
	return ts
}

// Flush stops the background writers so their output is visible.
func (ts *TestServer) Flush() {
	ts.Events.Stop(context.Background())
	ts.Recorder.Stop(context.Background())
}

// Get performs a GET against the inspector and returns status and body.
func (ts *TestServer) Get(t *testing.T, path string) (int, []byte) {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}
