package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/bossarena/api/inspect"
	"github.com/kasuganosora/bossarena/audit"
	"github.com/kasuganosora/bossarena/cache"
	"github.com/kasuganosora/bossarena/config"
	dbadapter "github.com/kasuganosora/bossarena/db"
	"github.com/kasuganosora/bossarena/game/encounter"
	"github.com/kasuganosora/bossarena/game/entity"
	"github.com/kasuganosora/bossarena/game/script"
	"github.com/kasuganosora/bossarena/model"
	"github.com/kasuganosora/bossarena/resource"
	"go.uber.org/zap"
)

func main() {
	cfgPath := "config/config.yaml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// ---- Logger ----
	var logger *zap.Logger
	var logErr error
	if cfg.Server.Debug {
		logger, logErr = zap.NewDevelopment()
	} else {
		logger, logErr = zap.NewProduction()
	}
	if logErr != nil {
		log.Fatalf("logger: %v", logErr)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sinks := []encounter.Sink{encounter.NewLogSink(logger)}

	// ---- Database / event journal ----
	db, err := dbadapter.Open(cfg.Database)
	switch {
	case errors.Is(err, dbadapter.ErrDisabled):
		logger.Info("event journal disabled")
	case err != nil:
		log.Fatalf("db: %v", err)
	default:
		if err := model.AutoMigrate(db); err != nil {
			log.Fatalf("db migrate: %v", err)
		}
		recorder := audit.New(db, logger)
		defer recorder.Stop(context.Background())
		sinks = append(sinks, recorder)
		logger.Info("event journal initialized", zap.String("mode", cfg.Database.Mode))
	}

	// ---- Cache / PubSub ----
	cacheConfig := cache.CacheConfig{
		RedisAddr:       cfg.Cache.RedisAddr,
		RedisPassword:   cfg.Cache.RedisPassword,
		RedisDB:         cfg.Cache.RedisDB,
		LocalGCInterval: cfg.Cache.LocalGCInterval,
		LocalPubSubBuf:  cfg.Cache.LocalPubSubBuf,
	}
	c, err := cache.NewCache(cacheConfig)
	if err != nil {
		log.Fatalf("cache: %v", err)
	}
	defer c.Close()
	pubsub, err := cache.NewPubSub(cacheConfig)
	if err != nil {
		log.Fatalf("pubsub: %v", err)
	}
	defer pubsub.Close()
	eventSink := encounter.NewPubSubSink(pubsub, c, cfg.Cache.LocalPubSubBuf, logger)
	defer eventSink.Stop(context.Background())
	sinks = append(sinks, eventSink)
	logger.Info("cache initialized", zap.Bool("redis", cfg.Cache.RedisAddr != ""))

	// ---- Scenario ----
	if cfg.Sim.Scenario == "" {
		log.Fatalf("sim.scenario is not set")
	}
	sc, err := resource.LoadScenario(cfg.Sim.Scenario)
	if err != nil {
		log.Fatalf("scenario: %v", err)
	}
	store := entity.NewStore()
	sc.Populate(store)

	encCfg := encounter.Config{
		TickRate:        cfg.Sim.TickRate,
		Seed:            cfg.Sim.Seed,
		Duration:        cfg.Sim.Duration,
		SnapshotEvery:   cfg.Sim.SnapshotEvery,
		DoubleBounce:    cfg.Sim.DoubleBounce,
		PhaseThresholds: cfg.Sim.PhaseThresholds,
		Cache:           c,
		Sinks:           sinks,
		Logger:          logger,
	}
	if sc.Driver != "" {
		driver, err := script.NewDriver(sc.Driver, cfg.Script.Timeout, logger)
		if err != nil {
			log.Fatalf("driver: %v", err)
		}
		encCfg.Driver = driver
	}
	enc := encounter.New(encCfg, store)
	logger.Info("scenario loaded",
		zap.String("scenario", sc.Name),
		zap.String("encounter_id", enc.ID),
		zap.Int("bosses", len(sc.Bosses)),
		zap.Bool("scripted", encCfg.Driver != nil))

	// ---- Inspector ----
	if cfg.Server.DebugPort > 0 {
		if !cfg.Server.Debug {
			gin.SetMode(gin.ReleaseMode)
		}
		h := inspect.NewHandler(enc, c, pubsub, logger)
		r, err := inspect.NewRouter(ctx, h, cfg.Security, logger)
		if err != nil {
			log.Fatalf("inspector: %v", err)
		}
		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.DebugPort),
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("inspector listening", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("inspector stopped", zap.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	// ---- Run ----
	if err := enc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("encounter aborted", zap.Error(err))
	}
	snap := enc.Snapshot()
	alive := 0
	for _, b := range snap.Bosses {
		if b.Parent == 0 && !b.Dead {
			alive++
		}
	}
	logger.Info("encounter summary",
		zap.String("encounter_id", snap.EncounterID),
		zap.Int64("ticks", snap.Tick),
		zap.Float64("time", snap.Time),
		zap.Int("bosses_alive", alive),
		zap.Bool("player_alive", snap.Player != nil && snap.Player.Health.Current > 0))
}
