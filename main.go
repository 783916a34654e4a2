package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/cli/browser"
	"github.com/fitstreak/config"
	"github.com/fitstreak/logging"
	"github.com/fitstreak/models"
	"github.com/fitstreak/server"
	"github.com/fitstreak/streak"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"
)

func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Debugf("no .env file loaded: %s", err)
	}

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		log.Fatalf("load config: %s", err)
	}

	logCloser := logging.Setup(logging.SetupParams{
		LogFileName: cfg.LogsPath,
		LogToStdout: cfg.LogToStdout,
		LogLevel:    cfg.LogLevel,
	})
	defer logCloser.Close()

	log.Warnf("---->> running in [%s] environment", *env)
	log.Debugf("using port: %d, streak store: %s", cfg.Port, cfg.Store)

	loc := time.Local
	if cfg.TimeZone != "" {
		loc, err = time.LoadLocation(cfg.TimeZone)
		if err != nil {
			log.Fatalf("load time zone [%s]: %s", cfg.TimeZone, err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, closeStore, err := newStreakStore(ctx, cfg)
	if err != nil {
		log.Fatalf("streak store: %s", err)
	}
	defer closeStore()

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := server.NewMetrics("fitstreak", "dashboard", promRegistry)

	machine := streak.NewMachine(store, streak.SystemClock{},
		streak.WithLocation(loc),
		streak.WithObserver(metrics),
	)
	if status, err := machine.Evaluate(ctx); err != nil {
		log.Errorf("initial streak evaluation: %s", err)
	} else {
		metrics.GaugeStreakCount.Set(float64(status.Count))
		log.Infof("current streak: %d", status.Count)
	}

	srv := server.NewServer(server.NewServerParams{
		Config:       cfg,
		DataStore:    models.NewDataStore(),
		Machine:      machine,
		Metrics:      metrics,
		PromRegistry: promRegistry,
	})

	chOsInterrupt := make(chan os.Signal, 1)
	signal.Notify(chOsInterrupt, os.Interrupt, syscall.SIGTERM)

	if err := srv.Serve(cfg.Host, cfg.Port); err != nil {
		log.Fatalf("serve: %s", err)
	}

	dashboardURL := browserURL(cfg.Host, cfg.Port)
	log.Infof("visit %s to see the dashboard", dashboardURL)
	if cfg.OpenBrowser {
		if err := browser.OpenURL(dashboardURL); err != nil {
			log.Warnf("open browser: %s", err)
		}
	}

	receivedSig := <-chOsInterrupt
	log.Warnf("signal [%s] received, shutting down ...", receivedSig)
	cancel()

	srv.GracefulShutdown()
}

func newStreakStore(ctx context.Context, cfg *config.Config) (streak.Store, func(), error) {
	switch cfg.Store {
	case config.StoreMemory:
		log.Warnln("streak kept in memory only, it is lost on restart")
		return streak.NewMemoryStore(streak.Fresh()), func() {}, nil
	case config.StoreRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     net.JoinHostPort(cfg.RedisHost, strconv.Itoa(cfg.RedisPort)),
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Errorf("--> failed to ping redis: %s", err)
		}
		closeClient := func() {
			if err := rdb.Close(); err != nil {
				log.Errorf("failed to close redis client conn: %s", err)
			}
		}
		return streak.NewRedisStore(rdb, cfg.RedisKey), closeClient, nil
	case config.StoreFile:
		return streak.NewFileStore(cfg.StreakFile), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown store: %s", cfg.Store)
}

func browserURL(host string, port int) string {
	if ip := net.ParseIP(host); host == "" || (ip != nil && ip.IsUnspecified()) {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(port))
}
