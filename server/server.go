package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/fitstreak/config"
	"github.com/fitstreak/models"
	"github.com/fitstreak/streak"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type Server struct {
	httpServer *http.Server
	listener   net.Listener

	config      *config.Config
	dataStore   *models.DataStore
	renderCache *models.RenderCache
	machine     *streak.Machine
	clock       streak.Clock
	printer     *message.Printer

	upgrader          websocket.Upgrader
	countdownInterval time.Duration
	socketsCtx        context.Context
	closeSockets      context.CancelFunc

	// metrics
	metrics      *Metrics
	promRegistry *prometheus.Registry
}

type NewServerParams struct {
	Config       *config.Config
	DataStore    *models.DataStore
	Machine      *streak.Machine
	Clock        streak.Clock
	Metrics      *Metrics
	PromRegistry *prometheus.Registry
}

func NewServer(params NewServerParams) *Server {
	clock := params.Clock
	if clock == nil {
		clock = streak.SystemClock{}
	}
	metrics := params.Metrics
	if metrics == nil {
		metrics = NewMetrics("fitstreak", "dashboard", prometheus.NewRegistry())
	}

	socketsCtx, closeSockets := context.WithCancel(context.Background())
	s := &Server{
		config:            params.Config,
		dataStore:         params.DataStore,
		renderCache:       models.NewRenderCache(params.Config.RenderCacheMB),
		machine:           params.Machine,
		clock:             clock,
		printer:           message.NewPrinter(language.BrazilianPortuguese),
		countdownInterval: time.Duration(params.Config.CountdownSeconds) * time.Second,
		socketsCtx:        socketsCtx,
		closeSockets:      closeSockets,
		metrics:           metrics,
		promRegistry:      params.PromRegistry,
	}
	if s.countdownInterval <= 0 {
		s.countdownInterval = time.Second
	}
	s.upgrader = websocket.Upgrader{
		CheckOrigin: s.checkOrigin,
	}
	return s
}

func (s *Server) maxUploadBytes() int64 {
	return int64(s.config.MaxUploadMB) << 20
}

func (s *Server) Router() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/", s.handleIndex).Methods("GET").Name("index")
	r.HandleFunc("/upload", s.handleUpload).Methods("POST").Name("upload")
	r.HandleFunc("/api/dataset", s.handleDataset).Methods("GET").Name("dataset")
	r.HandleFunc("/api/streak", s.handleStreak).Methods("GET").Name("streak")
	r.HandleFunc("/api/streak/increment", s.handleStreakIncrement).Methods("POST").Name("streak-increment")
	r.HandleFunc("/api/streak/countdown", s.handleCountdown).Methods("GET").Name("streak-countdown")
	r.HandleFunc("/ws/countdown", s.handleCountdownSocket).Methods("GET").Name("countdown-socket")

	if s.config.MetricsEnabled && s.promRegistry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.promRegistry, promhttp.HandlerOpts{})).Methods("GET")
	}

	r.Use(panicRecovery(s.metrics))
	r.Use(logRequest())
	r.Use(requestMetrics(s.metrics))

	if len(s.config.AllowedOrigins) == 0 {
		return r
	}

	return cors.New(cors.Options{
		AllowedOrigins: s.config.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}).Handler(r)
}

// Serve binds the listener and serves in the background. Only a failure to
// bind is returned.
func (s *Server) Serve(host string, port int) error {
	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	listener, err := net.Listen("tcp", ipAndPort)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", ipAndPort, err)
	}

	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Minute,
		WriteTimeout:      time.Minute,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", listener.Addr())
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("serve: %s", err)
		}
	}()

	return nil
}

// URL is the address the dashboard is reachable on, empty before Serve
func (s *Server) URL() string {
	if s.listener == nil {
		return ""
	}
	return "http://" + s.listener.Addr().String()
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	// hijacked websocket connections are not closed by http.Server.Shutdown
	s.closeSockets()

	if s.httpServer == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Errorf("failed to gracefully shutdown http server: %s", err)
	}
	log.Infoln("server shut down")
}
