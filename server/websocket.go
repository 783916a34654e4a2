package server

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fitstreak/streak"
	log "github.com/sirupsen/logrus"
)

const socketWriteWait = 5 * time.Second

type countdownMessage struct {
	Remaining    string `json:"remaining"`
	Count        int    `json:"count"`
	CanIncrement bool   `json:"canIncrement"`
}

// checkOrigin accepts same-host pages and the configured origins
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range s.config.AllowedOrigins {
		if origin == allowed {
			return true
		}
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}

// handleCountdownSocket pushes the countdown to the next local midnight
// together with the streak status until the client goes away
func (s *Server) handleCountdownSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader already replied with an error status
		log.Warnf("countdown socket upgrade: %s", err)
		return
	}

	s.metrics.GaugeCountdownSockets.Inc()
	defer s.metrics.GaugeCountdownSockets.Dec()

	ticker := streak.StartTicker(s.socketsCtx, s.countdownInterval, func(time.Time) error {
		status, err := s.machine.Evaluate(s.socketsCtx)
		if err != nil {
			log.Errorf("countdown socket, evaluate streak: %s", err)
			return err
		}

		if err := conn.SetWriteDeadline(time.Now().Add(socketWriteWait)); err != nil {
			return err
		}
		return conn.WriteJSON(countdownMessage{
			Remaining:    status.Countdown,
			Count:        status.Count,
			CanIncrement: status.CanIncrement,
		})
	})

	// the client never sends anything, reading only detects the close
	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	select {
	case <-readDone:
	case <-ticker.Done():
	}

	ticker.Stop()
	if err := conn.Close(); err != nil {
		log.Debugf("close countdown socket: %s", err)
	}
	<-readDone
	log.Debugf("countdown socket from %s closed", r.RemoteAddr)
}
