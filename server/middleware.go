package server

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
)

func panicRecovery(metrics *Metrics) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Errorf("http: panic serving %s: %v\n%s", r.URL.Path, rec, debug.Stack())
					if metrics != nil {
						metrics.CounterHandleRequestPanic.Inc()
					}
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

func logRequest() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log.Debugf("request [%s] path: [%s] [UA: %s]", r.Method, r.URL.Path, r.UserAgent())
			next.ServeHTTP(w, r)
		})
	}
}

func requestMetrics(metrics *Metrics) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func(begin time.Time) {
				metrics.HistRequestDuration.Observe(time.Since(begin).Seconds())
			}(time.Now())

			resp := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(resp, r)

			metrics.CounterRequests.WithLabelValues(r.Method, strconv.Itoa(resp.statusCode)).Inc()
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (r *responseWriter) WriteHeader(statusCode int) {
	r.ResponseWriter.WriteHeader(statusCode)
	r.statusCode = statusCode
}

// Hijack lets the countdown websocket take over the connection
func (r *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.statusCode = http.StatusSwitchingProtocols
	return hijacker.Hijack()
}
