// Copyright (c) 2024 The Ternoa staking exporter developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package httpserver

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/ternoa-network/staking-exporter/co"
	"github.com/ternoa-network/staking-exporter/health"
	"github.com/ternoa-network/staking-exporter/log"
)

type logLevelRequest struct {
	Level string `json:"level"`
}

type logLevelResponse struct {
	CurrentLevel string `json:"currentLevel"`
}

// StartAdminServer exposes the health and loglevel endpoints on addr. It
// returns the admin URL and a close function.
func StartAdminServer(addr string, logLevel *slog.LevelVar, healthStatus *health.Health) (string, func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, errors.Wrapf(err, "listen admin addr [%v]", addr)
	}

	handler := handlers.CompressHandler(NewAdminHandler(logLevel, healthStatus))

	srv := &http.Server{Handler: handler, ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second}
	var goes co.Goes
	goes.Go(func() {
		srv.Serve(listener)
	})
	return "http://" + listener.Addr().String() + "/admin", func() {
		srv.Close()
		goes.Wait()
	}, nil
}

// NewAdminHandler routes the admin API.
func NewAdminHandler(logLevel *slog.LevelVar, healthStatus *health.Health) http.Handler {
	router := mux.NewRouter()
	sub := router.PathPrefix("/admin").Subrouter()

	sub.Path("/health").
		Methods(http.MethodGet).
		Name("health").
		HandlerFunc(getHealthHandler(healthStatus))

	sub.Path("/loglevel").
		Methods(http.MethodGet).
		Name("get-log-level").
		HandlerFunc(getLogLevelHandler(logLevel))

	sub.Path("/loglevel").
		Methods(http.MethodPost).
		Name("post-log-level").
		HandlerFunc(postLogLevelHandler(logLevel))

	return router
}

func getHealthHandler(healthStatus *health.Health) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		status, err := healthStatus.Status()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if !status.Healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(status)
	}
}

func getLogLevelHandler(logLevel *slog.LevelVar) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(logLevelResponse{CurrentLevel: logLevel.Level().String()})
	}
}

func postLogLevelHandler(logLevel *slog.LevelVar) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req logLevelRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		switch req.Level {
		case "trace":
			logLevel.Set(log.LevelTrace)
		case "debug":
			logLevel.Set(log.LevelDebug)
		case "info":
			logLevel.Set(log.LevelInfo)
		case "warn":
			logLevel.Set(log.LevelWarn)
		case "error":
			logLevel.Set(log.LevelError)
		case "crit":
			logLevel.Set(log.LevelCrit)
		default:
			http.Error(w, "invalid verbosity level", http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(logLevelResponse{CurrentLevel: logLevel.Level().String()})
	}
}
