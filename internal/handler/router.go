/*
Package handler provides the HTTP handlers and routing for the Parlor chat server.

This file defines the main Router, applying logging, CORS, and recovery
middleware before delegating to the API and WebSocket handlers.
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"

	"parlor/internal/pkg/logx"
	"parlor/internal/pkg/resp"
)

// Router sets up the HTTP routing table. It configures the WebSocket upgrader's
// origin policy and CORS from the allowed-origins list; development allows
// everything.
func Router(deps *AppDeps) http.Handler {
	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	wsUpgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.Environment == "development" {
				return true
			}

			origin := r.Header.Get("Origin")
			if _, ok := allowedOrigins[origin]; ok {
				return true
			}

			logx.Warn("WebSocket connection rejected: Origin not allowed.", "origin", origin)
			return false
		},
	}

	corsAllowedOrigins := []string{}
	if deps.Config.Environment == "development" {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		data := map[string]string{
			"status":  "ok",
			"service": "Parlor Chat Server",
		}
		resp.RespondSuccess(w, r, data)
	})

	r.Post("/login", HandleLogin(deps))
	r.Post("/logout", HandleLogout(deps))

	r.Get("/messages", HandleGetMessages(deps))
	r.Post("/messages", HandleCreateMessage(deps))

	r.Get("/users/active", HandleActiveUsers(deps))

	r.Get("/ws", HandleWebSocket(wsUpgrader, deps))

	return r
}
