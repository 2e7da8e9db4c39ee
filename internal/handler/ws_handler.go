/*
Package handler provides the HTTP handlers and routing for the Parlor chat server.

This file upgrades HTTP requests to WebSocket connections and starts the client
pumps. The handshake carries no identity; the client must follow up with a join
event before the bounded join window expires.
*/
package handler

import (
	"net/http"

	"github.com/gorilla/websocket"

	"parlor/internal/app/chat"
	"parlor/internal/pkg/logx"
)

// HandleWebSocket upgrades the connection and hands it to the hub.
func HandleWebSocket(upgrader websocket.Upgrader, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		client := chat.NewClient(deps.Hub, conn)

		go client.WritePump()

		logx.Info("WebSocket connection established; awaiting join", "remote_addr", r.RemoteAddr)

		client.ReadPump()
	}
}
