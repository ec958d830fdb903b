package config

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

type WebSocket struct {
	Upgrader     websocket.Upgrader
	WriteTimeout time.Duration
}

// NewWebSocket accepts any origin in development and only same-origin
// requests otherwise.
func NewWebSocket() (*WebSocket, error) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
	}
	if Development() {
		upgrader.CheckOrigin = func(r *http.Request) bool {
			return true
		}
	}

	ws := &WebSocket{
		Upgrader:     upgrader,
		WriteTimeout: 10 * time.Second,
	}

	return ws, nil
}
