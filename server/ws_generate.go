package server

import (
	"net/http"

	"MuseFM/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// progressEvent is pushed to the UI while a generation runs.
type progressEvent struct {
	TaskID  string      `json:"task_id"`
	Event   string      `json:"event"` // loading, generating, processing, saved, error
	Message string      `json:"message,omitempty"`
	Payload interface{} `json:"payload,omitempty"`
}

// WebSocketGenerateHandler 在WebSocket连接上执行一次生成，
// 并将各阶段进度实时推送给前端
func (h *APIHandler) WebSocketGenerateHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("websocket upgrade failed", logger.ErrorField(err))
		return
	}
	defer conn.Close()

	var payload generatePayload
	if err := conn.ReadJSON(&payload); err != nil {
		logger.Warn("invalid websocket generation request", logger.ErrorField(err))
		return
	}

	taskID := uuid.NewString()
	send := func(event progressEvent) {
		event.TaskID = taskID
		if err := conn.WriteJSON(event); err != nil {
			logger.Warn("websocket write failed", logger.ErrorField(err))
		}
	}

	record, summary, stats, _, err := h.runGeneration(r.Context(), payload, func(stage string) {
		send(progressEvent{Event: stage})
	})
	if err != nil {
		send(progressEvent{Event: "error", Message: err.Error()})
		return
	}

	send(progressEvent{
		Event:   "saved",
		Message: stats.Message(),
		Payload: map[string]interface{}{
			"record":  record,
			"summary": summary,
		},
	})
}
