package httpapp

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"

	"github.com/cesargomez89/strume/internal/constants"
	"github.com/cesargomez89/strume/internal/domain"
)

// follow reports the task's progress to emit until a terminal value has
// been sent, ctx ends or emit fails. It wakes on every registry write and
// at least once per poll interval, so an unknown task keeps reporting 0.
func (h *Handler) follow(ctx context.Context, taskID string, emit func(domain.Progress) error) error {
	ticker := time.NewTicker(h.PollInterval)
	defer ticker.Stop()

	for {
		value, changed := h.Registry.Watch(taskID)
		if err := emit(value); err != nil {
			return err
		}
		if value.Terminal() {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-changed:
		case <-ticker.C:
		}
	}
}

// ProgressStream serves `data: <n>\n\n` server-sent events.
func (h *Handler) ProgressStream(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "task_id")
	rc := http.NewResponseController(w)

	w.Header().Set("Content-Type", constants.MimeTypeSSE)
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	err := h.follow(r.Context(), taskID, func(p domain.Progress) error {
		if _, err := fmt.Fprintf(w, "data: %d\n\n", int(p)); err != nil {
			return err
		}
		return rc.Flush()
	})
	if err != nil && r.Context().Err() == nil {
		h.Logger.WithTask(taskID).Debug("Progress stream ended", "error", err)
	}
}

// ProgressSocket sends each progress value as a text message and closes
// normally after a terminal value.
func (h *Handler) ProgressSocket(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "task_id")
	log := h.Logger.WithTask(taskID)

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: h.OriginPatterns})
	if err != nil {
		log.Debug("WebSocket upgrade failed", "error", err)
		return
	}
	defer conn.CloseNow()

	// the client never sends; CloseRead notices when it hangs up
	ctx := conn.CloseRead(r.Context())

	err = h.follow(ctx, taskID, func(p domain.Progress) error {
		return conn.Write(ctx, websocket.MessageText, []byte(strconv.Itoa(int(p))))
	})
	if err != nil {
		log.Debug("Progress socket ended", "error", err)
		return
	}
	_ = conn.Close(websocket.StatusNormalClosure, "done")
}
