package handler

import (
	"net/http"
	"time"
)

// handleBoard handles GET /board: the full board snapshot for clients
// that poll over plain HTTP instead of holding a WebSocket.
func (h *Handler) handleBoard(w http.ResponseWriter, r *http.Request) {
	board := h.hub.Board()
	text := board.Clipboard.Current()
	entries := board.Files.List(time.Now())

	files := make([]FileResponse, 0, len(entries))
	for _, e := range entries {
		files = append(files, fileResponse(e))
	}

	h.writeJSON(w, r, http.StatusOK, BoardResponse{
		Text: TextResponse{
			Content:   text.Content,
			Version:   text.Version,
			UpdatedAt: text.UpdatedAt,
			UpdatedBy: text.UpdatedBy,
		},
		Files:   files,
		Clients: board.Clients.Count(),
	})
}
