package handler

import (
	"net/http"

	qrcode "github.com/skip2/go-qrcode"
)

// handleQR handles GET /qr: a PNG QR code of the server's LAN URL, so
// a phone can join by pointing its camera at another peer's screen.
func (h *Handler) handleQR(w http.ResponseWriter, r *http.Request) {
	url := h.advertiseURL()
	png, err := qrcode.Encode(url, qrcode.Medium, 256)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(png)
}
