package handler

import (
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/syncboard/syncboard/internal/core/domain"
)

// handleUpload handles POST /upload. The body is a multipart form
// with a single "file" field, matching what the browser UI and the
// CLI send.
func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, domain.ErrBadRequest.Code,
			"multipart form with a 'file' field is required", nil)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		// MaxBytesReader turns an oversized body into a read error.
		h.writeError(w, r, http.StatusRequestEntityTooLarge, domain.ErrFileTooLarge.Code,
			"upload exceeds the configured size limit", nil)
		return
	}

	mimeType := header.Header.Get("Content-Type")
	meta, err := h.hub.OnFileUpload("", header.Filename, mimeType, data)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusCreated, fileResponse(meta))
}

// handleDownload handles GET /files/{id}. Expired entries 404 even if
// the sweeper has not evicted them yet.
func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	entry, err := h.hub.FileDownload(r.PathValue("id"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	contentType := entry.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.FormatInt(entry.SizeBytes, 10))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment",
		map[string]string{"filename": entry.Filename}))
	w.Write(entry.Data)
}

// handleListFiles handles GET /files.
func (h *Handler) handleListFiles(w http.ResponseWriter, r *http.Request) {
	entries := h.hub.Board().Files.List(time.Now())
	files := make([]FileResponse, 0, len(entries))
	for _, e := range entries {
		files = append(files, fileResponse(e))
	}
	h.writeJSON(w, r, http.StatusOK, files)
}

// handleDeleteFile handles DELETE /files/{id}.
func (h *Handler) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	if err := h.hub.OnFileDelete(r.PathValue("id")); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, map[string]string{"id": r.PathValue("id")})
}

func fileResponse(f *domain.FileEntry) FileResponse {
	return FileResponse{
		ID:          f.ID,
		Filename:    f.Filename,
		MimeType:    f.MimeType,
		SizeBytes:   f.SizeBytes,
		UploadedAt:  f.UploadedAt,
		ExpiresAt:   f.ExpiresAt,
		DownloadURL: "/files/" + f.ID,
	}
}
