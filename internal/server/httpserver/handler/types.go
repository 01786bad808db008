package handler

import "time"

// Response is the standard API response envelope. All JSON responses
// use this format; downloads, the UI, and /metrics do not.
type Response struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data,omitempty"`
	Details   any    `json:"details,omitempty"`
}

// NewResponse creates a success response.
func NewResponse(requestID string, data any) *Response {
	return &Response{
		Code:      "OK",
		Message:   "Success",
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Data:      data,
	}
}

// NewErrorResponse creates an error response.
func NewErrorResponse(requestID, code, message string, details any) *Response {
	return &Response{
		Code:      code,
		Message:   message,
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Details:   details,
	}
}

// FileResponse describes a stored file in API responses.
type FileResponse struct {
	ID          string `json:"id"`
	Filename    string `json:"filename"`
	MimeType    string `json:"mime_type,omitempty"`
	SizeBytes   int64  `json:"size_bytes"`
	UploadedAt  int64  `json:"uploaded_at"`
	ExpiresAt   int64  `json:"expires_at"`
	DownloadURL string `json:"download_url"`
}

// BoardResponse is the JSON snapshot returned by GET /board.
type BoardResponse struct {
	Text    TextResponse   `json:"text"`
	Files   []FileResponse `json:"files"`
	Clients int            `json:"clients"`
}

// TextResponse describes the clipboard text state.
type TextResponse struct {
	Content   string `json:"content"`
	Version   uint64 `json:"version"`
	UpdatedAt int64  `json:"updated_at"`
	UpdatedBy string `json:"updated_by,omitempty"`
}
