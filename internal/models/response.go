package models

// API Error response
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}

// UploadResponse is returned by POST /v1/upload.
type UploadResponse struct {
	Success bool   `json:"success"`
	Data    string `json:"data"` // data:<mime>;base64,<bytes>
	Size    int64  `json:"size"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	OK       bool     `json:"ok"`
	Version  string   `json:"version"`
	Features []string `json:"features"`
}
