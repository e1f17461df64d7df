package ipc

import (
	"time"

	"tryon/internal/job"
)

// JobSnapshot is the wire representation of the job slot record.
type JobSnapshot struct {
	Status      string    `json:"status"`
	Token       string    `json:"token,omitempty"`
	GarmentURL  string    `json:"garment_url,omitempty"`
	SourcePage  string    `json:"source_page,omitempty"`
	Description string    `json:"description,omitempty"`
	Result      string    `json:"result,omitempty"`
	Error       string    `json:"error,omitempty"`
	StartedAt   time.Time `json:"started_at,omitzero"`
	UpdatedAt   time.Time `json:"updated_at,omitzero"`
}

// FromRecord converts the durable record into its wire snapshot. Inline
// image payloads from the request are deliberately omitted; Result carries
// the only image the CLI needs.
func FromRecord(record job.Record) JobSnapshot {
	snapshot := JobSnapshot{
		Status:    string(record.Status),
		Token:     record.Token,
		Result:    record.Result,
		Error:     record.Error,
		StartedAt: record.StartedAt,
		UpdatedAt: record.UpdatedAt,
	}
	if record.Request != nil {
		snapshot.GarmentURL = record.Request.GarmentURL
		snapshot.SourcePage = record.Request.SourcePage
		snapshot.Description = record.Request.Description
	}
	return snapshot
}

// StartRequest submits a new generation job.
type StartRequest struct {
	GarmentURL  string `json:"garment_url,omitempty"`
	GarmentData string `json:"garment_data,omitempty"`
	ModelPhoto  string `json:"model_photo,omitempty"`
	Description string `json:"description,omitempty"`
	SourcePage  string `json:"source_page,omitempty"`
}

// StartResponse acknowledges the start with the generating snapshot.
type StartResponse struct {
	Job JobSnapshot `json:"job"`
}

// StatusRequest fetches the current job snapshot.
type StatusRequest struct{}

// StatusResponse carries the current job snapshot plus daemon identity.
type StatusResponse struct {
	Job      JobSnapshot `json:"job"`
	PID      int         `json:"pid"`
	DBPath   string      `json:"db_path"`
	LockPath string      `json:"lock_path"`
}

// ClearRequest resets the job slot.
type ClearRequest struct{}

// ClearResponse returns the idle snapshot after the reset.
type ClearResponse struct {
	Job JobSnapshot `json:"job"`
}

// ResultRequest fetches the generated image of a completed job.
type ResultRequest struct{}

// ResultResponse carries the result data URL when the job is complete.
type ResultResponse struct {
	Status string `json:"status"`
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// WaitRequest long-polls for a transition away from the given observation.
// Token and Status describe the last snapshot the caller saw; an empty
// token matches the idle slot.
type WaitRequest struct {
	Token         string `json:"token,omitempty"`
	Status        string `json:"status,omitempty"`
	TimeoutMillis int64  `json:"timeout_millis,omitempty"`
}

// WaitResponse reports the snapshot current at wake-up. Changed is false
// when the wait timed out without a transition.
type WaitResponse struct {
	Job     JobSnapshot `json:"job"`
	Changed bool        `json:"changed"`
}

// PhotoSetRequest persists the reference photo.
type PhotoSetRequest struct {
	Label string `json:"label,omitempty"`
	Data  string `json:"data"`
}

// PhotoSetResponse acknowledges the save.
type PhotoSetResponse struct {
	Saved bool `json:"saved"`
}

// PhotoGetRequest fetches the persisted reference photo.
type PhotoGetRequest struct{}

// PhotoGetResponse carries the photo when one is saved.
type PhotoGetResponse struct {
	Found   bool      `json:"found"`
	Label   string    `json:"label,omitempty"`
	Data    string    `json:"data,omitempty"`
	SavedAt time.Time `json:"saved_at,omitzero"`
}

// PhotoRemoveRequest deletes the persisted reference photo.
type PhotoRemoveRequest struct{}

// PhotoRemoveResponse acknowledges the removal.
type PhotoRemoveResponse struct {
	Removed bool `json:"removed"`
}

// ExtractRequest runs page extraction against a product page URL.
type ExtractRequest struct {
	PageURL string `json:"page_url"`
}

// ExtractResponse returns the extraction engine output.
type ExtractResponse struct {
	Images      []string `json:"images"`
	Description string   `json:"description,omitempty"`
}

// PingRequest checks daemon liveness.
type PingRequest struct{}

// PingResponse identifies the answering daemon.
type PingResponse struct {
	PID int `json:"pid"`
}

// TestNotificationRequest triggers a test push.
type TestNotificationRequest struct{}

// TestNotificationResponse reports delivery of the test push.
type TestNotificationResponse struct {
	Sent    bool   `json:"sent"`
	Message string `json:"message,omitempty"`
}

// LogsRequest reads daemon log lines. A negative Offset selects the last
// MaxLines lines; Follow waits up to WaitMillis for new output.
type LogsRequest struct {
	Offset     int64 `json:"offset"`
	MaxLines   int   `json:"max_lines,omitempty"`
	Follow     bool  `json:"follow,omitempty"`
	WaitMillis int64 `json:"wait_millis,omitempty"`
}

// LogsResponse carries log lines and the offset for the next read.
type LogsResponse struct {
	Lines      []string `json:"lines"`
	NextOffset int64    `json:"next_offset"`
}
