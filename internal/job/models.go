package job

import (
	"strings"
	"time"
)

// Status represents the lifecycle of the generation job slot.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusGenerating Status = "generating"
	StatusComplete   Status = "complete"
	StatusError      Status = "error"
)

// StaleJobReason is the error message set when a generating record is
// presumed abandoned by recovery.
const StaleJobReason = "generation timed out; the background process was interrupted"

var allStatuses = []Status{
	StatusIdle,
	StatusGenerating,
	StatusComplete,
	StatusError,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether a status is stable until an external command
// moves it.
func (s Status) IsTerminal() bool {
	return s == StatusComplete || s == StatusError
}

// Request carries the inputs of one try-on generation attempt. It is
// immutable once stored on the active record.
type Request struct {
	// GarmentURL points at the garment photo on the retailer site. Ignored
	// when GarmentData is set.
	GarmentURL string `json:"garment_url,omitempty"`
	// GarmentData is the garment photo as an inline data URL.
	GarmentData string `json:"garment_data,omitempty"`
	// ModelPhoto is the user's reference photo as an inline data URL.
	ModelPhoto string `json:"model_photo"`
	// Description is the cleaned product description for the garment.
	Description string `json:"description,omitempty"`
	// SourcePage is the product page the garment came from, kept for display.
	SourcePage string `json:"source_page,omitempty"`
}

// Record is the single mutable job slot. It is replaced wholesale on every
// transition; the orchestrator is its sole writer.
type Record struct {
	Status    Status    `json:"status"`
	Token     string    `json:"token,omitempty"`
	Request   *Request  `json:"request,omitempty"`
	Result    string    `json:"result,omitempty"`
	Error     string    `json:"error,omitempty"`
	StartedAt time.Time `json:"started_at,omitzero"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`
}

// NewIdle returns a fresh idle record.
func NewIdle() Record {
	return Record{Status: StatusIdle, UpdatedAt: time.Now().UTC()}
}

// IsStale reports whether a generating record has outlived the threshold.
func (r Record) IsStale(now time.Time, threshold time.Duration) bool {
	if r.Status != StatusGenerating {
		return false
	}
	if r.StartedAt.IsZero() {
		return true
	}
	return now.Sub(r.StartedAt) > threshold
}

// SetGenerating moves the record into the generating state for a new attempt,
// clearing any prior result or error.
func (r *Record) SetGenerating(token string, req Request, now time.Time) {
	r.Status = StatusGenerating
	r.Token = token
	r.Request = &req
	r.Result = ""
	r.Error = ""
	r.StartedAt = now.UTC()
	r.UpdatedAt = now.UTC()
}

// SetComplete marks the record complete with the generated image.
func (r *Record) SetComplete(result string, now time.Time) {
	r.Status = StatusComplete
	r.Result = result
	r.Error = ""
	r.UpdatedAt = now.UTC()
}

// SetFailed marks the record failed with the given message.
func (r *Record) SetFailed(message string, now time.Time) {
	r.Status = StatusError
	r.Error = message
	r.Result = ""
	r.UpdatedAt = now.UTC()
}
