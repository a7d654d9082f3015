package domain

import (
	"time"

	"github.com/google/uuid"
)

// Adjustment outcomes, used as metric labels and audit event values.
const (
	OutcomeSuccess            = "success"
	OutcomeMissingFile        = "missing_file"
	OutcomeComputationError   = "computation_error"
	OutcomeSerializationError = "serialization_error"
)

// AdjustmentEvent summarizes one adjustment run. It never carries result rows.
type AdjustmentEvent struct {
	ID          string    `json:"id"`
	RequestedAt time.Time `json:"requested_at"`
	DurationMS  int64     `json:"duration_ms"`
	Outcome     string    `json:"outcome"`
	Rows        int       `json:"rows"`
	Columns     []string  `json:"columns,omitempty"`
	Error       string    `json:"error,omitempty"`
}

// NewAdjustmentEvent starts an event stamped with a fresh ID and the current clock time.
func NewAdjustmentEvent() AdjustmentEvent {
	return AdjustmentEvent{
		ID:          uuid.NewString(),
		RequestedAt: clock.Now().UTC(),
	}
}
