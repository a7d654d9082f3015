package domain

import "context"

// AdjustmentRequest is everything the adjustment routine needs for one run.
type AdjustmentRequest struct {
	Params AdjustmentParams `json:"params"`
	Paths  FilePaths        `json:"paths"`
}

// Adjuster runs the external climate adjustment over a YLT.
type Adjuster interface {
	// Adjust blocks until the routine returns its result table or fails.
	Adjust(ctx context.Context, req AdjustmentRequest) (Table, error)
}
