package compare

import (
	"context"

	"github.com/cmlabs-hris/shift-reconcile/internal/pkg/timenorm"
)

// CorrectionRepository stores one current correction per key. Writes are
// last-write-wins and rows are never deleted.
type CorrectionRepository interface {
	Upsert(ctx context.Context, c Correction) (Correction, error)

	// GetForUpdate locks the row for the rest of the transaction.
	// It returns ErrCorrectionNotFound when the key is unknown.
	GetForUpdate(ctx context.Context, key string) (Correction, error)

	ListByBranch(ctx context.Context, branch string, period timenorm.Period) ([]Correction, error)
}

// ConfirmationRepository stores the acknowledged state of attendance punches.
type ConfirmationRepository interface {
	// SetConfirmed upserts the row and flips its state.
	SetConfirmed(ctx context.Context, c Confirmation) (Confirmation, error)

	// ListConfirmed returns only rows currently confirmed.
	ListConfirmed(ctx context.Context, branch string, period timenorm.Period) ([]Confirmation, error)
}
