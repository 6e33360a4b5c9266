package compare

import (
	"context"
)

// CompareService pairs schedules with attendance and records reviewer actions
type CompareService interface {
	// Compare recomputes every item of a branch and period from stored rows
	Compare(ctx context.Context, filter CompareFilter) (CompareResponse, error)

	// SubmitCorrection writes or overwrites the correction of one compared day
	SubmitCorrection(ctx context.Context, req SubmitCorrectionRequest) (CorrectionResponse, error)

	ConfirmIgnore(ctx context.Context, req ConfirmRequest) (ConfirmationResponse, error)
	UnconfirmIgnore(ctx context.Context, req ConfirmRequest) (ConfirmationResponse, error)
}
