package analyses

import "context"

// Repo defines persistence operations for analyses.
type Repo interface {
	Create(ctx context.Context, analysis Analysis) error
	GetByID(ctx context.Context, userID, analysisID string) (Analysis, error)
	// ListByDocument returns the runs of a document, newest first.
	ListByDocument(ctx context.Context, userID, documentID string, limit int) ([]Analysis, error)
}
