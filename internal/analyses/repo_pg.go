package analyses

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"legal-backend/internal/classify"
)

// PGRepo implements Repo on Postgres. Records are stored as a JSONB array.
type PGRepo struct {
	DB *sql.DB
}

const analysisColumns = `id, document_id, user_id, kind, outcome, notice, records, fingerprint, created_at`

func (r *PGRepo) Create(ctx context.Context, analysis Analysis) error {
	const query = `
INSERT INTO analyses (` + analysisColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	records, err := json.Marshal(analysis.Records())
	if err != nil {
		return fmt.Errorf("marshal records: %w", err)
	}
	_, err = r.DB.ExecContext(ctx, query,
		analysis.ID,
		analysis.DocumentID,
		analysis.UserID,
		string(analysis.Kind),
		string(analysis.Outcome),
		sql.NullString{String: analysis.Notice, Valid: analysis.Notice != ""},
		records,
		analysis.Fingerprint,
		analysis.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert analysis: %w", err)
	}
	return nil
}

func (r *PGRepo) GetByID(ctx context.Context, userID, analysisID string) (Analysis, error) {
	const query = `
SELECT ` + analysisColumns + `
FROM analyses
WHERE user_id = $1 AND id = $2`
	return scanAnalysis(r.DB.QueryRowContext(ctx, query, userID, analysisID))
}

func (r *PGRepo) ListByDocument(ctx context.Context, userID, documentID string, limit int) ([]Analysis, error) {
	var limitArg any
	if limit > 0 {
		limitArg = limit
	}
	const query = `
SELECT ` + analysisColumns + `
FROM analyses
WHERE user_id = $1 AND document_id = $2
ORDER BY created_at DESC
LIMIT $3`
	rows, err := r.DB.QueryContext(ctx, query, userID, documentID, limitArg)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	defer rows.Close()

	out := []Analysis{}
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row rowScanner) (Analysis, error) {
	var (
		a       Analysis
		kind    string
		outcome string
		notice  sql.NullString
		records []byte
	)
	err := row.Scan(
		&a.ID,
		&a.DocumentID,
		&a.UserID,
		&kind,
		&outcome,
		&notice,
		&records,
		&a.Fingerprint,
		&a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Analysis{}, ErrNotFound
		}
		return Analysis{}, fmt.Errorf("scan analysis: %w", err)
	}
	a.Kind = Kind(kind)
	a.Outcome = classify.Outcome(outcome)
	a.Notice = notice.String

	switch a.Kind {
	case KindRisks:
		err = json.Unmarshal(records, &a.Risks)
	case KindSummary:
		err = json.Unmarshal(records, &a.Sections)
	default:
		err = fmt.Errorf("unknown kind %q", kind)
	}
	if err != nil {
		return Analysis{}, fmt.Errorf("decode records of analysis %s: %w", a.ID, err)
	}
	return a, nil
}
