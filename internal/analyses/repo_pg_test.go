package analyses

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legal-backend/internal/classify"
)

func newMockRepo(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return &PGRepo{DB: db}, mock
}

func analysisRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "document_id", "user_id", "kind", "outcome", "notice", "records", "fingerprint", "created_at"})
}

func TestPGRepoCreateStoresRecordsAsJSON(t *testing.T) {
	repo, mock := newMockRepo(t)
	a := Analysis{
		ID:          "a-1",
		DocumentID:  "doc-1",
		UserID:      "guest:a",
		Kind:        KindSummary,
		Outcome:     classify.OutcomeFallback,
		Fingerprint: "abc",
		CreatedAt:   fixedNow,
	}

	mock.ExpectExec("INSERT INTO analyses").
		WithArgs("a-1", "doc-1", "guest:a", "summary", "fallback", nil, []byte("[]"), "abc", fixedNow).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Create(context.Background(), a))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepoGetByIDDecodesRisks(t *testing.T) {
	repo, mock := newMockRepo(t)
	records := `[{"id":"1","title":"Deposit","description":"Security deposit equals three months of rent.","category":"financial","severity":"high","likelihood":"possible","impact":"i","mitigation":"m"}]`
	mock.ExpectQuery("SELECT .* FROM analyses WHERE user_id = \\$1 AND id = \\$2").
		WithArgs("guest:a", "a-1").
		WillReturnRows(analysisRows().AddRow("a-1", "doc-1", "guest:a", "risks", "structured", "API connection failed", []byte(records), "abc", fixedNow))

	a, err := repo.GetByID(context.Background(), "guest:a", "a-1")
	require.NoError(t, err)
	assert.Equal(t, KindRisks, a.Kind)
	assert.Equal(t, classify.OutcomeStructured, a.Outcome)
	assert.Equal(t, "API connection failed", a.Notice)
	require.Len(t, a.Risks, 1)
	assert.Equal(t, classify.SeverityHigh, a.Risks[0].Severity)
	assert.Nil(t, a.Sections)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("SELECT .* FROM analyses").
		WithArgs("guest:a", "missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "guest:a", "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPGRepoGetByIDRejectsUnknownKind(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("SELECT .* FROM analyses").
		WithArgs("guest:a", "a-1").
		WillReturnRows(analysisRows().AddRow("a-1", "doc-1", "guest:a", "verdict", "extracted", nil, []byte("[]"), "abc", fixedNow))

	_, err := repo.GetByID(context.Background(), "guest:a", "a-1")
	assert.ErrorContains(t, err, `unknown kind "verdict"`)
}

func TestPGRepoListByDocument(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("SELECT .* FROM analyses WHERE user_id = \\$1 AND document_id = \\$2 ORDER BY created_at DESC LIMIT \\$3").
		WithArgs("guest:a", "doc-1", 20).
		WillReturnRows(analysisRows().
			AddRow("a-2", "doc-1", "guest:a", "summary", "narrative", nil, []byte(`[{"id":"1","title":"Contract Overview","description":"A lease.","category":"overview","priority":"low"}]`), "f2", fixedNow).
			AddRow("a-1", "doc-1", "guest:a", "risks", "fallback", nil, []byte(`[]`), "f1", fixedNow))

	runs, err := repo.ListByDocument(context.Background(), "guest:a", "doc-1", 20)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "a-2", runs[0].ID)
	require.Len(t, runs[0].Sections, 1)
	assert.Equal(t, classify.SectionOverview, runs[0].Sections[0].Category)
	assert.Equal(t, "a-1", runs[1].ID)
	assert.Empty(t, runs[1].Risks)
	assert.NoError(t, mock.ExpectationsWereMet())
}
