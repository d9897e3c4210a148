package materials

import (
	"context"
	"database/sql"
	"testing"

	"github.com/dmitrijs2005/prolens/internal/client/models"
	"github.com/dmitrijs2005/prolens/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE materials (
  id          TEXT PRIMARY KEY,
  type        TEXT NOT NULL,
  name        TEXT NOT NULL,
  content     TEXT NOT NULL,
  mime_type   TEXT NOT NULL DEFAULT '',
  is_analyzed INTEGER NOT NULL DEFAULT 0
);`)
	require.NoError(t, err)
	return db
}

func sample(id string) *models.LearningMaterial {
	return &models.LearningMaterial{
		ID:       id,
		Type:     models.MaterialImage,
		Name:     "golden-hour.jpg",
		Content:  "data:image/jpeg;base64,/9j/4AAQ",
		MimeType: "image/jpeg",
	}
}

func TestPutGet_RoundTrip(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	m := sample("1700000000000-abc123")
	require.NoError(t, r.Put(ctx, m))

	got, err := r.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, m, got)
}

func TestPut_UpsertByID(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	m := sample("a")
	require.NoError(t, r.Put(ctx, m))

	m.Name = "renamed.jpg"
	m.IsAnalyzed = true
	require.NoError(t, r.Put(ctx, m))

	n, err := r.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := r.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "renamed.jpg", got.Name)
	assert.True(t, got.IsAnalyzed)
}

func TestGet_NotFound(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	_, err := r.Get(context.Background(), "missing")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestGetAll_EmptyIsNonNil(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	got, err := r.GetAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestGetAll_ReturnsEveryRecord(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, r.Put(ctx, sample(id)))
	}

	got, err := r.GetAll(ctx)
	require.NoError(t, err)

	ids := make([]string, 0, len(got))
	for _, m := range got {
		ids = append(ids, m.ID)
	}
	assert.ElementsMatch(t, []string{"a", "b", "c"}, ids)
}

func TestDelete_IsIdempotent(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Put(ctx, sample("x")))
	require.NoError(t, r.Delete(ctx, "x"))
	require.NoError(t, r.Delete(ctx, "x"))
	require.NoError(t, r.Delete(ctx, "never-existed"))

	_, err := r.Get(ctx, "x")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestClear_AlwaysLeavesEmptyStore(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Clear(ctx))

	require.NoError(t, r.Put(ctx, sample("a")))
	require.NoError(t, r.Put(ctx, sample("b")))
	require.NoError(t, r.Clear(ctx))

	got, err := r.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMarkAnalyzed_SecondCallIsNoop(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Put(ctx, sample("a")))

	changed, err := r.MarkAnalyzed(ctx, "a")
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = r.MarkAnalyzed(ctx, "a")
	require.NoError(t, err)
	assert.False(t, changed)

	got, err := r.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, got.IsAnalyzed)

	changed, err = r.MarkAnalyzed(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestRepository_DBErrorsWrapped(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, db.Close())

	err := r.Put(ctx, sample("a"))
	require.ErrorContains(t, err, "failed to put material a")

	_, err = r.GetAll(ctx)
	require.ErrorContains(t, err, "failed to select materials")

	err = r.Clear(ctx)
	require.ErrorContains(t, err, "failed to clear materials")

	_, err = r.MarkAnalyzed(ctx, "a")
	require.ErrorContains(t, err, "failed to mark material a analyzed")
}
