package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/prolens/internal/client/ai"
	"github.com/dmitrijs2005/prolens/internal/client/models"
	"github.com/dmitrijs2005/prolens/internal/client/storage"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupLocal(t *testing.T) *storage.Local {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, storage.MigrateLocal(context.Background(), db))
	return storage.NewLocal(db)
}

func fixedNow() time.Time {
	return time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
}

// ---- cloud fakes ----

type fakeDocs struct {
	mu      sync.Mutex
	items   []models.LearningMaterial
	seq     int
	addErr  error
	delErr  error
	updErr  error
	updated []string
}

func (f *fakeDocs) Add(_ context.Context, m *models.LearningMaterial) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addErr != nil {
		return f.addErr
	}
	f.seq++
	m.ID = fmt.Sprintf("00000000-0000-0000-0000-%012d", f.seq)
	m.CreatedAt = fixedNow().Add(time.Duration(f.seq) * time.Second)
	f.items = append([]models.LearningMaterial{*m}, f.items...)
	return nil
}

func (f *fakeDocs) List(context.Context) ([]models.LearningMaterial, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.LearningMaterial{}, f.items...), nil
}

func (f *fakeDocs) Delete(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.delErr != nil {
		return false, f.delErr
	}
	for i, m := range f.items {
		if m.ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeDocs) UpdateAnalyzed(_ context.Context, id string, analyzed bool) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updErr != nil {
		return false, f.updErr
	}
	f.updated = append(f.updated, id)
	for i := range f.items {
		if f.items[i].ID == id && f.items[i].IsAnalyzed != analyzed {
			f.items[i].IsAnalyzed = analyzed
			return true, nil
		}
	}
	return false, nil
}

type fakeBlobs struct {
	uploaded  map[string][]byte
	deleted   []string
	uploadErr error
	deleteErr error
}

const fakeBlobBase = "https://blobs.example.com/prolens/"

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{uploaded: map[string][]byte{}}
}

func (f *fakeBlobs) Upload(_ context.Context, filename, _ string, data []byte) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	ref := fakeBlobBase + "materials/1_" + filename
	f.uploaded[ref] = data
	return ref, nil
}

func (f *fakeBlobs) Owns(ref string) bool {
	return strings.HasPrefix(ref, fakeBlobBase)
}

func (f *fakeBlobs) Delete(_ context.Context, ref string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, ref)
	delete(f.uploaded, ref)
	return nil
}

type fakeSub struct {
	calls int
}

func (f *fakeSub) Subscribe(_ context.Context, fn func([]models.LearningMaterial)) (func(), error) {
	f.calls++
	fn([]models.LearningMaterial{})
	return func() {}, nil
}

// ---- AI fake ----

type fakeGateway struct {
	answer  string
	err     error
	quiz    []ai.QuizQuestion
	history []models.ChatMessage
	profile models.Profile
	atts    []ai.Attachment
	photo   ai.Attachment
	topic   string
	n       int
}

func (f *fakeGateway) Chat(_ context.Context, profile models.Profile, history []models.ChatMessage, _ string, attachments []ai.Attachment) (string, error) {
	f.profile = profile
	f.history = history
	f.atts = attachments
	return f.answer, f.err
}

func (f *fakeGateway) Critique(_ context.Context, photo ai.Attachment) (string, error) {
	f.photo = photo
	return f.answer, f.err
}

func (f *fakeGateway) Quiz(_ context.Context, topic string, n int) ([]ai.QuizQuestion, error) {
	f.topic, f.n = topic, n
	return f.quiz, f.err
}

var errBoom = errors.New("boom")
