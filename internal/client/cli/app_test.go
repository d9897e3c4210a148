package cli

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dmitrijs2005/prolens/internal/client/ai"
	"github.com/dmitrijs2005/prolens/internal/client/config"
	"github.com/dmitrijs2005/prolens/internal/client/models"
	"github.com/dmitrijs2005/prolens/internal/client/services"
	"github.com/dmitrijs2005/prolens/internal/client/storage"
	"github.com/dmitrijs2005/prolens/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

type stubGateway struct {
	answer string
	quiz   []ai.QuizQuestion
}

func (s stubGateway) Chat(context.Context, models.Profile, []models.ChatMessage, string, []ai.Attachment) (string, error) {
	return s.answer, nil
}

func (s stubGateway) Critique(context.Context, ai.Attachment) (string, error) {
	return s.answer, nil
}

func (s stubGateway) Quiz(context.Context, string, int) ([]ai.QuizQuestion, error) {
	return s.quiz, nil
}

type testApp struct {
	app   *App
	local *storage.Local
	out   *bytes.Buffer
	dir   string
}

// newTestApp builds an App over an in-memory store whose stdin is the given
// lines.
func newTestApp(t *testing.T, gw ai.Gateway, lines ...string) *testApp {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	require.NoError(t, storage.MigrateLocal(context.Background(), db))
	local := storage.NewLocal(db)

	dir := t.TempDir()
	cfg := &config.Config{CacheSize: 16, ExportDir: dir, LauncherURL: "https://prolens.app"}
	out := &bytes.Buffer{}
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")

	log := logging.Discard()
	app, err := newApp(context.Background(), cfg, log, local, nil, services.NewLocalMaterials(local.Materials, log), gw, in, out)
	require.NoError(t, err)
	t.Cleanup(app.Close)

	return &testApp{app: app, local: local, out: out, dir: dir}
}

func (ta *testApp) run(t *testing.T) string {
	t.Helper()
	origPrint := printlnFn
	printlnFn = func(a ...any) (int, error) { return fmt.Fprintln(ta.out, a...) }
	t.Cleanup(func() { printlnFn = origPrint })

	runREPL(context.Background(), ta.app, ta.app.getStatus, ta.app.in)
	return ta.out.String()
}

func stubPassword(t *testing.T, passwords ...string) {
	t.Helper()
	old := readPassword
	readPassword = func(int) ([]byte, error) {
		if len(passwords) == 0 {
			return nil, os.ErrClosed
		}
		pw := passwords[0]
		passwords = passwords[1:]
		return []byte(pw), nil
	}
	t.Cleanup(func() { readPassword = old })
}

func TestApp_StudentFlow(t *testing.T) {
	ta := newTestApp(t, stubGateway{answer: "Try f/2.8."},
		"role student", "Ana", "beginner", "portraits",
		"chat how do I blur the background?",
		"chat",
		"complete exposure triangle",
		"topics",
		"preset 2.8 1/250 400",
		"preset",
		"upload notes.txt",
		"exit",
	)

	out := ta.run(t)

	assert.Contains(t, out, "Welcome, Ana!")
	assert.Contains(t, out, "tutor: Try f/2.8.")
	assert.Contains(t, out, "you: how do I blur the background?")
	assert.Contains(t, out, "1. exposure triangle")
	assert.Contains(t, out, "f/2.8  1/250 s  ISO 400")
	assert.Contains(t, out, errAdminOnly.Error())
	assert.Contains(t, out, "prolens (student local)>")
}

func TestApp_AdminMaterialsAndRegistrations(t *testing.T) {
	stubPassword(t, "wrong", "admin")

	dir := t.TempDir()
	notes := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(notes, []byte("sunny 16 rule"), 0o600))

	ta := newTestApp(t, stubGateway{},
		"admin",
		"admin",
		"upload "+notes,
		"materials",
		"addreg", "Ben Ozols", "ben@example.com", "+371 2000 0000", "advanced",
		"registrations",
		"announce Field trip on Saturday",
		"exit",
	)

	out := ta.run(t)
	assert.Contains(t, out, "Error: wrong password")
	assert.Contains(t, out, "Logged in as admin")
	assert.Contains(t, out, "Uploaded notes.txt")
	assert.Contains(t, out, "notes.txt")
	assert.Contains(t, out, "Ben Ozols")
	assert.Contains(t, out, "Announcement updated")

	list := ta.app.cache.All()
	require.Len(t, list, 1)
	assert.Equal(t, "sunny 16 rule", list[0].Content)

	regs, err := ta.app.registrations.List(context.Background())
	require.NoError(t, err)
	require.Len(t, regs, 1)

	// contact and delete by the ids we now know
	ta.app.in.Reset(strings.NewReader(strings.Join([]string{
		"contact " + regs[0].ID,
		"delete " + list[0].ID,
		"materials",
		"exit",
	}, "\n")))
	out = ta.run(t)
	assert.Contains(t, out, "https://wa.me/37120000000?text=")
	assert.Contains(t, out, "Deleted notes.txt")
	assert.Contains(t, out, "No materials yet")
}

func TestApp_ExportImport(t *testing.T) {
	ta := newTestApp(t, stubGateway{},
		"complete aperture",
		"export sync",
		"exit",
	)
	out := ta.run(t)
	assert.Contains(t, out, "Saved ")

	matches, err := filepath.Glob(filepath.Join(ta.dir, "prolens_sync_*.json"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	var b services.Bundle
	require.NoError(t, json.Unmarshal(data, &b))
	require.NotNil(t, b.CompletedTopics)
	assert.Equal(t, []string{"aperture"}, *b.CompletedTopics)

	bundle := filepath.Join(ta.dir, "in.json")
	require.NoError(t, os.WriteFile(bundle, []byte(`{"announcement":"Welcome back","materials":[{"id":"1-a","type":"text","name":"a.txt","content":"alpha","isAnalyzed":false}]}`), 0o600))

	other := newTestApp(t, stubGateway{},
		"import "+bundle, "y",
		"materials",
		"announce",
		"exit",
	)
	out = other.run(t)
	assert.Contains(t, out, "Imported 1 materials; restored announcement")
	assert.Contains(t, out, "a.txt")
	assert.Contains(t, out, "Welcome back")
}

func TestApp_ImportMalformedIsInline(t *testing.T) {
	dir := t.TempDir()
	bundle := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bundle, []byte(`{"materials":`), 0o600))

	ta := newTestApp(t, stubGateway{}, "import "+bundle, "y", "status", "exit")
	out := ta.run(t)

	assert.Contains(t, out, "Error: malformed import bundle")
	assert.Contains(t, out, "Materials backend: local (0 materials)")
}

func TestApp_QuizCompletesTopic(t *testing.T) {
	gw := stubGateway{quiz: []ai.QuizQuestion{
		{Question: "Wider aperture means?", Options: []string{"less light", "more light"}, CorrectIndex: 1},
		{Question: "Base ISO?", Options: []string{"100", "3200"}, CorrectIndex: 0},
	}}
	ta := newTestApp(t, gw, "quiz depth of field", "2", "2", "topics", "exit")

	out := ta.run(t)
	assert.Contains(t, out, "Score: 1/2")
	assert.Contains(t, out, "1. depth of field")
}

func TestApp_LauncherAndReset(t *testing.T) {
	ta := newTestApp(t, stubGateway{}, "complete iso", "launcher", "reset", "yes", "topics", "exit")

	out := ta.run(t)
	assert.Contains(t, out, "Launcher written to")
	assert.Contains(t, out, "Local data wiped")
	assert.Contains(t, out, "No topics completed yet")

	page, err := os.ReadFile(filepath.Join(ta.dir, "ProLens.html"))
	require.NoError(t, err)
	assert.Contains(t, string(page), "https://prolens.app")
}

func TestNewApp_PlaceholderCredentialsKeepMaterialsLocal(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.DataDir = t.TempDir()
	cfg.ExportDir = t.TempDir()
	cfg.Cloud = config.CloudConfig{
		DatabaseDSN: "YOUR_DATABASE_URL",
		S3Endpoint:  "YOUR_S3_ENDPOINT",
		S3Bucket:    "YOUR_BUCKET",
		S3AccessKey: "YOUR_ACCESS_KEY",
		S3SecretKey: "YOUR_SECRET_KEY",
	}
	require.False(t, cfg.Cloud.IsConfigured())

	app, err := NewApp(ctx, cfg, logging.Discard())
	require.NoError(t, err)
	t.Cleanup(app.Close)

	require.Nil(t, app.cloud)
	require.Equal(t, services.BackendLocal, app.materials.Backend())
	assert.Equal(t, "(local)", app.getStatus())

	m, err := app.materials.Upload(ctx, services.Upload{Name: "light.txt", MimeType: "text/plain", Data: []byte("golden hour")})
	require.NoError(t, err)

	n, err := app.local.Materials.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	stored, err := app.local.Materials.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "golden hour", stored.Content)

	_, err = os.Stat(filepath.Join(cfg.DataDir, cfg.DatabaseFile))
	require.NoError(t, err)
}

func TestApp_AdminPresentationsAndContacted(t *testing.T) {
	stubPassword(t, "admin")

	dir := t.TempDir()
	slides := filepath.Join(dir, "lighting.pdf")
	require.NoError(t, os.WriteFile(slides, []byte("%PDF-1.4 three point lighting"), 0o600))

	ta := newTestApp(t, stubGateway{},
		"admin",
		"present "+slides,
		"addreg", "Ieva Berzina", "ieva@example.com", "+371 2600 1122", "intermediate",
		"announce edit", "Darkroom open on Monday", "Bring a tripod", "",
		"exit",
	)
	out := ta.run(t)
	assert.Contains(t, out, "Added presentation lighting.pdf")
	assert.Contains(t, out, "Announcement updated")

	text, err := ta.app.state.Announcement(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Darkroom open on Monday\nBring a tripod", text)

	docs, err := ta.app.presentations.List(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1)
	regs, err := ta.app.registrations.List(context.Background())
	require.NoError(t, err)
	require.Len(t, regs, 1)

	ta.app.in.Reset(strings.NewReader(strings.Join([]string{
		"presentation " + docs[0].ID,
		"presentation missing",
		"contacted " + regs[0].ID,
		"exit",
	}, "\n")))
	out = ta.run(t)
	assert.Contains(t, out, "Added: "+docs[0].Date)
	assert.Contains(t, out, "Error: no presentation missing")
	assert.Contains(t, out, "Marked as contacted")

	regs, err = ta.app.registrations.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.StatusContacted, regs[0].Status)
}
