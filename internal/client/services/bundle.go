package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/dmitrijs2005/prolens/internal/client/models"
	"github.com/dmitrijs2005/prolens/internal/client/repositories/flags"
	"github.com/dmitrijs2005/prolens/internal/client/repositories/materials"
	"github.com/dmitrijs2005/prolens/internal/client/storage"
	"github.com/dmitrijs2005/prolens/internal/common"
	"github.com/dmitrijs2005/prolens/internal/dbx"
	"github.com/dmitrijs2005/prolens/internal/logging"
	"github.com/dmitrijs2005/prolens/internal/metrics"
)

type BundleKind string

const (
	BundleSync   BundleKind = "sync"
	BundleBackup BundleKind = "backup"
)

// Bundle is the portable JSON document moved between devices. Nil fields
// are omitted on export and left untouched on import.
type Bundle struct {
	Timestamp       string                    `json:"timestamp"`
	Profile         *models.Profile           `json:"profile,omitempty"`
	Messages        *[]models.ChatMessage     `json:"messages,omitempty"`
	CompletedTopics *[]string                 `json:"completedTopics,omitempty"`
	MyRegistration  *models.Registration      `json:"myRegistration,omitempty"`
	Announcement    *string                   `json:"announcement,omitempty"`
	Registrations   *[]models.Registration    `json:"registrations,omitempty"`
	Materials       []models.LearningMaterial `json:"materials"`
}

type ExportResult struct {
	Data     []byte
	Size     int64
	Warn     bool
	FileName string
}

// ImportReport lists the bundle fields written to the flag store and the
// number of materials the document store now holds.
type ImportReport struct {
	Flags     []string
	Materials int
}

type BundleCodec interface {
	Export(ctx context.Context, kind BundleKind) (*ExportResult, error)
	Import(ctx context.Context, data []byte) (*ImportReport, error)
}

type bundleCodec struct {
	db        *sql.DB
	flags     flags.Repository
	materials materials.Repository
	backend   Backend
	log       logging.Logger
	now       func() time.Time
}

// NewBundleCodec works on the local store. In cloud mode materials already
// live remotely, so exports carry an empty materials list.
func NewBundleCodec(local *storage.Local, backend Backend, log logging.Logger) BundleCodec {
	return &bundleCodec{
		db:        local.DB,
		flags:     local.Flags,
		materials: local.Materials,
		backend:   backend,
		log:       log,
		now:       time.Now,
	}
}

func (c *bundleCodec) Export(ctx context.Context, kind BundleKind) (*ExportResult, error) {
	now := c.now()
	b := Bundle{Timestamp: now.UTC().Format(time.RFC3339), Materials: []models.LearningMaterial{}}

	if err := readFlag(ctx, c.flags, flags.Profile, &b.Profile); err != nil {
		return nil, err
	}
	if err := readFlag(ctx, c.flags, flags.Messages, &b.Messages); err != nil {
		return nil, err
	}
	if err := readFlag(ctx, c.flags, flags.CompletedTopics, &b.CompletedTopics); err != nil {
		return nil, err
	}
	if err := readFlag(ctx, c.flags, flags.MyRegistration, &b.MyRegistration); err != nil {
		return nil, err
	}
	if err := readFlag(ctx, c.flags, flags.Announcement, &b.Announcement); err != nil {
		return nil, err
	}
	if err := readFlag(ctx, c.flags, flags.Registrations, &b.Registrations); err != nil {
		return nil, err
	}

	if c.backend == BackendLocal {
		list, err := c.materials.GetAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read materials: %w", err)
		}
		sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
		b.Materials = list
	}

	data, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("failed to encode bundle: %w", err)
	}
	metrics.BundleExports.WithLabelValues(string(kind)).Inc()

	size := int64(len(data))
	return &ExportResult{
		Data:     data,
		Size:     size,
		Warn:     size > common.BundleWarnThreshold,
		FileName: fmt.Sprintf("prolens_%s_%s.json", kind, now.Format("2006-01-02")),
	}, nil
}

func readFlag[T any](ctx context.Context, r flags.Repository, k flags.Key[T], dst **T) error {
	v, ok, err := flags.Get(ctx, r, k)
	if err != nil {
		return err
	}
	if ok {
		*dst = &v
	}
	return nil
}

// Import replaces the document store with the bundle's materials and
// overwrites only the flags the bundle carries. Everything is written in
// one transaction; a bundle that fails to parse writes nothing.
func (c *bundleCodec) Import(ctx context.Context, data []byte) (*ImportReport, error) {
	b, err := decodeBundle(data)
	if err != nil {
		metrics.BundleImports.WithLabelValues(metrics.ImportMalformed).Inc()
		return nil, err
	}

	report := &ImportReport{Flags: []string{}}

	err = dbx.WithTx(ctx, c.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		fr := flags.NewSQLiteRepository(tx)
		mr := materials.NewSQLiteRepository(tx)

		writes := []func() (string, bool, error){
			func() (string, bool, error) { return writeFlag(ctx, fr, "profile", flags.Profile, b.Profile) },
			func() (string, bool, error) { return writeFlag(ctx, fr, "messages", flags.Messages, b.Messages) },
			func() (string, bool, error) {
				return writeFlag(ctx, fr, "completedTopics", flags.CompletedTopics, b.CompletedTopics)
			},
			func() (string, bool, error) {
				return writeFlag(ctx, fr, "myRegistration", flags.MyRegistration, b.MyRegistration)
			},
			func() (string, bool, error) {
				return writeFlag(ctx, fr, "announcement", flags.Announcement, b.Announcement)
			},
			func() (string, bool, error) {
				return writeFlag(ctx, fr, "registrations", flags.Registrations, b.Registrations)
			},
		}
		for _, w := range writes {
			field, written, err := w()
			if err != nil {
				return err
			}
			if written {
				report.Flags = append(report.Flags, field)
			}
		}

		if err := mr.Clear(ctx); err != nil {
			return err
		}
		for i := range b.Materials {
			if err := mr.Put(ctx, &b.Materials[i]); err != nil {
				return err
			}
		}
		// repeated ids collapse into one row
		n, err := mr.Count(ctx)
		if err != nil {
			return err
		}
		report.Materials = n
		return nil
	})
	if err != nil {
		metrics.BundleImports.WithLabelValues(metrics.ImportFailed).Inc()
		c.log.Error(ctx, "import rolled back", "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrPartialWrite, err)
	}

	metrics.BundleImports.WithLabelValues(metrics.ImportOK).Inc()
	c.log.Info(ctx, "bundle imported", "flags", len(report.Flags), "materials", report.Materials)
	return report, nil
}

func writeFlag[T any](ctx context.Context, r flags.Repository, field string, k flags.Key[T], v *T) (string, bool, error) {
	if v == nil {
		return field, false, nil
	}
	if err := flags.Set(ctx, r, k, *v); err != nil {
		return field, false, err
	}
	return field, true, nil
}

func decodeBundle(data []byte) (*Bundle, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrMalformedImport, err)
	}
	if probe == nil {
		return nil, fmt.Errorf("%w: bundle is not an object", common.ErrMalformedImport)
	}

	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrMalformedImport, err)
	}

	for i := range b.Materials {
		m := &b.Materials[i]
		if m.ID == "" {
			return nil, fmt.Errorf("%w: material %d has no id", common.ErrMalformedImport, i)
		}
		if m.Type == "" {
			m.Type = models.MaterialTypeFromMIME(m.MimeType)
		}
		if !m.Type.Valid() {
			return nil, fmt.Errorf("%w: material %s has unknown type %q", common.ErrMalformedImport, m.ID, m.Type)
		}
	}
	return &b, nil
}
