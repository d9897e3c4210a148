package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/prolens/internal/client/cloud"
	"github.com/dmitrijs2005/prolens/internal/client/models"
	"github.com/dmitrijs2005/prolens/internal/client/repositories/materials"
	"github.com/dmitrijs2005/prolens/internal/common"
	"github.com/dmitrijs2005/prolens/internal/logging"
	"github.com/dmitrijs2005/prolens/internal/metrics"
)

type Backend string

const (
	BackendLocal Backend = "local"
	BackendCloud Backend = "cloud"
)

// Upload is a file picked by the admin for the tutor's materials.
type Upload struct {
	Name     string
	MimeType string
	Data     []byte
}

// DeleteResult separates the authoritative record deletion from the
// best-effort release of the blob behind it.
type DeleteResult struct {
	RecordDeleted bool
	BlobDeleteErr error
	Err           error
}

// MaterialsRepository is where learning materials live for this run: the
// local document store or the cloud mirror, never both.
type MaterialsRepository interface {
	Backend() Backend
	Upload(ctx context.Context, u Upload) (*models.LearningMaterial, error)
	List(ctx context.Context) ([]models.LearningMaterial, error)
	Delete(ctx context.Context, m models.LearningMaterial) DeleteResult
	MarkAnalyzed(ctx context.Context, id string) error
	// Subscribe calls fn with the full set now and after every change until
	// the returned function is called.
	Subscribe(ctx context.Context, fn func([]models.LearningMaterial)) (func(), error)
}

type localMaterials struct {
	repo materials.Repository
	log  logging.Logger
	now  func() time.Time

	mu     sync.Mutex
	nextID int
	subs   map[int]func([]models.LearningMaterial)
}

func NewLocalMaterials(repo materials.Repository, log logging.Logger) MaterialsRepository {
	return &localMaterials{
		repo: repo,
		log:  log,
		now:  time.Now,
		subs: map[int]func([]models.LearningMaterial){},
	}
}

func (r *localMaterials) Backend() Backend { return BackendLocal }

func (r *localMaterials) Upload(ctx context.Context, u Upload) (*models.LearningMaterial, error) {
	if err := common.CheckSize(int64(len(u.Data)), common.ChatMaterialLimit); err != nil {
		return nil, err
	}

	m := &models.LearningMaterial{
		ID:       common.NewLocalID(r.now()),
		Type:     models.MaterialTypeFromMIME(u.MimeType),
		Name:     u.Name,
		Content:  inlineContent(u.MimeType, u.Data),
		MimeType: u.MimeType,
	}

	if err := r.repo.Put(ctx, m); err != nil {
		return nil, fmt.Errorf("saving error: %w", err)
	}
	metrics.MaterialUploads.WithLabelValues(string(BackendLocal)).Inc()

	r.notify(ctx)
	return m, nil
}

func (r *localMaterials) List(ctx context.Context) ([]models.LearningMaterial, error) {
	list, err := r.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	// newest first; local ids start with the creation time in ms
	sort.SliceStable(list, func(i, j int) bool { return list[i].ID > list[j].ID })
	return list, nil
}

func (r *localMaterials) Delete(ctx context.Context, m models.LearningMaterial) DeleteResult {
	if err := r.repo.Delete(ctx, m.ID); err != nil {
		return DeleteResult{Err: err}
	}
	r.notify(ctx)
	return DeleteResult{RecordDeleted: true}
}

func (r *localMaterials) MarkAnalyzed(ctx context.Context, id string) error {
	changed, err := r.repo.MarkAnalyzed(ctx, id)
	if err != nil {
		return err
	}
	if changed {
		r.notify(ctx)
	}
	return nil
}

func (r *localMaterials) Subscribe(ctx context.Context, fn func([]models.LearningMaterial)) (func(), error) {
	list, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.subs[id] = fn
	r.mu.Unlock()

	fn(list)

	return func() {
		r.mu.Lock()
		delete(r.subs, id)
		r.mu.Unlock()
	}, nil
}

func (r *localMaterials) notify(ctx context.Context) {
	r.mu.Lock()
	subs := make([]func([]models.LearningMaterial), 0, len(r.subs))
	for _, fn := range r.subs {
		subs = append(subs, fn)
	}
	r.mu.Unlock()

	if len(subs) == 0 {
		return
	}

	list, err := r.List(ctx)
	if err != nil {
		r.log.Warn(ctx, "failed to refresh materials", "error", err)
		return
	}
	for _, fn := range subs {
		fn(list)
	}
}

// inlineContent keeps text readable and encodes everything else as a data URL.
func inlineContent(mimeType string, data []byte) string {
	if strings.HasPrefix(mimeType, "text/") {
		return string(data)
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

type blobStore interface {
	Upload(ctx context.Context, filename, mimeType string, data []byte) (string, error)
	Owns(ref string) bool
	Delete(ctx context.Context, ref string) error
}

type materialSubscriber interface {
	Subscribe(ctx context.Context, fn func([]models.LearningMaterial)) (func(), error)
}

type cloudMaterials struct {
	docs  cloud.Repository
	blobs blobStore
	sub   materialSubscriber
	log   logging.Logger
}

func NewCloudMaterials(docs cloud.Repository, blobs blobStore, sub materialSubscriber, log logging.Logger) MaterialsRepository {
	return &cloudMaterials{docs: docs, blobs: blobs, sub: sub, log: log}
}

func (r *cloudMaterials) Backend() Backend { return BackendCloud }

func (r *cloudMaterials) Upload(ctx context.Context, u Upload) (*models.LearningMaterial, error) {
	if common.AssessSize(int64(len(u.Data))) == common.SizeDanger {
		r.log.Warn(ctx, "uploading large material", "name", u.Name, "size", common.FormatSize(int64(len(u.Data))))
	}

	ref, err := r.blobs.Upload(ctx, u.Name, u.MimeType, u.Data)
	if err != nil {
		return nil, err
	}

	m := &models.LearningMaterial{
		Type:     models.MaterialTypeFromMIME(u.MimeType),
		Name:     u.Name,
		Content:  ref,
		MimeType: u.MimeType,
	}

	if err := r.docs.Add(ctx, m); err != nil {
		if derr := r.blobs.Delete(ctx, ref); derr != nil {
			r.log.Warn(ctx, "failed to release orphaned blob", "ref", ref, "error", derr)
		}
		return nil, fmt.Errorf("%w: %v", common.ErrRemoteUnreachable, err)
	}
	metrics.MaterialUploads.WithLabelValues(string(BackendCloud)).Inc()

	return m, nil
}

func (r *cloudMaterials) List(ctx context.Context) ([]models.LearningMaterial, error) {
	list, err := r.docs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrRemoteUnreachable, err)
	}
	return list, nil
}

func (r *cloudMaterials) Delete(ctx context.Context, m models.LearningMaterial) DeleteResult {
	if _, err := r.docs.Delete(ctx, m.ID); err != nil {
		return DeleteResult{Err: fmt.Errorf("%w: %v", common.ErrRemoteUnreachable, err)}
	}

	res := DeleteResult{RecordDeleted: true}
	if !r.blobs.Owns(m.Content) {
		return res
	}

	if err := r.blobs.Delete(ctx, m.Content); err != nil {
		metrics.BlobDeleteFailures.Inc()
		r.log.Warn(ctx, "failed to delete material blob", "id", m.ID, "error", err)
		res.BlobDeleteErr = err
	}
	return res
}

func (r *cloudMaterials) MarkAnalyzed(ctx context.Context, id string) error {
	if _, err := r.docs.UpdateAnalyzed(ctx, id, true); err != nil {
		return fmt.Errorf("%w: %v", common.ErrRemoteUnreachable, err)
	}
	return nil
}

func (r *cloudMaterials) Subscribe(ctx context.Context, fn func([]models.LearningMaterial)) (func(), error) {
	return r.sub.Subscribe(ctx, fn)
}
