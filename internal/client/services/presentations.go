package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"sort"
	"time"

	"github.com/dmitrijs2005/prolens/internal/client/models"
	"github.com/dmitrijs2005/prolens/internal/client/repositories/presentations"
	"github.com/dmitrijs2005/prolens/internal/common"
)

type PresentationService interface {
	Upload(ctx context.Context, u Upload) (*models.PresentationDoc, error)
	List(ctx context.Context) ([]models.PresentationDoc, error)
	Get(ctx context.Context, id string) (*models.PresentationDoc, error)
	Delete(ctx context.Context, id string) error
}

type presentationService struct {
	repo presentations.Repository
	now  func() time.Time
}

func NewPresentationService(repo presentations.Repository) PresentationService {
	return &presentationService{repo: repo, now: time.Now}
}

func (s *presentationService) Upload(ctx context.Context, u Upload) (*models.PresentationDoc, error) {
	if err := common.CheckSize(int64(len(u.Data)), common.PresentationLimit); err != nil {
		return nil, err
	}

	now := s.now()
	p := &models.PresentationDoc{
		ID:      common.NewLocalID(now),
		Name:    u.Name,
		Type:    u.MimeType,
		Date:    now.Format(models.PresentationDateLayout),
		Content: "data:" + u.MimeType + ";base64," + base64.StdEncoding.EncodeToString(u.Data),
	}

	if err := s.repo.Put(ctx, p); err != nil {
		return nil, fmt.Errorf("saving error: %w", err)
	}
	return p, nil
}

func (s *presentationService) List(ctx context.Context) ([]models.PresentationDoc, error) {
	list, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].ID > list[j].ID })
	return list, nil
}

func (s *presentationService) Get(ctx context.Context, id string) (*models.PresentationDoc, error) {
	return s.repo.Get(ctx, id)
}

func (s *presentationService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
