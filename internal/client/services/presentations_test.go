package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/prolens/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresentations_UploadLargeDeck(t *testing.T) {
	ctx := context.Background()
	s := NewPresentationService(setupLocal(t).Presentations).(*presentationService)
	s.now = fixedNow

	p, err := s.Upload(ctx, Upload{Name: "week1.pdf", MimeType: "application/pdf", Data: make([]byte, 20*common.MiB)})
	require.NoError(t, err)
	assert.Equal(t, "2025-03-14 09:26", p.Date)
	assert.Equal(t, "application/pdf", p.Type)

	got, err := s.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Content, got.Content)
}

func TestPresentations_RejectsOverLimit(t *testing.T) {
	s := NewPresentationService(setupLocal(t).Presentations)

	_, err := s.Upload(context.Background(), Upload{Name: "huge.pdf", MimeType: "application/pdf", Data: make([]byte, 51*common.MiB)})
	require.ErrorIs(t, err, common.ErrPayloadTooLarge)
}

func TestPresentations_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	s := NewPresentationService(setupLocal(t).Presentations)

	a, err := s.Upload(ctx, Upload{Name: "a.pdf", MimeType: "application/pdf", Data: []byte("a")})
	require.NoError(t, err)
	_, err = s.Upload(ctx, Upload{Name: "b.pdf", MimeType: "application/pdf", Data: []byte("b")})
	require.NoError(t, err)

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, s.Delete(ctx, a.ID))
	require.NoError(t, s.Delete(ctx, a.ID))

	_, err = s.Get(ctx, a.ID)
	require.ErrorIs(t, err, common.ErrNotFound)

	list, err = s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "b.pdf", list[0].Name)
}
