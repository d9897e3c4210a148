package services

import (
	"context"

	"github.com/dmitrijs2005/prolens/internal/client/storage"
	"github.com/dmitrijs2005/prolens/internal/common"
)

// AvgDocumentSize is the per-record guess used by the usage estimate.
const AvgDocumentSize = 512 * 1024

type Usage struct {
	FlagBytes     int64
	Documents     int
	EstimateBytes int64
}

func (u Usage) String() string {
	return common.FormatSize(u.EstimateBytes)
}

// EstimateUsage approximates local storage use for display. It is never
// enforced.
func EstimateUsage(ctx context.Context, local *storage.Local) (Usage, error) {
	flagBytes, err := local.Flags.Size(ctx)
	if err != nil {
		return Usage{}, err
	}

	materials, err := local.Materials.Count(ctx)
	if err != nil {
		return Usage{}, err
	}
	presentations, err := local.Presentations.Count(ctx)
	if err != nil {
		return Usage{}, err
	}

	docs := materials + presentations
	return Usage{
		FlagBytes:     flagBytes,
		Documents:     docs,
		EstimateBytes: flagBytes + int64(docs)*AvgDocumentSize,
	}, nil
}
