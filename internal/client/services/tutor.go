package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/prolens/internal/client/ai"
	"github.com/dmitrijs2005/prolens/internal/client/cache"
	"github.com/dmitrijs2005/prolens/internal/client/models"
	"github.com/dmitrijs2005/prolens/internal/common"
	"github.com/dmitrijs2005/prolens/internal/logging"
	"github.com/dmitrijs2005/prolens/internal/netx"
)

var errBadDataURL = errors.New("malformed data url")

// Tutor runs the AI features against the current materials and keeps the
// chat transcript.
type Tutor interface {
	Ask(ctx context.Context, question string) (string, error)
	Critique(ctx context.Context, photo Upload) (string, error)
	Quiz(ctx context.Context, topic string, n int) ([]ai.QuizQuestion, error)
}

type tutor struct {
	gateway   ai.Gateway
	state     StateService
	materials MaterialsRepository
	cache     *cache.Materials
	http      *http.Client
	log       logging.Logger
	now       func() time.Time
}

func NewTutor(gateway ai.Gateway, state StateService, repo MaterialsRepository, c *cache.Materials, httpClient *http.Client, log logging.Logger) Tutor {
	return &tutor{
		gateway:   gateway,
		state:     state,
		materials: repo,
		cache:     c,
		http:      httpClient,
		log:       log,
		now:       time.Now,
	}
}

// Ask sends the question with every material attached, stores the exchange
// and marks the consumed materials analyzed. Failing to mark one is logged
// only.
func (t *tutor) Ask(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", fmt.Errorf("%w: question cannot be blank", common.ErrValidation)
	}

	profile, err := t.state.Profile(ctx)
	if err != nil {
		return "", err
	}
	history, err := t.state.Messages(ctx)
	if err != nil {
		return "", err
	}

	var (
		attachments []ai.Attachment
		consumed    []models.LearningMaterial
	)
	for _, m := range t.cache.All() {
		a, err := t.resolve(ctx, m)
		if err != nil {
			t.log.Warn(ctx, "skipping material", "id", m.ID, "error", err)
			continue
		}
		attachments = append(attachments, a)
		consumed = append(consumed, m)
	}

	asked := t.now()
	answer, err := t.gateway.Chat(ctx, profile, history, question, attachments)
	if err != nil {
		return "", err
	}

	err = t.state.AppendMessages(ctx,
		models.ChatMessage{Role: models.ChatUser, Text: question, Time: asked},
		models.ChatMessage{Role: models.ChatModel, Text: answer, Time: t.now()},
	)
	if err != nil {
		t.log.Warn(ctx, "failed to save transcript", "error", err)
	}

	for _, m := range consumed {
		if m.IsAnalyzed {
			continue
		}
		if err := t.materials.MarkAnalyzed(ctx, m.ID); err != nil {
			t.log.Warn(ctx, "failed to mark material analyzed", "id", m.ID, "error", err)
		}
	}

	return answer, nil
}

func (t *tutor) Critique(ctx context.Context, photo Upload) (string, error) {
	if err := common.CheckSize(int64(len(photo.Data)), common.ChatMaterialLimit); err != nil {
		return "", err
	}
	if models.MaterialTypeFromMIME(photo.MimeType) != models.MaterialImage {
		return "", fmt.Errorf("%w: %s is not an image", common.ErrValidation, photo.Name)
	}

	return t.gateway.Critique(ctx, ai.Attachment{
		Name:     photo.Name,
		Type:     models.MaterialImage,
		MimeType: photo.MimeType,
		Data:     photo.Data,
	})
}

func (t *tutor) Quiz(ctx context.Context, topic string, n int) ([]ai.QuizQuestion, error) {
	if n <= 0 {
		n = 5
	}
	return t.gateway.Quiz(ctx, topic, n)
}

// resolve turns a material into bytes: plain text as is, data URLs decoded,
// remote references downloaded. Decoded payloads are cached by id.
func (t *tutor) resolve(ctx context.Context, m models.LearningMaterial) (ai.Attachment, error) {
	a := ai.Attachment{Name: m.Name, Type: m.Type, MimeType: m.MimeType}

	if b, ok := t.cache.Payload(m.ID); ok {
		a.Data = b
		return a, nil
	}

	switch {
	case m.IsInline():
		mimeType, b, err := decodeDataURL(m.Content)
		if err != nil {
			return a, err
		}
		if a.MimeType == "" {
			a.MimeType = mimeType
		}
		a.Data = b
	case m.IsRemote():
		b, contentType, err := netx.Download(ctx, t.http, m.Content, common.PresentationLimit)
		if err != nil {
			return a, err
		}
		if a.MimeType == "" {
			a.MimeType = contentType
		}
		a.Data = b
	default:
		a.Data = []byte(m.Content)
	}

	t.cache.StorePayload(m.ID, a.Data)
	return a, nil
}

func decodeDataURL(s string) (string, []byte, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(s, "data:"), ",")
	if !ok {
		return "", nil, errBadDataURL
	}

	mimeType, isBase64 := strings.CutSuffix(header, ";base64")
	if !isBase64 {
		return mimeType, []byte(payload), nil
	}

	b, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", errBadDataURL, err)
	}
	return mimeType, b, nil
}
