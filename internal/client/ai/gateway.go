// Package ai is the thin client of the external generative model used by
// the tutor chat, photo critique and quiz features.
package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/prolens/internal/client/config"
	"github.com/dmitrijs2005/prolens/internal/client/models"
	"github.com/dmitrijs2005/prolens/internal/common"
	"github.com/sashabaranov/go-openai"
)

var ErrNotConfigured = errors.New("AI gateway is not configured")

// Attachment is a learning material resolved to bytes for one request.
type Attachment struct {
	Name     string
	Type     models.MaterialType
	MimeType string
	Data     []byte
}

type QuizQuestion struct {
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
	Explanation  string   `json:"explanation"`
}

type Gateway interface {
	Chat(ctx context.Context, profile models.Profile, history []models.ChatMessage, question string, attachments []Attachment) (string, error)
	Critique(ctx context.Context, photo Attachment) (string, error)
	Quiz(ctx context.Context, topic string, n int) ([]QuizQuestion, error)
}

type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIGateway talks to any OpenAI-compatible endpoint.
type OpenAIGateway struct {
	client chatCompleter
	model  string
}

func NewOpenAIGateway(cfg config.AIConfig) *OpenAIGateway {
	var client *openai.Client
	if cfg.BaseURL != "" {
		c := openai.DefaultConfig(cfg.APIKey)
		c.BaseURL = cfg.BaseURL
		client = openai.NewClientWithConfig(c)
	} else {
		client = openai.NewClient(cfg.APIKey)
	}
	return &OpenAIGateway{client: client, model: cfg.Model}
}

const (
	tutorPrompt    = "You are ProLens, a patient photography tutor. Answer in plain language and refer to exposure, composition and light where it helps."
	critiquePrompt = "You are a photography coach. Critique the photo: exposure, composition, focus, and one concrete suggestion."
	quizPrompt     = `You write photography quizzes. Reply with JSON {"questions":[{"question":"","options":["","","",""],"correctIndex":0,"explanation":""}]}.`
)

func (g *OpenAIGateway) Chat(ctx context.Context, profile models.Profile, history []models.ChatMessage, question string, attachments []Attachment) (string, error) {
	system := tutorPrompt
	if profile.Name != "" || profile.Level != "" {
		system += fmt.Sprintf(" The student is %s, level %s.", profile.Name, profile.Level)
		if profile.Goal != "" {
			system += " Their goal: " + profile.Goal + "."
		}
	}

	msgs := []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleSystem, Content: system}}
	for _, h := range history {
		role := openai.ChatMessageRoleUser
		if h.Role == models.ChatModel {
			role = openai.ChatMessageRoleAssistant
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: role, Content: h.Text})
	}
	msgs = append(msgs, userMessage(question, attachments))

	return g.complete(ctx, openai.ChatCompletionRequest{Model: g.model, Messages: msgs})
}

func (g *OpenAIGateway) Critique(ctx context.Context, photo Attachment) (string, error) {
	return g.complete(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: critiquePrompt},
			userMessage("Please critique this photo.", []Attachment{photo}),
		},
	})
}

func (g *OpenAIGateway) Quiz(ctx context.Context, topic string, n int) ([]QuizQuestion, error) {
	out, err := g.complete(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Temperature: 0.7,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: quizPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf("Write %d questions about: %s", n, topic)},
		},
	})
	if err != nil {
		return nil, err
	}

	var payload struct {
		Questions []QuizQuestion `json:"questions"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		return nil, fmt.Errorf("failed to decode quiz: %w", err)
	}

	valid := payload.Questions[:0]
	for _, q := range payload.Questions {
		if q.Question != "" && q.CorrectIndex >= 0 && q.CorrectIndex < len(q.Options) {
			valid = append(valid, q)
		}
	}
	if len(valid) == 0 {
		return nil, errors.New("quiz response has no usable questions")
	}
	return valid, nil
}

func (g *OpenAIGateway) complete(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrRemoteUnreachable, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty completion", common.ErrRemoteUnreachable)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// userMessage sends images as image parts and text materials inline. Audio
// and video are only named.
func userMessage(text string, attachments []Attachment) openai.ChatCompletionMessage {
	if len(attachments) == 0 {
		return openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: text}
	}

	parts := []openai.ChatMessagePart{{Type: openai.ChatMessagePartTypeText, Text: text}}
	for _, a := range attachments {
		switch a.Type {
		case models.MaterialImage:
			parts = append(parts, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL:    "data:" + a.MimeType + ";base64," + base64.StdEncoding.EncodeToString(a.Data),
					Detail: openai.ImageURLDetailAuto,
				},
			})
		case models.MaterialText:
			parts = append(parts, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeText,
				Text: fmt.Sprintf("Material %q:\n%s", a.Name, string(a.Data)),
			})
		default:
			parts = append(parts, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeText,
				Text: fmt.Sprintf("The student attached %s material %q.", a.Type, a.Name),
			})
		}
	}

	return openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, MultiContent: parts}
}

// Disabled is the gateway used when no API key is configured.
type Disabled struct{}

func (Disabled) Chat(context.Context, models.Profile, []models.ChatMessage, string, []Attachment) (string, error) {
	return "", ErrNotConfigured
}

func (Disabled) Critique(context.Context, Attachment) (string, error) {
	return "", ErrNotConfigured
}

func (Disabled) Quiz(context.Context, string, int) ([]QuizQuestion, error) {
	return nil, ErrNotConfigured
}
