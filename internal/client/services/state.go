package services

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"

	"github.com/dmitrijs2005/prolens/internal/client/models"
	"github.com/dmitrijs2005/prolens/internal/client/repositories/flags"
	"github.com/dmitrijs2005/prolens/internal/client/repositories/materials"
	"github.com/dmitrijs2005/prolens/internal/client/repositories/presentations"
	"github.com/dmitrijs2005/prolens/internal/client/storage"
	"github.com/dmitrijs2005/prolens/internal/common"
	"github.com/dmitrijs2005/prolens/internal/cryptox"
	"github.com/dmitrijs2005/prolens/internal/dbx"
)

// DefaultAdminPassword is seeded on first run when no verifier is stored.
const DefaultAdminPassword = "admin"

type StateService interface {
	Role(ctx context.Context) (models.Role, bool, error)
	SetRole(ctx context.Context, role models.Role) error
	Profile(ctx context.Context) (models.Profile, error)
	SetProfile(ctx context.Context, p models.Profile) error
	Logout(ctx context.Context) error

	Announcement(ctx context.Context) (string, error)
	SetAnnouncement(ctx context.Context, text string) error

	CompletedTopics(ctx context.Context) ([]string, error)
	CompleteTopic(ctx context.Context, topic string) (bool, error)

	Preset(ctx context.Context) (models.SimulatorPreset, bool, error)
	SavePreset(ctx context.Context, p models.SimulatorPreset) error

	Messages(ctx context.Context) ([]models.ChatMessage, error)
	AppendMessages(ctx context.Context, msgs ...models.ChatMessage) error
	ClearMessages(ctx context.Context) error

	EnsureAdminPassword(ctx context.Context) error
	AdminLogin(ctx context.Context, password string) error
	ChangeAdminPassword(ctx context.Context, current, next string) error

	// Reset wipes every flag and both local collections.
	Reset(ctx context.Context) error
}

type stateService struct {
	db       *sql.DB
	flags    flags.Repository
	recovery string
}

// NewStateService keeps only a verifier of recoveryCode in memory. An empty
// code disables recovery logins.
func NewStateService(local *storage.Local, recoveryCode string) StateService {
	s := &stateService{db: local.DB, flags: local.Flags}
	if recoveryCode != "" {
		s.recovery = cryptox.HashPassword(recoveryCode)
	}
	return s
}

func (s *stateService) Role(ctx context.Context) (models.Role, bool, error) {
	role, ok, err := flags.Get(ctx, s.flags, flags.Role)
	if err != nil || !ok || !role.Valid() {
		return "", false, err
	}
	return role, true, nil
}

func (s *stateService) SetRole(ctx context.Context, role models.Role) error {
	if !role.Valid() {
		return fmt.Errorf("%w: unknown role %q", common.ErrValidation, role)
	}
	return flags.Set(ctx, s.flags, flags.Role, role)
}

// Profile is empty while no role is chosen, whatever the profile key holds.
func (s *stateService) Profile(ctx context.Context) (models.Profile, error) {
	if _, ok, err := s.Role(ctx); err != nil || !ok {
		return models.Profile{}, err
	}
	p, _, err := flags.Get(ctx, s.flags, flags.Profile)
	return p, err
}

func (s *stateService) SetProfile(ctx context.Context, p models.Profile) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name cannot be blank", common.ErrValidation)
	}
	return flags.Set(ctx, s.flags, flags.Profile, p)
}

func (s *stateService) Logout(ctx context.Context) error {
	if err := flags.Remove(ctx, s.flags, flags.Role); err != nil {
		return err
	}
	return flags.Remove(ctx, s.flags, flags.Profile)
}

func (s *stateService) Announcement(ctx context.Context) (string, error) {
	text, _, err := flags.Get(ctx, s.flags, flags.Announcement)
	return text, err
}

// SetAnnouncement replaces the banner; empty text removes it.
func (s *stateService) SetAnnouncement(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return flags.Remove(ctx, s.flags, flags.Announcement)
	}
	return flags.Set(ctx, s.flags, flags.Announcement, text)
}

func (s *stateService) CompletedTopics(ctx context.Context) ([]string, error) {
	topics, _, err := flags.Get(ctx, s.flags, flags.CompletedTopics)
	if err != nil {
		return nil, err
	}
	if topics == nil {
		topics = []string{}
	}
	return topics, nil
}

// CompleteTopic appends topic unless it is already done and reports whether
// the list changed.
func (s *stateService) CompleteTopic(ctx context.Context, topic string) (bool, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return false, fmt.Errorf("%w: topic cannot be blank", common.ErrValidation)
	}

	topics, err := s.CompletedTopics(ctx)
	if err != nil {
		return false, err
	}
	if slices.Contains(topics, topic) {
		return false, nil
	}
	return true, flags.Set(ctx, s.flags, flags.CompletedTopics, append(topics, topic))
}

func (s *stateService) Preset(ctx context.Context) (models.SimulatorPreset, bool, error) {
	return flags.Get(ctx, s.flags, flags.SimulatorPreset)
}

func (s *stateService) SavePreset(ctx context.Context, p models.SimulatorPreset) error {
	if p.Aperture <= 0 || p.ISO <= 0 || strings.TrimSpace(p.ShutterSpeed) == "" {
		return fmt.Errorf("%w: aperture, shutter speed and ISO are required", common.ErrValidation)
	}
	return flags.Set(ctx, s.flags, flags.SimulatorPreset, p)
}

func (s *stateService) Messages(ctx context.Context) ([]models.ChatMessage, error) {
	msgs, _, err := flags.Get(ctx, s.flags, flags.Messages)
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []models.ChatMessage{}
	}
	return msgs, nil
}

func (s *stateService) AppendMessages(ctx context.Context, msgs ...models.ChatMessage) error {
	all, err := s.Messages(ctx)
	if err != nil {
		return err
	}
	return flags.Set(ctx, s.flags, flags.Messages, append(all, msgs...))
}

func (s *stateService) ClearMessages(ctx context.Context) error {
	return flags.Remove(ctx, s.flags, flags.Messages)
}

func (s *stateService) EnsureAdminPassword(ctx context.Context) error {
	_, ok, err := flags.Get(ctx, s.flags, flags.AdminPassword)
	if err != nil || ok {
		return err
	}
	return flags.Set(ctx, s.flags, flags.AdminPassword, cryptox.HashPassword(DefaultAdminPassword))
}

// AdminLogin accepts the stored admin password or the recovery code and
// switches the role to admin.
func (s *stateService) AdminLogin(ctx context.Context, password string) error {
	ok, err := s.checkAdmin(ctx, password)
	if err != nil {
		return err
	}
	if !ok {
		return common.ErrUnauthorized
	}
	return s.SetRole(ctx, models.RoleAdmin)
}

func (s *stateService) ChangeAdminPassword(ctx context.Context, current, next string) error {
	ok, err := s.checkAdmin(ctx, current)
	if err != nil {
		return err
	}
	if !ok {
		return common.ErrUnauthorized
	}
	if strings.TrimSpace(next) == "" {
		return fmt.Errorf("%w: password cannot be blank", common.ErrValidation)
	}
	return flags.Set(ctx, s.flags, flags.AdminPassword, cryptox.HashPassword(next))
}

func (s *stateService) checkAdmin(ctx context.Context, password string) (bool, error) {
	if s.recovery != "" {
		if ok, err := cryptox.VerifyPassword(password, s.recovery); err == nil && ok {
			return true, nil
		}
	}

	verifier, ok, err := flags.Get(ctx, s.flags, flags.AdminPassword)
	if err != nil {
		return false, err
	}
	if !ok {
		verifier = cryptox.HashPassword(DefaultAdminPassword)
	}

	match, err := cryptox.VerifyPassword(password, verifier)
	if err != nil {
		return false, fmt.Errorf("failed to check admin password: %w", err)
	}
	return match, nil
}

func (s *stateService) Reset(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := flags.NewSQLiteRepository(tx).Clear(ctx); err != nil {
			return err
		}
		if err := materials.NewSQLiteRepository(tx).Clear(ctx); err != nil {
			return err
		}
		return presentations.NewSQLiteRepository(tx).Clear(ctx)
	})
}
