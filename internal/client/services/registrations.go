package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/prolens/internal/client/models"
	"github.com/dmitrijs2005/prolens/internal/client/repositories/flags"
	"github.com/dmitrijs2005/prolens/internal/common"
	"github.com/google/uuid"
)

// ContactMessage is a ready-to-send greeting and the chat link that opens
// it addressed to the registrant.
type ContactMessage struct {
	Text string
	Link string
}

type RegistrationService interface {
	// SelfRegister is the student path; a phone number already on the list
	// yields common.ErrDuplicate.
	SelfRegister(ctx context.Context, in models.NewRegistration) (*models.Registration, error)
	// AddManual is the admin path and does not deduplicate.
	AddManual(ctx context.Context, in models.NewRegistration) (*models.Registration, error)
	Contact(ctx context.Context, id string) (*ContactMessage, error)
	MarkContacted(ctx context.Context, id string) error
	Remove(ctx context.Context, id string) error
	List(ctx context.Context) ([]models.Registration, error)
	// Mine returns this device's own registration, if any.
	Mine(ctx context.Context) (*models.Registration, bool, error)
}

type registrationService struct {
	flags flags.Repository
	now   func() time.Time
}

func NewRegistrationService(repo flags.Repository) RegistrationService {
	return &registrationService{flags: repo, now: time.Now}
}

func (s *registrationService) SelfRegister(ctx context.Context, in models.NewRegistration) (*models.Registration, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	list, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, r := range list {
		if models.SamePhone(r.Phone, in.Phone) {
			return nil, fmt.Errorf("%w: phone %s is already registered", common.ErrDuplicate, strings.TrimSpace(in.Phone))
		}
	}

	r := s.newRegistration(in)
	if err := flags.Set(ctx, s.flags, flags.Registrations, append(list, r)); err != nil {
		return nil, err
	}
	if err := flags.Set(ctx, s.flags, flags.MyRegistration, r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *registrationService) AddManual(ctx context.Context, in models.NewRegistration) (*models.Registration, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	list, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	r := s.newRegistration(in)
	if err := flags.Set(ctx, s.flags, flags.Registrations, append(list, r)); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *registrationService) newRegistration(in models.NewRegistration) models.Registration {
	level := in.Level
	if level == "" {
		level = "beginner"
	}
	return models.Registration{
		ID:       uuid.NewString(),
		Date:     s.now().Format(models.RegistrationDateLayout),
		FullName: strings.TrimSpace(in.FullName),
		Email:    strings.TrimSpace(in.Email),
		Phone:    strings.TrimSpace(in.Phone),
		Level:    level,
		Status:   models.StatusPending,
	}
}

func (s *registrationService) Contact(ctx context.Context, id string) (*ContactMessage, error) {
	var msg ContactMessage

	err := s.update(ctx, id, func(r *models.Registration) {
		msg.Text = fmt.Sprintf("Hello %s! Thank you for registering for the ProLens photography course (%s level). "+
			"We would love to tell you about the next group. When is a good time to talk?", r.FullName, r.Level)
		msg.Link = "https://wa.me/" + models.PhoneDigits(r.Phone) + "?text=" + url.QueryEscape(msg.Text)
		r.Status = models.StatusContacted
	})
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (s *registrationService) MarkContacted(ctx context.Context, id string) error {
	return s.update(ctx, id, func(r *models.Registration) {
		r.Status = models.StatusContacted
	})
}

func (s *registrationService) update(ctx context.Context, id string, fn func(r *models.Registration)) error {
	list, err := s.List(ctx)
	if err != nil {
		return err
	}

	for i := range list {
		if list[i].ID == id {
			fn(&list[i])
			return flags.Set(ctx, s.flags, flags.Registrations, list)
		}
	}
	return fmt.Errorf("registration %s: %w", id, common.ErrNotFound)
}

func (s *registrationService) Remove(ctx context.Context, id string) error {
	list, err := s.List(ctx)
	if err != nil {
		return err
	}

	kept := list[:0]
	for _, r := range list {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(list) {
		return nil
	}
	return flags.Set(ctx, s.flags, flags.Registrations, kept)
}

func (s *registrationService) List(ctx context.Context) ([]models.Registration, error) {
	list, _, err := flags.Get(ctx, s.flags, flags.Registrations)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []models.Registration{}
	}
	return list, nil
}

func (s *registrationService) Mine(ctx context.Context) (*models.Registration, bool, error) {
	r, ok, err := flags.Get(ctx, s.flags, flags.MyRegistration)
	if err != nil || !ok {
		return nil, false, err
	}
	return &r, true, nil
}
