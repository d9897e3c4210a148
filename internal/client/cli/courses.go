package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/prolens/internal/client/models"
	"github.com/dmitrijs2005/prolens/internal/common"
)

func (a *App) listPresentations(ctx context.Context, _ []string) error {
	list, err := a.presentations.List(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		a.printf("No presentations yet\n")
		return nil
	}
	for _, p := range list {
		a.printf("[%s] %s  %s (%s)\n", p.ID, p.Date, p.Name, p.Type)
	}
	return nil
}

func (a *App) showPresentation(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: presentation <presentation-id>")
	}
	p, err := a.presentations.Get(ctx, args[0])
	if errors.Is(err, common.ErrNotFound) {
		return fmt.Errorf("no presentation %s", args[0])
	}
	if err != nil {
		return err
	}
	a.printf("%s\nType:  %s\nAdded: %s\nSize:  %s\n", p.Name, p.Type, p.Date, common.FormatSize(int64(len(p.Content))))
	return nil
}

func (a *App) present(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: present <file>")
	}

	u, err := ReadUpload(args[0])
	if err != nil {
		return err
	}

	p, err := a.presentations.Upload(ctx, u)
	if err != nil {
		return err
	}
	a.printf("Added presentation %s as %s\n", p.Name, p.ID)
	return nil
}

func (a *App) unpresent(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: unpresent <presentation-id>")
	}
	if err := a.presentations.Delete(ctx, args[0]); err != nil {
		return err
	}
	a.printf("Removed\n")
	return nil
}

func (a *App) readRegistrationForm() (models.NewRegistration, error) {
	var (
		in  models.NewRegistration
		err error
	)
	if in.FullName, err = GetSimpleText(a.in, "Full name", a.out); err != nil {
		return in, err
	}
	if in.Email, err = GetSimpleText(a.in, "Email", a.out); err != nil {
		return in, err
	}
	if in.Phone, err = GetSimpleText(a.in, "Phone", a.out); err != nil {
		return in, err
	}
	if in.Level, err = GetSimpleText(a.in, "Level (beginner, intermediate, advanced)", a.out); err != nil {
		return in, err
	}
	return in, nil
}

func (a *App) register(ctx context.Context, _ []string) error {
	if mine, ok, err := a.registrations.Mine(ctx); err != nil {
		return err
	} else if ok {
		a.printf("You registered on %s as %s. We will contact you soon.\n", mine.Date, mine.FullName)
		return nil
	}

	in, err := a.readRegistrationForm()
	if err != nil {
		return err
	}

	r, err := a.registrations.SelfRegister(ctx, in)
	if errors.Is(err, common.ErrDuplicate) {
		return errors.New("this phone number is already registered")
	}
	if err != nil {
		return err
	}
	a.printf("Thank you, %s! Your registration is saved.\n", r.FullName)
	return nil
}

func (a *App) listRegistrations(ctx context.Context, _ []string) error {
	list, err := a.registrations.List(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		a.printf("No registrations yet\n")
		return nil
	}
	for _, r := range list {
		a.printf("[%s] %s  %-24s %-28s %-16s %-12s %s\n", r.ID, r.Date, r.FullName, r.Email, r.Phone, r.Level, r.Status)
	}
	return nil
}

func (a *App) addRegistration(ctx context.Context, _ []string) error {
	in, err := a.readRegistrationForm()
	if err != nil {
		return err
	}
	r, err := a.registrations.AddManual(ctx, in)
	if err != nil {
		return err
	}
	a.printf("Added %s (%s)\n", r.FullName, r.ID)
	return nil
}

func (a *App) contact(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: contact <registration-id>")
	}
	msg, err := a.registrations.Contact(ctx, args[0])
	if err != nil {
		return err
	}
	a.printf("%s\n\nOpen to send: %s\n", msg.Text, msg.Link)
	return nil
}

// markContacted records a contact made outside the app.
func (a *App) markContacted(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: contacted <registration-id>")
	}
	if err := a.registrations.MarkContacted(ctx, args[0]); err != nil {
		return err
	}
	a.printf("Marked as contacted\n")
	return nil
}

func (a *App) removeRegistration(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: unreg <registration-id>")
	}
	if err := a.registrations.Remove(ctx, args[0]); err != nil {
		return fmt.Errorf("failed to remove registration: %w", err)
	}
	a.printf("Removed\n")
	return nil
}
