package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/prolens/internal/client/models"
	"github.com/dmitrijs2005/prolens/internal/client/services"
	"github.com/dmitrijs2005/prolens/internal/common"
)

func (a *App) status(ctx context.Context, _ []string) error {
	a.printf("Materials backend: %s (%d materials)\n", a.materials.Backend(), a.cache.Len())

	if role := a.role(); role != "" {
		a.printf("Role: %s\n", role)
	} else {
		a.printf("Role: none (type 'role student' or 'admin')\n")
	}

	p, err := a.state.Profile(ctx)
	if err != nil {
		return err
	}
	if p.Name != "" {
		a.printf("Profile: %s, %s\n", p.Name, p.Level)
	}

	if text, err := a.state.Announcement(ctx); err == nil && text != "" {
		a.printf("Announcement: %s\n", text)
	}

	u, err := services.EstimateUsage(ctx, a.local)
	if err != nil {
		return err
	}
	a.printf("Local storage (estimate): %s\n", u)
	return nil
}

func (a *App) setRole(ctx context.Context, args []string) error {
	if len(args) == 0 {
		if role := a.role(); role != "" {
			a.printf("%s\n", role)
		} else {
			a.printf("no role selected\n")
		}
		return nil
	}

	switch models.Role(args[0]) {
	case models.RoleAdmin:
		return a.admin(ctx, nil)
	case models.RoleStudent:
	default:
		return fmt.Errorf("%w: unknown role %q", common.ErrValidation, args[0])
	}

	if err := a.state.SetRole(ctx, models.RoleStudent); err != nil {
		return err
	}

	p, err := a.state.Profile(ctx)
	if err != nil {
		return err
	}
	if p.Name == "" {
		if p.Name, err = GetSimpleText(a.in, "Your name", a.out); err != nil {
			return err
		}
		if p.Level, err = GetSimpleText(a.in, "Your level (beginner, intermediate, advanced)", a.out); err != nil {
			return err
		}
		if p.Goal, err = GetSimpleText(a.in, "What do you want to learn? (optional)", a.out); err != nil {
			return err
		}
		if err := a.state.SetProfile(ctx, p); err != nil {
			return err
		}
	}

	a.printf("Welcome, %s!\n", p.Name)
	return nil
}

func (a *App) admin(ctx context.Context, args []string) error {
	if len(args) > 0 && args[0] == "passwd" {
		current, err := GetPassword(a.out, "Current password")
		if err != nil {
			return err
		}
		next, err := GetPassword(a.out, "New password")
		if err != nil {
			return err
		}
		again, err := GetPassword(a.out, "Repeat new password")
		if err != nil {
			return err
		}
		if next != again {
			return fmt.Errorf("%w: passwords do not match", common.ErrValidation)
		}
		if err := a.state.ChangeAdminPassword(ctx, current, next); err != nil {
			return err
		}
		a.printf("Admin password changed\n")
		return nil
	}

	pw, err := GetPassword(a.out, "Admin password")
	if err != nil {
		return err
	}
	if err := a.state.AdminLogin(ctx, pw); err != nil {
		if errors.Is(err, common.ErrUnauthorized) {
			return errors.New("wrong password")
		}
		return err
	}
	a.printf("Logged in as admin\n")
	return nil
}

func (a *App) logout(ctx context.Context, _ []string) error {
	if err := a.state.Logout(ctx); err != nil {
		return err
	}
	a.printf("Logged out\n")
	return nil
}

func (a *App) announce(ctx context.Context, args []string) error {
	if len(args) == 0 {
		text, err := a.state.Announcement(ctx)
		if err != nil {
			return err
		}
		if text == "" {
			text = "(no announcement)"
		}
		a.printf("%s\n", text)
		return nil
	}

	if !a.isAdmin() {
		return errAdminOnly
	}

	text := strings.Join(args, " ")
	switch text {
	case "clear":
		text = ""
	case "edit":
		var err error
		if text, err = GetMultiline(a.in, "Announcement text", a.out); err != nil {
			return err
		}
	}
	if err := a.state.SetAnnouncement(ctx, text); err != nil {
		return err
	}
	a.printf("Announcement updated\n")
	return nil
}

func (a *App) topics(ctx context.Context, _ []string) error {
	topics, err := a.state.CompletedTopics(ctx)
	if err != nil {
		return err
	}
	if len(topics) == 0 {
		a.printf("No topics completed yet\n")
		return nil
	}
	for i, t := range topics {
		a.printf("%d. %s\n", i+1, t)
	}
	return nil
}

func (a *App) complete(ctx context.Context, args []string) error {
	topic := strings.Join(args, " ")
	added, err := a.state.CompleteTopic(ctx, topic)
	if err != nil {
		return err
	}
	if added {
		a.printf("Marked %q as completed\n", topic)
	} else {
		a.printf("%q was already completed\n", topic)
	}
	return nil
}

func (a *App) preset(ctx context.Context, args []string) error {
	if len(args) == 0 {
		p, ok, err := a.state.Preset(ctx)
		if err != nil {
			return err
		}
		if !ok {
			a.printf("No preset saved\n")
			return nil
		}
		a.printf("f/%g  %s s  ISO %d\n", p.Aperture, p.ShutterSpeed, p.ISO)
		return nil
	}

	if len(args) != 3 {
		return errors.New("usage: preset <aperture> <shutter> <iso>, e.g. preset 2.8 1/250 400")
	}

	aperture, err := strconv.ParseFloat(strings.TrimPrefix(args[0], "f/"), 64)
	if err != nil {
		return fmt.Errorf("%w: aperture %q", common.ErrValidation, args[0])
	}
	iso, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("%w: iso %q", common.ErrValidation, args[2])
	}

	if err := a.state.SavePreset(ctx, models.SimulatorPreset{Aperture: aperture, ShutterSpeed: args[1], ISO: iso}); err != nil {
		return err
	}
	a.printf("Preset saved\n")
	return nil
}

// reset is the last-resort wipe of everything stored on this device.
func (a *App) reset(ctx context.Context, _ []string) error {
	ok, err := Confirm(a.in, "This deletes all local data (flags, materials, presentations). Continue?", a.out)
	if err != nil || !ok {
		return err
	}

	if err := a.state.Reset(ctx); err != nil {
		return err
	}
	if err := a.state.EnsureAdminPassword(ctx); err != nil {
		return err
	}
	if a.materials.Backend() == services.BackendLocal {
		if err := a.cache.Reload(ctx); err != nil {
			return err
		}
	}

	a.printf("Local data wiped\n")
	return nil
}
