package flags

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/prolens/internal/client/models"
)

// Key names a flag and fixes the Go type of its value. Every value is
// stored as JSON.
type Key[T any] struct {
	Name string
}

var (
	Role            = Key[models.Role]{Name: "prolens_role"}
	Profile         = Key[models.Profile]{Name: "prolens_profile"}
	Messages        = Key[[]models.ChatMessage]{Name: "prolens_messages"}
	CompletedTopics = Key[[]string]{Name: "prolens_completed_topics"}
	Announcement    = Key[string]{Name: "prolens_announcement"}
	SimulatorPreset = Key[models.SimulatorPreset]{Name: "prolens_simulator_preset"}
	Registrations   = Key[[]models.Registration]{Name: "prolens_registrations"}
	AdminPassword   = Key[string]{Name: "prolens_admin_password"}
	MyRegistration  = Key[models.Registration]{Name: "prolens_my_registration"}
)

// Get reads and decodes k. An absent key yields the zero value and false.
func Get[T any](ctx context.Context, r Repository, k Key[T]) (T, bool, error) {
	var v T

	raw, err := r.Get(ctx, k.Name)
	if err != nil {
		return v, false, err
	}
	if raw == nil {
		return v, false, nil
	}

	if err := json.Unmarshal(raw, &v); err != nil {
		return v, false, fmt.Errorf("failed to decode flag[%s]: %w", k.Name, err)
	}
	return v, true, nil
}

// Set encodes v and stores it under k, replacing any previous value.
func Set[T any](ctx context.Context, r Repository, k Key[T], v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode flag[%s]: %w", k.Name, err)
	}
	return r.Set(ctx, k.Name, raw)
}

// Remove deletes k. Removing an absent key is not an error.
func Remove[T any](ctx context.Context, r Repository, k Key[T]) error {
	return r.Delete(ctx, k.Name)
}
