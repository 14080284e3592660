// Package identity resolves the per-installation user ID.
package identity

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
)

// EnvPlatformUser names the variable a host platform can set to supply an ID.
const EnvPlatformUser = "AURORA_PLATFORM_USER"

// Provider supplies a platform identity. ok is false when none is available.
type Provider interface {
	UserID(ctx context.Context) (id string, ok bool)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context) (string, bool)

func (f ProviderFunc) UserID(ctx context.Context) (string, bool) { return f(ctx) }

// EnvProvider reads the platform identity from EnvPlatformUser.
var EnvProvider Provider = ProviderFunc(func(context.Context) (string, bool) {
	id := strings.TrimSpace(os.Getenv(EnvPlatformUser))
	return id, id != ""
})

// Persister stores the generated identity across runs.
type Persister interface {
	Identity(ctx context.Context, generate func() string) (string, error)
}

// Resolve returns the platform identity when p has one, otherwise the
// persisted random ID, creating it on first run.
func Resolve(ctx context.Context, p Provider, store Persister) (string, error) {
	if p != nil {
		if id, ok := p.UserID(ctx); ok && id != "" {
			return id, nil
		}
	}
	id, err := store.Identity(ctx, NewID)
	if err != nil {
		return "", fmt.Errorf("load identity: %w", err)
	}
	return id, nil
}

// NewID returns a fresh random user ID.
func NewID() string {
	return uuid.NewString()
}

// DisplayName is the default username announced for id.
func DisplayName(id string) string {
	short := id
	if len(short) > 8 {
		short = short[:8]
	}
	return "User-" + short
}
