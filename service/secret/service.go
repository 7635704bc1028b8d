// Package secret reveals credentials kept as scy secrets, so DSNs and
// passwords never sit in plain configuration.
package secret

import (
	"context"
	"fmt"
	"strings"

	"github.com/viant/scy"
	_ "github.com/viant/scy/kms/blowfish"
)

// DefaultKey is the scy key used when none is configured.
const DefaultKey = "blowfish://default"

// Service stores and reveals raw secrets at afs URLs.
type Service struct {
	scy *scy.Service
	key string
}

// Reveal returns the plain text stored at URL.
func (s *Service) Reveal(ctx context.Context, URL string) (string, error) {
	resource := scy.NewResource(nil, URL, s.key)
	secret, err := s.scy.Load(ctx, resource)
	if err != nil {
		return "", fmt.Errorf("failed to load secret from %s: %w", URL, err)
	}
	return strings.TrimSpace(secret.String()), nil
}

// Secure encrypts value and stores it at URL.
func (s *Service) Secure(ctx context.Context, URL, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("secret value cannot be empty")
	}
	resource := scy.NewResource(nil, URL, s.key)
	if err := s.scy.Store(ctx, scy.NewSecret(value, resource)); err != nil {
		return fmt.Errorf("failed to store secret at %s: %w", URL, err)
	}
	return nil
}

// Resolve replaces *target with the secret at URL; an empty URL keeps it.
func (s *Service) Resolve(ctx context.Context, URL string, target *string) error {
	if URL == "" {
		return nil
	}
	value, err := s.Reveal(ctx, URL)
	if err != nil {
		return err
	}
	*target = value
	return nil
}

// New creates a secret service; an empty key selects DefaultKey.
func New(key string) *Service {
	if key == "" {
		key = DefaultKey
	}
	return &Service{scy: scy.New(), key: key}
}
