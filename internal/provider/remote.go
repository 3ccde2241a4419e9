package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/rashedsumon/instagram-teaser/internal/config"
)

// ErrRemoteProviderUnimplemented: the remote generative path fails
// clearly and immediately. It never silently degrades to the local
// pipeline; the caller decides what to do with the refusal.
var ErrRemoteProviderUnimplemented = errors.New("remote provider generation not implemented")

// RemoteProvider is the placeholder for a third-party generative video
// backend (Stability, Runway, Pika, ...).
type RemoteProvider struct {
	Name string
}

// Generate always refuses.
func (p *RemoteProvider) Generate(ctx context.Context, script string, cfg config.TeaserConfig) (string, error) {
	name := p.Name
	if name == "" {
		name = "(not configured)"
	}
	return "", fmt.Errorf("%w: provider %s", ErrRemoteProviderUnimplemented, name)
}
