//go:build !linux

package mpris

import "github.com/llehouerou/aurora/internal/mediabridge"

// Adapter is a no-op on non-Linux platforms.
type Adapter struct{}

// New returns a no-op adapter on non-Linux platforms.
func New() (*Adapter, error) {
	return &Adapter{}, nil
}

func (a *Adapter) SetHandlers(_ mediabridge.Handlers) error {
	return nil
}

func (a *Adapter) Publish(_ mediabridge.NowPlaying) error {
	return nil
}

// Close is a no-op on non-Linux platforms.
func (a *Adapter) Close() error {
	return nil
}
