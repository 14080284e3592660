//go:build windows

// Package stderr is a no-op on Windows, whose audio backend does not write
// to the console.
package stderr

// Capture is inert on Windows.
type Capture struct{}

// Start returns an inert capture.
func Start() (*Capture, error) {
	return &Capture{}, nil
}

// Lines never yields.
func (c *Capture) Lines() <-chan string {
	return nil
}

func (c *Capture) Close() error {
	return nil
}
