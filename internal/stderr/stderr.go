//go:build !windows

// Package stderr captures what the audio backend writes straight to file
// descriptor 2, so ALSA chatter ends up in the log instead of on the screen.
package stderr

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"
)

const lineBuffer = 100

// Capture is an active redirection of fd 2.
type Capture struct {
	orig  int
	r, w  *os.File
	lines chan string
	done  chan struct{}
}

// Start redirects fd 2 into a pipe read by a background goroutine. Call it
// before the audio device is opened.
func Start() (*Capture, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("create pipe: %w", err)
	}
	fd := int(os.Stderr.Fd())
	orig, err := syscall.Dup(fd)
	if err != nil {
		r.Close()
		w.Close()
		return nil, fmt.Errorf("dup stderr: %w", err)
	}
	if err := syscall.Dup2(int(w.Fd()), fd); err != nil {
		syscall.Close(orig)
		r.Close()
		w.Close()
		return nil, fmt.Errorf("redirect stderr: %w", err)
	}

	c := &Capture{
		orig:  orig,
		r:     r,
		w:     w,
		lines: make(chan string, lineBuffer),
		done:  make(chan struct{}),
	}
	go c.read()
	return c, nil
}

func (c *Capture) read() {
	defer close(c.done)
	defer close(c.lines)
	sc := bufio.NewScanner(c.r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		select {
		case c.lines <- line:
		default:
			// Nobody is keeping up; drop rather than stall the writer.
		}
	}
}

// Lines yields captured lines until the capture is closed.
func (c *Capture) Lines() <-chan string {
	return c.lines
}

// Close restores the original fd 2 and waits for the reader to finish.
func (c *Capture) Close() error {
	err := syscall.Dup2(c.orig, int(os.Stderr.Fd()))
	syscall.Close(c.orig)
	c.w.Close()
	<-c.done
	c.r.Close()
	return err
}
