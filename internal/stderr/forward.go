package stderr

import (
	"context"

	"github.com/charmbracelet/log"
)

// Forward logs every line from lines at warn level until lines is closed or
// ctx is done.
func Forward(ctx context.Context, lines <-chan string, logger *log.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			logger.Warn("audio backend", "msg", line)
		}
	}
}
