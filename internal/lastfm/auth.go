package lastfm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"time"
)

const (
	// CallbackAddr is where the browser is sent back after approval.
	CallbackAddr = "localhost:9847"
	// AuthTimeout bounds how long approval is awaited.
	AuthTimeout = 5 * time.Minute
)

// ErrAuthTimeout is returned when nobody approves in time.
var ErrAuthTimeout = errors.New("timed out waiting for Last.fm approval")

const callbackPage = `<!DOCTYPE html>
<html><head><title>Aurora</title></head>
<body style="font-family: sans-serif; text-align: center; padding: 50px;">
<h1>%s</h1><p>%s</p>
</body></html>`

// CallbackServer receives the token Last.fm appends to the callback URL.
type CallbackServer struct {
	srv    *http.Server
	addr   string
	tokens chan string
	served chan struct{}
}

// ListenCallback starts the callback server on addr.
func ListenCallback(addr string) (*CallbackServer, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	s := &CallbackServer{
		addr:   ln.Addr().String(),
		tokens: make(chan string, 1),
		served: make(chan struct{}),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/callback", s.handle)
	s.srv = &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		defer close(s.served)
		_ = s.srv.Serve(ln)
	}()
	return s, nil
}

func (s *CallbackServer) handle(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if token == "" {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, callbackPage, "Authorization failed", "No token received. Run aurora lastfm-auth again.")
		return
	}
	fmt.Fprintf(w, callbackPage, "Aurora is linked", "You can close this window.")
	select {
	case s.tokens <- token:
	default:
	}
}

// URL is the callback URL to hand to Last.fm.
func (s *CallbackServer) URL() string {
	return "http://" + s.addr + "/callback"
}

// Wait returns the first approved token.
func (s *CallbackServer) Wait(ctx context.Context, timeout time.Duration) (string, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case token := <-s.tokens:
		return token, nil
	case <-timer.C:
		return "", ErrAuthTimeout
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Close stops the server.
func (s *CallbackServer) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := s.srv.Shutdown(ctx)
	<-s.served
	return err
}

// OpenBrowser opens url with the platform's default handler.
func OpenBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
