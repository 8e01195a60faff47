package auth

import (
	"context"
	_ "embed"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"
)

// DefaultCallbackPath is the path the identity provider redirects back to.
const DefaultCallbackPath = "/callback"

// DefaultCallbackTimeout is how long to wait for the authorization redirect.
const DefaultCallbackTimeout = 5 * time.Minute

//go:embed templates/callback_success.html
var callbackSuccessHTML string

//go:embed templates/callback_error.html
var callbackErrorHTML string

var (
	successTemplate = template.Must(template.New("success").Parse(callbackSuccessHTML))
	errorTemplate   = template.Must(template.New("error").Parse(callbackErrorHTML))
)

// CallbackResult is the outcome of a successful authorization redirect.
type CallbackResult struct {
	// Code is the authorization code issued by the provider.
	Code string

	// State echoes the state parameter of the authorization request. By the
	// time a result is delivered it has already been verified against the
	// expected state.
	State string
}

// CallbackConfig configures a callback server for one authorization attempt.
type CallbackConfig struct {
	// PortStart and PortEnd bound the loopback port search. The server binds
	// the first free port in [PortStart, PortEnd]. PortEnd zero means a
	// single-port range; PortStart zero lets the OS pick any free port.
	PortStart int
	PortEnd   int

	// Path is the redirect path. Defaults to DefaultCallbackPath.
	Path string

	// ExpectedState is the state parameter of the pending authorization
	// request. Redirects carrying any other state are rejected.
	ExpectedState string

	// Timeout bounds the wait for the redirect. Defaults to
	// DefaultCallbackTimeout.
	Timeout time.Duration
}

// CallbackServer is a short-lived local HTTP server that captures exactly one
// OAuth authorization redirect. It starts, resolves a single pending wait,
// then shuts down. Stop is safe to call at any time and more than once.
type CallbackServer struct {
	cfg      CallbackConfig
	server   *http.Server
	listener net.Listener
	port     int

	resultCh chan *CallbackResult
	errCh    chan error
	stopCh   chan struct{}

	handleOnce sync.Once
	stopOnce   sync.Once
}

// NewCallbackServer creates a callback server for the given configuration.
func NewCallbackServer(cfg CallbackConfig) *CallbackServer {
	if cfg.Path == "" {
		cfg.Path = DefaultCallbackPath
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultCallbackTimeout
	}
	if cfg.PortEnd < cfg.PortStart {
		cfg.PortEnd = cfg.PortStart
	}

	return &CallbackServer{
		cfg:      cfg,
		resultCh: make(chan *CallbackResult, 1),
		errCh:    make(chan error, 1),
		stopCh:   make(chan struct{}),
	}
}

// Start binds the loopback listener and begins serving. It returns the
// redirect URI to use in the authorization request. If every port in the
// configured range is taken, Start fails before any wait begins.
func (s *CallbackServer) Start() (string, error) {
	listener, err := s.bind()
	if err != nil {
		return "", err
	}

	s.listener = listener
	s.port = listener.Addr().(*net.TCPAddr).Port

	mux := http.NewServeMux()
	mux.HandleFunc(s.cfg.Path, s.handleCallback)

	s.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			select {
			case s.errCh <- WrapError(KindNetwork, "callback server failed", err):
			default:
			}
		}
	}()

	slog.Debug("OAuth callback server listening",
		"port", s.port,
		"path", s.cfg.Path,
	)

	return s.RedirectURI(), nil
}

// bind finds the first free port in the configured range.
func (s *CallbackServer) bind() (net.Listener, error) {
	if s.cfg.PortStart == 0 {
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return nil, WrapError(KindNetwork, "failed to bind callback listener", err)
		}
		return listener, nil
	}

	var lastErr error
	for port := s.cfg.PortStart; port <= s.cfg.PortEnd; port++ {
		listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
		if err == nil {
			return listener, nil
		}
		lastErr = err
	}

	return nil, WrapError(KindNetwork,
		fmt.Sprintf("no free callback port in range %d-%d", s.cfg.PortStart, s.cfg.PortEnd), lastErr)
}

// RedirectURI returns the redirect URI served by this listener.
func (s *CallbackServer) RedirectURI() string {
	return fmt.Sprintf("http://localhost:%d%s", s.port, s.cfg.Path)
}

// Port returns the bound port.
func (s *CallbackServer) Port() int {
	return s.port
}

// Wait blocks until the redirect arrives, the timeout elapses, the context is
// cancelled, or Stop is called. The listener is torn down on every path.
func (s *CallbackServer) Wait(ctx context.Context) (*CallbackResult, error) {
	defer s.Stop()

	timer := time.NewTimer(s.cfg.Timeout)
	defer timer.Stop()

	select {
	case result := <-s.resultCh:
		return result, nil
	case err := <-s.errCh:
		return nil, err
	case <-timer.C:
		return nil, Errorf(KindTimeout, "timed out after %s waiting for the authorization redirect", s.cfg.Timeout)
	case <-s.stopCh:
		// A redirect may have raced the stop; prefer the settled outcome.
		select {
		case result := <-s.resultCh:
			return result, nil
		case err := <-s.errCh:
			return nil, err
		default:
		}
		return nil, NewError(KindCancelled, "authorization wait cancelled")
	case <-ctx.Done():
		return nil, WrapError(KindCancelled, "authorization wait cancelled", ctx.Err())
	}
}

// Stop closes the listening socket and rejects a pending Wait. Idempotent.
func (s *CallbackServer) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)

		if s.server != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = s.server.Shutdown(ctx)
		}
		if s.listener != nil {
			_ = s.listener.Close()
		}
	})
}

// handleCallback serves the redirect endpoint. Exactly one request settles
// the pending wait; later requests get a generic page and change nothing.
func (s *CallbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	var handled bool
	s.handleOnce.Do(func() {
		handled = true
		s.processCallback(w, r)
	})

	if !handled {
		setSecurityHeaders(w)
		http.Error(w, "Callback already processed", http.StatusBadRequest)
	}
}

// processCallback settles the wait from the first redirect request. The
// browser always receives an HTML page; the page render is fire-and-forget
// relative to the settled outcome.
func (s *CallbackServer) processCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	code := query.Get("code")
	state := query.Get("state")
	errParam := query.Get("error")
	errDesc := query.Get("error_description")

	switch {
	case errParam != "":
		message := errParam
		if errDesc != "" {
			message = fmt.Sprintf("%s: %s", errParam, errDesc)
		}
		s.settle(nil, Errorf(KindUserDenied, "authorization denied: %s", message))
		s.renderErrorPage(w, "The authorization request was denied.")

	case state != s.cfg.ExpectedState:
		// Generic message: do not reveal which value was wrong.
		s.settle(nil, NewError(KindInvalidResponse, "authorization response did not match the pending request"))
		s.renderErrorPage(w, "This sign-in attempt is no longer valid.")

	case code == "":
		s.settle(nil, NewError(KindInvalidResponse, "authorization response missing code"))
		s.renderErrorPage(w, "The authorization response was incomplete.")

	default:
		s.settle(&CallbackResult{Code: code, State: state}, nil)
		s.renderSuccessPage(w)
	}
}

// settle delivers the outcome without blocking; the channels are buffered
// and written at most once.
func (s *CallbackServer) settle(result *CallbackResult, err error) {
	if err != nil {
		select {
		case s.errCh <- err:
		default:
		}
		return
	}

	select {
	case s.resultCh <- result:
	default:
	}
}

// setSecurityHeaders sets standard hardening headers for the HTML responses.
func setSecurityHeaders(w http.ResponseWriter) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Content-Security-Policy", "default-src 'none'; style-src 'unsafe-inline'")
	w.Header().Set("Referrer-Policy", "no-referrer")
	w.Header().Set("Cache-Control", "no-store")
}

func (s *CallbackServer) renderSuccessPage(w http.ResponseWriter) {
	setSecurityHeaders(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := successTemplate.Execute(w, nil); err != nil {
		slog.Debug("failed to render callback success page", "error", err.Error())
	}
}

func (s *CallbackServer) renderErrorPage(w http.ResponseWriter, message string) {
	setSecurityHeaders(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	data := map[string]string{"Message": message}
	if err := errorTemplate.Execute(w, data); err != nil {
		slog.Debug("failed to render callback error page", "error", err.Error())
	}
}
