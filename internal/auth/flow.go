package auth

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/pagelens/pagelens/pkg/oauth"
)

// FlowState tracks progress through the authorization code flow.
type FlowState int

const (
	FlowIdle FlowState = iota
	FlowGeneratingPKCE
	FlowListenerStarting
	FlowAwaitingRedirect
	FlowExchangingCode
	FlowComplete
	FlowFailed
)

func (s FlowState) String() string {
	switch s {
	case FlowIdle:
		return "idle"
	case FlowGeneratingPKCE:
		return "generating_pkce"
	case FlowListenerStarting:
		return "listener_starting"
	case FlowAwaitingRedirect:
		return "awaiting_redirect"
	case FlowExchangingCode:
		return "exchanging_code"
	case FlowComplete:
		return "complete"
	case FlowFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// AuthorizeOptions tune a single Authorize run.
type AuthorizeOptions struct {
	// PortStart and PortEnd bound the loopback ports probed for the
	// callback listener. Zero values fall back to the port of the
	// configured redirect URI.
	PortStart int
	PortEnd   int

	// Timeout caps the wait for the browser redirect. Zero means
	// DefaultCallbackTimeout.
	Timeout time.Duration

	// NoBrowser suppresses the browser launch; the user opens the printed
	// URL themselves.
	NoBrowser bool

	// OnAuthURL is invoked with the authorization URL before any browser
	// launch, so the caller can display it.
	OnAuthURL func(authURL string)

	// OnBrowserError is invoked when the browser launch fails. The flow
	// keeps waiting for the redirect regardless; the user can still open
	// the URL manually.
	OnBrowserError func(err error)
}

// Flow runs the OAuth authorization code flow with PKCE end to end: local
// callback listener, browser launch, and code exchange.
type Flow struct {
	provider  ProviderConfig
	exchanger TokenExchanger
	launcher  Launcher

	mu       sync.Mutex
	state    FlowState
	callback *CallbackServer
}

// NewFlow creates a flow. A nil launcher behaves as if NoBrowser were set.
func NewFlow(provider ProviderConfig, exchanger TokenExchanger, launcher Launcher) *Flow {
	return &Flow{
		provider:  provider,
		exchanger: exchanger,
		launcher:  launcher,
		state:     FlowIdle,
	}
}

// State returns the current flow state.
func (f *Flow) State() FlowState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Flow) setState(state FlowState) {
	f.mu.Lock()
	f.state = state
	f.mu.Unlock()
	slog.Debug("authorization flow state changed", "state", state.String())
}

// Cancel aborts a pending Authorize by stopping its callback listener.
// Safe to call from another goroutine, e.g. a signal handler.
func (f *Flow) Cancel() {
	f.mu.Lock()
	callback := f.callback
	f.mu.Unlock()
	if callback != nil {
		callback.Stop()
	}
}

// Authorize runs the full flow and returns the token set issued by the
// provider. It blocks until the redirect arrives, the timeout elapses, the
// context is cancelled, or the exchange completes.
func (f *Flow) Authorize(ctx context.Context, opts AuthorizeOptions) (*oauth.Token, error) {
	f.setState(FlowGeneratingPKCE)

	pkce, err := oauth.GeneratePKCE()
	if err != nil {
		f.setState(FlowFailed)
		return nil, WrapError(KindInvalidConfig, "failed to generate PKCE challenge", err)
	}
	state, err := oauth.GenerateState()
	if err != nil {
		f.setState(FlowFailed)
		return nil, WrapError(KindInvalidConfig, "failed to generate state parameter", err)
	}

	portStart, portEnd := f.portRange(opts)

	f.setState(FlowListenerStarting)
	callback := NewCallbackServer(CallbackConfig{
		PortStart:     portStart,
		PortEnd:       portEnd,
		Path:          f.provider.CallbackPath(),
		ExpectedState: state,
		Timeout:       opts.Timeout,
	})

	redirectURI, err := callback.Start()
	if err != nil {
		f.setState(FlowFailed)
		return nil, err
	}
	f.mu.Lock()
	f.callback = callback
	f.mu.Unlock()
	defer func() {
		callback.Stop()
		f.mu.Lock()
		f.callback = nil
		f.mu.Unlock()
	}()

	authURL := f.buildAuthorizationURL(redirectURI, state, pkce)
	if opts.OnAuthURL != nil {
		opts.OnAuthURL(authURL)
	}

	f.setState(FlowAwaitingRedirect)

	if !opts.NoBrowser && f.launcher != nil {
		// Launch in the background so a hung browser command cannot
		// block the redirect wait.
		go func() {
			if openErr := f.launcher.OpenURL(authURL); openErr != nil {
				browserErr := WrapError(KindBrowser, "failed to open browser, visit the authorization URL manually", openErr)
				slog.Warn("browser launch failed", "error", openErr)
				if opts.OnBrowserError != nil {
					opts.OnBrowserError(browserErr)
				}
			}
		}()
	}

	result, err := callback.Wait(ctx)
	if err != nil {
		f.setState(FlowFailed)
		return nil, err
	}

	f.setState(FlowExchangingCode)

	token, err := f.exchanger.ExchangeCode(ctx, ExchangeRequest{
		TokenEndpoint: f.provider.TokenEndpoint(),
		ClientID:      f.provider.ClientID,
		Code:          result.Code,
		RedirectURI:   redirectURI,
		CodeVerifier:  pkce.CodeVerifier,
	})
	if err != nil {
		f.setState(FlowFailed)
		return nil, err
	}

	f.setState(FlowComplete)
	slog.Info("SECURITY_AUDIT: authorization flow completed", "client_id", f.provider.ClientID)
	return token, nil
}

// RefreshToken exchanges a refresh token for a new token set.
func (f *Flow) RefreshToken(ctx context.Context, refreshToken string) (*oauth.Token, error) {
	return f.exchanger.Refresh(ctx, RefreshRequest{
		TokenEndpoint: f.provider.TokenEndpoint(),
		ClientID:      f.provider.ClientID,
		RefreshToken:  refreshToken,
	})
}

// portRange resolves the listener port range: explicit options win, then the
// configured redirect URI's port, then an ephemeral port.
func (f *Flow) portRange(opts AuthorizeOptions) (int, int) {
	if opts.PortStart > 0 {
		end := opts.PortEnd
		if end < opts.PortStart {
			end = opts.PortStart
		}
		return opts.PortStart, end
	}
	if port := f.provider.CallbackPort(); port > 0 {
		return port, port + 9
	}
	return 0, 0
}

func (f *Flow) buildAuthorizationURL(redirectURI, state string, pkce *oauth.PKCEChallenge) string {
	params := url.Values{
		"response_type":         {"code"},
		"client_id":             {f.provider.ClientID},
		"redirect_uri":          {redirectURI},
		"scope":                 {strings.Join(f.provider.RequestedScopes(), " ")},
		"state":                 {state},
		"code_challenge":        {pkce.CodeChallenge},
		"code_challenge_method": {pkce.CodeChallengeMethod},
	}
	return f.provider.AuthorizeEndpoint() + "?" + params.Encode()
}
