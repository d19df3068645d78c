package server

import (
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/desertthunder/riff/internal/shared"
	"golang.org/x/oauth2"
)

// successPage is shown in the browser after a completed authorization.
const successPage = `<!DOCTYPE html>
<html>
<head>
    <title>riff - Authorization Successful</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #1DB954; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>&#10003; Authorization Successful</h1>
        <p>riff has your listening history now. You can close this window and return to the terminal.</p>
    </div>
</body>
</html>`

// OAuthResult carries the outcome of one authorization flow.
type OAuthResult struct {
	Token *oauth2.Token
	err   error
}

func (o *OAuthResult) Error() error {
	return o.err
}

// OAuthHandler captures a single OAuth2 authorization-code callback.
//
// Exactly one callback is processed; replays are rejected with 400. The
// outcome is delivered once on the Result channel, which is then closed.
type OAuthHandler struct {
	config     *oauth2.Config
	state      string
	claimed    atomic.Bool
	resultChan chan OAuthResult
}

// NewOAuthHandler creates a handler expecting the given CSRF state token.
func NewOAuthHandler(config *oauth2.Config, state string) *OAuthHandler {
	return &OAuthHandler{
		config:     config,
		state:      state,
		resultChan: make(chan OAuthResult, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *OAuthHandler) Routes() []string {
	return []string{"/callback"}
}

// ServeHTTP validates the state parameter, exchanges the authorization code
// for a token, and delivers the result.
func (h *OAuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.claimed.CompareAndSwap(false, true) {
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}

	query := r.URL.Query()
	if query.Get("state") != h.state {
		h.fail(w, http.StatusBadRequest, "Invalid state parameter",
			fmt.Errorf("%w: state parameter mismatch", shared.ErrAuthFailed))
		return
	}

	code := query.Get("code")
	if code == "" {
		h.fail(w, http.StatusBadRequest, "Authorization failed",
			fmt.Errorf("%w: %s - %s", shared.ErrAuthFailed, query.Get("error"), query.Get("error_description")))
		return
	}

	token, err := h.config.Exchange(r.Context(), code)
	if err != nil {
		h.fail(w, http.StatusInternalServerError, "Token exchange failed",
			fmt.Errorf("%w: token exchange failed: %v", shared.ErrAuthFailed, err))
		return
	}

	h.deliver(OAuthResult{Token: token})
	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, successPage)
}

func (h *OAuthHandler) fail(w http.ResponseWriter, status int, message string, err error) {
	h.deliver(OAuthResult{err: err})
	http.Error(w, message, status)
}

func (h *OAuthHandler) deliver(result OAuthResult) {
	h.resultChan <- result
	close(h.resultChan)
}

// Result returns the channel that receives the flow's single outcome.
func (h *OAuthHandler) Result() <-chan OAuthResult {
	return h.resultChan
}
