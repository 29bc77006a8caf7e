package server

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/desertthunder/epx/internal/shared"
)

const callbackMessage = "Authorization code received! You can close this tab.\n"

type callbackResult struct {
	code string
	err  error
}

// CallbackHandler receives the provider's redirect and hands the authorization
// code to a single reader. Only the first request is processed.
type CallbackHandler struct {
	path   string
	state  string
	result chan callbackResult

	mu  sync.Mutex
	hit bool
}

// NewCallbackHandler creates a handler for path. An empty state disables the state check.
func NewCallbackHandler(path, state string) *CallbackHandler {
	return &CallbackHandler{
		path:   path,
		state:  state,
		result: make(chan callbackResult, 1),
	}
}

// Routes returns the redirect path.
func (h *CallbackHandler) Routes() []string {
	return []string{h.path}
}

// ServeHTTP validates the callback and publishes its outcome.
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.hit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.hit = true
	h.mu.Unlock()

	q := r.URL.Query()

	if reason := q.Get("error"); reason != "" {
		h.send(callbackResult{err: fmt.Errorf("%w: %s", shared.ErrAuthDenied, reason)})
		http.Error(w, "Authorization failed: "+reason, http.StatusBadRequest)
		return
	}

	if h.state != "" && q.Get("state") != h.state {
		h.send(callbackResult{err: shared.ErrInvalidState})
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	code := q.Get("code")
	if code == "" {
		h.send(callbackResult{err: fmt.Errorf("%w: code", shared.ErrMissingArgument)})
		http.Error(w, "Missing authorization code", http.StatusBadRequest)
		return
	}

	h.send(callbackResult{code: code})

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, callbackMessage)
}

// send never blocks: the buffer holds exactly one result and only the first request reaches it.
func (h *CallbackHandler) send(res callbackResult) {
	select {
	case h.result <- res:
	default:
	}
}

// Result returns the channel that receives the single callback outcome.
func (h *CallbackHandler) Result() <-chan callbackResult {
	return h.result
}
