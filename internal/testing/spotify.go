package testing

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/epx/internal/models"
)

// FakeSpotify serves the accounts token endpoint and the saved-episodes API.
//
// Exchange and refresh issue access tokens "access-1", "access-2", ... and only
// the latest one is accepted by the resource endpoints.
type FakeSpotify struct {
	Server *httptest.Server

	mu       sync.Mutex
	library  []models.Episode
	access   string
	issued   int
	rotation int

	// RotateRefresh makes refresh responses carry a new refresh token.
	RotateRefresh bool
	// RejectRefresh answers refresh requests with 400 invalid_grant.
	RejectRefresh bool
	// Unauthorized is the number of upcoming resource calls answered with 401.
	Unauthorized int
	// FailDeletes lists 1-based delete calls answered with 500.
	FailDeletes map[int]bool

	ExchangeCalls int
	RefreshCalls  int
	ListCalls     int
	DeleteCalls   int
	Codes         []string
}

// NewFakeSpotify starts a server holding n saved episodes and registers its cleanup.
func NewFakeSpotify(t *testing.T, n int) *FakeSpotify {
	t.Helper()

	f := &FakeSpotify{FailDeletes: map[int]bool{}}
	for i := range n {
		f.library = append(f.library, models.Episode{
			ID:          fmt.Sprintf("ep%03d", i),
			Name:        fmt.Sprintf("Episode %d", i),
			ShowName:    "Show",
			ReleaseDate: "2024-01-01",
		})
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/token", f.token)
	mux.HandleFunc("/v1/me/episodes", f.episodes)
	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Server.Close)
	return f
}

// TokenURL is the accounts token endpoint.
func (f *FakeSpotify) TokenURL() string { return f.Server.URL + "/api/token" }

// APIBaseURL is the Web API base.
func (f *FakeSpotify) APIBaseURL() string { return f.Server.URL + "/v1" }

// Library returns the ids still saved.
func (f *FakeSpotify) Library() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return models.IDs(f.library)
}

// Expire invalidates the current access token so the next resource call gets 401.
func (f *FakeSpotify) Expire() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.access = "expired"
}

func (f *FakeSpotify) issue() string {
	f.issued++
	f.access = fmt.Sprintf("access-%d", f.issued)
	return f.access
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (f *FakeSpotify) token(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_request"})
		return
	}

	switch r.PostForm.Get("grant_type") {
	case "authorization_code":
		f.ExchangeCalls++
		f.Codes = append(f.Codes, r.PostForm.Get("code"))
		writeJSON(w, http.StatusOK, map[string]any{
			"access_token":  f.issue(),
			"token_type":    "Bearer",
			"expires_in":    3600,
			"refresh_token": "refresh-from-code",
		})
	case "refresh_token":
		f.RefreshCalls++
		if f.RejectRefresh {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_grant", "error_description": "Refresh token revoked"})
			return
		}
		body := map[string]any{"access_token": f.issue(), "token_type": "Bearer", "expires_in": 3600}
		if f.RotateRefresh {
			f.rotation++
			body["refresh_token"] = fmt.Sprintf("rotated-%d", f.rotation)
		}
		writeJSON(w, http.StatusOK, body)
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unsupported_grant_type"})
	}
}

func (f *FakeSpotify) episodes(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.Unauthorized > 0 || r.Header.Get("Authorization") != "Bearer "+f.access {
		if f.Unauthorized > 0 {
			f.Unauthorized--
		}
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": map[string]any{"status": 401, "message": "The access token expired"}})
		return
	}

	switch r.Method {
	case http.MethodGet:
		f.ListCalls++
		f.list(w, r)
	case http.MethodDelete:
		f.DeleteCalls++
		if f.FailDeletes[f.DeleteCalls] {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = io.WriteString(w, `{"error":{"status":500,"message":"Server error"}}`)
			return
		}
		f.remove(strings.Split(r.URL.Query().Get("ids"), ","))
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *FakeSpotify) list(w http.ResponseWriter, r *http.Request) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 20
	}
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	page := models.EpisodePage{Total: len(f.library), Limit: limit, Offset: offset, Items: []models.SavedEpisode{}}
	for i := offset; i < len(f.library) && i < offset+limit; i++ {
		e := f.library[i]
		page.Items = append(page.Items, models.SavedEpisode{
			AddedAt: "2024-02-01T00:00:00Z",
			Episode: models.SpotifyEpisode{ID: e.ID, Name: e.Name, ReleaseDate: e.ReleaseDate, Show: models.Show{Name: e.ShowName}},
		})
	}
	if offset+limit < len(f.library) {
		next := fmt.Sprintf("%s/v1/me/episodes?offset=%d&limit=%d", f.Server.URL, offset+limit, limit)
		page.Next = &next
	}
	writeJSON(w, http.StatusOK, page)
}

func (f *FakeSpotify) remove(ids []string) {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := f.library[:0]
	for _, e := range f.library {
		if !drop[e.ID] {
			kept = append(kept, e)
		}
	}
	f.library = kept
}
