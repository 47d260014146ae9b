package movie

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/diginoron/imdb/internal/upstream"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.Client(), srv.URL, "key", "movies.example.com")
}

func TestFetchMovie_Envelopes(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"status envelope", `{"status":true,"data":{"title":"Inception","year":2010}}`},
		{"bare object", `{"title":"Inception","year":2010}`},
		{"array", `[{"title":"Inception","year":"2010"},{"title":"Other"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/tt1375666" {
					t.Errorf("unexpected path %q", r.URL.Path)
				}
				if r.Header.Get("X-RapidAPI-Key") != "key" || r.Header.Get("X-RapidAPI-Host") != "movies.example.com" {
					t.Errorf("missing credential headers: %v", r.Header)
				}
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(tt.body))
			})

			rec, err := client.FetchMovie(context.Background(), "tt1375666")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.Title != "Inception" || rec.Year != 2010 {
				t.Errorf("unexpected record %+v", rec)
			}
		})
	}
}

func TestFetchMovie_NotFound(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"empty array", http.StatusOK, `[]`, ""},
		{"failed envelope", http.StatusOK, `{"status":false,"message":"Movie not found!"}`, "Movie not found!"},
		{"empty title", http.StatusOK, `{"title":"   "}`, ""},
		{"http 404", http.StatusNotFound, `{"message":"No such title"}`, "No such title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := client.FetchMovie(context.Background(), "tt0000001")
			if !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
			var nf *NotFoundError
			if !errors.As(err, &nf) || nf.Message != tt.message {
				t.Errorf("expected message %q, got %+v", tt.message, nf)
			}
		})
	}
}

func TestFetchMovie_InvalidIdentifierSkipsNetwork(t *testing.T) {
	called := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	for _, id := range []string{"0816692", "", "tt", "tt12/34"} {
		_, err := client.FetchMovie(context.Background(), id)
		if !errors.Is(err, ErrInvalidIdentifier) {
			t.Errorf("FetchMovie(%q): expected ErrInvalidIdentifier, got %v", id, err)
		}
	}
	if called {
		t.Error("expected no request for invalid identifiers")
	}
}

func TestFetchMovie_MissingKey(t *testing.T) {
	client := NewClient(http.DefaultClient, "http://127.0.0.1:1", "", "")
	_, err := client.FetchMovie(context.Background(), "tt1375666")
	if !errors.Is(err, upstream.ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential, got %v", err)
	}
}

func TestFetchMovie_UpstreamError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"You are not subscribed to this API."}`))
	})

	_, err := client.FetchMovie(context.Background(), "tt1375666")

	var statusErr *upstream.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected *upstream.StatusError, got %T (%v)", err, err)
	}
	if statusErr.Status != http.StatusForbidden || statusErr.Reason != "You are not subscribed to this API." {
		t.Errorf("unexpected error %+v", statusErr)
	}
}
