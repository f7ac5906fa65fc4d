package adapters

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"storybook-generator/domain"
	"testing"
)

func TestContentFetcher_Download(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "secret" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "video/mp4")
		_, _ = w.Write([]byte("movie"))
	}))
	defer server.Close()

	fetcher := NewContentFetcher(NewZerologWrapper("disabled"))

	data, contentType, err := fetcher.Download(context.Background(), server.URL+"/files/v1?alt=media&key=secret")
	if err != nil {
		t.Fatalf("error downloading video: %v", err)
	}
	if string(data) != "movie" || contentType != "video/mp4" {
		t.Errorf("unexpected download %q %s", data, contentType)
	}

	if _, _, err := fetcher.Download(context.Background(), server.URL+"/files/v1?key=wrong"); !errors.Is(err, domain.ErrProviderOperation) {
		t.Errorf("expected ErrProviderOperation for a non-OK status, got %v", err)
	}
}

func TestRedactedURL(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "https://example.com/v?alt=media&key=secret", nil)
	if got := redactedURL(req); got != "https://example.com/v?alt=media&key=REDACTED" {
		t.Errorf("unexpected redaction %s", got)
	}
}
