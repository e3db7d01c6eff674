package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"outreach-tracker/apperr"
	"outreach-tracker/config"
)

func newTestGraphDirectory(url string) *GraphDirectory {
	return NewGraphDirectory(&config.Config{
		DirectoryBaseURL:     url,
		DirectoryAccessToken: "token-1",
		DirectoryTimeout:     2 * time.Second,
		DirectoryRPM:         1000,
	}, testLogger())
}

func TestGraphDirectoryLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/page-1" {
			t.Errorf("expected path /page-1, got %s", r.URL.Path)
		}
		if r.URL.Query().Get("access_token") != "token-1" {
			t.Errorf("expected access token, got %q", r.URL.Query().Get("access_token"))
		}
		if !strings.Contains(r.URL.Query().Get("fields"), "business_discovery.username(fitjane)") {
			t.Errorf("unexpected fields %q", r.URL.Query().Get("fields"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"page-1","business_discovery":{"id":"1789","username":"fitjane","followers_count":1200,"follows_count":-3,"is_verified":true,"messaging_id":"m-1"}}`))
	}))
	defer srv.Close()

	profile, err := newTestGraphDirectory(srv.URL).Lookup(context.Background(), "fitjane", "page-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile.ID != "1789" || profile.FollowersCount != 1200 || profile.MessagingID != "m-1" || !profile.IsVerified {
		t.Fatalf("unexpected profile %+v", profile)
	}
	if profile.FollowingCount != 0 {
		t.Fatalf("expected negative count clamped to 0, got %d", profile.FollowingCount)
	}
}

func TestGraphDirectoryUpstreamFailures(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		payload string
	}{
		{"server error", http.StatusInternalServerError, `{"error":{"message":"boom"}}`},
		{"bad json", http.StatusOK, `{not json`},
		{"missing profile", http.StatusOK, `{"id":"page-1"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.payload))
			}))
			defer srv.Close()

			_, err := newTestGraphDirectory(srv.URL).Lookup(context.Background(), "x", "page-1")
			if apperr.KindOf(err) != apperr.KindUpstreamUnavailable {
				t.Fatalf("expected upstream error, got %v", err)
			}
		})
	}
}

func TestGraphDirectoryTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	dir := NewGraphDirectory(&config.Config{
		DirectoryBaseURL: srv.URL,
		DirectoryTimeout: 20 * time.Millisecond,
		DirectoryRPM:     10,
	}, testLogger())

	_, err := dir.Lookup(context.Background(), "x", "page-1")
	if apperr.KindOf(err) != apperr.KindUpstreamUnavailable {
		t.Fatalf("expected upstream error, got %v", err)
	}
}

func TestGraphDirectoryRequiresIdentifiers(t *testing.T) {
	dir := newTestGraphDirectory("http://127.0.0.1:1")
	if _, err := dir.Lookup(context.Background(), "", "page-1"); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
