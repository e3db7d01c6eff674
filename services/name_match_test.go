package services

import (
	"context"
	"testing"
)

func TestNormalizeName(t *testing.T) {
	cases := map[string]string{
		"Zoë O'Brien!":      "zoe obrien",
		"  JOSÉ   Álvarez ": "jose alvarez",
		"🔥 Fit Jane 🔥":      "fit jane",
		"":                  "",
	}
	for in, want := range cases {
		if got := normalizeName(in); got != want {
			t.Errorf("normalizeName(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestNameMatches(t *testing.T) {
	cases := []struct {
		stored, wanted string
		want           bool
	}{
		{"José Álvarez", "jose alvarez", true},
		{"Jane Doe | Coach", "jane doe", true},
		{"Jane Doe", "Jane Doe Coach", false},
		{"Jane Doe", "!!!", false},
		{"", "jane", false},
	}
	for _, tc := range cases {
		if got := nameMatches(tc.stored, tc.wanted); got != tc.want {
			t.Errorf("nameMatches(%q, %q): expected %v, got %v", tc.stored, tc.wanted, tc.want, got)
		}
	}
}

func TestDisplayNameStrategyTakesFirstMatch(t *testing.T) {
	repo := newMemStore()
	store := newTestSubjectStore(repo, nil)
	ctx := context.Background()

	for _, id := range []string{"first", "second"} {
		if _, err := store.ApplyContactEvent(ctx, id, ContactAttributes{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	repo.subjects[0].Name = "Ana Lima"
	repo.subjects[1].Name = "Ana Lima"

	resolver := newIdentityResolver(repo, true)
	s, by, err := resolver.Resolve(ctx, ResolveCriteria{UserID: "crm-1", DisplayName: "ana lima"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s == nil || s.UserID != "first" {
		t.Fatalf("expected first subject, got %+v", s)
	}
	if by != MatchedByDisplayName {
		t.Fatalf("expected match by display name, got %s", by)
	}

	s, _, err = newIdentityResolver(repo, false).Resolve(ctx, ResolveCriteria{UserID: "crm-1", DisplayName: "ana lima"})
	if err != nil || s != nil {
		t.Fatalf("expected no match without display-name fallback, got %+v, %v", s, err)
	}
}
