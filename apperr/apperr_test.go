package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOfWrapped(t *testing.T) {
	base := InvalidReference("create campaign", "unknown users", []string{"u404", "u405"})
	wrapped := fmt.Errorf("handler: %w", base)

	if got := KindOf(wrapped); got != KindInvalidReference {
		t.Fatalf("expected %q, got %q", KindInvalidReference, got)
	}
	ids := InvalidIDs(wrapped)
	if len(ids) != 2 || ids[0] != "u404" || ids[1] != "u405" {
		t.Fatalf("expected both ids, got %v", ids)
	}
}

func TestKindOfPlainError(t *testing.T) {
	if got := KindOf(errors.New("boom")); got != "" {
		t.Fatalf("expected empty kind, got %q", got)
	}
	if Is(nil, KindStorage) {
		t.Fatal("nil error must not match any kind")
	}
}

func TestStorageUnwrap(t *testing.T) {
	cause := errors.New("write conflict")
	err := Storage("mark active", cause)

	if !errors.Is(err, cause) {
		t.Fatal("expected storage error to unwrap to its cause")
	}
	want := "mark active: storage failure: write conflict"
	if err.Error() != want {
		t.Fatalf("expected %q, got %q", want, err.Error())
	}
}

func TestErrorMessageListsIDs(t *testing.T) {
	err := InvalidReference("update campaign", "unknown users", []string{"a", "b"})
	want := "update campaign: unknown users [a, b]"
	if err.Error() != want {
		t.Fatalf("expected %q, got %q", want, err.Error())
	}
}
