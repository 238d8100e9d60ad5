package envutil

import (
	"testing"
	"time"
)

func TestDuration(t *testing.T) {
	t.Setenv("X_DURATION", "90s")
	if got := Duration("X_DURATION", time.Second); got != 90*time.Second {
		t.Fatalf("got %s", got)
	}
	t.Setenv("X_DURATION", "45")
	if got := Duration("X_DURATION", time.Second); got != 45*time.Second {
		t.Fatalf("got %s", got)
	}
	t.Setenv("X_DURATION", "soon")
	if got := Duration("X_DURATION", time.Second); got != time.Second {
		t.Fatalf("got %s", got)
	}
}

func TestBoolAndInt(t *testing.T) {
	t.Setenv("X_BOOL", "on")
	if !Bool("X_BOOL", false) {
		t.Fatalf("expected true")
	}
	t.Setenv("X_BOOL", "maybe")
	if Bool("X_BOOL", false) {
		t.Fatalf("expected default")
	}
	t.Setenv("X_INT", "12")
	if Int("X_INT", 3) != 12 {
		t.Fatalf("expected 12")
	}
	if String("X_UNSET_STRING", "def") != "def" {
		t.Fatalf("expected default string")
	}
}

func TestFloat(t *testing.T) {
	t.Setenv("X_FLOAT", "0.25")
	if got := Float("X_FLOAT", 1); got != 0.25 {
		t.Fatalf("got %v", got)
	}
	t.Setenv("X_FLOAT", "abc")
	if got := Float("X_FLOAT", 1); got != 1 {
		t.Fatalf("got %v", got)
	}
}
