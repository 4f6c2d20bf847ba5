package logger

import "testing"

func TestNew(t *testing.T) {
	for _, env := range []string{"dev", "prod"} {
		log, err := New(env, "debug")
		if err != nil {
			t.Fatalf("New(%q): %v", env, err)
		}
		if !log.Core().Enabled(-1) {
			t.Errorf("env %s: debug level should be enabled", env)
		}
	}

	if _, err := New("dev", "loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}
