package env

import "testing"

func TestFirstPrefersEarlierKeys(t *testing.T) {
	t.Setenv("ABC_LOG_FORMAT", "")
	t.Setenv("LOG_FORMAT", "console")
	if got := First("ABC_LOG_FORMAT", "LOG_FORMAT"); got != "console" {
		t.Fatalf("expected fallback key, got %q", got)
	}

	t.Setenv("ABC_LOG_FORMAT", " json ")
	if got := First("ABC_LOG_FORMAT", "LOG_FORMAT"); got != "json" {
		t.Fatalf("expected first key, got %q", got)
	}

	if got := First("ABC_UNSET_FOR_TEST"); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}
