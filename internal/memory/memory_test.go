package memory

import (
	"runtime/debug"
	"testing"
)

func TestConfigureFromEnvSetsLimit(t *testing.T) {
	original := debug.SetMemoryLimit(-1)
	defer debug.SetMemoryLimit(original)

	t.Setenv("GOMEMLIMIT", "")
	t.Setenv("MEMORY_LIMIT", "1000000000")
	t.Setenv("MEMORY_RATIO", "0.5")

	ConfigureFromEnv()

	if got := debug.SetMemoryLimit(-1); got != 500000000 {
		t.Errorf("memory limit = %d, want 500000000", got)
	}
}

func TestConfigureFromEnvNoLimit(t *testing.T) {
	original := debug.SetMemoryLimit(-1)
	defer debug.SetMemoryLimit(original)

	t.Setenv("GOMEMLIMIT", "")
	t.Setenv("MEMORY_LIMIT", "")

	ConfigureFromEnv()

	if got := debug.SetMemoryLimit(-1); got != original {
		t.Errorf("memory limit changed to %d without MEMORY_LIMIT set", got)
	}
}

func TestConfigureFromEnvInvalidLimit(t *testing.T) {
	original := debug.SetMemoryLimit(-1)
	defer debug.SetMemoryLimit(original)

	t.Setenv("GOMEMLIMIT", "")
	t.Setenv("MEMORY_LIMIT", "banana")

	ConfigureFromEnv()

	if got := debug.SetMemoryLimit(-1); got != original {
		t.Errorf("memory limit changed to %d with invalid MEMORY_LIMIT", got)
	}
}
