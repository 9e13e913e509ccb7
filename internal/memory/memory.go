package memory

import (
	"os"
	"runtime/debug"
	"strconv"

	"photo-cull/internal/logging"
)

// DefaultMemoryRatio is the share of the container memory limit given
// to the Go heap; the rest is headroom for libvips and decode buffers.
const DefaultMemoryRatio = 0.85

// ConfigureFromEnv sets GOMEMLIMIT from the environment. Call early in
// main, before significant allocations.
//
//   - GOMEMLIMIT: if set, the runtime already honors it; nothing to do
//   - MEMORY_LIMIT: container memory limit in bytes
//   - MEMORY_RATIO: share of MEMORY_LIMIT for the Go heap (default 0.85)
func ConfigureFromEnv() {
	if os.Getenv("GOMEMLIMIT") != "" {
		logging.Info("GOMEMLIMIT set via environment")
		return
	}

	limitStr := os.Getenv("MEMORY_LIMIT")
	if limitStr == "" {
		logging.Debug("MEMORY_LIMIT not set, GOMEMLIMIT left unconfigured")
		return
	}

	limit, err := strconv.ParseInt(limitStr, 10, 64)
	if err != nil || limit <= 0 {
		logging.Warn("Failed to parse MEMORY_LIMIT %q: %v", limitStr, err)
		return
	}

	ratio := DefaultMemoryRatio
	if ratioStr := os.Getenv("MEMORY_RATIO"); ratioStr != "" {
		if parsed, err := strconv.ParseFloat(ratioStr, 64); err == nil && parsed > 0 && parsed <= 1.0 {
			ratio = parsed
		} else {
			logging.Warn("MEMORY_RATIO %q out of range, using default %.2f", ratioStr, DefaultMemoryRatio)
		}
	}

	goMemLimit := int64(float64(limit) * ratio)
	debug.SetMemoryLimit(goMemLimit)
	logging.Info("Configured GOMEMLIMIT: %d bytes (%.0f%% of %d)", goMemLimit, ratio*100, limit)
}
