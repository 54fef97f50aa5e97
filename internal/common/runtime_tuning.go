package common

import (
	"os"
	"runtime"
	"runtime/debug"

	"github.com/rs/zerolog/log"
)

// Solver calls allocate many short-lived 256-bit values; a higher GOGC keeps
// collection off the request path. GOMEMLIMIT is the backstop.
const (
	DefaultGOGC     = 400
	DefaultMemLimit = 2 * 1024 * 1024 * 1024 // 2GB
)

// InitRuntime applies GC settings unless GOGC / GOMEMLIMIT are already set in
// the environment.
func InitRuntime() {
	if os.Getenv("GOGC") == "" {
		debug.SetGCPercent(DefaultGOGC)
	}
	if os.Getenv("GOMEMLIMIT") == "" {
		debug.SetMemoryLimit(DefaultMemLimit)
	}

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	log.Info().
		Int("num_cpu", runtime.NumCPU()).
		Int("gomaxprocs", runtime.GOMAXPROCS(0)).
		Uint64("heap_alloc_mb", memStats.HeapAlloc/1024/1024).
		Str("go_version", runtime.Version()).
		Msg("[runtime] settings applied")
}
