package logger

import (
	"log"
	"os"
	"sync/atomic"
)

var forced atomic.Bool

// Enable turns debug logging on regardless of the DEBUG environment variable.
func Enable(on bool) {
	forced.Store(on)
}

func Enabled() bool {
	return forced.Load() || os.Getenv("DEBUG") == "1"
}

func DebugLog(format string, args ...any) {
	if Enabled() {
		log.Printf("[DEBUG] "+format, args...)
	}
}
