package dynamics

import (
	"os"
	"sync"

	"github.com/charmbracelet/log"
)

var (
	loggerMu sync.RWMutex
	logger   = log.NewWithOptions(os.Stderr, log.Options{
		Prefix: "dynamics",
		Level:  log.InfoLevel,
	})
)

// SetLogger replaces the logger used for warnings and returns the previous one.
func SetLogger(l *log.Logger) *log.Logger {
	loggerMu.Lock()
	defer loggerMu.Unlock()

	previous := logger
	logger = l
	return previous
}

func warn(msg string, keyvals ...interface{}) {
	loggerMu.RLock()
	defer loggerMu.RUnlock()

	if logger != nil {
		logger.Warn(msg, keyvals...)
	}
}
