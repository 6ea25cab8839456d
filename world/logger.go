package world

import (
	"sync"

	"go.uber.org/zap"
)

var (
	log     *zap.Logger
	logOnce sync.Once
	logMu   sync.Mutex
)

// SetLogger installs a logger for the world package. Call before any world
// activity; the default is a no-op logger.
func SetLogger(l *zap.Logger) {
	logMu.Lock()
	log = l
	logMu.Unlock()
}

func logger() *zap.Logger {
	logMu.Lock()
	defer logMu.Unlock()
	logOnce.Do(func() {
		if log == nil {
			log = zap.NewNop()
		}
	})
	return log
}
