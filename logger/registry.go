package logger

import "sync"

// Named loggers let a binary tune one subsystem ("bus", "operator",
// "storage") without touching the others.
var (
	namedMu sync.RWMutex
	named   = map[string]*Logger{}
)

// Register binds l to name. Later calls replace earlier ones.
func Register(name string, l *Logger) {
	namedMu.Lock()
	named[name] = l
	namedMu.Unlock()
}

// Get returns the logger registered under name, or the global logger tagged
// with name as its component.
func Get(name string) *Logger {
	namedMu.RLock()
	l, ok := named[name]
	namedMu.RUnlock()
	if ok {
		return l
	}
	return GetGlobalLogger().WithComponent(name)
}

// Reset drops every registered logger. Loggers handed out earlier keep working.
func Reset() {
	namedMu.Lock()
	clear(named)
	namedMu.Unlock()
}
