package inkwell

import (
	"sync"

	"github.com/inkwell-press/inkwell/log"
)

// DestructorFn performs a shutdown step.
type DestructorFn func() error

var (
	shutdownMx  sync.Mutex
	destructors []DestructorFn
	done        bool
)

// RegisterDestructor registers a function to run at shutdown.
// Destructors run in reverse registration order.
func RegisterDestructor(fn DestructorFn) {
	shutdownMx.Lock()
	defer shutdownMx.Unlock()
	destructors = append(destructors, fn)
}

// Shutdown runs all registered destructors once. cause, when non-nil,
// is the error that triggered the shutdown.
func Shutdown(cause error) {
	shutdownMx.Lock()
	defer shutdownMx.Unlock()

	if done {
		return
	}
	done = true

	logger := log.New("runtime")
	if cause != nil {
		logger.Error(cause, "fatal error, shutting down")
	}
	for i := len(destructors) - 1; i >= 0; i-- {
		if err := destructors[i](); err != nil {
			logger.Error(err, "shutdown step failed")
		}
	}
	destructors = nil
}
