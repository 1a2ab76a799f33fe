package log

import "context"

type contextKey struct{}

// FromContext retrieves a logger from the context.
// If no logger is found, a new default logger is returned.
func FromContext(ctx context.Context) *Logger {
	if ctx == nil {
		return New("default")
	}

	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		return New("default")
	}
	return logger
}

// WithContext adds the logger to the context.
func (l *Logger) WithContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}
