package services

import "context"

type contextKey string

const (
	titleKey     contextKey = "title"
	surfaceKey   contextKey = "surface"
	requestIDKey contextKey = "request_id"
)

// WithTitle annotates context with the title a request is about.
func WithTitle(ctx context.Context, title string) context.Context {
	if title == "" {
		return ctx
	}
	return context.WithValue(ctx, titleKey, title)
}

// TitleFromContext returns the title if present.
func TitleFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(titleKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithSurface annotates context with the surface (cli/http) serving a request.
func WithSurface(ctx context.Context, surface string) context.Context {
	if surface == "" {
		return ctx
	}
	return context.WithValue(ctx, surfaceKey, surface)
}

// SurfaceFromContext returns the surface name if present.
func SurfaceFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(surfaceKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
