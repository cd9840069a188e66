package pkglog

import "context"

type correlationIDKey struct{}

// MissingCorrelationID is what GetCorrelationID reports for a context that
// never passed through the correlation middleware, e.g. background workers.
const MissingCorrelationID = "[invalid_chain_id]"

// GetCorrelationID returns the correlation ID stored in the context, or
// MissingCorrelationID.
func GetCorrelationID(ctx context.Context) string {
	if cid, ok := LookupCorrelationID(ctx); ok {
		return cid
	}
	return MissingCorrelationID
}

// LookupCorrelationID reports whether a non-empty correlation ID is stored.
func LookupCorrelationID(ctx context.Context) (string, bool) {
	cid, ok := ctx.Value(correlationIDKey{}).(string)
	return cid, ok && cid != ""
}

// SetCorrelationID stores a correlation ID into the context.
func SetCorrelationID(ctx context.Context, cid string) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, cid)
}
