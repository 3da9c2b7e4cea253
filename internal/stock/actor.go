package stock

import "context"

type actorKey struct{}

// WithActor returns a context carrying the ID of the user issuing commands.
// Transfers record it in the journal.
func WithActor(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, actorKey{}, userID)
}

func actorFrom(ctx context.Context) *int64 {
	id, ok := ctx.Value(actorKey{}).(int64)
	if !ok {
		return nil
	}
	return &id
}
