package adminquery

import "context"

// Skip selects parts of a list response that need not be computed.
type Skip struct {
	Data, Total bool
}

func (s Skip) All() bool {
	return s.Data && s.Total
}

type ctxKeySkip struct{}

func WithSkip(ctx context.Context, skip Skip) context.Context {
	return context.WithValue(ctx, ctxKeySkip{}, skip)
}

func GetSkip(ctx context.Context) Skip {
	skip, _ := ctx.Value(ctxKeySkip{}).(Skip)
	return skip
}
