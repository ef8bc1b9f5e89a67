package hook

// Chain composes hooks so that the first one is the outermost wrapper.
// It returns nil when no non-nil hook is given.
func Chain[T any](hooks ...func(next T) T) func(next T) T {
	hooks = compact(hooks)
	if len(hooks) == 0 {
		return nil
	}
	return func(next T) T {
		for i := len(hooks) - 1; i >= 0; i-- {
			next = hooks[i](next)
		}
		return next
	}
}

func compact[T any](hooks []func(next T) T) []func(next T) T {
	out := make([]func(next T) T, 0, len(hooks))
	for _, h := range hooks {
		if h != nil {
			out = append(out, h)
		}
	}
	return out
}
