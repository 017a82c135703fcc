package config

func ptr[T any](v T) *T { return &v }

func deref[T any](p *T, fallback T) T {
	if p != nil {
		return *p
	}
	return fallback
}
