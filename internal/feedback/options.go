package feedback

import "time"

// Option applies a configuration option to the Banner.
type Option func(*Banner)

// WithTTL sets how long a message stays visible after the latest Show.
func WithTTL(ttl time.Duration) Option {
	return func(b *Banner) {
		if ttl > 0 {
			b.ttl = ttl
		}
	}
}
