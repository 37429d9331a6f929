package service

import "time"

type options struct {
	now func() time.Time
}

// Option configures a service.
type Option func(*options)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func newOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// timestamp returns the current time at the precision PostgreSQL stores, so
// values handed back to clients round-trip exactly as pagination cursors.
func (o options) timestamp() time.Time {
	return o.now().UTC().Truncate(time.Microsecond)
}
