package clock

import (
	"time"

	"go.uber.org/fx"
)

var Module = fx.Module("clock",
	fx.Provide(func() Clock { return System{} }),
)

// Clock is the time source for audit stamps.
type Clock interface {
	Now() time.Time
}

type System struct{}

func (System) Now() time.Time {
	return time.Now().UTC()
}

// Millis renders t the way documents store timestamps.
func Millis(t time.Time) int64 {
	return t.UnixMilli()
}
