package dateutil

import (
	"sync"
	"time"
)

// ZoneName is the civil timezone every reputation week is anchored to.
const ZoneName = "America/Denver"

var (
	zone     *time.Location
	zoneOnce sync.Once
)

// Zone returns the service timezone. It panics if tzdata is unavailable,
// which is a deployment error.
func Zone() *time.Location {
	zoneOnce.Do(func() {
		var err error
		zone, err = time.LoadLocation(ZoneName)
		if err != nil {
			panic(err)
		}
	})

	return zone
}

// Clock is the single source of wall-clock truth. Production code uses
// NewClock; tests inject Frozen instants so week-boundary behavior is
// deterministic.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func NewClock() Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now().In(Zone())
}

type frozenClock struct {
	t time.Time
}

func Frozen(t time.Time) Clock {
	return frozenClock{t: t.In(Zone())}
}

func (c frozenClock) Now() time.Time {
	return c.t
}
