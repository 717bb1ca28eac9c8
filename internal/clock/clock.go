package clock

import "time"

type Clock interface {
	Now() time.Time
}

// SystemClock 以 UTC 回傳目前時間
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// FixedClock 固定時間，測試用
type FixedClock struct {
	At time.Time
}

func (c FixedClock) Now() time.Time {
	return c.At
}
