package timezone

//go:generate go run go.uber.org/mock/mockgen -source=./clock.go -destination=./mocks/clock_mock.go -package=mocks

import "time"

// Clock abstracts the current time so lock checks can be tested deterministically.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

func NewClock() Clock {
	return SystemClock{}
}
