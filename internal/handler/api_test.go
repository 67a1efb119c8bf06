package handler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time        { return c.now }
func (c fixedClock) Sleep(d time.Duration) {}

func TestTodayFollowsClock(t *testing.T) {
	h := &Handler{Clock: fixedClock{now: time.Date(2024, 6, 1, 23, 59, 0, 0, time.UTC)}}
	assert.Equal(t, "2024-06-01", h.today())

	h.Clock = fixedClock{now: time.Date(2024, 6, 2, 0, 1, 0, 0, time.UTC)}
	assert.Equal(t, "2024-06-02", h.today())
}
