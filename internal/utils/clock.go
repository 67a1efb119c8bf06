package utils

import (
	"time"
)

// Clock 可注入时钟，测试中替换为固定/可步进时钟
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// RealClock 真实时钟
type RealClock struct{}

func (RealClock) Now() time.Time        { return time.Now() }
func (RealClock) Sleep(d time.Duration) { time.Sleep(d) }

// Backoff 重试间隔策略
type Backoff interface {
	Delay(attempt int) time.Duration
}

// ConstantBackoff 固定间隔重试（默认 1 秒）
type ConstantBackoff struct {
	Interval time.Duration
}

func (b ConstantBackoff) Delay(attempt int) time.Duration {
	return b.Interval
}
