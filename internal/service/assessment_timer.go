package service

import (
	"sync"
	"time"
)

// Countdown 可取消的倒计时
type Countdown interface {
	// Start 每次递减后回调 onTick，归零时回调一次 onExpire；运行中再次 Start 会先取消上一次
	Start(seconds int, onTick func(remaining int), onExpire func())
	// Cancel 返回后不会再有任何回调，正在执行的 onExpire 会等它返回；回调内不可调用
	Cancel()
}

type countdownRun struct {
	stop chan struct{}
	// finished 在最后一个回调返回后关闭
	finished chan struct{}
}

// TickerCountdown 基于 time.Ticker 的倒计时，Interval 默认 1s
type TickerCountdown struct {
	Interval time.Duration

	mu  sync.Mutex
	run *countdownRun
	// firing 已归零、onExpire 尚未返回的一轮
	firing *countdownRun
}

func NewTickerCountdown(interval time.Duration) *TickerCountdown {
	if interval <= 0 {
		interval = time.Second
	}
	return &TickerCountdown{Interval: interval}
}

func (c *TickerCountdown) Start(seconds int, onTick func(remaining int), onExpire func()) {
	c.Cancel()

	run := &countdownRun{
		stop:     make(chan struct{}),
		finished: make(chan struct{}),
	}
	c.mu.Lock()
	c.run = run
	c.mu.Unlock()

	go func() {
		defer close(run.finished)
		if !c.loop(run, seconds, onTick) {
			return
		}
		if onExpire != nil {
			onExpire()
		}
		c.mu.Lock()
		if c.firing == run {
			c.firing = nil
		}
		c.mu.Unlock()
	}()
}

func (c *TickerCountdown) loop(run *countdownRun, remaining int, onTick func(int)) bool {
	ticker := time.NewTicker(c.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-run.stop:
			return false
		case <-ticker.C:
		}

		remaining--
		if remaining < 0 {
			remaining = 0
		}

		select {
		case <-run.stop:
			return false
		default:
		}

		if onTick != nil {
			onTick(remaining)
		}
		if remaining > 0 {
			continue
		}

		// 与 Cancel 在同一把锁下交接：要么被取消，要么进入 firing
		c.mu.Lock()
		mine := c.run == run
		if mine {
			c.run = nil
			c.firing = run
		}
		c.mu.Unlock()
		return mine
	}
}

func (c *TickerCountdown) Cancel() {
	c.mu.Lock()
	run, firing := c.run, c.firing
	c.run = nil
	c.mu.Unlock()

	if run != nil {
		close(run.stop)
		<-run.finished
	}
	if firing != nil {
		<-firing.finished
	}
}

// Running 是否有尚未结束的倒计时，包括正在执行的 onExpire
func (c *TickerCountdown) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.run != nil || c.firing != nil
}
