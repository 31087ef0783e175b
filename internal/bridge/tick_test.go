package bridge

import (
	"testing"
	"time"
)

type countingProcessor struct {
	n    int
	stop chan struct{}
	at   int
}

func (c *countingProcessor) Process() {
	c.n++
	if c.n == c.at {
		close(c.stop)
	}
}

func TestTickDriverRunsUntilStopped(t *testing.T) {
	stop := make(chan struct{})
	proc := &countingProcessor{stop: stop, at: 3}
	d := NewTickDriver(proc, 5*time.Millisecond)

	var slept []time.Duration
	d.sleep = func(dur time.Duration) { slept = append(slept, dur) }

	d.Run(stop)

	if proc.n != 3 || d.Ticks() != 3 {
		t.Errorf("processed %d ticks (%d counted), want 3", proc.n, d.Ticks())
	}
	// 各処理のあとに必ず待機する
	if len(slept) != 3 || slept[0] != 5*time.Millisecond {
		t.Errorf("slept = %v", slept)
	}
}

func TestTickDriverSetInterval(t *testing.T) {
	stop := make(chan struct{})
	proc := &countingProcessor{stop: stop, at: 2}
	d := NewTickDriver(proc, 5*time.Millisecond)

	var slept []time.Duration
	d.sleep = func(dur time.Duration) { slept = append(slept, dur) }

	d.SetInterval(time.Millisecond)
	d.SetInterval(2 * time.Millisecond) // 最後の値だけが残る
	d.Run(stop)

	for _, s := range slept {
		if s != 2*time.Millisecond {
			t.Errorf("slept %v, want 2ms", s)
		}
	}
}
