package bridge

import (
	"sync/atomic"
	"time"
)

// Processor はグラフィックエンジンの1ティック分の処理
type Processor interface {
	Process()
}

// TickDriver は一定間隔でエンジンの処理を呼び出すメインループ
type TickDriver struct {
	proc     Processor
	interval time.Duration
	updates  chan time.Duration
	ticks    atomic.Uint64
	sleep    func(time.Duration)
}

// NewTickDriver は新しい TickDriver を作成する
func NewTickDriver(proc Processor, interval time.Duration) *TickDriver {
	return &TickDriver{
		proc:     proc,
		interval: interval,
		updates:  make(chan time.Duration, 1),
		sleep:    time.Sleep,
	}
}

// Run はエンジンの処理と待機を繰り返す。stop が nil なら終了しない。
// 待機は協調的な譲り合いであり、遅れても正しさには影響しない
func (t *TickDriver) Run(stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		default:
		}

		// 間隔の更新はループの先頭でのみ反映する
		select {
		case d := <-t.updates:
			t.interval = d
		default:
		}

		t.proc.Process()
		t.ticks.Add(1)
		t.sleep(t.interval)
	}
}

// SetInterval は次の周回から使う待機間隔を設定する
func (t *TickDriver) SetInterval(d time.Duration) {
	select {
	case t.updates <- d:
	default:
		// 未反映の値が残っている場合は捨てて新しい値を入れる
		select {
		case <-t.updates:
		default:
		}
		t.updates <- d
	}
}

// Ticks はこれまでの周回数を返す
func (t *TickDriver) Ticks() uint64 {
	return t.ticks.Load()
}
