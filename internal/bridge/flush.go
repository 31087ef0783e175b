// Package bridge はグラフィックエンジンとパネル・タッチコントローラをつなぐ
package bridge

import (
	"sync"

	"github.com/char5742/tft-touch-bridge/internal/geometry"
	"github.com/char5742/tft-touch-bridge/internal/logger"
	"github.com/char5742/tft-touch-bridge/internal/panel"
)

// FlushStats は転送の統計
type FlushStats struct {
	Frames    uint64        `json:"frames"`
	Pixels    uint64        `json:"pixels"`
	Errors    uint64        `json:"errors"`
	LastArea  geometry.Area `json:"last_area"`
	LastError string        `json:"last_error,omitempty"`
}

// FlushAdapter は描画済みの領域をパネルへ転送する
type FlushAdapter struct {
	transport panel.Transport
	swap      bool

	mutex sync.Mutex
	stats FlushStats
}

// NewFlushAdapter は新しい FlushAdapter を作成する。swap はピクセルの上位バイトから送るかどうか
func NewFlushAdapter(t panel.Transport, swap bool) *FlushAdapter {
	return &FlushAdapter{transport: t, swap: swap}
}

// Flush は area の矩形に pixels を行優先で書き込み、最後に必ず done を呼ぶ。
// pixels は area.Size() 個以上のピクセルを持つこと。
// 転送エラーはそのフレームだけを破棄し、再試行しない
func (f *FlushAdapter) Flush(area geometry.Area, pixels []uint16, done func()) {
	defer done()

	w, h := area.Width(), area.Height()
	if err := f.transport.BeginWrite(); err != nil {
		f.record(area, 0, err)
		return
	}
	err := f.write(area.X1, area.Y1, w, h, pixels[:w*h])
	if endErr := f.transport.EndWrite(); err == nil {
		err = endErr
	}
	f.record(area, w*h, err)
}

func (f *FlushAdapter) write(x, y, w, h int, pixels []uint16) error {
	if err := f.transport.SetAddrWindow(x, y, w, h); err != nil {
		return err
	}
	return f.transport.PushColors(pixels, f.swap)
}

func (f *FlushAdapter) record(area geometry.Area, n int, err error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.stats.LastArea = area
	if err != nil {
		f.stats.Errors++
		f.stats.LastError = err.Error()
		logger.L().Warn("フレームの転送に失敗しました", "area", area, "err", err)
		return
	}
	f.stats.Frames++
	f.stats.Pixels += uint64(n)
}

// Stats は統計のコピーを返す
func (f *FlushAdapter) Stats() FlushStats {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.stats
}
