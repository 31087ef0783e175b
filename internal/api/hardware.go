package api

import (
	"errors"
	"fmt"
	"io"

	"github.com/char5742/tft-touch-bridge/internal/config"
	"github.com/char5742/tft-touch-bridge/internal/panel"
	"github.com/char5742/tft-touch-bridge/internal/touch"
)

// Hardware はサービスが駆動するパネルとタッチコントローラ
type Hardware struct {
	Panel   panel.Transport
	Touch   touch.Controller
	Closers []io.Closer
}

// Close は開いたデバイスをすべて閉じる
func (h *Hardware) Close() error {
	var errs []error
	for _, c := range h.Closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// HardwareFactory は設定からハードウェアを開く関数
type HardwareFactory func(cfg *config.Config) (*Hardware, error)

// OpenHardware は実機の SPI パネルとタッチコントローラを開く
func OpenHardware(cfg *config.Config) (*Hardware, error) {
	p, err := panel.Open(cfg.Panel)
	if err != nil {
		return nil, fmt.Errorf("パネルのオープンに失敗しました: %w", err)
	}
	t, closer, err := touch.Open(cfg.Touch)
	if err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("タッチコントローラのオープンに失敗しました: %w", err)
	}
	return &Hardware{Panel: p, Touch: t, Closers: []io.Closer{closer, p}}, nil
}
