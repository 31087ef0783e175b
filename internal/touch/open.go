package touch

import (
	"fmt"
	"io"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/char5742/tft-touch-bridge/internal/config"
	"github.com/char5742/tft-touch-bridge/internal/consts"
)

// Open は設定に従ってタッチコントローラを開く。返される Closer はバスまたはデバイスを閉じる
func Open(cfg config.TouchConfig) (Controller, io.Closer, error) {
	switch cfg.Source {
	case "evdev":
		e, err := OpenEvdev(cfg.EvdevPath, cfg.EvdevGrab)
		if err != nil {
			return nil, nil, err
		}
		return e, e, nil
	case "", "ft6336u":
		return openFT6336U(cfg)
	default:
		return nil, nil, fmt.Errorf("不明なタッチソースです: %q", cfg.Source)
	}
}

func openFT6336U(cfg config.TouchConfig) (Controller, io.Closer, error) {
	if _, err := host.Init(); err != nil {
		return nil, nil, fmt.Errorf("periph host の初期化に失敗しました: %w", err)
	}
	bus, err := i2creg.Open(cfg.I2CBus)
	if err != nil {
		return nil, nil, fmt.Errorf("I2C バス %q を開けませんでした: %w", cfg.I2CBus, err)
	}
	addr := cfg.Addr
	if addr == 0 {
		addr = consts.FT6336Addr
	}
	var reset outPin
	if cfg.ResetPin != "" {
		p := gpioreg.ByName(cfg.ResetPin)
		if p == nil {
			_ = bus.Close()
			return nil, nil, fmt.Errorf("gpio %s が見つかりません", cfg.ResetPin)
		}
		if err := p.Out(gpio.High); err != nil {
			_ = bus.Close()
			return nil, nil, fmt.Errorf("gpio %s の出力設定に失敗しました: %w", cfg.ResetPin, err)
		}
		reset = p
	}
	dev := &i2c.Dev{Bus: bus, Addr: addr}
	return NewFT6336U(dev, reset), bus, nil
}
