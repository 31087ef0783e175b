package panel

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"github.com/char5742/tft-touch-bridge/internal/config"
)

// Device は実機のパネルと SPI ポートをまとめたもの
type Device struct {
	*ILI9341
	port spi.PortCloser
}

// Open は periph.io のホストを初期化し、設定に従ってパネルを開く
func Open(cfg config.PanelConfig) (*Device, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host の初期化に失敗しました: %w", err)
	}

	port, err := spireg.Open(cfg.SPIPort)
	if err != nil {
		return nil, fmt.Errorf("SPI ポート %q を開けませんでした: %w", cfg.SPIPort, err)
	}
	c, err := port.Connect(physic.Frequency(cfg.MaxHz)*physic.Hertz, spi.Mode0, 8)
	if err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("SPI 接続に失敗しました: %w", err)
	}

	dc, err := OutPin(cfg.DCPin, gpio.High)
	if err != nil {
		_ = port.Close()
		return nil, err
	}
	if dc == nil {
		_ = port.Close()
		return nil, errors.New("dc_pin が設定されていません")
	}
	pins := make([]gpio.PinOut, 3)
	for i, name := range []string{cfg.ResetPin, cfg.CSPin, cfg.BacklightPin} {
		if pins[i], err = OutPin(name, gpio.High); err != nil {
			_ = port.Close()
			return nil, err
		}
	}

	maxTx := 0
	if l, ok := c.(conn.Limits); ok {
		maxTx = l.MaxTxSize()
	}
	d := NewILI9341(c, dc, asOut(pins[0]), asOut(pins[1]), asOut(pins[2]), maxTx)
	return &Device{ILI9341: d, port: port}, nil
}

// Close は SPI ポートを閉じる
func (d *Device) Close() error {
	return d.port.Close()
}

// OutPin は名前からピンを取得して出力に設定する。空の名前は nil を返す
func OutPin(name string, initial gpio.Level) (gpio.PinOut, error) {
	if name == "" {
		return nil, nil
	}
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("gpio %s が見つかりません", name)
	}
	if err := p.Out(initial); err != nil {
		return nil, fmt.Errorf("gpio %s の出力設定に失敗しました: %w", name, err)
	}
	return p, nil
}

// asOut は nil のピンを nil インターフェースのまま渡すためのもの
func asOut(p gpio.PinOut) outPin {
	if p == nil {
		return nil
	}
	return p
}
