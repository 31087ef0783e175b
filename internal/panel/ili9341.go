package panel

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"

	"github.com/char5742/tft-touch-bridge/internal/consts"
)

// defaultMaxTx は spidev の既定バッファサイズ
const defaultMaxTx = 4096

// txConn は SPI 接続のうち使用する部分
type txConn interface {
	Tx(w, r []byte) error
}

// outPin は出力ピンのうち使用する部分
type outPin interface {
	Out(l gpio.Level) error
}

// madctl は回転ごとの MADCTL 値
var madctl = [4]byte{
	consts.MadMX | consts.MadBGR,
	consts.MadMV | consts.MadBGR,
	consts.MadMY | consts.MadBGR,
	consts.MadMX | consts.MadMY | consts.MadMV | consts.MadBGR,
}

// ILI9341 は 4線式 SPI で接続された ILI9341 パネル
type ILI9341 struct {
	conn      txConn
	dc        outPin
	reset     outPin // nil 可
	cs        outPin // nil ならカーネル側の CS に任せる
	backlight outPin // nil 可
	maxTx     int
	buf       []byte
	open      bool
	sleep     func(time.Duration)
}

// NewILI9341 は接続済みの SPI とピンからパネルを作成する。maxTx が 0 以下なら既定値を使う
func NewILI9341(conn txConn, dc, reset, cs, backlight outPin, maxTx int) *ILI9341 {
	if maxTx <= 0 {
		maxTx = defaultMaxTx
	}
	// maxTx が奇数だと1ピクセルが2回の転送に分かれるため偶数にそろえる
	maxTx &^= 1
	return &ILI9341{
		conn:      conn,
		dc:        dc,
		reset:     reset,
		cs:        cs,
		backlight: backlight,
		maxTx:     maxTx,
		buf:       make([]byte, maxTx),
		sleep:     time.Sleep,
	}
}

func (d *ILI9341) Init() error {
	if d.reset != nil {
		if err := d.reset.Out(gpio.High); err != nil {
			return fmt.Errorf("ili9341: reset: %w", err)
		}
		d.sleep(5 * time.Millisecond)
		if err := d.reset.Out(gpio.Low); err != nil {
			return fmt.Errorf("ili9341: reset: %w", err)
		}
		d.sleep(20 * time.Millisecond)
		if err := d.reset.Out(gpio.High); err != nil {
			return fmt.Errorf("ili9341: reset: %w", err)
		}
		d.sleep(150 * time.Millisecond)
	}

	steps := []struct {
		cmd   byte
		data  []byte
		delay time.Duration
	}{
		{consts.CmdSwReset, nil, 150 * time.Millisecond},
		{consts.CmdSleepOut, nil, 120 * time.Millisecond},
		{consts.CmdPixFmt, []byte{consts.PixFmt16Bit}, 0},
		{consts.CmdMadCtl, []byte{madctl[Rotation0]}, 0},
		{consts.CmdDisplayOn, nil, 20 * time.Millisecond},
	}
	if err := d.BeginWrite(); err != nil {
		return err
	}
	for _, s := range steps {
		if err := d.command(s.cmd, s.data...); err != nil {
			_ = d.EndWrite()
			return fmt.Errorf("ili9341: init 0x%02X: %w", s.cmd, err)
		}
		if s.delay > 0 {
			d.sleep(s.delay)
		}
	}
	if err := d.EndWrite(); err != nil {
		return err
	}

	if d.backlight != nil {
		if err := d.backlight.Out(gpio.High); err != nil {
			return fmt.Errorf("ili9341: backlight: %w", err)
		}
	}
	return nil
}

func (d *ILI9341) SetRotation(r Rotation) error {
	if r < Rotation0 || r > Rotation270 {
		return fmt.Errorf("ili9341: invalid rotation %d", r)
	}
	if err := d.BeginWrite(); err != nil {
		return err
	}
	if err := d.command(consts.CmdMadCtl, madctl[r]); err != nil {
		_ = d.EndWrite()
		return fmt.Errorf("ili9341: rotation: %w", err)
	}
	return d.EndWrite()
}

func (d *ILI9341) BeginWrite() error {
	if d.open {
		return ErrInTransaction
	}
	if d.cs != nil {
		if err := d.cs.Out(gpio.Low); err != nil {
			return fmt.Errorf("ili9341: cs: %w", err)
		}
	}
	d.open = true
	return nil
}

func (d *ILI9341) EndWrite() error {
	d.open = false
	if d.cs != nil {
		if err := d.cs.Out(gpio.High); err != nil {
			return fmt.Errorf("ili9341: cs: %w", err)
		}
	}
	return nil
}

func (d *ILI9341) SetAddrWindow(x, y, w, h int) error {
	x2 := x + w - 1
	y2 := y + h - 1
	if err := d.command(consts.CmdColAddr, byte(x>>8), byte(x), byte(x2>>8), byte(x2)); err != nil {
		return fmt.Errorf("ili9341: caset: %w", err)
	}
	if err := d.command(consts.CmdPageAddr, byte(y>>8), byte(y), byte(y2>>8), byte(y2)); err != nil {
		return fmt.Errorf("ili9341: paset: %w", err)
	}
	if err := d.command(consts.CmdMemWrite); err != nil {
		return fmt.Errorf("ili9341: ramwr: %w", err)
	}
	return nil
}

func (d *ILI9341) PushColors(pixels []uint16, swap bool) error {
	per := d.maxTx / 2
	for len(pixels) > 0 {
		n := min(per, len(pixels))
		if err := d.conn.Tx(Encode(d.buf, pixels[:n], swap), nil); err != nil {
			return fmt.Errorf("ili9341: pixel stream: %w", err)
		}
		pixels = pixels[n:]
	}
	return nil
}

// command はコマンドバイトを送り、続くパラメータをデータとして送る
func (d *ILI9341) command(cmd byte, data ...byte) error {
	if err := d.dc.Out(gpio.Low); err != nil {
		return err
	}
	if err := d.conn.Tx([]byte{cmd}, nil); err != nil {
		return err
	}
	if err := d.dc.Out(gpio.High); err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	return d.conn.Tx(data, nil)
}
