package touch

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"

	"github.com/char5742/tft-touch-bridge/internal/consts"
)

// txConn は I2C デバイスのうち使用する部分
type txConn interface {
	Tx(w, r []byte) error
}

type outPin interface {
	Out(l gpio.Level) error
}

// FT6336U は I2C 接続の静電容量式タッチコントローラ
type FT6336U struct {
	dev    txConn
	reset  outPin // nil 可
	buf    [consts.ScanLen]byte
	chipID byte
	sleep  func(time.Duration)
}

// NewFT6336U はレジスタアクセス用の接続からコントローラを作成する
func NewFT6336U(dev txConn, reset outPin) *FT6336U {
	return &FT6336U{dev: dev, reset: reset, sleep: time.Sleep}
}

// ChipID は Begin で読み取ったチップIDを返す
func (f *FT6336U) ChipID() byte {
	return f.chipID
}

func (f *FT6336U) Begin() error {
	if f.reset != nil {
		if err := f.reset.Out(gpio.Low); err != nil {
			return fmt.Errorf("ft6336u: reset: %w", err)
		}
		f.sleep(10 * time.Millisecond)
		if err := f.reset.Out(gpio.High); err != nil {
			return fmt.Errorf("ft6336u: reset: %w", err)
		}
		f.sleep(300 * time.Millisecond)
	}

	// 通常動作モードにする
	if err := f.dev.Tx([]byte{consts.RegDevMode, 0x00}, nil); err != nil {
		return fmt.Errorf("ft6336u: device mode: %w", err)
	}
	id := make([]byte, 1)
	if err := f.dev.Tx([]byte{consts.RegChipID}, id); err != nil {
		return fmt.Errorf("ft6336u: chip id: %w", err)
	}
	f.chipID = id[0]
	return nil
}

// Scan は TD_STATUS から2点目までをまとめて読み取る
func (f *FT6336U) Scan() (Sample, error) {
	var s Sample
	if err := f.dev.Tx([]byte{consts.RegTDStatus}, f.buf[:]); err != nil {
		return s, fmt.Errorf("ft6336u: scan: %w", err)
	}
	return decodeScan(f.buf[:]), nil
}

// decodeScan は 0x02..0x0E のレジスタ列を Sample に変換する
func decodeScan(b []byte) Sample {
	var s Sample
	s.Count = int(b[0] & 0x0F)
	// 電源投入直後などは 0x0F が返るため無効として扱う
	if s.Count > consts.MaxContacts {
		s.Count = 0
		return s
	}
	for i := 0; i < consts.MaxContacts; i++ {
		r := b[1+i*consts.TouchRegLen:]
		s.Contacts[i] = Contact{
			X:      int(r[0]&0x0F)<<8 | int(r[1]),
			Y:      int(r[2]&0x0F)<<8 | int(r[3]),
			Event:  r[0] >> 6,
			ID:     r[2] >> 4,
			Weight: r[4],
			Misc:   r[5] >> 4,
		}
	}
	return s
}
