//go:build linux

package mirror

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/char5742/tft-touch-bridge/internal/event"
)

// Device は uinput で作成した仮想タッチスクリーン
type Device struct {
	file *os.File
}

// Create は width x height の論理座標を持つ仮想タッチスクリーンを作成する
func Create(path, name string, width, height int) (*Device, error) {
	f, err := os.OpenFile(path, syscall.O_WRONLY|syscall.O_NONBLOCK, 0660)
	if err != nil {
		return nil, fmt.Errorf("uinput: デバイスファイルを開くのに失敗しました: %w", err)
	}
	if err := setup(f, name, width, height); err != nil {
		_ = f.Close()
		return nil, err
	}
	return &Device{file: f}, nil
}

func setup(f *os.File, name string, width, height int) error {
	// キー入力と絶対座標のイベントを登録する
	for _, ev := range []uintptr{event.Key, event.Abs} {
		if err := ioctl(f, event.SetEvBit, ev); err != nil {
			return fmt.Errorf("uinput: イベント種別 %#x の登録に失敗しました: %w", ev, err)
		}
	}
	if err := ioctl(f, event.SetKeyBit, event.BtnTouch); err != nil {
		return fmt.Errorf("uinput: BTN_TOUCH の登録に失敗しました: %w", err)
	}
	for _, code := range []uintptr{
		event.AbsX,
		event.AbsY,
		event.AbsMtSlot,
		event.AbsMtPositionX,
		event.AbsMtPositionY,
		event.AbsMtTrackingId,
	} {
		if err := ioctl(f, event.SetAbsBit, code); err != nil {
			return fmt.Errorf("uinput: 座標軸 %#x の登録に失敗しました: %w", code, err)
		}
	}
	// 画面と一体のデバイスとして扱わせる
	if err := ioctl(f, event.SetPropBit, event.PropDirect); err != nil {
		return fmt.Errorf("uinput: プロパティの設定に失敗しました: %w", err)
	}

	dev := event.UserDev{
		ID: event.InputID{
			Bustype: event.BusVirtual,
			Vendor:  0x4711,
			Product: 0x0818,
			Version: 1,
		},
	}
	copy(dev.Name[:], name)
	dev.Absmax[event.AbsX] = int32(width - 1)
	dev.Absmax[event.AbsY] = int32(height - 1)
	dev.Absmax[event.AbsMtPositionX] = int32(width - 1)
	dev.Absmax[event.AbsMtPositionY] = int32(height - 1)
	dev.Absmax[event.AbsMtTrackingId] = 65535

	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, dev); err != nil {
		return fmt.Errorf("uinput: デバイス構造体の変換に失敗しました: %w", err)
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("uinput: デバイス構造体の書き込みに失敗しました: %w", err)
	}
	if err := ioctl(f, event.DevCreate, 0); err != nil {
		return fmt.Errorf("uinput: デバイスの作成に失敗しました: %w", err)
	}
	return nil
}

func (d *Device) Write(p []byte) (int, error) {
	return d.file.Write(p)
}

// Close は仮想デバイスを破棄してファイルを閉じる
func (d *Device) Close() error {
	_ = ioctl(d.file, event.DevDestroy, 0)
	return d.file.Close()
}

func ioctl(f *os.File, req, arg uintptr) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, f.Fd(), req, arg)
	if errno != 0 {
		return errno
	}
	return nil
}
