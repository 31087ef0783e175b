//go:build linux

package touch

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/char5742/tft-touch-bridge/internal/event"
)

// カーネルドライバが FocalTech 系のコントローラを扱う場合の名前
var touchNamePattern = regexp.MustCompile(`(?i)ft6236|ft6336|ft5x06|edt-ft|touch`)

// Evdev はカーネルに登録済みのタッチスクリーンを evdev 経由で読み取る
type Evdev struct {
	path    string
	grab    bool
	fd      int // 未オープンなら -1
	grabbed bool
	state   *evdevState
	buf     []byte
}

// OpenEvdev は path のデバイスを開く。path が空なら自動検出する
func OpenEvdev(path string, grab bool) (*Evdev, error) {
	if path == "" {
		found, err := FindTouchDevice()
		if err != nil {
			return nil, err
		}
		path = found
	}
	return &Evdev{
		path:  path,
		grab:  grab,
		fd:    -1,
		state: newEvdevState(),
		buf:   make([]byte, binary.Size(event.Event{})),
	}, nil
}

// Begin はデバイスを非ブロッキングで開く。os.File はランタイムのポーラーに登録されて
// 読み取りが待たされるため、生のファイルディスクリプタを使う
func (e *Evdev) Begin() error {
	fd, err := unix.Open(e.path, unix.O_RDONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return fmt.Errorf("evdev: デバイスファイルを開くのに失敗しました: %w", err)
	}
	e.fd = fd
	if e.grab {
		// 他のプロセス（コンソールなど）にタッチが流れないよう専有する
		if err := ioctl(fd, event.EVIOCGRAB, 1); err != nil {
			_ = unix.Close(fd)
			e.fd = -1
			return fmt.Errorf("evdev: failed to grab device: %w", err)
		}
		e.grabbed = true
	}
	return nil
}

// Scan は溜まっているイベントをすべて読み、最後に確定した状態を返す
func (e *Evdev) Scan() (Sample, error) {
	if e.fd < 0 {
		return Sample{}, ErrNoDevice
	}
	for {
		n, err := unix.Read(e.fd, e.buf)
		if err != nil {
			if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR) {
				break
			}
			return e.state.committed, fmt.Errorf("evdev: read: %w", err)
		}
		if n != len(e.buf) {
			break
		}
		var ev event.Event
		if err := binary.Read(bytes.NewReader(e.buf), binary.LittleEndian, &ev); err != nil {
			return e.state.committed, fmt.Errorf("evdev: decode: %w", err)
		}
		e.state.apply(ev)
	}
	return e.state.committed, nil
}

func (e *Evdev) Close() error {
	if e.fd < 0 {
		return nil
	}
	if e.grabbed {
		_ = ioctl(e.fd, event.EVIOCGRAB, 0)
		e.grabbed = false
	}
	err := unix.Close(e.fd)
	e.fd = -1
	return err
}

// FindTouchDevice は sysfs の名前からタッチスクリーンの event デバイスを探す
func FindTouchDevice() (string, error) {
	names, _ := filepath.Glob("/sys/class/input/event*/device/name")
	for _, n := range names {
		b, err := os.ReadFile(n)
		if err != nil {
			continue
		}
		if touchNamePattern.MatchString(strings.TrimSpace(string(b))) {
			// /sys/class/input/eventN/device/name -> /dev/input/eventN
			ev := filepath.Base(filepath.Dir(filepath.Dir(n)))
			return "/dev/input/" + ev, nil
		}
	}
	return "", ErrNoDevice
}

func ioctl(fd int, req, arg uintptr) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, arg)
	if errno != 0 {
		return errno
	}
	return nil
}
