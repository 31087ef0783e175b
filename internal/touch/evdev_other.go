//go:build !linux

package touch

import "errors"

// Evdev は Linux 以外では利用できない
type Evdev struct{}

// OpenEvdev は Linux 以外では常にエラーを返す
func OpenEvdev(path string, grab bool) (*Evdev, error) {
	return nil, errors.New("evdev: linux only")
}

func (e *Evdev) Begin() error          { return ErrNoDevice }
func (e *Evdev) Scan() (Sample, error) { return Sample{}, ErrNoDevice }
func (e *Evdev) Close() error          { return nil }
