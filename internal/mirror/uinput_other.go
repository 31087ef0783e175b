//go:build !linux

package mirror

import "errors"

// Device は Linux 以外では利用できない
type Device struct{}

// Create は Linux 以外では常にエラーを返す
func Create(path, name string, width, height int) (*Device, error) {
	return nil, errors.New("uinput: linux only")
}

func (d *Device) Write(p []byte) (int, error) { return 0, errors.New("uinput: linux only") }
func (d *Device) Close() error                { return nil }
