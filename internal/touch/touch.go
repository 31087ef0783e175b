// Package touch はタッチコントローラから生の接触情報を読み取る
package touch

import (
	"errors"

	"github.com/char5742/tft-touch-bridge/internal/consts"
)

// ErrNoDevice はタッチデバイスが見つからないことを示す
var ErrNoDevice = errors.New("touch: no device")

// Contact は1点分の接触情報。Event/ID/Weight/Misc は診断用
type Contact struct {
	X      int   `json:"x"`
	Y      int   `json:"y"`
	Event  uint8 `json:"event"`
	ID     uint8 `json:"id"`
	Weight uint8 `json:"weight"`
	Misc   uint8 `json:"misc"`
}

// Sample は1回のスキャン結果
type Sample struct {
	Count    int                         `json:"count"`
	Contacts [consts.MaxContacts]Contact `json:"contacts"`
}

// Controller はタッチコントローラを表すインターフェース
type Controller interface {
	// Begin はコントローラを初期化する
	Begin() error
	// Scan は現在の接触状態を読み取る
	Scan() (Sample, error)
}
