// Package panel は SPI 接続の TFT パネルへの書き込み手段を提供する
package panel

import "errors"

// Rotation はパネルの表示方向 (0..3)
type Rotation int

const (
	Rotation0 Rotation = iota
	Rotation90
	Rotation180
	Rotation270
)

// ErrInTransaction はトランザクション中に BeginWrite が再度呼ばれたことを示す
var ErrInTransaction = errors.New("panel: transaction already open")

// Transport はパネルへの書き込みトランザクションを扱うインターフェース
type Transport interface {
	// Init はパネルを初期化する
	Init() error
	// SetRotation は表示方向を設定する
	SetRotation(r Rotation) error
	// BeginWrite は書き込みトランザクションを開始する
	BeginWrite() error
	// SetAddrWindow は書き込み先の矩形を設定する
	SetAddrWindow(x, y, w, h int) error
	// PushColors は RGB565 のピクセル列を送信する。swap が true なら上位バイトから送る
	PushColors(pixels []uint16, swap bool) error
	// EndWrite はトランザクションを終了する
	EndWrite() error
}

// Encode は RGB565 のピクセル列をワイヤ上のバイト列に変換して dst に書き込む。
// dst は len(pixels)*2 バイト以上必要
func Encode(dst []byte, pixels []uint16, swap bool) []byte {
	dst = dst[:len(pixels)*2]
	for i, p := range pixels {
		if swap {
			dst[2*i] = byte(p >> 8)
			dst[2*i+1] = byte(p)
		} else {
			dst[2*i] = byte(p)
			dst[2*i+1] = byte(p >> 8)
		}
	}
	return dst
}
