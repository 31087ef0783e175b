package engine

// DrawBuffer はエンジンが描画に使うピクセルバッファ。
// 画面全体より小さくてよく、容量を超える領域は帯に分けて描画される
type DrawBuffer struct {
	pixels []uint16
}

// NewDrawBuffer は capacity ピクセル分の描画バッファを作成する
func NewDrawBuffer(capacity int) *DrawBuffer {
	return &DrawBuffer{pixels: make([]uint16, max(capacity, 0))}
}

// Capacity はバッファのピクセル数
func (b *DrawBuffer) Capacity() int {
	return len(b.pixels)
}
