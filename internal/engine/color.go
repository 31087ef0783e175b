package engine

// RGB565 は8ビットずつの RGB を16ビットの色に詰める
func RGB565(r, g, b uint8) uint16 {
	return uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(b>>3)
}

// SplitRGB565 は16ビットの色を8ビットずつの RGB に戻す
func SplitRGB565(c uint16) (r, g, b uint8) {
	r = uint8(c>>11) << 3
	g = uint8(c>>5&0x3F) << 2
	b = uint8(c&0x1F) << 3
	// 下位ビットを上位ビットで埋めて 0xFF まで届かせる
	return r | r>>5, g | g>>6, b | b>>5
}
