//go:build !hwrev_b

package geometry

// Revision はビルド時に固定されたハードウェアリビジョン
const Revision = "A"

// ContactDump が true のリビジョンでは押下時に接触点の診断情報をすべて出力する
const ContactDump = true

// Transform はタッチセンサーの生座標を論理座標に変換する。
// センサーは回転したパネルに対して軸が入れ替わり、片側が反転して実装されている。
// 範囲外の入力はクランプせずそのまま通す
func Transform(native Point) Point {
	return Point{
		X: NativeWidthBound - 1 - native.Y,
		Y: native.X,
	}
}

// Inverse は Transform の逆変換
func Inverse(logical Point) Point {
	return Point{
		X: logical.Y,
		Y: NativeWidthBound - 1 - logical.X,
	}
}
