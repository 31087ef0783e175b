//go:build hwrev_b

package geometry

// Revision はビルド時に固定されたハードウェアリビジョン
const Revision = "B"

// ContactDump が true のリビジョンでは押下時に接触点の診断情報をすべて出力する
const ContactDump = false

// Transform はタッチセンサーの生座標を論理座標に変換する。
// リビジョンBのセンサーはパネルと同じ向きで実装されている
func Transform(native Point) Point {
	return native
}

// Inverse は Transform の逆変換
func Inverse(logical Point) Point {
	return logical
}
