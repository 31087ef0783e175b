// Package geometry はパネル座標系と論理座標系の型および変換を定義する
package geometry

import "fmt"

// 論理解像度（横置き）
const (
	ScreenWidth  = 320
	ScreenHeight = 240
)

// NativeWidthBound はタッチセンサーの長辺方向の座標上限（排他的）
const NativeWidthBound = 320

// Point は2次元の整数座標
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Area は両端を含む矩形領域。X1<=X2, Y1<=Y2 を満たすこと
type Area struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// FullScreen は画面全体を表す領域を返す
func FullScreen() Area {
	return Area{X1: 0, Y1: 0, X2: ScreenWidth - 1, Y2: ScreenHeight - 1}
}

func (a Area) Width() int  { return a.X2 - a.X1 + 1 }
func (a Area) Height() int { return a.Y2 - a.Y1 + 1 }

// Size は領域のピクセル数
func (a Area) Size() int { return a.Width() * a.Height() }

// Valid は座標の順序が正しいかを返す
func (a Area) Valid() bool { return a.X1 <= a.X2 && a.Y1 <= a.Y2 }

// Within は領域が [0,w)x[0,h) に収まるかを返す
func (a Area) Within(w, h int) bool {
	return a.Valid() && a.X1 >= 0 && a.Y1 >= 0 && a.X2 < w && a.Y2 < h
}

// Intersect は2つの領域の共通部分を返す。重ならない場合 ok=false
func (a Area) Intersect(b Area) (r Area, ok bool) {
	r = Area{
		X1: max(a.X1, b.X1),
		Y1: max(a.Y1, b.Y1),
		X2: min(a.X2, b.X2),
		Y2: min(a.Y2, b.Y2),
	}
	return r, r.Valid()
}

// Union は両方を含む最小の領域を返す
func (a Area) Union(b Area) Area {
	return Area{
		X1: min(a.X1, b.X1),
		Y1: min(a.Y1, b.Y1),
		X2: max(a.X2, b.X2),
		Y2: max(a.Y2, b.Y2),
	}
}

// Contains は点が領域内にあるかを返す
func (a Area) Contains(p Point) bool {
	return p.X >= a.X1 && p.X <= a.X2 && p.Y >= a.Y1 && p.Y <= a.Y2
}

func (a Area) String() string {
	return fmt.Sprintf("(%d,%d)-(%d,%d)", a.X1, a.Y1, a.X2, a.Y2)
}
