package bridge

import "github.com/char5742/tft-touch-bridge/internal/geometry"

// PointFilter は押下中の座標のぶれを指数移動平均で抑える
type PointFilter struct {
	smoothingFactor float64 // 0.0-1.0の範囲。1.0に近いほど滑らかになりますが、遅延が大きくなります
	lastX           float64
	lastY           float64
	warmUpCount     int
	currentCount    int
	initialized     bool
}

// NewPointFilter は新しい PointFilter を作成する
func NewPointFilter(smoothingFactor float64, warmUpCount int) *PointFilter {
	return &PointFilter{
		smoothingFactor: smoothingFactor,
		warmUpCount:     warmUpCount,
	}
}

// Filter は生の論理座標に平滑化を適用する
func (pf *PointFilter) Filter(p geometry.Point) geometry.Point {
	// 初回またはウォームアップ中はそのまま通す
	if !pf.initialized || pf.currentCount < pf.warmUpCount {
		pf.currentCount++
		pf.lastX = float64(p.X)
		pf.lastY = float64(p.Y)
		pf.initialized = true
		return p
	}

	f := pf.smoothingFactor
	pf.lastX = float64(p.X)*(1.0-f) + pf.lastX*f
	pf.lastY = float64(p.Y)*(1.0-f) + pf.lastY*f

	return geometry.Point{X: int(pf.lastX + 0.5), Y: int(pf.lastY + 0.5)}
}

// Reset はフィルターの状態をリセットする
func (pf *PointFilter) Reset() {
	pf.lastX = 0
	pf.lastY = 0
	pf.currentCount = 0
	pf.initialized = false
}
