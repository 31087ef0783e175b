// Package sim は端末上でパネルとタッチコントローラを模擬する。
// 1セルに上下2ピクセルを "▀" で描き、マウスのボタン1をタッチとして扱う
package sim

import (
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/char5742/tft-touch-bridge/internal/engine"
	"github.com/char5742/tft-touch-bridge/internal/geometry"
	"github.com/char5742/tft-touch-bridge/internal/logger"
	"github.com/char5742/tft-touch-bridge/internal/panel"
	"github.com/char5742/tft-touch-bridge/internal/touch"
)

// window は SetAddrWindow で指定された書き込み先と書き込み位置
type window struct {
	x, y, w, h int
	pos        int
}

// Screen は tcell の画面で panel.Transport と touch.Controller を実装する
type Screen struct {
	screen   tcell.Screen
	width    int
	height   int
	fb       []uint16
	win      window
	open     bool
	rotation panel.Rotation

	mutex sync.Mutex
	down  bool
	point geometry.Point // 論理座標

	quit     chan struct{}
	quitOnce sync.Once
}

// New は端末の画面を初期化して Screen を作成する
func New() (*Screen, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("端末の画面を作成できませんでした: %w", err)
	}
	return NewWithScreen(s)
}

// NewWithScreen は与えられた tcell.Screen を初期化して使う
func NewWithScreen(s tcell.Screen) (*Screen, error) {
	if err := s.Init(); err != nil {
		return nil, fmt.Errorf("端末の初期化に失敗しました: %w", err)
	}
	s.SetStyle(tcell.StyleDefault)
	s.EnableMouse()
	s.HideCursor()

	sc := &Screen{
		screen: s,
		width:  geometry.ScreenWidth,
		height: geometry.ScreenHeight,
		fb:     make([]uint16, geometry.ScreenWidth*geometry.ScreenHeight),
		quit:   make(chan struct{}),
	}
	go sc.pollEvents()
	return sc, nil
}

// Quit は Esc か Ctrl+C が押されると閉じる
func (s *Screen) Quit() <-chan struct{} {
	return s.quit
}

// Close は端末を元の状態に戻す
func (s *Screen) Close() error {
	s.screen.Fini()
	return nil
}

func (s *Screen) pollEvents() {
	for {
		ev := s.screen.PollEvent()
		if ev == nil {
			return
		}
		switch ev := ev.(type) {
		case *tcell.EventResize:
			// フレームバッファは描画側のゴルーチンだけが触るため、ここでは再表示のみ
			s.screen.Sync()
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
				s.quitOnce.Do(func() { close(s.quit) })
			}
		case *tcell.EventMouse:
			s.handleMouse(ev)
		}
	}
}

func (s *Screen) handleMouse(ev *tcell.EventMouse) {
	cols, rows := s.screen.Size()
	if cols <= 0 || rows <= 0 {
		return
	}
	x, y := ev.Position()
	// セルの中心に対応するピクセル
	p := geometry.Point{
		X: min((2*x+1)*s.width/(2*cols), s.width-1),
		Y: min((2*y+1)*s.height/(2*rows), s.height-1),
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.down = ev.Buttons()&tcell.Button1 != 0
	if s.down {
		s.point = p
	}
}

// Panel transport

func (s *Screen) Init() error {
	s.screen.Clear()
	s.screen.Show()
	return nil
}

func (s *Screen) SetRotation(r panel.Rotation) error {
	if r < panel.Rotation0 || r > panel.Rotation270 {
		return fmt.Errorf("sim: invalid rotation %d", r)
	}
	s.rotation = r
	return nil
}

func (s *Screen) BeginWrite() error {
	if s.open {
		return panel.ErrInTransaction
	}
	s.open = true
	return nil
}

func (s *Screen) SetAddrWindow(x, y, w, h int) error {
	if x < 0 || y < 0 || w <= 0 || h <= 0 || x+w > s.width || y+h > s.height {
		return fmt.Errorf("sim: window (%d,%d) %dx%d out of range", x, y, w, h)
	}
	s.win = window{x: x, y: y, w: w, h: h}
	return nil
}

// PushColors は窓の中に行優先で書き込む。端末は色をそのまま受け取るため swap は無視する
func (s *Screen) PushColors(pixels []uint16, swap bool) error {
	for _, c := range pixels {
		if s.win.pos >= s.win.w*s.win.h {
			return fmt.Errorf("sim: %d pixels overflow the window", len(pixels))
		}
		x := s.win.x + s.win.pos%s.win.w
		y := s.win.y + s.win.pos/s.win.w
		s.fb[y*s.width+x] = c
		s.win.pos++
	}
	return nil
}

func (s *Screen) EndWrite() error {
	s.open = false
	s.draw()
	return nil
}

// Pixel はフレームバッファの色を返す
func (s *Screen) Pixel(x, y int) uint16 {
	return s.fb[y*s.width+x]
}

// draw はフレームバッファを端末のセルに縮小して表示する
func (s *Screen) draw() {
	cols, rows := s.screen.Size()
	if cols <= 0 || rows <= 0 {
		return
	}
	for cy := 0; cy < rows; cy++ {
		top := (2 * cy) * s.height / (2 * rows)
		bottom := (2*cy + 1) * s.height / (2 * rows)
		for cx := 0; cx < cols; cx++ {
			px := cx * s.width / cols
			style := tcell.StyleDefault.
				Foreground(toColor(s.fb[top*s.width+px])).
				Background(toColor(s.fb[bottom*s.width+px]))
			s.screen.SetContent(cx, cy, '▀', nil, style)
		}
	}
	s.screen.Show()
	logger.L().Debug("sim frame", "window", s.win)
}

func toColor(c uint16) tcell.Color {
	r, g, b := engine.SplitRGB565(c)
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

// Touch controller

func (s *Screen) Begin() error {
	return nil
}

// Scan はマウスの状態をセンサーの生座標に戻して返す
func (s *Screen) Scan() (touch.Sample, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	var sample touch.Sample
	if !s.down {
		return sample, nil
	}
	n := geometry.Inverse(s.point)
	sample.Count = 1
	sample.Contacts[0] = touch.Contact{X: n.X, Y: n.Y, Weight: 1}
	return sample, nil
}
