package api

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/char5742/tft-touch-bridge/internal/bridge"
	"github.com/char5742/tft-touch-bridge/internal/config"
	"github.com/char5742/tft-touch-bridge/internal/demo"
	"github.com/char5742/tft-touch-bridge/internal/engine"
	"github.com/char5742/tft-touch-bridge/internal/geometry"
	"github.com/char5742/tft-touch-bridge/internal/logger"
	"github.com/char5742/tft-touch-bridge/internal/mirror"
	"github.com/char5742/tft-touch-bridge/internal/panel"
)

var (
	ErrAlreadyRunning = errors.New("サービスは既に実行中です")
	ErrNotRunning     = errors.New("サービスは実行されていません")
)

// ServiceStatus は診断用のサービス状態
type ServiceStatus struct {
	Running   bool                 `json:"running"`
	Revision  string               `json:"revision"`
	StartedAt time.Time            `json:"started_at,omitzero"`
	Ticks     uint64               `json:"ticks"`
	Pointer   bridge.PointerStatus `json:"pointer"`
	Flush     bridge.FlushStats    `json:"flush"`
}

// chipIdentifier はチップIDを報告できるタッチコントローラ
type chipIdentifier interface {
	ChipID() byte
}

// BridgeService はパネル、タッチコントローラ、エンジンをまとめてメインループを回す
type BridgeService struct {
	cfg          *config.Config
	open         HardwareFactory
	stopChan     chan struct{}
	doneChan     chan struct{}
	running      bool
	startedAt    time.Time
	statusMutex  sync.RWMutex
	updateConfig chan *config.Config
	observers    []func(bridge.Transition)

	hw         *Hardware
	engine     *engine.Engine
	flush      *bridge.FlushAdapter
	reconciler *bridge.Reconciler
	driver     *bridge.TickDriver
}

// NewBridgeService は新しいサービスを作成する。open が nil なら実機を開く
func NewBridgeService(cfg *config.Config, open HardwareFactory) *BridgeService {
	if open == nil {
		open = OpenHardware
	}
	return &BridgeService{
		cfg:          cfg,
		open:         open,
		stopChan:     make(chan struct{}),
		updateConfig: make(chan *config.Config, 1),
	}
}

// OnTransition はポインタ状態の変化の通知先を登録する。Start より前に呼ぶこと
func (s *BridgeService) OnTransition(fn func(bridge.Transition)) {
	s.statusMutex.Lock()
	defer s.statusMutex.Unlock()
	s.observers = append(s.observers, fn)
}

// Start はハードウェアを開いて初期化し、メインループを開始する
func (s *BridgeService) Start() error {
	s.statusMutex.Lock()
	defer s.statusMutex.Unlock()

	if s.running {
		return ErrAlreadyRunning
	}
	s.takePending()

	hw, err := s.open(s.cfg)
	if err != nil {
		return err
	}
	if err := s.setup(hw); err != nil {
		_ = hw.Close()
		return err
	}

	s.hw = hw
	s.stopChan = make(chan struct{})
	s.doneChan = make(chan struct{})
	s.running = true
	s.startedAt = time.Now()

	go s.runLoop(s.driver, s.stopChan, s.doneChan)
	return nil
}

// setup はエンジンとドライバを組み立てる。順序は
// バナー、エンジン初期化、タッチ、パネル、描画バッファ、表示、入力、シーン
func (s *BridgeService) setup(hw *Hardware) error {
	cfg := s.cfg
	l := logger.L()
	l.Info("tft-touch-bridge を起動します", "revision", geometry.Revision)

	e := engine.New()
	e.Init()

	// タッチが使えなくても表示は続ける。読み取りは失敗のたびに解放扱いになる
	if err := hw.Touch.Begin(); err != nil {
		l.Warn("タッチコントローラの初期化に失敗しました", "err", err)
	} else if c, ok := hw.Touch.(chipIdentifier); ok {
		l.Info("タッチコントローラを初期化しました", "chip_id", fmt.Sprintf("0x%02X", c.ChipID()))
	}

	if err := hw.Panel.Init(); err != nil {
		return fmt.Errorf("パネルの初期化に失敗しました: %w", err)
	}
	if err := hw.Panel.SetRotation(panel.Rotation(cfg.Panel.Rotation)); err != nil {
		return fmt.Errorf("パネルの回転設定に失敗しました: %w", err)
	}

	buf := engine.NewDrawBuffer(cfg.BufferCapacity())
	if err := e.RegisterDrawBuffer(buf); err != nil {
		return err
	}

	flush := bridge.NewFlushAdapter(hw.Panel, cfg.Panel.SwapBytes)
	if err := e.RegisterDisplay(engine.DisplayDriver{
		HorRes:  cfg.Display.Width,
		VerRes:  cfg.Display.Height,
		Flusher: flush,
		DrawBuf: buf,
	}); err != nil {
		return err
	}

	rec := bridge.NewReconciler(hw.Touch, newFilter(cfg.Touch))
	for _, fn := range s.observers {
		rec.OnTransition(fn)
	}
	var reader engine.PointerReader = rec
	if cfg.Touch.Mirror {
		dev, err := mirror.Create(cfg.Touch.UinputPath, "tft-touch-bridge", cfg.Display.Width, cfg.Display.Height)
		if err != nil {
			l.Warn("仮想タッチスクリーンを作成できませんでした", "err", err)
		} else {
			hw.Closers = append(hw.Closers, dev)
			reader = mirror.New(dev).Wrap(rec)
		}
	}
	if err := e.RegisterInput(engine.InputDriver{Type: engine.InputPointer, Reader: reader}); err != nil {
		return err
	}

	e.SetScene(demo.New(cfg.Display.Width, cfg.Display.Height, demo.DefaultText))

	s.engine = e
	s.flush = flush
	s.reconciler = rec
	s.driver = bridge.NewTickDriver(s, cfg.Tick.Interval)
	l.Info("Setup done")
	return nil
}

// newFilter は平滑化係数が 0 のときは nil を返す
func newFilter(cfg config.TouchConfig) *bridge.PointFilter {
	if cfg.SmoothingFactor <= 0 {
		return nil
	}
	return bridge.NewPointFilter(cfg.SmoothingFactor, cfg.WarmUpCount)
}

func (s *BridgeService) runLoop(driver *bridge.TickDriver, stop, done chan struct{}) {
	defer func() {
		// サービス終了時にデバイスをクローズ
		if err := s.hw.Close(); err != nil {
			logger.L().Warn("デバイスのクローズに失敗しました", "err", err)
		}
		logger.L().Info("ブリッジサービスを停止しました")
		close(done)
	}()
	driver.Run(stop)
}

// Process は1ティック分の処理。設定の更新を反映してからエンジンを進める
func (s *BridgeService) Process() {
	select {
	case cfg := <-s.updateConfig:
		s.applyConfig(cfg)
	default:
	}
	s.engine.Process()
}

// applyConfig は実行中に変更できる項目だけを反映する
func (s *BridgeService) applyConfig(cfg *config.Config) {
	s.statusMutex.Lock()
	old := s.cfg
	s.cfg = cfg
	s.statusMutex.Unlock()

	if cfg.Tick.Interval != old.Tick.Interval {
		s.driver.SetInterval(cfg.Tick.Interval)
	}
	if cfg.Touch.SmoothingFactor != old.Touch.SmoothingFactor || cfg.Touch.WarmUpCount != old.Touch.WarmUpCount {
		s.reconciler.SetFilter(newFilter(cfg.Touch))
	}
	if cfg.Log.Level != old.Log.Level {
		logger.SetLevel(cfg.Log.Level)
	}
	if cfg.Panel != old.Panel || cfg.Display != old.Display || cfg.Touch.Source != old.Touch.Source {
		logger.L().Warn("パネルとタッチの設定はサービスの再起動後に反映されます")
	}
	logger.L().Info("設定を更新しました")
}

// Stop はメインループを止め、デバイスが閉じられるまで待つ
func (s *BridgeService) Stop() error {
	s.statusMutex.Lock()
	if !s.running {
		s.statusMutex.Unlock()
		return ErrNotRunning
	}
	close(s.stopChan)
	s.running = false
	done := s.doneChan
	s.statusMutex.Unlock()

	<-done

	s.statusMutex.Lock()
	s.takePending()
	s.statusMutex.Unlock()
	return nil
}

// takePending は反映されずに残った設定を取り込む。statusMutex を保持して呼ぶこと
func (s *BridgeService) takePending() {
	select {
	case cfg := <-s.updateConfig:
		s.cfg = cfg
	default:
	}
}

// UpdateConfig は設定を更新する。実行中なら次のティックで反映される
func (s *BridgeService) UpdateConfig(cfg *config.Config) {
	if !s.IsRunning() {
		s.statusMutex.Lock()
		s.cfg = cfg
		s.statusMutex.Unlock()
		return
	}
	select {
	case s.updateConfig <- cfg:
	default:
		// 未反映の設定は捨てて新しい設定を送る
		select {
		case <-s.updateConfig:
		default:
		}
		s.updateConfig <- cfg
	}
}

// IsRunning はサービスが実行中かどうかを返す
func (s *BridgeService) IsRunning() bool {
	s.statusMutex.RLock()
	defer s.statusMutex.RUnlock()
	return s.running
}

// Status は診断用の状態を返す
func (s *BridgeService) Status() ServiceStatus {
	s.statusMutex.RLock()
	defer s.statusMutex.RUnlock()
	st := ServiceStatus{Running: s.running, Revision: geometry.Revision}
	if s.driver == nil {
		return st
	}
	st.Ticks = s.driver.Ticks()
	st.Pointer = s.reconciler.Status()
	st.Flush = s.flush.Stats()
	if s.running {
		st.StartedAt = s.startedAt
	}
	return st
}
