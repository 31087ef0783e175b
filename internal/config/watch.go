package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/char5742/tft-touch-bridge/internal/logger"
)

// ReloadCallback は設定ファイルが再読み込みされたときに呼び出される
type ReloadCallback func(cfg *Config)

// Watcher は設定ファイルの変更を監視する構造体
type Watcher struct {
	path      string
	watcher   *fsnotify.Watcher
	callbacks []ReloadCallback
	mutex     sync.Mutex
	stopChan  chan struct{}
	debounce  time.Duration
	timer     *time.Timer
	isRunning bool
}

// NewWatcher は新しい Watcher を作成する
func NewWatcher(path string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		path:     filepath.Clean(path),
		watcher:  w,
		stopChan: make(chan struct{}),
		debounce: 200 * time.Millisecond,
	}, nil
}

// RegisterCallback は再読み込み時のコールバックを登録する
func (w *Watcher) RegisterCallback(cb ReloadCallback) {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	w.callbacks = append(w.callbacks, cb)
}

// Start は監視を開始する。エディタの置き換え保存に追従するためディレクトリを監視する
func (w *Watcher) Start() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	if w.isRunning {
		return nil
	}
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("設定ディレクトリの監視に失敗しました: %w", err)
	}
	w.isRunning = true
	go w.watchEvents()
	return nil
}

// Stop は監視を停止する
func (w *Watcher) Stop() {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	if !w.isRunning {
		return
	}
	close(w.stopChan)
	if w.timer != nil {
		w.timer.Stop()
	}
	w.watcher.Close()
	w.isRunning = false
}

func (w *Watcher) watchEvents() {
	for {
		select {
		case <-w.stopChan:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				w.schedule()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.L().Warn("設定ファイル監視エラー", "err", err)
		}
	}
}

// schedule は連続した書き込みをまとめて1回の再読み込みにする
func (w *Watcher) schedule() {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) reload() {
	// 移動や削除の直後は LoadConfig がデフォルトを書き戻してしまうため読み込まない
	if _, err := os.Stat(w.path); errors.Is(err, fs.ErrNotExist) {
		logger.L().Warn("設定ファイルが見つからないため再読み込みしません", "path", w.path)
		return
	}
	cfg, err := LoadConfig(w.path)
	if err != nil {
		logger.L().Warn("設定ファイルの再読み込みに失敗しました", "path", w.path, "err", err)
		return
	}
	if err := cfg.Validate(); err != nil {
		logger.L().Warn("設定ファイルの値が不正なため無視します", "path", w.path, "err", err)
		return
	}
	logger.L().Info("設定ファイルを再読み込みしました", "path", w.path)

	w.mutex.Lock()
	callbacks := append([]ReloadCallback(nil), w.callbacks...)
	w.mutex.Unlock()

	for _, cb := range callbacks {
		cb(cfg)
	}
}
