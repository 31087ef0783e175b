package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/pkg/browser"

	"github.com/char5742/tft-touch-bridge/internal/api"
	"github.com/char5742/tft-touch-bridge/internal/config"
	"github.com/char5742/tft-touch-bridge/internal/logger"
	"github.com/char5742/tft-touch-bridge/internal/sim"
)

func main() {
	// コマンドライン引数の解析
	useApi := flag.Bool("api", false, "診断用のAPIサーバーを起動します")
	configPath := flag.String("config", "", "設定ファイルのパス (指定しない場合はデフォルトパスを使用)")
	port := flag.Int("port", 0, "APIサーバーのポート番号 (0 なら設定ファイルの値)")
	useSim := flag.Bool("sim", false, "実機の代わりに端末上のシミュレータを使います")
	openBrowser := flag.Bool("open", false, "起動後にブラウザで状態ページを開きます (-api と併用)")
	logPath := flag.String("log", "", "ログの出力先ファイル (-sim では指定がなければ設定ディレクトリに出力)")
	flag.Parse()

	// 設定ファイルパスの決定
	cfgPath := *configPath
	if cfgPath == "" {
		if configDir, err := config.GetDefaultConfigDir(); err == nil {
			cfgPath = filepath.Join(configDir, "config.toml")
		}
	}

	// 設定ファイルの読み込み
	cfg := config.DefaultConfig()
	if cfgPath != "" {
		loaded, err := config.LoadConfig(cfgPath)
		switch {
		case err != nil:
			fmt.Printf("設定ファイルの読み込みに失敗しました: %v\nデフォルト設定を使用します\n", err)
		case loaded.Validate() != nil:
			fmt.Printf("設定ファイルの値が不正です: %v\nデフォルト設定を使用します\n", loaded.Validate())
		default:
			cfg = loaded
			fmt.Printf("設定ファイルを読み込みました: %s\n", cfgPath)
		}
	}

	logOut, err := openLog(*logPath, *useSim, cfgPath)
	if err != nil {
		fmt.Printf("ログファイルを開けませんでした: %v\n", err)
		os.Exit(1)
	}
	defer logOut.Close()
	logger.Init(logOut, cfg.Log.Level)

	// ハードウェアの選択
	factory := api.OpenHardware
	var screen *sim.Screen
	if *useSim {
		screen, err = sim.New()
		if err != nil {
			fmt.Printf("シミュレータの起動に失敗しました: %v\n", err)
			os.Exit(1)
		}
		defer screen.Close()
		// 端末はプロセス終了まで使い続けるため、サービスの停止では閉じない
		factory = func(*config.Config) (*api.Hardware, error) {
			return &api.Hardware{Panel: screen, Touch: screen}, nil
		}
	}

	service := api.NewBridgeService(cfg, factory)

	var server *api.Server
	if *useApi {
		apiPort := *port
		if apiPort == 0 {
			apiPort = cfg.API.Port
		}
		server = api.NewServer(cfg, cfgPath, apiPort, service)
		go func() {
			if err := server.Start(); err != nil {
				logger.L().Error("APIサーバーの起動に失敗しました", "err", err)
			}
		}()
		if *openBrowser {
			url := fmt.Sprintf("http://localhost:%d/api/status", apiPort)
			browser.Stdout, browser.Stderr = io.Discard, io.Discard
			if err := browser.OpenURL(url); err != nil {
				logger.L().Warn("ブラウザを開けませんでした", "url", url, "err", err)
			}
		}
	}

	// 設定ファイルの変更を監視
	if cfgPath != "" {
		watcher, err := config.NewWatcher(cfgPath)
		if err == nil {
			watcher.RegisterCallback(func(c *config.Config) {
				if server != nil {
					server.UpdateConfig(c)
					return
				}
				service.UpdateConfig(c)
			})
			if err := watcher.Start(); err != nil {
				logger.L().Warn("設定ファイルを監視できません", "err", err)
			}
			defer watcher.Stop()
		}
	}

	if err := service.Start(); err != nil {
		logger.L().Error("ブリッジサービスの起動に失敗しました", "err", err)
		if server == nil {
			fmt.Printf("ブリッジサービスの起動に失敗しました: %v\n", err)
			return
		}
		// APIモードでは /api/service/start から再試行できる
	}

	waitForShutdown(screen)
	logger.L().Info("シャットダウンします...")

	if service.IsRunning() {
		_ = service.Stop()
	}
	if server != nil {
		_ = server.Stop()
	}
}

// waitForShutdown はシグナルかシミュレータの終了キーを待つ
func waitForShutdown(screen *sim.Screen) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	var quit <-chan struct{}
	if screen != nil {
		quit = screen.Quit()
	}
	select {
	case <-sigChan:
	case <-quit:
	}
}

// openLog はログの出力先を決める。シミュレータは端末を使うため標準エラーには出さない
func openLog(path string, useSim bool, cfgPath string) (io.WriteCloser, error) {
	if path == "" && useSim && cfgPath != "" {
		path = filepath.Join(filepath.Dir(cfgPath), "bridge.log")
	}
	if path == "" {
		return nopWriteCloser{os.Stderr}, nil
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
