package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/char5742/tft-touch-bridge/internal/geometry"
)

// Config はアプリケーション全体の設定を表す構造体
type Config struct {
	Display DisplayConfig `toml:"display" json:"display"`
	Panel   PanelConfig   `toml:"panel" json:"panel"`
	Touch   TouchConfig   `toml:"touch" json:"touch"`
	Tick    TickConfig    `toml:"tick" json:"tick"`
	Log     LogConfig     `toml:"log" json:"log"`
	API     APIConfig     `toml:"api" json:"api"`
}

// DisplayConfig は論理画面と描画バッファの設定
type DisplayConfig struct {
	Width  int `toml:"width" json:"width"`
	Height int `toml:"height" json:"height"`
	// BufferDivisor は描画バッファを画面の何分の一にするか
	BufferDivisor int `toml:"buffer_divisor" json:"buffer_divisor"`
}

// PanelConfig は SPI パネルの設定
type PanelConfig struct {
	SPIPort      string `toml:"spi_port" json:"spi_port"`
	MaxHz        int64  `toml:"max_hz" json:"max_hz"`
	DCPin        string `toml:"dc_pin" json:"dc_pin"`
	ResetPin     string `toml:"reset_pin" json:"reset_pin"`
	CSPin        string `toml:"cs_pin" json:"cs_pin"`
	BacklightPin string `toml:"backlight_pin" json:"backlight_pin"`
	Rotation     int    `toml:"rotation" json:"rotation"`
	SwapBytes    bool   `toml:"swap_bytes" json:"swap_bytes"`
}

// TouchConfig はタッチコントローラの設定
type TouchConfig struct {
	// Source は "ft6336u" または "evdev"
	Source    string `toml:"source" json:"source"`
	I2CBus    string `toml:"i2c_bus" json:"i2c_bus"`
	Addr      uint16 `toml:"addr" json:"addr"`
	ResetPin  string `toml:"reset_pin" json:"reset_pin"`
	EvdevPath string `toml:"evdev_path" json:"evdev_path"`
	EvdevGrab bool   `toml:"evdev_grab" json:"evdev_grab"`
	// SmoothingFactor は押下中の座標平滑化係数。0 で無効
	SmoothingFactor float64 `toml:"smoothing_factor" json:"smoothing_factor"`
	WarmUpCount     int     `toml:"warm_up_count" json:"warm_up_count"`
	// Mirror はポインタ状態を uinput の仮想タッチスクリーンにも流すかどうか
	Mirror     bool   `toml:"mirror" json:"mirror"`
	UinputPath string `toml:"uinput_path" json:"uinput_path"`
}

// TickConfig はメインループの設定
type TickConfig struct {
	Interval time.Duration `toml:"interval" json:"interval"`
}

// LogConfig はログの設定
type LogConfig struct {
	Level string `toml:"level" json:"level"`
}

// APIConfig は診断APIの設定
type APIConfig struct {
	Port int `toml:"port" json:"port"`
}

// DefaultConfig はデフォルト設定を返す
func DefaultConfig() *Config {
	return &Config{
		Display: DisplayConfig{
			Width:         320,
			Height:        240,
			BufferDivisor: 10,
		},
		Panel: PanelConfig{
			SPIPort:   "",
			MaxHz:     40_000_000,
			DCPin:     "GPIO25",
			ResetPin:  "GPIO24",
			Rotation:  3, // 横向き・反転
			SwapBytes: true,
		},
		Touch: TouchConfig{
			Source:      "ft6336u",
			I2CBus:      "1",
			Addr:        0x38,
			ResetPin:    "GPIO27",
			EvdevGrab:   true,
			WarmUpCount: 3,
			UinputPath:  "/dev/uinput",
		},
		Tick: TickConfig{
			Interval: 5 * time.Millisecond,
		},
		Log: LogConfig{
			Level: "info",
		},
		API: APIConfig{
			Port: 8080,
		},
	}
}

// GetDefaultConfigDir はデフォルトの設定ディレクトリを返す
func GetDefaultConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "tft-touch-bridge"), nil
}

// LoadConfig は設定ファイルから設定を読み込む
func LoadConfig(configPath string) (*Config, error) {
	// デフォルト設定を用意
	config := DefaultConfig()

	// ファイルが存在しない場合はデフォルト設定を保存して返す
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := SaveConfig(configPath, config); err != nil {
			return config, err
		}
		return config, nil
	}

	// 設定ファイルの読み込み
	if _, err := toml.DecodeFile(configPath, config); err != nil {
		return config, err
	}

	return config, nil
}

// SaveConfig は設定をTOMLファイルに保存する
func SaveConfig(configPath string, config *Config) error {
	// 設定ディレクトリの作成
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}

	f, err := os.Create(configPath)
	if err != nil {
		return err
	}
	defer f.Close()

	// TOML形式でエンコードして書き込み
	encoder := toml.NewEncoder(f)
	return encoder.Encode(config)
}

// BufferCapacity は描画バッファのピクセル数を返す
func (c *Config) BufferCapacity() int {
	div := c.Display.BufferDivisor
	if div <= 0 {
		div = 1
	}
	return c.Display.Width * c.Display.Height / div
}

// Validate は値の範囲を確認する
func (c *Config) Validate() error {
	var errs []error
	// 座標変換とパネルの窓はビルド時の解像度に固定されている
	if c.Display.Width != geometry.ScreenWidth || c.Display.Height != geometry.ScreenHeight {
		errs = append(errs, fmt.Errorf("display: 解像度は %dx%d のみ対応しています: %dx%d",
			geometry.ScreenWidth, geometry.ScreenHeight, c.Display.Width, c.Display.Height))
	}
	if c.Display.BufferDivisor < 1 || c.Display.BufferDivisor > c.Display.Height {
		errs = append(errs, fmt.Errorf("display: buffer_divisor は 1 から画面の高さまでです: %d", c.Display.BufferDivisor))
	}
	// 横向き (320x240) になるのは 1 と 3 だけ
	if c.Panel.Rotation != 1 && c.Panel.Rotation != 3 {
		errs = append(errs, fmt.Errorf("panel: rotation は 1 か 3 です: %d", c.Panel.Rotation))
	}
	switch c.Touch.Source {
	case "", "ft6336u", "evdev":
	default:
		errs = append(errs, fmt.Errorf("touch: 不明なソースです: %q", c.Touch.Source))
	}
	if c.Touch.SmoothingFactor < 0 || c.Touch.SmoothingFactor >= 1 {
		errs = append(errs, fmt.Errorf("touch: smoothing_factor は 0 以上 1 未満です: %g", c.Touch.SmoothingFactor))
	}
	if c.Tick.Interval <= 0 {
		errs = append(errs, fmt.Errorf("tick: interval は正の値です: %s", c.Tick.Interval))
	}
	return errors.Join(errs...)
}
