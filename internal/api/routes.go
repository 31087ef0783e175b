package api

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/char5742/tft-touch-bridge/internal/config"
)

// ルートの設定
func (s *Server) setupRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		// 設定関連のエンドポイント
		api.GET("/config", s.handleGetConfig)
		api.PUT("/config", s.handleUpdateConfig)
		api.POST("/config/save", s.handleSaveConfig)

		// サービス関連のエンドポイント
		api.POST("/service/start", s.handleStartService)
		api.POST("/service/stop", s.handleStopService)
		api.GET("/service/status", s.handleServiceStatus)

		// 診断
		api.GET("/status", s.handleStatus)
		api.GET("/events", s.handleEvents)

		// ヘルスチェック用エンドポイント
		api.GET("/health", s.handleHealthCheck)
	}
}

// 設定取得ハンドラ
func (s *Server) handleGetConfig(c *gin.Context) {
	c.JSON(http.StatusOK, s.GetConfig())
}

// 設定更新ハンドラ
func (s *Server) handleUpdateConfig(c *gin.Context) {
	newConfig := *s.GetConfig()
	if err := c.ShouldBindJSON(&newConfig); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("設定の解析に失敗しました"))
		return
	}
	if err := newConfig.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	s.UpdateConfig(&newConfig)
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// 設定保存ハンドラ。本文がなければ起動時の設定ファイルに保存する
func (s *Server) handleSaveConfig(c *gin.Context) {
	var saveRequest struct {
		Path string `json:"path"`
	}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&saveRequest); err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("リクエストの解析に失敗しました"))
			return
		}
	}

	configPath := saveRequest.Path
	if configPath == "" {
		configPath = s.cfgPath
	}
	if configPath == "" {
		// デフォルトパスを使用
		userConfigDir, err := config.GetDefaultConfigDir()
		if err != nil {
			c.JSON(http.StatusInternalServerError, errorResponse("デフォルト設定ディレクトリの取得に失敗しました"))
			return
		}
		configPath = filepath.Join(userConfigDir, "config.toml")
	}

	if err := config.SaveConfig(configPath, s.GetConfig()); err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("設定の保存に失敗しました: "+err.Error()))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"path":   configPath,
	})
}

// サービス起動ハンドラ
func (s *Server) handleStartService(c *gin.Context) {
	err := s.service.Start()
	switch {
	case errors.Is(err, ErrAlreadyRunning):
		c.JSON(http.StatusOK, gin.H{"status": "already_running"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, errorResponse(fmt.Sprintf("サービスの起動に失敗しました: %v", err)))
	default:
		c.JSON(http.StatusOK, gin.H{"status": "started"})
	}
}

// サービス停止ハンドラ
func (s *Server) handleStopService(c *gin.Context) {
	err := s.service.Stop()
	switch {
	case errors.Is(err, ErrNotRunning):
		c.JSON(http.StatusOK, gin.H{"status": "not_running"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, errorResponse(fmt.Sprintf("サービスの停止に失敗しました: %v", err)))
	default:
		c.JSON(http.StatusOK, gin.H{"status": "stopped"})
	}
}

// サービス状態取得ハンドラ
func (s *Server) handleServiceStatus(c *gin.Context) {
	status := "stopped"
	if s.service.IsRunning() {
		status = "running"
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}

// 診断状態ハンドラ
func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.service.Status())
}

// ヘルスチェックハンドラ
func (s *Server) handleHealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
