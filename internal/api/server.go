// Package api は診断用の HTTP API とブリッジサービスを提供する
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/char5742/tft-touch-bridge/internal/bridge"
	"github.com/char5742/tft-touch-bridge/internal/config"
	"github.com/char5742/tft-touch-bridge/internal/logger"
)

// Server はAPIサーバーを表す構造体
type Server struct {
	server  *http.Server
	router  *gin.Engine
	cfg     *config.Config
	cfgPath string
	mutex   sync.RWMutex
	port    int
	service *BridgeService
	hub     *Hub
}

// NewServer は新しいAPIサーバーを作成する。cfgPath は保存先の既定値
func NewServer(cfg *config.Config, cfgPath string, port int, service *BridgeService) *Server {
	s := &Server{
		cfg:     cfg,
		cfgPath: cfgPath,
		port:    port,
		service: service,
		hub:     NewHub(),
	}
	service.OnTransition(func(t bridge.Transition) {
		s.hub.Broadcast("transition", t)
	})
	s.initRouter()
	return s
}

// Router はルーターを返す
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) initRouter() {
	gin.SetMode(gin.ReleaseMode)
	s.router = gin.New()
	s.router.Use(requestLogger())
	s.router.Use(gin.Recovery())
	s.router.Use(corsMiddleware())
	s.setupRoutes(s.router)
}

// Start はAPIサーバーを開始する。Stop で止めた場合は nil を返す
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: s.router,
	}

	logger.L().Info(fmt.Sprintf("APIサーバーを開始します: http://localhost:%d", s.port))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop はAPIサーバーを停止する
func (s *Server) Stop() error {
	s.hub.Close()
	if s.server == nil {
		return nil
	}
	logger.L().Info("APIサーバーを停止します...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// GetConfig は現在の設定を返す
func (s *Server) GetConfig() *config.Config {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.cfg
}

// UpdateConfig は設定を更新し、サービスにも反映する
func (s *Server) UpdateConfig(cfg *config.Config) {
	s.mutex.Lock()
	s.cfg = cfg
	s.mutex.Unlock()
	s.service.UpdateConfig(cfg)
}

// errorResponse はエラーレスポンスの本文
func errorResponse(message string) gin.H {
	return gin.H{"error": message}
}
