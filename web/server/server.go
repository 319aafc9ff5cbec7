package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/codingWhat/drills/logger"
)

// PageTracker is the part of web.Tracker the HTTP front needs.
type PageTracker interface {
	GetPage(ctx context.Context, url string) (string, error)
	Count(ctx context.Context, url string) (int64, error)
}

func NewEngine(tracker PageTracker, log *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	h := &handler{tracker: tracker, logger: logger.OrNop(log)}
	engine.GET("/page", h.handlePage)
	engine.GET("/count", h.handleCount)
	return engine
}

type handler struct {
	tracker PageTracker
	logger  *zap.Logger
}

type countResp struct {
	URL   string `json:"url"`
	Count int64  `json:"count"`
}

func (h *handler) handlePage(c *gin.Context) {
	url := c.Query("url")
	if url == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}

	body, err := h.tracker.GetPage(c.Request.Context(), url)
	if err != nil {
		h.logger.Warn("get page failed", zap.String("url", url), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(body))
}

func (h *handler) handleCount(c *gin.Context) {
	url := c.Query("url")
	if url == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}

	n, err := h.tracker.Count(c.Request.Context(), url)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, countResp{URL: url, Count: n})
}
