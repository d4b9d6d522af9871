// Package api exposes each engine operation as a named HTTP route with
// JSON payloads. Attachment uploads and downloads carry raw bytes.
//
// The engine core assumes a serialized caller, so every handler takes
// the server's mutex before touching it - the transport is the hosting
// runtime that provides the single-writer guarantee.
package api

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/billfold/billfold/internal/engine"
)

// Server serializes HTTP access to one engine instance.
type Server struct {
	engine *engine.Engine
	mu     sync.Mutex
	log    *slog.Logger
}

// NewServer wraps an engine for HTTP exposure.
func NewServer(e *engine.Engine, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{engine: e, log: log}
}

// Router builds the gin router with the full operation mapping. The
// mapping is static - one route per engine operation, nothing dynamic.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group("/api")
	{
		api.GET("/invoices", s.listInvoices)
		api.POST("/invoices", s.createInvoice)
		api.GET("/invoices/:id", s.getInvoice)
		api.PUT("/invoices/:id", s.updateInvoice)
		api.DELETE("/invoices/:id", s.deleteInvoice)

		api.POST("/line-items", s.addLineItem)
		api.PUT("/line-items/:itemID", s.updateLineItem)
		api.DELETE("/line-items/:itemID", s.deleteLineItem)
		api.POST("/line-items/reorder", s.reorderLineItems)
		api.POST("/line-items/:itemID/receipt", s.attachReceipt)

		api.POST("/undo", s.undo)
		api.POST("/redo", s.redo)
		api.GET("/history", s.historyState)

		api.POST("/save", s.save)
		api.POST("/export", s.exportHTML)

		api.GET("/settings", s.getSettings)
		api.PUT("/settings", s.updateSettings)
		api.POST("/logo", s.uploadLogo)
		api.POST("/payment-image", s.uploadPaymentImage)
		api.GET("/attachments/*path", s.downloadAttachment)
	}

	return r
}

// AutosaveLoop drives the engine's debounced autosave until ctx is
// cancelled, then flushes any remaining dirty state.
func (s *Server) AutosaveLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.mu.Lock()
			if err := s.engine.Flush(); err != nil {
				s.log.Error("final flush failed", "error", err)
			}
			s.mu.Unlock()
			return
		case <-ticker.C:
			s.mu.Lock()
			status, err := s.engine.AutosaveTick()
			s.mu.Unlock()
			if err != nil {
				s.log.Error("autosave failed", "error", err)
			} else if status == engine.AutosaveSaved {
				s.log.Debug("autosave", "status", status)
			}
		}
	}
}
