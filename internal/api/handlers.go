package api

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/billfold/billfold/internal/engine"
	"github.com/billfold/billfold/internal/invoice"
)

// Every response is a Result envelope: {"ok": value} on success,
// {"error": message} on failure, with the HTTP status derived from the
// engine error code.

func (s *Server) ok(c *gin.Context, value any) {
	c.JSON(http.StatusOK, gin.H{"ok": value})
}

func (s *Server) fail(c *gin.Context, err error) {
	c.JSON(statusOf(err), gin.H{"error": err.Error()})
}

func statusOf(err error) int {
	switch engine.CodeOf(err) {
	case engine.CodeNotFound, engine.CodeItemNotFound:
		return http.StatusNotFound
	case engine.CodeNoFocalDocument, engine.CodeNothingToUndo, engine.CodeNothingToRedo:
		return http.StatusConflict
	case engine.CodeSerialization:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) listInvoices(c *gin.Context) {
	s.mu.Lock()
	summaries, err := s.engine.List()
	s.mu.Unlock()
	if err != nil {
		s.fail(c, err)
		return
	}
	if summaries == nil {
		summaries = []invoice.Summary{}
	}
	s.ok(c, summaries)
}

func (s *Server) createInvoice(c *gin.Context) {
	s.mu.Lock()
	inv, err := s.engine.Create()
	s.mu.Unlock()
	if err != nil {
		s.fail(c, err)
		return
	}
	s.ok(c, inv)
}

func (s *Server) getInvoice(c *gin.Context) {
	s.mu.Lock()
	inv, err := s.engine.Load(c.Param("id"))
	s.mu.Unlock()
	if err != nil {
		s.fail(c, err)
		return
	}
	s.ok(c, inv)
}

func (s *Server) updateInvoice(c *gin.Context) {
	var updates invoice.Invoice
	if err := c.ShouldBindJSON(&updates); err != nil {
		s.fail(c, &engine.Error{Code: engine.CodeSerialization, Message: "invalid invoice payload", Err: err})
		return
	}
	updates.ID = c.Param("id")

	s.mu.Lock()
	inv, err := s.engine.Update(&updates)
	s.mu.Unlock()
	if err != nil {
		s.fail(c, err)
		return
	}
	s.ok(c, inv)
}

func (s *Server) deleteInvoice(c *gin.Context) {
	s.mu.Lock()
	err := s.engine.Delete(c.Param("id"))
	s.mu.Unlock()
	if err != nil {
		s.fail(c, err)
		return
	}
	s.ok(c, "invoice deleted")
}

func (s *Server) addLineItem(c *gin.Context) {
	s.mu.Lock()
	inv, err := s.engine.AddLineItem()
	s.mu.Unlock()
	if err != nil {
		s.fail(c, err)
		return
	}
	s.ok(c, inv)
}

func (s *Server) updateLineItem(c *gin.Context) {
	var updates invoice.LineItem
	if err := c.ShouldBindJSON(&updates); err != nil {
		s.fail(c, &engine.Error{Code: engine.CodeSerialization, Message: "invalid line item payload", Err: err})
		return
	}

	s.mu.Lock()
	inv, err := s.engine.UpdateLineItem(c.Param("itemID"), updates)
	s.mu.Unlock()
	if err != nil {
		s.fail(c, err)
		return
	}
	s.ok(c, inv)
}

func (s *Server) deleteLineItem(c *gin.Context) {
	s.mu.Lock()
	inv, err := s.engine.DeleteLineItem(c.Param("itemID"))
	s.mu.Unlock()
	if err != nil {
		s.fail(c, err)
		return
	}
	s.ok(c, inv)
}

func (s *Server) reorderLineItems(c *gin.Context) {
	var itemIDs []string
	if err := c.ShouldBindJSON(&itemIDs); err != nil {
		s.fail(c, &engine.Error{Code: engine.CodeSerialization, Message: "invalid item id list", Err: err})
		return
	}
	if len(lo.Uniq(itemIDs)) != len(itemIDs) {
		s.fail(c, &engine.Error{Code: engine.CodeSerialization, Message: "duplicate item ids in reorder"})
		return
	}

	s.mu.Lock()
	inv, err := s.engine.ReorderLineItems(itemIDs)
	s.mu.Unlock()
	if err != nil {
		s.fail(c, err)
		return
	}
	s.ok(c, inv)
}

// attachReceipt carries the attachment as the raw request body; the
// filename comes from the query string.
func (s *Server) attachReceipt(c *gin.Context) {
	filename := c.Query("filename")
	if filename == "" || filename == "." || filename == ".." || strings.ContainsAny(filename, `/\`) {
		s.fail(c, &engine.Error{Code: engine.CodeSerialization, Message: "filename must be a plain file name"})
		return
	}
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		s.fail(c, &engine.Error{Code: engine.CodeIO, Message: "read request body", Err: err})
		return
	}

	s.mu.Lock()
	inv, err := s.engine.AttachReceipt(c.Param("itemID"), filename, data)
	s.mu.Unlock()
	if err != nil {
		s.fail(c, err)
		return
	}
	s.ok(c, inv)
}

func (s *Server) undo(c *gin.Context) {
	s.mu.Lock()
	inv, err := s.engine.Undo()
	s.mu.Unlock()
	if err != nil {
		s.fail(c, err)
		return
	}
	s.ok(c, inv)
}

func (s *Server) redo(c *gin.Context) {
	s.mu.Lock()
	inv, err := s.engine.Redo()
	s.mu.Unlock()
	if err != nil {
		s.fail(c, err)
		return
	}
	s.ok(c, inv)
}

func (s *Server) historyState(c *gin.Context) {
	s.mu.Lock()
	state := gin.H{
		"can_undo": s.engine.CanUndo(),
		"can_redo": s.engine.CanRedo(),
		"dirty":    s.engine.Dirty(),
	}
	s.mu.Unlock()
	s.ok(c, state)
}

func (s *Server) save(c *gin.Context) {
	s.mu.Lock()
	err := s.engine.Save()
	s.mu.Unlock()
	if err != nil {
		s.fail(c, err)
		return
	}
	s.ok(c, "saved")
}

func (s *Server) exportHTML(c *gin.Context) {
	s.mu.Lock()
	path, err := s.engine.ExportHTML()
	s.mu.Unlock()
	if err != nil {
		s.fail(c, err)
		return
	}
	s.ok(c, path)
}

func (s *Server) getSettings(c *gin.Context) {
	s.mu.Lock()
	settings := s.engine.Settings()
	s.mu.Unlock()
	s.ok(c, settings)
}

func (s *Server) updateSettings(c *gin.Context) {
	var settings invoice.Settings
	if err := c.ShouldBindJSON(&settings); err != nil {
		s.fail(c, &engine.Error{Code: engine.CodeSerialization, Message: "invalid settings payload", Err: err})
		return
	}

	s.mu.Lock()
	err := s.engine.UpdateSettings(settings)
	s.mu.Unlock()
	if err != nil {
		s.fail(c, err)
		return
	}
	s.ok(c, "settings updated")
}

func (s *Server) uploadLogo(c *gin.Context) {
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		s.fail(c, &engine.Error{Code: engine.CodeIO, Message: "read request body", Err: err})
		return
	}

	s.mu.Lock()
	path, err := s.engine.UploadLogo(data)
	s.mu.Unlock()
	if err != nil {
		s.fail(c, err)
		return
	}
	s.ok(c, path)
}

func (s *Server) uploadPaymentImage(c *gin.Context) {
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		s.fail(c, &engine.Error{Code: engine.CodeIO, Message: "read request body", Err: err})
		return
	}

	s.mu.Lock()
	path, err := s.engine.UploadPaymentImage(data)
	s.mu.Unlock()
	if err != nil {
		s.fail(c, err)
		return
	}
	s.ok(c, path)
}

// downloadAttachment streams stored attachment bytes back raw.
func (s *Server) downloadAttachment(c *gin.Context) {
	path := strings.TrimPrefix(c.Param("path"), "/")

	s.mu.Lock()
	data, err := s.engine.ReadAttachment(path)
	s.mu.Unlock()
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "application/octet-stream", data)
}
