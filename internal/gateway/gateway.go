// Package gateway translates invoices into their hierarchical drive
// layout and performs all blob reads and writes. It contains no business
// logic: path computation, (de)serialization, and the startup walk.
//
// Persisted layout:
//
//	{root}/settings.json
//	{root}/{date}/{name-or-number}/document.json
//	{root}/{date}/{name-or-number}/receipts/{filename}
package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path"

	"github.com/billfold/billfold/internal/blob"
	"github.com/billfold/billfold/internal/invoice"
)

const (
	documentFile = "document.json"
	settingsFile = "settings.json"
	receiptsDir  = "receipts"
)

// ErrCorrupt wraps deserialization failures so callers can tell a
// malformed blob apart from a missing or unreadable one.
var ErrCorrupt = errors.New("document corrupt")

// Gateway persists invoices through a blob.Store.
type Gateway struct {
	store blob.Store
	log   *slog.Logger
}

// New creates a gateway over the given store.
func New(store blob.Store, log *slog.Logger) *Gateway {
	if log == nil {
		log = slog.Default()
	}
	return &Gateway{store: store, log: log}
}

// PathFor computes the storage path of an invoice:
// {date}/{name-or-number}/document.json.
//
// The path derives from display attributes, not the stable ID. Editing
// the name or date moves the document on the next save; the previous
// directory is NOT migrated or cleaned up (known layout defect, kept
// for compatibility with the persisted format).
func (g *Gateway) PathFor(inv *invoice.Invoice) string {
	return path.Join(inv.Date, inv.DirName(), documentFile)
}

// PathForSummary recomputes the same path from a summary. A summary that
// predates a rename resolves the old location; the gateway makes no
// attempt to find the document elsewhere.
func (g *Gateway) PathForSummary(s invoice.Summary) string {
	return path.Join(s.Date, s.DirName(), documentFile)
}

// Save serializes the invoice and overwrites the blob at its computed
// path. Parent directories are created idempotently by the store.
func (g *Gateway) Save(inv *invoice.Invoice) error {
	data, err := json.Marshal(inv)
	if err != nil {
		return fmt.Errorf("serialize invoice %s: %w", inv.ID, err)
	}
	p := g.PathFor(inv)
	if err := g.store.Write(p, data); err != nil {
		return fmt.Errorf("save invoice %s: %w", inv.ID, err)
	}
	g.log.Debug("invoice saved", "id", inv.ID, "path", p)
	return nil
}

// Load reads the invoice a summary points at.
// Returns blob.ErrNotFound if the blob is missing and ErrCorrupt if it
// does not parse.
func (g *Gateway) Load(s invoice.Summary) (*invoice.Invoice, error) {
	p := g.PathForSummary(s)
	data, err := g.store.Read(p)
	if err != nil {
		return nil, fmt.Errorf("load invoice %s: %w", s.ID, err)
	}
	var inv invoice.Invoice
	if err := json.Unmarshal(data, &inv); err != nil {
		return nil, fmt.Errorf("load invoice %s at %s: %w: %w", s.ID, p, ErrCorrupt, err)
	}
	return &inv, nil
}

// Delete removes the blob at the path derived from the summary on hand.
// A blob that was renamed away since the summary was refreshed is
// silently missed - the caller owns that policy.
func (g *Gateway) Delete(s invoice.Summary) error {
	p := g.PathForSummary(s)
	if err := g.store.Remove(p); err != nil {
		return fmt.Errorf("delete invoice %s: %w", s.ID, err)
	}
	g.log.Debug("invoice deleted", "id", s.ID, "path", p)
	return nil
}

// ListAll walks two directory levels under the root (date, then
// name-or-number) and parses every document.json found. Entries that
// are missing or fail to parse are skipped, never fatal: the walk
// exists to best-effort seed the index at startup.
func (g *Gateway) ListAll() []*invoice.Invoice {
	var out []*invoice.Invoice

	dates, err := g.store.List("")
	if err != nil {
		g.log.Debug("drive walk: root not listable", "error", err)
		return out
	}
	for _, date := range dates {
		if !date.IsDir {
			continue // settings.json, logo.png etc.
		}
		dirs, err := g.store.List(date.Name)
		if err != nil {
			g.log.Debug("drive walk: date dir not listable", "date", date.Name, "error", err)
			continue
		}
		for _, dir := range dirs {
			if !dir.IsDir {
				continue
			}
			p := path.Join(date.Name, dir.Name, documentFile)
			data, err := g.store.Read(p)
			if err != nil {
				continue
			}
			var inv invoice.Invoice
			if err := json.Unmarshal(data, &inv); err != nil {
				g.log.Warn("drive walk: skipping unparsable document", "path", p, "error", err)
				continue
			}
			out = append(out, &inv)
		}
	}
	return out
}

// LoadSettings reads {root}/settings.json. A missing file yields
// (nil, nil) - a fresh drive has no settings yet.
func (g *Gateway) LoadSettings() (*invoice.Settings, error) {
	data, err := g.store.Read(settingsFile)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load settings: %w", err)
	}
	var s invoice.Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("load settings: %w: %w", ErrCorrupt, err)
	}
	return &s, nil
}

// SaveSettings overwrites {root}/settings.json.
func (g *Gateway) SaveSettings(s *invoice.Settings) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("serialize settings: %w", err)
	}
	if err := g.store.Write(settingsFile, data); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// WriteReceipt stores attachment bytes under the invoice's receipts/
// subdirectory and returns the stored path. The bytes are opaque.
func (g *Gateway) WriteReceipt(inv *invoice.Invoice, filename string, data []byte) (string, error) {
	p := path.Join(inv.Date, inv.DirName(), receiptsDir, filename)
	if err := g.store.Write(p, data); err != nil {
		return "", fmt.Errorf("write receipt %s: %w", filename, err)
	}
	g.log.Debug("receipt stored", "invoice", inv.ID, "path", p)
	return p, nil
}

// WriteSibling stores a blob next to the invoice's document.json
// (e.g. an exported invoice.html) and returns the stored path.
func (g *Gateway) WriteSibling(inv *invoice.Invoice, name string, data []byte) (string, error) {
	p := path.Join(inv.Date, inv.DirName(), name)
	if err := g.store.Write(p, data); err != nil {
		return "", fmt.Errorf("write %s for invoice %s: %w", name, inv.ID, err)
	}
	return p, nil
}

// WriteRootBlob stores a drive-wide blob (logo, payment image) directly
// under the root and returns the stored path.
func (g *Gateway) WriteRootBlob(name string, data []byte) (string, error) {
	if err := g.store.Write(name, data); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return name, nil
}

// ReadBlob reads an arbitrary stored blob by path (receipt download,
// logo display). The path must have been produced by this gateway.
func (g *Gateway) ReadBlob(p string) ([]byte, error) {
	data, err := g.store.Read(p)
	if err != nil {
		return nil, err
	}
	return data, nil
}
