// Package engine implements the single-writer invoice editing engine.
//
// The engine owns the focal document slot and orchestrates the
// persistence gateway, the summary index, and the edit history to
// implement the public operations: create, load, mutate, delete,
// undo/redo, save and the autosave tick.
//
// CRITICAL: the engine assumes at most one operation in flight at a
// time. There is no internal locking - the hosting runtime (the HTTP
// transport, the CLI) serializes calls into a given instance. Invariants
// hold at the start and end of every public operation, never mid-way.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/billfold/billfold/internal/blob"
	"github.com/billfold/billfold/internal/gateway"
	"github.com/billfold/billfold/internal/history"
	"github.com/billfold/billfold/internal/index"
	"github.com/billfold/billfold/internal/invoice"
	"github.com/billfold/billfold/internal/render"
)

// PlaceholderDescription is the description a freshly added line item
// carries until the user names it. Attaching a receipt to an item whose
// description is empty or still this placeholder derives a description
// from the receipt's filename.
const PlaceholderDescription = "New Item"

// autosaveDebounce is the minimum gap, in seconds, between a mutation
// and the autosave flush it triggers. Bounds staleness without writing
// the drive on every keystroke-level edit.
const autosaveDebounce = 1

// AutosaveStatus reports what an autosave tick did.
type AutosaveStatus string

const (
	AutosaveSaved     AutosaveStatus = "saved"
	AutosaveWaiting   AutosaveStatus = "waiting"
	AutosaveNoChanges AutosaveStatus = "no_changes"
)

// Engine is the single-writer invoice editing engine.
//
// Focal slot states: Empty (focal == nil), Clean (focal matches the last
// persisted version, dirty == false), Dirty (diverges from disk).
type Engine struct {
	gw      *gateway.Gateway
	index   *index.Index
	history *history.History
	clock   Clock
	itemIDs IDGenerator
	log     *slog.Logger

	settings *invoice.Settings
	focal    *invoice.Invoice
	dirty    bool
	lastSave int64
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock substitutes the time source. Tests use a deterministic clock.
func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithItemIDGenerator substitutes the line-item id generator.
func WithItemIDGenerator(g IDGenerator) Option {
	return func(e *Engine) { e.itemIDs = g }
}

// WithLogger sets the engine's logger.
func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// New creates an engine over a gateway and an index. The focal slot
// starts Empty; call Init to seed the index from the drive.
func New(gw *gateway.Gateway, ix *index.Index, opts ...Option) *Engine {
	e := &Engine{
		gw:      gw,
		index:   ix,
		history: history.New(),
		clock:   SystemClock{},
		itemIDs: UUIDv7Generator{},
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Init performs the documented startup sequence: rebuild the index from
// the drive walk, then restore settings. Unparsable entries were already
// skipped by the walk; a corrupt settings blob is logged and ignored so
// startup is always best-effort.
func (e *Engine) Init() error {
	docs := e.gw.ListAll()
	if err := e.index.Rebuild(docs); err != nil {
		return fmt.Errorf("seed index: %w", err)
	}

	settings, err := e.gw.LoadSettings()
	if err != nil {
		e.log.Warn("settings not restored", "error", err)
	} else {
		e.settings = settings
	}

	e.log.Info("engine initialized", "invoices", len(docs), "has_settings", e.settings != nil)
	return nil
}

// Create allocates a new invoice, installs it as the focal document,
// indexes its summary (total 0) and persists it immediately.
//
// The id is {unix-seconds}-{number}; the number comes from the settings
// prefix+counter, or the positional INV-%04d fallback when no settings
// are configured.
func (e *Engine) Create() (*invoice.Invoice, error) {
	now := e.clock.Now()
	number := e.allocateNumber()

	inv := &invoice.Invoice{
		ID:        fmt.Sprintf("%d-%s", now, number),
		Number:    number,
		Date:      isoDate(now),
		LineItems: []invoice.LineItem{},
		Status:    invoice.StatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if e.settings != nil {
		inv.Invoicer = e.settings.Invoicer
		inv.Invoicee = e.settings.Invoicee
		inv.PaymentInfo = e.settings.PaymentInfo
		inv.PaymentImagePath = e.settings.PaymentImagePath
	}

	e.focal = inv
	e.dirty = true
	if err := e.refreshSummary(); err != nil {
		return nil, err
	}
	if err := e.Save(); err != nil {
		return nil, err
	}

	e.log.Info("invoice created", "id", inv.ID, "number", inv.Number)
	return inv.Clone(), nil
}

// allocateNumber derives the next display number. With settings, the
// bumped counter is persisted so numbering survives restarts; a failed
// settings write only costs the bump, not the create.
func (e *Engine) allocateNumber() string {
	if e.settings != nil {
		number := fmt.Sprintf("%s%04d", e.settings.NumberPrefix, e.settings.NextNumber)
		e.settings.NextNumber++
		if err := e.gw.SaveSettings(e.settings); err != nil {
			e.log.Warn("number counter not persisted", "error", err)
		}
		return number
	}
	n, err := e.index.Len()
	if err != nil {
		n = 0
	}
	return fmt.Sprintf("INV-%04d", n+1)
}

// Load installs the invoice with the given id as the focal document.
// If the id is already focal it is returned unchanged with no re-read.
// The loaded document enters the Clean state.
func (e *Engine) Load(id string) (*invoice.Invoice, error) {
	if e.focal != nil && e.focal.ID == id {
		return e.focal.Clone(), nil
	}

	s, ok, err := e.index.Get(id)
	if err != nil {
		return nil, errIO("index lookup failed", id, err)
	}
	if !ok {
		return nil, errNotFound(id, nil)
	}

	inv, err := e.gw.Load(s)
	if err != nil {
		// Missing and unparsable blobs both surface as NotFound for a
		// load; the cause is preserved for diagnostics.
		return nil, errNotFound(id, err)
	}

	e.focal = inv
	e.dirty = false
	e.log.Info("invoice loaded", "id", id)
	return inv.Clone(), nil
}

// mutate runs one edit against the focal document: record the current
// state for undo, apply, stamp updated_at, mark dirty, refresh the
// summary. Callers must validate their targets BEFORE calling mutate so
// a failed edit never leaves a stale snapshot on the undo stack.
func (e *Engine) mutate(apply func(*invoice.Invoice)) (*invoice.Invoice, error) {
	if e.focal == nil {
		return nil, errNoFocalDocument()
	}

	e.history.RecordForUndo(invoice.Snapshot{
		Invoice:   e.focal.Clone(),
		Timestamp: e.focal.UpdatedAt,
	})

	apply(e.focal)
	e.focal.UpdatedAt = e.clock.Now()
	e.dirty = true

	if err := e.refreshSummary(); err != nil {
		return nil, err
	}
	return e.focal.Clone(), nil
}

// Update replaces the focal document's editable fields with the given
// document. The id must match the focal document - identity and
// timestamps are never editable.
func (e *Engine) Update(updates *invoice.Invoice) (*invoice.Invoice, error) {
	if e.focal == nil {
		return nil, errNoFocalDocument()
	}
	if updates.ID != e.focal.ID {
		return nil, errNotFound(updates.ID, nil)
	}
	// Name, number and date become directory components of the storage
	// path, so they must not be able to steer a save outside the drive.
	if !pathComponentOK(updates.Name) || !pathComponentOK(updates.Number) || !pathComponentOK(updates.Date) {
		return nil, &Error{Code: CodeSerialization, Message: "name, number and date must not contain path separators", ID: e.focal.ID}
	}

	created := e.focal.CreatedAt
	return e.mutate(func(inv *invoice.Invoice) {
		*inv = *updates.Clone()
		inv.CreatedAt = created
	})
}

// AddLineItem appends a blank line item (quantity 1, rate 0) and returns
// the updated document.
func (e *Engine) AddLineItem() (*invoice.Invoice, error) {
	if e.focal == nil {
		return nil, errNoFocalDocument()
	}
	id := e.itemIDs.Generate()
	return e.mutate(func(inv *invoice.Invoice) {
		inv.LineItems = append(inv.LineItems, invoice.LineItem{
			ID:          id,
			Description: PlaceholderDescription,
			Quantity:    1,
		})
	})
}

// UpdateLineItem replaces the line item with the given id. The target is
// resolved before any history is recorded, so an unknown id fails with
// ItemNotFound and mutates nothing.
func (e *Engine) UpdateLineItem(itemID string, updates invoice.LineItem) (*invoice.Invoice, error) {
	if e.focal == nil {
		return nil, errNoFocalDocument()
	}
	if e.focal.Item(itemID) == nil {
		return nil, errItemNotFound(e.focal.ID, itemID)
	}
	return e.mutate(func(inv *invoice.Invoice) {
		item := inv.Item(itemID)
		*item = updates
		item.ID = itemID
	})
}

// DeleteLineItem removes the line item with the given id. Validates the
// target before recording history, like UpdateLineItem.
func (e *Engine) DeleteLineItem(itemID string) (*invoice.Invoice, error) {
	if e.focal == nil {
		return nil, errNoFocalDocument()
	}
	if e.focal.Item(itemID) == nil {
		return nil, errItemNotFound(e.focal.ID, itemID)
	}
	return e.mutate(func(inv *invoice.Invoice) {
		kept := inv.LineItems[:0]
		for _, item := range inv.LineItems {
			if item.ID != itemID {
				kept = append(kept, item)
			}
		}
		inv.LineItems = kept
	})
}

// ReorderLineItems rearranges the line items into the order given by
// itemIDs. Ids not present in the document are ignored; items absent
// from itemIDs are dropped - the client always sends the full list.
func (e *Engine) ReorderLineItems(itemIDs []string) (*invoice.Invoice, error) {
	if e.focal == nil {
		return nil, errNoFocalDocument()
	}
	return e.mutate(func(inv *invoice.Invoice) {
		reordered := make([]invoice.LineItem, 0, len(inv.LineItems))
		for _, id := range itemIDs {
			if item := inv.Item(id); item != nil {
				reordered = append(reordered, *item)
			}
		}
		inv.LineItems = reordered
	})
}

// AttachReceipt stores attachment bytes under the focal document's
// receipts/ directory and records the stored path on the target line
// item. If the item's description is empty or still the placeholder, a
// description is derived from the filename with its extension stripped.
func (e *Engine) AttachReceipt(itemID, filename string, data []byte) (*invoice.Invoice, error) {
	if e.focal == nil {
		return nil, errNoFocalDocument()
	}
	if e.focal.Item(itemID) == nil {
		return nil, errItemNotFound(e.focal.ID, itemID)
	}

	p, err := e.gw.WriteReceipt(e.focal, filename, data)
	if err != nil {
		return nil, errIO("receipt not stored", e.focal.ID, err)
	}

	return e.mutate(func(inv *invoice.Invoice) {
		item := inv.Item(itemID)
		item.ReceiptPath = p
		if item.Description == "" || item.Description == PlaceholderDescription {
			item.Description = descriptionFromFilename(filename)
		}
	})
}

// pathComponentOK reports whether a user-supplied display field can
// serve as a single directory component of a document's storage path.
func pathComponentOK(s string) bool {
	if s == "." || s == ".." {
		return false
	}
	return !strings.ContainsAny(s, `/\`)
}

// descriptionFromFilename strips the last .-delimited segment from a
// filename. If stripping leaves nothing (".gitignore" style names), the
// full filename is used instead.
func descriptionFromFilename(filename string) string {
	if i := strings.LastIndexByte(filename, '.'); i > 0 {
		return filename[:i]
	}
	return filename
}

// Delete removes the invoice's summary from the index and best-effort
// removes its blob. A blob removal failure is surfaced in the log but
// not propagated - the index entry stays removed, accepting index/disk
// divergence until the next rebuild (documented gap, not a feature).
//
// Deleting the focal document empties the focal slot.
func (e *Engine) Delete(id string) error {
	s, ok, err := e.index.Get(id)
	if err != nil {
		return errIO("index lookup failed", id, err)
	}
	if !ok {
		return errNotFound(id, nil)
	}

	if err := e.index.Remove(id); err != nil {
		return errIO("index removal failed", id, err)
	}
	if err := e.gw.Delete(s); err != nil {
		e.log.Warn("invoice blob not removed", "id", id, "error", err)
	}

	if e.focal != nil && e.focal.ID == id {
		e.focal = nil
		e.dirty = false
	}
	e.log.Info("invoice deleted", "id", id)
	return nil
}

// Undo pops the most recent undo snapshot into the focal slot, pushing
// the current focal state onto the redo stack first. The restored
// document is Dirty and its summary is refreshed.
func (e *Engine) Undo() (*invoice.Invoice, error) {
	snap, ok := e.history.PopUndo()
	if !ok {
		return nil, errNothingToUndo()
	}

	if e.focal != nil {
		e.history.PushRedo(invoice.Snapshot{
			Invoice:   e.focal.Clone(),
			Timestamp: e.focal.UpdatedAt,
		})
	}

	e.focal = snap.Invoice
	e.dirty = true
	if err := e.refreshSummary(); err != nil {
		return nil, err
	}
	return e.focal.Clone(), nil
}

// Redo is the mirror of Undo.
func (e *Engine) Redo() (*invoice.Invoice, error) {
	snap, ok := e.history.PopRedo()
	if !ok {
		return nil, errNothingToRedo()
	}

	if e.focal != nil {
		e.history.PushUndo(invoice.Snapshot{
			Invoice:   e.focal.Clone(),
			Timestamp: e.focal.UpdatedAt,
		})
	}

	e.focal = snap.Invoice
	e.dirty = true
	if err := e.refreshSummary(); err != nil {
		return nil, err
	}
	return e.focal.Clone(), nil
}

// CanUndo reports whether an undo snapshot is available.
func (e *Engine) CanUndo() bool { return e.history.CanUndo() }

// CanRedo reports whether a redo snapshot is available.
func (e *Engine) CanRedo() bool { return e.history.CanRedo() }

// Save persists the focal document if it is Dirty; Clean or Empty slots
// are a no-op. On success the slot becomes Clean and the debounce base
// advances.
func (e *Engine) Save() error {
	if e.focal == nil || !e.dirty {
		return nil
	}
	if err := e.gw.Save(e.focal); err != nil {
		return errIO("invoice not saved", e.focal.ID, err)
	}
	e.dirty = false
	e.lastSave = e.clock.Now()
	return nil
}

// AutosaveTick is invoked periodically by an external timer. A dirty
// focal document is flushed once at least one second has passed since
// the last successful save; otherwise the tick reports what it is
// waiting on.
func (e *Engine) AutosaveTick() (AutosaveStatus, error) {
	if e.focal == nil || !e.dirty {
		return AutosaveNoChanges, nil
	}
	if e.clock.Now()-e.lastSave < autosaveDebounce {
		return AutosaveWaiting, nil
	}
	if err := e.Save(); err != nil {
		return AutosaveWaiting, err
	}
	e.log.Debug("autosave flushed", "id", e.focal.ID)
	return AutosaveSaved, nil
}

// List returns the summaries of all known invoices in a deterministic
// order.
func (e *Engine) List() ([]invoice.Summary, error) {
	out, err := e.index.List()
	if err != nil {
		return nil, errIO("index listing failed", "", err)
	}
	return out, nil
}

// Current returns a copy of the focal document, or nil if the slot is
// empty.
func (e *Engine) Current() *invoice.Invoice {
	if e.focal == nil {
		return nil
	}
	return e.focal.Clone()
}

// Dirty reports whether the focal document diverges from disk.
func (e *Engine) Dirty() bool { return e.dirty }

// Settings returns the engine-wide settings, or nil if none are
// configured.
func (e *Engine) Settings() *invoice.Settings {
	if e.settings == nil {
		return nil
	}
	s := *e.settings
	return &s
}

// UpdateSettings replaces and persists the engine-wide settings.
func (e *Engine) UpdateSettings(s invoice.Settings) error {
	// The prefix flows into every allocated number and from there into
	// storage paths.
	if !pathComponentOK(s.NumberPrefix) {
		return &Error{Code: CodeSerialization, Message: "number prefix must not contain path separators"}
	}
	if err := e.gw.SaveSettings(&s); err != nil {
		return errIO("settings not saved", "", err)
	}
	e.settings = &s
	e.log.Info("settings updated")
	return nil
}

// UploadLogo stores logo bytes at the drive root and returns the path.
func (e *Engine) UploadLogo(data []byte) (string, error) {
	p, err := e.gw.WriteRootBlob("logo.png", data)
	if err != nil {
		return "", errIO("logo not stored", "", err)
	}
	return p, nil
}

// UploadPaymentImage stores payment-image bytes at the drive root and
// returns the path.
func (e *Engine) UploadPaymentImage(data []byte) (string, error) {
	p, err := e.gw.WriteRootBlob("payment.png", data)
	if err != nil {
		return "", errIO("payment image not stored", "", err)
	}
	return p, nil
}

// ReadAttachment returns the raw bytes of a stored attachment (receipt,
// logo, payment image) by the path recorded on a document.
func (e *Engine) ReadAttachment(path string) ([]byte, error) {
	data, err := e.gw.ReadBlob(path)
	if err != nil {
		// An escaping path names nothing inside the drive, so it is the
		// same "not found" to the caller.
		if errors.Is(err, blob.ErrNotFound) || errors.Is(err, blob.ErrInvalidPath) {
			return nil, &Error{Code: CodeNotFound, Message: "attachment not found", Err: err}
		}
		return nil, errIO("attachment not readable", "", err)
	}
	return data, nil
}

// ExportHTML renders the focal document and stores the result beside its
// document blob as invoice.html, returning the stored path.
func (e *Engine) ExportHTML() (string, error) {
	if e.focal == nil {
		return "", errNoFocalDocument()
	}
	html, err := render.HTML(e.focal)
	if err != nil {
		return "", &Error{Code: CodeSerialization, Message: "render failed", ID: e.focal.ID, Err: err}
	}
	p, err := e.gw.WriteSibling(e.focal, "invoice.html", html)
	if err != nil {
		return "", errIO("export not stored", e.focal.ID, err)
	}
	e.log.Info("invoice exported", "id", e.focal.ID, "path", p)
	return p, nil
}

// Flush implements the teardown contract: persist the focal document if
// it is dirty. Safe to call on an Empty or Clean slot.
func (e *Engine) Flush() error {
	return e.Save()
}

// refreshSummary recomputes the focal document's summary and upserts it
// into the index.
func (e *Engine) refreshSummary() error {
	if err := e.index.Upsert(invoice.Summarize(e.focal)); err != nil {
		return errIO("index upsert failed", e.focal.ID, err)
	}
	return nil
}
