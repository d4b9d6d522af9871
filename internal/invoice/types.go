package invoice

// Status is the lifecycle state of an invoice.
//
// Draft invoices are being edited, Sent invoices have been delivered to
// the recipient, Paid and Overdue track settlement. The engine never
// changes status on its own - it is an editable field like any other.
type Status string

const (
	StatusDraft   Status = "Draft"
	StatusSent    Status = "Sent"
	StatusPaid    Status = "Paid"
	StatusOverdue Status = "Overdue"
)

// Valid reports whether s is one of the known lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusPaid, StatusOverdue:
		return true
	}
	return false
}

// ContactInfo identifies one party on an invoice (issuer or recipient).
type ContactInfo struct {
	Name     string `json:"name"`
	Company  string `json:"company,omitempty"`
	Address  string `json:"address"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	LogoPath string `json:"logo_path,omitempty"`
}

// LineItem is a single billable row on an invoice.
//
// IDs are time-sortable (UUIDv7) and unique within the owning invoice.
// ReceiptPath, when set, points at a sibling blob under the invoice's
// receipts/ directory; the engine never interprets its bytes.
type LineItem struct {
	ID              string  `json:"id"`
	Description     string  `json:"description"`
	Quantity        float64 `json:"quantity"`
	Rate            float64 `json:"rate"`
	DiscountPercent float64 `json:"discount_percent"`
	ReceiptPath     string  `json:"receipt_path,omitempty"`
}

// Invoice is the full editable document.
//
// ID is opaque and stable ({unix-seconds}-{number}, assigned at creation).
// Number and Name are display attributes; together with Date they also
// determine where the document lives on disk, so editing them moves the
// document's storage location on the next save.
type Invoice struct {
	ID               string      `json:"id"`
	Number           string      `json:"number"`
	Name             string      `json:"name,omitempty"`
	Date             string      `json:"date"` // ISO date, YYYY-MM-DD
	DueDate          string      `json:"due_date,omitempty"`
	Invoicer         ContactInfo `json:"invoicer"`
	Invoicee         ContactInfo `json:"invoicee"`
	LineItems        []LineItem  `json:"line_items"`
	DiscountPercent  float64     `json:"discount_percent"`
	TaxPercent       float64     `json:"tax_percent"`
	Notes            string      `json:"notes,omitempty"`
	PaymentInfo      string      `json:"payment_info,omitempty"`
	PaymentImagePath string      `json:"payment_image_path,omitempty"`
	Status           Status      `json:"status"`
	CreatedAt        int64       `json:"created_at"` // seconds since epoch
	UpdatedAt        int64       `json:"updated_at"`
}

// Clone returns a deep copy of the invoice.
//
// Snapshots handed to the edit history and documents handed back out of
// it must never share the LineItems slice with the focal document, or a
// later edit would retroactively corrupt history.
func (inv *Invoice) Clone() *Invoice {
	c := *inv
	if inv.LineItems != nil {
		c.LineItems = make([]LineItem, len(inv.LineItems))
		copy(c.LineItems, inv.LineItems)
	}
	return &c
}

// Item returns a pointer to the line item with the given id, or nil.
func (inv *Invoice) Item(itemID string) *LineItem {
	for i := range inv.LineItems {
		if inv.LineItems[i].ID == itemID {
			return &inv.LineItems[i]
		}
	}
	return nil
}

// DirName is the human-meaningful directory an invoice is stored under:
// the display name when non-empty, otherwise the invoice number.
//
// This is deliberately NOT a function of the stable ID - renaming an
// invoice changes its path. See the persisted-layout contract.
func (inv *Invoice) DirName() string {
	if inv.Name != "" {
		return inv.Name
	}
	return inv.Number
}

// Summary is the derived, read-only projection of an invoice used for
// listings. Total is always computed by Total(); nothing else may supply it.
type Summary struct {
	ID     string  `json:"id"`
	Number string  `json:"number"`
	Name   string  `json:"name,omitempty"`
	Date   string  `json:"date"`
	Total  float64 `json:"total"`
	Status Status  `json:"status"`
}

// DirName mirrors Invoice.DirName so a stale summary still resolves the
// same path it was derived from.
func (s Summary) DirName() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Number
}

// Summarize projects an invoice into its Summary, computing the total.
func Summarize(inv *Invoice) Summary {
	return Summary{
		ID:     inv.ID,
		Number: inv.Number,
		Name:   inv.Name,
		Date:   inv.Date,
		Total:  Total(inv),
		Status: inv.Status,
	}
}

// Snapshot is an immutable historical copy of an invoice plus the moment
// it was captured, the unit stored on the undo and redo stacks.
type Snapshot struct {
	Invoice   *Invoice `json:"invoice"`
	Timestamp int64    `json:"timestamp"`
}

// Settings is the engine-wide configuration persisted at
// {root}/settings.json: default parties for new invoices and the
// display-number allocation scheme.
type Settings struct {
	Invoicer         ContactInfo `json:"invoicer"`
	Invoicee         ContactInfo `json:"invoicee"`
	PaymentInfo      string      `json:"payment_info,omitempty"`
	PaymentImagePath string      `json:"payment_image_path,omitempty"`
	NumberPrefix     string      `json:"invoice_number_prefix"`
	NextNumber       uint32      `json:"next_invoice_number"`
}
