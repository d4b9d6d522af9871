// Package render produces the HTML view of an invoice.
//
// All amounts come from invoice.ComputeTotals - the renderer never
// re-derives the total formula.
package render

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/billfold/billfold/internal/invoice"
)

//go:embed invoice.html.tmpl
var invoiceTmpl string

var tmpl = template.Must(
	template.New("invoice").Funcs(template.FuncMap{
		"amount": Amount,
		"qty":    quantity,
	}).Parse(invoiceTmpl),
)

var printer = message.NewPrinter(language.English)

// Amount formats a monetary value with grouping and two decimals
// ("1,234.50").
func Amount(v float64) string {
	return printer.Sprintf("%v", number.Decimal(v,
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2),
	))
}

// quantity renders a quantity without trailing zero noise.
func quantity(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%g", v)
}

// view is the template's data: the document plus its computed amounts.
type view struct {
	*invoice.Invoice
	Totals invoice.Totals
	Lines  []lineView
}

type lineView struct {
	invoice.LineItem
	Amount float64
}

// HTML renders the invoice document to a full HTML page.
func HTML(inv *invoice.Invoice) ([]byte, error) {
	v := view{
		Invoice: inv,
		Totals:  invoice.ComputeTotals(inv),
		Lines:   make([]lineView, 0, len(inv.LineItems)),
	}
	for _, item := range inv.LineItems {
		v.Lines = append(v.Lines, lineView{
			LineItem: item,
			Amount:   invoice.LineAmount(item),
		})
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, v); err != nil {
		return nil, fmt.Errorf("render invoice %s: %w", inv.ID, err)
	}
	return buf.Bytes(), nil
}
