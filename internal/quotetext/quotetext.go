package quotetext

import (
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ahmedhassan142/Portfoliopersonla-website-sub000/internal/pricing"
)

const dateLayout = "2006-01-02"

// Client identifies who the quote is for. All fields are optional.
type Client struct {
	Name    string
	Email   string
	Company string
}

// Document is everything printed on an exported quote.
type Document struct {
	Reference    string
	IssuedAt     time.Time
	Client       Client
	ContactEmail string
	Result       pricing.Result
}

// Render writes doc as plain text. Output depends only on doc.
func Render(w io.Writer, doc Document) error {
	p := &printer{w: w}
	res := doc.Result
	money := func(v decimal.Decimal) string {
		return v.StringFixed(2) + " " + res.Currency
	}

	p.line("Project quote")
	if doc.Reference != "" {
		p.line("Reference: %s", doc.Reference)
	}
	if !doc.IssuedAt.IsZero() {
		p.line("Date: %s", doc.IssuedAt.UTC().Format(dateLayout))
	}
	p.line("Valid until: %s", res.QuoteExpiryDate.UTC().Format(dateLayout))

	if doc.Client != (Client{}) {
		p.line("")
		p.line("Client:")
		p.optional("  Name: %s", doc.Client.Name)
		p.optional("  Email: %s", doc.Client.Email)
		p.optional("  Company: %s", doc.Client.Company)
	}

	p.line("")
	p.line("Project:")
	p.line("  Category: %s", res.Category)
	p.line("  Timeline: %s", res.TimelineDescription)
	p.line("  Estimated effort: %d hours", res.TotalEffortHours)

	items := res.LineItems
	p.line("")
	p.line("Features:")
	if len(items.Features) == 0 {
		p.line("  (none)")
	}
	for _, f := range items.Features {
		p.line("  - %s (%s, %dh at %s/h): %s", f.Name, f.Complexity, f.EffortHours, f.HourlyRate.StringFixed(2), money(f.LineSubtotal))
	}
	p.line("Design (%s): %s", items.Design.Tier, money(items.Design.Price))
	p.line("Content (%d pages, %d blog posts): %s", items.Content.PageCount, items.Content.BlogPostCount, money(items.Content.Price))
	if items.Content.ProductCount > 0 {
		p.line("Product listings (%d, not included in total): %s", items.Content.ProductCount, money(items.Content.ProductListingPrice))
	}
	if len(items.Integrations) > 0 {
		p.line("Integrations:")
		for _, in := range items.Integrations {
			p.line("  - %s: %s", in.Identifier, money(in.Price))
		}
	}

	p.line("")
	p.line("Totals:")
	p.line("  Subtotal: %s", money(res.SubtotalBeforeUrgency))
	if res.MinimumFeeApplied {
		p.line("  Minimum project fee applied")
	}
	if !res.UrgencyMultiplierApplied.Equal(decimal.NewFromInt(1)) {
		p.line("  Urgency multiplier: x%s", res.UrgencyMultiplierApplied.String())
	}
	if res.LongTermDiscountFraction.IsPositive() {
		p.line("  Long-term discount: %s%%", res.LongTermDiscountFraction.Mul(decimal.NewFromInt(100)).String())
	}
	p.line("  Tax: %s", money(res.TaxAmount))
	p.line("  Total: %s", money(res.TotalOneTimePrice))

	p.line("")
	p.line("Recurring (billed separately):")
	p.recurring("Hosting", items.Hosting, money)
	p.recurring("Maintenance", items.Maintenance, money)

	if doc.ContactEmail != "" {
		p.line("")
		p.line("Questions: %s", doc.ContactEmail)
	}

	return p.err
}

// printer keeps the first write error and skips every write after it.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) line(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *printer) optional(format, value string) {
	if value != "" {
		p.line(format, value)
	}
}

func (p *printer) recurring(label string, line pricing.RecurringLine, money func(decimal.Decimal) string) {
	if line.MonthlyPrice.IsZero() {
		p.line("  %s (%s): none", label, line.Tier)
		return
	}
	p.line("  %s (%s): %s/month, %s/year with annual billing", label, line.Tier, money(line.MonthlyPrice), money(line.AnnualPriceWithDiscount))
}
