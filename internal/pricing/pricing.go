package pricing

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	minTimelineMonths = 1
	maxTimelineMonths = 24
)

// Feature is one requested piece of functionality.
type Feature struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Complexity  Complexity `json:"complexity"`
}

// Request describes the project to be quoted.
type Request struct {
	Category       Category        `json:"projectCategory"`
	Features       []Feature       `json:"features"`
	Design         DesignTier      `json:"designTier"`
	ContentPages   int             `json:"contentPageCount"`
	BlogPosts      int             `json:"blogPostCount"`
	Products       int             `json:"productCount"`
	Integrations   []string        `json:"integrations"`
	Hosting        HostingTier     `json:"hostingTier"`
	Maintenance    MaintenanceTier `json:"maintenanceTier"`
	Urgency        Urgency         `json:"urgency"`
	TimelineMonths int             `json:"timelineMonths"`
}

// FeatureLine is the priced line of a single feature.
type FeatureLine struct {
	Name         string          `json:"name"`
	Complexity   Complexity      `json:"complexity"`
	EffortHours  int             `json:"effortHours"`
	HourlyRate   decimal.Decimal `json:"hourlyRate"`
	LineSubtotal decimal.Decimal `json:"lineSubtotal"`
}

// DesignLine is the flat design price.
type DesignLine struct {
	Tier  DesignTier      `json:"tier"`
	Price decimal.Decimal `json:"price"`
}

// ContentLine prices pages and blog posts. ProductListingPrice is informational
// and is not part of the one-time subtotal.
type ContentLine struct {
	PageCount           int             `json:"pageCount"`
	BlogPostCount       int             `json:"blogPostCount"`
	ProductCount        int             `json:"productCount"`
	Price               decimal.Decimal `json:"price"`
	ProductListingPrice decimal.Decimal `json:"productListingPrice"`
}

// IntegrationLine is the flat price of one integration.
type IntegrationLine struct {
	Identifier string          `json:"identifier"`
	Price      decimal.Decimal `json:"price"`
}

// RecurringLine is a monthly plan with its discounted annual price.
type RecurringLine struct {
	Tier                    string          `json:"tier"`
	MonthlyPrice            decimal.Decimal `json:"monthlyPrice"`
	AnnualPriceWithDiscount decimal.Decimal `json:"annualPriceWithDiscount"`
}

// LineItems groups every priced component of a quote.
type LineItems struct {
	Features     []FeatureLine     `json:"features"`
	Design       DesignLine        `json:"design"`
	Content      ContentLine       `json:"content"`
	Integrations []IntegrationLine `json:"integrations"`
	Hosting      RecurringLine     `json:"hosting"`
	Maintenance  RecurringLine     `json:"maintenance"`
}

// Result is the itemized quote produced by Compute.
type Result struct {
	Category                 Category        `json:"projectCategory"`
	Currency                 string          `json:"currency"`
	LineItems                LineItems       `json:"lineItems"`
	SubtotalBeforeUrgency    decimal.Decimal `json:"subtotalBeforeUrgency"`
	MinimumFeeApplied        bool            `json:"minimumFeeApplied"`
	UrgencyMultiplierApplied decimal.Decimal `json:"urgencyMultiplierApplied"`
	SubtotalAfterUrgency     decimal.Decimal `json:"subtotalAfterUrgency"`
	LongTermDiscountFraction decimal.Decimal `json:"longTermDiscountFraction"`
	DiscountedAmount         decimal.Decimal `json:"discountedAmount"`
	TaxAmount                decimal.Decimal `json:"taxAmount"`
	TotalOneTimePrice        decimal.Decimal `json:"totalOneTimePrice"`
	TotalEffortHours         int             `json:"totalEffortHours"`
	TimelineMonths           int             `json:"timelineMonths"`
	TimelineDescription      string          `json:"timelineDescription"`
	QuoteExpiryDate          time.Time       `json:"quoteExpiryDate"`
}

// Compute prices req against rates as of the given instant.
//
// Compute is pure: it performs no I/O, does not modify req or rates and
// returns identical results for identical arguments. It is total over
// structurally valid input: labels missing from rates are priced with the
// table's Fallbacks, negative counts count as zero and the timeline is
// clamped into 1..24 months.
//
// Whole-unit rounding (half up) happens only for feature subtotals, the tax
// amount and the final total.
func Compute(req Request, rates RateTable, asOf time.Time) Result {
	category, base := rates.baseRate(req.Category)

	features := make([]FeatureLine, 0, len(req.Features))
	featuresTotal := decimal.Zero
	totalHours := 0
	for _, f := range req.Features {
		complexity, tier := rates.complexityTier(f.Complexity)
		hours := decimal.NewFromInt(int64(tier.EffortHours))
		subtotal := roundUnits(hours.Mul(base.HourlyRate).Mul(tier.PriceMultiplier))

		features = append(features, FeatureLine{
			Name:         f.Name,
			Complexity:   complexity,
			EffortHours:  tier.EffortHours,
			HourlyRate:   base.HourlyRate,
			LineSubtotal: subtotal,
		})
		featuresTotal = featuresTotal.Add(subtotal)
		totalHours += tier.EffortHours
	}

	designTier, designPrice := rates.designPrice(req.Design)

	pages := nonNegative(req.ContentPages)
	posts := nonNegative(req.BlogPosts)
	products := nonNegative(req.Products)
	contentPrice := decimal.NewFromInt(int64(pages)).Mul(rates.Content.PerPage).
		Add(decimal.NewFromInt(int64(posts)).Mul(rates.Content.PerBlogPost))
	productPrice := decimal.NewFromInt(int64(products)).Mul(rates.Content.PerProductListing)

	integrations := make([]IntegrationLine, 0, len(req.Integrations))
	integrationsTotal := decimal.Zero
	for _, id := range req.Integrations {
		price := rates.integrationPrice(id)
		integrations = append(integrations, IntegrationLine{Identifier: id, Price: price})
		integrationsTotal = integrationsTotal.Add(price)
	}

	subtotal := featuresTotal.Add(designPrice).Add(contentPrice).Add(integrationsTotal)
	floored := subtotal
	minimumApplied := false
	if subtotal.LessThan(base.MinimumProjectFee) {
		floored = base.MinimumProjectFee
		minimumApplied = true
	}

	// Urgency scales the floored amount, not the raw subtotal.
	_, multiplier := rates.urgencyMultiplier(req.Urgency)
	afterUrgency := floored.Mul(multiplier)

	months := clampTimeline(req.TimelineMonths)
	discount := rates.discountFraction(months)
	discounted := afterUrgency.Mul(decimal.NewFromInt(1).Sub(discount))

	tax := roundUnits(discounted.Mul(rates.TaxRate))
	total := roundUnits(discounted).Add(tax)

	hostingTier, hostingMonthly := rates.hostingMonthly(req.Hosting)
	maintenanceTier, maintenanceMonthly := rates.maintenanceMonthly(req.Maintenance)

	return Result{
		Category: category,
		Currency: rates.Currency,
		LineItems: LineItems{
			Features: features,
			Design:   DesignLine{Tier: designTier, Price: designPrice},
			Content: ContentLine{
				PageCount:           pages,
				BlogPostCount:       posts,
				ProductCount:        products,
				Price:               contentPrice,
				ProductListingPrice: productPrice,
			},
			Integrations: integrations,
			Hosting:      recurring(string(hostingTier), hostingMonthly, rates.AnnualRecurringFactor),
			Maintenance:  recurring(string(maintenanceTier), maintenanceMonthly, rates.AnnualRecurringFactor),
		},
		SubtotalBeforeUrgency:    subtotal,
		MinimumFeeApplied:        minimumApplied,
		UrgencyMultiplierApplied: multiplier,
		SubtotalAfterUrgency:     afterUrgency,
		LongTermDiscountFraction: discount,
		DiscountedAmount:         discounted,
		TaxAmount:                tax,
		TotalOneTimePrice:        total,
		TotalEffortHours:         totalHours,
		TimelineMonths:           months,
		TimelineDescription:      DescribeTimeline(months, discount),
		QuoteExpiryDate:          asOf.Add(rates.QuoteValidity),
	}
}

func recurring(tier string, monthly, annualFactor decimal.Decimal) RecurringLine {
	return RecurringLine{
		Tier:                    tier,
		MonthlyPrice:            monthly,
		AnnualPriceWithDiscount: monthly.Mul(decimal.NewFromInt(12)).Mul(annualFactor),
	}
}

// roundUnits rounds to whole currency units, half up. Amounts are never
// negative here, so decimal's half-away-from-zero rounding is half up.
func roundUnits(v decimal.Decimal) decimal.Decimal {
	return v.Round(0)
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func clampTimeline(months int) int {
	if months < minTimelineMonths {
		return minTimelineMonths
	}
	if months > maxTimelineMonths {
		return maxTimelineMonths
	}
	return months
}
