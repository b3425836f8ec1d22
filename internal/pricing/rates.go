package pricing

import (
	"time"

	"github.com/shopspring/decimal"
)

// BaseRate holds the hourly rate and minimum fee of a project category.
type BaseRate struct {
	HourlyRate        decimal.Decimal
	MinimumProjectFee decimal.Decimal
}

// ComplexityTier maps a feature complexity to effort and a price multiplier.
type ComplexityTier struct {
	EffortHours     int
	PriceMultiplier decimal.Decimal
}

// ContentPrices are unit prices for content production.
type ContentPrices struct {
	PerPage           decimal.Decimal
	PerBlogPost       decimal.Decimal
	PerProductListing decimal.Decimal
}

// DiscountThreshold grants Fraction off when the timeline reaches MinMonths.
type DiscountThreshold struct {
	MinMonths int
	Fraction  decimal.Decimal
}

// Fallbacks name the entries used when a request references a key the table does not have.
type Fallbacks struct {
	Category         Category
	Complexity       Complexity
	Design           DesignTier
	Hosting          HostingTier
	Maintenance      MaintenanceTier
	Urgency          Urgency
	IntegrationPrice decimal.Decimal
}

// RateTable is the pricing policy of the business.
//
// A RateTable is read-only once built: Compute only reads it, so a single
// table can be shared by any number of concurrent callers.
type RateTable struct {
	Currency              string
	BaseRates             map[Category]BaseRate
	Complexity            map[Complexity]ComplexityTier
	DesignPrices          map[DesignTier]decimal.Decimal
	Content               ContentPrices
	IntegrationPrices     map[string]decimal.Decimal
	HostingMonthly        map[HostingTier]decimal.Decimal
	MaintenanceMonthly    map[MaintenanceTier]decimal.Decimal
	UrgencyMultipliers    map[Urgency]decimal.Decimal
	LongTermDiscounts     []DiscountThreshold
	TaxRate               decimal.Decimal
	AnnualRecurringFactor decimal.Decimal
	QuoteValidity         time.Duration
	Fallbacks             Fallbacks
}

const (
	defaultCurrency      = "USD"
	defaultQuoteValidity = 30 * 24 * time.Hour
)

func d(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

// DefaultRates returns a fresh copy of the published rate table.
func DefaultRates() RateTable {
	return RateTable{
		Currency: defaultCurrency,
		BaseRates: map[Category]BaseRate{
			CategoryWeb:          {HourlyRate: d(75), MinimumProjectFee: d(2000)},
			CategoryMobile:       {HourlyRate: d(90), MinimumProjectFee: d(5000)},
			CategoryAI:           {HourlyRate: d(120), MinimumProjectFee: d(8000)},
			CategoryConsultation: {HourlyRate: d(100), MinimumProjectFee: d(500)},
			CategoryMaintenance:  {HourlyRate: d(60), MinimumProjectFee: d(1000)},
		},
		Complexity: map[Complexity]ComplexityTier{
			ComplexitySimple:      {EffortHours: 8, PriceMultiplier: d(1.0)},
			ComplexityMedium:      {EffortHours: 16, PriceMultiplier: d(1.5)},
			ComplexityComplex:     {EffortHours: 40, PriceMultiplier: d(2.0)},
			ComplexityVeryComplex: {EffortHours: 80, PriceMultiplier: d(2.5)},
		},
		DesignPrices: map[DesignTier]decimal.Decimal{
			DesignBasic:    d(500),
			DesignStandard: d(1500),
			DesignPremium:  d(3000),
			DesignCustom:   d(5000),
		},
		Content: ContentPrices{
			PerPage:           d(100),
			PerBlogPost:       d(50),
			PerProductListing: d(10),
		},
		IntegrationPrices: map[string]decimal.Decimal{
			"payment-gateway": d(800),
			"crm":             d(1000),
			"email-marketing": d(400),
			"analytics":       d(300),
			"social-media":    d(300),
			"maps":            d(250),
			"live-chat":       d(500),
			"erp":             d(2000),
			"sso":             d(600),
			"booking":         d(700),
		},
		HostingMonthly: map[HostingTier]decimal.Decimal{
			HostingNone:       d(0),
			HostingBasic:      d(20),
			HostingStandard:   d(50),
			HostingPremium:    d(150),
			HostingEnterprise: d(400),
		},
		MaintenanceMonthly: map[MaintenanceTier]decimal.Decimal{
			MaintenanceNone:     d(0),
			MaintenanceBasic:    d(100),
			MaintenanceStandard: d(300),
			MaintenancePremium:  d(800),
		},
		UrgencyMultipliers: map[Urgency]decimal.Decimal{
			UrgencyFlexible: d(0.9),
			UrgencyStandard: d(1.0),
			UrgencyUrgent:   d(1.25),
			UrgencyASAP:     d(1.5),
		},
		LongTermDiscounts: []DiscountThreshold{
			{MinMonths: 3, Fraction: d(0.05)},
			{MinMonths: 6, Fraction: d(0.10)},
		},
		TaxRate:               d(0.10),
		AnnualRecurringFactor: d(0.9),
		QuoteValidity:         defaultQuoteValidity,
		Fallbacks: Fallbacks{
			Category:         CategoryWeb,
			Complexity:       ComplexityMedium,
			Design:           DesignStandard,
			Hosting:          HostingBasic,
			Maintenance:      MaintenanceBasic,
			Urgency:          UrgencyStandard,
			IntegrationPrice: d(200),
		},
	}
}

// The lookups below resolve a key, falling back to the table's Fallbacks entry
// when the key is missing. A missing fallback entry resolves to the zero value
// (urgency to a neutral multiplier of 1) so that Compute stays total.

func (t RateTable) baseRate(c Category) (Category, BaseRate) {
	if r, ok := t.BaseRates[c]; ok {
		return c, r
	}
	return t.Fallbacks.Category, t.BaseRates[t.Fallbacks.Category]
}

func (t RateTable) complexityTier(c Complexity) (Complexity, ComplexityTier) {
	if tier, ok := t.Complexity[c]; ok {
		return c, tier
	}
	return t.Fallbacks.Complexity, t.Complexity[t.Fallbacks.Complexity]
}

func (t RateTable) designPrice(tier DesignTier) (DesignTier, decimal.Decimal) {
	if p, ok := t.DesignPrices[tier]; ok {
		return tier, p
	}
	return t.Fallbacks.Design, t.DesignPrices[t.Fallbacks.Design]
}

func (t RateTable) integrationPrice(id string) decimal.Decimal {
	if p, ok := t.IntegrationPrices[id]; ok {
		return p
	}
	return t.Fallbacks.IntegrationPrice
}

func (t RateTable) hostingMonthly(tier HostingTier) (HostingTier, decimal.Decimal) {
	if p, ok := t.HostingMonthly[tier]; ok {
		return tier, p
	}
	return t.Fallbacks.Hosting, t.HostingMonthly[t.Fallbacks.Hosting]
}

func (t RateTable) maintenanceMonthly(tier MaintenanceTier) (MaintenanceTier, decimal.Decimal) {
	if p, ok := t.MaintenanceMonthly[tier]; ok {
		return tier, p
	}
	return t.Fallbacks.Maintenance, t.MaintenanceMonthly[t.Fallbacks.Maintenance]
}

func (t RateTable) urgencyMultiplier(u Urgency) (Urgency, decimal.Decimal) {
	if m, ok := t.UrgencyMultipliers[u]; ok {
		return u, m
	}
	if m, ok := t.UrgencyMultipliers[t.Fallbacks.Urgency]; ok {
		return t.Fallbacks.Urgency, m
	}
	return t.Fallbacks.Urgency, decimal.NewFromInt(1)
}

// discountFraction returns the fraction of the last threshold reached by months.
func (t RateTable) discountFraction(months int) decimal.Decimal {
	fraction := decimal.Zero
	for _, th := range t.LongTermDiscounts {
		if months >= th.MinMonths {
			fraction = th.Fraction
		}
	}
	return fraction
}
