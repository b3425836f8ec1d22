package pricing

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAsOf = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func amountEqual(t *testing.T, name string, got decimal.Decimal, want float64) {
	t.Helper()
	if !got.Equal(decimal.NewFromFloat(want)) {
		t.Fatalf("%s = %s, want %v", name, got, want)
	}
}

func sampleRequest() Request {
	return Request{
		Category: CategoryWeb,
		Features: []Feature{
			{Name: "Contact form", Description: "Lead capture", Complexity: ComplexityMedium},
		},
		Design:         DesignStandard,
		Hosting:        HostingNone,
		Maintenance:    MaintenanceNone,
		Urgency:        UrgencyStandard,
		TimelineMonths: 2,
	}
}

func TestCompute_WorkedExample(t *testing.T) {
	result := Compute(sampleRequest(), DefaultRates(), testAsOf)

	require.Len(t, result.LineItems.Features, 1)
	line := result.LineItems.Features[0]
	assert.Equal(t, 16, line.EffortHours)
	amountEqual(t, "hourlyRate", line.HourlyRate, 75)
	amountEqual(t, "feature subtotal", line.LineSubtotal, 1800)
	amountEqual(t, "design", result.LineItems.Design.Price, 1500)
	amountEqual(t, "content", result.LineItems.Content.Price, 0)
	amountEqual(t, "subtotalBeforeUrgency", result.SubtotalBeforeUrgency, 3300)
	assert.False(t, result.MinimumFeeApplied)
	amountEqual(t, "urgency", result.UrgencyMultiplierApplied, 1)
	amountEqual(t, "discount", result.LongTermDiscountFraction, 0)
	amountEqual(t, "discounted", result.DiscountedAmount, 3300)
	amountEqual(t, "tax", result.TaxAmount, 330)
	amountEqual(t, "total", result.TotalOneTimePrice, 3630)
	assert.Equal(t, 16, result.TotalEffortHours)
	assert.Equal(t, "2 months", result.TimelineDescription)
	assert.Equal(t, "USD", result.Currency)
}

func TestCompute_IsDeterministic(t *testing.T) {
	req := sampleRequest()
	req.Integrations = []string{"crm", "analytics", "custom-widget"}
	req.Hosting = HostingPremium
	req.TimelineMonths = 7
	rates := DefaultRates()

	first, err := json.Marshal(Compute(req, rates, testAsOf))
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := json.Marshal(Compute(req, rates, testAsOf))
		require.NoError(t, err)
		assert.JSONEq(t, string(first), string(again))
	}
}

func TestCompute_MinimumFeeFloorIsScaledByUrgency(t *testing.T) {
	req := Request{
		Category:       CategoryWeb,
		Design:         DesignBasic,
		Urgency:        UrgencyUrgent,
		TimelineMonths: 1,
	}

	result := Compute(req, DefaultRates(), testAsOf)

	amountEqual(t, "subtotalBeforeUrgency", result.SubtotalBeforeUrgency, 500)
	assert.True(t, result.MinimumFeeApplied)
	amountEqual(t, "subtotalAfterUrgency", result.SubtotalAfterUrgency, 2500)
	amountEqual(t, "tax", result.TaxAmount, 250)
	amountEqual(t, "total", result.TotalOneTimePrice, 2750)
}

func TestCompute_EmptyFeatureListStillChargesMinimumFee(t *testing.T) {
	for _, category := range Categories {
		req := Request{Category: category, Design: DesignBasic, Urgency: UrgencyStandard, TimelineMonths: 1}
		result := Compute(req, DefaultRates(), testAsOf)

		assert.Empty(t, result.LineItems.Features, category)
		assert.Zero(t, result.TotalEffortHours, category)
		assert.True(t, result.TotalOneTimePrice.IsPositive(), "category %s has zero total", category)
	}
}

func TestCompute_DiscountThresholds(t *testing.T) {
	tests := []struct {
		months       int
		wantDiscount float64
		wantTax      float64
		wantTotal    float64
	}{
		{months: 2, wantDiscount: 0, wantTax: 330, wantTotal: 3630},
		// 3135 * 0.1 = 313.5 rounds half up.
		{months: 3, wantDiscount: 0.05, wantTax: 314, wantTotal: 3449},
		{months: 5, wantDiscount: 0.05, wantTax: 314, wantTotal: 3449},
		{months: 6, wantDiscount: 0.10, wantTax: 297, wantTotal: 3267},
		{months: 12, wantDiscount: 0.10, wantTax: 297, wantTotal: 3267},
	}

	for _, tc := range tests {
		req := sampleRequest()
		req.TimelineMonths = tc.months

		result := Compute(req, DefaultRates(), testAsOf)

		amountEqual(t, "discount", result.LongTermDiscountFraction, tc.wantDiscount)
		amountEqual(t, "tax", result.TaxAmount, tc.wantTax)
		amountEqual(t, "total", result.TotalOneTimePrice, tc.wantTotal)
	}
}

func TestCompute_LastQualifyingThresholdWins(t *testing.T) {
	rates := DefaultRates()
	rates.LongTermDiscounts = []DiscountThreshold{
		{MinMonths: 3, Fraction: decimal.NewFromFloat(0.05)},
		{MinMonths: 6, Fraction: decimal.NewFromFloat(0.10)},
		{MinMonths: 4, Fraction: decimal.NewFromFloat(0.02)},
	}
	req := sampleRequest()
	req.TimelineMonths = 8

	result := Compute(req, rates, testAsOf)

	amountEqual(t, "discount", result.LongTermDiscountFraction, 0.02)
}

func TestCompute_UrgencyScalesTotalByMultiplierRatio(t *testing.T) {
	base := Compute(sampleRequest(), DefaultRates(), testAsOf)

	// Multipliers chosen so that no rounding happens on either side.
	tests := map[Urgency]float64{
		UrgencyFlexible: 0.9,
		UrgencyASAP:     1.5,
	}
	for urgency, multiplier := range tests {
		req := sampleRequest()
		req.Urgency = urgency

		result := Compute(req, DefaultRates(), testAsOf)

		want := base.TotalOneTimePrice.Mul(decimal.NewFromFloat(multiplier))
		assert.True(t, result.TotalOneTimePrice.Equal(want), "%s: total %s, want %s", urgency, result.TotalOneTimePrice, want)
	}
}

func TestCompute_AddingFeaturesNeverLowersTotal(t *testing.T) {
	for _, category := range Categories {
		req := Request{Category: category, Design: DesignBasic, Urgency: UrgencyStandard, TimelineMonths: 1}
		prev := Compute(req, DefaultRates(), testAsOf).TotalOneTimePrice

		for i := 0; i < 12; i++ {
			req.Features = append(req.Features, Feature{
				Name:       "feature",
				Complexity: Complexities[i%len(Complexities)],
			})
			total := Compute(req, DefaultRates(), testAsOf).TotalOneTimePrice
			assert.True(t, total.GreaterThanOrEqual(prev), "category %s: total dropped from %s to %s", category, prev, total)
			prev = total
		}
	}
}

func TestCompute_RecurringPlansDoNotAffectOneTimeTotal(t *testing.T) {
	base := Compute(sampleRequest(), DefaultRates(), testAsOf)

	for _, hosting := range HostingTiers {
		for _, maintenance := range MaintenanceTiers {
			req := sampleRequest()
			req.Hosting = hosting
			req.Maintenance = maintenance

			result := Compute(req, DefaultRates(), testAsOf)

			assert.True(t, result.TotalOneTimePrice.Equal(base.TotalOneTimePrice), "%s/%s changed the total", hosting, maintenance)
			assert.Equal(t, string(hosting), result.LineItems.Hosting.Tier)
			assert.Equal(t, string(maintenance), result.LineItems.Maintenance.Tier)
		}
	}
}

func TestCompute_RecurringAnnualPrice(t *testing.T) {
	req := sampleRequest()
	req.Hosting = HostingStandard
	req.Maintenance = MaintenancePremium

	result := Compute(req, DefaultRates(), testAsOf)

	amountEqual(t, "hosting monthly", result.LineItems.Hosting.MonthlyPrice, 50)
	amountEqual(t, "hosting annual", result.LineItems.Hosting.AnnualPriceWithDiscount, 540)
	amountEqual(t, "maintenance monthly", result.LineItems.Maintenance.MonthlyPrice, 800)
	amountEqual(t, "maintenance annual", result.LineItems.Maintenance.AnnualPriceWithDiscount, 8640)
}

func TestCompute_ContentAndProducts(t *testing.T) {
	req := sampleRequest()
	req.ContentPages = 5
	req.BlogPosts = 10
	req.Products = 20

	result := Compute(req, DefaultRates(), testAsOf)

	amountEqual(t, "content", result.LineItems.Content.Price, 1000)
	amountEqual(t, "product listing", result.LineItems.Content.ProductListingPrice, 200)
	// Product listings are informational only.
	amountEqual(t, "subtotal", result.SubtotalBeforeUrgency, 4300)
	amountEqual(t, "total", result.TotalOneTimePrice, 4730)
}

func TestCompute_NegativeCountsAreClampedToZero(t *testing.T) {
	req := sampleRequest()
	req.ContentPages = -4
	req.BlogPosts = -1
	req.Products = -9

	result := Compute(req, DefaultRates(), testAsOf)

	assert.Zero(t, result.LineItems.Content.PageCount)
	assert.Zero(t, result.LineItems.Content.BlogPostCount)
	assert.Zero(t, result.LineItems.Content.ProductCount)
	amountEqual(t, "content", result.LineItems.Content.Price, 0)
	amountEqual(t, "total", result.TotalOneTimePrice, 3630)
}

func TestCompute_TimelineIsClamped(t *testing.T) {
	req := sampleRequest()

	req.TimelineMonths = 0
	low := Compute(req, DefaultRates(), testAsOf)
	assert.Equal(t, 1, low.TimelineMonths)
	assert.Equal(t, "1 month", low.TimelineDescription)

	req.TimelineMonths = 40
	high := Compute(req, DefaultRates(), testAsOf)
	assert.Equal(t, 24, high.TimelineMonths)
	amountEqual(t, "discount", high.LongTermDiscountFraction, 0.10)
}

func TestCompute_UnknownLabelsUseFallbacks(t *testing.T) {
	req := Request{
		Category:       Category("blockchain"),
		Features:       []Feature{{Name: "Wallet", Complexity: Complexity("epic")}},
		Design:         DesignTier("brutalist"),
		Integrations:   []string{"crm", "fax-gateway"},
		Hosting:        HostingTier("mainframe"),
		Maintenance:    MaintenanceTier("forever"),
		Urgency:        Urgency("yesterday"),
		TimelineMonths: 1,
	}

	result := Compute(req, DefaultRates(), testAsOf)

	assert.Equal(t, CategoryWeb, result.Category)
	require.Len(t, result.LineItems.Features, 1)
	assert.Equal(t, ComplexityMedium, result.LineItems.Features[0].Complexity)
	amountEqual(t, "feature", result.LineItems.Features[0].LineSubtotal, 1800)
	assert.Equal(t, DesignStandard, result.LineItems.Design.Tier)
	require.Len(t, result.LineItems.Integrations, 2)
	amountEqual(t, "crm", result.LineItems.Integrations[0].Price, 1000)
	amountEqual(t, "unknown integration", result.LineItems.Integrations[1].Price, 200)
	assert.Equal(t, string(HostingBasic), result.LineItems.Hosting.Tier)
	assert.Equal(t, string(MaintenanceBasic), result.LineItems.Maintenance.Tier)
	amountEqual(t, "urgency", result.UrgencyMultiplierApplied, 1)
	amountEqual(t, "total", result.TotalOneTimePrice, (1800+1500+1000+200)*1.1)
}

func TestCompute_EmptyRateTableDoesNotPanic(t *testing.T) {
	req := sampleRequest()
	req.Integrations = []string{"crm"}

	assert.NotPanics(t, func() {
		result := Compute(req, RateTable{}, testAsOf)
		amountEqual(t, "total", result.TotalOneTimePrice, 0)
		amountEqual(t, "urgency", result.UrgencyMultiplierApplied, 1)
	})
}

func TestCompute_PreservesInputOrder(t *testing.T) {
	req := sampleRequest()
	req.Features = []Feature{
		{Name: "Zeta", Complexity: ComplexityComplex},
		{Name: "Alpha", Complexity: ComplexitySimple},
		{Name: "Mid", Complexity: ComplexityVeryComplex},
	}
	req.Integrations = []string{"sso", "analytics", "booking"}

	result := Compute(req, DefaultRates(), testAsOf)

	names := make([]string, 0, len(result.LineItems.Features))
	for _, f := range result.LineItems.Features {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"Zeta", "Alpha", "Mid"}, names)

	ids := make([]string, 0, len(result.LineItems.Integrations))
	for _, i := range result.LineItems.Integrations {
		ids = append(ids, i.Identifier)
	}
	assert.Equal(t, []string{"sso", "analytics", "booking"}, ids)
	assert.Equal(t, 40+8+80, result.TotalEffortHours)
}

func TestCompute_DoesNotMutateInputs(t *testing.T) {
	req := sampleRequest()
	req.Integrations = []string{"crm", "maps"}
	req.ContentPages = -2
	before, err := json.Marshal(req)
	require.NoError(t, err)

	rates := DefaultRates()
	Compute(req, rates, testAsOf)

	after, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))
	assert.Len(t, rates.BaseRates, len(Categories))
	amountEqual(t, "web hourly", rates.BaseRates[CategoryWeb].HourlyRate, 75)
}

func TestCompute_QuoteExpiresThirtyDaysAfterAsOf(t *testing.T) {
	result := Compute(sampleRequest(), DefaultRates(), testAsOf)

	assert.Equal(t, testAsOf.Add(30*24*time.Hour), result.QuoteExpiryDate)
}

func TestCompute_ConcurrentCallsShareOneTable(t *testing.T) {
	rates := DefaultRates()
	req := sampleRequest()
	req.Integrations = []string{"erp", "crm"}
	want, err := json.Marshal(Compute(req, rates, testAsOf))
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([][]byte, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = json.Marshal(Compute(req, rates, testAsOf))
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.JSONEq(t, string(want), string(got))
	}
}
