package main

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ahmedhassan142/Portfoliopersonla-website-sub000/internal/pricing"
	"github.com/ahmedhassan142/Portfoliopersonla-website-sub000/internal/store"
)

// The types below are the JSON shapes of the API. Engine and store types are
// mapped one way into them; amounts become JSON numbers.

type featureLineDTO struct {
	Name         string  `json:"name"`
	Complexity   string  `json:"complexity"`
	EffortHours  int     `json:"effortHours"`
	HourlyRate   float64 `json:"hourlyRate"`
	LineSubtotal float64 `json:"lineSubtotal"`
}

type priceLineDTO struct {
	Tier  string  `json:"tier"`
	Price float64 `json:"price"`
}

type contentLineDTO struct {
	PageCount           int     `json:"pageCount"`
	BlogPostCount       int     `json:"blogPostCount"`
	ProductCount        int     `json:"productCount"`
	Price               float64 `json:"price"`
	ProductListingPrice float64 `json:"productListingPrice"`
}

type integrationLineDTO struct {
	Identifier string  `json:"identifier"`
	Price      float64 `json:"price"`
}

type recurringLineDTO struct {
	Tier                    string  `json:"tier"`
	MonthlyPrice            float64 `json:"monthlyPrice"`
	AnnualPriceWithDiscount float64 `json:"annualPriceWithDiscount"`
}

type lineItemsDTO struct {
	Features     []featureLineDTO     `json:"features"`
	Design       priceLineDTO         `json:"design"`
	Content      contentLineDTO       `json:"content"`
	Integrations []integrationLineDTO `json:"integrations"`
	Hosting      recurringLineDTO     `json:"hosting"`
	Maintenance  recurringLineDTO     `json:"maintenance"`
}

type quoteDTO struct {
	ProjectCategory          string       `json:"projectCategory"`
	Currency                 string       `json:"currency"`
	LineItems                lineItemsDTO `json:"lineItems"`
	SubtotalBeforeUrgency    float64      `json:"subtotalBeforeUrgency"`
	MinimumFeeApplied        bool         `json:"minimumFeeApplied"`
	UrgencyMultiplierApplied float64      `json:"urgencyMultiplierApplied"`
	SubtotalAfterUrgency     float64      `json:"subtotalAfterUrgency"`
	LongTermDiscountFraction float64      `json:"longTermDiscountFraction"`
	DiscountedAmount         float64      `json:"discountedAmount"`
	TaxAmount                float64      `json:"taxAmount"`
	TotalOneTimePrice        float64      `json:"totalOneTimePrice"`
	TotalEffortHours         int          `json:"totalEffortHours"`
	TimelineMonths           int          `json:"timelineMonths"`
	TimelineDescription      string       `json:"timelineDescription"`
	QuoteExpiryDate          time.Time    `json:"quoteExpiryDate"`
}

type clientDTO struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company,omitempty"`
	Message string `json:"message,omitempty"`
}

type recordDTO struct {
	ID        string          `json:"id"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	Status    string          `json:"status"`
	Client    clientDTO       `json:"client"`
	Request   pricing.Request `json:"request"`
	Quote     quoteDTO        `json:"quote"`
}

type summaryDTO struct {
	ID                string    `json:"id"`
	CreatedAt         time.Time `json:"createdAt"`
	ClientName        string    `json:"clientName"`
	ClientEmail       string    `json:"clientEmail"`
	Company           string    `json:"company,omitempty"`
	ProjectCategory   string    `json:"projectCategory"`
	Status            string    `json:"status"`
	TotalOneTimePrice int64     `json:"totalOneTimePrice"`
	Currency          string    `json:"currency"`
	ExpiresAt         time.Time `json:"expiresAt"`
}

type statsDTO struct {
	TotalQuotes         int            `json:"totalQuotes"`
	ByStatus            map[string]int `json:"byStatus"`
	ByCategory          map[string]int `json:"byCategory"`
	TotalOneTimeValue   int64          `json:"totalOneTimeValue"`
	AverageOneTimeValue float64        `json:"averageOneTimeValue"`
	LastThirtyDays      int            `json:"lastThirtyDays"`
}

type baseRateDTO struct {
	Category          string  `json:"category"`
	HourlyRate        float64 `json:"hourlyRate"`
	MinimumProjectFee float64 `json:"minimumProjectFee"`
}

type complexityDTO struct {
	Complexity      string  `json:"complexity"`
	EffortHours     int     `json:"effortHours"`
	PriceMultiplier float64 `json:"priceMultiplier"`
}

type discountDTO struct {
	MinMonths int     `json:"minMonths"`
	Fraction  float64 `json:"fraction"`
}

type ratesDTO struct {
	Currency               string             `json:"currency"`
	BaseRates              []baseRateDTO      `json:"baseRates"`
	Complexity             []complexityDTO    `json:"complexity"`
	DesignPrices           map[string]float64 `json:"designPrices"`
	PerPage                float64            `json:"perPage"`
	PerBlogPost            float64            `json:"perBlogPost"`
	PerProductListing      float64            `json:"perProductListing"`
	IntegrationPrices      map[string]float64 `json:"integrationPrices"`
	FallbackIntegrationFee float64            `json:"fallbackIntegrationPrice"`
	HostingMonthly         map[string]float64 `json:"hostingMonthly"`
	MaintenanceMonthly     map[string]float64 `json:"maintenanceMonthly"`
	UrgencyMultipliers     map[string]float64 `json:"urgencyMultipliers"`
	LongTermDiscounts      []discountDTO      `json:"longTermDiscounts"`
	TaxRate                float64            `json:"taxRate"`
	AnnualRecurringFactor  float64            `json:"annualRecurringFactor"`
	QuoteValidityDays      int                `json:"quoteValidityDays"`
}

func num(v decimal.Decimal) float64 {
	return v.InexactFloat64()
}

func mapQuote(res pricing.Result) quoteDTO {
	items := res.LineItems

	features := make([]featureLineDTO, 0, len(items.Features))
	for _, f := range items.Features {
		features = append(features, featureLineDTO{
			Name:         f.Name,
			Complexity:   string(f.Complexity),
			EffortHours:  f.EffortHours,
			HourlyRate:   num(f.HourlyRate),
			LineSubtotal: num(f.LineSubtotal),
		})
	}

	integrations := make([]integrationLineDTO, 0, len(items.Integrations))
	for _, in := range items.Integrations {
		integrations = append(integrations, integrationLineDTO{Identifier: in.Identifier, Price: num(in.Price)})
	}

	return quoteDTO{
		ProjectCategory: string(res.Category),
		Currency:        res.Currency,
		LineItems: lineItemsDTO{
			Features: features,
			Design:   priceLineDTO{Tier: string(items.Design.Tier), Price: num(items.Design.Price)},
			Content: contentLineDTO{
				PageCount:           items.Content.PageCount,
				BlogPostCount:       items.Content.BlogPostCount,
				ProductCount:        items.Content.ProductCount,
				Price:               num(items.Content.Price),
				ProductListingPrice: num(items.Content.ProductListingPrice),
			},
			Integrations: integrations,
			Hosting:      mapRecurring(items.Hosting),
			Maintenance:  mapRecurring(items.Maintenance),
		},
		SubtotalBeforeUrgency:    num(res.SubtotalBeforeUrgency),
		MinimumFeeApplied:        res.MinimumFeeApplied,
		UrgencyMultiplierApplied: num(res.UrgencyMultiplierApplied),
		SubtotalAfterUrgency:     num(res.SubtotalAfterUrgency),
		LongTermDiscountFraction: num(res.LongTermDiscountFraction),
		DiscountedAmount:         num(res.DiscountedAmount),
		TaxAmount:                num(res.TaxAmount),
		TotalOneTimePrice:        num(res.TotalOneTimePrice),
		TotalEffortHours:         res.TotalEffortHours,
		TimelineMonths:           res.TimelineMonths,
		TimelineDescription:      res.TimelineDescription,
		QuoteExpiryDate:          res.QuoteExpiryDate,
	}
}

func mapRecurring(line pricing.RecurringLine) recurringLineDTO {
	return recurringLineDTO{
		Tier:                    line.Tier,
		MonthlyPrice:            num(line.MonthlyPrice),
		AnnualPriceWithDiscount: num(line.AnnualPriceWithDiscount),
	}
}

func mapRecord(rec store.Record) recordDTO {
	return recordDTO{
		ID:        rec.ID,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
		Status:    string(rec.Status),
		Client: clientDTO{
			Name:    rec.Submission.ClientName,
			Email:   rec.Submission.ClientEmail,
			Company: rec.Submission.Company,
			Message: rec.Submission.Message,
		},
		Request: rec.Request,
		Quote:   mapQuote(rec.Result),
	}
}

func mapSummaries(items []store.Summary) []summaryDTO {
	out := make([]summaryDTO, 0, len(items))
	for _, item := range items {
		out = append(out, summaryDTO{
			ID:                item.ID,
			CreatedAt:         item.CreatedAt,
			ClientName:        item.ClientName,
			ClientEmail:       item.ClientEmail,
			Company:           item.Company,
			ProjectCategory:   item.Category,
			Status:            string(item.Status),
			TotalOneTimePrice: item.TotalOneTime,
			Currency:          item.Currency,
			ExpiresAt:         item.ExpiresAt,
		})
	}
	return out
}

func mapStats(stats store.Stats) statsDTO {
	byStatus := make(map[string]int, len(stats.ByStatus))
	for status, n := range stats.ByStatus {
		byStatus[string(status)] = n
	}
	return statsDTO{
		TotalQuotes:         stats.TotalQuotes,
		ByStatus:            byStatus,
		ByCategory:          stats.ByCategory,
		TotalOneTimeValue:   stats.TotalOneTimeValue,
		AverageOneTimeValue: stats.AverageOneTimeValue,
		LastThirtyDays:      stats.LastThirtyDays,
	}
}

func mapRates(t pricing.RateTable) ratesDTO {
	baseRates := make([]baseRateDTO, 0, len(pricing.Categories))
	for _, c := range pricing.Categories {
		if br, ok := t.BaseRates[c]; ok {
			baseRates = append(baseRates, baseRateDTO{
				Category:          string(c),
				HourlyRate:        num(br.HourlyRate),
				MinimumProjectFee: num(br.MinimumProjectFee),
			})
		}
	}

	complexity := make([]complexityDTO, 0, len(pricing.Complexities))
	for _, c := range pricing.Complexities {
		if tier, ok := t.Complexity[c]; ok {
			complexity = append(complexity, complexityDTO{
				Complexity:      string(c),
				EffortHours:     tier.EffortHours,
				PriceMultiplier: num(tier.PriceMultiplier),
			})
		}
	}

	discounts := make([]discountDTO, 0, len(t.LongTermDiscounts))
	for _, th := range t.LongTermDiscounts {
		discounts = append(discounts, discountDTO{MinMonths: th.MinMonths, Fraction: num(th.Fraction)})
	}
	sort.Slice(discounts, func(i, j int) bool { return discounts[i].MinMonths < discounts[j].MinMonths })

	return ratesDTO{
		Currency:               t.Currency,
		BaseRates:              baseRates,
		Complexity:             complexity,
		DesignPrices:           numMap(t.DesignPrices),
		PerPage:                num(t.Content.PerPage),
		PerBlogPost:            num(t.Content.PerBlogPost),
		PerProductListing:      num(t.Content.PerProductListing),
		IntegrationPrices:      numMap(t.IntegrationPrices),
		FallbackIntegrationFee: num(t.Fallbacks.IntegrationPrice),
		HostingMonthly:         numMap(t.HostingMonthly),
		MaintenanceMonthly:     numMap(t.MaintenanceMonthly),
		UrgencyMultipliers:     numMap(t.UrgencyMultipliers),
		LongTermDiscounts:      discounts,
		TaxRate:                num(t.TaxRate),
		AnnualRecurringFactor:  num(t.AnnualRecurringFactor),
		QuoteValidityDays:      int(t.QuoteValidity / (24 * time.Hour)),
	}
}

func numMap[K ~string](m map[K]decimal.Decimal) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[string(k)] = num(v)
	}
	return out
}
