package pricing

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// RatesFile is the YAML form of a RateTable overlay. Every field is optional;
// anything left out keeps its DefaultRates value.
type RatesFile struct {
	Currency               string                    `yaml:"currency,omitempty"`
	BaseRates              map[string]baseRateYAML   `yaml:"base_rates,omitempty"`
	Complexity             map[string]complexityYAML `yaml:"complexity,omitempty"`
	DesignPrices           map[string]float64        `yaml:"design_prices,omitempty"`
	Content                contentYAML               `yaml:"content,omitempty"`
	IntegrationPrices      map[string]float64        `yaml:"integration_prices,omitempty"`
	FallbackIntegrationFee *float64                  `yaml:"fallback_integration_price,omitempty"`
	HostingMonthly         map[string]float64        `yaml:"hosting_monthly,omitempty"`
	MaintenanceMonthly     map[string]float64        `yaml:"maintenance_monthly,omitempty"`
	UrgencyMultipliers     map[string]float64        `yaml:"urgency_multipliers,omitempty"`
	LongTermDiscounts      []discountYAML            `yaml:"long_term_discounts,omitempty"`
	TaxRate                *float64                  `yaml:"tax_rate,omitempty"`
	AnnualRecurringFactor  *float64                  `yaml:"annual_recurring_factor,omitempty"`
	QuoteValidityDays      *int                      `yaml:"quote_validity_days,omitempty"`
}

type baseRateYAML struct {
	HourlyRate        *float64 `yaml:"hourly_rate,omitempty"`
	MinimumProjectFee *float64 `yaml:"minimum_project_fee,omitempty"`
}

type complexityYAML struct {
	EffortHours     *int     `yaml:"effort_hours,omitempty"`
	PriceMultiplier *float64 `yaml:"price_multiplier,omitempty"`
}

type contentYAML struct {
	PerPage           *float64 `yaml:"per_page,omitempty"`
	PerBlogPost       *float64 `yaml:"per_blog_post,omitempty"`
	PerProductListing *float64 `yaml:"per_product_listing,omitempty"`
}

type discountYAML struct {
	MinMonths int     `yaml:"min_months"`
	Fraction  float64 `yaml:"fraction"`
}

// LoadRateTable reads a YAML overlay from path and applies it to DefaultRates.
// An empty path returns the defaults.
func LoadRateTable(path string) (RateTable, error) {
	rates := DefaultRates()
	if path == "" {
		return rates, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return RateTable{}, fmt.Errorf("read rates file: %w", err)
	}

	var file RatesFile
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return RateTable{}, fmt.Errorf("parse rates file: %w", err)
	}

	if err := file.Apply(&rates); err != nil {
		return RateTable{}, fmt.Errorf("apply rates file %s: %w", path, err)
	}
	return rates, nil
}

// Apply overlays f onto rates, validating labels and ranges.
func (f RatesFile) Apply(rates *RateTable) error {
	if f.Currency != "" {
		rates.Currency = f.Currency
	}

	for key, v := range f.BaseRates {
		c, err := ParseCategory(key)
		if err != nil {
			return err
		}
		br := rates.BaseRates[c]
		if v.HourlyRate != nil {
			if br.HourlyRate, err = nonNegativeDecimal("base_rates."+key+".hourly_rate", *v.HourlyRate); err != nil {
				return err
			}
		}
		if v.MinimumProjectFee != nil {
			if br.MinimumProjectFee, err = nonNegativeDecimal("base_rates."+key+".minimum_project_fee", *v.MinimumProjectFee); err != nil {
				return err
			}
		}
		rates.BaseRates[c] = br
	}

	for key, v := range f.Complexity {
		c, err := ParseComplexity(key)
		if err != nil {
			return err
		}
		tier := rates.Complexity[c]
		if v.EffortHours != nil {
			if *v.EffortHours < 0 {
				return fmt.Errorf("complexity.%s.effort_hours must be >= 0", key)
			}
			tier.EffortHours = *v.EffortHours
		}
		if v.PriceMultiplier != nil {
			if tier.PriceMultiplier, err = nonNegativeDecimal("complexity."+key+".price_multiplier", *v.PriceMultiplier); err != nil {
				return err
			}
		}
		rates.Complexity[c] = tier
	}

	for key, v := range f.DesignPrices {
		tier, err := ParseDesignTier(key)
		if err != nil {
			return err
		}
		if rates.DesignPrices[tier], err = nonNegativeDecimal("design_prices."+key, v); err != nil {
			return err
		}
	}

	var err error
	if f.Content.PerPage != nil {
		if rates.Content.PerPage, err = nonNegativeDecimal("content.per_page", *f.Content.PerPage); err != nil {
			return err
		}
	}
	if f.Content.PerBlogPost != nil {
		if rates.Content.PerBlogPost, err = nonNegativeDecimal("content.per_blog_post", *f.Content.PerBlogPost); err != nil {
			return err
		}
	}
	if f.Content.PerProductListing != nil {
		if rates.Content.PerProductListing, err = nonNegativeDecimal("content.per_product_listing", *f.Content.PerProductListing); err != nil {
			return err
		}
	}

	for id, v := range f.IntegrationPrices {
		if rates.IntegrationPrices[id], err = nonNegativeDecimal("integration_prices."+id, v); err != nil {
			return err
		}
	}
	if f.FallbackIntegrationFee != nil {
		if rates.Fallbacks.IntegrationPrice, err = nonNegativeDecimal("fallback_integration_price", *f.FallbackIntegrationFee); err != nil {
			return err
		}
	}

	for key, v := range f.HostingMonthly {
		tier, err := ParseHostingTier(key)
		if err != nil {
			return err
		}
		if rates.HostingMonthly[tier], err = nonNegativeDecimal("hosting_monthly."+key, v); err != nil {
			return err
		}
	}

	for key, v := range f.MaintenanceMonthly {
		tier, err := ParseMaintenanceTier(key)
		if err != nil {
			return err
		}
		if rates.MaintenanceMonthly[tier], err = nonNegativeDecimal("maintenance_monthly."+key, v); err != nil {
			return err
		}
	}

	for key, v := range f.UrgencyMultipliers {
		u, err := ParseUrgency(key)
		if err != nil {
			return err
		}
		if v <= 0 {
			return fmt.Errorf("urgency_multipliers.%s must be > 0", key)
		}
		rates.UrgencyMultipliers[u] = decimal.NewFromFloat(v)
	}

	if len(f.LongTermDiscounts) > 0 {
		thresholds := make([]DiscountThreshold, 0, len(f.LongTermDiscounts))
		prev := 0
		for i, th := range f.LongTermDiscounts {
			if th.MinMonths <= prev {
				return fmt.Errorf("long_term_discounts[%d]: min_months must be ascending and positive", i)
			}
			if th.Fraction < 0 || th.Fraction >= 1 {
				return fmt.Errorf("long_term_discounts[%d]: fraction must be in [0, 1)", i)
			}
			prev = th.MinMonths
			thresholds = append(thresholds, DiscountThreshold{MinMonths: th.MinMonths, Fraction: decimal.NewFromFloat(th.Fraction)})
		}
		rates.LongTermDiscounts = thresholds
	}

	if f.TaxRate != nil {
		if *f.TaxRate < 0 || *f.TaxRate >= 1 {
			return fmt.Errorf("tax_rate must be in [0, 1)")
		}
		rates.TaxRate = decimal.NewFromFloat(*f.TaxRate)
	}
	if f.AnnualRecurringFactor != nil {
		if rates.AnnualRecurringFactor, err = nonNegativeDecimal("annual_recurring_factor", *f.AnnualRecurringFactor); err != nil {
			return err
		}
	}
	if f.QuoteValidityDays != nil {
		if *f.QuoteValidityDays <= 0 {
			return fmt.Errorf("quote_validity_days must be > 0")
		}
		rates.QuoteValidity = time.Duration(*f.QuoteValidityDays) * 24 * time.Hour
	}

	return nil
}

func nonNegativeDecimal(field string, v float64) (decimal.Decimal, error) {
	if v < 0 {
		return decimal.Zero, fmt.Errorf("%s must be >= 0", field)
	}
	return decimal.NewFromFloat(v), nil
}

// ToFile converts a table back into its YAML form.
func (t RateTable) ToFile() RatesFile {
	var f RatesFile
	f.Currency = t.Currency

	f.BaseRates = make(map[string]baseRateYAML, len(t.BaseRates))
	for c, br := range t.BaseRates {
		hr, mf := br.HourlyRate.InexactFloat64(), br.MinimumProjectFee.InexactFloat64()
		f.BaseRates[string(c)] = baseRateYAML{HourlyRate: &hr, MinimumProjectFee: &mf}
	}

	f.Complexity = make(map[string]complexityYAML, len(t.Complexity))
	for c, tier := range t.Complexity {
		hours, mult := tier.EffortHours, tier.PriceMultiplier.InexactFloat64()
		f.Complexity[string(c)] = complexityYAML{EffortHours: &hours, PriceMultiplier: &mult}
	}

	f.DesignPrices = floatMap(t.DesignPrices)
	pp, pb, pl := t.Content.PerPage.InexactFloat64(), t.Content.PerBlogPost.InexactFloat64(), t.Content.PerProductListing.InexactFloat64()
	f.Content.PerPage, f.Content.PerBlogPost, f.Content.PerProductListing = &pp, &pb, &pl
	f.IntegrationPrices = floatMap(t.IntegrationPrices)
	fallback := t.Fallbacks.IntegrationPrice.InexactFloat64()
	f.FallbackIntegrationFee = &fallback
	f.HostingMonthly = floatMap(t.HostingMonthly)
	f.MaintenanceMonthly = floatMap(t.MaintenanceMonthly)
	f.UrgencyMultipliers = floatMap(t.UrgencyMultipliers)
	for _, th := range t.LongTermDiscounts {
		f.LongTermDiscounts = append(f.LongTermDiscounts, discountYAML{MinMonths: th.MinMonths, Fraction: th.Fraction.InexactFloat64()})
	}
	tax := t.TaxRate.InexactFloat64()
	f.TaxRate = &tax
	annual := t.AnnualRecurringFactor.InexactFloat64()
	f.AnnualRecurringFactor = &annual
	days := int(t.QuoteValidity / (24 * time.Hour))
	f.QuoteValidityDays = &days
	return f
}

func floatMap[K ~string](m map[K]decimal.Decimal) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[string(k)] = v.InexactFloat64()
	}
	return out
}
