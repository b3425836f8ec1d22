package seed

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ahmedhassan142/Portfoliopersonla-website-sub000/internal/pricing"
	"github.com/ahmedhassan142/Portfoliopersonla-website-sub000/internal/store"
)

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
	Skipped int
}

type demoQuote struct {
	submission store.Submission
	request    pricing.Request
	status     store.Status
}

// demoQuotes are keyed by client email; a quote whose email already exists is skipped.
var demoQuotes = []demoQuote{
	{
		submission: store.Submission{
			ClientName:  "Northwind Bakery",
			ClientEmail: "orders@northwind.example",
			Company:     "Northwind",
			Message:     "Online ordering for three shops.",
		},
		request: pricing.Request{
			Category: pricing.CategoryWeb,
			Features: []pricing.Feature{
				{Name: "Product catalog", Complexity: pricing.ComplexityMedium},
				{Name: "Checkout", Complexity: pricing.ComplexityComplex},
			},
			Design:         pricing.DesignPremium,
			ContentPages:   8,
			Products:       40,
			Integrations:   []string{"payment-gateway", "analytics"},
			Hosting:        pricing.HostingStandard,
			Maintenance:    pricing.MaintenanceBasic,
			Urgency:        pricing.UrgencyStandard,
			TimelineMonths: 4,
		},
		status: store.StatusNew,
	},
	{
		submission: store.Submission{
			ClientName:  "Ridge Fitness",
			ClientEmail: "it@ridgefit.example",
			Message:     "Member app with class booking.",
		},
		request: pricing.Request{
			Category: pricing.CategoryMobile,
			Features: []pricing.Feature{
				{Name: "Class booking", Complexity: pricing.ComplexityComplex},
				{Name: "Push notifications", Complexity: pricing.ComplexitySimple},
			},
			Design:         pricing.DesignCustom,
			Integrations:   []string{"booking", "sso"},
			Hosting:        pricing.HostingPremium,
			Maintenance:    pricing.MaintenanceStandard,
			Urgency:        pricing.UrgencyUrgent,
			TimelineMonths: 8,
		},
		status: store.StatusContacted,
	},
	{
		submission: store.Submission{
			ClientName:  "Lumen Legal",
			ClientEmail: "ops@lumenlegal.example",
			Company:     "Lumen Legal LLP",
		},
		request: pricing.Request{
			Category: pricing.CategoryAI,
			Features: []pricing.Feature{
				{Name: "Contract summarizer", Complexity: pricing.ComplexityVeryComplex},
			},
			Design:         pricing.DesignBasic,
			Integrations:   []string{"crm"},
			Hosting:        pricing.HostingEnterprise,
			Maintenance:    pricing.MaintenancePremium,
			Urgency:        pricing.UrgencyFlexible,
			TimelineMonths: 12,
		},
		status: store.StatusAccepted,
	},
}

// Run inserts the demo quotes in an idempotent way. Quotes are priced against
// rates as of now().
func Run(ctx context.Context, db *sql.DB, rates pricing.RateTable, now func() time.Time) (Stats, error) {
	quotes := store.New(db, now)
	stats := Stats{}

	for _, demo := range demoQuotes {
		var exists bool
		if err := db.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM quotes WHERE client_email = ? LIMIT 1)`,
			demo.submission.ClientEmail,
		).Scan(&exists); err != nil {
			return stats, fmt.Errorf("check demo quote existence: %w", err)
		}
		if exists {
			stats.Skipped++
			continue
		}

		res := pricing.Compute(demo.request, rates, now())
		rec, err := quotes.Save(ctx, demo.submission, demo.request, res)
		if err != nil {
			return stats, fmt.Errorf("insert demo quote for %s: %w", demo.submission.ClientEmail, err)
		}
		if demo.status != store.StatusNew {
			if err := quotes.UpdateStatus(ctx, rec.ID, demo.status); err != nil {
				return stats, fmt.Errorf("set demo quote status: %w", err)
			}
		}
		stats.Inserts++
	}

	return stats, nil
}
