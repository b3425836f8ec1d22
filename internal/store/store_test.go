package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmedhassan142/Portfoliopersonla-website-sub000/internal/db"
	"github.com/ahmedhassan142/Portfoliopersonla-website-sub000/internal/migrations"
	"github.com/ahmedhassan142/Portfoliopersonla-website-sub000/internal/pricing"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time         { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestStore(t *testing.T) (*Store, *fakeClock) {
	t.Helper()

	database, err := db.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	_, err = migrations.Up(context.Background(), database)
	require.NoError(t, err)

	clock := &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	return New(database, clock.now), clock
}

func sampleRequest(category pricing.Category) pricing.Request {
	return pricing.Request{
		Category: category,
		Features: []pricing.Feature{
			{Name: "Login", Complexity: pricing.ComplexitySimple},
			{Name: "Checkout", Complexity: pricing.ComplexityMedium},
		},
		Design:         pricing.DesignStandard,
		Hosting:        pricing.HostingBasic,
		Maintenance:    pricing.MaintenanceNone,
		Urgency:        pricing.UrgencyStandard,
		TimelineMonths: 2,
	}
}

func saveQuote(t *testing.T, s *Store, clock *fakeClock, sub Submission, category pricing.Category) Record {
	t.Helper()

	req := sampleRequest(category)
	res := pricing.Compute(req, pricing.DefaultRates(), clock.t)
	rec, err := s.Save(context.Background(), sub, req, res)
	require.NoError(t, err)
	return rec
}

func TestSaveAndGetReturnsSnapshot(t *testing.T) {
	s, clock := newTestStore(t)
	ctx := context.Background()

	sub := Submission{ClientName: "Ada Lovelace", ClientEmail: "ada@example.com", Company: "Engines Ltd", Message: "Need a shop"}
	saved := saveQuote(t, s, clock, sub, pricing.CategoryWeb)
	require.NotEmpty(t, saved.ID)
	assert.Equal(t, StatusNew, saved.Status)

	got, err := s.Get(ctx, saved.ID)
	require.NoError(t, err)

	assert.Equal(t, sub, got.Submission)
	assert.Equal(t, StatusNew, got.Status)
	assert.True(t, got.CreatedAt.Equal(clock.t))
	assert.Equal(t, saved.Request, got.Request)
	assert.True(t, got.Result.TotalOneTimePrice.Equal(saved.Result.TotalOneTimePrice),
		"total %s != %s", got.Result.TotalOneTimePrice, saved.Result.TotalOneTimePrice)
	assert.True(t, got.Result.QuoteExpiryDate.Equal(clock.t.Add(30*24*time.Hour)))
	assert.Len(t, got.Result.LineItems.Features, 2)
}

func TestGetReadsSnapshotWithoutRecalculation(t *testing.T) {
	s, clock := newTestStore(t)
	ctx := context.Background()

	saved := saveQuote(t, s, clock, Submission{ClientName: "Grace", ClientEmail: "grace@example.com"}, pricing.CategoryWeb)

	_, err := s.db.ExecContext(ctx, `
		UPDATE quotes
		SET result_json = json_set(result_json, '$.totalOneTimePrice', '999999')
		WHERE id = ?
	`, saved.ID)
	require.NoError(t, err)

	got, err := s.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "999999", got.Result.TotalOneTimePrice.String())
}

func TestGetUnknownIDReturnsNotFound(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.Get(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListOrdersNewestFirst(t *testing.T) {
	s, clock := newTestStore(t)

	saveQuote(t, s, clock, Submission{ClientName: "First", ClientEmail: "one@example.com"}, pricing.CategoryWeb)
	clock.advance(48 * time.Hour)
	saveQuote(t, s, clock, Submission{ClientName: "Third", ClientEmail: "three@example.com"}, pricing.CategoryMobile)
	clock.advance(-24 * time.Hour)
	saveQuote(t, s, clock, Submission{ClientName: "Second", ClientEmail: "two@example.com"}, pricing.CategoryAI)

	quotes, err := s.List(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, quotes, 3)

	assert.Equal(t, "Third", quotes[0].ClientName)
	assert.Equal(t, "Second", quotes[1].ClientName)
	assert.Equal(t, "First", quotes[2].ClientName)
	assert.Equal(t, "mobile", quotes[0].Category)
	assert.Equal(t, int64(5500), quotes[0].TotalOneTime)
	assert.Equal(t, "USD", quotes[0].Currency)
}

func TestListFiltersByClientFieldsAndMessage(t *testing.T) {
	s, clock := newTestStore(t)
	ctx := context.Background()

	saveQuote(t, s, clock, Submission{ClientName: "Casa Verde", ClientEmail: "hola@casa.example", Message: "green shop"}, pricing.CategoryWeb)
	saveQuote(t, s, clock, Submission{ClientName: "Keyring Co", ClientEmail: "vip@keys.example", Company: "Keys"}, pricing.CategoryWeb)
	saveQuote(t, s, clock, Submission{ClientName: "Proto", ClientEmail: "p@proto.example", Message: "urgent for casa"}, pricing.CategoryWeb)

	byName, err := s.List(ctx, "Keyr")
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "Keyring Co", byName[0].ClientName)

	byMessage, err := s.List(ctx, "casa")
	require.NoError(t, err)
	assert.Len(t, byMessage, 2)

	none, err := s.List(ctx, "nothing matches")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestUpdateStatus(t *testing.T) {
	s, clock := newTestStore(t)
	ctx := context.Background()

	saved := saveQuote(t, s, clock, Submission{ClientName: "Linus", ClientEmail: "l@example.com"}, pricing.CategoryWeb)
	clock.advance(time.Hour)

	require.NoError(t, s.UpdateStatus(ctx, saved.ID, StatusContacted))

	got, err := s.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusContacted, got.Status)
	assert.True(t, got.UpdatedAt.Equal(clock.t))
	assert.True(t, got.CreatedAt.Before(got.UpdatedAt))
}

func TestUpdateStatusErrors(t *testing.T) {
	s, clock := newTestStore(t)
	ctx := context.Background()

	require.ErrorIs(t, s.UpdateStatus(ctx, "missing", StatusClosed), ErrNotFound)

	saved := saveQuote(t, s, clock, Submission{ClientName: "Linus", ClientEmail: "l@example.com"}, pricing.CategoryWeb)
	require.ErrorIs(t, s.UpdateStatus(ctx, saved.ID, Status("archived")), ErrInvalidStatus)
}

func TestParseStatus(t *testing.T) {
	status, err := ParseStatus(" Accepted ")
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, status)

	_, err = ParseStatus("pending")
	require.ErrorIs(t, err, ErrInvalidStatus)
}

func TestStats(t *testing.T) {
	s, clock := newTestStore(t)
	ctx := context.Background()

	old := saveQuote(t, s, clock, Submission{ClientName: "Old", ClientEmail: "old@example.com"}, pricing.CategoryWeb)
	clock.advance(40 * 24 * time.Hour)
	saveQuote(t, s, clock, Submission{ClientName: "Web", ClientEmail: "web@example.com"}, pricing.CategoryWeb)
	saveQuote(t, s, clock, Submission{ClientName: "App", ClientEmail: "app@example.com"}, pricing.CategoryMobile)
	require.NoError(t, s.UpdateStatus(ctx, old.ID, StatusAccepted))

	stats, err := s.Stats(ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalQuotes)
	assert.Equal(t, 2, stats.LastThirtyDays)
	assert.Equal(t, map[string]int{"web": 2, "mobile": 1}, stats.ByCategory)
	assert.Equal(t, 2, stats.ByStatus[StatusNew])
	assert.Equal(t, 1, stats.ByStatus[StatusAccepted])
	assert.Equal(t, 0, stats.ByStatus[StatusClosed])

	// web: 3900 + 10% tax = 4290 each; mobile: floored to 5000, plus tax = 5500.
	assert.Equal(t, int64(4290+4290+5500), stats.TotalOneTimeValue)
	assert.InDelta(t, 14080.0/3, stats.AverageOneTimeValue, 0.001)
}

func TestStatsOnEmptyStore(t *testing.T) {
	s, _ := newTestStore(t)

	stats, err := s.Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.TotalQuotes)
	assert.Zero(t, stats.AverageOneTimeValue)
	assert.Empty(t, stats.ByCategory)
	assert.Len(t, stats.ByStatus, len(Statuses))
}
