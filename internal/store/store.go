package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ahmedhassan142/Portfoliopersonla-website-sub000/internal/pricing"
)

// ErrNotFound is returned when no quote has the requested id.
var ErrNotFound = errors.New("quote not found")

// ErrInvalidStatus is returned by ParseStatus for unknown statuses.
var ErrInvalidStatus = errors.New("invalid quote status")

// Status tracks where a submitted quote is in the follow-up workflow.
type Status string

const (
	StatusNew       Status = "new"
	StatusContacted Status = "contacted"
	StatusAccepted  Status = "accepted"
	StatusRejected  Status = "rejected"
	StatusClosed    Status = "closed"
)

// Statuses lists every status in workflow order.
var Statuses = []Status{StatusNew, StatusContacted, StatusAccepted, StatusRejected, StatusClosed}

func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range Statuses {
		if s == known {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
}

// timeLayout keeps stored timestamps fixed-width so that text order is time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const recentWindow = 30 * 24 * time.Hour

// Submission is the contact part of a quote request.
type Submission struct {
	ClientName  string `json:"clientName"`
	ClientEmail string `json:"clientEmail"`
	Company     string `json:"company"`
	Message     string `json:"message"`
}

// Record is a stored quote: the submission plus the request and the result
// exactly as they were computed.
type Record struct {
	ID         string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Status     Status
	Submission Submission
	Request    pricing.Request
	Result     pricing.Result
}

// Summary is the list view of a stored quote.
type Summary struct {
	ID           string
	CreatedAt    time.Time
	ClientName   string
	ClientEmail  string
	Company      string
	Category     string
	Status       Status
	TotalOneTime int64
	Currency     string
	ExpiresAt    time.Time
}

// Stats are the dashboard aggregates over all stored quotes.
type Stats struct {
	TotalQuotes         int
	ByStatus            map[Status]int
	ByCategory          map[string]int
	TotalOneTimeValue   int64
	AverageOneTimeValue float64
	LastThirtyDays      int
}

// Store persists quote snapshots in SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// New returns a Store over db. A nil clock uses time.Now.
func New(db *sql.DB, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{db: db, now: now}
}

// Save stores a new quote with status "new".
func (s *Store) Save(ctx context.Context, sub Submission, req pricing.Request, res pricing.Result) (Record, error) {
	requestJSON, err := json.Marshal(req)
	if err != nil {
		return Record{}, fmt.Errorf("encode quote request: %w", err)
	}
	resultJSON, err := json.Marshal(res)
	if err != nil {
		return Record{}, fmt.Errorf("encode quote result: %w", err)
	}

	now := s.now().UTC()
	rec := Record{
		ID:         uuid.NewString(),
		CreatedAt:  now,
		UpdatedAt:  now,
		Status:     StatusNew,
		Submission: sub,
		Request:    req,
		Result:     res,
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO quotes (
			id, created_at, updated_at, client_name, client_email, company, message,
			project_category, status, total_one_time, total_effort_hours, currency,
			expires_at, request_json, result_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ID,
		formatTime(now),
		formatTime(now),
		sub.ClientName,
		sub.ClientEmail,
		sub.Company,
		sub.Message,
		string(res.Category),
		string(rec.Status),
		res.TotalOneTimePrice.IntPart(),
		res.TotalEffortHours,
		res.Currency,
		formatTime(res.QuoteExpiryDate),
		string(requestJSON),
		string(resultJSON),
	)
	if err != nil {
		return Record{}, fmt.Errorf("insert quote: %w", err)
	}

	return rec, nil
}

// Get reads a stored quote. The result is the stored snapshot; nothing is recalculated.
func (s *Store) Get(ctx context.Context, id string) (Record, error) {
	var (
		rec                     Record
		createdAt, updatedAt    string
		status                  string
		requestJSON, resultJSON string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT
			id, created_at, updated_at, client_name, client_email,
			COALESCE(company, ''), COALESCE(message, ''), status, request_json, result_json
		FROM quotes
		WHERE id = ?
	`, id).Scan(
		&rec.ID,
		&createdAt,
		&updatedAt,
		&rec.Submission.ClientName,
		&rec.Submission.ClientEmail,
		&rec.Submission.Company,
		&rec.Submission.Message,
		&status,
		&requestJSON,
		&resultJSON,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("query quote %s: %w", id, err)
	}

	rec.Status = Status(status)
	if rec.CreatedAt, err = parseTime(createdAt); err != nil {
		return Record{}, err
	}
	if rec.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return Record{}, err
	}
	if err := json.Unmarshal([]byte(requestJSON), &rec.Request); err != nil {
		return Record{}, fmt.Errorf("decode quote %s request: %w", id, err)
	}
	if err := json.Unmarshal([]byte(resultJSON), &rec.Result); err != nil {
		return Record{}, fmt.Errorf("decode quote %s result: %w", id, err)
	}

	return rec, nil
}

// List returns quotes newest first. A non-empty query keeps only quotes whose
// client name, email, company or message contains it.
func (s *Store) List(ctx context.Context, query string) ([]Summary, error) {
	query = strings.TrimSpace(query)
	search := "%" + query + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			id, created_at, client_name, client_email, COALESCE(company, ''),
			project_category, status, total_one_time, currency, expires_at
		FROM quotes
		WHERE (? = ''
			OR client_name LIKE ?
			OR client_email LIKE ?
			OR COALESCE(company, '') LIKE ?
			OR COALESCE(message, '') LIKE ?)
		ORDER BY created_at DESC, id DESC
	`, query, search, search, search, search)
	if err != nil {
		return nil, fmt.Errorf("query quotes: %w", err)
	}
	defer rows.Close()

	quotes := make([]Summary, 0)
	for rows.Next() {
		var (
			item                 Summary
			createdAt, expiresAt string
			status               string
		)
		if err := rows.Scan(
			&item.ID,
			&createdAt,
			&item.ClientName,
			&item.ClientEmail,
			&item.Company,
			&item.Category,
			&status,
			&item.TotalOneTime,
			&item.Currency,
			&expiresAt,
		); err != nil {
			return nil, fmt.Errorf("scan quote: %w", err)
		}
		item.Status = Status(status)
		if item.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		if item.ExpiresAt, err = parseTime(expiresAt); err != nil {
			return nil, err
		}
		quotes = append(quotes, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quotes: %w", err)
	}

	return quotes, nil
}

// UpdateStatus moves a quote to status.
func (s *Store) UpdateStatus(ctx context.Context, id string, status Status) error {
	if _, err := ParseStatus(string(status)); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE quotes
		SET status = ?, updated_at = ?
		WHERE id = ?
	`, string(status), formatTime(s.now().UTC()), id)
	if err != nil {
		return fmt.Errorf("update quote status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update quote status: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Stats aggregates every stored quote.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{
		ByStatus:   make(map[Status]int, len(Statuses)),
		ByCategory: make(map[string]int),
	}
	for _, status := range Statuses {
		stats.ByStatus[status] = 0
	}

	cutoff := formatTime(s.now().UTC().Add(-recentWindow))
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(total_one_time), 0),
			COALESCE(SUM(CASE WHEN created_at >= ? THEN 1 ELSE 0 END), 0)
		FROM quotes
	`, cutoff).Scan(&stats.TotalQuotes, &stats.TotalOneTimeValue, &stats.LastThirtyDays)
	if err != nil {
		return Stats{}, fmt.Errorf("query quote totals: %w", err)
	}
	if stats.TotalQuotes > 0 {
		stats.AverageOneTimeValue = float64(stats.TotalOneTimeValue) / float64(stats.TotalQuotes)
	}

	if err := s.countBy(ctx, "status", func(key string, n int) { stats.ByStatus[Status(key)] = n }); err != nil {
		return Stats{}, err
	}
	if err := s.countBy(ctx, "project_category", func(key string, n int) { stats.ByCategory[key] = n }); err != nil {
		return Stats{}, err
	}

	return stats, nil
}

// countBy groups quotes by column, which must be a trusted column name.
func (s *Store) countBy(ctx context.Context, column string, set func(key string, n int)) error {
	rows, err := s.db.QueryContext(ctx, `SELECT `+column+`, COUNT(*) FROM quotes GROUP BY `+column)
	if err != nil {
		return fmt.Errorf("count quotes by %s: %w", column, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			key string
			n   int
		)
		if err := rows.Scan(&key, &n); err != nil {
			return fmt.Errorf("scan quote count by %s: %w", column, err)
		}
		set(key, n)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate quote counts by %s: %w", column, err)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(raw string) (time.Time, error) {
	t, err := time.Parse(timeLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored time %q: %w", raw, err)
	}
	return t, nil
}
