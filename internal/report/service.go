// Package report coordinates the named dashboard reports and the
// per-customer aggregates computed from repository rows.
package report

import (
	"context"
	"strconv"

	"github.com/mfiorillo/ledgerlens/internal/database"
	"github.com/mfiorillo/ledgerlens/internal/legacy"
	"github.com/rs/zerolog"
)

// Service exposes the report catalog over the legacy repository.
type Service struct {
	repo *legacy.Repository
	log  zerolog.Logger
}

// NewService creates a report service.
func NewService(repo *legacy.Repository, log zerolog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// PaymentStatistics aggregates a customer's payment history.
type PaymentStatistics struct {
	TotalPayments    int
	TotalAmountPaid  float64
	AvgPaymentAmount float64
}

// CustomerPaymentStatistics computes payment count, total and average
// amount from the customer's payment rows.
func (s *Service) CustomerPaymentStatistics(ctx context.Context, customerID string) PaymentStatistics {
	payments := s.repo.CustomerPayments(ctx, customerID)
	if payments.RowCount == 0 {
		return PaymentStatistics{}
	}

	var total float64
	for _, p := range payments.Rows {
		total += toFloat(p["amount"])
	}

	return PaymentStatistics{
		TotalPayments:    payments.RowCount,
		TotalAmountPaid:  total,
		AvgPaymentAmount: total / float64(payments.RowCount),
	}
}

// Report is one named dataset the CLI can run.
type Report struct {
	Name        string
	Description string
	Run         func(ctx context.Context) *database.RowSet
}

// Reports returns the report catalog.
func (s *Service) Reports() []Report {
	return []Report{
		{
			Name:        "misapplied-customers",
			Description: "Customers with potentially misapplied payments",
			Run:         s.repo.CustomersWithMisappliedPayments,
		},
		{
			Name:        "misapplied-payments",
			Description: "Payments applied more than 15 days after their invoice",
			Run:         s.repo.MisappliedPayments,
		},
		{
			Name:        "payment-cycle",
			Description: "Payments joined with billing cycle information",
			Run:         s.repo.PaymentCycleData,
		},
		{
			Name:        "payments",
			Description: "Wide payment/invoice/lesson dataset",
			Run: func(ctx context.Context) *database.RowSet {
				return s.repo.PaymentData(ctx, 0, 0)
			},
		},
		{
			Name:        "enrolments",
			Description: "Enrolment dataset",
			Run: func(ctx context.Context) *database.RowSet {
				return s.repo.EnrolmentData(ctx, 0)
			},
		},
		{
			Name:        "lessons",
			Description: "Lesson dataset",
			Run: func(ctx context.Context) *database.RowSet {
				return s.repo.LessonData(ctx, 0)
			},
		},
		{
			Name:        "invoices",
			Description: "Invoice dataset",
			Run: func(ctx context.Context) *database.RowSet {
				return s.repo.InvoiceData(ctx, 0)
			},
		},
	}
}

// Lookup finds a report by name.
func (s *Service) Lookup(name string) (Report, bool) {
	for _, r := range s.Reports() {
		if r.Name == name {
			return r, true
		}
	}
	return Report{}, false
}

// toFloat coerces the scalar types the drivers hand back for numeric
// columns. Unparseable values count as zero.
func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int64:
		return float64(n)
	case int32:
		return float64(n)
	case int:
		return float64(n)
	case string:
		f, _ := strconv.ParseFloat(n, 64)
		return f
	case []byte:
		f, _ := strconv.ParseFloat(string(n), 64)
		return f
	default:
		return 0
	}
}
