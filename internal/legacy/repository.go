// Package legacy is the repository over the legacy school-billing
// schema. It runs a fixed catalog of parameterized analytical queries
// and reflects table metadata on demand.
//
// Failure policy, inherited from the source system: the fixed query
// methods log the error and return an empty result, so callers cannot
// tell "no data" from "query failed" without the logs. Only Exec
// propagates errors.
package legacy

import (
	"context"

	"github.com/google/uuid"
	"github.com/mfiorillo/ledgerlens/internal/database"
	"github.com/rs/zerolog"
)

// Row limits and defaults for the analysis datasets.
const defaultPaymentDataLimit = 1000

// Repository runs the analytical query catalog over a connected driver.
type Repository struct {
	driver database.Driver
	schema *database.SchemaCache
	log    zerolog.Logger
}

// NewRepository creates a repository over an already-connected driver.
func NewRepository(driver database.Driver, log zerolog.Logger) *Repository {
	return &Repository{
		driver: driver,
		schema: database.NewSchemaCache(driver),
		log:    log.With().Str("component", "legacy-repository").Logger(),
	}
}

// Table returns the reflected schema for a table, cached per name for
// the process lifetime.
func (r *Repository) Table(ctx context.Context, name string) (*database.TableSchema, error) {
	return r.schema.Table(ctx, name)
}

// HealthCheck runs the trivial probe inside a transaction scope and
// reports boolean success, logging failures without propagating.
func (r *Repository) HealthCheck(ctx context.Context) bool {
	err := r.driver.InTx(ctx, func(q database.Querier) error {
		_, err := q.Query(ctx, queryHealthProbe.text(r.driver.Dialect()))
		return err
	})
	if err != nil {
		r.log.Error().Err(err).Msg("database connection failed")
		return false
	}
	return true
}

// ServerVersion probes the server and returns connection status plus
// the version string when reachable.
func (r *Repository) ServerVersion(ctx context.Context) database.Row {
	set, err := r.driver.Query(ctx, queryServerVersion.text(r.driver.Dialect()))
	if err != nil {
		r.log.Error().Err(err).Msg("connection test failed")
		return database.Row{"connected": false, "error": err.Error()}
	}

	var version any
	if len(set.Rows) > 0 {
		version = set.Rows[0]["version"]
	}
	return database.Row{"connected": true, "version": version}
}

// Exec runs a raw SQL statement. Unlike the fixed catalog methods it
// propagates execution errors to the caller.
func (r *Repository) Exec(ctx context.Context, query string, args ...any) (*database.RowSet, error) {
	set, err := r.driver.Query(ctx, query, args...)
	if err != nil {
		r.log.Error().Err(err).Str("query", query).Msg("query execution error")
		return nil, err
	}
	return set, nil
}

// CustomersWithMisappliedPayments finds customers with payments that
// were potentially misapplied: a payment covering a future lesson while
// older unpaid lessons remained.
func (r *Repository) CustomersWithMisappliedPayments(ctx context.Context) *database.RowSet {
	return r.fetchAll(ctx, "misapplied_customers", queryMisappliedCustomers)
}

// CustomerDetails returns detailed information about a customer, or
// nil when the customer is unknown.
func (r *Repository) CustomerDetails(ctx context.Context, customerID string) database.Row {
	return r.fetchOne(ctx, "customer_details", queryCustomerDetails, customerID)
}

// CustomerPayments returns the customer's payments, newest first.
func (r *Repository) CustomerPayments(ctx context.Context, customerID string) *database.RowSet {
	return r.fetchAll(ctx, "customer_payments", queryCustomerPayments, customerID)
}

// PaymentDetails returns detailed information about a payment.
func (r *Repository) PaymentDetails(ctx context.Context, paymentID string) database.Row {
	return r.fetchOne(ctx, "payment_details", queryPaymentDetails, paymentID)
}

// RelatedEnrolment returns the enrolment a payment was applied against.
func (r *Repository) RelatedEnrolment(ctx context.Context, paymentID string) database.Row {
	return r.fetchOne(ctx, "related_enrolment", queryRelatedEnrolment, paymentID)
}

// PaymentApplications returns the lesson applications of a payment,
// ordered by lesson date, with a future-lesson flag per row.
func (r *Repository) PaymentApplications(ctx context.Context, paymentID string) *database.RowSet {
	return r.fetchAll(ctx, "payment_applications", queryPaymentApplications, paymentID)
}

// AffectedEnrolments returns enrolments that expired without auto-renew
// while lessons were still scheduled in the analysis window.
func (r *Repository) AffectedEnrolments(ctx context.Context, start, end string) *database.RowSet {
	_ = start // the analysis window is anchored on its end date
	return r.fetchAll(ctx, "affected_enrolments", queryAffectedEnrolments, end, end)
}

// CustomerEnrolments returns all enrolments of a customer's students.
func (r *Repository) CustomerEnrolments(ctx context.Context, customerID string) *database.RowSet {
	return r.fetchAll(ctx, "customer_enrolments", queryCustomerEnrolments, customerID)
}

// PaymentData returns the wide payment/invoice/lesson dataset for the
// analysis dashboards. A customerID of 0 fetches all customers; a
// limit of 0 applies the default of 1000 rows.
func (r *Repository) PaymentData(ctx context.Context, limit int, customerID int64) *database.RowSet {
	if limit <= 0 {
		limit = defaultPaymentDataLimit
	}

	text := paymentDataBase
	args := make([]any, 0, 2)
	if customerID > 0 {
		text += customerIDFilter
		args = append(args, customerID)
	}
	text += paymentDataSuffix
	args = append(args, limit)

	return r.fetchAll(ctx, "payment_data", query{mysql: text}, args...)
}

// PaymentCycleData returns payments joined with billing-cycle fields.
func (r *Repository) PaymentCycleData(ctx context.Context) *database.RowSet {
	return r.fetchAll(ctx, "payment_cycle_data", queryPaymentCycleData)
}

// MisappliedPayments returns payments applied more than 15 days after
// their invoice, widest gap first.
func (r *Repository) MisappliedPayments(ctx context.Context) *database.RowSet {
	return r.fetchAll(ctx, "misapplied_payments", queryMisappliedPayments)
}

// EnrolmentData returns the enrolment dataset, optionally filtered to
// one customer (customerID > 0).
func (r *Repository) EnrolmentData(ctx context.Context, customerID int64) *database.RowSet {
	return r.fetchFiltered(ctx, "enrolment_data", enrolmentDataBase, enrolmentDataSuffix, customerID)
}

// LessonData returns the lesson dataset, optionally filtered to one
// customer (customerID > 0).
func (r *Repository) LessonData(ctx context.Context, customerID int64) *database.RowSet {
	return r.fetchFiltered(ctx, "lesson_data", lessonDataBase, lessonDataSuffix, customerID)
}

// InvoiceData returns the invoice dataset, optionally filtered to one
// customer (customerID > 0).
func (r *Repository) InvoiceData(ctx context.Context, customerID int64) *database.RowSet {
	return r.fetchFiltered(ctx, "invoice_data", invoiceDataBase, invoiceDataSuffix, customerID)
}

func (r *Repository) fetchFiltered(ctx context.Context, name, base, suffix string, customerID int64) *database.RowSet {
	text := base
	args := make([]any, 0, 1)
	if customerID > 0 {
		text += customerIDFilter
		args = append(args, customerID)
	}
	text += suffix

	return r.fetchAll(ctx, name, query{mysql: text}, args...)
}

func (r *Repository) fetchAll(ctx context.Context, name string, q query, args ...any) *database.RowSet {
	queryID := uuid.NewString()

	set, err := r.driver.Query(ctx, q.text(r.driver.Dialect()), args...)
	if err != nil {
		r.log.Error().
			Err(err).
			Str("query", name).
			Str("query_id", queryID).
			Msg("query failed, returning empty result")
		return &database.RowSet{}
	}

	r.log.Debug().
		Str("query", name).
		Str("query_id", queryID).
		Int("rows", set.RowCount).
		Dur("duration", set.Duration).
		Msg("query completed")
	return set
}

func (r *Repository) fetchOne(ctx context.Context, name string, q query, args ...any) database.Row {
	set := r.fetchAll(ctx, name, q, args...)
	if len(set.Rows) == 0 {
		return nil
	}
	return set.Rows[0]
}
