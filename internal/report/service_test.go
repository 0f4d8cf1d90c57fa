package report

import (
	"context"
	"testing"

	"github.com/mfiorillo/ledgerlens/internal/database"
	"github.com/mfiorillo/ledgerlens/internal/legacy"
	"github.com/rs/zerolog"
)

// paymentsDriver serves a canned payments result for every query.
type paymentsDriver struct {
	result *database.RowSet
}

func (d *paymentsDriver) Connect(ctx context.Context, dsn string) error { return nil }
func (d *paymentsDriver) Close() error                                  { return nil }
func (d *paymentsDriver) Ping(ctx context.Context) error                { return nil }
func (d *paymentsDriver) Dialect() database.Dialect                     { return database.DialectMySQL }
func (d *paymentsDriver) DatabaseName() string                          { return "test" }

func (d *paymentsDriver) Query(ctx context.Context, query string, args ...any) (*database.RowSet, error) {
	return d.result, nil
}

func (d *paymentsDriver) InTx(ctx context.Context, fn func(q database.Querier) error) error {
	return fn(d)
}

func (d *paymentsDriver) TableSchema(ctx context.Context, table string) (*database.TableSchema, error) {
	return &database.TableSchema{Name: table}, nil
}

func newService(result *database.RowSet) *Service {
	repo := legacy.NewRepository(&paymentsDriver{result: result}, zerolog.Nop())
	return NewService(repo, zerolog.Nop())
}

func TestCustomerPaymentStatistics(t *testing.T) {
	svc := newService(&database.RowSet{
		Columns: []string{"payment_id", "amount"},
		Rows: []database.Row{
			{"payment_id": int64(1), "amount": 50.0},
			{"payment_id": int64(2), "amount": "25.50"}, // decimals arrive as text from MySQL
			{"payment_id": int64(3), "amount": int64(24)},
		},
		RowCount: 3,
	})

	stats := svc.CustomerPaymentStatistics(context.Background(), "42")

	if stats.TotalPayments != 3 {
		t.Errorf("TotalPayments = %d, want 3", stats.TotalPayments)
	}
	if stats.TotalAmountPaid != 99.5 {
		t.Errorf("TotalAmountPaid = %v, want 99.5", stats.TotalAmountPaid)
	}
	if want := 99.5 / 3; stats.AvgPaymentAmount != want {
		t.Errorf("AvgPaymentAmount = %v, want %v", stats.AvgPaymentAmount, want)
	}
}

func TestCustomerPaymentStatisticsEmpty(t *testing.T) {
	svc := newService(&database.RowSet{})

	stats := svc.CustomerPaymentStatistics(context.Background(), "42")
	if stats != (PaymentStatistics{}) {
		t.Errorf("expected zero statistics, got %+v", stats)
	}
}

func TestReportLookup(t *testing.T) {
	svc := newService(&database.RowSet{})

	if _, ok := svc.Lookup("misapplied-customers"); !ok {
		t.Error("expected misapplied-customers report to exist")
	}
	if _, ok := svc.Lookup("nonsense"); ok {
		t.Error("unexpected report found")
	}

	seen := map[string]bool{}
	for _, r := range svc.Reports() {
		if r.Name == "" || r.Description == "" || r.Run == nil {
			t.Errorf("incomplete report entry: %+v", r)
		}
		if seen[r.Name] {
			t.Errorf("duplicate report name %q", r.Name)
		}
		seen[r.Name] = true
	}
}

func TestToFloat(t *testing.T) {
	tests := []struct {
		in   any
		want float64
	}{
		{50.0, 50},
		{float32(2.5), 2.5},
		{int64(7), 7},
		{int32(7), 7},
		{7, 7},
		{"12.25", 12.25},
		{[]byte("3.5"), 3.5},
		{nil, 0},
		{"not a number", 0},
	}

	for _, tt := range tests {
		if got := toFloat(tt.in); got != tt.want {
			t.Errorf("toFloat(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
