package render

import (
	"strings"
	"testing"

	"github.com/mfiorillo/ledgerlens/internal/database"
)

func TestTableBasic(t *testing.T) {
	set := &database.RowSet{
		Columns: []string{"payment_id", "amount", "payment_method"},
		Rows: []database.Row{
			{"payment_id": int64(1), "amount": 50.0, "payment_method": "Credit Card"},
			{"payment_id": int64(2), "amount": 25.5, "payment_method": nil},
		},
		RowCount: 2,
	}

	out := Table(set)

	for _, want := range []string{"payment_id", "amount", "payment_method", "Credit Card", "NULL", "2 row(s)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestTableEmpty(t *testing.T) {
	if out := Table(nil); !strings.Contains(out, "no rows") {
		t.Errorf("nil set should render a notice, got %q", out)
	}
	if out := Table(&database.RowSet{}); !strings.Contains(out, "no rows") {
		t.Errorf("empty set should render a notice, got %q", out)
	}
}

func TestTableTruncatesWideCells(t *testing.T) {
	long := strings.Repeat("x", 120)
	set := &database.RowSet{
		Columns:  []string{"note"},
		Rows:     []database.Row{{"note": long}},
		RowCount: 1,
	}

	out := Table(set)
	if strings.Contains(out, long) {
		t.Error("cell wider than the column cap must be truncated")
	}
	if !strings.Contains(out, "…") {
		t.Error("truncated cell should end with an ellipsis")
	}
}

func TestDetailSortsKeys(t *testing.T) {
	row := database.Row{
		"balance":       120.5,
		"customer_name": "Ada Lovelace",
		"user_id":       int64(42),
	}

	out := Detail(row)
	iBalance := strings.Index(out, "balance")
	iName := strings.Index(out, "customer_name")
	iUser := strings.Index(out, "user_id")
	if iBalance == -1 || iName == -1 || iUser == -1 {
		t.Fatalf("missing keys in output:\n%s", out)
	}
	if !(iBalance < iName && iName < iUser) {
		t.Errorf("keys not sorted:\n%s", out)
	}
	if !strings.Contains(out, "Ada Lovelace") {
		t.Errorf("missing value in output:\n%s", out)
	}
}

func TestDetailEmpty(t *testing.T) {
	if out := Detail(nil); !strings.Contains(out, "not found") {
		t.Errorf("nil row should render a notice, got %q", out)
	}
}

func TestSchema(t *testing.T) {
	schema := &database.TableSchema{
		Name: "payment",
		Columns: []database.Column{
			{Name: "id", DataType: "bigint", IsPrimary: true, OrdinalPos: 1},
			{Name: "amount", DataType: "decimal", IsNullable: true, OrdinalPos: 2},
		},
	}

	out := Schema(schema)
	for _, want := range []string{"payment", "id", "bigint", "amount", "decimal"} {
		if !strings.Contains(out, want) {
			t.Errorf("schema output missing %q:\n%s", want, out)
		}
	}
}
