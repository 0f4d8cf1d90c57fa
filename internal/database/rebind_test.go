package database

import "testing"

func TestRebindPostgres(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{
			name:  "no placeholders",
			query: "SELECT 1",
			want:  "SELECT 1",
		},
		{
			name:  "single placeholder",
			query: "SELECT * FROM payment WHERE user_id = ?",
			want:  "SELECT * FROM payment WHERE user_id = $1",
		},
		{
			name:  "multiple placeholders",
			query: "SELECT * FROM lesson WHERE date > ? AND status != ? LIMIT ?",
			want:  "SELECT * FROM lesson WHERE date > $1 AND status != $2 LIMIT $3",
		},
		{
			name:  "question mark inside literal untouched",
			query: "SELECT * FROM course WHERE name = 'why?' AND id = ?",
			want:  "SELECT * FROM course WHERE name = 'why?' AND id = $1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Rebind(DialectPostgres, tt.query)
			if got != tt.want {
				t.Errorf("Rebind() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRebindMySQLPassthrough(t *testing.T) {
	q := "SELECT * FROM payment WHERE user_id = ?"
	if got := Rebind(DialectMySQL, q); got != q {
		t.Errorf("Rebind(mysql) changed the query: %q", got)
	}
}
