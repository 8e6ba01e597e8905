package postgres

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/Amitav-Krishna/dynamic-media-kits/internal/database"
)

func TestPostgresQuoteIdentifier(t *testing.T) {
	h := postgresHandler{}
	tests := []struct {
		in   string
		want string
	}{
		{"users", `"users"`},
		{"follower_count", `"follower_count"`},
		{`weird"name`, `"weird""name"`},
	}
	for _, tt := range tests {
		if got := h.QuoteIdentifier(tt.in); got != tt.want {
			t.Errorf("QuoteIdentifier(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPostgresRebindIsNoOp(t *testing.T) {
	h := postgresHandler{}
	query := "SELECT * FROM posts WHERE user_id = $1 LIMIT $2"
	if got := h.Rebind(query); got != query {
		t.Errorf("Rebind() = %q, want unchanged", got)
	}
}

func TestPostgresListTables(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock database: %v", err)
	}
	defer mockDB.Close()

	rows := sqlmock.NewRows([]string{"table_name"}).
		AddRow("posts").
		AddRow("users")
	mock.ExpectQuery(`SELECT table_name\s+FROM information_schema\.tables`).WillReturnRows(rows)

	db := &database.DB{Pool: mockDB}
	tables, err := (postgresHandler{}).ListTables(db)
	if err != nil {
		t.Fatalf("ListTables() error = %v", err)
	}
	if len(tables) != 2 || tables[0] != "posts" || tables[1] != "users" {
		t.Errorf("ListTables() = %v", tables)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresListColumns(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock database: %v", err)
	}
	defer mockDB.Close()

	rows := sqlmock.NewRows([]string{"column_name", "data_type"}).
		AddRow("post_id", "uuid").
		AddRow("view_count", "integer")
	mock.ExpectQuery(`SELECT column_name, data_type\s+FROM information_schema\.columns`).
		WithArgs("posts").
		WillReturnRows(rows)

	db := &database.DB{Pool: mockDB}
	cols, err := (postgresHandler{}).ListColumns(db, "posts")
	if err != nil {
		t.Fatalf("ListColumns() error = %v", err)
	}
	if len(cols) != 2 || cols[1].Name != "view_count" || cols[1].DataType != "integer" {
		t.Errorf("ListColumns() = %+v", cols)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
