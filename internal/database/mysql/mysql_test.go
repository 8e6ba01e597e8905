package mysql

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/Amitav-Krishna/dynamic-media-kits/internal/database"
)

func TestMySQLQuoteIdentifier(t *testing.T) {
	h := mysqlHandler{}
	tests := []struct {
		in   string
		want string
	}{
		{"users", "`users`"},
		{"follower_count", "`follower_count`"},
		{"weird`name", "`weird``name`"},
	}
	for _, tt := range tests {
		if got := h.QuoteIdentifier(tt.in); got != tt.want {
			t.Errorf("QuoteIdentifier(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMySQLRebind(t *testing.T) {
	h := mysqlHandler{}
	got := h.Rebind("SELECT * FROM posts WHERE user_id = $1 LIMIT $2")
	want := "SELECT * FROM posts WHERE user_id = ? LIMIT ?"
	if got != want {
		t.Errorf("Rebind() = %q, want %q", got, want)
	}
}

func TestMySQLListColumns(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock database: %v", err)
	}
	defer mockDB.Close()

	rows := sqlmock.NewRows([]string{"COLUMN_NAME", "COLUMN_TYPE"}).
		AddRow("user_id", "char(36)").
		AddRow("follower_count", "int")
	mock.ExpectQuery(`SELECT COLUMN_NAME, COLUMN_TYPE\s+FROM information_schema\.COLUMNS`).
		WithArgs("users").
		WillReturnRows(rows)

	db := &database.DB{Pool: mockDB}
	h := mysqlHandler{}
	cols, err := h.ListColumns(db, "users")
	if err != nil {
		t.Fatalf("ListColumns() error = %v", err)
	}
	if len(cols) != 2 {
		t.Fatalf("ListColumns() returned %d columns, want 2", len(cols))
	}
	if cols[0].Name != "user_id" || cols[0].DataType != "char(36)" {
		t.Errorf("unexpected first column: %+v", cols[0])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestMySQLListColumnsQueryError(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock database: %v", err)
	}
	defer mockDB.Close()

	mock.ExpectQuery(`SELECT COLUMN_NAME, COLUMN_TYPE`).
		WithArgs("users").
		WillReturnError(errors.New("connection lost"))

	db := &database.DB{Pool: mockDB}
	if _, err := (mysqlHandler{}).ListColumns(db, "users"); err == nil {
		t.Error("expected error, got nil")
	}
}
