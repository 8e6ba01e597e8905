package sqlserver

import "testing"

func TestSQLServerQuoteIdentifier(t *testing.T) {
	h := sqlServerHandler{}
	tests := []struct {
		in   string
		want string
	}{
		{"users", "[users]"},
		{"follower_count", "[follower_count]"},
	}
	for _, tt := range tests {
		if got := h.QuoteIdentifier(tt.in); got != tt.want {
			t.Errorf("QuoteIdentifier(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSQLServerRebind(t *testing.T) {
	h := sqlServerHandler{}
	got := h.Rebind("SELECT * FROM posts WHERE user_id = $1 AND view_count > $2")
	want := "SELECT * FROM posts WHERE user_id = @p1 AND view_count > @p2"
	if got != want {
		t.Errorf("Rebind() = %q, want %q", got, want)
	}
}
