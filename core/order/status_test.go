package order

import "testing"

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{Pending, Processing, Shipped, Completed, Cancelled} {
		if !s.Valid() {
			t.Errorf("status %q reported invalid", s)
		}
	}
	for _, s := range []Status{"", "terbang", "PENDING", "paid"} {
		if s.Valid() {
			t.Errorf("status %q reported valid", s)
		}
	}
}

func TestStatusCanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{Pending, Processing, true},
		{Pending, Cancelled, true},
		{Pending, Shipped, false},
		{Processing, Shipped, true},
		{Processing, Cancelled, true},
		{Processing, Completed, false},
		{Shipped, Completed, true},
		{Shipped, Cancelled, false},
		{Completed, Pending, false},
		{Cancelled, Processing, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransition(tt.to); got != tt.want {
			t.Errorf("%s -> %s: got %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}
