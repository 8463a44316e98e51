package test

import (
	"net/http"
	"testing"

	"github.com/rahmadiyan/health-store/core/wishlist"
	"github.com/rahmadiyan/health-store/validate"
)

func TestWishlist(t *testing.T) {
	env, err := NewTestEnv(t, "wishlist")
	if err != nil {
		t.Fatalf("initializing test env: %v", err)
	}

	fix := setupStore(t, env, "wish", 5, 45000)

	if code := env.Do(t, http.MethodGet, "/wishlist", nil, nil); code != http.StatusUnauthorized {
		t.Fatalf("anonymous wishlist: status %d, want 401", code)
	}

	env.Login(t, fix.BuyerEmail, fix.BuyerPass)

	var items []wishlist.Entry
	if code := env.Do(t, http.MethodGet, "/wishlist", nil, &items); code != http.StatusOK {
		t.Fatalf("listing empty wishlist: status %d", code)
	}
	if len(items) != 0 {
		t.Fatalf("fresh wishlist has %d entries", len(items))
	}

	add := map[string]string{"productId": fix.Product.ID}
	var entry wishlist.Entry
	if code := env.Do(t, http.MethodPost, "/wishlist", add, &entry); code != http.StatusCreated {
		t.Fatalf("saving product: status %d", code)
	}
	if entry.Product.ID != fix.Product.ID {
		t.Fatalf("saved entry product: got %s, want %s", entry.Product.ID, fix.Product.ID)
	}

	// Saving twice is an error, not a second row.
	if code := env.Do(t, http.MethodPost, "/wishlist", add, nil); code != http.StatusBadRequest {
		t.Fatalf("saving product twice: status %d, want 400", code)
	}
	if code := env.Do(t, http.MethodPost, "/wishlist", map[string]string{"productId": validate.GenerateID()}, nil); code != http.StatusNotFound {
		t.Fatalf("saving unknown product: status %d, want 404", code)
	}

	var check struct {
		InWishlist bool `json:"inWishlist"`
	}
	if code := env.Do(t, http.MethodGet, "/wishlist/check/"+fix.Product.ID, nil, &check); code != http.StatusOK {
		t.Fatalf("checking product: status %d", code)
	}
	if !check.InWishlist {
		t.Fatalf("saved product reported as absent")
	}
	if code := env.Do(t, http.MethodGet, "/wishlist/check/"+validate.GenerateID(), nil, &check); code != http.StatusOK {
		t.Fatalf("checking absent product: status %d", code)
	}
	if check.InWishlist {
		t.Fatalf("absent product reported as saved")
	}

	if code := env.Do(t, http.MethodGet, "/wishlist", nil, &items); code != http.StatusOK {
		t.Fatalf("listing wishlist: status %d", code)
	}
	if len(items) != 1 {
		t.Fatalf("wishlist has %d entries, want 1", len(items))
	}

	// Each buyer has their own list.
	env.Logout(t)
	otherEmail, otherPass, _ := signupBuyer(t, env, "wish2")
	env.Login(t, otherEmail, otherPass)
	if code := env.Do(t, http.MethodGet, "/wishlist", nil, &items); code != http.StatusOK {
		t.Fatalf("listing other buyer's wishlist: status %d", code)
	}
	if len(items) != 0 {
		t.Fatalf("other buyer sees %d entries, want 0", len(items))
	}
	env.Logout(t)

	env.Login(t, fix.BuyerEmail, fix.BuyerPass)
	if code := env.Do(t, http.MethodDelete, "/wishlist/"+fix.Product.ID, nil, nil); code != http.StatusNoContent {
		t.Fatalf("removing product: status %d, want 204", code)
	}
	if code := env.Do(t, http.MethodDelete, "/wishlist/"+fix.Product.ID, nil, nil); code != http.StatusNotFound {
		t.Fatalf("removing product twice: status %d, want 404", code)
	}

	if code := env.Do(t, http.MethodPost, "/wishlist", add, nil); code != http.StatusCreated {
		t.Fatalf("saving product again: status %d", code)
	}
	if code := env.Do(t, http.MethodDelete, "/wishlist", nil, nil); code != http.StatusNoContent {
		t.Fatalf("clearing wishlist: status %d, want 204", code)
	}
	if code := env.Do(t, http.MethodGet, "/wishlist", nil, &items); code != http.StatusOK {
		t.Fatalf("listing cleared wishlist: status %d", code)
	}
	if len(items) != 0 {
		t.Fatalf("cleared wishlist has %d entries", len(items))
	}
}
