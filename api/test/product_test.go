package test

import (
	"net/http"
	"testing"
	"time"

	"github.com/rahmadiyan/health-store/core/auth"
	"github.com/rahmadiyan/health-store/core/product"
	"github.com/rahmadiyan/health-store/validate"
)

func TestProductVendorApproval(t *testing.T) {
	env, err := NewTestEnv(t, "product_approval")
	if err != nil {
		t.Fatalf("initializing test env: %v", err)
	}

	body := map[string]string{
		"name":            "Vendor Baru",
		"email":           "vendor-new@healthstore.test",
		"password":        "vendor-password",
		"storeName":       "Toko Baru",
		"businessAddress": "Jl. Kenanga No. 7",
	}
	var sess auth.Session
	if code := env.Do(t, http.MethodPost, "/auth/signup-vendor", body, &sess); code != http.StatusCreated {
		t.Fatalf("signing up vendor: status %d", code)
	}
	if sess.Vendor == nil || sess.Vendor.IsApproved {
		t.Fatalf("fresh vendor application: %+v", sess.Vendor)
	}

	prd := map[string]interface{}{
		"name":     "Minyak Kayu Putih",
		"category": "topical",
		"price":    int64(25000),
		"stock":    20,
	}

	// Signup leaves the vendor authenticated but unapproved.
	if code := env.Do(t, http.MethodPost, "/products", prd, nil); code != http.StatusForbidden {
		t.Fatalf("unapproved vendor creating product: status %d, want 403", code)
	}
	env.Logout(t)

	env.Login(t, env.AdminEmail, env.AdminPass)
	if code := env.Do(t, http.MethodPut, "/vendors/"+sess.Vendor.ID+"/approve", nil, nil); code != http.StatusOK {
		t.Fatalf("approving vendor: status %d", code)
	}
	env.Logout(t)

	// Approval mails the applicant in the background.
	if ok := waitFor(t, 3*time.Second, func() bool { return len(env.Mailer.Sent()) == 1 }); !ok {
		t.Fatalf("approval email: got %d sends, want 1", len(env.Mailer.Sent()))
	}
	if to := env.Mailer.Sent()[0].To; to != body["email"] {
		t.Fatalf("approval email recipient: got %s, want %s", to, body["email"])
	}

	// The promoted role takes effect on the next login.
	env.Login(t, body["email"], body["password"])
	var created product.Product
	if code := env.Do(t, http.MethodPost, "/products", prd, &created); code != http.StatusCreated {
		t.Fatalf("approved vendor creating product: status %d", code)
	}
	if created.VendorID != sess.Vendor.ID {
		t.Fatalf("product vendor: got %s, want %s", created.VendorID, sess.Vendor.ID)
	}
	if created.Slug != "minyak-kayu-putih" {
		t.Fatalf("product slug: got %s", created.Slug)
	}
	if created.Brand != "Generic" {
		t.Fatalf("product brand default: got %s", created.Brand)
	}

	// Names must be unique per catalog.
	if code := env.Do(t, http.MethodPost, "/products", prd, nil); code != http.StatusBadRequest {
		t.Fatalf("duplicate product name: status %d, want 400", code)
	}
	env.Logout(t)

	if got := fetchProduct(t, env, created.ID); got.Name != created.Name {
		t.Fatalf("fetched product name: got %s, want %s", got.Name, created.Name)
	}
	if code := env.Do(t, http.MethodGet, "/products/"+validate.GenerateID(), nil, nil); code != http.StatusNotFound {
		t.Fatalf("fetching unknown product: status %d, want 404", code)
	}
}

func TestProductOwnership(t *testing.T) {
	env, err := NewTestEnv(t, "product_ownership")
	if err != nil {
		t.Fatalf("initializing test env: %v", err)
	}

	fix := setupStore(t, env, "own1", 10, 30000)
	other := setupStore(t, env, "own2", 10, 40000)

	up := map[string]interface{}{"stock": 99}

	// Another vendor cannot touch the listing.
	env.Login(t, other.VendorEmail, other.VendorPass)
	if code := env.Do(t, http.MethodPut, "/products/"+fix.Product.ID, up, nil); code != http.StatusForbidden {
		t.Fatalf("foreign vendor updating product: status %d, want 403", code)
	}
	if code := env.Do(t, http.MethodDelete, "/products/"+fix.Product.ID, nil, nil); code != http.StatusForbidden {
		t.Fatalf("foreign vendor deleting product: status %d, want 403", code)
	}
	env.Logout(t)

	// Neither can a buyer.
	env.Login(t, fix.BuyerEmail, fix.BuyerPass)
	if code := env.Do(t, http.MethodPut, "/products/"+fix.Product.ID, up, nil); code != http.StatusForbidden {
		t.Fatalf("buyer updating product: status %d, want 403", code)
	}
	env.Logout(t)

	// The owner and the admin can.
	env.Login(t, fix.VendorEmail, fix.VendorPass)
	var updated product.Product
	if code := env.Do(t, http.MethodPut, "/products/"+fix.Product.ID, up, &updated); code != http.StatusOK {
		t.Fatalf("owner updating product: status %d", code)
	}
	if updated.Stock != 99 {
		t.Fatalf("updated stock: got %d, want 99", updated.Stock)
	}
	if updated.Price != fix.Product.Price {
		t.Fatalf("partial update touched price: got %d, want %d", updated.Price, fix.Product.Price)
	}
	env.Logout(t)

	env.Login(t, env.AdminEmail, env.AdminPass)
	if code := env.Do(t, http.MethodDelete, "/products/"+other.Product.ID, nil, nil); code != http.StatusNoContent {
		t.Fatalf("admin deleting product: status %d, want 204", code)
	}
	env.Logout(t)

	if code := env.Do(t, http.MethodGet, "/products/"+other.Product.ID, nil, nil); code != http.StatusNotFound {
		t.Fatalf("fetching deleted product: status %d, want 404", code)
	}
}

func TestProductListing(t *testing.T) {
	env, err := NewTestEnv(t, "product_listing")
	if err != nil {
		t.Fatalf("initializing test env: %v", err)
	}

	fix := setupStore(t, env, "lista", 5, 10000)
	other := setupStore(t, env, "listb", 5, 20000)

	env.Login(t, other.VendorEmail, other.VendorPass)
	extra := map[string]interface{}{
		"name":     "Obat Batuk Herbal",
		"category": "medicine",
		"price":    int64(18000),
		"stock":    7,
	}
	if code := env.Do(t, http.MethodPost, "/products", extra, nil); code != http.StatusCreated {
		t.Fatalf("creating extra product: status %d", code)
	}
	env.Logout(t)

	var all []product.Product
	if code := env.Do(t, http.MethodGet, "/products", nil, &all); code != http.StatusOK {
		t.Fatalf("listing products: status %d", code)
	}
	if len(all) != 3 {
		t.Fatalf("listing products: got %d, want 3", len(all))
	}

	var byVendor []product.Product
	if code := env.Do(t, http.MethodGet, "/products?vendor="+fix.VendorID, nil, &byVendor); code != http.StatusOK {
		t.Fatalf("listing by vendor: status %d", code)
	}
	if len(byVendor) != 1 || byVendor[0].ID != fix.Product.ID {
		t.Fatalf("listing by vendor: %+v", byVendor)
	}

	var byCategory []product.Product
	if code := env.Do(t, http.MethodGet, "/products?category=medicine", nil, &byCategory); code != http.StatusOK {
		t.Fatalf("listing by category: status %d", code)
	}
	if len(byCategory) != 1 || byCategory[0].Name != "Obat Batuk Herbal" {
		t.Fatalf("listing by category: %+v", byCategory)
	}

	var bySearch []product.Product
	if code := env.Do(t, http.MethodGet, "/products?search=batuk", nil, &bySearch); code != http.StatusOK {
		t.Fatalf("searching products: status %d", code)
	}
	if len(bySearch) != 1 || bySearch[0].Name != "Obat Batuk Herbal" {
		t.Fatalf("searching products: %+v", bySearch)
	}

	var paged []product.Product
	if code := env.Do(t, http.MethodGet, "/products?limit=2&page=2", nil, &paged); code != http.StatusOK {
		t.Fatalf("paging products: status %d", code)
	}
	if len(paged) != 1 {
		t.Fatalf("paging products: got %d on page 2, want 1", len(paged))
	}
}
