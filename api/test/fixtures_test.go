package test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/rahmadiyan/health-store/core/auth"
	"github.com/rahmadiyan/health-store/core/product"
)

// storeFixture is one approved vendor with a stocked product and one
// buyer, ready for checkout tests.
type storeFixture struct {
	VendorEmail string
	VendorPass  string
	VendorID    string

	BuyerEmail string
	BuyerPass  string
	BuyerID    string

	Product product.Product
}

func signupBuyer(t *testing.T, env *TestEnv, tag string) (email, pass, id string) {
	t.Helper()

	email = fmt.Sprintf("buyer-%s@healthstore.test", tag)
	pass = "buyer-password"

	var sess auth.Session
	body := map[string]string{"name": "Buyer " + tag, "email": email, "password": pass}
	if code := env.Do(t, http.MethodPost, "/auth/signup", body, &sess); code != http.StatusCreated {
		t.Fatalf("signing up buyer %s: status %d", tag, code)
	}
	env.Logout(t)

	return email, pass, sess.User.ID
}

// setupStore registers a vendor, has the admin approve it and stocks
// one product.
func setupStore(t *testing.T, env *TestEnv, tag string, stock int, price int64) storeFixture {
	t.Helper()

	fix := storeFixture{
		VendorEmail: fmt.Sprintf("vendor-%s@healthstore.test", tag),
		VendorPass:  "vendor-password",
	}

	var sess auth.Session
	body := map[string]string{
		"name":            "Vendor " + tag,
		"email":           fix.VendorEmail,
		"password":        fix.VendorPass,
		"storeName":       "Toko " + tag,
		"businessAddress": "Jl. Sehat No. 1",
	}
	if code := env.Do(t, http.MethodPost, "/auth/signup-vendor", body, &sess); code != http.StatusCreated {
		t.Fatalf("signing up vendor %s: status %d", tag, code)
	}
	if sess.Vendor == nil {
		t.Fatalf("vendor signup %s: missing vendor profile", tag)
	}
	fix.VendorID = sess.Vendor.ID
	env.Logout(t)

	env.Login(t, env.AdminEmail, env.AdminPass)
	if code := env.Do(t, http.MethodPut, "/vendors/"+fix.VendorID+"/approve", nil, nil); code != http.StatusOK {
		t.Fatalf("approving vendor %s: status %d", tag, code)
	}
	env.Logout(t)

	env.Login(t, fix.VendorEmail, fix.VendorPass)
	prd := map[string]interface{}{
		"name":     "Vitamin C " + tag,
		"category": "supplement",
		"price":    price,
		"stock":    stock,
	}
	if code := env.Do(t, http.MethodPost, "/products", prd, &fix.Product); code != http.StatusCreated {
		t.Fatalf("creating product for vendor %s: status %d", tag, code)
	}
	env.Logout(t)

	fix.BuyerEmail, fix.BuyerPass, fix.BuyerID = signupBuyer(t, env, tag)

	return fix
}
