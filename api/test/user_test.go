package test

import (
	"net/http"
	"testing"

	"github.com/rahmadiyan/health-store/core/user"
)

func TestUserProfileUpdate(t *testing.T) {
	env, err := NewTestEnv(t, "user_profile")
	if err != nil {
		t.Fatalf("initializing test env: %v", err)
	}

	if code := env.Do(t, http.MethodPut, "/users/me", map[string]string{"name": "X"}, nil); code != http.StatusUnauthorized {
		t.Fatalf("anonymous profile update: status %d, want 401", code)
	}

	email, pass, id := signupBuyer(t, env, "profile")
	env.Login(t, email, pass)

	up := map[string]string{
		"name":    "Rina Wati",
		"phone":   "0812999888",
		"address": "Jl. Cihampelas No. 45, Bandung",
	}
	var updated user.User
	if code := env.Do(t, http.MethodPut, "/users/me", up, &updated); code != http.StatusOK {
		t.Fatalf("updating profile: status %d", code)
	}
	if updated.Name != up["name"] || updated.Phone != up["phone"] || updated.Address != up["address"] {
		t.Fatalf("unexpected updated profile: %+v", updated)
	}
	if updated.ID != id || updated.Email != email || updated.Role != "user" {
		t.Fatalf("profile update touched identity fields: %+v", updated)
	}

	// A partial update leaves the other fields alone.
	var again user.User
	if code := env.Do(t, http.MethodPut, "/users/me", map[string]string{"phone": "0812000000"}, &again); code != http.StatusOK {
		t.Fatalf("partial profile update: status %d", code)
	}
	if again.Name != up["name"] || again.Address != up["address"] || again.Phone != "0812000000" {
		t.Fatalf("partial update clobbered fields: %+v", again)
	}

	if code := env.Do(t, http.MethodPut, "/users/me", map[string]string{"name": ""}, nil); code != http.StatusBadRequest {
		t.Fatalf("blanking the name: status %d, want 400", code)
	}

	var me user.User
	if code := env.Do(t, http.MethodGet, "/users/current", nil, &me); code != http.StatusOK {
		t.Fatalf("fetching current user: status %d", code)
	}
	if me.Name != up["name"] || me.Phone != "0812000000" || me.Address != up["address"] {
		t.Fatalf("persisted profile mismatch: %+v", me)
	}
}

func TestUserList(t *testing.T) {
	env, err := NewTestEnv(t, "user_list")
	if err != nil {
		t.Fatalf("initializing test env: %v", err)
	}

	email, pass, id := signupBuyer(t, env, "listed")

	env.Login(t, email, pass)
	if code := env.Do(t, http.MethodGet, "/users", nil, nil); code != http.StatusForbidden {
		t.Fatalf("buyer listing users: status %d, want 403", code)
	}
	env.Logout(t)

	env.Login(t, env.AdminEmail, env.AdminPass)
	var users []user.User
	if code := env.Do(t, http.MethodGet, "/users", nil, &users); code != http.StatusOK {
		t.Fatalf("admin listing users: status %d", code)
	}
	if len(users) != 2 {
		t.Fatalf("user listing has %d entries, want 2", len(users))
	}

	found := false
	for _, u := range users {
		if u.ID == id && u.Email == email {
			found = true
		}
	}
	if !found {
		t.Fatalf("buyer %s missing from user listing", email)
	}
}
