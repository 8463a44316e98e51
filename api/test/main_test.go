package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/jmoiron/sqlx"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/rahmadiyan/health-store/api"
	"github.com/rahmadiyan/health-store/api/background"
	"github.com/rahmadiyan/health-store/config"
	"github.com/rahmadiyan/health-store/core/claims"
	"github.com/rahmadiyan/health-store/core/user"
	"github.com/rahmadiyan/health-store/database"
	"github.com/rahmadiyan/health-store/validate"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var pgHost string

func TestMain(m *testing.M) {
	os.Exit(run(m))
}

func run(m *testing.M) int {
	pool, err := dockertest.NewPool("")
	if err != nil {
		fmt.Printf("could not connect to docker: %v\n", err)
		return 1
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "15-alpine",
		Env: []string{
			"POSTGRES_USER=postgres",
			"POSTGRES_PASSWORD=postgres",
			"POSTGRES_DB=postgres",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		fmt.Printf("could not start postgres: %v\n", err)
		return 1
	}
	defer pool.Purge(resource)

	resource.Expire(600)

	pgHost = "localhost:" + resource.GetPort("5432/tcp")

	err = pool.Retry(func() error {
		db, err := database.Open(rootDBConfig("postgres"))
		if err != nil {
			return err
		}
		defer db.Close()
		return db.Ping()
	})
	if err != nil {
		fmt.Printf("could not reach postgres: %v\n", err)
		return 1
	}

	return m.Run()
}

func rootDBConfig(name string) config.DB {
	return config.DB{
		User:       "postgres",
		Password:   "postgres",
		Host:       pgHost,
		Name:       name,
		DisableTLS: true,
	}
}

// MailRecorder is a Mailer that captures sends and can be told to fail.
type MailRecorder struct {
	mu   sync.Mutex
	sent []Mail
	fail bool
}

type Mail struct {
	To      string
	Subject string
	Body    string
}

func (m *MailRecorder) Send(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.fail {
		return fmt.Errorf("smtp unreachable")
	}

	m.sent = append(m.sent, Mail{To: to, Subject: subject, Body: body})
	return nil
}

func (m *MailRecorder) Sent() []Mail {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Mail, len(m.sent))
	copy(out, m.sent)
	return out
}

func (m *MailRecorder) Fail(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = fail
}

type TestEnv struct {
	DB     *sqlx.DB
	Server *httptest.Server
	URL    string
	Mailer *MailRecorder

	AdminEmail string
	AdminPass  string

	client *http.Client
}

// NewTestEnv creates a fresh database inside the shared container,
// migrates it, seeds an admin account and mounts the API on a test
// server.
func NewTestEnv(t *testing.T, name string) (*TestEnv, error) {
	t.Helper()

	root, err := database.Open(rootDBConfig("postgres"))
	if err != nil {
		return nil, fmt.Errorf("opening root db: %w", err)
	}
	defer root.Close()

	if _, err := root.Exec("CREATE DATABASE " + name); err != nil {
		return nil, fmt.Errorf("creating database %s: %w", name, err)
	}

	db, err := database.Open(rootDBConfig(name))
	if err != nil {
		return nil, fmt.Errorf("opening db %s: %w", name, err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("migrating db %s: %w", name, err)
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	session := scs.New()
	session.Lifetime = time.Hour

	mailer := &MailRecorder{}

	env := &TestEnv{
		DB:         db,
		Mailer:     mailer,
		AdminEmail: "admin@healthstore.test",
		AdminPass:  "admin-password",
	}

	if err := env.seedAdmin(); err != nil {
		return nil, fmt.Errorf("seeding admin: %w", err)
	}

	mux := api.APIMux(api.APIConfig{
		Log:        logger,
		DB:         db,
		Session:    session,
		Mailer:     mailer,
		Background: background.New(logger),
	})

	env.Server = httptest.NewServer(mux)
	t.Cleanup(env.Server.Close)
	env.URL = env.Server.URL

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}
	env.client = &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return env, nil
}

func (te *TestEnv) seedAdmin() error {
	hash, err := bcrypt.GenerateFromPassword([]byte(te.AdminPass), bcrypt.MinCost)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	return user.Create(context.Background(), te.DB, user.User{
		ID:           validate.GenerateID(),
		Name:         "Admin",
		Email:        te.AdminEmail,
		PasswordHash: hash,
		Role:         claims.RoleAdmin,
		Status:       "active",
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

func (te *TestEnv) Client() *http.Client {
	return te.client
}

// Do performs a JSON request with the env's cookie-bearing client and
// decodes the response into out when it is non-nil.
func (te *TestEnv) Do(t *testing.T, method, path string, body interface{}, out interface{}) int {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshaling request body: %v", err)
		}
		rd = bytes.NewReader(b)
	}

	r, err := http.NewRequest(method, te.URL+path, rd)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}

	w, err := te.client.Do(r)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer w.Body.Close()

	if out != nil && w.StatusCode < 300 {
		if err := json.NewDecoder(w.Body).Decode(out); err != nil {
			t.Fatalf("decoding %s %s response: %v", method, path, err)
		}
	}

	return w.StatusCode
}

func (te *TestEnv) Login(t *testing.T, email, password string) {
	t.Helper()

	body := map[string]string{"email": email, "password": password}
	if code := te.Do(t, http.MethodPost, "/auth/login", body, nil); code != http.StatusOK {
		t.Fatalf("login as %s: status %d", email, code)
	}
}

func (te *TestEnv) Logout(t *testing.T) {
	t.Helper()

	if code := te.Do(t, http.MethodPost, "/auth/logout", nil, nil); code != http.StatusNoContent {
		t.Fatalf("logout: status %d", code)
	}
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}
