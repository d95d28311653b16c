// Package testutil holds helpers shared by handler and repository tests.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"bookshelf/internal/platform/crypto"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/lock"
)

// TestSecret signs tokens in handler tests.
const TestSecret = "test-secret-at-least-16-chars"

// NewTokenIssuer returns an issuer using TestSecret and a one hour ttl.
func NewTokenIssuer() *crypto.TokenIssuer {
	return crypto.NewTokenIssuer(TestSecret, time.Hour)
}

// IssueTestToken signs a token for the given identity.
func IssueTestToken(t testing.TB, userID, username, email string) string {
	t.Helper()
	token, err := NewTokenIssuer().Issue(userID, username, email)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

// UniqueName returns prefix followed by a short random suffix, for rows in a
// shared test database.
func UniqueName(prefix string) string {
	return prefix + "-" + uuid.NewString()[:8]
}

// OpenTestDB connects to TEST_DB_DSN and applies the migrations. The test is
// skipped when the variable is unset or the database is unreachable.
func OpenTestDB(t testing.TB) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("Skipping test: TEST_DB_DSN not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Skipf("Skipping test: cannot connect to test database: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		t.Skipf("Skipping test: cannot ping test database: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := migrate(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return pool
}

// migrate runs goose under a session lock so packages tested in parallel do
// not race on the version table.
func migrate(ctx context.Context, pool *pgxpool.Pool) error {
	locker, err := lock.NewPostgresSessionLocker()
	if err != nil {
		return err
	}
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, os.DirFS(MigrationsDir()),
		goose.WithSessionLocker(locker))
	if err != nil {
		return err
	}
	_, err = provider.Up(ctx)
	return err
}

// MigrationsDir returns the absolute path of db/migrations.
func MigrationsDir() string {
	_, thisFile, _, _ := runtime.Caller(0)
	return filepath.Clean(filepath.Join(filepath.Dir(thisFile), "..", "..", "db", "migrations"))
}

// NewRequest creates a new HTTP request for testing
func NewRequest(method, path string, body any) *http.Request {
	var r *http.Request
	if body != nil {
		bodyBytes, _ := json.Marshal(body)
		r = httptest.NewRequest(method, path, bytes.NewReader(bodyBytes))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	return r
}

// NewRequestWithAuth creates a new HTTP request with a bearer token
func NewRequestWithAuth(method, path string, body any, token string) *http.Request {
	r := NewRequest(method, path, body)
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	return r
}

// RecordResponse is a decoded response envelope.
type RecordResponse struct {
	Code    int
	Header  http.Header
	Success bool
	Data    json.RawMessage
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"details"`
	}
	Meta map[string]any
}

// RecordHTTPResponse decodes the response envelope written to w.
func RecordHTTPResponse(w *httptest.ResponseRecorder) RecordResponse {
	result := w.Result()
	defer result.Body.Close()

	bodyBytes, _ := io.ReadAll(result.Body)

	var env struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   json.RawMessage `json:"error"`
		Meta    map[string]any  `json:"meta"`
	}
	rec := RecordResponse{Code: result.StatusCode, Header: result.Header}
	if len(bodyBytes) == 0 || json.Unmarshal(bodyBytes, &env) != nil {
		return rec
	}
	rec.Success = env.Success
	rec.Data = env.Data
	rec.Meta = env.Meta
	if len(env.Error) > 0 {
		_ = json.Unmarshal(env.Error, &rec.Error)
	}
	return rec
}

// DecodeData unmarshals the envelope data into dst.
func (r RecordResponse) DecodeData(t testing.TB, dst any) {
	t.Helper()
	if err := json.Unmarshal(r.Data, dst); err != nil {
		t.Fatalf("decode data %s: %v", r.Data, err)
	}
}
