package testutil

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/lectio/lectio/internal/model"
	"github.com/lectio/lectio/migrations"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 731731

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// ResetSchema applies every down migration in reverse order and then every
// up migration, leaving an empty schema with no migration history.
func ResetSchema(ctx context.Context, pool *pgxpool.Pool) error {
	downs, err := migrationFiles(".down.sql")
	if err != nil {
		return err
	}
	for i := len(downs) - 1; i >= 0; i-- {
		if err := execFile(ctx, pool, downs[i]); err != nil {
			return err
		}
	}
	if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS schema_migrations"); err != nil {
		return fmt.Errorf("drop schema_migrations: %w", err)
	}

	ups, err := migrationFiles(".up.sql")
	if err != nil {
		return err
	}
	for _, name := range ups {
		if err := execFile(ctx, pool, name); err != nil {
			return err
		}
	}

	return nil
}

// DropSchema applies every down migration and removes migration history.
func DropSchema(ctx context.Context, pool *pgxpool.Pool) error {
	downs, err := migrationFiles(".down.sql")
	if err != nil {
		return err
	}
	for i := len(downs) - 1; i >= 0; i-- {
		if err := execFile(ctx, pool, downs[i]); err != nil {
			return err
		}
	}
	if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS schema_migrations"); err != nil {
		return fmt.Errorf("drop schema_migrations: %w", err)
	}
	return nil
}

// TruncateTables empties the given tables and resets their sequences.
func TruncateTables(ctx context.Context, pool *pgxpool.Pool, tables ...string) error {
	if len(tables) == 0 {
		return nil
	}
	quoted := make([]string, len(tables))
	for i, table := range tables {
		quoted[i] = pq.QuoteIdentifier(table)
	}
	query := "TRUNCATE " + strings.Join(quoted, ", ") + " RESTART IDENTITY CASCADE"
	if _, err := pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("truncate tables: %w", err)
	}
	return nil
}

func migrationFiles(suffix string) ([]string, error) {
	files, err := fs.Glob(migrations.FS, "*"+suffix)
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(files)
	return files, nil
}

func execFile(ctx context.Context, pool *pgxpool.Pool, name string) error {
	body, err := fs.ReadFile(migrations.FS, name)
	if err != nil {
		return fmt.Errorf("read migration %s: %w", name, err)
	}
	if _, err := pool.Exec(ctx, string(body)); err != nil {
		return fmt.Errorf("apply migration %s: %w", name, err)
	}
	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ProjectRoot returns the project root directory.
func ProjectRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("failed to resolve testutil path")
	}
	root := filepath.Clean(filepath.Join(filepath.Dir(filename), "..", ".."))
	return root, nil
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestBook creates a test book with sensible defaults.
func NewTestBook(t testing.TB, title string) *model.Book {
	t.Helper()
	return &model.Book{
		Title:     title,
		Author:    "Test Author",
		Publisher: "Test Press",
		Pages:     320,
		ISBN:      fmt.Sprintf("978-%d", time.Now().UnixNano()%1_000_000_000),
		Genres:    []string{"Fiction", "Classic"},
		Synopsis:  "A book used in tests.",
	}
}

// NewTestUser creates a test user with a unique email.
func NewTestUser(t testing.TB, firstName string) *model.User {
	t.Helper()
	return &model.User{
		FirstName:    firstName,
		LastName:     "Tester",
		Email:        UniqueEmail(strings.ToLower(firstName)),
		PasswordHash: "$argon2id$v=19$m=65536,t=1,p=4$c2FsdHNhbHRzYWx0c2FsdA$aGFzaGhhc2hoYXNoaGFzaGhhc2hoYXNoaGFzaGhhc2g",
		Role:         model.RoleStudent,
	}
}

// NewTestClub creates a public test club without a reading.
func NewTestClub(t testing.TB, name string) *model.Club {
	t.Helper()
	return &model.Club{
		Name:        name,
		Description: "A club used in tests.",
		Creator:     "test-user",
	}
}

// NewTestClubWithReading creates a public test club reading bookID at readTime.
func NewTestClubWithReading(t testing.TB, name string, bookID, readTime int64) *model.Club {
	t.Helper()
	club := NewTestClub(t, name)
	club.BookID = &bookID
	club.ReadTime = &readTime
	return club
}

// UniqueEmail generates a unique email address for tests.
func UniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d@example.com", prefix, time.Now().UnixNano())
}

// UniqueID generates a unique ID for tests.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
