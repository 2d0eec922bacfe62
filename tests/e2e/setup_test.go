package e2e

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	defaultBaseURL = "http://localhost:8000/api/v0"
	apiToken       = "secret_api_key"

	dbUser     = "sync"
	dbPassword = "sync"
	dbName     = "identities"

	groupID = "g-dba"
	roleDBA = "dba"
)

var testEnv *TestEnvironment

type TestEnvironment struct {
	Postgres   *postgres.PostgresContainer
	DB         *sql.DB
	Cmd        *exec.Cmd
	BaseURL    string
	CancelFunc context.CancelFunc
	BinPath    string
}

func TestMain(m *testing.M) {
	var err error
	// Check if we should use existing deployment
	if os.Getenv("E2E_USE_EXISTING_DEPLOYMENT") == "true" {
		fmt.Println("Using existing deployment...")
		os.Exit(m.Run())
	}

	fmt.Println("Starting test environment...")
	testEnv, err = setupTestEnvironment()
	if err != nil {
		fmt.Printf("Failed to setup test environment: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()
	testEnv.Teardown()
	os.Exit(code)
}

func setupTestEnvironment() (*TestEnvironment, error) {
	var (
		pg      *postgres.PostgresContainer
		db      *sql.DB
		binPath string
	)

	ctx, cancel := context.WithCancel(context.Background())

	cleanup := func() {
		if db != nil {
			db.Close()
		}
		if pg != nil {
			testcontainers.TerminateContainer(pg)
		}
		if binPath != "" {
			os.Remove(binPath)
		}
		cancel()
	}

	rootDir, err := findRootDir()
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("failed to find root dir: %w", err)
	}

	binPath, err = buildApp(rootDir)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("failed to build app: %w", err)
	}

	// The same server hosts the identity cache and the managed accounts
	pg, err = postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("failed to start postgres: %w", err)
	}

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	host, err := pg.Host(ctx)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("failed to get postgres host: %w", err)
	}

	port, err := pg.MappedPort(ctx, "5432/tcp")
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("failed to get postgres port: %w", err)
	}

	db, err = sql.Open("pgx", dsn)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	if _, err := db.ExecContext(ctx, fmt.Sprintf("CREATE ROLE %s NOLOGIN", roleDBA)); err != nil {
		cleanup()
		return nil, fmt.Errorf("failed to create role: %w", err)
	}

	if err := runMigrations(ctx, binPath, dsn); err != nil {
		cleanup()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	envVars := map[string]string{
		"PORT":              "8000",
		"LOG_LEVEL":         "debug",
		"TRACING_ENABLED":   "false",
		"API_TOKEN":         apiToken,
		"AWS_REGION":        "eu-west-1",
		"IDENTITY_STORE_ID": "d-1234567890",
		"GROUP_IDS":         fmt.Sprintf(`{"%s":"%s"}`, groupID, roleDBA),
		"CACHE_BACKEND":     "postgres",
		"DSN":               dsn,
		"RDS_DB_ENGINE":     "postgres",
		"RDS_DB_EP":         host,
		"RDS_DB_PORT":       strconv.Itoa(port.Int()),
		"RDS_DB_USER":       dbUser,
		"RDS_DB_NAME":       dbName,
		"RDS_DB_TLS":        "false",
		"DB_PASSWORD":       dbPassword,
	}

	cmd, err := startServer(ctx, binPath, envVars)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("failed to start server: %w", err)
	}

	if err := waitForHTTP(ctx, "http://localhost:8000/api/v0/status/ready"); err != nil {
		if cmd.Process != nil {
			cmd.Process.Kill()
		}
		cleanup()
		return nil, fmt.Errorf("server not ready: %w", err)
	}

	return &TestEnvironment{
		Postgres:   pg,
		DB:         db,
		Cmd:        cmd,
		BaseURL:    defaultBaseURL,
		CancelFunc: cancel,
		BinPath:    binPath,
	}, nil
}

func (e *TestEnvironment) Teardown() {
	if e.Cmd != nil && e.Cmd.Process != nil {
		e.Cmd.Process.Signal(os.Interrupt)
		e.Cmd.Wait()
	}
	if e.BinPath != "" {
		os.Remove(e.BinPath)
	}
	if e.DB != nil {
		e.DB.Close()
	}
	if e.Postgres != nil {
		testcontainers.TerminateContainer(e.Postgres)
	}
	if e.CancelFunc != nil {
		e.CancelFunc()
	}
}

func findRootDir() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "migrations", "embed.go")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("root dir not found")
		}
		dir = parent
	}
}

func waitForHTTP(ctx context.Context, url string) error {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()
	timeout := time.After(30 * time.Second)
	client := &http.Client{Timeout: 1 * time.Second}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timeout:
			return fmt.Errorf("timeout waiting for %s", url)
		case <-ticker.C:
			resp, err := client.Get(url)
			if err != nil {
				continue
			}
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
	}
}

func runMigrations(ctx context.Context, binPath, dsn string) error {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	timeout := time.After(60 * time.Second)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timeout:
			return fmt.Errorf("timeout waiting for migrations")
		case <-ticker.C:
			cmd := exec.CommandContext(ctx, binPath, "migrate", "up", "--dsn", dsn)
			_, err := cmd.CombinedOutput()
			if err == nil {
				return nil
			}
		}
	}
}

func buildApp(rootDir string) (string, error) {
	binPath := filepath.Join(os.TempDir(), fmt.Sprintf("identity-db-sync-e2e-%d", time.Now().UnixNano()))
	cmd := exec.Command("go", "build", "-o", binPath, ".")
	cmd.Dir = rootDir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return "", err
	}
	return binPath, nil
}

func startServer(ctx context.Context, binPath string, envVars map[string]string) (*exec.Cmd, error) {
	cmd := exec.CommandContext(ctx, binPath, "serve", "--stages", "reconciler")
	cmd.Env = os.Environ()
	for k, v := range envVars {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
	}
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return cmd, nil
}
