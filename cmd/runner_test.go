package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/artx/internal/models"
	"github.com/desertthunder/artx/internal/shared"
	mock "github.com/desertthunder/artx/internal/testing"
	"github.com/urfave/cli/v3"
)

// testRunner builds a Runner writing to a buffer and backed by a temp-dir database.
func testRunner(t *testing.T, catalog *mock.MockCatalog) (*Runner, *bytes.Buffer) {
	t.Helper()

	config := shared.DefaultConfig()
	config.Database.Path = filepath.Join(t.TempDir(), "artx.db")
	config.Sync.Artists = []string{"a"}

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Config:  config,
		Catalog: catalog,
		Logger:  shared.NewLogger(output),
		Output:  output,
	})

	return runner, output
}

// runCommand executes the named command path against a fresh app instance.
func runCommand(t *testing.T, r *Runner, args ...string) error {
	t.Helper()

	app := &cli.Command{Name: "artx", Commands: r.register()}
	return app.Run(context.Background(), append([]string{"artx"}, args...))
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			catalog := &mock.MockCatalog{}

			runner := NewRunner(RunnerOpts{
				Config:  config,
				Catalog: catalog,
				Logger:  logger,
				Output:  output,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.catalog != catalog {
				t.Error("expected catalog to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.output == nil {
				t.Error("expected default output to be set")
			}
		})
	})

	t.Run("Setup", func(t *testing.T) {
		t.Run("creates schema", func(t *testing.T) {
			runner, _ := testRunner(t, &mock.MockCatalog{})

			configPath := writeTestConfig(t, runner.config.Database.Path)
			if err := runCommand(t, runner, "setup", "--config", configPath); err != nil {
				t.Fatalf("setup failed: %v", err)
			}

			db, err := shared.NewDatabase(runner.config.Database.Path)
			if err != nil {
				t.Fatalf("failed to open database: %v", err)
			}
			defer db.Close()

			var count int
			if err := db.QueryRow("SELECT COUNT(*) FROM artists").Scan(&count); err != nil {
				t.Errorf("expected artists table to exist: %v", err)
			}
		})

		t.Run("rollback drops schema", func(t *testing.T) {
			runner, _ := testRunner(t, &mock.MockCatalog{})

			configPath := writeTestConfig(t, runner.config.Database.Path)
			if err := runCommand(t, runner, "setup", "--config", configPath); err != nil {
				t.Fatalf("setup failed: %v", err)
			}
			if err := runCommand(t, runner, "setup", "--config", configPath, "--rollback"); err != nil {
				t.Fatalf("rollback failed: %v", err)
			}

			db, err := shared.NewDatabase(runner.config.Database.Path)
			if err != nil {
				t.Fatalf("failed to open database: %v", err)
			}
			defer db.Close()

			var count int
			if err := db.QueryRow("SELECT COUNT(*) FROM artists").Scan(&count); err == nil {
				t.Error("expected artists table to be dropped")
			}
		})
	})

	t.Run("Token Show", func(t *testing.T) {
		t.Run("without credential prints hint", func(t *testing.T) {
			runner, output := testRunner(t, &mock.MockCatalog{})
			setupRunnerDatabase(t, runner)

			if err := runCommand(t, runner, "token", "show"); err != nil {
				t.Fatalf("token show failed: %v", err)
			}
			if !strings.Contains(output.String(), "no credential stored") {
				t.Errorf("expected hint, got %q", output.String())
			}
		})
	})

	t.Run("Sync", func(t *testing.T) {
		t.Run("without credential fails", func(t *testing.T) {
			runner, _ := testRunner(t, &mock.MockCatalog{})
			setupRunnerDatabase(t, runner)

			if err := runCommand(t, runner, "sync"); err == nil {
				t.Error("expected sync without credential to fail")
			}
		})

		t.Run("prints merged artists", func(t *testing.T) {
			catalog := &mock.MockCatalog{Artists: []models.Artist{{
				ID:   "a",
				Kind: "artist",
				Name: "test artist a",
			}}}
			runner, output := testRunner(t, catalog)
			setupRunnerDatabase(t, runner)
			storeCredential(t, runner)

			if err := runCommand(t, runner, "sync"); err != nil {
				t.Fatalf("sync failed: %v", err)
			}

			line := lastLine(output.String())
			var merged []models.Artist
			if err := json.Unmarshal([]byte(line), &merged); err != nil {
				t.Fatalf("failed to decode output %q: %v", line, err)
			}
			if len(merged) != 1 || merged[0].ID != "a" {
				t.Errorf("expected one merged artist, got %+v", merged)
			}
		})
	})

	t.Run("Artists List", func(t *testing.T) {
		t.Run("prints empty list", func(t *testing.T) {
			runner, output := testRunner(t, &mock.MockCatalog{})
			setupRunnerDatabase(t, runner)

			if err := runCommand(t, runner, "artists", "list"); err != nil {
				t.Fatalf("artists list failed: %v", err)
			}
			if line := lastLine(output.String()); line != "[]" {
				t.Errorf("expected empty list, got %q", line)
			}
		})
	})
}

// writeTestConfig writes a minimal config file pointing at the given database path.
func writeTestConfig(t *testing.T, dbPath string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.toml")
	contents := fmt.Sprintf("[database]\npath = %q\n", dbPath)
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	return path
}

func setupRunnerDatabase(t *testing.T, r *Runner) {
	t.Helper()

	db, err := r.openDatabase()
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
}

func storeCredential(t *testing.T, r *Runner) {
	t.Helper()

	db, err := r.openDatabase()
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	cred := &models.Credential{
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiresIn:    3600,
		TokenType:    "Bearer",
		IssuedAt:     time.Now().UTC(),
	}
	if _, err := db.Exec(
		"INSERT INTO auth_tokens (access_token, refresh_token, expires_in, scope, token_type, issued_at) VALUES (?, ?, ?, ?, ?, ?)",
		cred.AccessToken, cred.RefreshToken, cred.ExpiresIn, cred.Scope, cred.TokenType, cred.IssuedAt,
	); err != nil {
		t.Fatalf("failed to store credential: %v", err)
	}
}

// lastLine returns the final non-empty line of buffered output, skipping log lines.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return lines[len(lines)-1]
}
