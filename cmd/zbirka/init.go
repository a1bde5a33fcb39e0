package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/erazemk/zbirka/internal/auth"
	"github.com/erazemk/zbirka/internal/db"
	"github.com/erazemk/zbirka/internal/store"
)

const accessKeyLength = 24

func (c *cli) newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the database and print the access key",
		Args:  args(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := c.dbPath()
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil {
				return usageError{fmt.Errorf("database %s already exists", path)}
			}

			database, key, err := initDatabase(cmd.Context(), path)
			if err != nil {
				return err
			}
			database.Close()

			printInitResult(c.out, path, key)
			return nil
		},
	}
}

// initDatabase creates a new database, applies the schema and stores a
// fresh access key, which is returned in plain text.
func initDatabase(ctx context.Context, path string) (*sql.DB, string, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, "", fmt.Errorf("creating data dir: %w", err)
	}

	database, err := db.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("opening database: %w", err)
	}

	fail := func(err error) (*sql.DB, string, error) {
		database.Close()
		os.Remove(path)
		return nil, "", err
	}

	if err := db.Migrate(database); err != nil {
		return fail(fmt.Errorf("running migrations: %w", err))
	}

	key, err := auth.GenerateAccessKey(accessKeyLength)
	if err != nil {
		return fail(fmt.Errorf("generating access key: %w", err))
	}
	hash, err := auth.HashAccessKey(key)
	if err != nil {
		return fail(fmt.Errorf("hashing access key: %w", err))
	}
	if err := store.SetAccessKeyHash(ctx, database, hash); err != nil {
		return fail(fmt.Errorf("storing access key: %w", err))
	}
	if _, err := store.GetJWTSecret(ctx, database); err != nil {
		return fail(fmt.Errorf("creating signing secret: %w", err))
	}

	return database, key, nil
}

func printInitResult(w io.Writer, path, key string) {
	fmt.Fprintf(w, "Database created: %s\n", path)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Access key: %s\n", key)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Save this key. It is shown only once and cannot be recovered.")
}
