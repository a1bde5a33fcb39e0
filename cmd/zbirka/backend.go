package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/erazemk/zbirka/internal/backend"
	"github.com/erazemk/zbirka/internal/client"
	"github.com/erazemk/zbirka/internal/db"
)

var errNeedsRemote = errors.New("no server configured; pass --remote or set remote in config.yaml")

// openBackend returns the remote client when a server is configured and
// the local database otherwise. The returned close function releases it.
func (c *cli) openBackend() (backend.Backend, func(), error) {
	if remote := c.cfg.GetString(cfgKeyRemote); remote != "" {
		cl, err := c.newClient(remote)
		if err != nil {
			return nil, nil, err
		}
		return cl, func() {}, nil
	}

	database, err := c.openDB()
	if err != nil {
		return nil, nil, err
	}
	return backend.NewLocal(database), func() { database.Close() }, nil
}

func (c *cli) newClient(remote string) (*client.Client, error) {
	cfg, err := client.ConfigFromEnv()
	if err != nil {
		return nil, fmt.Errorf("loading client config: %w", err)
	}
	opts := []client.Option{client.WithConfig(cfg)}
	if token := c.cfg.GetString(cfgKeyToken); token != "" {
		opts = append(opts, client.WithToken(token))
	}
	return client.New(remote, opts...)
}

// openDB opens an existing database and brings its schema up to date.
func (c *cli) openDB() (*sql.DB, error) {
	path, err := c.dbPath()
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w (looked for %s)", errNotInitialized, path)
	}

	database, err := db.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Migrate(database); err != nil {
		database.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	return database, nil
}

// withBackend runs fn against the opened backend and closes it afterwards.
func (c *cli) withBackend(cmd *cobra.Command, fn func(ctx context.Context, b backend.Backend) error) error {
	b, closeFn, err := c.openBackend()
	if err != nil {
		return err
	}
	defer closeFn()
	return fn(cmd.Context(), b)
}
