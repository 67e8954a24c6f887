package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/inklings/internal/config"
	"github.com/hpungsan/inklings/internal/db"
	"github.com/hpungsan/inklings/internal/errors"
	"github.com/hpungsan/inklings/internal/logging"
	"github.com/hpungsan/inklings/internal/mcp"
	"github.com/hpungsan/inklings/internal/ops"
	"github.com/hpungsan/inklings/internal/vault"
)

// env is everything a command needs, opened once per invocation.
type env struct {
	deps   *ops.Deps
	db     *sql.DB
	logger *slog.Logger
}

// openEnv resolves the vault, loads layered config, sets up logging and opens
// the state database.
func openEnv(vaultFlag string, verbose bool) (*env, error) {
	root := vaultFlag
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("could not determine working directory: %w", err)
		}
		root = config.FindVault(cwd)
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("invalid vault path: %w", err)
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("vault %s is not a directory", root))
	}

	globalDir, err := config.GlobalDir()
	if err != nil {
		// No home directory: run on vault config alone.
		globalDir = ""
	}

	cfg, err := config.Load(globalDir, root)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.Setup(cfg.LogLevel, verbose, os.Stderr)
	if unknown := mcp.ValidateDisabledTools(cfg.DisabledTools); len(unknown) > 0 {
		logger.Warn("unknown tools in disabled_tools", "tools", unknown)
	}

	database, err := db.Init(config.StateDir(root))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	v, err := vault.Open(root, cfg.NoteGlob, logger)
	if err != nil {
		database.Close()
		return nil, err
	}

	return &env{
		deps:   ops.NewDeps(database, v, cfg, ops.WithLogger(logger)),
		db:     database,
		logger: logger,
	}, nil
}

func (e *env) Close() error {
	return e.db.Close()
}

// withEnv opens the environment for a command action and closes it afterwards.
func withEnv(fn func(c *cli.Context, e *env) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		e, err := openEnv(c.String("vault"), c.Bool("verbose"))
		if err != nil {
			return outputError(err)
		}
		defer e.Close()
		return fn(c, e)
	}
}
