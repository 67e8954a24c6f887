package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/hpungsan/inklings/internal/api"
	"github.com/hpungsan/inklings/internal/errors"
	"github.com/hpungsan/inklings/internal/mcp"
	"github.com/hpungsan/inklings/internal/ops"
	"github.com/hpungsan/inklings/internal/watch"
)

// maxStdinBytes bounds text read from stdin for entry and create.
const maxStdinBytes = 1 << 20

// newCLIApp creates the CLI application with all commands.
func newCLIApp() *cli.App {
	app := &cli.App{
		Name:    "inklings",
		Usage:   "A daily review deck for your notes",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "vault", Aliases: []string{"V"}, Usage: "Vault directory (default: nearest directory with .inklings, else cwd)", EnvVars: []string{"INKLINGS_VAULT"}},
			&cli.BoolFlag{Name: "verbose", Usage: "Log at debug level"},
		},
		Commands: []*cli.Command{
			todayCmd(),
			resetCmd(),
			statsCmd(),
			showCmd(),
			entryCmd(),
			snoozeCmd(),
			createCmd(),
			renameCmd(),
			activityCmd(),
			serveCmd(),
			watchCmd(),
			mcpCmd(),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// todayCmd creates the today command.
func todayCmd() *cli.Command {
	return &cli.Command{
		Name:  "today",
		Usage: "Show today's deck, building it on the first run of the day",
		Action: withEnv(func(c *cli.Context, e *env) error {
			output, err := ops.Today(c.Context, e.deps)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		}),
	}
}

// resetCmd creates the reset command.
func resetCmd() *cli.Command {
	return &cli.Command{
		Name:  "reset",
		Usage: "Discard today's deck and sample a new one",
		Action: withEnv(func(c *cli.Context, e *env) error {
			output, err := ops.Reset(c.Context, e.deps)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		}),
	}
}

// statsCmd creates the stats command.
func statsCmd() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show today's deck progress",
		Action: withEnv(func(c *cli.Context, e *env) error {
			output, err := ops.Stats(c.Context, e.deps)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		}),
	}
}

// showCmd creates the show command.
func showCmd() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show a note with its metadata and dated sections",
		ArgsUsage: "<id>",
		Action: withEnv(func(c *cli.Context, e *env) error {
			id, err := requireArg(c, 0, "id")
			if err != nil {
				return outputError(err)
			}

			output, err := ops.Show(c.Context, e.deps, ops.ShowInput{ID: id})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		}),
	}
}

// entryCmd creates the entry command.
func entryCmd() *cli.Command {
	return &cli.Command{
		Name:      "entry",
		Usage:     "Append a paragraph to a note's dated section (text from --text or stdin)",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "text", Aliases: []string{"t"}, Usage: "Paragraph text"},
			&cli.StringFlag{Name: "date", Aliases: []string{"d"}, Usage: "Section date YYYY-MM-DD (default: today)"},
		},
		Action: withEnv(func(c *cli.Context, e *env) error {
			id, err := requireArg(c, 0, "id")
			if err != nil {
				return outputError(err)
			}

			text := c.String("text")
			if text == "" && stdinHasData() {
				text, err = readStdin()
				if err != nil {
					return outputError(err)
				}
			}

			output, err := ops.AddEntry(c.Context, e.deps, ops.EntryInput{
				ID:   id,
				Text: text,
				Date: c.String("date"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		}),
	}
}

// snoozeCmd creates the snooze command.
func snoozeCmd() *cli.Command {
	return &cli.Command{
		Name:      "snooze",
		Usage:     "Hide a note from the deck for a number of days",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "days", Aliases: []string{"d"}, Usage: "Days to snooze (default: snooze_days from config)"},
		},
		Action: withEnv(func(c *cli.Context, e *env) error {
			id, err := requireArg(c, 0, "id")
			if err != nil {
				return outputError(err)
			}

			input := ops.SnoozeInput{ID: id}
			if c.IsSet("days") {
				days := c.Int("days")
				input.Days = &days
			}

			output, err := ops.Snooze(c.Context, e.deps, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		}),
	}
}

// createCmd creates the create command.
func createCmd() *cli.Command {
	return &cli.Command{
		Name:      "create",
		Usage:     "Create a note in the inklings folder (body from --body or stdin)",
		ArgsUsage: "<title>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "body", Aliases: []string{"b"}, Usage: "Initial markdown body"},
		},
		Action: withEnv(func(c *cli.Context, e *env) error {
			title, err := requireArg(c, 0, "title")
			if err != nil {
				return outputError(err)
			}

			body := c.String("body")
			if body == "" && stdinHasData() {
				body, err = readStdin()
				if err != nil {
					return outputError(err)
				}
			}

			output, err := ops.Create(c.Context, e.deps, ops.CreateInput{Title: title, Body: body})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		}),
	}
}

// renameCmd creates the rename command.
func renameCmd() *cli.Command {
	return &cli.Command{
		Name:      "rename",
		Usage:     "Retitle a note's file; today's deck follows it",
		ArgsUsage: "<id> <title>",
		Action: withEnv(func(c *cli.Context, e *env) error {
			id, err := requireArg(c, 0, "id")
			if err != nil {
				return outputError(err)
			}
			title, err := requireArg(c, 1, "title")
			if err != nil {
				return outputError(err)
			}

			output, err := ops.Rename(c.Context, e.deps, ops.RenameInput{ID: id, Title: title})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		}),
	}
}

// activityCmd creates the activity command.
func activityCmd() *cli.Command {
	return &cli.Command{
		Name:  "activity",
		Usage: "List recent entries, snoozes, creates, renames and resets",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: ops.DefaultActivityLimit, Usage: "Maximum items (max 100)"},
		},
		Action: withEnv(func(c *cli.Context, e *env) error {
			output, err := ops.Activity(c.Context, e.deps, ops.ActivityInput{Limit: c.Int("limit")})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		}),
	}
}

// serveCmd creates the serve command.
func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the HTTP API and follow external renames until interrupted",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Usage: "Listen address (default: http_addr from config)"},
		},
		Action: withEnv(func(c *cli.Context, e *env) error {
			if addr := c.String("addr"); addr != "" {
				e.deps.Config.HTTPAddr = addr
			}

			ctx, stop := signalContext(c.Context)
			defer stop()

			session := ops.NewSession(e.deps)
			srv := api.NewServer(e.deps, session, e.logger)
			watcher := watch.New(e.deps, watch.Options{
				Logger:   e.logger,
				OnRename: session.Renamed,
			})

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error { return api.Run(ctx, srv, e.logger) })
			g.Go(func() error { return watcher.Run(ctx) })
			if err := g.Wait(); err != nil {
				return outputError(err)
			}
			return nil
		}),
	}
}

// watchCmd creates the watch command.
func watchCmd() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Follow renames in the inklings folder until interrupted",
		Action: withEnv(func(c *cli.Context, e *env) error {
			ctx, stop := signalContext(c.Context)
			defer stop()

			if err := watch.New(e.deps, watch.Options{Logger: e.logger}).Run(ctx); err != nil {
				return outputError(err)
			}
			return nil
		}),
	}
}

// mcpCmd creates the mcp command.
func mcpCmd() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Run the MCP tool server on stdio",
		Action: withEnv(func(_ *cli.Context, e *env) error {
			if err := mcp.Run(e.deps, Version); err != nil {
				return outputError(err)
			}
			return nil
		}),
	}
}

// Helper functions

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

// requireArg returns the i-th positional argument or an INVALID_REQUEST error.
func requireArg(c *cli.Context, i int, name string) (string, error) {
	v := strings.TrimSpace(c.Args().Get(i))
	if v == "" {
		return "", errors.NewInvalidRequest(name + " is required")
	}
	return v, nil
}

// outputJSON writes v to stdout as indented JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if iErr, ok := errors.As(err); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", iErr.Code, iErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads at most maxStdinBytes from stdin.
func readStdin() (string, error) {
	return readStdinWithLimit(os.Stdin, maxStdinBytes)
}

func readStdinWithLimit(r io.Reader, limit int64) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return "", errors.NewInternal(err)
	}
	if int64(len(data)) > limit {
		return "", errors.NewInvalidRequest(fmt.Sprintf("stdin exceeds %d bytes", limit))
	}
	return strings.TrimSpace(string(data)), nil
}
