package main

import (
	"fmt"
	"os"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"today": true, "reset": true, "stats": true, "show": true,
	"entry": true, "snooze": true, "create": true, "rename": true,
	"activity": true, "serve": true, "watch": true, "mcp": true,
	"help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode(args []string) bool {
	if len(args) < 2 {
		return false // No args → MCP server
	}
	arg := args[1]
	if cliCommands[arg] {
		return true
	}
	// Global flags come before the subcommand.
	if len(arg) > 1 && arg[0] == '-' {
		return true
	}
	return false
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
   _       _    _ _
  (_)_ __ | | _| (_)_ __   __ _ ___
  | | '_ \| |/ / | | '_ \ / _' / __|
  | | | | |   <| | | | | | (_| \__ \
  |_|_| |_|_|\_\_|_|_| |_|\__, |___/
                          |___/
  A daily review deck for your notes

  Usage: inklings <command> [options]
         inklings --help

  MCP server mode requires piped input.`)
}

func main() {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	args := os.Args
	if !isCLIMode(args) {
		// Unknown argument + terminal → show error (don't start MCP server)
		if len(args) >= 2 && isTerminal() {
			fmt.Fprintf(os.Stderr, "error: unknown command %q\n", args[1])
			fmt.Fprintf(os.Stderr, "Run 'inklings --help' for usage.\n")
			os.Exit(1)
		}
		// MCP server mode (default)
		args = []string{args[0], "mcp"}
	}

	if err := newCLIApp().Run(args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
