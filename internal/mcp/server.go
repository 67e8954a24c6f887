package mcp

import (
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hpungsan/inklings/internal/ops"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"deck_today": {
		def:     deckTodayToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDeckToday },
	},
	"deck_reset": {
		def:     deckResetToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDeckReset },
	},
	"deck_stats": {
		def:     deckStatsToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDeckStats },
	},
	"session_current": {
		def:     sessionCurrentToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSessionCurrent },
	},
	"session_next": {
		def:     sessionNextToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSessionNext },
	},
	"session_prev": {
		def:     sessionPrevToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSessionPrev },
	},
	"note_entry": {
		def:     noteEntryToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleNoteEntry },
	},
	"note_snooze": {
		def:     noteSnoozeToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleNoteSnooze },
	},
	"note_create": {
		def:     noteCreateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleNoteCreate },
	},
	"note_rename": {
		def:     noteRenameToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleNoteRename },
	},
	"note_show": {
		def:     noteShowToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleNoteShow },
	},
	"activity_list": {
		def:     activityListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleActivityList },
	},
}

// AllToolNames returns all valid tool names, sorted.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// NewServer creates a new MCP server with the review tools registered.
// Tools listed in the config's DisabledTools are excluded from registration.
func NewServer(deps *ops.Deps, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"inklings",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	h := NewHandlers(deps)

	disabled := make(map[string]bool, len(deps.Config.DisabledTools))
	for _, name := range deps.Config.DisabledTools {
		disabled[name] = true
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(deps *ops.Deps, version string) error {
	return server.ServeStdio(NewServer(deps, version))
}
