package mcp

import "github.com/mark3labs/mcp-go/mcp"

var deckTodayToolDef = mcp.NewTool("deck_today",
	mcp.WithDescription("Return today's review deck, sampling it from the inklings folder on the first call of the day."),
)

var deckResetToolDef = mcp.NewTool("deck_reset",
	mcp.WithDescription("Discard today's deck and sample a fresh one."),
)

var deckStatsToolDef = mcp.NewTool("deck_stats",
	mcp.WithDescription("Report today's deck size and how many notes are left. Does not build a deck."),
)

var sessionCurrentToolDef = mcp.NewTool("session_current",
	mcp.WithDescription("Return the note under the review cursor, starting a walk through today's deck if needed."),
)

var sessionNextToolDef = mcp.NewTool("session_next",
	mcp.WithDescription("Advance the review cursor to the next note in today's deck."),
)

var sessionPrevToolDef = mcp.NewTool("session_prev",
	mcp.WithDescription("Move the review cursor back to the previous note."),
)

var noteEntryToolDef = mcp.NewTool("note_entry",
	mcp.WithDescription("Append a paragraph under the note's dated section, creating the section below the title if it is missing."),
	mcp.WithString("id", mcp.Description("Note id, relative to the vault root (e.g. Inklings/idea.md)"), mcp.Required()),
	mcp.WithString("text", mcp.Description("Paragraph to append"), mcp.Required()),
	mcp.WithString("date", mcp.Description("Section date as YYYY-MM-DD (default: today)")),
)

var noteSnoozeToolDef = mcp.NewTool("note_snooze",
	mcp.WithDescription("Hide a note from the deck for a number of days and drop it from today's deck."),
	mcp.WithString("id", mcp.Description("Note id, relative to the vault root"), mcp.Required()),
	mcp.WithNumber("days", mcp.Description("Days to snooze (default: configured snooze_days)")),
)

var noteCreateToolDef = mcp.NewTool("note_create",
	mcp.WithDescription("Create a note in the inklings folder. The file name is the sanitized title."),
	mcp.WithString("title", mcp.Description("Note title"), mcp.Required()),
	mcp.WithString("body", mcp.Description("Initial markdown body (default: empty)")),
)

var noteRenameToolDef = mcp.NewTool("note_rename",
	mcp.WithDescription("Retitle a note's file in place. Today's deck follows the note to its new id."),
	mcp.WithString("id", mcp.Description("Current note id"), mcp.Required()),
	mcp.WithString("title", mcp.Description("New title"), mcp.Required()),
)

var noteShowToolDef = mcp.NewTool("note_show",
	mcp.WithDescription("Return a note's body, frontmatter and dated section list."),
	mcp.WithString("id", mcp.Description("Note id, relative to the vault root"), mcp.Required()),
)

var activityListToolDef = mcp.NewTool("activity_list",
	mcp.WithDescription("List recent entries, snoozes, creates, renames and resets, newest first."),
	mcp.WithNumber("limit", mcp.Description("Maximum items (default 20, max 100)")),
)
