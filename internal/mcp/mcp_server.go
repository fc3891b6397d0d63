// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/8ria/pulse/core"
	"github.com/8ria/pulse/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the pulse MCP server without starting it.
// Every tool is read-only: schedules are peeked, never created.
func NewMCPServer(baseCfg *contract.Config, deps core.Deps) *server.MCPServer {
	s := server.NewMCPServer(
		"Pulse README Stats Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		deps:    deps,
	}

	// --- 1. Tool: get_schedule ---
	s.AddTool(mcp.NewTool("get_schedule",
		mcp.WithDescription("Show the stored run schedule of a day. Never generates a new schedule."),
		mcp.WithString("date", mcp.Description("Day in YYYY-MM-DD (UTC). Defaults to today.")),
	), h.handleGetSchedule)

	// --- 2. Tool: check_slot ---
	s.AddTool(mcp.NewTool("check_slot",
		mcp.WithDescription("Check whether a time of day falls within tolerance of a stored run slot."),
		mcp.WithString("time", mcp.Description("Time of day in HH:MM (UTC)."), mcp.Required()),
		mcp.WithString("date", mcp.Description("Day in YYYY-MM-DD (UTC). Defaults to today.")),
	), h.handleCheckSlot)

	// --- 3. Tool: compute_streak ---
	s.AddTool(mcp.NewTool("compute_streak",
		mcp.WithDescription("Compute the current activity streak from a contribution calendar."),
		mcp.WithString("days", mcp.Description(`JSON array of {"date": "YYYY-MM-DD", "count": N} objects.`), mcp.Required()),
		mcp.WithString("today", mcp.Description("Reference day in YYYY-MM-DD. Defaults to today.")),
	), h.handleComputeStreak)

	// --- 4. Tool: render_block ---
	s.AddTool(mcp.NewTool("render_block",
		mcp.WithDescription("Render the README stats block with the configured template from supplied numbers."),
		mcp.WithNumber("total", mcp.Description("Total contributions in the window."), mcp.Required()),
		mcp.WithNumber("streak", mcp.Description("Current streak in days.")),
		mcp.WithNumber("days_active", mcp.Description("Days with at least one contribution.")),
		mcp.WithNumber("window_days", mcp.Description("Days the total is averaged over. Defaults to the configured window.")),
		mcp.WithString("blog_title", mcp.Description("Title of the latest blog post.")),
		mcp.WithString("blog_url", mcp.Description("URL of the latest blog post.")),
	), h.handleRenderBlock)

	return s
}

// StartMCPServer starts the pulse MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, deps core.Deps) error {
	s := NewMCPServer(baseCfg, deps)
	return server.ServeStdio(s)
}
