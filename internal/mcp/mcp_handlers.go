package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/8ria/pulse/core"
	"github.com/8ria/pulse/internal/contract"
	"github.com/8ria/pulse/internal/readme"
	"github.com/8ria/pulse/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	deps    core.Deps
}

func (h *toolHandler) now() time.Time {
	if h.deps.Clock == nil {
		return contract.SystemClock{}.Now()
	}
	return h.deps.Clock.Now()
}

func jsonResult(v any) *mcp.CallToolResult {
	jsonData, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(jsonData))
}

func (h *toolHandler) handleGetSchedule(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.deps.Schedules == nil {
		return mcp.NewToolResultError("schedule store is not initialized"), nil
	}
	s, err := core.GetSchedule(ctx, h.baseCfg, h.deps, request.GetString("date", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read schedule: %v", err)), nil
	}
	return jsonResult(s), nil
}

func (h *toolHandler) handleCheckSlot(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	offset, err := schema.ParseOffset(request.GetString("time", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if h.deps.Schedules == nil {
		return mcp.NewToolResultError("schedule store is not initialized"), nil
	}
	d, err := core.CheckSlot(ctx, h.baseCfg, h.deps, request.GetString("date", ""), offset)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("check failed: %v", err)), nil
	}
	return jsonResult(d), nil
}

func (h *toolHandler) handleComputeStreak(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw := request.GetString("days", "")
	if raw == "" {
		return mcp.NewToolResultError("days is required"), nil
	}
	var days []schema.ContributionDay
	if err := json.Unmarshal([]byte(raw), &days); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid days: %v", err)), nil
	}

	today := h.now()
	if s := request.GetString("today", ""); s != "" {
		t, err := time.Parse(schema.DateLayout, s)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid today %q. expected YYYY-MM-DD", s)), nil
		}
		today = t
	}
	return jsonResult(core.BuildStreakReport(days, today)), nil
}

func (h *toolHandler) handleRenderBlock(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	total := request.GetInt("total", -1)
	if total < 0 {
		return mcp.NewToolResultError("total must be a non-negative number"), nil
	}

	cfg := h.baseCfg.Clone()
	if w := request.GetInt("window_days", 0); w > 0 {
		cfg.WindowDays = w
		cfg.Since = time.Time{}
	}
	title := request.GetString("blog_title", "")
	url := request.GetString("blog_url", "")
	cfg.BlogEnabled = title != "" && url != ""

	snap := core.BuildSnapshot(cfg, schema.ContributionSummary{Total: total}, schema.BlogPost{Title: title, URL: url}, h.now())
	snap.Streak = max(request.GetInt("streak", 0), 0)
	snap.DaysActive = max(request.GetInt("days_active", 0), 0)

	block, err := readme.Render(cfg.Template, snap)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("render failed: %v", err)), nil
	}
	return mcp.NewToolResultText(block), nil
}
