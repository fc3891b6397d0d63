package mcp_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/8ria/pulse/core"
	"github.com/8ria/pulse/core/schedule"
	"github.com/8ria/pulse/internal/contract"
	mcp_internal "github.com/8ria/pulse/internal/mcp"
	"github.com/8ria/pulse/internal/store"
	"github.com/8ria/pulse/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*server.MCPServer, *store.MemoryScheduleStore) {
	t.Helper()
	mem := store.NewMemoryScheduleStore()
	data, err := schedule.Encode(schema.DailySchedule{Date: "2025-06-15", RunSlots: []int{300, 900}, TotalRuns: 2, IntervalMinutes: 720})
	require.NoError(t, err)
	mem.Set("2025-06-15", data)

	baseCfg := &contract.Config{Username: "8ria", WindowDays: 30, Tolerance: schema.DefaultTolerance}
	deps := core.Deps{
		Clock:     contract.FixedClock{T: time.Date(2025, time.June, 15, 9, 0, 0, 0, time.UTC)},
		Schedules: mem,
		Log:       zerolog.Nop(),
	}
	return mcp_internal.NewMCPServer(baseCfg, deps), mem
}

func call(t *testing.T, s *server.MCPServer, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	tool := s.GetTool(name)
	require.NotNil(t, tool, "Tool %s should exist", name)

	res, err := tool.Handler(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: args},
	})
	require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
	require.NotEmpty(t, res.Content)
	return res
}

func text(res *mcp.CallToolResult) string {
	return res.Content[0].(mcp.TextContent).Text
}

func TestMCPServerHandlers_ValidationErrors(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		tool    string
		args    map[string]any
		message string
	}{
		{"get_schedule", map[string]any{"date": "15/06/2025"}, "expected YYYY-MM-DD"},
		{"get_schedule", map[string]any{"date": "2025-06-16"}, "no schedule stored for date"},
		{"check_slot", map[string]any{"time": "25:99"}, "expected HH:MM"},
		{"check_slot", map[string]any{}, "expected HH:MM"},
		{"compute_streak", map[string]any{}, "days is required"},
		{"compute_streak", map[string]any{"days": "{not json"}, "invalid days"},
		{"compute_streak", map[string]any{"days": "[]", "today": "tomorrow"}, "invalid today"},
		{"render_block", map[string]any{}, "total must be a non-negative number"},
	}

	for _, tt := range tests {
		t.Run(tt.tool+" "+tt.message, func(t *testing.T) {
			res := call(t, s, tt.tool, tt.args)
			assert.True(t, res.IsError, "The response should indicate an error state")
			assert.Contains(t, text(res), tt.message)
		})
	}
}

func TestMCPServerHandlers_GetSchedule(t *testing.T) {
	s, mem := newTestServer(t)

	res := call(t, s, "get_schedule", map[string]any{})
	require.False(t, res.IsError, text(res))

	var got schema.DailySchedule
	require.NoError(t, json.Unmarshal([]byte(text(res)), &got))
	assert.Equal(t, []int{300, 900}, got.RunSlots)

	// Asking about another day must not create it.
	call(t, s, "get_schedule", map[string]any{"date": "2025-06-16"})
	keys, err := mem.Keys(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-06-15"}, keys)
}

func TestMCPServerHandlers_CheckSlot(t *testing.T) {
	s, _ := newTestServer(t)

	res := call(t, s, "check_slot", map[string]any{"time": "14:52"})
	require.False(t, res.IsError, text(res))

	var d schema.ScheduleDecision
	require.NoError(t, json.Unmarshal([]byte(text(res)), &d))
	assert.True(t, d.ShouldRun)
	require.NotNil(t, d.MatchedSlot)
	assert.Equal(t, 900, *d.MatchedSlot)
	assert.Equal(t, 892, d.Offset)
}

func TestMCPServerHandlers_ComputeStreak(t *testing.T) {
	s, _ := newTestServer(t)

	days := `[{"date":"2025-06-12","count":1},{"date":"2025-06-13","count":2},{"date":"2025-06-14","count":5}]`
	res := call(t, s, "compute_streak", map[string]any{"days": days, "today": "2025-06-14"})
	require.False(t, res.IsError, text(res))

	var report schema.StreakReport
	require.NoError(t, json.Unmarshal([]byte(text(res)), &report))
	assert.Equal(t, 3, report.Streak)
	assert.Equal(t, 8, report.Total)
	assert.Equal(t, "2025-06-14", report.Today)

	// Defaults to the server clock: the 15th is idle, the grace day keeps the streak.
	res = call(t, s, "compute_streak", map[string]any{"days": days})
	require.NoError(t, json.Unmarshal([]byte(text(res)), &report))
	assert.Equal(t, 3, report.Streak)
}

func TestMCPServerHandlers_RenderBlock(t *testing.T) {
	s, _ := newTestServer(t)

	res := call(t, s, "render_block", map[string]any{
		"total": 60.0, "streak": 4.0, "days_active": 12.0,
		"blog_title": "Hello", "blog_url": "https://andriak.com/hello",
	})
	require.False(t, res.IsError, text(res))

	out := text(res)
	assert.Contains(t, out, "<!--START_STATS-->\n### 📈 Last 30 Days Activity (2025-06-15 09:00 UTC)")
	assert.Contains(t, out, "**60** contributions")
	assert.Contains(t, out, "**2.00** per day")
	assert.Contains(t, out, "**12** days with contributions")
	assert.Contains(t, out, "**4** day streak")
	assert.Contains(t, out, "[**Hello**](https://andriak.com/hello)")

	res = call(t, s, "render_block", map[string]any{"total": 7.0, "window_days": 7.0})
	require.False(t, res.IsError, text(res))
	assert.Contains(t, text(res), "Last 7 Days Activity")
	assert.NotContains(t, text(res), "Latest blog")
}
