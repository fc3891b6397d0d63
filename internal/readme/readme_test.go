package readme

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/8ria/pulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshot() schema.StatsSnapshot {
	return schema.StatsSnapshot{
		Timestamp:   "2025-06-15 08:04 UTC",
		WindowDays:  30,
		Total:       142,
		Average:     4.733,
		DaysActive:  20,
		Streak:      6,
		BlogEnabled: true,
		Blog:        schema.BlogPost{Title: "Shipping a tiny cron job", URL: "https://andriak.com/posts/tiny-cron.html"},
	}
}

func TestRender_Default(t *testing.T) {
	got, err := Render("", snapshot())
	require.NoError(t, err)

	want := "<!--START_STATS-->\n" +
		"### 📈 Last 30 Days Activity (2025-06-15 08:04 UTC)\n" +
		"- 🧮 **142** contributions\n" +
		"- 📊 **4.73** per day\n" +
		"- 🗓️ **20** days with contributions\n" +
		"- 🔥 **6** day streak\n" +
		"---\n" +
		"📝 **Latest blog:** [**Shipping a tiny cron job**](https://andriak.com/posts/tiny-cron.html)\n" +
		"<!--END_STATS-->"
	assert.Equal(t, want, got)
}

func TestRender_SinceAndNoBlog(t *testing.T) {
	snap := snapshot()
	snap.Since = "2025-05-17"
	snap.BlogEnabled = false

	got, err := Render(DefaultTemplate, snap)
	require.NoError(t, err)
	assert.Contains(t, got, "### 📈 Activity since May 17, 2025 (2025-06-15 08:04 UTC)\n")
	assert.Contains(t, got, "- 📊 **4.73** per day\n- 📆 **30** days since start\n- 🗓️ **20** days with contributions\n")
	assert.NotContains(t, got, "Latest blog")
	assert.True(t, len(got) > 0 && got[len(got)-len(schema.EndMarker):] == schema.EndMarker)
}

func TestRender_CustomTemplate(t *testing.T) {
	got, err := Render("Streak {{emoji .Streak}} / avg {{fixed .Average}}\n\n", snapshot())
	require.NoError(t, err)
	assert.Equal(t, "<!--START_STATS-->\nStreak 6️⃣ / avg 4.73\n<!--END_STATS-->", got)
}

func TestRender_Errors(t *testing.T) {
	_, err := Render("{{.Nope}}", snapshot())
	assert.ErrorContains(t, err, "failed to render")

	_, err = Render("{{if}}", snapshot())
	assert.ErrorContains(t, err, "failed to parse")

	_, err = Render("<!--END_STATS-->", snapshot())
	assert.ErrorContains(t, err, "must not contain the markers")
}

func TestEmoji(t *testing.T) {
	assert.Equal(t, "4️⃣2️⃣", Emoji(42))
	assert.Equal(t, "0️⃣", Emoji(0))
	assert.Equal(t, "4️⃣.7️⃣3️⃣", Emoji("4.73"))
}

func TestReplaceBlock(t *testing.T) {
	block := "<!--START_STATS-->\nnew\n<!--END_STATS-->"

	tests := []struct {
		name    string
		content string
		want    string
		wantErr bool
	}{
		{
			name:    "multiline block",
			content: "# Hi\n\n<!--START_STATS-->\nold\nstuff\n<!--END_STATS-->\n\nbye\n",
			want:    "# Hi\n\n" + block + "\n\nbye\n",
		},
		{
			name:    "empty block",
			content: "a<!--START_STATS--><!--END_STATS-->b",
			want:    "a" + block + "b",
		},
		{
			name:    "only first pair replaced",
			content: "<!--START_STATS-->1<!--END_STATS--> <!--START_STATS-->2<!--END_STATS-->",
			want:    block + " <!--START_STATS-->2<!--END_STATS-->",
		},
		{
			name:    "missing end marker",
			content: "<!--START_STATS-->\nold\n",
			wantErr: true,
		},
		{
			name:    "no markers",
			content: "# Just a readme\n",
			wantErr: true,
		},
		{
			name:    "reversed markers",
			content: "<!--END_STATS--> <!--START_STATS-->",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReplaceBlock(tt.content, block)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMarkersNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReplaceBlock_DollarSignsAreLiteral(t *testing.T) {
	got, err := ReplaceBlock("<!--START_STATS--><!--END_STATS-->", "<!--START_STATS-->$1 ${0}<!--END_STATS-->")
	require.NoError(t, err)
	assert.Equal(t, "<!--START_STATS-->$1 ${0}<!--END_STATS-->", got)
}

func TestUpdateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "README.md")
	require.NoError(t, os.WriteFile(path, []byte("intro\n<!--START_STATS-->\nold\n<!--END_STATS-->\noutro\n"), 0o640))
	block := "<!--START_STATS-->\nnew\n<!--END_STATS-->"

	changed, err := UpdateFile(path, block)
	require.NoError(t, err)
	assert.True(t, changed)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "intro\n"+block+"\noutro\n", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())

	changed, err = UpdateFile(path, block)
	require.NoError(t, err)
	assert.False(t, changed, "identical content is not rewritten")
}

func TestUpdateFile_LeavesFileWithoutMarkersAlone(t *testing.T) {
	path := filepath.Join(t.TempDir(), "README.md")
	require.NoError(t, os.WriteFile(path, []byte("no markers here\n"), 0o644))

	_, err := UpdateFile(path, "<!--START_STATS-->x<!--END_STATS-->")
	assert.ErrorIs(t, err, ErrMarkersNotFound)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "no markers here\n", string(data))
}

func TestUpdateFile_Missing(t *testing.T) {
	_, err := UpdateFile(filepath.Join(t.TempDir(), "nope.md"), "x")
	assert.ErrorIs(t, err, os.ErrNotExist)
}
