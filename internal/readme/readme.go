// Package readme renders the stats block and splices it into a markdown file.
package readme

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/8ria/pulse/internal/contract"
	"github.com/8ria/pulse/schema"
)

// ErrMarkersNotFound is returned when the document has no complete marker pair.
var ErrMarkersNotFound = errors.New("stats markers not found")

// DefaultTemplate reproduces the classic block. Fields come from schema.StatsSnapshot.
const DefaultTemplate = `{{if .Since -}}
### 📈 Activity since {{date .Since}} ({{.Timestamp}})
{{- else -}}
### 📈 Last {{.WindowDays}} Days Activity ({{.Timestamp}})
{{- end}}
- 🧮 **{{.Total}}** contributions
- 📊 **{{fixed .Average}}** per day
{{- if .Since}}
- 📆 **{{.WindowDays}}** days since start
{{- end}}
- 🗓️ **{{.DaysActive}}** days with contributions
- 🔥 **{{.Streak}}** day streak
{{- if .BlogEnabled}}
---
📝 **Latest blog:** [**{{.Blog.Title}}**]({{.Blog.URL}})
{{- end}}
`

var blockRe = regexp.MustCompile(`(?s)` + regexp.QuoteMeta(schema.StartMarker) + `.*?` + regexp.QuoteMeta(schema.EndMarker))

// keycaps maps ASCII digits to their keycap emoji.
var keycaps = strings.NewReplacer(
	"0", "0️⃣", "1", "1️⃣", "2", "2️⃣", "3", "3️⃣", "4", "4️⃣",
	"5", "5️⃣", "6", "6️⃣", "7", "7️⃣", "8", "8️⃣", "9", "9️⃣",
)

// FuncMap holds the helpers available to block templates.
var FuncMap = template.FuncMap{
	"emoji": Emoji,
	"fixed": func(f float64) string { return strconv.FormatFloat(f, 'f', 2, 64) },
	"date": func(s string) string {
		t, err := time.Parse(schema.DateLayout, s)
		if err != nil {
			return s
		}
		return t.Format("January 2, 2006")
	},
}

// Emoji renders every digit of v as a keycap emoji, e.g. 42 -> 4️⃣2️⃣.
func Emoji(v any) string {
	return keycaps.Replace(fmt.Sprint(v))
}

// Render executes tmpl (DefaultTemplate when empty) with snap and wraps the result in markers.
func Render(tmpl string, snap schema.StatsSnapshot) (string, error) {
	if strings.TrimSpace(tmpl) == "" {
		tmpl = DefaultTemplate
	}
	t, err := template.New("stats").Funcs(FuncMap).Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse stats template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, snap); err != nil {
		return "", fmt.Errorf("failed to render stats template: %w", err)
	}

	body := strings.Trim(buf.String(), "\n")
	if strings.Contains(body, schema.StartMarker) || strings.Contains(body, schema.EndMarker) {
		return "", fmt.Errorf("rendered stats block must not contain the markers")
	}
	return schema.StartMarker + "\n" + body + "\n" + schema.EndMarker, nil
}

// ReplaceBlock swaps the first marker-delimited region of content for block.
// Everything outside the markers is preserved byte for byte.
func ReplaceBlock(content, block string) (string, error) {
	loc := blockRe.FindStringIndex(content)
	if loc == nil {
		return "", ErrMarkersNotFound
	}
	return content[:loc[0]] + block + content[loc[1]:], nil
}

// UpdateFile replaces the block inside the file at path. The file is rewritten
// atomically and only when its content changes. It reports whether it wrote.
func UpdateFile(path, block string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	updated, err := ReplaceBlock(string(data), block)
	if err != nil {
		return false, fmt.Errorf("%s: %w", path, err)
	}
	if updated == string(data) {
		return false, nil
	}

	if err := contract.WriteFileAtomic(path, []byte(updated), info.Mode().Perm()); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return true, nil
}
