// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package transcript

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/transcript-md/pkg/types"
)

// truncationMarker is appended to tool input or output cut at its limit.
const truncationMarker = "\n... (truncated)"

// Formatter renders records as Markdown fragments.
type Formatter struct {
	toolInputLimit  int
	toolResultLimit int
}

// NewFormatter returns a Formatter using the tool limits from cfg. Zero
// limits select the defaults.
func NewFormatter(cfg types.ConversionConfig) *Formatter {
	cfg = cfg.WithDefaults()
	return &Formatter{
		toolInputLimit:  cfg.ToolInputLimit,
		toolResultLimit: cfg.ToolResultLimit,
	}
}

// FormatRecord returns the Markdown fragment for rec. Ignored records and
// records with empty content produce "".
func (f *Formatter) FormatRecord(rec Record) string {
	switch r := rec.(type) {
	case UserRecord:
		text := joinText(r.Content)
		if text == "" {
			return ""
		}
		return "### User:\n\n" + text + "\n"
	case AssistantRecord:
		body := f.FormatToolUse(r.Content)
		if body == "" {
			return ""
		}
		return "### Assistant:\n\n" + body + "\n"
	case ToolResultRecord:
		body := f.FormatToolResults(r.Content)
		if body == "" {
			return ""
		}
		return body + "\n"
	case CommandMessageRecord:
		if r.Content == "" {
			return ""
		}
		return "_System: " + r.Content + "_\n"
	case IgnoredRecord:
		return ""
	default:
		return ""
	}
}

// FormatToolUse renders the tool_use and non-blank text blocks of an
// assistant turn, separated by blank lines.
func (f *Formatter) FormatToolUse(content []Block) string {
	var parts []string
	for _, block := range content {
		switch b := block.(type) {
		case ToolUseBlock:
			name := b.Name
			if name == "" {
				name = "unknown"
			}
			input := truncate(indentJSON(b.Input), f.toolInputLimit)
			parts = append(parts,
				fmt.Sprintf("**Tool: %s**", name),
				"```json\n"+input+"\n```")
		case TextBlock:
			if strings.TrimSpace(b.Text) != "" {
				parts = append(parts, b.Text)
			}
		}
	}
	return strings.Join(parts, "\n\n")
}

// FormatToolResults renders the tool_result blocks of a record with an
// ERROR or Result label, separated by blank lines.
func (f *Formatter) FormatToolResults(content []Block) string {
	var parts []string
	for _, block := range content {
		b, ok := block.(ToolResultBlock)
		if !ok {
			continue
		}
		status := "Result"
		if b.IsError {
			status = "ERROR"
		}
		result := truncate(resultText(b.Content), f.toolResultLimit)
		parts = append(parts,
			fmt.Sprintf("**%s:**", status),
			"```\n"+result+"\n```")
	}
	return strings.Join(parts, "\n\n")
}

// joinText concatenates the text blocks of a user message, one per line.
func joinText(content []Block) string {
	var parts []string
	for _, block := range content {
		if b, ok := block.(TextBlock); ok {
			parts = append(parts, b.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// resultText resolves a tool_result payload. An array contributes the text
// of its "text" items, concatenated without a separator.
func resultText(raw json.RawMessage) string {
	var items []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil {
		return payloadText(raw)
	}
	var b strings.Builder
	for _, item := range items {
		f, ok := decodeFields(item)
		if ok && f.GetString("type") == BlockText {
			b.WriteString(f.GetString("text"))
		}
	}
	return b.String()
}

// indentJSON re-indents raw tool input with two spaces, keeping key order.
// Missing input renders as an empty object.
func indentJSON(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "{}"
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}

// truncate cuts s to limit code points and appends the truncation marker.
func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i] + truncationMarker
		}
		n++
	}
	return s
}
