package views

import (
	"fmt"
	"strings"
)

type HelpPanelData struct {
	Bindings []string
	HelpView string
}

type DetailData struct {
	Name       string
	UUID       string
	IsPage     bool
	Properties [][2]string
}

type ColumnSetting struct {
	Name     string
	Hidden   bool
	Selected bool
}

func RenderFilterBadge(key, value string) string {
	if key == "" {
		return ""
	}
	if value == "" {
		return fmt.Sprintf("filter: %s", key)
	}
	return fmt.Sprintf("filter: %s = %s", key, value)
}

func RenderQueryError(msg string) string {
	if strings.TrimSpace(msg) == "" {
		return ""
	}
	return errorStyle.Render("query failed: " + msg)
}

// DetailMarkdown renders a row as markdown for the detail pane.
func DetailMarkdown(data DetailData) string {
	if data.UUID == "" {
		return "_No row selected_"
	}
	var b strings.Builder
	kind := "block"
	if data.IsPage {
		kind = "page"
	}
	b.WriteString(fmt.Sprintf("## %s\n\n", escapeMarkdown(data.Name)))
	b.WriteString(fmt.Sprintf("*%s* `%s`\n\n", kind, data.UUID))
	if len(data.Properties) == 0 {
		b.WriteString("_No properties_\n")
		return b.String()
	}
	b.WriteString("| property | value |\n|---|---|\n")
	for _, kv := range data.Properties {
		b.WriteString(fmt.Sprintf("| %s | %s |\n", escapeMarkdown(kv[0]), escapeMarkdown(kv[1])))
	}
	return b.String()
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("help:\n%s\n\n%s", strings.Join(data.Bindings, "\n"), data.HelpView)
}

func RenderCommandPalette(active bool, inputView string) string {
	if !active {
		return ""
	}
	return "command: " + inputView
}

func RenderPrompt(label, inputView string) string {
	return fmt.Sprintf("%s\n%s\n%s", label, inputView, mutedStyle.Render("enter to confirm, esc to cancel"))
}

func RenderColumnSettings(cols []ColumnSetting) string {
	var b strings.Builder
	b.WriteString("columns:\n")
	if len(cols) == 0 {
		b.WriteString("  (none)\n")
	}
	for _, c := range cols {
		cursor := " "
		if c.Selected {
			cursor = ">"
		}
		mark := "[x]"
		if c.Hidden {
			mark = "[ ]"
		}
		b.WriteString(fmt.Sprintf("%s %s %s\n", cursor, mark, c.Name))
	}
	b.WriteString("actions: [space]toggle [j/k]move [esc]close")
	return b.String()
}

func RenderNotification(level string, body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	return fmt.Sprintf("notification: [%s] %s", strings.ToUpper(level), body)
}

func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
