package model

import "strings"

const (
	maxNameRunes = 80
	untitled     = "Untitled"
)

// Normalize maps raw query results onto rows. Items that carry no block or no
// uuid are dropped silently. preferPageName selects the containing page's name
// for page-properties blocks, which is what a page-property query is about.
func Normalize(raw []any, preferPageName bool) []Row {
	return NormalizeItems(DecodeItems(raw), preferPageName)
}

func NormalizeItems(items []ResultItem, preferPageName bool) []Row {
	rows := make([]Row, 0, len(items))
	for _, item := range items {
		block, page, ok := item.resolve()
		if !ok {
			continue
		}
		row, ok := rowFromEntities(block, page, preferPageName)
		if !ok {
			continue
		}
		rows = append(rows, row)
	}
	return rows
}

func rowFromEntities(block, page Entity, preferPageName bool) (Row, bool) {
	uuid := block.UUID()
	if uuid == "" {
		return Row{}, false
	}

	isPage := block.IsPage()
	pageName := ""
	if page != nil {
		pageName = page.DisplayName()
	}
	if isPage && pageName == "" {
		pageName = block.DisplayName()
	}

	name := ""
	content := block.Content()
	switch {
	case isPage:
		name = block.DisplayName()
	case preferPageName && block.IsPreBlock() && pageName != "":
		name = pageName
	case content != "":
		name = firstLine(content)
	case pageName != "":
		name = pageName
	}
	if name == "" {
		name = untitled
	}

	return Row{
		ID:           block.ID(),
		UUID:         uuid,
		Name:         name,
		OriginalName: name,
		IsPage:       isPage,
		PageName:     pageName,
		Properties:   userProperties(block.Properties()),
	}, true
}

func firstLine(content string) string {
	line, _, _ := strings.Cut(content, "\n")
	runes := []rune(line)
	if len(runes) > maxNameRunes {
		return string(runes[:maxNameRunes]) + "..."
	}
	return line
}

func userProperties(raw map[string]any) map[string]any {
	out := make(map[string]any, len(raw))
	for k, v := range raw {
		if IsReservedProperty(k) {
			continue
		}
		out[k] = v
	}
	return out
}
