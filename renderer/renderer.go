// Package renderer turns player states into markdown documents.
//
// Each document is an assembly template (status.md, battle_log.md,
// achievements.md) built from partial templates named after it
// (status_title.md, ...). Views are plain structs prepared by the New*
// functions so templates only print.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"
)

//go:embed templates/*.md
var templateFS embed.FS

var templates, _ = fs.Sub(templateFS, "templates")

// RenderStatus renders the player sheet.
func RenderStatus(st *Status) string {
	partials := map[string]string{
		"status_title":    "status_title.md",
		"status_progress": "status_progress.md",
		"status_wallet":   "status_wallet.md",
	}
	return renderTemplate("status", "status.md", partials, st)
}

// RenderBattleLog renders the transaction history.
func RenderBattleLog(l *BattleLog) string {
	partials := map[string]string{
		"battle_log_entries": "battle_log_entries.md",
	}
	return renderTemplate("battleLog", "battle_log.md", partials, l)
}

// RenderAchievements renders the achievements catalog.
func RenderAchievements(a *AchievementList) string {
	partials := map[string]string{
		"achievements_list": "achievements_list.md",
	}
	return renderTemplate("achievements", "achievements.md", partials, a)
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		var content []byte
		// An empty file name is a valid case, resulting in an empty template.
		if file != "" {
			content, err = fs.ReadFile(templates, file)
			if err != nil {
				return fmt.Sprintf("error reading partial template %q: %v", file, err)
			}
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
