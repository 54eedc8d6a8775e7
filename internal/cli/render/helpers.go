package render

import (
	"strings"

	"github.com/fatih/color"
)

// FormatWarning formats a warning message with the warning icon
func FormatWarning(message string) string {
	return color.New(color.FgYellow).Sprintf("⚠️  %s", message)
}

// FormatSuccess formats a success message with the success icon
func FormatSuccess(message string) string {
	return color.New(color.FgGreen).Sprintf("✅ %s", message)
}

// StageTitle turns a stage name like "init-reserves" into "Init Reserves"
func StageTitle(stage string) string {
	return titleCaser.String(strings.ReplaceAll(stage, "-", " "))
}
