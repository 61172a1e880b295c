// SPDX-License-Identifier: GPL-3.0-only

package notifications

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"regexp"
	"strings"
)

//go:embed email_templates/*.html
var templateFS embed.FS

var (
	tagPattern   = regexp.MustCompile(`<[^>]+>`)
	blankPattern = regexp.MustCompile(`\n\s*\n+`)
)

func RenderTemplate(templateName string, variables map[string]any) (string, error) {
	templatePath := "email_templates/" + templateName + ".html"

	templateContent, err := templateFS.ReadFile(templatePath)
	if err != nil {
		return "", fmt.Errorf("template file not found: %s", templatePath)
	}

	tmpl, err := template.New(templateName).Parse(string(templateContent))
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", templateName, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, variables); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", templateName, err)
	}

	return buf.String(), nil
}

// PlainText is the text/plain fallback for an HTML body.
func PlainText(html string) string {
	text := tagPattern.ReplaceAllString(html, "")
	text = blankPattern.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
