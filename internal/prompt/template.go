// Package prompt renders the text-model prompts for podcast scripts.
//
// Placeholders are written {{name}}. A block wrapped in {{#name}} and
// {{/name}} is kept only when name has a non-blank value, which suits
// optional material such as an uploaded brief.
package prompt

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	variablePattern = regexp.MustCompile(`\{\{(\w+)\}\}`)
	sectionPattern  = regexp.MustCompile(`(?s)\{\{#(\w+)\}\}(.*?)\{\{/(\w+)\}\}`)
)

type Template struct {
	Name string
	Text string
	vars []string
}

// New panics on a malformed section; templates are package-level values.
func New(name, text string) *Template {
	for _, m := range sectionPattern.FindAllStringSubmatch(text, -1) {
		if m[1] != m[3] {
			panic(fmt.Sprintf("prompt %s: section {{#%s}} closed by {{/%s}}", name, m[1], m[3]))
		}
	}
	return &Template{Name: name, Text: text, vars: ExtractVariables(text)}
}

// Variables lists every placeholder, including those inside sections.
func (t *Template) Variables() []string {
	return t.vars
}

func (t *Template) Render(vars map[string]string) (string, error) {
	out, err := Render(t.Text, vars)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", t.Name, err)
	}
	return out, nil
}

// Render expands sections, then substitutes placeholders. Only
// placeholders that survive section expansion must be supplied.
func Render(template string, vars map[string]string) (string, error) {
	text := sectionPattern.ReplaceAllStringFunc(template, func(match string) string {
		m := sectionPattern.FindStringSubmatch(match)
		if strings.TrimSpace(vars[m[1]]) == "" {
			return ""
		}
		return m[2]
	})

	var missing []string
	for _, v := range ExtractVariables(text) {
		if _, ok := vars[v]; !ok {
			missing = append(missing, v)
		}
	}
	if len(missing) > 0 {
		return "", fmt.Errorf("missing template variables: %s", strings.Join(missing, ", "))
	}

	return variablePattern.ReplaceAllStringFunc(text, func(match string) string {
		return vars[match[2:len(match)-2]]
	}), nil
}

// ExtractVariables returns placeholder names in first-seen order.
func ExtractVariables(template string) []string {
	seen := make(map[string]bool)
	var vars []string
	for _, m := range variablePattern.FindAllStringSubmatch(template, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			vars = append(vars, m[1])
		}
	}
	return vars
}
