package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/parser"
)

// PlainText flattens a markdown reply into plain text suitable for a single
// spreadsheet cell. List items keep a "- " marker and inline markup is
// reduced to its text. Blank lines are dropped.
func PlainText(md string) string {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	doc := markdown.Parse([]byte(md), p)

	var b strings.Builder
	ast.WalkFunc(doc, func(node ast.Node, entering bool) ast.WalkStatus {
		switch n := node.(type) {
		case *ast.ListItem:
			if entering {
				b.WriteString("- ")
			} else {
				b.WriteString("\n")
			}
		case *ast.Text:
			if entering {
				b.Write(n.Literal)
			}
		case *ast.Code:
			if entering {
				b.Write(n.Literal)
			}
		case *ast.CodeBlock:
			if entering {
				b.Write(n.Literal)
			}
		case *ast.Softbreak, *ast.Hardbreak:
			if entering {
				b.WriteString("\n")
			}
		case *ast.Paragraph, *ast.Heading:
			if !entering {
				b.WriteString("\n")
			}
		}
		return ast.GoToNext
	})

	lines := strings.Split(b.String(), "\n")
	out := lines[:0]
	for _, l := range lines {
		l = strings.TrimRight(l, " \t")
		if strings.TrimSpace(l) == "" {
			continue
		}
		out = append(out, l)
	}
	return strings.Join(out, "\n")
}

// DecodeJSON unmarshals a model reply into v, tolerating a surrounding
// ```json code fence and leading or trailing prose.
func DecodeJSON(reply string, v any) error {
	s := strings.TrimSpace(reply)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	if i, j := strings.Index(s, "{"), strings.LastIndex(s, "}"); i >= 0 && j > i {
		s = s[i : j+1]
	}

	if err := json.Unmarshal([]byte(s), v); err != nil {
		return fmt.Errorf("model reply is not valid JSON: %w", err)
	}
	return nil
}
