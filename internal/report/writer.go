// SPDX-FileCopyrightText: 2026 contractlens
// SPDX-License-Identifier: FSL-1.1-MIT

package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/contractlens/contractlens/pkg/model"
)

// Writer handles rendering a Report to JSON, Markdown or DOT.
type Writer struct {
	// Indent specifies the indentation for JSON output (default: 2 spaces)
	Indent int
}

// NewWriter creates a new Writer with default settings.
func NewWriter() *Writer {
	return &Writer{Indent: 2}
}

// WriteJSON writes a Report as JSON to the given writer.
func (w *Writer) WriteJSON(r Report, out io.Writer) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", strings.Repeat(" ", w.Indent))
	if err := encoder.Encode(r); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

var wordSeparator = regexp.MustCompile(`[_./\-]+`)

var titleCaser = cases.Title(language.English)

// splitCamel inserts a space at each lower-to-upper-case boundary, so
// "createUser" and "CreateUser" both split into "create User"/"Create User".
func splitCamel(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if i > 0 && r >= 'A' && r <= 'Z' {
			prev := runes[i-1]
			if (prev >= 'a' && prev <= 'z') || (prev >= '0' && prev <= '9') {
				b.WriteByte(' ')
			}
		}
		b.WriteRune(r)
	}
	return b.String()
}

// chainLabel turns a chain's leading node's symbol path (e.g. the snake_case
// handler name a FastAPI route decorates, or a camelCase TypeScript call
// site) into a human-readable title for the Markdown report. Empty for a
// chain with no nodes.
func chainLabel(c model.Chain) string {
	if len(c.Nodes) == 0 {
		return ""
	}
	symbol := c.Nodes[0].SymbolPath
	if symbol == "" {
		return ""
	}
	spaced := wordSeparator.ReplaceAllString(splitCamel(symbol), " ")
	words := strings.Fields(spaced)
	if len(words) == 0 {
		return ""
	}
	return titleCaser.String(strings.Join(words, " "))
}

var severityGlyph = map[model.Severity]string{
	model.SeverityCritical: "🔴",
	model.SeverityWarning:  "🟡",
	model.SeverityInfo:     "🔵",
}

// WriteMarkdown writes a Report as a Markdown document: header, summary
// statistics, per-chain findings, and a recommendations section grouping
// mismatches by kind.
func (w *Writer) WriteMarkdown(r Report, out io.Writer) error {
	fmt.Fprintf(out, "# %s — Contract Report\n\n", r.ProjectName)
	fmt.Fprintf(out, "Generated: %s  \nRun: `%s`\n\n", r.GeneratedAt.Format("2006-01-02T15:04:05Z07:00"), r.RunID)

	fmt.Fprintln(out, "## Summary")
	fmt.Fprintf(out, "- Total chains: %d\n", r.Summary.TotalChains)
	fmt.Fprintf(out, "- Valid chains: %d\n", r.Summary.ValidChains)
	fmt.Fprintf(out, "- Critical issues: %d\n", r.Summary.CriticalIssues)
	fmt.Fprintf(out, "- Warnings: %d\n\n", r.Summary.Warnings)

	fmt.Fprintln(out, "## Chains")
	byKind := map[model.MismatchKind][]string{}
	for i, c := range r.Chains {
		label := chainLabel(c)
		if label != "" {
			fmt.Fprintf(out, "\n### Chain %d — %s (%s)\n\n", i+1, c.Type, label)
		} else {
			fmt.Fprintf(out, "\n### Chain %d — %s\n\n", i+1, c.Type)
		}
		for _, n := range c.Nodes {
			fmt.Fprintf(out, "- `%s`\n", n.String())
		}
		for _, s := range c.Stitches {
			for _, m := range s.Mismatches {
				glyph := severityGlyph[m.Severity]
				fmt.Fprintf(out, "\n%s **%s** (`%s`): %s\n", glyph, m.Kind, m.Field, m.Message)
				byKind[m.Kind] = append(byKind[m.Kind], m.Message)
			}
		}
	}

	if len(byKind) > 0 {
		fmt.Fprintln(out, "\n## Recommendations")
		kinds := make([]string, 0, len(byKind))
		for k := range byKind {
			kinds = append(kinds, string(k))
		}
		sort.Strings(kinds)
		for _, k := range kinds {
			fmt.Fprintf(out, "\n### %s\n\n", k)
			for _, msg := range byKind[model.MismatchKind(k)] {
				fmt.Fprintf(out, "- %s\n", msg)
			}
		}
	}

	return nil
}

// graphView is the subset of *graph.Graph the DOT writer needs: every
// module and every edge in the graph.
type graphView interface {
	Modules() []model.Module
	Edges() []model.Edge
}

// WriteDOT writes one DOT graph per adapter present in g's modules: a node
// per module labeled by its path, and each edge whose source belongs to that
// adapter drawn between its endpoints' NodeId strings and labeled by its
// EdgeKind.
func (w *Writer) WriteDOT(g graphView, out io.Writer) error {
	byAdapter := map[model.Adapter][]model.Module{}
	for _, m := range g.Modules() {
		byAdapter[m.Adapter] = append(byAdapter[m.Adapter], m)
	}

	adapters := make([]string, 0, len(byAdapter))
	for a := range byAdapter {
		adapters = append(adapters, string(a))
	}
	sort.Strings(adapters)

	edgesByAdapter := map[model.Adapter][]model.Edge{}
	for _, e := range g.Edges() {
		edgesByAdapter[e.Src.Adapter] = append(edgesByAdapter[e.Src.Adapter], e)
	}

	for _, a := range adapters {
		adapter := model.Adapter(a)
		fmt.Fprintf(out, "digraph %s {\n", dotSafeName(a))
		for _, m := range byAdapter[adapter] {
			fmt.Fprintf(out, "  %q;\n", m.Path)
		}
		for _, e := range edgesByAdapter[adapter] {
			fmt.Fprintf(out, "  %q -> %q [label=%q];\n", e.Src.String(), e.Dst.String(), e.Kind)
		}
		fmt.Fprintln(out, "}")
		fmt.Fprintln(out)
	}

	return nil
}

func dotSafeName(s string) string {
	return strings.ReplaceAll(s, "-", "_")
}

// WriteFile writes a Report to a file as JSON or Markdown, inferring format
// from the path extension when format is empty. A .dot/.gv path infers
// "dot", which WriteFile does not render and reports as an unsupported
// format; DOT output is written by WriteDOT from a graph.
func (w *Writer) WriteFile(r Report, path string, format string) error {
	if format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".md", ".markdown":
			format = "markdown"
		case ".dot", ".gv":
			format = "dot"
		default:
			format = "json"
		}
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	switch strings.ToLower(format) {
	case "json":
		return w.WriteJSON(r, file)
	case "markdown", "md":
		return w.WriteMarkdown(r, file)
	default:
		return fmt.Errorf("unsupported report format: %s", format)
	}
}
