// Package ui renders search responses for terminal output.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/fathom-search/fathom/internal/search"
)

// Renderer writes search responses to a terminal or pipe.
type Renderer struct {
	out    io.Writer
	styles Styles
}

// NewRenderer creates a renderer for the given writer. Color is enabled
// only when the writer is an interactive terminal and noColor is false.
func NewRenderer(out io.Writer, noColor bool) *Renderer {
	if !noColor {
		noColor = !isTerminal(out)
	}
	return &Renderer{out: out, styles: GetStyles(noColor)}
}

// isTerminal reports whether the writer is an interactive terminal.
func isTerminal(out io.Writer) bool {
	f, ok := out.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// RenderResponse writes a full response: header, ranked results,
// optional summary, and degradation warnings.
func (r *Renderer) RenderResponse(resp *search.Response) {
	s := r.styles

	header := fmt.Sprintf("%d results", len(resp.Results))
	if resp.Cached {
		header += " (cached)"
	}
	fmt.Fprintf(r.out, "%s %s\n\n",
		s.Header.Render(header),
		s.Dim.Render(fmt.Sprintf("mode=%s %dms", resp.Mode, resp.ElapsedMs)))

	for i, result := range resp.Results {
		fmt.Fprintf(r.out, "%s %s %s\n",
			s.Label.Render(fmt.Sprintf("%2d.", i+1)),
			s.Title.Render(result.Title),
			s.Score.Render(fmt.Sprintf("[%.2f]", result.Score)))
		if result.URL != "" {
			fmt.Fprintf(r.out, "    %s\n", s.URL.Render(result.URL))
		} else {
			fmt.Fprintf(r.out, "    %s\n", s.Dim.Render("(internal knowledge)"))
		}
		if result.Snippet != "" {
			fmt.Fprintf(r.out, "    %s\n", s.Snippet.Render(truncate(result.Snippet, 200)))
		}
		fmt.Fprintln(r.out)
	}

	if resp.Summary != "" {
		fmt.Fprintf(r.out, "%s %s\n\n",
			s.Header.Render("Summary:"),
			s.Summary.Render(resp.Summary))
	}

	if len(resp.DegradedProviders) > 0 {
		fmt.Fprintf(r.out, "%s\n",
			s.Warning.Render("degraded providers: "+strings.Join(resp.DegradedProviders, ", ")))
	}
}

// RenderModes writes the mode listing produced by the modes command.
func (r *Renderer) RenderModes(lines []string) {
	s := r.styles
	fmt.Fprintf(r.out, "%s\n", s.Header.Render("Available modes"))
	for _, line := range lines {
		fmt.Fprintf(r.out, "  %s\n", line)
	}
}

// RenderError writes a user-facing error message.
func (r *Renderer) RenderError(err error) {
	fmt.Fprintf(r.out, "%s %v\n", r.styles.Error.Render("error:"), err)
}

// truncate cuts s at a word boundary near max.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := s[:max]
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return cut + "…"
}
