package ffmpeg

import (
	"fmt"
	"strings"
)

// Clause is one stage of a complex filter graph: zero or more input pad
// labels, the filter body, and the output pad labels it defines.
type Clause struct {
	Inputs  []string
	Body    string
	Outputs []string
}

// Graph is an ordered list of clauses. It stays pure data until serialized
// into ffmpeg's textual mini-language, so correctness checks are structural
// rather than string scans.
type Graph struct {
	Clauses []Clause
}

// Add appends a clause.
func (g *Graph) Add(c Clause) {
	g.Clauses = append(g.Clauses, c)
}

// Empty reports whether the graph has no clauses.
func (g *Graph) Empty() bool {
	return len(g.Clauses) == 0
}

// String serializes the graph: clauses joined with ";", pad labels wrapped
// in square brackets.
func (g *Graph) String() string {
	parts := make([]string, 0, len(g.Clauses))
	for _, c := range g.Clauses {
		var sb strings.Builder
		for _, in := range c.Inputs {
			sb.WriteString("[" + in + "]")
		}
		sb.WriteString(c.Body)
		for _, out := range c.Outputs {
			sb.WriteString("[" + out + "]")
		}
		parts = append(parts, sb.String())
	}
	return strings.Join(parts, ";")
}

// Verify checks the graph is structurally sound and defines wantOutput
// exactly once. A failed check means the expression would abort the whole
// render if handed to ffmpeg, so callers downgrade instead of invoking.
func (g *Graph) Verify(wantOutput string) error {
	if g.Empty() {
		return fmt.Errorf("graph is empty")
	}

	outputCount := 0
	for i, c := range g.Clauses {
		if strings.TrimSpace(c.Body) == "" {
			return fmt.Errorf("clause %d has empty body", i)
		}
		if strings.Contains(c.Body, "%!") {
			return fmt.Errorf("clause %d contains unresolved placeholder: %s", i, c.Body)
		}
		if strings.ContainsAny(c.Body, "[]") {
			return fmt.Errorf("clause %d body contains stray brackets: %s", i, c.Body)
		}
		if len(c.Outputs) == 0 {
			return fmt.Errorf("clause %d defines no output label", i)
		}
		for _, label := range append(append([]string{}, c.Inputs...), c.Outputs...) {
			if strings.TrimSpace(label) == "" {
				return fmt.Errorf("clause %d has an empty pad label", i)
			}
		}
		for _, out := range c.Outputs {
			if out == wantOutput {
				outputCount++
			}
		}
	}

	if outputCount != 1 {
		return fmt.Errorf("output label %q defined %d times, want 1", wantOutput, outputCount)
	}

	if err := checkBrackets(g.String()); err != nil {
		return err
	}

	return nil
}

func checkBrackets(s string) error {
	depth := 0
	for _, r := range s {
		switch r {
		case '[':
			depth++
		case ']':
			depth--
			if depth < 0 {
				return fmt.Errorf("unbalanced brackets in %q", s)
			}
		}
	}
	if depth != 0 {
		return fmt.Errorf("unbalanced brackets in %q", s)
	}
	return nil
}
