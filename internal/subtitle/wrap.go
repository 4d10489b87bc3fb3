package subtitle

import "strings"

// minWrapBudget is the floor for the per-line character budget, so giant
// fonts on narrow canvases still get at least a few words per line.
const minWrapBudget = 8

// wrapBudget computes the per-line character budget: proportional to the
// canvas width, inverse to the font size.
func wrapBudget(canvasWidth, fontSize int) int {
	budget := canvasWidth * 3 / (fontSize * 2)
	if budget < minWrapBudget {
		budget = minWrapBudget
	}
	return budget
}

// wrapText word-wraps text to the budget and joins lines with the ASS hard
// line break. Explicit newlines are preserved; a word is never split even
// when it alone exceeds the budget.
func wrapText(text string, budget int) string {
	var lines []string

	for _, paragraph := range strings.Split(text, "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}

		current := words[0]
		for _, word := range words[1:] {
			if len(current)+1+len(word) > budget {
				lines = append(lines, current)
				current = word
				continue
			}
			current += " " + word
		}
		lines = append(lines, current)
	}

	return strings.Join(lines, "\\N")
}
