// Package prompt builds the prompts sent to the generation provider.
package prompt

import (
	"fmt"
	"strings"
)

const insightFormat = `Respond ONLY with a JSON array of 2 to 4 objects of the form
{"type": "counter-argument" | "question" | "lateral-prompt", "content": "<one or two sentences>"}.`

// Insights asks for single-lane critique of text.
func Insights(text string) string {
	return fmt.Sprintf(`You are a sharp thinking partner. Read the text below and push back on it.
%s

TEXT:
%s`, insightFormat, text)
}

// Lanes asks for critique from every lane at once, keyed by lane id.
func Lanes(text string, lanes []string) string {
	var b strings.Builder
	b.WriteString("Several critics read the same text. Each critic follows its directive.\n\n")
	for _, id := range lanes {
		fmt.Fprintf(&b, "- %s: %s\n", id, Directive(id))
	}
	fmt.Fprintf(&b, `
Respond ONLY with a JSON object whose keys are the critic ids (%s) and whose values are arrays of
{"type": "counter-argument" | "question" | "lateral-prompt", "content": "<one or two sentences>"}.

TEXT:
%s`, strings.Join(lanes, ", "), text)
	return b.String()
}

// Summary asks for a plain-text condensation of text.
func Summary(text string) string {
	return fmt.Sprintf(`Summarize the following material in a short paragraph of plain prose. Do not use JSON.

MATERIAL:
%s`, text)
}

// Biases asks for cognitive-bias annotations with rune offsets into text.
func Biases(text string) string {
	return fmt.Sprintf(`Identify cognitive biases in the text below.
Respond ONLY with a JSON array of objects:
{"type": "<bias name>", "content": "<exact excerpt>", "explanation": "<why>", "start": <rune offset>, "end": <rune offset, exclusive>}.
Return [] if none are present.

TEXT:
%s`, text)
}
