package insight

import "encoding/json"

type compact struct {
	Type    Type   `json:"type"`
	Content string `json:"content"`
}

type laneSummary struct {
	Persona  string    `json:"persona"`
	Insights []compact `json:"insights"`
}

// Serialize renders a list as the compact text handed to the next pipeline step.
func Serialize(list []Insight) string {
	b, _ := json.Marshal(toCompact(list))
	return string(b)
}

// SerializeLanes renders a per-lane map, in lane order, for the next pipeline step.
func SerializeLanes(m map[string][]Insight, lanes []string) string {
	out := make([]laneSummary, 0, len(lanes))
	for _, lane := range lanes {
		out = append(out, laneSummary{Persona: lane, Insights: toCompact(m[lane])})
	}
	b, _ := json.Marshal(out)
	return string(b)
}

func toCompact(list []Insight) []compact {
	out := make([]compact, 0, len(list))
	for _, in := range list {
		out = append(out, compact{Type: in.Type, Content: in.Content})
	}
	return out
}
