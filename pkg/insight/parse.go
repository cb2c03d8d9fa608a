package insight

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
)

type rawItem struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

type rawBias struct {
	Type        string   `json:"type"`
	Content     string   `json:"content"`
	Explanation string   `json:"explanation"`
	Start       *float64 `json:"start"`
	End         *float64 `json:"end"`
}

// ParseList is the strict path for single-lane output: the outermost JSON
// array in raw, decoded as {type, content} items.
func ParseList(raw string) ([]Insight, bool) {
	body, ok := outermost(raw, '[', ']')
	if !ok {
		return nil, false
	}
	var items []rawItem
	if err := json.Unmarshal([]byte(body), &items); err != nil {
		return nil, false
	}
	out := make([]Insight, 0, len(items))
	for _, it := range items {
		out = append(out, New(NormalizeType(it.Type), it.Content, ""))
	}
	return out, true
}

// FallbackList treats the whole text as a single lateral prompt.
func FallbackList(raw string) []Insight {
	content := strings.TrimSpace(raw)
	if content == "" {
		content = "Unable to generate insight"
	}
	return []Insight{New(TypeLateralPrompt, content, "")}
}

// DecodeList never fails: strict parse first, fallback otherwise.
func DecodeList(raw string) []Insight {
	if list, ok := ParseList(raw); ok {
		return list
	}
	return FallbackList(raw)
}

// ParseLanes is the strict path for multi-lane output: the outermost JSON
// object in raw keyed by lane id. Requested lanes missing from the object get
// an empty list; keys that were not requested are dropped.
func ParseLanes(raw string, lanes []string) (map[string][]Insight, bool) {
	body, ok := outermost(raw, '{', '}')
	if !ok {
		return nil, false
	}
	var parsed map[string][]rawItem
	if err := json.Unmarshal([]byte(body), &parsed); err != nil {
		return nil, false
	}
	out := make(map[string][]Insight, len(lanes))
	for _, lane := range lanes {
		items := parsed[lane]
		list := make([]Insight, 0, len(items))
		for _, it := range items {
			list = append(list, New(NormalizeType(it.Type), it.Content, lane))
		}
		out[lane] = list
	}
	return out, true
}

// FallbackLanes splits the raw words evenly across lanes, one lateral prompt each.
func FallbackLanes(raw string, lanes []string) map[string][]Insight {
	out := make(map[string][]Insight, len(lanes))
	if len(lanes) == 0 {
		return out
	}
	words := strings.Fields(raw)
	per := int(math.Ceil(float64(len(words)) / float64(len(lanes))))
	for i, lane := range lanes {
		start := min(i*per, len(words))
		end := min(start+per, len(words))
		content := strings.Join(words[start:end], " ")
		out[lane] = []Insight{New(TypeLateralPrompt, content, lane)}
	}
	return out
}

// DecodeLanes never fails: strict parse first, fallback otherwise.
func DecodeLanes(raw string, lanes []string) map[string][]Insight {
	if m, ok := ParseLanes(raw, lanes); ok {
		return m
	}
	return FallbackLanes(raw, lanes)
}

// ParseBiases extracts bias annotations and drops any whose offsets do not
// address a non-empty range of text.
func ParseBiases(raw, text string) ([]Bias, error) {
	body, ok := outermost(raw, '[', ']')
	if !ok {
		return []Bias{}, nil
	}
	var items []rawBias
	if err := json.Unmarshal([]byte(body), &items); err != nil {
		return nil, fmt.Errorf("decode bias list: %w", err)
	}
	out := make([]Bias, 0, len(items))
	for _, it := range items {
		b := Bias{
			ID:          "bias-" + uuid.NewString(),
			Type:        it.Type,
			Content:     it.Content,
			Explanation: it.Explanation,
		}
		if b.Type == "" {
			b.Type = "unknown-bias"
		}
		if b.Explanation == "" {
			b.Explanation = "Potential bias detected."
		}
		if it.Start != nil {
			b.Start = int(*it.Start)
		}
		if it.End != nil {
			b.End = int(*it.End)
		}
		if b.ValidFor(text) {
			out = append(out, b)
		}
	}
	return out, nil
}

// outermost returns the substring from the first open to the last close delimiter.
func outermost(raw string, open, close byte) (string, bool) {
	start := strings.IndexByte(raw, open)
	end := strings.LastIndexByte(raw, close)
	if start < 0 || end <= start {
		return "", false
	}
	return raw[start : end+1], true
}
