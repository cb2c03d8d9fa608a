// Package fingerprint derives the cache keys used to de-duplicate analysis requests.
package fingerprint

import (
	"encoding/binary"
	"encoding/json"
	"sort"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"riff-be/pkg/pipeline"
)

// Of returns a stable key for text analyzed by the given lanes.
// Lanes are a set: order and duplicates do not change the key.
func Of(text string, lanes []string) string {
	set := canonicalLanes(lanes)

	d := xxhash.New()
	writeField(d, text)
	writeLen(d, len(set))
	for _, lane := range set {
		writeField(d, lane)
	}
	return strconv.FormatUint(d.Sum64(), 16)
}

// ForChain returns the key for running a chain definition against text.
// The whole step list (ids, kinds and configs) participates, so two chains
// that share step ids but differ in configuration never collide.
func ForChain(text string, steps []pipeline.StepSpec) string {
	canonical := make([]canonicalStep, len(steps))
	for i, s := range steps {
		canonical[i] = canonicalStep{ID: s.ID, Kind: string(s.Kind), Config: compactConfig(s.Config)}
	}
	// Marshalling a slice of structs with sorted-key maps is deterministic.
	b, _ := json.Marshal(canonical)
	return Of(text, []string{"chain:" + strconv.FormatUint(xxhash.Sum64(b), 16)})
}

type canonicalStep struct {
	ID     string `json:"id"`
	Kind   string `json:"kind"`
	Config any    `json:"config"`
}

// compactConfig re-decodes raw config so whitespace and key order are normalised.
func compactConfig(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	return v
}

func canonicalLanes(lanes []string) []string {
	seen := make(map[string]struct{}, len(lanes))
	out := make([]string, 0, len(lanes))
	for _, l := range lanes {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

func writeField(d *xxhash.Digest, s string) {
	writeLen(d, len(s))
	_, _ = d.WriteString(s)
}

func writeLen(d *xxhash.Digest, n int) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(n))
	_, _ = d.Write(buf[:])
}
