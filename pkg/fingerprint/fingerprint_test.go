package fingerprint

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"riff-be/pkg/pipeline"
)

func TestOf_LaneOrderIndependent(t *testing.T) {
	tests := []struct {
		name string
		a, b []string
	}{
		{"two lanes swapped", []string{"steelman", "red-team"}, []string{"red-team", "steelman"}},
		{"three lanes rotated", []string{"a", "b", "c"}, []string{"c", "a", "b"}},
		{"duplicates collapse", []string{"a", "a", "b"}, []string{"b", "a"}},
		{"nil and empty", nil, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, Of("some text", tt.a), Of("some text", tt.b))
		})
	}
}

func TestOf_DiffersOnChange(t *testing.T) {
	base := Of("the quick brown fox", []string{"socratic"})

	assert.NotEqual(t, base, Of("the quick brown fox!", []string{"socratic"}))
	assert.NotEqual(t, base, Of("the quick brown fox", []string{"socratic", "lateral"}))
	assert.NotEqual(t, base, Of("the quick brown fox", nil))
}

func TestOf_NoSeparatorAmbiguity(t *testing.T) {
	assert.NotEqual(t, Of("A", []string{"B,C"}), Of("A,B", []string{"C"}))
	assert.NotEqual(t, Of("A::B", nil), Of("A", []string{"B"}))
	assert.NotEqual(t, Of("", []string{"ab"}), Of("", []string{"a", "b"}))
}

func TestOf_DistinctTextsDoNotCollide(t *testing.T) {
	seen := make(map[string]string, 5000)
	for i := 0; i < 5000; i++ {
		text := fmt.Sprintf("input number %d", i)
		fp := Of(text, []string{"steelman"})
		prev, dup := seen[fp]
		assert.False(t, dup, "collision between %q and %q", prev, text)
		seen[fp] = text
	}
}

func TestForChain(t *testing.T) {
	steps := []pipeline.StepSpec{
		{ID: "s1", Kind: pipeline.KindPersona, Config: json.RawMessage(`{"personas":["steelman"]}`)},
		{ID: "s2", Kind: pipeline.KindSummarize},
	}
	reformatted := []pipeline.StepSpec{
		{ID: "s1", Kind: pipeline.KindPersona, Config: json.RawMessage(`{ "personas" : [ "steelman" ] }`)},
		{ID: "s2", Kind: pipeline.KindSummarize},
	}
	otherConfig := []pipeline.StepSpec{
		{ID: "s1", Kind: pipeline.KindPersona, Config: json.RawMessage(`{"personas":["red-team"]}`)},
		{ID: "s2", Kind: pipeline.KindSummarize},
	}

	assert.Equal(t, ForChain("text input", steps), ForChain("text input", reformatted))
	assert.NotEqual(t, ForChain("text input", steps), ForChain("text input", otherConfig))
	assert.NotEqual(t, ForChain("text input", steps), ForChain("other input", steps))
}
