package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLanes_IncludesDirectives(t *testing.T) {
	p := Lanes("Cities should ban cars.", []string{"steelman", "custom-lane"})

	assert.Contains(t, p, Directive("steelman"))
	assert.Contains(t, p, "custom-lane: "+genericDirective)
	assert.Contains(t, p, "Cities should ban cars.")
}

func TestLookup(t *testing.T) {
	p, ok := Lookup("socratic")
	assert.True(t, ok)
	assert.Equal(t, "Socratic", p.Name)

	_, ok = Lookup("nobody")
	assert.False(t, ok)
	assert.Len(t, Personas(), 4)
}
