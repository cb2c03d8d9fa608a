package prompt

// Persona is a named analysis perspective. The catalogue is static data.
type Persona struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Directive   string `json:"directive"`
}

var personas = []Persona{
	{
		ID:          "steelman",
		Name:        "Steelman",
		Description: "Charitable reconstruction",
		Color:       "cyan",
		Directive:   "Strengthen the argument before critique. Reconstruct the strongest version of the idea, then offer constructive counterpoints.",
	},
	{
		ID:          "red-team",
		Name:        "Red Team",
		Description: "Assumption attacks",
		Color:       "rose",
		Directive:   "Attack assumptions and failure modes. Adversarial but precise. Find the weakest points, edge cases and likely failures.",
	},
	{
		ID:          "socratic",
		Name:        "Socratic",
		Description: "Laddering questions",
		Color:       "violet",
		Directive:   "Ask short, pointed questions that ladder the reasoning, each probing deeper into assumptions or contradictions.",
	},
	{
		ID:          "lateral",
		Name:        "Lateral",
		Description: "Analogies and sideways frames",
		Color:       "purple",
		Directive:   "Offer unexpected analogies and sideways frames. Connect the idea to unrelated domains.",
	},
}

const genericDirective = "Critique the text from your own perspective with counter-arguments, questions and lateral prompts."

// Personas returns a copy of the catalogue.
func Personas() []Persona {
	out := make([]Persona, len(personas))
	copy(out, personas)
	return out
}

// Lookup finds a persona by id.
func Lookup(id string) (Persona, bool) {
	for _, p := range personas {
		if p.ID == id {
			return p, true
		}
	}
	return Persona{}, false
}

// Directive returns the persona directive, or a generic one for unknown lanes.
func Directive(id string) string {
	if p, ok := Lookup(id); ok {
		return p.Directive
	}
	return genericDirective
}
