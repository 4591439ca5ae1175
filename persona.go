package nimbus

import "strings"

// Persona parameterizes a generation turn with a voice and a system
// instruction. The display name is a localization key resolved by the
// presentation layer.
type Persona struct {
	ID      string
	NameKey string
	Icon    string

	// SystemInstruction may contain a {name} placeholder that is
	// interpolated with the user's display name at request time.
	SystemInstruction string
}

// Instruction returns the system instruction with the user's display name
// interpolated. When no name is known, a neutral reference is used.
func (p Persona) Instruction(userName string) string {
	if p.SystemInstruction == "" {
		return ""
	}
	if userName == "" {
		userName = "the user"
	}
	return strings.ReplaceAll(p.SystemInstruction, "{name}", userName)
}

// DefaultPersonas returns the built-in persona set. The first entry is the
// default chat persona.
func DefaultPersonas() []Persona {
	return []Persona{
		{
			ID:                "default",
			NameKey:           "persona_nimbus",
			Icon:              "☁️",
			SystemInstruction: "You are Nimbus, a friendly and imaginative assistant. Address {name} warmly and keep answers clear and concise.",
		},
		{
			ID:                "code",
			NameKey:           "persona_code",
			Icon:              "💻",
			SystemInstruction: "You are a precise programming assistant helping {name}. Prefer working code examples over prose and call out pitfalls explicitly.",
		},
		{
			ID:                "muse",
			NameKey:           "persona_muse",
			Icon:              "🎨",
			SystemInstruction: "You are a creative muse for {name}. Offer vivid, unexpected ideas and build on whatever direction the conversation takes.",
		},
	}
}

// PersonaByID looks up a built-in persona, falling back to the default
// persona when the ID is unknown.
func PersonaByID(id string) Persona {
	personas := DefaultPersonas()
	for _, p := range personas {
		if p.ID == id {
			return p
		}
	}
	return personas[0]
}
