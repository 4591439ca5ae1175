// Package locale provides the localized string tables consumed by the
// session core: placeholder text for in-flight messages, user-safe failure
// messages, and composer loading lines.
//
// Language resolution uses golang.org/x/text language matching so that
// preferences like "es-MX" or "fr-CA" resolve to the closest supported
// table. English is the fallback for unknown languages and missing keys.
package locale

import (
	"strings"

	"golang.org/x/text/language"
)

var supported = []language.Tag{
	language.English, // first entry is the fallback
	language.Spanish,
	language.French,
	language.German,
}

var matcher = language.NewMatcher(supported)

// Strings resolves keys against a single language table.
type Strings struct {
	tag   language.Tag
	table map[string]string
}

// Match returns the Strings for the best-matching supported language among
// the caller's preferences (BCP 47 tags, most preferred first). Unparseable
// or unsupported preferences fall back to English.
func Match(preferred ...string) *Strings {
	tags := make([]language.Tag, 0, len(preferred))
	for _, p := range preferred {
		if tag, err := language.Parse(p); err == nil {
			tags = append(tags, tag)
		}
	}
	_, i, _ := matcher.Match(tags...)
	return &Strings{tag: supported[i], table: tables[supported[i]]}
}

// Default returns the English string table.
func Default() *Strings {
	return &Strings{tag: language.English, table: tables[language.English]}
}

// Tag returns the resolved language tag.
func (s *Strings) Tag() language.Tag {
	return s.tag
}

// T looks up a key in the resolved table, falling back to English and then
// to the key itself.
func (s *Strings) T(key string) string {
	if v, ok := s.table[key]; ok {
		return v
	}
	if v, ok := tables[language.English][key]; ok {
		return v
	}
	return key
}

// Tr looks up a key and substitutes {placeholder} occurrences from repl.
func (s *Strings) Tr(key string, repl map[string]string) string {
	out := s.T(key)
	for placeholder, value := range repl {
		out = strings.ReplaceAll(out, "{"+placeholder+"}", value)
	}
	return out
}

// LoadingMessages returns the composer's rotating loading lines.
func (s *Strings) LoadingMessages() []string {
	return []string{
		s.T("loading_0"),
		s.T("loading_1"),
		s.T("loading_2"),
		s.T("loading_3"),
	}
}

// String table keys.
const (
	KeyGreeting        = "greeting"
	KeyThinking        = "thinking"
	KeyGeneratingImage = "generating_image"
	KeyTextFailure     = "text_failure"
	KeyImageFailure    = "image_failure"
	KeyPersonaNotice   = "persona_notice"
)

var tables = map[language.Tag]map[string]string{
	language.English: {
		KeyGreeting:        "Hello! I am Nimbus, your reality composer. You can chat with me, or ask me to generate an image by starting your prompt with `/imagine`.",
		KeyThinking:        "Thinking...",
		KeyGeneratingImage: "Generating image...",
		KeyTextFailure:     "Failed to generate a response. Please try again.",
		KeyImageFailure:    "No image was generated.",
		KeyPersonaNotice:   "You are now chatting with the **{name}** persona. {icon}",
		"persona_nimbus":   "Nimbus",
		"persona_code":     "Code Helper",
		"persona_muse":     "Creative Muse",
		"loading_0":        "Warming up the pixels...",
		"loading_1":        "Mixing light and color...",
		"loading_2":        "Composing your reality...",
		"loading_3":        "Almost there...",
	},
	language.Spanish: {
		KeyGreeting:        "¡Hola! Soy Nimbus, tu compositor de realidades. Puedes conversar conmigo o pedirme que genere una imagen empezando tu mensaje con `/imagine`.",
		KeyThinking:        "Pensando...",
		KeyGeneratingImage: "Generando imagen...",
		KeyTextFailure:     "No se pudo generar una respuesta. Inténtalo de nuevo.",
		KeyImageFailure:    "No se generó ninguna imagen.",
		KeyPersonaNotice:   "Ahora estás conversando con la persona **{name}**. {icon}",
		"loading_0":        "Calentando los píxeles...",
		"loading_1":        "Mezclando luz y color...",
		"loading_2":        "Componiendo tu realidad...",
		"loading_3":        "Casi listo...",
	},
	language.French: {
		KeyGreeting:        "Bonjour ! Je suis Nimbus, votre compositeur de réalités. Discutez avec moi ou demandez-moi de générer une image en commençant votre message par `/imagine`.",
		KeyThinking:        "Réflexion...",
		KeyGeneratingImage: "Génération de l'image...",
		KeyTextFailure:     "Impossible de générer une réponse. Veuillez réessayer.",
		KeyImageFailure:    "Aucune image n'a été générée.",
		KeyPersonaNotice:   "Vous discutez maintenant avec le persona **{name}**. {icon}",
		"loading_0":        "Préchauffage des pixels...",
		"loading_1":        "Mélange de lumière et de couleur...",
		"loading_2":        "Composition de votre réalité...",
		"loading_3":        "Presque terminé...",
	},
	language.German: {
		KeyGreeting:        "Hallo! Ich bin Nimbus, dein Realitätskomponist. Du kannst mit mir chatten oder mich mit `/imagine` am Anfang deiner Nachricht ein Bild erzeugen lassen.",
		KeyThinking:        "Denke nach...",
		KeyGeneratingImage: "Bild wird erzeugt...",
		KeyTextFailure:     "Es konnte keine Antwort erzeugt werden. Bitte versuche es erneut.",
		KeyImageFailure:    "Es wurde kein Bild erzeugt.",
		KeyPersonaNotice:   "Du chattest jetzt mit der Persona **{name}**. {icon}",
		"loading_0":        "Pixel werden aufgewärmt...",
		"loading_1":        "Licht und Farbe werden gemischt...",
		"loading_2":        "Deine Realität wird komponiert...",
		"loading_3":        "Fast fertig...",
	},
}
