package nimbus

// Model represents a specific generation model identifier.
type Model string

const (
	// ModelFlash is the fast default text model.
	ModelFlash Model = "gemini-2.5-flash"

	// ModelPro is the higher-quality text model.
	ModelPro Model = "gemini-2.5-pro"

	// ModelImagen is the image generation model.
	ModelImagen Model = "imagen-3.0-generate-002"

	ModelDefault      Model = ModelFlash
	ModelDefaultImage Model = ModelImagen
)

// String returns the model identifier.
func (m Model) String() string {
	return string(m)
}

// ModelKind distinguishes text models from image models.
type ModelKind string

const (
	ModelKindText  ModelKind = "text"
	ModelKindImage ModelKind = "image"
)

// ModelInfo contains display metadata for a model, used by a model switcher
// surface to present the available choices.
type ModelInfo struct {
	ID Model

	// DisplayName is the short human-readable name.
	DisplayName string

	Kind ModelKind
}

// KnownModels returns the built-in model catalog.
// The first text model is the default.
func KnownModels() []ModelInfo {
	return []ModelInfo{
		{ID: ModelFlash, DisplayName: "Flash", Kind: ModelKindText},
		{ID: ModelPro, DisplayName: "Pro", Kind: ModelKindText},
		{ID: ModelImagen, DisplayName: "Imagen", Kind: ModelKindImage},
	}
}

// AspectRatio represents the aspect ratio for generated images.
type AspectRatio string

const (
	AspectRatio1x1  AspectRatio = "1:1"
	AspectRatio16x9 AspectRatio = "16:9"
	AspectRatio9x16 AspectRatio = "9:16"
	AspectRatio4x3  AspectRatio = "4:3"
	AspectRatio3x4  AspectRatio = "3:4"

	AspectRatioDefault AspectRatio = AspectRatio1x1
)

// String returns the string representation for API calls.
func (a AspectRatio) String() string {
	return string(a)
}
