package ai

// ModelPreset represents the model usage preset
type ModelPreset string

const (
	// PresetDocument tunes for full HTML document generation.
	PresetDocument ModelPreset = "document"
	// PresetOutline tunes for compact structured output (slide lists).
	PresetOutline ModelPreset = "outline"
)

// ModelConfig holds model configuration
type ModelConfig struct {
	Temperature      float32
	TopP             float32
	TopK             int
	MaxOutputTokens  int
	ResponseMimeType string // "application/json" or "text/plain"
}

// OpenAIConfig holds OpenAI-specific configuration
type OpenAIConfig struct {
	Temperature float32
	MaxTokens   int
	TopP        float32
}

// Request carries the prompt pair for one generation call.
type Request struct {
	System string
	User   string
}

// ProviderResult is the raw text reply from one provider call.
type ProviderResult struct {
	Text  string
	Model string
}

// GenerateMetadata contains metadata about the generation
type GenerateMetadata struct {
	Provider     string
	Model        string
	UsedFallback bool
}

// GenerateOptions holds options for AI generation
type GenerateOptions struct {
	Model     string
	JSONMode  bool
	Overrides *ModelConfig
}

// GetPresetConfig returns the configuration for a preset
func GetPresetConfig(preset ModelPreset) ModelConfig {
	switch preset {
	case PresetOutline:
		return ModelConfig{
			Temperature:     0.35,
			TopP:            0.9,
			TopK:            40,
			MaxOutputTokens: 2048,
		}
	case PresetDocument:
		fallthrough
	default:
		return ModelConfig{
			Temperature:     0.35,
			TopP:            0.95,
			TopK:            40,
			MaxOutputTokens: 3000,
		}
	}
}

// GetOpenAIPresetConfig returns OpenAI configuration for a preset
func GetOpenAIPresetConfig(preset ModelPreset) OpenAIConfig {
	switch preset {
	case PresetOutline:
		return OpenAIConfig{
			Temperature: 0.35,
			MaxTokens:   2048,
			TopP:        0.9,
		}
	case PresetDocument:
		fallthrough
	default:
		return OpenAIConfig{
			Temperature: 0.35,
			MaxTokens:   3000,
			TopP:        0.95,
		}
	}
}
