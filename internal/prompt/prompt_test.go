package prompt

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestUserPromptsCarryBothInstructionBoxes(t *testing.T) {
	format := "4 slides, dark theme"
	content := "weekly metrics for Acme Co"

	scenarios := []struct {
		name   string
		prompt string
	}{
		{"deck", BuildDeckUser(DeckVars{FormatInstructions: format, ContentInstructions: content})},
		{"report", BuildReportUser(ReportVars{FormatInstructions: format, ContentInstructions: content})},
		{"slides", BuildSlidesUser(SlidesVars{FormatInstructions: format, ContentInstructions: content})},
	}

	for _, scenario := range scenarios {
		t.Run(scenario.name, func(t *testing.T) {
			if !strings.Contains(scenario.prompt, format) {
				t.Fatal("expected the format instructions in the prompt")
			}
			if !strings.Contains(scenario.prompt, content) {
				t.Fatal("expected the content instructions in the prompt")
			}
			if strings.Contains(scenario.prompt, "%s") {
				t.Fatal("expected every placeholder to be filled")
			}
		})
	}
}

func TestSystemPromptsPinTheOutputShape(t *testing.T) {
	if s := BuildDeckSystem(); !strings.Contains(s, "self-contained HTML5") {
		t.Fatal("expected the deck system prompt to demand a self-contained document")
	}
	if s := BuildReportSystem(); !strings.Contains(s, "report") {
		t.Fatal("expected the report system prompt to describe a report")
	}
	if s := BuildSlidesSystem(); !strings.Contains(s, "JSON") {
		t.Fatal("expected the slides system prompt to demand JSON")
	}
}

func TestSlidesSystemPromptExampleIsValidJSON(t *testing.T) {
	system := BuildSlidesSystem()
	start := strings.Index(system, "{")
	end := strings.LastIndex(system, "}")
	if start < 0 || end <= start {
		t.Fatal("expected an embedded JSON example")
	}

	var example map[string]any
	if err := json.Unmarshal([]byte(system[start:end+1]), &example); err != nil {
		t.Fatalf("expected the embedded example to be valid JSON, got %v", err)
	}
	if _, ok := example["slides"]; !ok {
		t.Fatal("expected a slides array in the example")
	}
}
