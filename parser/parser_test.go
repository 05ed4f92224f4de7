package parser

import (
	"testing"
)

type analysisDoc struct {
	DominantColors []string `json:"dominant_colors"`
	Hooks          []string `json:"hooks"`
	Composition    string   `json:"composition"`
	Mood           string   `json:"mood"`
}

func TestParseObject(t *testing.T) {
	tests := []struct {
		name     string
		response string
		wantErr  bool
		expected analysisDoc
	}{
		{
			name: "valid JSON response",
			response: `{
				"dominant_colors": ["red", "yellow"],
				"hooks": ["urgency"],
				"composition": "centered subject",
				"mood": "energetic"
			}`,
			expected: analysisDoc{
				DominantColors: []string{"red", "yellow"},
				Hooks:          []string{"urgency"},
				Composition:    "centered subject",
				Mood:           "energetic",
			},
		},
		{
			name: "markdown formatted JSON",
			response: "Here is the analysis:\n\n```json\n" + `{
  "dominant_colors": ["teal"],
  "hooks": ["curiosity", "FOMO"],
  "composition": "rule of thirds",
  "mood": "calm"
}` + "\n```\n\nLet me know if you need more detail.",
			expected: analysisDoc{
				DominantColors: []string{"teal"},
				Hooks:          []string{"curiosity", "FOMO"},
				Composition:    "rule of thirds",
				Mood:           "calm",
			},
		},
		{
			name: "markdown code block without language identifier",
			response: "```\n" + `{"dominant_colors": ["black"], "hooks": [], "composition": "minimal", "mood": "serious"}` + "\n```",
			expected: analysisDoc{
				DominantColors: []string{"black"},
				Hooks:          []string{},
				Composition:    "minimal",
				Mood:           "serious",
			},
		},
		{
			name:     "JSON embedded in prose",
			response: `Sure! The analysis is {"dominant_colors": ["blue"], "hooks": ["novelty"], "composition": "diagonal", "mood": "bold"} as requested.`,
			expected: analysisDoc{
				DominantColors: []string{"blue"},
				Hooks:          []string{"novelty"},
				Composition:    "diagonal",
				Mood:           "bold",
			},
		},
		{
			name: "trailing commas before closing braces",
			response: `{
				"dominant_colors": ["green", "white",],
				"hooks": ["social proof",],
				"composition": "split frame",
				"mood": "fresh",
			}`,
			expected: analysisDoc{
				DominantColors: []string{"green", "white"},
				Hooks:          []string{"social proof"},
				Composition:    "split frame",
				Mood:           "fresh",
			},
		},
		{
			name: "trailing commas inside a markdown block",
			response: "```json\n" + `{"dominant_colors": ["red",], "hooks": [], "composition": "tight crop", "mood": "urgent",}` + "\n```",
			expected: analysisDoc{
				DominantColors: []string{"red"},
				Hooks:          []string{},
				Composition:    "tight crop",
				Mood:           "urgent",
			},
		},
		{
			name:     "plain prose with no JSON",
			response: "I could not analyze this image, sorry.",
			wantErr:  true,
		},
		{
			name:     "unbalanced JSON",
			response: `{"dominant_colors": ["red"`,
			wantErr:  true,
		},
		{
			name:     "empty response",
			response: "",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got analysisDoc
			err := ParseObject(tt.response, &got)

			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseObject() expected error but got none")
				}
				return
			}

			if err != nil {
				t.Errorf("ParseObject() unexpected error: %v", err)
				return
			}

			if len(got.DominantColors) != len(tt.expected.DominantColors) {
				t.Errorf("ParseObject() dominant_colors = %v, want %v", got.DominantColors, tt.expected.DominantColors)
			} else {
				for i := range got.DominantColors {
					if got.DominantColors[i] != tt.expected.DominantColors[i] {
						t.Errorf("ParseObject() dominant_colors[%d] = %v, want %v", i, got.DominantColors[i], tt.expected.DominantColors[i])
					}
				}
			}

			if len(got.Hooks) != len(tt.expected.Hooks) {
				t.Errorf("ParseObject() hooks = %v, want %v", got.Hooks, tt.expected.Hooks)
			}

			if got.Composition != tt.expected.Composition {
				t.Errorf("ParseObject() composition = %v, want %v", got.Composition, tt.expected.Composition)
			}

			if got.Mood != tt.expected.Mood {
				t.Errorf("ParseObject() mood = %v, want %v", got.Mood, tt.expected.Mood)
			}
		})
	}
}

func TestExtractObject(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"bare object", `{"a": 1}`, `{"a": 1}`},
		{"object in prose", `before {"a": 1} after`, `{"a": 1}`},
		{"no braces", "no json here", "no json here"},
		{"only open brace", "{ unclosed", "{ unclosed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractObject(tt.input); got != tt.expected {
				t.Errorf("ExtractObject(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestRepairTrailingCommas(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"object trailing comma", `{"a": 1,}`, `{"a": 1}`},
		{"array trailing comma", `["a", "b",]`, `["a", "b"]`},
		{"comma with whitespace", "{\"a\": 1,\n}", "{\"a\": 1}"},
		{"no trailing commas", `{"a": [1, 2]}`, `{"a": [1, 2]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RepairTrailingCommas(tt.input); got != tt.expected {
				t.Errorf("RepairTrailingCommas(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
