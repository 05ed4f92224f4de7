package analyzer

import (
	"fmt"
	"strings"
)

// FieldKind says whether a profile key holds a list of short strings or a
// single short string.
type FieldKind int

const (
	KindList FieldKind = iota
	KindString
)

// Field is one expected key of an analysis profile.
type Field struct {
	Key  string
	Kind FieldKind
	Hint string
}

// Profile is a fixed key set the upstream model is instructed to fill.
type Profile struct {
	Name   string
	Fields []Field
}

var profiles = map[string]Profile{
	"marketing": {
		Name: "marketing",
		Fields: []Field{
			{Key: "dominant_colors", Kind: KindList, Hint: "array of 3-5 color words"},
			{Key: "hooks", Kind: KindList, Hint: "array of psychological hooks"},
			{Key: "composition", Kind: KindString, Hint: "short description of the layout"},
			{Key: "text_style", Kind: KindString, Hint: "short description of any text styling"},
			{Key: "mood", Kind: KindString, Hint: "one or two words"},
		},
	},
	"critique": {
		Name: "critique",
		Fields: []Field{
			{Key: "patterns", Kind: KindList, Hint: "array of recurring visual patterns"},
			{Key: "psychology", Kind: KindString, Hint: "short description of the psychological appeal"},
			{Key: "pros", Kind: KindList, Hint: "array of strengths"},
			{Key: "cons", Kind: KindList, Hint: "array of weaknesses"},
		},
	},
	"breakdown": {
		Name: "breakdown",
		Fields: []Field{
			{Key: "visual_breakdown", Kind: KindString, Hint: "short structural breakdown"},
			{Key: "psychology", Kind: KindString, Hint: "short description of the psychological appeal"},
			{Key: "pattern", Kind: KindString, Hint: "the single dominant pattern"},
		},
	},
}

// LookupProfile returns the named profile, falling back to "marketing" for
// unknown names.
func LookupProfile(name string) Profile {
	if p, ok := profiles[strings.ToLower(strings.TrimSpace(name))]; ok {
		return p
	}
	return profiles["marketing"]
}

// Defaults returns a field map with every profile key present and empty.
func (p Profile) Defaults() map[string]any {
	fields := make(map[string]any, len(p.Fields))
	for _, f := range p.Fields {
		if f.Kind == KindList {
			fields[f.Key] = []string{}
		} else {
			fields[f.Key] = ""
		}
	}
	return fields
}

// keySpec renders the key list for the user instruction, e.g.
// `dominant_colors (array of 3-5 color words), mood (one or two words)`.
func (p Profile) keySpec() string {
	parts := make([]string, 0, len(p.Fields))
	for _, f := range p.Fields {
		parts = append(parts, fmt.Sprintf("%s (%s)", f.Key, f.Hint))
	}
	return strings.Join(parts, ", ")
}
