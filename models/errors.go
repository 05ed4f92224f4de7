package models

import "errors"

var (
	// ErrMissingCredential means no API key was available for the action.
	// No upstream call is attempted.
	ErrMissingCredential = errors.New("missing API credential")

	// ErrEmptyPrompt means the generator was asked to run with an empty
	// prompt. Checked before any network call.
	ErrEmptyPrompt = errors.New("generation prompt is empty")

	// ErrNoAnalyses means synthesis was requested before any image was
	// analyzed.
	ErrNoAnalyses = errors.New("no analyses to synthesize")
)
