// Package tokenizer estimates the token cost of conversation text. It backs
// the summarizer's trigger check and its before/after accounting, and is the
// concrete implementation of the countTokens collaborator: count text under
// a GPT-4-compatible BPE, returning 0 for empty input.
package tokenizer

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// encodingName is the cl100k_base BPE used by GPT-4 and GPT-3.5-turbo. The
// same encoding is used whichever of the four adapters is in play, so the
// count is a provider-agnostic approximation, not an exact per-provider
// count.
const encodingName = "cl100k_base"

var (
	once sync.Once
	enc  *tiktoken.Tiktoken
	errI error
)

func encoding() (*tiktoken.Tiktoken, error) {
	once.Do(func() {
		enc, errI = tiktoken.GetEncoding(encodingName)
	})
	return enc, errI
}

// Count returns the number of BPE tokens in text. Empty input always
// yields 0, even if the encoding fails to load.
func Count(text string) int {
	if text == "" {
		return 0
	}
	e, err := encoding()
	if err != nil {
		return fallbackCount(text)
	}
	return len(e.Encode(text, nil, nil))
}

// fallbackCount is used only if the cl100k_base ranks can't be loaded
// (e.g. no network access to fetch the BPE file on first use). It keeps the
// summarizer's trigger check functional, at reduced accuracy, rather than
// failing the whole loop over a tokenizer outage.
func fallbackCount(text string) int {
	return (len(text) + 3) / 4
}
