package parser

import "regexp"

// Characters allowed to survive extraction: letters, digits, underscore,
// whitespace and basic punctuation. Everything else is dropped. Letters and
// digits match their Unicode classes so non-Latin documents keep their text.
var disallowedRe = regexp.MustCompile(`[^\p{L}\p{N}_\s.,;:!?()-]`)

// Clean strips every character outside the allowed set. Idempotent.
func Clean(raw string) string {
	return disallowedRe.ReplaceAllString(raw, "")
}
