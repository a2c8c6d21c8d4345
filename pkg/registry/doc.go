// Package registry turns the process environment into a deduplicated list
// of provider credentials and enumerates candidate (credential, model)
// pairs for verification.
//
// Two key naming conventions are recognized per provider prefix:
//
//	GEMINI_API_KEY      -> gemini slot 1
//	GEMINI_API_KEY_2    -> gemini slot 2
//	HF_TOKEN            -> huggingface slot 1
//
// Several prefixes may alias the same provider type (GOOGLE_API_KEY also
// maps to gemini, CLAUDE_API_KEY to anthropic); the first matching pattern
// wins per (type, slot). Values that look like documentation placeholders
// are filtered out before any network call.
package registry
