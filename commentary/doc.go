// Package commentary turns a ranked analysis into short natural-language
// position commentary via a hosted LLM. The Commentator interface keeps
// callers provider agnostic; concrete adapters live in the anthropic and
// openai subpackages.
package commentary
