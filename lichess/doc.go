// Package lichess is a minimal Lichess API client covering the endpoints the
// analysis tooling needs: the authenticated account and single game export.
// Failures map to APIError values that tell callers whether a retry is
// worthwhile.
package lichess
