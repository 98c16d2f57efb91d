// Package sanitizer provides input normalization for free-text fields.
//
// All functions are idempotent: applying them twice gives the same result.
// Invalid input yields empty strings or slices rather than errors.
//
// Normalization includes:
//   - Strings: collapse whitespace, trim leading/trailing spaces
//   - Names and addresses: lowercase, non-alphanumerics folded to "_" ("St. Mary's" becomes "st_mary_s")
//   - Tokens: the words of a name or address with filler words removed, for fuzzy comparison
//   - Serial numbers: uppercase, inner whitespace removed
//   - Slices: remove duplicates and empty values after normalization
package sanitizer
