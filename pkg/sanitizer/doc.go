// Package sanitizer provides input normalization for member and property data.
//
// All normalization functions are idempotent - applying them multiple times
// produces the same result. Functions handle invalid input gracefully,
// typically by returning empty strings rather than errors.
//
// Normalization includes:
//   - Phone numbers: convert to E.164 format (+[country][number])
//   - Names/addresses: lowercase, replace special characters with underscores
//   - Guest labels: lowercase, keep letters only - "Family Trip" becomes "family_trip"
//   - Strings: collapse whitespace, trim leading/trailing spaces
//   - Slices: remove duplicates and empty values after normalization
//   - Numbers: clamp to valid ranges
package sanitizer
