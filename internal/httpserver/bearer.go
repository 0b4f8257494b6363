package httpserver

import "strings"

// extractBearerToken pulls the token out of an Authorization header value.
// The header must contain exactly two space-separated parts with a
// case-insensitive "bearer" scheme; anything else yields an empty string.
func extractBearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
