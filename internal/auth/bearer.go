package auth

import (
	"crypto/subtle"
	"net/http"
)

const bearerPrefix = "Bearer "

// BearerHeader renders the Authorization header value a client must send.
func BearerHeader(token string) string {
	return bearerPrefix + token
}

// CheckBearer compares an Authorization header value against the expected
// token. The comparison is byte-exact: scheme case, spacing and trailing
// whitespace all count.
func CheckBearer(header, token string) error {
	if header == "" {
		return ErrMissingAuthorization
	}
	if !constantTimeEqual(header, BearerHeader(token)) {
		return ErrInvalidAuthorization
	}
	return nil
}

// ParseBearer checks the Authorization header of r against token. A header
// repeated more than once is rejected.
func ParseBearer(r *http.Request, token string) error {
	values := r.Header.Values("Authorization")
	switch len(values) {
	case 0:
		return ErrMissingAuthorization
	case 1:
		return CheckBearer(values[0], token)
	default:
		return ErrInvalidAuthorization
	}
}

func constantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
