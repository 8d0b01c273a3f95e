package domain

import (
	"strings"

	dErrors "terralegit/pkg/domain-errors"
)

// ParseCountryCode upper-cases and validates an ISO 3166-1 alpha-2 code.
func ParseCountryCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 2 || code[0] < 'A' || code[0] > 'Z' || code[1] < 'A' || code[1] > 'Z' {
		return "", dErrors.Newf(dErrors.CodeValidation, "country code %q must be two letters", code)
	}
	return code, nil
}
