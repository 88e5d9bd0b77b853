package validation

import (
	"fmt"
	"strings"
)

// allowedCSVContentTypes are the client-declared types accepted for
// transaction imports. Browsers disagree on what a .csv file is.
var allowedCSVContentTypes = map[string]bool{
	"text/csv":                 true,
	"application/csv":          true,
	"application/vnd.ms-excel": true,
	"text/plain":               true,
	"application/octet-stream": true,
}

// ValidateCSVContentType checks the client-declared Content-Type of an
// uploaded import file. The file body is still parsed defensively either way.
func ValidateCSVContentType(contentType string) error {
	mediaType := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	if !allowedCSVContentTypes[mediaType] {
		return fmt.Errorf("%w: unsupported file type %q, expected a CSV file", ErrValidationFailed, contentType)
	}
	return nil
}
