// Package validation provides common validation utilities.
package validation

import (
	"fmt"

	"github.com/iwvelando/staffing-forecast/pkg/constants"
	"golang.org/x/text/language"
)

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	if format != constants.OutputFormatPretty && format != constants.OutputFormatCSV {
		return fmt.Errorf("expected output format of %s or %s, got %s",
			constants.OutputFormatPretty, constants.OutputFormatCSV, format)
	}
	return nil
}

// ValidateLocale checks that locale is a BCP 47 tag understood by the
// number formatter. An empty locale is accepted.
func ValidateLocale(locale string) error {
	if locale == "" {
		return nil
	}
	if _, err := language.Parse(locale); err != nil {
		return fmt.Errorf("invalid output locale %q: %w", locale, err)
	}
	return nil
}
