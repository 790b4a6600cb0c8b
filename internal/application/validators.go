package application

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/go-playground/validator/v10"
)

// registerCatalogValidators registers domain-specific validation functions
// with the validator instance for use in catalog configuration validation.
// registerCatalogValidators adds the semver and identifier validators
// referenced by CatalogConfig struct tags.
// registerCatalogValidators returns an error if any registration fails.
func registerCatalogValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("semver", validateSemver); err != nil {
		return fmt.Errorf("failed to register semver validator: %w", err)
	}

	if err := v.RegisterValidation("identifier", validateIdentifier); err != nil {
		return fmt.Errorf("failed to register identifier validator: %w", err)
	}

	return nil
}

// validateSemver validates that a version string follows the
// major.minor.patch format with numeric components, for example "1.0.0".
// Pre-release and build metadata suffixes are not accepted; catalog
// versions stay plain so they can order lexically in file names.
func validateSemver(fl validator.FieldLevel) bool {
	version := fl.Field().String()

	parts := strings.Split(version, ".")
	if len(parts) != 3 {
		return false
	}

	for _, part := range parts {
		if part == "" {
			return false
		}
		for _, ch := range part {
			if ch < '0' || ch > '9' {
				return false
			}
		}
	}

	return true
}

// validateIdentifier validates that a string is a well-formed catalog
// identifier: it must start with a lowercase letter or digit and may
// contain only lowercase letters, digits, hyphens, and underscores.
// Identifiers are kept lowercase so that case-folded collision checks
// cannot be defeated by cosmetic casing differences.
func validateIdentifier(fl validator.FieldLevel) bool {
	id := fl.Field().String()
	if id == "" {
		return false
	}

	for i, ch := range id {
		switch {
		case ch >= 'a' && ch <= 'z':
		case ch >= '0' && ch <= '9':
		case (ch == '-' || ch == '_') && i > 0:
		default:
			return false
		}
	}

	return true
}

// maxSuggestionDistance caps how far an edit-distance match may be
// before it is considered noise rather than a likely typo.
const maxSuggestionDistance = 3

// closestIdentifier returns the candidate with the smallest edit
// distance to target, or an empty string when no candidate is close
// enough to plausibly be a typo of the target.
func closestIdentifier(target string, candidates []string) string {
	best := ""
	bestDist := maxSuggestionDistance + 1

	for _, candidate := range candidates {
		if candidate == target {
			continue
		}
		if dist := levenshtein.ComputeDistance(target, candidate); dist < bestDist {
			best = candidate
			bestDist = dist
		}
	}

	return best
}
