package GoOperator

import (
	"errors"
	"strconv"
	"strings"

	opererrors "github.com/A13xB0/GoOperator/errors"
)

// Config holds the fully-resolved connection parameters for a
// subscription. Resolving defaults from the environment is the caller's
// concern; Subscribe only validates what it is given.
type Config struct {
	// URL is the operator connection string. It may be empty only when a
	// custom operator is injected with WithOperator.
	URL string

	// Version is the consumer's semantic version, "major.minor.patch".
	Version string

	// Prefetch is the maximum number of tasks processed concurrently.
	// Zero means the default of 1.
	Prefetch int
}

// resolve applies defaults and validates the configuration. hasOperator
// relaxes the URL requirement, since an injected operator brings its own
// connection.
func (c Config) resolve(hasOperator bool) (Config, error) {
	if c.Prefetch == 0 {
		c.Prefetch = 1
	}

	var errs []error
	if c.URL == "" && !hasOperator {
		errs = append(errs, opererrors.ErrorInvalidURL)
	}
	if !validVersion(c.Version) {
		errs = append(errs, opererrors.ErrorInvalidVersion)
	}
	if c.Prefetch < 0 {
		errs = append(errs, opererrors.ErrorInvalidPrefetch)
	}
	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}
	return c, nil
}

// validVersion reports whether v is a strict "major.minor.patch" decimal
// version.
func validVersion(v string) bool {
	parts := strings.Split(v, ".")
	if len(parts) != 3 {
		return false
	}
	for _, p := range parts {
		if p == "" {
			return false
		}
		if _, err := strconv.ParseUint(p, 10, 32); err != nil {
			return false
		}
	}
	return true
}
