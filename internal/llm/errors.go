package llm

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/raphaelgruber/legal-advisor/internal/apperr"
)

// ErrFatalAPI marks provider errors that retrying will not fix
// (credentials, billing, quota).
var ErrFatalAPI = errors.New("fatal API error")

var fatalPatterns = []string{
	"credit balance",
	"rate limit",
	"quota",
	"billing",
	"invalid api key",
	"authentication",
	"unauthorized",
}

var authPatterns = []string{
	"api key",
	"api_key",
	"authentication",
	"unauthorized",
	"permission denied",
}

// authStatus matches a 401/403 reported as a status code, not digits that
// happen to appear inside an address or port.
var authStatus = regexp.MustCompile(`(?i)(status|code|error|http)\w*[^0-9\n]{0,16}\b(401|403)\b`)

func hasAuthStatus(err error) bool {
	return err != nil && authStatus.MatchString(err.Error())
}

func containsAny(err error, patterns []string) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, p := range patterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

func isFatalAPIError(err error) bool {
	return containsAny(err, fatalPatterns) || hasAuthStatus(err)
}

func isAuthError(err error) bool {
	return containsAny(err, authPatterns) || hasAuthStatus(err)
}

func wrapFatalError(err error) error {
	if !isFatalAPIError(err) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrFatalAPI, err)
}

// classify maps a provider error onto the application taxonomy.
// Credential problems become ErrAPIKey; everything else ErrModelInvocation.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if isAuthError(err) {
		return fmt.Errorf("%w: %w", apperr.ErrAPIKey, wrapFatalError(err))
	}
	return fmt.Errorf("%w: %w", apperr.ErrModelInvocation, wrapFatalError(err))
}
