package request

import (
	"errors"
	"regexp"

	"github.com/viant/wfsync/syncerr"
)

// KeyLength is the number of hex characters in an API key.
const KeyLength = 32

var keyPattern = regexp.MustCompile(`^(?i)[a-f0-9]{32}$`)

// ValidateAPIKey checks that key is exactly 32 hexadecimal characters.
func ValidateAPIKey(key string) error {
	if key == "" {
		return syncerr.Config("request.validate_key", "key", key, errors.New("API key is required"))
	}
	if !keyPattern.MatchString(key) {
		return syncerr.Configf("request.validate_key", "key", key, "API key must be %d hex characters", KeyLength)
	}
	return nil
}
