package recovery

import (
	"regexp"
	"strings"
)

// fallbackPattern matches the demo keys and the PRO keys handed out at
// events. It is only consulted when the license service cannot be reached.
var fallbackPattern = regexp.MustCompile(`(?i)^(LICENSE-DEMO-\d{4}|PRO(-[A-Z0-9]{4}){3,4})$`)

// MatchesFallback reports whether license passes the offline check.
func MatchesFallback(license string) bool {
	return fallbackPattern.MatchString(strings.TrimSpace(license))
}
