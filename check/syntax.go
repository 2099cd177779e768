package check

import "regexp"

// syntaxPattern accepts local-part@domain.tld where the final label is at
// least two letters. It is anchored at both ends.
var syntaxPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ValidSyntax reports whether email is structurally an address.
// It performs no trimming and no network access.
func ValidSyntax(email string) bool {
	return syntaxPattern.MatchString(email)
}
