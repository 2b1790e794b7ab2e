package execshell

import (
	"regexp"
)

const (
	credentialPatternConstant     = `(://[^:/@\s]+:)[^@\s]+@`
	credentialReplacementConstant = "${1}***@"
)

var credentialPattern = regexp.MustCompile(credentialPatternConstant)

// RedactCredentials masks the password component of URLs embedded in text.
func RedactCredentials(text string) string {
	return credentialPattern.ReplaceAllString(text, credentialReplacementConstant)
}

// RedactArguments returns a copy of arguments with URL credentials masked.
func RedactArguments(arguments []string) []string {
	redacted := make([]string, len(arguments))
	for argumentIndex, argument := range arguments {
		redacted[argumentIndex] = RedactCredentials(argument)
	}
	return redacted
}
