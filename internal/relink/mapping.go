package relink

import (
	"fmt"
	"strings"
)

const (
	mappingSeparatorConstant       = "==>"
	mappingLineTerminatorConstant  = "\r\n"
	schemeSeparatorConstant        = "://"
	hostPrefixConstant             = "@"
	pathSeparatorConstant          = "/"
	invalidBaseURLTemplateConstant = "base url %q has no scheme"
)

// DestinationURL re-roots destinationBaseURL under rootGroupFullPath. An empty
// group path leaves the base URL unchanged.
func DestinationURL(destinationBaseURL string, rootGroupFullPath string) string {
	trimmedBase := strings.TrimRight(strings.TrimSpace(destinationBaseURL), pathSeparatorConstant)
	trimmedGroupPath := strings.Trim(strings.TrimSpace(rootGroupFullPath), pathSeparatorConstant)
	if len(trimmedGroupPath) == 0 {
		return trimmedBase
	}
	return trimmedBase + pathSeparatorConstant + trimmedGroupPath
}

// BuildMapping renders the replacement rules understood by git-filter-repo's
// --replace-text: the full URL pair followed by the bare-host pair, each line
// terminated by CRLF.
func BuildMapping(sourceURL string, destinationURL string) (string, error) {
	trimmedSource := strings.TrimRight(strings.TrimSpace(sourceURL), pathSeparatorConstant)
	trimmedDestination := strings.TrimRight(strings.TrimSpace(destinationURL), pathSeparatorConstant)

	sourceHost, sourceError := stripScheme(trimmedSource)
	if sourceError != nil {
		return "", sourceError
	}
	destinationHost, destinationError := stripScheme(trimmedDestination)
	if destinationError != nil {
		return "", destinationError
	}

	var builder strings.Builder
	writeRule(&builder, trimmedSource, trimmedDestination)
	writeRule(&builder, hostPrefixConstant+sourceHost, hostPrefixConstant+destinationHost)
	return builder.String(), nil
}

func writeRule(builder *strings.Builder, from string, to string) {
	builder.WriteString(from)
	builder.WriteString(mappingSeparatorConstant)
	builder.WriteString(to)
	builder.WriteString(mappingLineTerminatorConstant)
}

func stripScheme(address string) (string, error) {
	_, remainder, found := strings.Cut(address, schemeSeparatorConstant)
	if !found || len(remainder) == 0 {
		return "", fmt.Errorf(invalidBaseURLTemplateConstant, address)
	}
	return remainder, nil
}
