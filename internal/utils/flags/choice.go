package flags

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

const (
	choicePlaceholderPrefix  = "<"
	choicePlaceholderSuffix  = ">"
	choiceSeparatorLiteral   = "|"
	choiceUsageEmptyTemplate = "`%s`"
	choiceUsageFullTemplate  = "`%s` %s"
	choiceTypeName           = "choice"
	invalidChoiceTemplate    = "invalid value %q, expected one of %s"
)

// Choice is a flag value restricted to a fixed set of lowercase options.
type Choice struct {
	value   string
	choices []string
}

// NewChoice builds a Choice holding defaultChoice.
func NewChoice(defaultChoice string, choices []string) *Choice {
	return &Choice{value: normalizeChoice(defaultChoice), choices: uniqueChoices(choices)}
}

// AddChoiceFlag registers a Choice on flagSet with a usage string that lists the options.
func AddChoiceFlag(flagSet *pflag.FlagSet, name string, defaultChoice string, choices []string, description string) *Choice {
	choice := NewChoice(defaultChoice, choices)
	flagSet.Var(choice, name, FormatChoiceUsage(defaultChoice, choices, description))
	return choice
}

// Set validates and stores rawValue.
func (choice *Choice) Set(rawValue string) error {
	normalizedValue := normalizeChoice(rawValue)
	for _, candidate := range choice.choices {
		if candidate == normalizedValue {
			choice.value = normalizedValue
			return nil
		}
	}
	return fmt.Errorf(invalidChoiceTemplate, rawValue, strings.Join(choice.choices, choiceSeparatorLiteral))
}

// String reports the selected option.
func (choice *Choice) String() string {
	if choice == nil {
		return ""
	}
	return choice.value
}

// Type names the flag value kind in help output.
func (choice *Choice) Type() string {
	return choiceTypeName
}

// FormatChoiceUsage builds a usage string where the default option is capitalized inside a placeholder.
func FormatChoiceUsage(defaultChoice string, choices []string, description string) string {
	normalizedDefault := normalizeChoice(defaultChoice)
	displayed := uniqueChoices(choices)
	for index, candidate := range displayed {
		if candidate == normalizedDefault && len(candidate) > 0 {
			displayed[index] = strings.ToUpper(candidate)
		}
	}

	placeholder := choicePlaceholderPrefix + strings.Join(displayed, choiceSeparatorLiteral) + choicePlaceholderSuffix
	if len(strings.TrimSpace(description)) == 0 {
		return fmt.Sprintf(choiceUsageEmptyTemplate, placeholder)
	}
	return fmt.Sprintf(choiceUsageFullTemplate, placeholder, description)
}

func uniqueChoices(choices []string) []string {
	unique := make([]string, 0, len(choices))
	seen := make(map[string]struct{}, len(choices))
	for _, candidate := range choices {
		normalizedCandidate := normalizeChoice(candidate)
		if len(normalizedCandidate) == 0 {
			continue
		}
		if _, exists := seen[normalizedCandidate]; exists {
			continue
		}
		seen[normalizedCandidate] = struct{}{}
		unique = append(unique, normalizedCandidate)
	}
	return unique
}

func normalizeChoice(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
