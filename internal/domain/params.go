package domain

import (
	"strconv"
	"strings"
)

// ExchangeCommand is the chat command that triggers a rate report.
const ExchangeCommand = "exchange"

// ExchangeParams are the normalized arguments of one exchange request.
type ExchangeParams struct {
	Days       int
	Currencies CurrencySet
}

// ParseExchangeParams normalizes `[days] [currency...]`.
//
// The returned params are always usable. A non-nil error is an *InvalidParameterError
// describing a days token that was replaced by MaxDays; callers should report it, not fail.
// Integers outside [MinDays, MaxDays] are clamped silently.
func ParseExchangeParams(args []string) (ExchangeParams, error) {
	params := ExchangeParams{Days: MaxDays}
	if len(args) == 0 {
		params.Currencies = NewCurrencySet()
		return params, nil
	}

	params.Currencies = NewCurrencySet(args[1:]...)

	days, err := strconv.Atoi(strings.TrimSpace(args[0]))
	if err != nil {
		return params, &InvalidParameterError{Name: "days", Value: args[0], Fallback: MaxDays}
	}
	params.Days = ClampDays(days)
	return params, nil
}

// SplitCommand splits a chat line into its command token and arguments.
func SplitCommand(line string) (string, []string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}
	return fields[0], fields[1:]
}

// IsExchangeCommand reports whether the command token asks for a rate report.
func IsExchangeCommand(command string) bool {
	return strings.EqualFold(command, ExchangeCommand)
}
