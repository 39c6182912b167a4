package types

import (
	"errors"
	"strings"
)

type Side string

const (
	SideTypeBuy  Side = "BUY"
	SideTypeSell Side = "SELL"
)

var UnknownSideErr = errors.New("side can only be buy or sell")

// ParseSide converts a user supplied trade type into a Side.
// Matching is case insensitive.
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy":
		return SideTypeBuy, nil
	case "sell":
		return SideTypeSell, nil
	default:
		return "", UnknownSideErr
	}
}
