package modes

import (
	"fmt"
	"strings"
)

type Mode uint8

const (
	ModeProduction Mode = iota
	ModeDevelopment
)

func (m Mode) String() string {
	switch m {
	case ModeProduction:
		return "production"
	case ModeDevelopment:
		return "development"
	}
	return "unknown"
}

// Checked reports whether ownership and isolation checks run on place
// entry.
func (m Mode) Checked() bool {
	return m == ModeDevelopment
}

func ParseMode(str string) (Mode, error) {
	switch strings.ToLower(str) {
	case "production", "prod":
		return ModeProduction, nil
	case "development", "dev":
		return ModeDevelopment, nil
	}
	return 0, fmt.Errorf("unknown mode: %s", str)
}
