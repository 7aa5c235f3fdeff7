package voice

import (
	"fmt"
	"strings"
)

// NewProvider builds the configured provider.
func NewProvider(mode string) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "console":
		return NewConsoleProvider(), nil
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("invalid voice provider %q (expected console|mock)", mode)
	}
}
