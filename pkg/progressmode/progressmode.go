package progressmode

import (
	"fmt"
	"strings"
)

const (
	Auto   ProgressMode = "auto"
	Always ProgressMode = "always"
	Never  ProgressMode = "never"
)

// ProgressMode decides whether progress bars are drawn.
type ProgressMode string

func (p *ProgressMode) UnmarshalText(text []byte) error {
	return p.Set(string(text))
}

func (p *ProgressMode) String() string {
	return string(*p)
}

func (p *ProgressMode) Set(s string) error {
	switch mode := ProgressMode(strings.ToLower(s)); mode {
	case Auto, Always, Never:
		*p = mode
		return nil
	default:
		return fmt.Errorf("unknown progress mode '%s'. [%s, %s, %s]", s, Auto, Always, Never)
	}
}

func (p *ProgressMode) Type() string {
	return "progressMode"
}

// Enabled reports whether bars should be drawn on an output that is a
// terminal or not.
func (p ProgressMode) Enabled(terminal bool) bool {
	switch p {
	case Always:
		return true
	case Never:
		return false
	default:
		return terminal
	}
}
