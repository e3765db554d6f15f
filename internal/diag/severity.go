package diag

import "fmt"

// Severity defines the importance of a diagnostic.
type Severity uint8

const (
	// SevInfo is for informational diagnostics.
	SevInfo Severity = iota
	// SevWarning is for warning diagnostics.
	SevWarning
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// MarshalText renders the severity in lower case for json/yaml reports.
func (s Severity) MarshalText() ([]byte, error) {
	switch s {
	case SevInfo:
		return []byte("info"), nil
	case SevWarning:
		return []byte("warning"), nil
	case SevError:
		return []byte("error"), nil
	}
	return nil, fmt.Errorf("unknown severity %d", s)
}

// ParseSeverity accepts the lower- or upper-case severity names.
func ParseSeverity(s string) (Severity, error) {
	switch s {
	case "info", "INFO":
		return SevInfo, nil
	case "warning", "WARNING", "warn":
		return SevWarning, nil
	case "error", "ERROR":
		return SevError, nil
	}
	return SevInfo, fmt.Errorf("unknown severity %q", s)
}
