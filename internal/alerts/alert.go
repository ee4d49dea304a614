package alerts

// Type is an alert category
type Type string

const (
	Rain   Type = "rain"
	Wind   Type = "wind"
	UV     Type = "uv"
	Freeze Type = "freeze"
	Heat   Type = "heat"
)

// AllTypes lists every alert type in rule order
var AllTypes = []Type{Rain, Wind, UV, Freeze, Heat}

// Valid reports whether t is one of the known alert types
func (t Type) Valid() bool {
	for _, known := range AllTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Severity grades an alert
type Severity string

const (
	Info    Severity = "info"
	Warning Severity = "warning"
)

// Rank orders severities. Unknown values rank with info.
func (s Severity) Rank() int {
	if s == Warning {
		return 2
	}
	return 1
}

// Valid reports whether s is info or warning
func (s Severity) Valid() bool {
	return s == Info || s == Warning
}

// Alert is a single user-facing notice produced by the rule engine
type Alert struct {
	Type     Type     `json:"type"`
	Severity Severity `json:"severity"`
	Title    string   `json:"title"`
	Detail   string   `json:"detail"`
}
