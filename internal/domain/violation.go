package domain

// Severity grades a guardrail violation. Escalates with the magnitude of the
// breach; the caller decides whether to block or proceed.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
)

// GuardrailViolation is a transient validation result. It is always returned
// as data from the plan toolkit, never persisted and never an error.
type GuardrailViolation struct {
	Rule      string   `json:"rule"`
	Severity  Severity `json:"severity"`
	WeekIndex int      `json:"weekIndex"` // 1-based, 0 when not week-scoped
	Actual    float64  `json:"actual"`
	Limit     float64  `json:"limit"`
	Message   string   `json:"message"`
}
