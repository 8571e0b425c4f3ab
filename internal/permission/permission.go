// Package permission decides whether a proposed shell command runs
// automatically, needs confirmation, or is refused.
package permission

// Verdict is the outcome of the automatic permission check.
type Verdict int

const (
	// Ask requires interactive confirmation.
	Ask Verdict = iota
	// Auto runs the command without asking.
	Auto
	// Deny refuses the command outright.
	Deny
)

// String returns a human-readable representation of the verdict.
func (v Verdict) String() string {
	switch v {
	case Auto:
		return "auto"
	case Ask:
		return "ask"
	case Deny:
		return "deny"
	default:
		return "unknown"
	}
}

// Answer is the user's reply to a permission prompt.
type Answer int

const (
	// No declines the command.
	No Answer = iota
	// Yes runs the command once.
	Yes
	// YesAlways runs the command and remembers its allowlist pattern.
	YesAlways
)

// String returns a human-readable representation of the answer.
func (a Answer) String() string {
	switch a {
	case Yes:
		return "yes"
	case YesAlways:
		return "yes_always"
	case No:
		return "no"
	default:
		return "unknown"
	}
}
