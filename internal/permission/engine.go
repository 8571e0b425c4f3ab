package permission

import "github.com/yanmxa/wtf/internal/config"

// Lists is a snapshot of the persisted allow and deny patterns.
type Lists struct {
	Allow []string `json:"patterns"`
	Deny  []string `json:"denylist"`
}

// ShouldAutoExecute computes the verdict for one command. The order is
// fixed:
//  1. denylist match -> Deny
//  2. chained command -> Ask
//  3. read-only command (when enabled) -> Auto
//  4. allowlist match (when enabled) -> Auto
//  5. otherwise -> Ask
func ShouldAutoExecute(cmd string, lists Lists, behavior config.Behavior) Verdict {
	if IsCommandDenied(cmd, lists.Deny) {
		return Deny
	}
	if IsCommandChained(cmd) {
		return Ask
	}
	if behavior.AutoAllowReadonly && IsSafeReadonlyCommand(cmd) {
		return Auto
	}
	if behavior.AutoExecuteAllowlist && IsCommandAllowed(cmd, lists.Allow) {
		return Auto
	}
	return Ask
}
