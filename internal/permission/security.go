package permission

import "strings"

// dangerousPatterns flag commands that deserve an extra warning in the
// confirmation panel. They do not affect the verdict.
var dangerousPatterns = []string{
	"rm -rf /", "rm -rf /*", "rm -rf ~", "rm -rf *",
	"> /dev/sda", "dd if=/dev/zero", "dd if=/dev/random",
	"mkfs", "mkfs.",
	":(){ :|:& };:",
	"sudo rm", "sudo dd", "sudo mkfs",
	"/dev/sda", "/dev/hda",
	"| sh", "| bash", "| sudo",
	"chmod 777 /", "chmod -r 777 /", "chown -r",
	"killall -9", "pkill -9",
	"cat /dev/urandom >",
}

// DefaultDenylist seeds a new allowlist file.
var DefaultDenylist = []string{
	"rm -rf /",
	"sudo rm",
	"dd if=",
	"mkfs",
	":(){ :|:& };:",
}

// IsCommandDangerous reports whether cmd contains a known destructive
// pattern anywhere in it.
func IsCommandDangerous(cmd string) bool {
	c := strings.ToLower(strings.TrimSpace(cmd))
	for _, p := range dangerousPatterns {
		if strings.Contains(c, p) {
			return true
		}
	}
	return false
}
