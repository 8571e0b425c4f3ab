package permission

import (
	"regexp"
	"strings"
	"unicode"
)

// normalize lowercases cmd, trims it and collapses runs of whitespace.
func normalize(cmd string) string {
	return strings.ToLower(strings.Join(strings.Fields(cmd), " "))
}

// NormalizePattern trims a pattern and collapses its whitespace, keeping
// the original case. Stored patterns are kept in this form.
func NormalizePattern(p string) string {
	return strings.Join(strings.Fields(p), " ")
}

// hasPrefixTokens reports whether every pattern token equals the command
// token at the same position. Both arguments must already be normalized,
// so "rm ./build/" does not match "rm ./build/../x".
func hasPrefixTokens(cmd, pattern string) bool {
	pf := strings.Fields(pattern)
	cf := strings.Fields(cmd)
	if len(pf) == 0 || len(cf) < len(pf) {
		return false
	}
	for i, tok := range pf {
		if cf[i] != tok {
			return false
		}
	}
	return true
}

// hasPrefixWord reports whether cmd starts with pattern on a word boundary.
// A pattern ending in a non-word character such as "dd if=" or "rm -rf /"
// is its own boundary; otherwise the pattern must be followed by a space.
func hasPrefixWord(cmd, pattern string) bool {
	if pattern == "" || !strings.HasPrefix(cmd, pattern) {
		return false
	}
	if len(cmd) == len(pattern) || !isWordChar(rune(pattern[len(pattern)-1])) {
		return true
	}
	return cmd[len(pattern)] == ' '
}

// hasPrefixToken is the looser form used for denylists: any non-word
// character ends the word, so "mkfs" also matches "mkfs.ext4".
func hasPrefixToken(cmd, pattern string) bool {
	if hasPrefixWord(cmd, pattern) {
		return true
	}
	if pattern == "" || !strings.HasPrefix(cmd, pattern) {
		return false
	}
	return !isWordChar(rune(cmd[len(pattern)]))
}

func isWordChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_'
}

func matchesAny(cmd string, patterns []string, match func(cmd, pattern string) bool) bool {
	for _, p := range patterns {
		if match(cmd, normalize(p)) {
			return true
		}
	}
	return false
}

// IsCommandAllowed reports whether cmd starts with the tokens of any
// allowlist pattern. Matching is case-insensitive and
// whitespace-normalized; "git commit" matches "git commit -m x" but not
// "git commitment".
func IsCommandAllowed(cmd string, allowlist []string) bool {
	return matchesAny(normalize(cmd), allowlist, hasPrefixTokens)
}

// segmentSplit cuts a command that the shell parser rejects.
var segmentSplit = regexp.MustCompile(`&&|\|\||[;|&\n]|\$\(|<\(|>\(|` + "`")

// IsCommandDenied reports whether cmd, or any simple command inside it,
// starts with a denylist pattern. Any non-word character counts as a
// boundary here, so "mkfs" denies "mkfs.ext4".
func IsCommandDenied(cmd string, denylist []string) bool {
	if matchesAny(normalize(cmd), denylist, hasPrefixToken) {
		return true
	}

	var segments []string
	if file, err := parseShell(cmd); err == nil {
		segments = simpleCommands(file)
	} else {
		segments = segmentSplit.Split(cmd, -1)
	}
	for _, seg := range segments {
		if matchesAny(normalize(seg), denylist, hasPrefixToken) {
			return true
		}
	}
	return false
}

// safeReadonlyCommands is the closed set of inspection commands that may
// run without asking. Multi-word entries match as a prefix.
var safeReadonlyCommands = []string{
	"command -v", "which", "type",
	"cat", "head", "tail", "less", "more", "file", "stat", "wc",
	"ls", "pwd", "find", "tree",
	"git status", "git log", "git diff", "git branch", "git show", "git remote", "git config --get",
	"uname", "whoami", "hostname", "date", "uptime", "env", "printenv",
	"npm list", "npm ls", "pip list", "pip show", "gem list", "cargo search", "go list",
	"ps", "pgrep",
	"ping -c", "host", "dig", "nslookup",
	"grep", "awk", "sed -n", "sort", "uniq", "cut",
	"tar -tf", "unzip -l", "gunzip -l",
}

// SafeReadonlyCommands returns a copy of the read-only allow-set.
func SafeReadonlyCommands() []string {
	return append([]string(nil), safeReadonlyCommands...)
}

// sedWriteCommand finds sed w (write file) and e (execute) commands.
var sedWriteCommand = regexp.MustCompile(`(^|[^a-z])[we] `)

// readonlyGuards reject argument shapes that make an otherwise read-only
// command write or execute something. args excludes the matched prefix.
var readonlyGuards = map[string]func(args []string) bool{
	"find": func(args []string) bool {
		return !hasAnyArg(args, "-delete", "-exec", "-execdir", "-ok", "-okdir", "-fprint", "-fprint0", "-fprintf", "-fls")
	},
	"awk": func(args []string) bool {
		return !argContains(args, "system", "getline", ">")
	},
	"sed -n": func(args []string) bool {
		return !hasArgPrefix(args, "-i", "--in-place") && !sedWriteCommand.MatchString(strings.Join(args, " "))
	},
	"sort": func(args []string) bool {
		return !hasArgPrefix(args, "-o", "--output")
	},
	"uniq": func(args []string) bool {
		return len(positional(args)) <= 1
	},
	"env": func(args []string) bool {
		return len(args) == 0
	},
	"date": func(args []string) bool {
		return !hasArgPrefix(args, "-s", "--set")
	},
	"hostname": func(args []string) bool {
		return len(positional(args)) == 0
	},
	"git branch": func(args []string) bool {
		return len(positional(args)) == 0 &&
			!hasArgPrefix(args, "-d", "-D", "-m", "-M", "-c", "-C", "-u", "--delete", "--move", "--copy",
				"--set-upstream-to", "--unset-upstream", "--edit-description", "-f", "--force")
	},
	"git remote": func(args []string) bool {
		pos := positional(args)
		return len(pos) == 0 || pos[0] == "show" || pos[0] == "get-url"
	},
	"git diff": func(args []string) bool {
		return !hasArgPrefix(args, "--output")
	},
	"git log": func(args []string) bool {
		return !hasArgPrefix(args, "--output")
	},
	"git show": func(args []string) bool {
		return !hasArgPrefix(args, "--output")
	},
	"tree": func(args []string) bool {
		return !hasArgPrefix(args, "-o")
	},
}

func hasAnyArg(args []string, names ...string) bool {
	for _, a := range args {
		for _, n := range names {
			if a == n {
				return true
			}
		}
	}
	return false
}

func hasArgPrefix(args []string, prefixes ...string) bool {
	for _, a := range args {
		for _, p := range prefixes {
			if a == p || strings.HasPrefix(a, p+"=") || (len(p) == 2 && strings.HasPrefix(a, p)) {
				return true
			}
		}
	}
	return false
}

func argContains(args []string, subs ...string) bool {
	joined := strings.Join(args, " ")
	for _, s := range subs {
		if strings.Contains(joined, s) {
			return true
		}
	}
	return false
}

func positional(args []string) []string {
	var out []string
	for _, a := range args {
		if !strings.HasPrefix(a, "-") {
			out = append(out, a)
		}
	}
	return out
}

// IsSafeReadonlyCommand reports whether cmd is an inspection command from
// the closed read-only set with no chaining and no output redirection.
// Unknown commands are never safe.
func IsSafeReadonlyCommand(cmd string) bool {
	if IsCommandChained(cmd) || HasOutputRedirection(cmd) {
		return false
	}
	norm := normalize(cmd)
	for _, prefix := range safeReadonlyCommands {
		if !hasPrefixTokens(norm, prefix) {
			continue
		}
		guard, ok := readonlyGuards[prefix]
		if !ok {
			return true
		}
		return guard(strings.Fields(norm)[len(strings.Fields(prefix)):])
	}
	return false
}
