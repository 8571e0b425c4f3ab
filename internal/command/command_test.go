package command

import (
	"reflect"
	"testing"
)

func texts(cmds []Command) []string {
	var out []string
	for _, c := range cmds {
		out = append(out, c.Text)
	}
	return out
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "fenced block",
			text: "Check the repo:\n```bash\ngit status\ngit add .\n```\n",
			want: []string{"git status", "git add ."},
		},
		{
			name: "sh block",
			text: "```sh\nls -la\n```",
			want: []string{"ls -la"},
		},
		{
			name: "prompt lines",
			text: "First:\n$ git status\nThen:\n$ ls -la\n",
			want: []string{"git status", "ls -la"},
		},
		{
			name: "comments and blanks skipped",
			text: "```bash\n# inspect\n\ngit status\n  # list\nls\n```",
			want: []string{"git status", "ls"},
		},
		{
			name: "prompt marker stripped inside block",
			text: "```bash\n$ pwd\n```",
			want: []string{"pwd"},
		},
		{
			name: "block and prompt line deduplicated",
			text: "Run:\n```bash\ngit status\n```\nor just\n$ git status\n",
			want: []string{"git status"},
		},
		{
			name: "blocks before prompt lines",
			text: "$ ls\n```bash\npwd\n```\n",
			want: []string{"pwd", "ls"},
		},
		{
			name: "untagged block ignored",
			text: "```\nmake build\n```\n```go\nfmt.Println()\n```",
			want: nil,
		},
		{
			name: "no commands",
			text: "This is just a regular text response with no commands.",
			want: nil,
		},
		{
			name: "dollar inside prose is not a prompt",
			text: "It costs $ 5 per month, or use echo $ HOME",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := texts(Extract(tt.text))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Extract() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractDeterministic(t *testing.T) {
	text := "Check things:\n```bash\ngit status\nls\n```\n$ pwd\n$ git status\n"
	first := Extract(text)
	second := Extract(text)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Extract not deterministic:\n%v\n%v", first, second)
	}
}

func TestExtractExplanation(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "prose before block",
			text: "Let's look at **what changed**:\n```bash\ngit diff\n```",
			want: "Let's look at what changed:",
		},
		{
			name: "prose before prompt line",
			text: "Show the `current` directory\n$ pwd\n",
			want: "Show the current directory",
		},
		{
			name: "command at text start",
			text: "$ pwd",
			want: "",
		},
		{
			name: "block at text start",
			text: "```bash\nls\n```",
			want: "",
		},
		{
			name: "last line only",
			text: "Some intro.\n\nList the files:\n$ ls -la",
			want: "List the files:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmds := Extract(tt.text)
			if len(cmds) != 1 {
				t.Fatalf("Extract() returned %d commands, want 1", len(cmds))
			}
			if cmds[0].Explanation != tt.want {
				t.Errorf("Explanation = %q, want %q", cmds[0].Explanation, tt.want)
			}
		})
	}
}

func TestExtractExplanationTruncated(t *testing.T) {
	long := ""
	for range 30 {
		long += "word "
	}
	cmds := Extract(long + "\n$ ls")
	if len(cmds) != 1 {
		t.Fatalf("got %d commands", len(cmds))
	}
	if n := len([]rune(cmds[0].Explanation)); n > maxExplanationLen {
		t.Errorf("explanation has %d runes, want <= %d", n, maxExplanationLen)
	}
}

func TestSuggestPattern(t *testing.T) {
	tests := []struct {
		cmd  string
		want string
	}{
		{"git status", "git status"},
		{`git commit -m "test"`, "git commit"},
		{"npm run build", "npm run"},
		{"docker ps -a", "docker ps"},
		{"kubectl get pods", "kubectl get"},
		{"git", "git"},
		{"ls -la", "ls"},
		{"cat file.txt", "cat"},
		{"pwd", "pwd"},
		{"rm -i old.txt", "rm -i"},
		{"rm -rf build", "rm -rf"},
		{"lsof -ti:8080", "lsof -ti:8080"},
		{"whoami", "whoami"},
		{"   ", ""},
	}
	for _, tt := range tests {
		if got := SuggestPattern(tt.cmd); got != tt.want {
			t.Errorf("SuggestPattern(%q) = %q, want %q", tt.cmd, got, tt.want)
		}
	}
}
