package core

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// feedAll feeds a string byte by byte and collects every completed
// command.
func feedAll(p *Parser, s string) []Command {
	var cmds []Command
	for i := 0; i < len(s); i++ {
		if p.Feed(s[i]) {
			cmds = append(cmds, p.Take())
		}
	}
	return cmds
}

func TestFeedSingleCommands(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Command
	}{
		{
			name:  "goto with two args",
			input: "g200,250\n",
			want:  Command{Op: 'g', Args: [MaxArgs]int{200, 250}, NumArgs: 2, Valid: true},
		},
		{
			name:  "negative move",
			input: "x-50\n",
			want:  Command{Op: 'x', Args: [MaxArgs]int{-50}, NumArgs: 1, Valid: true},
		},
		{
			name:  "bare opcode uses zero args",
			input: "x\n",
			want:  Command{Op: 'x', NumArgs: 0, Valid: true},
		},
		{
			name:  "leading whitespace before opcode",
			input: "  \t y120\n",
			want:  Command{Op: 'y', Args: [MaxArgs]int{120}, NumArgs: 1, Valid: true},
		},
		{
			name:  "whitespace before sign",
			input: "x  -12\n",
			want:  Command{Op: 'x', Args: [MaxArgs]int{-12}, NumArgs: 1, Valid: true},
		},
		{
			name:  "spaces after comma",
			input: "g 10 ,  20\n",
			want:  Command{Op: 'g', Args: [MaxArgs]int{10, 20}, NumArgs: 2, Valid: true},
		},
		{
			name:  "four args is the maximum",
			input: "g1,2,3,4\n",
			want:  Command{Op: 'g', Args: [MaxArgs]int{1, 2, 3, 4}, NumArgs: 4, Valid: true},
		},
		{
			name:  "carriage return terminates too",
			input: "y7\r",
			want:  Command{Op: 'y', Args: [MaxArgs]int{7}, NumArgs: 1, Valid: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewParser(nil)
			cmds := feedAll(p, tt.input)
			if len(cmds) != 1 {
				t.Fatalf("got %d commands, want 1", len(cmds))
			}
			if diff := cmp.Diff(tt.want, cmds[0]); diff != "" {
				t.Errorf("command mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFeedNoCommand(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "blank line", input: "\n"},
		{name: "crlf only", input: "\r\n"},
		{name: "whitespace line", input: "   \n"},
		{name: "unterminated command", input: "x100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewParser(nil)
			if cmds := feedAll(p, tt.input); len(cmds) != 0 {
				t.Errorf("got %d commands, want none", len(cmds))
			}
		})
	}
}

func TestParserRecoversAfterErrors(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantError string
		want      Command
	}{
		{
			name:      "invalid opcode",
			input:     "z\nx10\n",
			wantError: "invalid command character",
			want:      Command{Op: 'x', Args: [MaxArgs]int{10}, NumArgs: 1, Valid: true},
		},
		{
			name:      "too many arguments",
			input:     "g1,2,3,4,5\ny7\n",
			wantError: "too many arguments",
			want:      Command{Op: 'y', Args: [MaxArgs]int{7}, NumArgs: 1, Valid: true},
		},
		{
			name:      "garbage after comma",
			input:     "g1,z\nx3\n",
			wantError: "expected number after comma",
			want:      Command{Op: 'x', Args: [MaxArgs]int{3}, NumArgs: 1, Valid: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var errs []string
			p := NewParser(func(format string, args ...any) {
				errs = append(errs, format)
			})
			cmds := feedAll(p, tt.input)
			if len(cmds) != 1 {
				t.Fatalf("got %d commands, want 1 (parser should recover)", len(cmds))
			}
			if diff := cmp.Diff(tt.want, cmds[0]); diff != "" {
				t.Errorf("command after recovery (-want +got):\n%s", diff)
			}
			found := false
			for _, e := range errs {
				if strings.Contains(e, tt.wantError) {
					found = true
				}
			}
			if !found {
				t.Errorf("reported errors %q missing %q", errs, tt.wantError)
			}
		})
	}
}

// One parser fed a whole session must produce the same commands as a fresh
// parser per line: state never leaks across terminators.
func TestChunkingIdempotence(t *testing.T) {
	lines := []string{
		"g200,250\n",
		"x-50\n",
		"x\n",
		"s\n",
		"g 1 , 2 , 3 \n",
	}

	p := NewParser(nil)
	streamed := feedAll(p, strings.Join(lines, ""))

	var separate []Command
	for _, line := range lines {
		separate = append(separate, feedAll(NewParser(nil), line)...)
	}

	if diff := cmp.Diff(separate, streamed); diff != "" {
		t.Errorf("streamed vs per-line commands (-separate +streamed):\n%s", diff)
	}
}

func TestArgumentBufferTruncates(t *testing.T) {
	// 40 leading zeros followed by the digits that matter: everything past
	// the buffer bound is silently dropped, so the parse still succeeds on
	// the retained prefix.
	p := NewParser(nil)
	cmds := feedAll(p, "x"+strings.Repeat("0", 40)+"7\n")
	if len(cmds) != 1 {
		t.Fatalf("got %d commands, want 1", len(cmds))
	}
	if !cmds[0].Valid || cmds[0].Op != 'x' {
		t.Fatalf("unexpected command %+v", cmds[0])
	}
	if got := cmds[0].Args[0]; got != 0 {
		t.Errorf("truncated argument parsed to %d, want 0", got)
	}
}

func TestParseInt(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"  -12", -12},
		{"", 0},
		{"+7abc", 7},
		{"42", 42},
		{"   ", 0},
		{"-", 0},
		{"+", 0},
		{"\t+305", 305},
		{"12 34", 12},
	}
	for _, tt := range tests {
		if got := ParseInt(tt.in); got != tt.want {
			t.Errorf("ParseInt(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestCommandArgDefault(t *testing.T) {
	cmd := Command{Op: 'x', Valid: true}
	if got := cmd.Arg(0, 4000); got != 4000 {
		t.Errorf("Arg(0) on empty command = %d, want default 4000", got)
	}
	cmd = Command{Op: 'x', Args: [MaxArgs]int{-50}, NumArgs: 1, Valid: true}
	if got := cmd.Arg(0, 4000); got != -50 {
		t.Errorf("Arg(0) = %d, want -50", got)
	}
}
