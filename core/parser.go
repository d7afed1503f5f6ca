package core

// Line protocol parser. Commands arrive one byte at a time over the serial
// link as <opcode>[<int>[,<int>[,<int>[,<int>]]]] terminated by \n or \r.
// Parse errors are never fatal: they reset the in-flight command and the
// machine resumes waiting for the next opcode.

// Opcode alphabet.
const (
	OpMoveX     = 'x' // relative X move, signed step argument
	OpMoveY     = 'y' // relative Y move, signed step argument
	OpGoto      = 'g' // go to virtual coordinate, 2 arguments
	OpCalibrate = 'c' // manual mark-based calibration
	OpAutoCal   = 'a' // automatic limit-seeking calibration
	OpHome      = 'h' // home to safe position
	OpStatus    = 's' // report position and bounds
	OpSetOrigin = 'p' // set current position as origin
	OpSelfTest  = 't' // hardware self-test sequence
	OpMarkMin   = 'm' // calibration only: mark minimum
	OpMarkMax   = 'M' // calibration only: mark maximum
	OpQuit      = 'q' // calibration only: abort
)

// MaxArgs is the argument capacity of a command.
const MaxArgs = 4

// argBufferSize bounds the accumulation buffer for a single argument.
// Characters beyond the bound are silently dropped.
const argBufferSize = 32

// Command is one parsed instruction.
type Command struct {
	Op      byte
	Args    [MaxArgs]int
	NumArgs int
	Valid   bool
}

// Arg returns argument i, or def when fewer arguments were supplied.
func (c *Command) Arg(i, def int) int {
	if i < 0 || i >= c.NumArgs {
		return def
	}
	return c.Args[i]
}

// ParseState is the parser's position within a command line.
type ParseState uint8

const (
	AwaitOpcode ParseState = iota
	ReadingArg
	AwaitNextArg
)

// Parser assembles Commands from a byte stream.
type Parser struct {
	cmd    Command
	state  ParseState
	buf    [argBufferSize]byte
	bufLen int
	argIdx int

	// logf reports non-fatal parse errors. May be nil.
	logf func(format string, args ...any)
}

// NewParser returns a parser reporting parse errors through logf, which
// may be nil to discard them.
func NewParser(logf func(format string, args ...any)) *Parser {
	return &Parser{logf: logf}
}

// Reset clears the in-flight command and returns to waiting for an opcode.
func (p *Parser) Reset() {
	p.cmd = Command{}
	p.state = AwaitOpcode
	p.bufLen = 0
	p.argIdx = 0
}

// Take returns the assembled command and resets the parser for the next
// line.
func (p *Parser) Take() Command {
	cmd := p.cmd
	p.Reset()
	return cmd
}

// Feed consumes one byte and reports whether a complete command is ready
// to Take.
func (p *Parser) Feed(ch byte) bool {
	if ch == '\n' || ch == '\r' {
		if p.state == ReadingArg && p.bufLen > 0 {
			p.cmd.Args[p.argIdx] = p.closeArg()
			p.cmd.NumArgs = p.argIdx + 1
			p.cmd.Valid = true
		} else if p.cmd.Op != 0 && p.state != AwaitOpcode {
			// Opcode with no (further) argument, e.g. "x" or "x\r\n"
			// straggler handling. NumArgs stays at zero.
			p.cmd.Valid = true
		}
		return p.cmd.Valid
	}

	switch p.state {
	case AwaitOpcode:
		if ch == ' ' || ch == '\t' {
			return false
		}
		if isOpcode(ch) {
			p.cmd.Op = ch
			p.state = ReadingArg
			p.bufLen = 0
		} else {
			p.errorf("invalid command character %q", ch)
			p.Reset()
		}

	case ReadingArg:
		if ch == ',' {
			p.cmd.Args[p.argIdx] = p.closeArg()
			p.argIdx++
			if p.argIdx >= MaxArgs {
				p.errorf("too many arguments")
				p.Reset()
			} else {
				p.state = AwaitNextArg
			}
			return false
		}
		if isDigit(ch) || ch == '-' || ch == '+' || ch == ' ' || ch == '\t' {
			if p.bufLen < argBufferSize-1 {
				p.buf[p.bufLen] = ch
				p.bufLen++
			}
		}

	case AwaitNextArg:
		if ch == ' ' || ch == '\t' {
			return false
		}
		if isDigit(ch) || ch == '-' || ch == '+' {
			p.state = ReadingArg
			p.buf[0] = ch
			p.bufLen = 1
		} else {
			p.errorf("expected number after comma, got %q", ch)
			p.Reset()
		}
	}
	return false
}

// closeArg parses the accumulated argument text and empties the buffer.
// An empty or whitespace-only argument parses to 0.
func (p *Parser) closeArg() int {
	s := string(p.buf[:p.bufLen])
	p.bufLen = 0
	return ParseInt(s)
}

func (p *Parser) errorf(format string, args ...any) {
	if p.logf != nil {
		p.logf(format, args...)
	}
}

// ParseInt converts a decimal string to an integer: optional leading
// whitespace, optional single sign, then digits. Conversion stops at the
// first non-digit; a string with no digits parses to 0. The leniency is
// deliberate and matches what the command grammar promises.
func ParseInt(s string) int {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}

	negative := false
	if i < len(s) && (s[i] == '-' || s[i] == '+') {
		negative = s[i] == '-'
		i++
	}

	n := 0
	for i < len(s) && isDigit(s[i]) {
		n = n*10 + int(s[i]-'0')
		i++
	}

	if negative {
		return -n
	}
	return n
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func isOpcode(ch byte) bool {
	switch ch {
	case OpMoveX, OpMoveY, OpGoto, OpCalibrate, OpAutoCal, OpHome,
		OpStatus, OpSetOrigin, OpSelfTest, OpMarkMin, OpMarkMax, OpQuit:
		return true
	}
	return false
}

// gotoClass reports whether an opcode supersedes an in-flight move: a
// newly parsed goto-class command cancels whatever the machine is still
// travelling for. Plain x/y moves queue behind the current move instead.
func gotoClass(op byte) bool {
	switch op {
	case OpGoto, OpHome:
		return true
	}
	return false
}
