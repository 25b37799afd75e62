// Package trace reads, writes and replays allocation traces.
//
// A trace is a line-oriented text file. Blank lines and lines starting with
// '#' are ignored. Every other line is one operation on a named payload:
//
//	malloc  <id> <size>
//	calloc  <id> <count> <size>
//	realloc <id> <size>
//	free    <id>
//	fill    <id> <byte>
//	expect  <id> <byte> <n>
//	verify
//
// Numbers accept Go integer syntax (decimal, 0x hex, 0o octal, 0b binary,
// underscores).
package trace

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/joshuapare/heapkit/internal/buf"
)

// Kind identifies a trace operation.
type Kind uint8

const (
	OpMalloc Kind = iota + 1
	OpCalloc
	OpRealloc
	OpFree
	OpFill
	OpExpect
	OpVerify
)

var kindNames = map[Kind]string{
	OpMalloc:  "malloc",
	OpCalloc:  "calloc",
	OpRealloc: "realloc",
	OpFree:    "free",
	OpFill:    "fill",
	OpExpect:  "expect",
	OpVerify:  "verify",
}

// arity is the number of fields after the keyword.
var arity = map[Kind]int{
	OpMalloc:  2,
	OpCalloc:  3,
	OpRealloc: 2,
	OpFree:    1,
	OpFill:    2,
	OpExpect:  3,
	OpVerify:  0,
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

func kindOf(word string) (Kind, bool) {
	for k, s := range kindNames {
		if s == word {
			return k, true
		}
	}
	return 0, false
}

// ErrSyntax is wrapped by every parse error.
var ErrSyntax = errors.New("trace: syntax error")

// Op is one parsed trace line. Fields not used by Kind are zero.
type Op struct {
	Kind  Kind
	Line  int    // 1-based source line, 0 for generated ops
	ID    string // payload name
	Size  uintptr
	Count uintptr // calloc element count
	Byte  byte    // fill/expect value
	N     uintptr // expect length
}

// String renders op in trace syntax.
func (op Op) String() string {
	switch op.Kind {
	case OpMalloc, OpRealloc:
		return fmt.Sprintf("%s %s %d", op.Kind, op.ID, op.Size)
	case OpCalloc:
		return fmt.Sprintf("%s %s %d %d", op.Kind, op.ID, op.Count, op.Size)
	case OpFree:
		return fmt.Sprintf("%s %s", op.Kind, op.ID)
	case OpFill:
		return fmt.Sprintf("%s %s %#x", op.Kind, op.ID, op.Byte)
	case OpExpect:
		return fmt.Sprintf("%s %s %#x %d", op.Kind, op.ID, op.Byte, op.N)
	default:
		return op.Kind.String()
	}
}

// Parse reads a whole trace.
func Parse(r io.Reader) ([]Op, error) {
	scanner := bufio.NewScanner(r)
	var ops []Op
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		op, err := parseLine(text)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrSyntax, line, err)
		}
		op.Line = line
		ops = append(ops, op)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("trace: read: %w", err)
	}
	return ops, nil
}

func parseLine(text string) (Op, error) {
	fields := strings.Fields(text)
	kind, ok := kindOf(fields[0])
	if !ok {
		return Op{}, fmt.Errorf("unknown operation %q", fields[0])
	}
	args := fields[1:]
	if len(args) != arity[kind] {
		return Op{}, fmt.Errorf("%s takes %d arguments, got %d", kind, arity[kind], len(args))
	}

	op := Op{Kind: kind}
	if kind == OpVerify {
		return op, nil
	}
	op.ID = args[0]

	var err error
	switch kind {
	case OpMalloc, OpRealloc:
		op.Size, err = parseSize(args[1])
	case OpCalloc:
		if op.Count, err = parseSize(args[1]); err == nil {
			op.Size, err = parseSize(args[2])
		}
		if _, ok := buf.MulOverflowSafe(op.Count, op.Size); err == nil && !ok {
			err = fmt.Errorf("calloc of %d x %d bytes overflows", op.Count, op.Size)
		}
	case OpFill:
		op.Byte, err = parseByte(args[1])
	case OpExpect:
		if op.Byte, err = parseByte(args[1]); err == nil {
			op.N, err = parseSize(args[2])
		}
	}
	return op, err
}

func parseSize(s string) (uintptr, error) {
	v, err := strconv.ParseUint(s, 0, strconv.IntSize)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q", s)
	}
	return uintptr(v), nil
}

func parseByte(s string) (byte, error) {
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid byte %q", s)
	}
	return byte(v), nil
}

// Write renders ops one per line.
func Write(w io.Writer, ops []Op) error {
	bw := bufio.NewWriter(w)
	for _, op := range ops {
		if _, err := fmt.Fprintln(bw, op); err != nil {
			return err
		}
	}
	return bw.Flush()
}
