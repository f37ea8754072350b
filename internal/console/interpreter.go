package console

import (
	"fmt"
	"strconv"
	"strings"

	"obrolan/internal/services"
)

// Transcript line prefixes.
const (
	successGlyph = "✓"
	failureGlyph = "✗"
)

// Interpreter executes the operator console's slash-command language against
// the admin service. Every invocation appends the literal command line and
// then a success or error line to an append-only transcript; errors from the
// underlying services are rendered, never propagated, so the console session
// survives anything the operator types.
type Interpreter struct {
	admin    *services.AdminService
	operator string // username the commands are issued as
	lines    []string
}

// NewInterpreter creates an Interpreter issuing commands as operator.
func NewInterpreter(admin *services.AdminService, operator string) *Interpreter {
	return &Interpreter{
		admin:    admin,
		operator: operator,
	}
}

// Exec runs a single command line and records the outcome.
func (i *Interpreter) Exec(line string) {
	i.lines = append(i.lines, line)

	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "/") {
		i.fail("commands start with /")
		return
	}

	fields := strings.Fields(trimmed)
	switch fields[0] {
	case "/rank":
		i.execRank(fields[1:])
	case "/publish_update":
		message, err := i.admin.PublishUpdate(i.operator, "all")
		i.report(message, err)
	case "/code":
		source, err := i.admin.SourceCode(i.operator)
		if err != nil {
			i.report("", err)
			return
		}
		i.report(fmt.Sprintf("source code retrieved (%d bytes)", len(source)), nil)
	default:
		i.fail(fmt.Sprintf("unknown command %s", fields[0]))
	}
}

// execRank handles `/rank <0-5> <username>`.
func (i *Interpreter) execRank(args []string) {
	if len(args) < 2 {
		i.fail("usage: /rank <0-5> <username>")
		return
	}
	rank, err := strconv.Atoi(args[0])
	if err != nil {
		i.fail(fmt.Sprintf("rank %q is not a number", args[0]))
		return
	}
	// A username may contain spaces; the remaining tokens form it.
	username := strings.Join(args[1:], " ")

	message, setErr := i.admin.SetRank(i.operator, username, rank)
	i.report(message, setErr)
}

// Transcript returns a copy of the transcript lines so far.
func (i *Interpreter) Transcript() []string {
	out := make([]string, len(i.lines))
	copy(out, i.lines)
	return out
}

func (i *Interpreter) report(message string, err error) {
	if err != nil {
		i.fail(err.Error())
		return
	}
	i.lines = append(i.lines, successGlyph+" "+message)
}

func (i *Interpreter) fail(message string) {
	i.lines = append(i.lines, failureGlyph+" "+message)
}
