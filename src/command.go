package freedvtnc

/*------------------------------------------------------------------
 *
 * Purpose:	Turn one line of the ASCII command protocol into a Command.
 *
 * Description:	The first whitespace separated token is the command name,
 *		matched without regard to letter case.  The rest are
 *		positional arguments.
 *
 *		Only the shape of the line is checked here, i.e. the name
 *		and the number of arguments.  Whether an argument value is
 *		acceptable (a real mode, a number) is for the executor to
 *		decide.
 *
 *		Reasons for rejecting a line never quote the line itself.
 *
 *------------------------------------------------------------------*/

import (
	"strings"
)

// CommandKind identifies which command a line asked for.
type CommandKind int

const (
	CommandMalformed CommandKind = iota
	CommandEmpty
	CommandMode
	CommandVolume
	CommandFollow
	CommandStatus
	CommandLevels
	CommandPTTTest
	CommandClear
	CommandSave
	CommandPing
)

func (k CommandKind) String() string {
	switch k {
	case CommandEmpty:
		return "EMPTY"
	case CommandMode:
		return "MODE"
	case CommandVolume:
		return "VOLUME"
	case CommandFollow:
		return "FOLLOW"
	case CommandStatus:
		return "STATUS"
	case CommandLevels:
		return "LEVELS"
	case CommandPTTTest:
		return "PTT TEST"
	case CommandClear:
		return "CLEAR"
	case CommandSave:
		return "SAVE"
	case CommandPing:
		return "PING"
	default:
		return "MALFORMED"
	}
}

// Command is one parsed request line.
//
// Arg is set only for MODE, VOLUME and FOLLOW, and only when the client
// gave one; HasArg distinguishes a query from a set.
// Reason is set only for CommandMalformed.
type Command struct {
	Kind   CommandKind
	Arg    string
	HasArg bool
	Reason string
}

// IsQuery reports whether the command asks for a value rather than setting one.
func (c Command) IsQuery() bool {
	return !c.HasArg
}

const (
	reasonUnknownCommand = "Unknown command"
	reasonUnknownPTT     = "Unknown PTT command. Use: PTT TEST"
)

// PTT is not here; it has a mandatory subcommand and is handled separately.
// optional means the command takes zero or one argument, otherwise none.
var commandTable = map[string]struct {
	kind     CommandKind
	optional bool
}{
	"MODE":   {CommandMode, true},
	"VOLUME": {CommandVolume, true},
	"FOLLOW": {CommandFollow, true},
	"STATUS": {CommandStatus, false},
	"LEVELS": {CommandLevels, false},
	"CLEAR":  {CommandClear, false},
	"SAVE":   {CommandSave, false},
	"PING":   {CommandPing, false},
}

func malformed(reason string) Command {
	return Command{Kind: CommandMalformed, Reason: reason} //nolint:exhaustruct
}

// ParseCommand parses one line, with the line terminator already removed.
// It never fails; problems are reported as a CommandMalformed.
func ParseCommand(line string) Command {
	var fields = strings.Fields(line)
	if len(fields) == 0 {
		return Command{Kind: CommandEmpty} //nolint:exhaustruct
	}

	var name = strings.ToUpper(fields[0])
	var args = fields[1:]

	if name == "PTT" {
		if len(args) == 1 && strings.EqualFold(args[0], "TEST") {
			return Command{Kind: CommandPTTTest} //nolint:exhaustruct
		}

		return malformed(reasonUnknownPTT)
	}

	var entry, ok = commandTable[name]
	if !ok {
		return malformed(reasonUnknownCommand)
	}

	switch {
	case len(args) == 0:
		return Command{Kind: entry.kind} //nolint:exhaustruct
	case entry.optional && len(args) == 1:
		return Command{Kind: entry.kind, Arg: args[0], HasArg: true} //nolint:exhaustruct
	case entry.optional:
		return malformed(name + " takes at most one argument")
	default:
		return malformed(name + " takes no arguments")
	}
}
