package method

// Command is a tagged method the dispatcher knows how to run.
type Command int

const (
	CommandSetAddress Command = iota + 1
	CommandResetAddress
	CommandGetAddress
	CommandStopControl
	CommandBlockControl
	CommandResumeControl

	commandEnd // keep last
)

var commandNames = map[Command]string{
	CommandSetAddress:    "setAddress",
	CommandResetAddress:  "resetAddress",
	CommandGetAddress:    "getAddress",
	CommandStopControl:   "stopControl",
	CommandBlockControl:  "blockControl",
	CommandResumeControl: "resumeControl",
}

// Method names accepted for each command. The snake_case forms are what the
// mobile host sends.
var commandsByName = map[string]Command{
	"setAddress":     CommandSetAddress,
	"set_address":    CommandSetAddress,
	"resetAddress":   CommandResetAddress,
	"reset_address":  CommandResetAddress,
	"getAddress":     CommandGetAddress,
	"get_address":    CommandGetAddress,
	"stopControl":    CommandStopControl,
	"stop_control":   CommandStopControl,
	"blockControl":   CommandBlockControl,
	"block_control":  CommandBlockControl,
	"resumeControl":  CommandResumeControl,
	"resume_control": CommandResumeControl,
}

// ParseCommand maps a method name to its command.
func ParseCommand(name string) (Command, bool) {
	c, ok := commandsByName[name]
	return c, ok
}

// Commands lists every command.
func Commands() []Command {
	out := make([]Command, 0, int(commandEnd)-1)
	for c := CommandSetAddress; c < commandEnd; c++ {
		out = append(out, c)
	}
	return out
}

func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return "unknown"
}
