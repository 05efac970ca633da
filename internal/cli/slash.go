package cli

import "strings"

// slashCommand is a parsed "/name arg" line typed into a chat prompt.
type slashCommand struct {
	name string
	arg  string
}

const (
	slashQuit    = "quit"
	slashSummary = "summary"
	slashExport  = "export"
)

// parseSlash recognizes chat commands. Lines that do not start with "/" are
// messages for the model.
func parseSlash(line string) (slashCommand, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "/") {
		return slashCommand{}, false
	}
	name, arg, _ := strings.Cut(line[1:], " ")
	name = strings.ToLower(name)
	switch name {
	case "exit", "q":
		name = slashQuit
	}
	return slashCommand{name: name, arg: strings.TrimSpace(arg)}, true
}
