package display

// Command is the closed set of instructions the display understands.
type Command int

const (
	CommandUnknown Command = iota
	CommandShowAccountInfo
	CommandShowSalesTrendTable
	CommandClearDisplay
	CommandSetMaxDisplayCount
	CommandSetHighlightThreshold
)

var commandNames = map[string]Command{
	"showAccountInfo":       CommandShowAccountInfo,
	"showSalesTrendTable":   CommandShowSalesTrendTable,
	"clearDisplay":          CommandClearDisplay,
	"setMaxDisplayCount":    CommandSetMaxDisplayCount,
	"setHighlightThreshold": CommandSetHighlightThreshold,
}

// ParseCommand maps a wire command name to a Command. Matching is exact;
// anything else, including the old "setHeighlightThreshold" spelling, is
// CommandUnknown.
func ParseCommand(s string) Command {
	return commandNames[s]
}

func (c Command) String() string {
	for name, cmd := range commandNames {
		if cmd == c {
			return name
		}
	}
	return "unknown"
}
