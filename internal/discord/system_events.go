package discord

type SystemEventType string

const (
	SystemEventRefreshCommands SystemEventType = "refresh_commands"
)

// SystemEvent asks the runtime to do something outside a command, e.g. resync
// a guild's slash commands after a group was toggled. Target is "all",
// "group:<name>" or a command name.
type SystemEvent struct {
	Type    SystemEventType
	GuildID string
	Target  string
}

var systemEventBus = make(chan SystemEvent, 16)

// PublishSystemEvent queues evt. It never blocks; events beyond the buffer are dropped.
func PublishSystemEvent(evt SystemEvent) bool {
	select {
	case systemEventBus <- evt:
		return true
	default:
		return false
	}
}

func SystemEvents() <-chan SystemEvent {
	return systemEventBus
}
