package proto

// ProtocolVersion is the only protocol version sent in the connect handshake
const ProtocolVersion int32 = 0

// AnyVersion disables the version check of delete, set-data and set-acl
const AnyVersion int32 = -1

// Reserved transaction ids. Regular requests use positive xids.
const (
	XidWatcherEvent int32 = -1
	XidPing         int32 = -2
	XidAuth         int32 = -4
	XidSetWatches   int32 = -8
)

// --------------------------------------------------------------------------
// Create Modes
// --------------------------------------------------------------------------

// CreateMode selects persistence, ephemerality and sequencing of a created node
type CreateMode int32

const (
	CreatePersistent CreateMode = iota
	CreateEphemeral
	CreatePersistentSequential
	CreateEphemeralSequential
	CreateContainer
	CreatePersistentWithTTL
	CreatePersistentSequentialWithTTL
)

var createModeNames = map[string]CreateMode{
	"persistent":                CreatePersistent,
	"ephemeral":                 CreateEphemeral,
	"persistent-sequential":     CreatePersistentSequential,
	"ephemeral-sequential":      CreateEphemeralSequential,
	"container":                 CreateContainer,
	"persistent-ttl":            CreatePersistentWithTTL,
	"persistent-sequential-ttl": CreatePersistentSequentialWithTTL,
}

// ParseCreateMode converts a mode name (e.g. "ephemeral-sequential") to its code
func ParseCreateMode(name string) (CreateMode, bool) {
	m, ok := createModeNames[name]
	return m, ok
}

// String returns the mode name
func (m CreateMode) String() string {
	for name, mode := range createModeNames {
		if mode == m {
			return name
		}
	}
	return "unknown"
}

// --------------------------------------------------------------------------
// Watch events
// --------------------------------------------------------------------------

// EventType is the type of a fired watch
type EventType int32

const (
	EventNone                EventType = -1
	EventNodeCreated         EventType = 1
	EventNodeDeleted         EventType = 2
	EventNodeDataChanged     EventType = 3
	EventNodeChildrenChanged EventType = 4
)

func (e EventType) String() string {
	switch e {
	case EventNone:
		return "none"
	case EventNodeCreated:
		return "nodeCreated"
	case EventNodeDeleted:
		return "nodeDeleted"
	case EventNodeDataChanged:
		return "nodeDataChanged"
	case EventNodeChildrenChanged:
		return "nodeChildrenChanged"
	}
	return "unknown"
}
