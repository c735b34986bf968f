package proto

import "strconv"

// Based on ZK 3.5 https://github.com/apache/zookeeper/blob/branch-3.5/src/java/main/org/apache/zookeeper/ZooDefs.java

// OpCode is the request type sent in every request header
type OpCode int32

const (
	// OpNotify is for watch notifications
	OpNotify OpCode = iota
	// OpCreate creates a node
	OpCreate
	// OpDelete deletes a node
	OpDelete
	// OpExists checks a node for existence and may set a watch
	OpExists
	// OpGetData reads the data of a node and may set a watch
	OpGetData
	// OpSetData replaces the data of a node
	OpSetData

	OpGetACL
	OpSetACL
	OpGetChildren
	OpSync // 9

	// OpPing keeps the session alive
	OpPing OpCode = iota + 1 // 11
	OpGetChildren2
	OpCheck
	OpMulti

	OpCreate2 // 15
	OpReconfig
	OpCheckWatches
	OpRemoveWatches
	OpCreateContainer

	OpDeleteContainer // 20
	OpCreateTTL

	OpCreateSession OpCode = -12
	OpClose         OpCode = -11

	OpSetAuth    OpCode = 100
	OpSetWatches OpCode = 101
	OpSasl       OpCode = 102

	// OpError marks a failed operation inside a multi response
	OpError OpCode = -1
)

var opNames = map[OpCode]string{
	OpNotify:          "notify",
	OpCreate:          "create",
	OpDelete:          "delete",
	OpExists:          "exists",
	OpGetData:         "getData",
	OpSetData:         "setData",
	OpGetACL:          "getACL",
	OpSetACL:          "setACL",
	OpGetChildren:     "getChildren",
	OpSync:            "sync",
	OpPing:            "ping",
	OpGetChildren2:    "getChildren2",
	OpCheck:           "check",
	OpMulti:           "multi",
	OpCreate2:         "create2",
	OpReconfig:        "reconfig",
	OpCheckWatches:    "checkWatches",
	OpRemoveWatches:   "removeWatches",
	OpCreateContainer: "createContainer",
	OpDeleteContainer: "deleteContainer",
	OpCreateTTL:       "createTTL",
	OpCreateSession:   "createSession",
	OpClose:           "close",
	OpSetAuth:         "setAuth",
	OpSetWatches:      "setWatches",
	OpSasl:            "sasl",
	OpError:           "error",
}

// String returns the name of the operation
func (o OpCode) String() string {
	if name, ok := opNames[o]; ok {
		return name
	}
	return "OpCode(" + strconv.Itoa(int(o)) + ")"
}
