package proto

import "strconv"

// ErrCode is the error code carried in every reply header
type ErrCode int32

const (
	// ErrOk is the code of a successful reply
	ErrOk ErrCode = 0

	// System and server-side errors
	ErrSystemError          ErrCode = -1
	ErrRuntimeInconsistency ErrCode = -2
	ErrDataInconsistency    ErrCode = -3
	ErrConnectionLoss       ErrCode = -4
	ErrMarshallingError     ErrCode = -5
	ErrUnimplemented        ErrCode = -6
	ErrOperationTimeout     ErrCode = -7
	ErrBadArguments         ErrCode = -8
	ErrInvalidState         ErrCode = -9

	// API errors
	ErrAPIError                ErrCode = -100
	ErrNoNode                  ErrCode = -101
	ErrNoAuth                  ErrCode = -102
	ErrBadVersion              ErrCode = -103
	ErrNoChildrenForEphemerals ErrCode = -108
	ErrNodeExists              ErrCode = -110
	ErrNotEmpty                ErrCode = -111
	ErrSessionExpired          ErrCode = -112
	ErrInvalidCallback         ErrCode = -113
	ErrInvalidACL              ErrCode = -114
	ErrAuthFailed              ErrCode = -115
	ErrClosing                 ErrCode = -116
	ErrNothing                 ErrCode = -117
	ErrSessionMoved            ErrCode = -118
)

var errCodeToString = map[ErrCode]string{
	ErrOk:                      "",
	ErrSystemError:             "system error",
	ErrRuntimeInconsistency:    "runtime inconsistency",
	ErrDataInconsistency:       "data inconsistency",
	ErrConnectionLoss:          "connection loss",
	ErrMarshallingError:        "marshalling error",
	ErrUnimplemented:           "unimplemented",
	ErrOperationTimeout:        "operation timeout",
	ErrBadArguments:            "bad arguments",
	ErrInvalidState:            "invalid state",
	ErrAPIError:                "api error",
	ErrNoNode:                  "node does not exist",
	ErrNoAuth:                  "not authenticated",
	ErrBadVersion:              "version conflict",
	ErrNoChildrenForEphemerals: "ephemeral nodes may not have children",
	ErrNodeExists:              "node already exists",
	ErrNotEmpty:                "node has children",
	ErrSessionExpired:          "session has been expired by the server",
	ErrInvalidCallback:         "invalid callback specified",
	ErrInvalidACL:              "invalid ACL specified",
	ErrAuthFailed:              "client authentication failed",
	ErrClosing:                 "zookeeper is closing",
	ErrNothing:                 "no server responses to process",
	ErrSessionMoved:            "session moved to another server, so operation is ignored",
}

// Error implements the error interface
func (e ErrCode) Error() string {
	if msg, ok := errCodeToString[e]; ok {
		return "zk: " + msg
	}
	return "zk: unknown error " + strconv.Itoa(int(e))
}

// AsError returns nil for ErrOk and the code itself otherwise
func (e ErrCode) AsError() error {
	if e == ErrOk {
		return nil
	}
	return e
}
