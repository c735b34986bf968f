package client

import (
	"errors"
	"fmt"
	"time"

	"github.com/ValentinKolb/zkwire/lib/jute"
	"github.com/ValentinKolb/zkwire/lib/proto"
)

// --------------------------------------------------------------------------
// Node operations
// --------------------------------------------------------------------------

// Create creates a node and returns its actual path, which differs from path
// for sequential nodes. An empty acl defaults to world:anyone with all
// permissions.
func (c *Client) Create(path string, data jute.OptBytes, acl []proto.ACL, mode proto.CreateMode) (string, error) {
	op := proto.OpCreate
	switch mode {
	case proto.CreatePersistent, proto.CreateEphemeral, proto.CreatePersistentSequential, proto.CreateEphemeralSequential:
	case proto.CreateContainer:
		op = proto.OpCreateContainer
	default:
		// TTL modes need the ttl field of the create2 request
		return "", fmt.Errorf("create mode %s is not supported", mode)
	}
	if len(acl) == 0 {
		acl = proto.WorldACL()
	}

	req := proto.NewCreateRequestFull(path, data, acl, mode)

	// createContainer is answered like create2, with the stat of the new node
	if op == proto.OpCreateContainer {
		var resp proto.Create2Response
		if err := c.call(op, req, &resp); err != nil {
			return "", err
		}
		return resp.Path, nil
	}

	var resp proto.PathResponse
	if err := c.call(op, req, &resp); err != nil {
		return "", err
	}
	return resp.Path, nil
}

// Delete deletes the node if its version matches, proto.AnyVersion skips the check
func (c *Client) Delete(path string, version int32) error {
	return c.call(proto.OpDelete, proto.NewDeleteRequest(path, version), nil)
}

// SetData replaces the data of the node if its version matches
func (c *Client) SetData(path string, data []byte, version int32) (proto.Stat, error) {
	var resp proto.StatResponse
	err := c.call(proto.OpSetData, proto.NewSetDataRequest(path, data, version), &resp)
	return resp.Stat, err
}

// Exists reports whether the node exists. With watch set a watch is left
// even if the node does not exist yet.
func (c *Client) Exists(path string, watch bool) (bool, proto.Stat, error) {
	var resp proto.StatResponse
	err := c.call(proto.OpExists, proto.NewPathAndWatchRequest(path, watch), &resp)
	if errors.Is(err, proto.ErrNoNode) {
		return false, proto.Stat{}, nil
	}
	if err != nil {
		return false, proto.Stat{}, err
	}
	return true, resp.Stat, nil
}

// GetData returns the data and metadata of the node
func (c *Client) GetData(path string, watch bool) (jute.OptBytes, proto.Stat, error) {
	var resp proto.GetDataResponse
	err := c.call(proto.OpGetData, proto.NewPathAndWatchRequest(path, watch), &resp)
	return resp.Data, resp.Stat, err
}

// GetChildren returns the names of the children of the node
func (c *Client) GetChildren(path string, watch bool) ([]string, error) {
	var resp proto.GetChildrenResponse
	err := c.call(proto.OpGetChildren, proto.NewPathAndWatchRequest(path, watch), &resp)
	return resp.Children, err
}

// GetACL returns the access control list of the node
func (c *Client) GetACL(path string) ([]proto.ACL, proto.Stat, error) {
	var resp proto.GetACLResponse
	err := c.call(proto.OpGetACL, proto.NewPathRequest(path), &resp)
	return resp.ACL, resp.Stat, err
}

// SetACL replaces the access control list if the acl version matches
func (c *Client) SetACL(path string, acl []proto.ACL, version int32) (proto.Stat, error) {
	var resp proto.StatResponse
	err := c.call(proto.OpSetACL, proto.NewSetACLRequest(path, acl, version), &resp)
	return resp.Stat, err
}

// Sync waits until the server is up to date with the leader for path
func (c *Client) Sync(path string) (string, error) {
	var resp proto.PathResponse
	err := c.call(proto.OpSync, proto.NewPathRequest(path), &resp)
	return resp.Path, err
}

// --------------------------------------------------------------------------
// Session operations
// --------------------------------------------------------------------------

// Ping sends a keep-alive and returns the round trip time
func (c *Client) Ping() (time.Duration, error) {
	c.pingMu.Lock()
	defer c.pingMu.Unlock()

	start := time.Now()
	if _, err := c.invoke(proto.XidPing, proto.OpPing, nil); err != nil {
		return 0, err
	}
	return time.Since(start), nil
}

// AddAuth adds credentials to the session, e.g. scheme "digest" with
// "user:password"
func (c *Client) AddAuth(scheme string, auth []byte) error {
	c.authMu.Lock()
	defer c.authMu.Unlock()

	_, err := c.invoke(proto.XidAuth, proto.OpSetAuth, proto.NewAuthRequest(scheme, auth))
	return err
}
