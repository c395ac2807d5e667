// Package controlcli provides shared client-side IPC wrappers for interacting with launchgeistd.
package controlcli

import (
	"fmt"

	"github.com/mfulz/launchgeist/internal/logging"
	"github.com/mfulz/launchgeist/protocol"
)

// RemoteError is an error answer of the daemon.
type RemoteError struct {
	Message string
	Code    string // launch error code, if any
}

func (e *RemoteError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// Client issues typed commands to one daemon.
type Client struct {
	Target Target
}

// NewClient returns a Client for t.
func NewClient(t Target) *Client {
	return &Client{Target: t}
}

// exec sends cmd and decodes a successful answer into out (may be nil).
func (c *Client) exec(cmd string, payload interface{}, out interface{}) error {
	resp, err := Send(c.Target, cmd, payload)
	if err != nil {
		return err
	}
	if resp.Status != protocol.StatusOK {
		logging.Log.Debugf("[controlcli] %s failed: %s", cmd, resp.Error)
		return &RemoteError{Message: resp.Error, Code: resp.Code}
	}
	if out == nil {
		return nil
	}
	if err := protocol.DecodeData(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s response: %w", cmd, err)
	}
	return nil
}

// Launch starts a new session.
func (c *Client) Launch(req protocol.LaunchRequest) (*protocol.SessionInfo, error) {
	var info protocol.SessionInfo
	if err := c.exec(protocol.CmdSessionLaunch, req, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Relaunch starts another run of a session.
func (c *Client) Relaunch(id string) (*protocol.RelaunchResponse, error) {
	var r protocol.RelaunchResponse
	if err := c.exec(protocol.CmdSessionRelaunch, protocol.SessionRequest{ID: id}, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Status returns one session.
func (c *Client) Status(id string) (*protocol.SessionInfo, error) {
	var info protocol.SessionInfo
	if err := c.exec(protocol.CmdSessionStatus, protocol.SessionRequest{ID: id}, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// List returns every session of the daemon.
func (c *Client) List() ([]protocol.SessionInfo, error) {
	var list []protocol.SessionInfo
	if err := c.exec(protocol.CmdSessionList, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Running reports whether any session is running.
func (c *Client) Running() (*protocol.RunningResponse, error) {
	var r protocol.RunningResponse
	if err := c.exec(protocol.CmdSessionRunning, nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Resources lists the selectable resources.
func (c *Client) Resources() (*protocol.ResourceListResponse, error) {
	var r protocol.ResourceListResponse
	if err := c.exec(protocol.CmdResourceList, nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Ping checks that the daemon answers.
func (c *Client) Ping() (*protocol.PingResponse, error) {
	var r protocol.PingResponse
	if err := c.exec(protocol.CmdPing, nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
