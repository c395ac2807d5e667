// Package controlcli handles daemon communication and request encoding from launchgeist.
package controlcli

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/mfulz/launchgeist/internal/configcli"
	"github.com/mfulz/launchgeist/protocol"
)

// DialTimeout bounds connecting to a daemon.
var DialTimeout = 2 * time.Second

// Target is a daemon endpoint plus the identity used to talk to it.
type Target struct {
	Network string // "unix" or "tcp"
	Address string
	User    string
	Token   string
}

// TargetFor builds the Target for a configured daemon. An empty daemonName
// selects the default daemon and an empty user the default user.
func TargetFor(cfg *configcli.Config, daemonName, user string) (Target, error) {
	name, daemon, err := cfg.Daemon(daemonName)
	if err != nil {
		return Target{}, err
	}
	user = cfg.User(user)
	t := Target{User: user, Token: cfg.Token(user)}
	switch {
	case daemon.Socket != "":
		t.Network, t.Address = "unix", daemon.Socket
	case daemon.TCP != "":
		t.Network, t.Address = "tcp", daemon.TCP
	default:
		return Target{}, fmt.Errorf("invalid daemon config '%s': no socket or tcp defined", name)
	}
	return t, nil
}

// DirectTarget builds a Target for an address given on the command line.
// Addresses containing a path separator are unix sockets, all others host:port.
func DirectTarget(addr, token, user string) Target {
	network := "tcp"
	if strings.Contains(addr, "/") {
		network = "unix"
	}
	return Target{Network: network, Address: addr, User: user, Token: token}
}

// Send connects to t, sends one request and reads its response.
func Send(t Target, command string, data interface{}) (*protocol.Response, error) {
	conn, err := net.DialTimeout(t.Network, t.Address, DialTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon at %s: %w", t.Address, err)
	}
	defer conn.Close()

	req := &protocol.Request{Type: command, Data: data}
	if t.User != "" || t.Token != "" {
		req.Auth = &protocol.Auth{User: t.User, Token: t.Token}
	}
	if err := protocol.WriteRequest(conn, req); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	resp, err := protocol.ReadResponse(bufio.NewReader(conn))
	if err != nil {
		return nil, fmt.Errorf("invalid response: %w", err)
	}
	return resp, nil
}

// SendCommandWithAuth connects to a configured daemon and sends a request
// with the configured token of userName.
func SendCommandWithAuth(cfg *configcli.Config, daemonName, userName, command string, data interface{}) (*protocol.Response, error) {
	t, err := TargetFor(cfg, daemonName, userName)
	if err != nil {
		return nil, err
	}
	return Send(t, command, data)
}

// SendDirectCommand sends a request to addr, bypassing the daemon list.
func SendDirectCommand(addr, token, userName, command string, data interface{}) (*protocol.Response, error) {
	return Send(DirectTarget(addr, token, userName), command, data)
}
