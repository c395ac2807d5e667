package controlcli

import (
	"bufio"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/mfulz/launchgeist/internal/configcli"
	"github.com/mfulz/launchgeist/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// serve answers every request on l with handle and records the requests.
func serve(t *testing.T, l net.Listener, handle func(*protocol.Request) *protocol.Response) <-chan *protocol.Request {
	t.Helper()
	seen := make(chan *protocol.Request, 16)
	t.Cleanup(func() { _ = l.Close() })
	go func() {
		for {
			conn, err := l.Accept()
			if err != nil {
				return
			}
			go func() {
				defer conn.Close()
				req, err := protocol.ReadRequest(bufio.NewReader(conn))
				if err != nil {
					return
				}
				seen <- req
				_ = protocol.WriteResponse(conn, handle(req))
			}()
		}
	}()
	return seen
}

func tcpServer(t *testing.T, handle func(*protocol.Request) *protocol.Response) (string, <-chan *protocol.Request) {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	return l.Addr().String(), serve(t, l, handle)
}

func TestClient_LaunchSendsAuthAndDecodes(t *testing.T) {
	addr, seen := tcpServer(t, func(req *protocol.Request) *protocol.Response {
		return &protocol.Response{Status: protocol.StatusOK, Data: protocol.SessionInfo{ID: "s1", App: "demetra", State: "STARTED"}}
	})

	c := NewClient(DirectTarget(addr, "tok", "alice"))
	info, err := c.Launch(protocol.LaunchRequest{App: "demetra", Jdk: "jdk17", Plugins: []string{"p"}})
	require.NoError(t, err)
	assert.Equal(t, "s1", info.ID)
	assert.Equal(t, "STARTED", info.State)

	req := <-seen
	assert.Equal(t, protocol.CmdSessionLaunch, req.Type)
	require.NotNil(t, req.Auth)
	assert.Equal(t, "alice", req.Auth.User)
	assert.Equal(t, "tok", req.Auth.Token)

	var payload protocol.LaunchRequest
	require.NoError(t, protocol.DecodeData(req.Data, &payload))
	assert.Equal(t, protocol.LaunchRequest{App: "demetra", Jdk: "jdk17", Plugins: []string{"p"}}, payload)
}

func TestClient_RemoteError(t *testing.T) {
	addr, _ := tcpServer(t, func(req *protocol.Request) *protocol.Response {
		return &protocol.Response{Status: protocol.StatusError, Error: "bad jdk", Code: "INVALID_CONFIGURATION"}
	})

	_, err := NewClient(DirectTarget(addr, "", "")).Status("x")
	var re *RemoteError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "INVALID_CONFIGURATION", re.Code)
	assert.Equal(t, "INVALID_CONFIGURATION: bad jdk", err.Error())
}

func TestClient_Queries(t *testing.T) {
	addr, _ := tcpServer(t, func(req *protocol.Request) *protocol.Response {
		switch req.Type {
		case protocol.CmdSessionList:
			return &protocol.Response{Status: protocol.StatusOK, Data: []protocol.SessionInfo{{ID: "a"}, {ID: "b"}}}
		case protocol.CmdSessionRunning:
			return &protocol.Response{Status: protocol.StatusOK, Data: protocol.RunningResponse{AnyRunning: true, Running: 1, Total: 2}}
		case protocol.CmdResourceList:
			return &protocol.Response{Status: protocol.StatusOK, Data: protocol.ResourceListResponse{Apps: []protocol.ResourceItem{{Label: "demetra"}}}}
		case protocol.CmdSessionRelaunch:
			return &protocol.Response{Status: protocol.StatusOK, Data: protocol.RelaunchResponse{Started: false, Session: protocol.SessionInfo{ID: "a"}}}
		case protocol.CmdPing:
			return &protocol.Response{Status: protocol.StatusOK, Data: protocol.PingResponse{Version: "dev"}}
		}
		return &protocol.Response{Status: protocol.StatusError, Error: "unknown command"}
	})
	c := NewClient(DirectTarget(addr, "", ""))

	list, err := c.List()
	require.NoError(t, err)
	assert.Len(t, list, 2)

	running, err := c.Running()
	require.NoError(t, err)
	assert.Equal(t, protocol.RunningResponse{AnyRunning: true, Running: 1, Total: 2}, *running)

	res, err := c.Resources()
	require.NoError(t, err)
	assert.Equal(t, "demetra", res.Apps[0].Label)

	rel, err := c.Relaunch("a")
	require.NoError(t, err)
	assert.False(t, rel.Started)
	assert.Equal(t, "a", rel.Session.ID)

	pong, err := c.Ping()
	require.NoError(t, err)
	assert.Equal(t, "dev", pong.Version)
}

func TestSendCommandWithAuth_UnixSocket(t *testing.T) {
	dir, err := os.MkdirTemp("", "lgctl")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	sock := filepath.Join(dir, "d.sock")

	l, err := net.Listen("unix", sock)
	require.NoError(t, err)
	seen := serve(t, l, func(req *protocol.Request) *protocol.Response {
		return &protocol.Response{Status: protocol.StatusOK}
	})

	cfg := &configcli.Config{
		DefaultUser: "admin",
		Users:       map[string]configcli.UserConfig{"admin": {Token: "s3cret"}},
		Daemons:     map[string]configcli.DaemonConfig{"local": {Socket: sock}},
	}
	resp, err := SendCommandWithAuth(cfg, "", "", protocol.CmdPing, nil)
	require.NoError(t, err)
	assert.Equal(t, protocol.StatusOK, resp.Status)

	req := <-seen
	assert.Equal(t, "admin", req.Auth.User)
	assert.Equal(t, "s3cret", req.Auth.Token)
}

func TestTargetFor(t *testing.T) {
	cfg := &configcli.Config{Daemons: map[string]configcli.DaemonConfig{
		"tcp":   {TCP: "h:1"},
		"empty": {},
	}}
	tg, err := TargetFor(cfg, "tcp", "bob")
	require.NoError(t, err)
	assert.Equal(t, Target{Network: "tcp", Address: "h:1", User: "bob"}, tg)

	_, err = TargetFor(cfg, "empty", "")
	assert.Error(t, err)
}

func TestDirectTarget(t *testing.T) {
	assert.Equal(t, "unix", DirectTarget("/run/x.sock", "", "").Network)
	assert.Equal(t, "tcp", DirectTarget("localhost:7878", "", "").Network)
}

func TestSend_ConnectError(t *testing.T) {
	_, err := SendDirectCommand("127.0.0.1:1", "", "", protocol.CmdPing, nil)
	assert.Error(t, err)
}
