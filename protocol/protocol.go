// Package protocol defines the message structures and types used for communication
// between launchgeist and the launchgeistd daemon. It can be used externally to build
// additional tooling or integrations.
package protocol

import "time"

// Command types for Request.Type
const (
	CmdSessionLaunch   = "session.launch"
	CmdSessionRelaunch = "session.relaunch"
	CmdSessionStatus   = "session.status"
	CmdSessionList     = "session.list"
	CmdSessionRunning  = "session.running"
	CmdResourceList    = "resource.list"
	CmdPing            = "system.ping"
)

// Response status values.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Request represents a message sent from a client to the daemon.
type Request struct {
	Type string      `json:"type"`           // e.g. "session.launch", "session.status"
	Auth *Auth       `json:"auth,omitempty"` // Optional auth block
	Data interface{} `json:"data,omitempty"` // Optional payload
}

// Response represents a message sent from the daemon to a client.
type Response struct {
	Status string      `json:"status"`          // "ok" or "error"
	Data   interface{} `json:"data,omitempty"`  // Optional result
	Error  string      `json:"error,omitempty"` // Optional error message
	Code   string      `json:"code,omitempty"`  // Error code of a failed launch, if known
}

// Auth holds authentication information for a client.
type Auth struct {
	User  string `json:"user"`
	Token string `json:"token"`
}

// --- Payload Types ---

// LaunchRequest selects resources by label. An empty, "---" or "TEMP"
// userdir means a fresh ephemeral userdir.
type LaunchRequest struct {
	App     string   `json:"app"`
	Jdk     string   `json:"jdk"`
	UserDir string   `json:"userdir,omitempty"`
	Plugins []string `json:"plugins,omitempty"`
}

// SessionRequest addresses one session.
type SessionRequest struct {
	ID string `json:"id"`
}

// SessionInfo describes a session.
type SessionInfo struct {
	ID         string    `json:"id"`
	App        string    `json:"app"`
	Jdk        string    `json:"jdk"`
	UserDir    string    `json:"userdir"`
	Plugins    []string  `json:"plugins,omitempty"`
	WorkingDir string    `json:"working_dir,omitempty"`
	Ephemeral  bool      `json:"ephemeral"`
	State      string    `json:"state"` // PENDING, STARTED or DONE
	Runs       int       `json:"runs"`
	LastError  string    `json:"last_error,omitempty"`
	ErrorCode  string    `json:"error_code,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	StartedAt  time.Time `json:"started_at,omitempty"`
	EndedAt    time.Time `json:"ended_at,omitempty"`
}

// RelaunchResponse reports whether a relaunch started a new run.
type RelaunchResponse struct {
	Started bool        `json:"started"`
	Session SessionInfo `json:"session"`
}

// RunningResponse is the answer to session.running.
type RunningResponse struct {
	AnyRunning bool `json:"any_running"`
	Running    int  `json:"running"`
	Total      int  `json:"total"`
}

// ResourceItem is one selectable resource.
type ResourceItem struct {
	Label    string `json:"label"`
	Location string `json:"location"`
	Clone    bool   `json:"clone,omitempty"`
}

// ResourceListResponse lists the selectable resources per kind.
type ResourceListResponse struct {
	Apps     []ResourceItem `json:"apps"`
	Jdks     []ResourceItem `json:"jdks"`
	UserDirs []ResourceItem `json:"user_dirs"`
	Plugins  []ResourceItem `json:"plugins"`
}

// PingResponse is the answer to system.ping.
type PingResponse struct {
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}
