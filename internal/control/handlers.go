package control

import (
	"errors"
	"strings"
	"time"

	"github.com/mfulz/launchgeist/dispatch"
	"github.com/mfulz/launchgeist/internal/auth"
	"github.com/mfulz/launchgeist/internal/launcherr"
	"github.com/mfulz/launchgeist/internal/logging"
	"github.com/mfulz/launchgeist/internal/manager"
	"github.com/mfulz/launchgeist/internal/resource"
	"github.com/mfulz/launchgeist/protocol"
)

// permissions maps every command to the permission it requires.
var permissions = map[string]auth.Permission{
	protocol.CmdSessionLaunch:   auth.PermSessionLaunch,
	protocol.CmdSessionRelaunch: auth.PermSessionRelaunch,
	protocol.CmdSessionStatus:   auth.PermSessionStatus,
	protocol.CmdSessionList:     auth.PermSessionList,
	protocol.CmdSessionRunning:  auth.PermSessionList,
	protocol.CmdResourceList:    auth.PermResourceList,
	protocol.CmdPing:            auth.PermSystemPing,
}

// handlers serves the control commands of one daemon.
type handlers struct {
	mgr      *manager.Manager
	engine   *auth.Engine
	appRules map[string]auth.RuleSet
	version  string
	started  time.Time
}

// NewDispatcher registers a handler for every control command. Requests
// are logged, authenticated and checked against the command's permission
// before they reach the handler. appRules restrict launching and relaunching
// per application label.
func NewDispatcher(mgr *manager.Manager, engine *auth.Engine, appRules map[string]auth.RuleSet, version string) *dispatch.Dispatcher {
	h := &handlers{
		mgr:      mgr,
		engine:   engine,
		appRules: appRules,
		version:  version,
		started:  time.Now(),
	}

	d := dispatch.New()
	d.Use(logRequests)
	d.Use(h.authenticate)
	d.Use(h.authorize)

	d.Register(protocol.CmdSessionLaunch, h.launch)
	d.Register(protocol.CmdSessionRelaunch, h.relaunch)
	d.Register(protocol.CmdSessionStatus, h.status)
	d.Register(protocol.CmdSessionList, h.list)
	d.Register(protocol.CmdSessionRunning, h.running)
	d.Register(protocol.CmdResourceList, h.resources)
	d.Register(protocol.CmdPing, h.ping)
	return d
}

// extractUser returns the request auth user or "unauthenticated".
func extractUser(req *protocol.Request) string {
	if req.Auth != nil {
		return req.Auth.User
	}
	return "unauthenticated"
}

func logRequests(command string, next dispatch.HandlerFunc) dispatch.HandlerFunc {
	return func(req *protocol.Request) *protocol.Response {
		start := time.Now()
		resp := next(req)
		logging.Log.Debugw("[control] request",
			"command", command,
			"user", extractUser(req),
			"status", resp.Status,
			"duration", time.Since(start),
		)
		return resp
	}
}

func (h *handlers) authenticate(command string, next dispatch.HandlerFunc) dispatch.HandlerFunc {
	return func(req *protocol.Request) *protocol.Response {
		if !h.engine.Authenticate(req.Auth) {
			logging.Log.Warnf("[control] authentication failed for %s (%s)", extractUser(req), command)
			return dispatch.Error("authentication failed")
		}
		return next(req)
	}
}

func (h *handlers) authorize(command string, next dispatch.HandlerFunc) dispatch.HandlerFunc {
	perm, ok := permissions[command]
	return func(req *protocol.Request) *protocol.Response {
		if !ok || !h.engine.Can(extractUser(req), perm, auth.RuleSet{}) {
			return dispatch.Error("not allowed")
		}
		return next(req)
	}
}

// rulesFor returns the launch rules of an app label.
func (h *handlers) rulesFor(app string) auth.RuleSet {
	if rules, ok := h.appRules[app]; ok {
		return rules
	}
	return h.appRules[strings.ToLower(app)]
}

// failure builds an error response carrying the launch error code of err.
func failure(err error) *protocol.Response {
	resp := dispatch.Error(err.Error())
	resp.Code = string(launcherr.CodeOf(err))
	return resp
}

func (h *handlers) launch(req *protocol.Request) *protocol.Response {
	var payload protocol.LaunchRequest
	if err := protocol.DecodeData(req.Data, &payload); err != nil {
		return dispatch.Error(err.Error())
	}
	if payload.App == "" {
		return failure(launcherr.ErrInvalidConfiguration("no app selected"))
	}

	if !h.engine.Can(extractUser(req), auth.PermSessionLaunch, h.rulesFor(payload.App)) {
		return dispatch.Error("not allowed")
	}

	s, err := h.mgr.Launch(resource.Selection{
		App:     payload.App,
		Jdk:     payload.Jdk,
		UserDir: payload.UserDir,
		Plugins: payload.Plugins,
	})
	if err != nil {
		return failure(err)
	}
	return dispatch.OK(manager.SessionInfo(s.Info()))
}

func (h *handlers) relaunch(req *protocol.Request) *protocol.Response {
	var payload protocol.SessionRequest
	if err := protocol.DecodeData(req.Data, &payload); err != nil {
		return dispatch.Error(err.Error())
	}

	info, err := h.mgr.Status(payload.ID)
	if err != nil {
		return failure(err)
	}
	if !h.engine.Can(extractUser(req), auth.PermSessionRelaunch, h.rulesFor(info.App)) {
		return dispatch.Error("not allowed")
	}

	s, started, err := h.mgr.Relaunch(payload.ID)
	if err != nil {
		return failure(err)
	}
	return dispatch.OK(protocol.RelaunchResponse{
		Started: started,
		Session: manager.SessionInfo(s.Info()),
	})
}

func (h *handlers) status(req *protocol.Request) *protocol.Response {
	var payload protocol.SessionRequest
	if err := protocol.DecodeData(req.Data, &payload); err != nil {
		return dispatch.Error(err.Error())
	}
	info, err := h.mgr.Status(payload.ID)
	if errors.Is(err, manager.ErrSessionNotFound) {
		return dispatch.Error("unknown session")
	}
	if err != nil {
		return failure(err)
	}
	return dispatch.OK(manager.SessionInfo(info))
}

func (h *handlers) list(req *protocol.Request) *protocol.Response {
	infos := h.mgr.List()
	out := make([]protocol.SessionInfo, 0, len(infos))
	for _, i := range infos {
		out = append(out, manager.SessionInfo(i))
	}
	return dispatch.OK(out)
}

func (h *handlers) running(req *protocol.Request) *protocol.Response {
	return dispatch.OK(protocol.RunningResponse{
		AnyRunning: h.mgr.AnyRunning(),
		Running:    h.mgr.Running(),
		Total:      h.mgr.Registry().Len(),
	})
}

func (h *handlers) resources(req *protocol.Request) *protocol.Response {
	return dispatch.OK(h.mgr.Resources())
}

func (h *handlers) ping(req *protocol.Request) *protocol.Response {
	return dispatch.OK(protocol.PingResponse{
		Version: h.version,
		Uptime:  time.Since(h.started).Round(time.Second).String(),
	})
}
