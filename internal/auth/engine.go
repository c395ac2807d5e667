// Package auth authenticates control clients by token and checks their
// permissions through roles, either granted directly or via groups.
// Optional rule sets restrict a permission further for one object, such as
// a single application.
package auth

import (
	"crypto/subtle"
	"fmt"
	"slices"
	"strings"

	"github.com/mfulz/launchgeist/protocol"
)

// Permission is a named right.
type Permission string

// Permissions checked by the control server.
const (
	PermSessionLaunch   Permission = "session_launch"
	PermSessionRelaunch Permission = "session_relaunch"
	PermSessionStatus   Permission = "session_status"
	PermSessionList     Permission = "session_list"
	PermResourceList    Permission = "resource_list"
	PermSystemPing      Permission = "system_ping"

	// PermAll grants every permission.
	PermAll Permission = "*"
)

// AllPermissions lists every valid permission except PermAll.
var AllPermissions = []Permission{
	PermSessionLaunch,
	PermSessionRelaunch,
	PermSessionStatus,
	PermSessionList,
	PermResourceList,
	PermSystemPing,
}

// RuleSet restricts a permission on one object.
type RuleSet struct {
	Rules []Rule `mapstructure:"rules"`
}

// Rule allows or denies permissions to subjects (users or groups).
type Rule struct {
	Description string       `mapstructure:"description"`
	Subjects    []string     `mapstructure:"subjects"`
	Permissions []Permission `mapstructure:"permissions,omitempty"` // empty matches all
	Deny        bool         `mapstructure:"deny"`
}

// User is a named client identity.
type User struct {
	Name  string   `mapstructure:"name"`
	Roles []string `mapstructure:"roles"`
	Token string   `mapstructure:"token"`
}

// Group grants roles to its members.
type Group struct {
	Name    string   `mapstructure:"name"`
	Members []string `mapstructure:"members"`
	Roles   []string `mapstructure:"roles"`
}

// Role bundles permissions.
type Role struct {
	Name        string       `mapstructure:"name"`
	Permissions []Permission `mapstructure:"permissions"`
}

// Config is the "auth" block of the daemon config.
type Config struct {
	Enabled bool             `mapstructure:"enabled"`
	Users   map[string]User  `mapstructure:"users"`
	Groups  map[string]Group `mapstructure:"groups"`
	Roles   map[string]Role  `mapstructure:"roles"`
}

// Engine evaluates a Config.
type Engine struct {
	enabled bool
	users   map[string]User
	groups  map[string]Group
	roles   map[string]Role
	member  map[string][]string // user -> groups
}

// New validates cfg and builds an Engine. Roles may only use permissions in
// AllPermissions or PermAll, and groups may only list known users. Names of
// users, groups and roles are case-insensitive; the config loader lowercases
// map keys anyway.
func New(cfg Config) (*Engine, error) {
	valid := map[Permission]bool{PermAll: true}
	for _, p := range AllPermissions {
		valid[p] = true
	}

	e := &Engine{
		enabled: cfg.Enabled,
		users:   map[string]User{},
		groups:  map[string]Group{},
		roles:   map[string]Role{},
		member:  map[string][]string{},
	}

	for name, role := range cfg.Roles {
		for _, perm := range role.Permissions {
			if !valid[perm] {
				return nil, fmt.Errorf("invalid permission '%s' in role '%s'", perm, name)
			}
		}
		if role.Name == "" {
			role.Name = name
		}
		e.roles[key(name)] = role
	}

	for name, user := range cfg.Users {
		if user.Name == "" {
			user.Name = name
		}
		e.users[key(name)] = user
	}

	for name, group := range cfg.Groups {
		if group.Name == "" {
			group.Name = name
		}
		for _, m := range group.Members {
			if _, ok := e.users[key(m)]; !ok {
				return nil, fmt.Errorf("invalid user '%s' in group '%s'", m, group.Name)
			}
			e.member[key(m)] = append(e.member[key(m)], key(name))
		}
		e.groups[key(name)] = group
	}

	return e, nil
}

// Enabled reports whether checks are enforced. A disabled engine allows everything.
func (e *Engine) Enabled() bool {
	return e != nil && e.enabled
}

// Authenticate checks the token of a request's auth block.
func (e *Engine) Authenticate(a *protocol.Auth) bool {
	if !e.Enabled() {
		return true
	}
	if a == nil {
		return false
	}
	u, ok := e.users[key(a.User)]
	if !ok || u.Token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(u.Token), []byte(a.Token)) == 1
}

// Can reports whether user holds perm and, if rules are given, whether the
// rules allow it. A matching deny rule always wins.
func (e *Engine) Can(user string, perm Permission, rules RuleSet) bool {
	if !e.Enabled() {
		return true
	}
	user = key(user)
	if !e.hasPermission(user, perm) {
		return false
	}
	if len(rules.Rules) == 0 {
		return true
	}

	allowed := false
	for _, r := range rules.Rules {
		if !r.hasPerm(perm) || !e.matchesAny(user, r.Subjects) {
			continue
		}
		if r.Deny {
			return false
		}
		allowed = true
	}
	return allowed
}

func (r Rule) hasPerm(perm Permission) bool {
	return len(r.Permissions) == 0 || slices.Contains(r.Permissions, perm) || slices.Contains(r.Permissions, PermAll)
}

func (e *Engine) matchesAny(user string, subjects []string) bool {
	for _, s := range subjects {
		if s = key(s); s == user || slices.Contains(e.member[user], s) {
			return true
		}
	}
	return false
}

// roleNames returns the user's own roles followed by those of their groups.
func (e *Engine) roleNames(user string) []string {
	u, ok := e.users[user]
	if !ok {
		return nil
	}
	out := append([]string{}, u.Roles...)
	for _, g := range e.member[user] {
		out = append(out, e.groups[g].Roles...)
	}
	return out
}

func (e *Engine) hasPermission(user string, perm Permission) bool {
	for _, name := range e.roleNames(user) {
		role, ok := e.roles[key(name)]
		if !ok {
			continue
		}
		if slices.Contains(role.Permissions, perm) || slices.Contains(role.Permissions, PermAll) {
			return true
		}
	}
	return false
}

func key(name string) string {
	return strings.ToLower(name)
}
