// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Oxide Plugins Contributors

package access

import (
	"log/slog"
	"regexp"
	"sort"
	"sync"

	"github.com/gobwas/glob"
	"github.com/samber/oops"
)

// permissionPattern validates registered permission names.
var permissionPattern = regexp.MustCompile(`^[a-z0-9_]+(\.[a-z0-9_]+)+$`)

// compiledGrant holds a grant pattern and its compiled glob.
type compiledGrant struct {
	pattern string
	glob    glob.Glob
}

type user struct {
	groups map[string]struct{}
	grants []compiledGrant
}

// Permissions is the permission registry and grant store.
// It is safe for concurrent use.
type Permissions struct {
	mu         sync.RWMutex
	registered map[string]string // permission → owning plugin
	groups     map[string][]compiledGrant
	users      map[string]*user
}

// NewPermissions builds a store seeded from cfg.
// Returns an error if any grant pattern fails to compile.
func NewPermissions(cfg Config) (*Permissions, error) {
	p := &Permissions{
		registered: make(map[string]string),
		groups:     make(map[string][]compiledGrant),
		users:      make(map[string]*user),
	}
	p.groups[GroupDefault] = nil

	for group, patterns := range cfg.Groups {
		p.groups[group] = nil
		for _, pattern := range patterns {
			if err := p.GrantGroup(group, pattern); err != nil {
				return nil, err
			}
		}
	}
	for id, uc := range cfg.Users {
		for _, group := range uc.Groups {
			if err := p.AddUserGroup(id, group); err != nil {
				return nil, err
			}
		}
		for _, pattern := range uc.Permissions {
			if err := p.GrantUser(id, pattern); err != nil {
				return nil, err
			}
		}
	}
	return p, nil
}

func compile(pattern string) (compiledGrant, error) {
	// '.' is the separator so "godmode.*" does not reach "godmode.a.b".
	g, err := glob.Compile(pattern, '.')
	if err != nil {
		return compiledGrant{}, oops.In("access").
			Code("INVALID_PERMISSION_PATTERN").
			With("pattern", pattern).
			Wrap(err)
	}
	return compiledGrant{pattern: pattern, glob: g}, nil
}

// RegisterPermission declares a permission owned by a plugin.
// Registering the same name twice is an error unless the owner matches.
func (p *Permissions) RegisterPermission(name, owner string) error {
	if !permissionPattern.MatchString(name) {
		return oops.In("access").
			Code("INVALID_PERMISSION").
			With("permission", name).
			Errorf("permission %q must be lowercase and dotted", name)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if existing, ok := p.registered[name]; ok && existing != owner {
		return oops.In("access").
			Code("PERMISSION_CONFLICT").
			With("permission", name).
			With("owner", existing).
			Errorf("permission %q is already registered by %s", name, existing)
	}
	p.registered[name] = owner
	slog.Debug("registered permission", "permission", name, "owner", owner)
	return nil
}

// UnregisterPermissions drops every permission owned by owner.
func (p *Permissions) UnregisterPermissions(owner string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for name, o := range p.registered {
		if o == owner {
			delete(p.registered, name)
		}
	}
}

// PermissionExists reports whether name has been registered.
func (p *Permissions) PermissionExists(name string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.registered[name]
	return ok
}

// Registered returns the registered permission names, sorted.
func (p *Permissions) Registered() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	names := make([]string, 0, len(p.registered))
	for name := range p.registered {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GrantGroup adds a grant pattern to group, creating the group if needed.
func (p *Permissions) GrantGroup(group, pattern string) error {
	g, err := compile(pattern)
	if err != nil {
		return oops.With("group", group).Wrap(err)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.groups[group] = append(p.groups[group], g)
	return nil
}

// GrantUser adds a direct grant pattern to a user.
func (p *Permissions) GrantUser(userID, pattern string) error {
	g, err := compile(pattern)
	if err != nil {
		return oops.With("user", userID).Wrap(err)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	u := p.userLocked(userID)
	u.grants = append(u.grants, g)
	return nil
}

// RevokeUser removes a direct grant pattern from a user.
func (p *Permissions) RevokeUser(userID, pattern string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	u, ok := p.users[userID]
	if !ok {
		return
	}
	kept := u.grants[:0]
	for _, g := range u.grants {
		if g.pattern != pattern {
			kept = append(kept, g)
		}
	}
	u.grants = kept
}

// AddUserGroup puts a user in an existing group.
func (p *Permissions) AddUserGroup(userID, group string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.groups[group]; !ok {
		return oops.In("access").
			Code("UNKNOWN_GROUP").
			With("group", group).
			Errorf("group %q does not exist", group)
	}
	p.userLocked(userID).groups[group] = struct{}{}
	return nil
}

// RemoveUserGroup takes a user out of a group.
func (p *Permissions) RemoveUserGroup(userID, group string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if u, ok := p.users[userID]; ok {
		delete(u.groups, group)
	}
}

// UserHasGroup reports membership. Every user is in the default group.
func (p *Permissions) UserHasGroup(userID, group string) bool {
	if group == GroupDefault {
		return true
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	u, ok := p.users[userID]
	if !ok {
		return false
	}
	_, ok = u.groups[group]
	return ok
}

// UserHasPermission implements Checker.
func (p *Permissions) UserHasPermission(userID, permission string) bool {
	if userID == "" {
		return false
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if _, ok := p.registered[permission]; !ok {
		return false
	}
	if matchAny(p.groups[GroupDefault], permission) {
		return true
	}

	u, ok := p.users[userID]
	if !ok {
		return false
	}
	if matchAny(u.grants, permission) {
		return true
	}
	for group := range u.groups {
		if matchAny(p.groups[group], permission) {
			return true
		}
	}
	return false
}

func (p *Permissions) userLocked(userID string) *user {
	u, ok := p.users[userID]
	if !ok {
		u = &user{groups: make(map[string]struct{})}
		p.users[userID] = u
	}
	return u
}

func matchAny(grants []compiledGrant, permission string) bool {
	for _, g := range grants {
		if g.glob.Match(permission) {
			return true
		}
	}
	return false
}
