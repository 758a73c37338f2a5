// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Oxide Plugins Contributors

package plugin

import (
	"sort"
	"sync"

	"github.com/samber/oops"
)

// Subscriptions tracks which hooks one plugin receives.
//
// Every hook the plugin implements starts subscribed. A plugin may
// unsubscribe from hooks it has no current interest in and subscribe again
// later.
type Subscriptions struct {
	plugin      string
	implemented map[Hook]bool
	active      map[Hook]bool
	mu          sync.RWMutex
}

func newSubscriptions(plugin string, implemented map[Hook]bool) *Subscriptions {
	active := make(map[Hook]bool, len(implemented))
	for h := range implemented {
		active[h] = true
	}
	return &Subscriptions{
		plugin:      plugin,
		implemented: implemented,
		active:      active,
	}
}

// Subscribe starts delivery of hook. The plugin must implement it.
func (s *Subscriptions) Subscribe(hook Hook) error {
	if !s.implemented[hook] {
		return oops.Code(CodeHookNotImplemented).
			With("plugin", s.plugin).
			With("hook", string(hook)).
			Errorf("plugin %s does not implement %s", s.plugin, hook)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active[hook] = true
	return nil
}

// Unsubscribe stops delivery of hook. Unknown hooks are ignored.
func (s *Subscriptions) Unsubscribe(hook Hook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.active, hook)
}

// IsSubscribed reports whether hook is currently delivered.
func (s *Subscriptions) IsSubscribed(hook Hook) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active[hook]
}

// Active returns the subscribed hooks, sorted.
func (s *Subscriptions) Active() []Hook {
	s.mu.RLock()
	defer s.mu.RUnlock()
	hooks := make([]Hook, 0, len(s.active))
	for h := range s.active {
		hooks = append(hooks, h)
	}
	sort.Slice(hooks, func(i, j int) bool { return hooks[i] < hooks[j] })
	return hooks
}
