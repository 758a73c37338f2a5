// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Oxide Plugins Contributors

package godmode

import (
	"strings"

	"github.com/Trux13/oxide-plugins/internal/host"
)

// Bounds is a partial attribute override. Nil fields are left untouched.
type Bounds struct {
	Min   *float64
	Max   *float64
	Value *float64
}

// AttributeOverride holds the protected and normal bounds of one attribute.
type AttributeOverride struct {
	Attribute host.AttributeName
	Protected Bounds
	Normal    Bounds
}

func f(v float64) *float64 { return &v }

// AttributeOverrides is applied in order when a player's status changes.
var AttributeOverrides = []AttributeOverride{
	{Attribute: host.Health, Protected: Bounds{Value: f(100)}},
	{Attribute: host.Bleeding, Protected: Bounds{Max: f(0), Value: f(0)}, Normal: Bounds{Min: f(0), Max: f(1)}},
	{Attribute: host.Calories, Protected: Bounds{Min: f(500), Value: f(500)}, Normal: Bounds{Min: f(0), Max: f(500)}},
	{Attribute: host.Comfort, Normal: Bounds{Min: f(0), Max: f(1)}},
	{Attribute: host.Dirtyness, Protected: Bounds{Max: f(0), Value: f(0)}, Normal: Bounds{Min: f(0), Max: f(100)}},
	{Attribute: host.HeartRate, Protected: Bounds{Min: f(0.5), Max: f(0.5), Value: f(0.5)}, Normal: Bounds{Min: f(0), Max: f(1)}},
	{Attribute: host.Hydration, Protected: Bounds{Min: f(250), Value: f(250)}, Normal: Bounds{Min: f(0), Max: f(250)}},
	{Attribute: host.Oxygen, Protected: Bounds{Min: f(1), Value: f(1)}, Normal: Bounds{Min: f(0), Max: f(1)}},
	{Attribute: host.Poison, Protected: Bounds{Max: f(0), Value: f(0)}, Normal: Bounds{Min: f(0), Max: f(100)}},
	{Attribute: host.RadiationLevel, Protected: Bounds{Max: f(0), Value: f(0)}, Normal: Bounds{Min: f(0), Max: f(100)}},
	{Attribute: host.RadiationPoison, Protected: Bounds{Max: f(0), Value: f(0)}, Normal: Bounds{Min: f(0), Max: f(500)}},
	{Attribute: host.Temperature, Protected: Bounds{Min: f(32), Max: f(32), Value: f(32)}, Normal: Bounds{Min: f(-100), Max: f(100)}},
	{Attribute: host.Wetness, Protected: Bounds{Max: f(0), Value: f(0)}, Normal: Bounds{Min: f(0), Max: f(1)}},
}

func (b Bounds) apply(a *host.Attribute) {
	if b.Min != nil {
		a.SetMin(*b.Min)
	}
	if b.Max != nil {
		a.SetMax(*b.Max)
	}
	if b.Value != nil {
		a.SetValue(*b.Value)
	}
}

// Applier pushes the attribute overrides and the name tag for a mode.
type Applier struct {
	prefixEnabled bool
	prefix        string
}

// NewApplier creates an applier using the name-tag settings.
func NewApplier(s Settings) *Applier {
	return &Applier{
		prefixEnabled: s.PrefixEnabled,
		prefix:        strings.TrimSpace(s.PrefixFormat),
	}
}

// Apply sets every override for the mode, syncs the client once, and
// updates the name tag.
func (a *Applier) Apply(p *host.Player, protected bool) {
	vitals := p.Vitals()
	for _, o := range AttributeOverrides {
		b := o.Normal
		if protected {
			b = o.Protected
		}
		b.apply(vitals.Get(o.Attribute))
	}
	p.SyncVitals()
	p.SetDisplayName(a.Decorate(p.DisplayName(), protected))
}

// Decorate returns name with the prefix for a protected player, or with
// every prefix occurrence removed otherwise.
func (a *Applier) Decorate(name string, protected bool) string {
	if a.prefix == "" {
		return name
	}
	if protected && a.prefixEnabled {
		if strings.HasPrefix(name, a.prefix+" ") {
			return name
		}
		return a.prefix + " " + a.Strip(name)
	}
	return a.Strip(name)
}

// Strip removes every occurrence of the prefix from name.
func (a *Applier) Strip(name string) string {
	if a.prefix == "" {
		return name
	}
	return strings.TrimSpace(strings.ReplaceAll(name, a.prefix, ""))
}
