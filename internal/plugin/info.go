// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Oxide Plugins Contributors

package plugin

import (
	"regexp"

	"github.com/Masterminds/semver/v3"
	"github.com/samber/oops"
)

// maxNameLength is the maximum allowed length for plugin names.
const maxNameLength = 64

// namePattern validates plugin names: a letter followed by letters or digits.
// Plugin names double as data object names and message namespaces.
var namePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]*$`)

// Info describes a plugin.
type Info struct {
	Name        string
	Author      string
	Description string
	Version     *semver.Version
}

// NewInfo builds Info from a version string such as "3.1.0".
func NewInfo(name, author, version, description string) (Info, error) {
	v, err := semver.NewVersion(version)
	if err != nil {
		return Info{}, oops.Code("INVALID_PLUGIN_VERSION").
			With("plugin", name).
			With("version", version).
			Wrapf(err, "parse plugin version")
	}
	info := Info{
		Name:        name,
		Author:      author,
		Description: description,
		Version:     v,
	}
	if err := info.Validate(); err != nil {
		return Info{}, err
	}
	return info, nil
}

// MustInfo is like NewInfo but panics on error. For use in package-level
// plugin declarations.
func MustInfo(name, author, version, description string) Info {
	info, err := NewInfo(name, author, version, description)
	if err != nil {
		panic(err)
	}
	return info
}

// Validate checks info constraints.
func (i Info) Validate() error {
	if i.Name == "" || !namePattern.MatchString(i.Name) {
		return oops.Code("INVALID_PLUGIN_INFO").
			With("plugin", i.Name).
			Errorf("plugin name %q must start with a letter and contain only letters and digits", i.Name)
	}
	if len(i.Name) > maxNameLength {
		return oops.Code("INVALID_PLUGIN_INFO").
			With("plugin", i.Name).
			Errorf("plugin name must be %d characters or less, got %d", maxNameLength, len(i.Name))
	}
	if i.Version == nil {
		return oops.Code("INVALID_PLUGIN_INFO").
			With("plugin", i.Name).
			Errorf("plugin version is required")
	}
	return nil
}

// String returns "Name vVersion".
func (i Info) String() string {
	if i.Version == nil {
		return i.Name
	}
	return i.Name + " v" + i.Version.String()
}
