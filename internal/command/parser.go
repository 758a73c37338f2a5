// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Oxide Plugins Contributors

package command

import (
	"regexp"
	"strings"

	"github.com/samber/oops"
)

// MaxNameLength is the maximum length for command names.
const MaxNameLength = 32

// namePattern validates command names: a lowercase letter followed by
// lowercase letters, digits, dots or underscores.
var namePattern = regexp.MustCompile(`^[a-z][a-z0-9._]*$`)

// ParsedCommand represents a parsed command input.
type ParsedCommand struct {
	Name    string   // command name, lower-cased, without the chat prefix
	Args    []string // whitespace-separated arguments
	RawArgs string   // unparsed argument string (preserves internal whitespace)
	Raw     string   // original input
}

// Parse splits raw chat input into command name and arguments.
// A leading "/" (chat command prefix) is optional.
func Parse(input string) (*ParsedCommand, error) {
	trimmed := strings.TrimSpace(input)
	trimmed = strings.TrimSpace(strings.TrimPrefix(trimmed, "/"))
	if trimmed == "" {
		return nil, oops.Code(CodeEmptyInput).Errorf("no command provided")
	}

	name, rawArgs := trimmed, ""
	if idx := strings.IndexAny(trimmed, " \t"); idx != -1 {
		name = trimmed[:idx]
		rawArgs = strings.TrimLeft(trimmed[idx+1:], " \t")
	}

	return &ParsedCommand{
		Name:    strings.ToLower(name),
		Args:    strings.Fields(rawArgs),
		RawArgs: rawArgs,
		Raw:     input,
	}, nil
}

// ValidateCommandName validates a command name.
func ValidateCommandName(name string) error {
	if name == "" {
		return oops.Code(CodeInvalidName).Errorf("command name cannot be empty")
	}
	if len(name) > MaxNameLength {
		return oops.Code(CodeInvalidName).
			With("name", name).
			With("max", MaxNameLength).
			Errorf("command name exceeds maximum length of %d", MaxNameLength)
	}
	if !namePattern.MatchString(name) {
		return oops.Code(CodeInvalidName).
			With("name", name).
			Errorf("command name must start with a lowercase letter and contain only a-z, 0-9, '.' or '_'")
	}
	return nil
}
