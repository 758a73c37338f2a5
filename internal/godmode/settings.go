// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Oxide Plugins Contributors

package godmode

// Settings are the operator-tunable switches of the plugin.
type Settings struct {
	// CanBeHurt lets protected players take damage and be wounded.
	CanBeHurt bool `koanf:"can_be_hurt" json:"can_be_hurt"`
	// CanBeLooted lets others loot protected players.
	CanBeLooted bool `koanf:"can_be_looted" json:"can_be_looted"`
	// CanHurtPlayers lets protected players deal damage.
	CanHurtPlayers bool `koanf:"can_hurt_players" json:"can_hurt_players"`
	// CanLootPlayers lets protected players loot others.
	CanLootPlayers bool `koanf:"can_loot_players" json:"can_loot_players"`
	// InfiniteRun skips endurance decay for protected players.
	InfiniteRun bool `koanf:"infinite_run" json:"infinite_run"`
	// InformOnAttack tells both parties when a protected player is attacked.
	InformOnAttack bool `koanf:"inform_on_attack" json:"inform_on_attack"`
	// PrefixEnabled decorates protected players' names with PrefixFormat.
	PrefixEnabled bool   `koanf:"prefix_enabled" json:"prefix_enabled"`
	PrefixFormat  string `koanf:"prefix_format" json:"prefix_format"`
}

// DefaultSettings returns the stock configuration.
func DefaultSettings() Settings {
	return Settings{
		CanBeHurt:      false,
		CanBeLooted:    false,
		CanHurtPlayers: true,
		CanLootPlayers: true,
		InfiniteRun:    true,
		InformOnAttack: true,
		PrefixEnabled:  true,
		PrefixFormat:   "[God]",
	}
}
