// Package config provides deck preset management for the Scopa Table server.
//
// The config package handles:
//   - Loading deck presets from JSON files
//   - Preset validation (no duplicate suits or values, non-empty vocabularies)
//   - Built-in default preset management
//   - Preset discovery and listing
//
// Preset Format:
//
// Deck presets are stored as JSON files in the configs directory. Each
// preset names the suit and value vocabularies that a room's deck is built
// from; the server treats both as opaque strings:
//
//	{
//	  "name": "Italian 40-card",
//	  "description": "Traditional scopa/briscola deck",
//	  "suits": ["denari", "coppe", "bastoni", "spade"],
//	  "values": ["1", "2", "3", "4", "5", "6", "7", "alfiere", "regina", "re"]
//	}
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//
//	preset, err := manager.LoadPreset("italian")
//	defaultPreset := manager.GetDefault()
//	presets, err := manager.ListPresets()
//
// If the configs directory is missing or holds no valid presets, the manager
// falls back to a built-in Italian 40-card deck so the server can always
// create rooms.
package config
