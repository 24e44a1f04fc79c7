// Package config loads runtime settings for purdah.
//
// Settings come from three layers, later layers overriding earlier ones:
//
//	┌─────────────────────────────┐
//	│  3. Environment (PURDAH_*)  │  ← Highest priority
//	├─────────────────────────────┤
//	│  2. Config file             │  ← purdah.toml / purdah.yaml
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// The file format is chosen by extension: .toml, .yaml or .yml. A missing
// file is not an error; the defaults apply.
//
//	# purdah.toml
//	[log]
//	level = "debug"
//	format = "json"
//
//	[dispatch]
//	recover_panics = true
//	queue_capacity = 1024
//	on_duplicate = "error"
//
//	[middleware]
//	logging = true
//	scripts = ["hooks/audit.lua"]
//
// Environment variables use the section and key names, for example
// PURDAH_LOG_LEVEL or PURDAH_DISPATCH_QUEUE_CAPACITY.
//
// A Watcher reloads the file when it changes and hands the new Config to
// registered callbacks.
package config
