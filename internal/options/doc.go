// Package options builds the JSON launch options handed to the server.
//
// A document starts from an optional config file (JSON, TOML or YAML), then
// command line flags are layered on top, then dotted --set overrides:
//
//	doc, err := options.Build(options.Flags{
//		ConfigFile: "camoufox.yaml",
//		Set:        []string{"window.width=1280"},
//	})
//
// Normalize produces the form the server expects: top-level nulls dropped
// and top-level keys in camelCase.
package options
