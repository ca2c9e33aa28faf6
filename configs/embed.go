// Package configs provides the embedded configuration template for fathom.
//
// The template is embedded at build time so 'fathom config init' can
// write a commented starting point regardless of how the binary was
// installed. The runtime configuration hierarchy is resolved by
// internal/config (defaults, then the config file, then FATHOM_* env
// overrides).
package configs

import _ "embed"

// ConfigTemplate is the commented example configuration written by
// 'fathom config init' to ~/.config/fathom/config.yaml.
//
//go:embed config.example.yaml
var ConfigTemplate string
