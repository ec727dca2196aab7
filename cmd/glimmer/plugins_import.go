package main

// Blank imports ensure plugin init() registration runs for the CLI binary.
import (
	_ "github.com/glimmerlabs/glimmer/internal/plugins/accessibility"
	_ "github.com/glimmerlabs/glimmer/internal/plugins/lazyload"
	_ "github.com/glimmerlabs/glimmer/internal/plugins/placeholder"
	_ "github.com/glimmerlabs/glimmer/internal/plugins/responsive"
)
