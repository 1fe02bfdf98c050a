// Package opts carries the shared dependencies handed to every subcommand.
package opts

import (
	"github.com/portmill/portmill/pkg/config"
	"github.com/portmill/portmill/pkg/log"
	"github.com/portmill/portmill/pkg/translate"
)

// RootOpts contains the dependencies shared by all commands
type RootOpts struct {
	// Config is the loaded runtime configuration
	Config *config.Config
	// Logger is the user-facing console logger
	Logger *log.Logger
	// Translator overrides the default capability; nil means a Gemini
	// translator is built from the config and environment
	Translator translate.Translator
}
