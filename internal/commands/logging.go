package commands

import (
	"strings"

	"github.com/goliatone/go-partials/internal/logging"
	"github.com/goliatone/go-partials/pkg/interfaces"
)

// CommandLogger returns the logger for one group of command handlers,
// named partials.commands.<group>. Every entry carries the group as
// command_module.
func CommandLogger(provider interfaces.LoggerProvider, group string) interfaces.Logger {
	group = strings.TrimSpace(group)
	if group == "" {
		return logging.WithFields(logging.CommandsLogger(provider), map[string]any{"command_module": "core"})
	}
	return logging.WithFields(logging.ModuleLogger(provider, "partials.commands."+group),
		map[string]any{"command_module": group})
}
