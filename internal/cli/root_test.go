package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRootCmd(t *testing.T) {
	cmd := NewRootCmd()

	assert.Equal(t, "chdump", cmd.Use)
	assert.Equal(t, Version, cmd.Version)

	subcommands := []string{"extract", "dump", "list", "plan", "apply", "runs", "version", "completion"}
	for _, name := range subcommands {
		found := false
		for _, sub := range cmd.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		assert.True(t, found, "subcommand %q should be registered", name)
	}

	persistent := []string{"config", "input", "output-dir", "manifest", "state", "verbose", "output", "host", "port", "database", "user", "password"}
	for _, flag := range persistent {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), "persistent flag %q should exist", flag)
	}
}
