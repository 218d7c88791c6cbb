package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoot(t *testing.T) {
	cmd := Root()

	require.NotNil(t, cmd)
	assert.Equal(t, "httpmictl", cmd.Use)
	assert.Equal(t, "Control node power and boot device through an httpmi proxy", cmd.Short)
}

func TestRoot_HasSubcommands(t *testing.T) {
	cmd := Root()

	subcommands := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		subcommands[sub.Name()] = true
	}

	for _, expected := range []string{"power", "boot-device", "validate", "version"} {
		assert.True(t, subcommands[expected], "Expected subcommand %s not found", expected)
	}
}

func TestRoot_PersistentFlags(t *testing.T) {
	cmd := Root()

	for name, shorthand := range map[string]string{
		"node":    "n",
		"output":  "o",
		"timeout": "",
		"ca":      "",
		"cert":    "",
		"key":     "",
	} {
		flag := cmd.PersistentFlags().Lookup(name)
		require.NotNil(t, flag, "%s flag should exist", name)
		assert.Equal(t, shorthand, flag.Shorthand, name)
	}

	assert.Equal(t, "30s", cmd.PersistentFlags().Lookup("timeout").DefValue)
	assert.Equal(t, "text", cmd.PersistentFlags().Lookup("output").DefValue)
}

func TestRoot_NodeRequired(t *testing.T) {
	for _, args := range [][]string{
		{"power", "get"},
		{"power", "set", "on"},
		{"power", "reboot"},
		{"boot-device", "get"},
		{"boot-device", "set", "pxe"},
		{"boot-device", "supported"},
		{"validate"},
	} {
		cmd := Root()
		cmd.SetArgs(args)
		cmd.SetOut(new(bytes.Buffer))
		cmd.SetErr(new(bytes.Buffer))

		assert.ErrorIs(t, cmd.Execute(), errNodeRequired, args)
	}
}

func TestVersion(t *testing.T) {
	SetVersionInfo("v1.2.3", "abc123", "2024-01-01")
	t.Cleanup(func() { SetVersionInfo("dev", "n/a", "n/a") })

	out := new(bytes.Buffer)

	cmd := Root()
	cmd.SetArgs([]string{"version"})
	cmd.SetOut(out)

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "httpmictl v1.2.3")
	assert.Contains(t, out.String(), "commit: abc123")
}
