package host

import (
	"flag"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// parseArgs binds and finishes host arguments on a fresh flag set, the way
// main does on flag.CommandLine.
func parseArgs(argv []string) (Args, error) {
	var a Args
	var info string

	fs := flag.NewFlagSet("host", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	a.Bind(fs, &info)
	if err := fs.Parse(argv); err != nil {
		return Args{}, err
	}
	if err := a.Finish(info); err != nil {
		return Args{}, err
	}
	return a, nil
}

func TestArgs_BindAndFinish(t *testing.T) {
	args, err := parseArgs([]string{
		"-port", "28196",
		"-pluginUUID", "ABC123",
		"-registerEvent", "registerPlugin",
		"-info", `{"application":{"platform":"linux","version":"1.2.0"},"plugin":{"uuid":"dev.vitalis.deck","version":"0.1.0"}}`,
	})
	require.NoError(t, err)

	assert.Equal(t, 28196, args.Port)
	assert.Equal(t, "ABC123", args.PluginUUID)
	assert.Equal(t, "registerPlugin", args.RegisterEvent)
	assert.Equal(t, "linux", args.Info.Application.Platform)
	assert.Equal(t, "0.1.0", args.Info.Plugin.Version)
}

func TestArgs_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing everything", nil},
		{"bad port", []string{"-port", "0", "-pluginUUID", "x", "-registerEvent", "r"}},
		{"missing uuid", []string{"-port", "1", "-registerEvent", "r"}},
		{"missing register event", []string{"-port", "1", "-pluginUUID", "x"}},
		{"bad info", []string{"-port", "1", "-pluginUUID", "x", "-registerEvent", "r", "-info", "{"}},
		{"unknown flag", []string{"-nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseArgs(tt.args)
			assert.Error(t, err)
		})
	}
}
