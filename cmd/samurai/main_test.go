package main

import (
	"testing"

	"github.com/go-shiori/samurai"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestNothingToDownload(t *testing.T) {
	assert.True(t, nothingToDownload(samurai.ErrNoPuzzles))
	assert.True(t, nothingToDownload(samurai.ErrNoDropdown))
	assert.True(t, nothingToDownload(errors.Wrap(samurai.ErrNoPuzzlesInRange, "available date range: a to b")))

	assert.False(t, nothingToDownload(samurai.ErrDisallowed))
	assert.False(t, nothingToDownload(errors.New("failed to start chrome")))
}

func TestSandboxFlag(t *testing.T) {
	cmd := newCommand()
	cfg, err := loadConfig(cmd)
	assert.NoError(t, err)
	assert.False(t, cfg.Sandbox)

	cmd = newCommand()
	assert.NoError(t, cmd.ParseFlags([]string{"--sandbox"}))
	cfg, err = loadConfig(cmd)
	assert.NoError(t, err)
	assert.True(t, cfg.Sandbox)
}
