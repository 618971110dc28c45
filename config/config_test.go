package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gruvbok/gruvbok/config"
)

func TestDefaultHasSaneTempoAndProgramMap(t *testing.T) {
	c := config.Default()
	assert.Equal(t, 120, c.DefaultTempoBPM)
	assert.Equal(t, -1, c.ProgramFor(0))
	assert.Equal(t, 0, c.ProgramFor(10))
}

func TestProgramForRejectsOutOfRange(t *testing.T) {
	c := config.Default()
	assert.Equal(t, -1, c.ProgramFor(-1))
	assert.Equal(t, -1, c.ProgramFor(99))
}
