package script_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gruvbok/gruvbok/script"
)

func TestLoadUnknownBehaviorIsInvalid(t *testing.T) {
	ctx := script.NewContext()
	ok := ctx.Load("does-not-exist")
	assert.False(t, ok)
	assert.False(t, ctx.Valid())
}

func TestLoadKnownBehaviorIsValid(t *testing.T) {
	ctx := script.NewContext()
	ok := ctx.Load("drums")
	assert.True(t, ok)
	assert.True(t, ctx.Valid())
}

func TestDrumBehaviorEmitsNoteOnlyOnTrackZeroWhenSwitchedOn(t *testing.T) {
	ctx := script.NewContext()
	require.True(t, ctx.Load("drums"))
	ctx.SetChannel(3)
	ctx.CallInit(script.InitParams{ModeNumber: 4, MidiChannel: 3})

	events, leds := ctx.CallProcessEvent(0, script.EventView{Switch: true, Pots: [4]uint8{60, 100, 0, 0}})
	require.Len(t, events, 1)
	assert.Empty(t, leds)
	assert.Equal(t, []byte{0x90, 60, 100}, events[0].Data)

	events, _ = ctx.CallProcessEvent(1, script.EventView{Switch: true, Pots: [4]uint8{60, 100, 0, 0}})
	assert.Empty(t, events, "drums only plays on track 0")

	events, _ = ctx.CallProcessEvent(0, script.EventView{Switch: false})
	assert.Empty(t, events, "no output while switch is off")
}

func TestBasicNoteBehaviorReleasesOnSwitchOff(t *testing.T) {
	ctx := script.NewContext()
	require.True(t, ctx.Load("basic"))
	ctx.CallInit(script.InitParams{})

	events, _ := ctx.CallProcessEvent(0, script.EventView{Switch: true, Pots: [4]uint8{72, 90, 0, 0}})
	require.Len(t, events, 1)
	assert.Equal(t, []byte{0x90, 72, 90}, events[0].Data)

	events, _ = ctx.CallProcessEvent(0, script.EventView{Switch: false})
	require.Len(t, events, 1)
	assert.Equal(t, []byte{0x80, 72, 0x40}, events[0].Data)
}

func TestInvalidContextProducesNoEvents(t *testing.T) {
	ctx := script.NewContext()
	ctx.Load("missing")
	events, leds := ctx.CallProcessEvent(0, script.EventView{Switch: true})
	assert.Nil(t, events)
	assert.Nil(t, leds)
}

func TestLoaderDiscoversSlotsFromFileNames(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "01_drums.lua"), []byte{}, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "02_basic.lua"), []byte{}, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "09_missing.lua"), []byte{}, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte{}, 0644))

	loader := script.NewLoader()
	loaded, err := loader.LoadFromDirectory(dir, 120)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded)

	assert.True(t, loader.ContextFor(1).Valid())
	assert.True(t, loader.ContextFor(2).Valid())
	assert.False(t, loader.ContextFor(9).Valid())
	assert.Nil(t, loader.ContextFor(5))
}

func TestLoaderAssignsChannelBySlot(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "00_drums.lua"), []byte{}, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "10_drums.lua"), []byte{}, 0644))

	loader := script.NewLoader()
	_, err := loader.LoadFromDirectory(dir, 120)
	require.NoError(t, err)

	ctx10 := loader.ContextFor(10)
	require.NotNil(t, ctx10)
	assert.EqualValues(t, 9, ctx10.Channel(), "mode 10 must be assigned channel 9")
}

func TestOutOfRangeSlotIsIgnored(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "99_drums.lua"), []byte{}, 0644))

	loader := script.NewLoader()
	loaded, err := loader.LoadFromDirectory(dir, 120)
	require.NoError(t, err)
	assert.Equal(t, 0, loaded)
}
