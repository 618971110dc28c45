package script

// basicNoteBehavior is GRUVBOK's built-in default mode script: on an
// active step it plays pot 0 as pitch and pot 1 as velocity, and releases
// the note on the following (inactive) step. It exists so a freshly
// initialized mode makes sound before the user assigns anything more
// elaborate, and doubles as the reference behavior in tests.
type basicNoteBehavior struct {
	channel     uint8
	lastPitch   uint8
	lastWasHeld bool
}

func newBasicNoteBehavior() Behavior {
	return &basicNoteBehavior{}
}

func (b *basicNoteBehavior) Init(ctx *RuntimeContext, params InitParams) {
	b.channel = params.MidiChannel
}

func (b *basicNoteBehavior) ProcessEvent(ctx *RuntimeContext, track int, ev EventView) {
	if track != 0 {
		return
	}
	if ev.Switch {
		pitch := ev.Pots[0]
		ctx.Note(pitch, ev.Pots[1], 0)
		b.lastPitch = pitch
		b.lastWasHeld = true
		return
	}
	if b.lastWasHeld {
		ctx.Off(b.lastPitch, 0)
		b.lastWasHeld = false
	}
}

func (b *basicNoteBehavior) ModeName() string {
	return "Basic Note"
}

func (b *basicNoteBehavior) SliderLabels() [4]string {
	return [4]string{"Pitch", "Velocity", "", ""}
}

// drumBehavior emits a fixed-pitch hit on track 0's active steps, pot 1
// controlling velocity — the "trivial drum script" spec.md's worked
// example describes.
type drumBehavior struct {
	pitch uint8
}

func newDrumBehavior() Behavior {
	return &drumBehavior{pitch: 60}
}

func (d *drumBehavior) Init(ctx *RuntimeContext, params InitParams) {}

func (d *drumBehavior) ProcessEvent(ctx *RuntimeContext, track int, ev EventView) {
	if track == 0 && ev.Switch {
		ctx.Note(d.pitch, ev.Pots[1], 0)
	}
}

func (d *drumBehavior) ModeName() string {
	return "Drums"
}

func (d *drumBehavior) SliderLabels() [4]string {
	return [4]string{"", "Velocity", "", ""}
}

func init() {
	RegisterBehavior("basic", newBasicNoteBehavior)
	RegisterBehavior("drums", newDrumBehavior)
}
