package match

import (
	"time"

	"github.com/okian/matchday/internal/domain/model"
	"github.com/okian/matchday/internal/domain/narrative"
	"github.com/okian/matchday/internal/domain/positioning"
	"github.com/okian/matchday/internal/domain/types"
)

// Field is the positional side of a match: the ball and both line-ups.
// It is a value; Step and React return a new Field.
type Field struct {
	Seq   uint64
	Ball  model.Ball
	Pitch positioning.Pitch
}

// NewField lines both teams up with the home side kicking off.
func NewField(home, away model.Team) Field {
	return Field{
		Ball:  narrative.KickOff(model.SideHome),
		Pitch: positioning.NewPitch(home, away),
	}
}

// React moves the ball for applied changes.
func (f Field) React(changes []Change, r Rand) Field {
	for _, c := range changes {
		f.Ball = narrative.OnEvent(f.Ball, c.Side, c.Event, r)
	}
	return f
}

// Step drifts the ball and moves every player one frame.
func (f Field) Step(r Rand) Field {
	f.Ball = narrative.Drift(f.Ball, r)
	f.Pitch = f.Pitch.Step(f.Ball, r)
	f.Seq++
	return f
}

// Frame returns the presentation view of the field.
func (f Field) Frame() types.Frame {
	return types.Frame{Seq: f.Seq, Ball: f.Ball, Entities: f.Pitch.All()}
}

// StepTimed is Step plus how long it took.
func (f Field) StepTimed(r Rand) (Field, time.Duration) {
	start := time.Now()
	next := f.Step(r)
	return next, time.Since(start)
}
