package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/okian/matchday/internal/domain/match"
	"github.com/okian/matchday/internal/domain/model"
	"github.com/okian/matchday/internal/domain/types"
	"github.com/okian/matchday/pkg/logger"
	"github.com/okian/matchday/pkg/metrics"
	"github.com/okian/matchday/pkg/tracing"
)

type commandName string

const (
	cmdObject       commandName = "object"
	cmdOpenTactics  commandName = "tactics_open"
	cmdCloseTactics commandName = "tactics_close"
	cmdResume       commandName = "second_half"
	cmdFinish       commandName = "finish"
)

type reply struct {
	value any
	err   error
}

type command struct {
	name  commandName
	ctx   context.Context //nolint:containedctx // carried to the owner goroutine
	reply chan reply
}

type runConfig struct {
	minuteInterval time.Duration
	frameInterval  time.Duration
	fieldRand      match.Rand
	handoff        func(context.Context, types.Result) error
	logger         logger.Logger
}

// view is what readers see. It is replaced, never mutated.
type view struct {
	snapshot types.Snapshot
	events   []model.MatchEvent
}

// run is one mounted match. Only loop touches engine and field.
type run struct {
	cfg    runConfig
	engine *match.Engine
	field  match.Field

	commands chan command
	stop     chan struct{}
	done     chan struct{}
	once     sync.Once

	view       atomic.Pointer[view]
	framePtr   atomic.Pointer[types.Frame]
	isFinished atomic.Bool

	minuteTicker  *time.Ticker
	minuteRunning bool
	varTimer      *time.Timer
	varC          <-chan time.Time
}

func newRun(engine *match.Engine, cfg runConfig) *run {
	st := engine.State()
	r := &run{
		cfg:      cfg,
		engine:   engine,
		field:    match.NewField(st.Home, st.Away),
		commands: make(chan command),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	r.publish()
	r.publishFrame()
	return r
}

func (r *run) loop(ctx context.Context) {
	defer close(r.done)

	r.minuteTicker = time.NewTicker(r.cfg.minuteInterval)
	r.minuteRunning = true
	frames := time.NewTicker(r.cfg.frameInterval)
	defer func() {
		r.minuteTicker.Stop()
		frames.Stop()
		if r.varTimer != nil {
			r.varTimer.Stop()
		}
		metrics.RecordMatchReleased()
	}()
	r.schedule()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stop:
			return
		case <-r.minuteTicker.C:
			r.tick(ctx)
		case <-frames.C:
			r.step()
		case <-r.varC:
			r.resolveVAR(ctx)
		case cmd := <-r.commands:
			v, err := r.apply(cmd)
			cmd.reply <- reply{value: v, err: err}
		}
		r.schedule()
	}
}

// schedule pauses the minute ticker while the clock may not advance and
// arms the review timer while a review is open.
func (r *run) schedule() {
	canAdvance := r.engine.CanAdvance()
	switch {
	case canAdvance && !r.minuteRunning:
		r.minuteTicker.Reset(r.cfg.minuteInterval)
		r.minuteRunning = true
	case !canAdvance && r.minuteRunning:
		r.minuteTicker.Stop()
		r.minuteRunning = false
	}

	review := r.engine.State().VAR
	switch {
	case review.Active && r.varTimer == nil:
		r.varTimer = time.NewTimer(max(time.Until(review.Deadline), 0))
		r.varC = r.varTimer.C
	case !review.Active && r.varTimer != nil:
		r.varTimer.Stop()
		r.varTimer, r.varC = nil, nil
	}
}

func (r *run) tick(ctx context.Context) {
	before := r.engine.State().Clock.Phase
	changes, err := r.engine.AdvanceMinute()
	if err != nil {
		// The ticker raced a pause; schedule stops it.
		return
	}
	metrics.RecordMinuteAdvanced()
	st := r.engine.State()
	if st.Clock.Phase != before {
		metrics.RecordPhaseTransition(st.Clock.Phase.String())
		r.cfg.logger.Info(ctx, "phase changed",
			logger.String("phase", st.Clock.Phase.String()),
			logger.Int("minute", st.Clock.Minute),
		)
	}
	if st.VAR.Active {
		r.cfg.logger.Info(ctx, "var review opened",
			logger.String("message", st.VAR.Message),
			logger.Int("minute", st.VAR.TriggerMinute),
		)
	}
	r.changed(changes)
}

func (r *run) step() {
	next, took := r.field.StepTimed(r.cfg.fieldRand)
	r.field = next
	metrics.RecordFrameLatency(float64(took.Microseconds()) / 1000)
	r.publishFrame()
}

func (r *run) resolveVAR(ctx context.Context) {
	_, span := tracing.Start(ctx, "match.var.resolve")
	defer span.End()

	review := r.engine.State().VAR
	before := r.engine.State().Discipline
	changes, err := r.engine.ResolveVAR()
	r.varTimer, r.varC = nil, nil
	if err != nil {
		span.RecordError(err)
		return
	}
	metrics.RecordVARReview(string(review.Pending.Trigger), string(review.Pending.Outcome))
	span.SetAttributes(
		attribute.String("var.trigger", string(review.Pending.Trigger)),
		attribute.String("var.outcome", string(review.Pending.Outcome)),
	)
	r.cfg.logger.Info(ctx, "var review resolved",
		logger.String("trigger", string(review.Pending.Trigger)),
		logger.String("outcome", string(review.Pending.Outcome)),
	)
	r.recordDiscipline(before)
	r.changed(changes)
}

func (r *run) apply(cmd command) (any, error) {
	var (
		value any
		err   error
	)
	switch cmd.name {
	case cmdObject:
		var res match.ObjectionResult
		before := r.engine.State().Discipline
		res, err = r.engine.Object()
		if err == nil {
			metrics.RecordObjection(res.Route)
			r.recordDiscipline(before)
			r.changed(res.Changes)
			value = res
		}
	case cmdOpenTactics:
		err = r.engine.OpenTactics()
	case cmdCloseTactics:
		err = r.engine.CloseTactics()
	case cmdResume:
		var changes []match.Change
		changes, err = r.engine.ResumeSecondHalf()
		if err == nil {
			metrics.RecordPhaseTransition(model.PhaseSecondHalf.String())
			r.changed(changes)
		}
	case cmdFinish:
		value, err = r.finish(cmd.ctx)
	}

	if err != nil {
		if errors.Is(err, match.ErrInvalidTransition) {
			metrics.RecordInvalidCommand(string(cmd.name))
		}
		r.cfg.logger.Debug(cmd.ctx, "command rejected",
			logger.String("command", string(cmd.name)),
			logger.Error(err),
		)
		return nil, err
	}
	r.publish()
	return value, nil
}

func (r *run) finish(ctx context.Context) (types.Result, error) {
	ctx, span := tracing.Start(ctx, "match.finish")
	defer span.End()

	first := !r.engine.State().Finished
	res, err := r.engine.Finish()
	if err != nil {
		return types.Result{}, err
	}
	span.SetAttributes(attribute.String("match.id", res.MatchID))
	if err := r.cfg.handoff(ctx, res); err != nil {
		span.RecordError(err)
		r.cfg.logger.Error(ctx, "handoff failed", logger.Error(err))
		return types.Result{}, err
	}
	if first {
		metrics.RecordMatchFinished()
		r.cfg.logger.Info(ctx, "match finished",
			logger.Int("home", res.Score.Home),
			logger.Int("away", res.Score.Away),
			logger.String("mvp", res.Stats.MVP),
		)
	}
	r.isFinished.Store(true)
	return res, nil
}

func (r *run) recordDiscipline(before model.Discipline) {
	if now := r.engine.State().Discipline; now != before {
		metrics.RecordDisciplineEscalation(now.String())
	}
}

// changed reacts the field to changes and publishes.
func (r *run) changed(changes []match.Change) {
	for _, c := range changes {
		metrics.RecordEventApplied(string(c.Event.Type))
	}
	if len(changes) > 0 {
		r.field = r.field.React(changes, r.cfg.fieldRand)
		r.publishFrame()
	}
	r.publish()
}

func (r *run) publish() {
	st := r.engine.State()
	r.view.Store(&view{snapshot: r.engine.Snapshot(), events: st.Events})
}

func (r *run) publishFrame() {
	f := r.field.Frame()
	r.framePtr.Store(&f)
}

func (r *run) snapshot() types.Snapshot { return r.view.Load().snapshot }

func (r *run) events() []model.MatchEvent { return r.view.Load().events }

func (r *run) frame() types.Frame { return *r.framePtr.Load() }

func (r *run) finished() bool { return r.isFinished.Load() }

// do sends a command to the owner goroutine and waits for its reply.
func (r *run) do(ctx context.Context, name commandName) (any, error) {
	cmd := command{name: name, ctx: ctx, reply: make(chan reply, 1)}
	select {
	case r.commands <- cmd:
	case <-r.done:
		return nil, ErrMatchReleased
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case rep := <-cmd.reply:
		return rep.value, rep.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (r *run) release() {
	r.once.Do(func() { close(r.stop) })
	<-r.done
}
