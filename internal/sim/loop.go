package sim

import (
	"sync"
	"time"

	"snake-arena/server/logging"
)

const DefaultTickRate = 30

// LoopConfig tunes the fixed-timestep runner.
type LoopConfig struct {
	TickRate int
}

func (c LoopConfig) normalized() LoopConfig {
	if c.TickRate <= 0 {
		c.TickRate = DefaultTickRate
	}
	return c
}

// Budget is the wall-clock time one step may take before the next is due.
func (c LoopConfig) Budget() time.Duration {
	return time.Second / time.Duration(c.normalized().TickRate)
}

// TickContext describes the step being executed.
type TickContext struct {
	Tick uint64
	Now  time.Time
}

// LoopStepResult reports how long a step took relative to its budget.
type LoopStepResult struct {
	Tick     uint64
	Now      time.Time
	Duration time.Duration
	Budget   time.Duration
	Overrun  bool
}

// Stepper executes one simulation step.
type Stepper interface {
	Step(ctx TickContext)
}

// StepperFunc adapts a function into a Stepper.
type StepperFunc func(ctx TickContext)

func (f StepperFunc) Step(ctx TickContext) {
	if f == nil {
		return
	}
	f(ctx)
}

// LoopHooks observe the loop without participating in the step.
type LoopHooks struct {
	AfterStep func(LoopStepResult)
}

// Loop fires the stepper at a fixed cadence. Steps never overlap: a step that
// runs long delays the next firing instead of running concurrently with it.
type Loop struct {
	stepper Stepper
	config  LoopConfig
	hooks   LoopHooks
	clock   logging.Clock

	mu   sync.Mutex
	tick uint64
}

// NewLoop wraps stepper in a fixed-rate runner. A nil clock uses wall time.
func NewLoop(stepper Stepper, cfg LoopConfig, clock logging.Clock, hooks LoopHooks) *Loop {
	if stepper == nil {
		return nil
	}
	if clock == nil {
		clock = logging.SystemClock{}
	}
	return &Loop{
		stepper: stepper,
		config:  cfg.normalized(),
		hooks:   hooks,
		clock:   clock,
	}
}

// Advance executes a single step immediately.
func (l *Loop) Advance() LoopStepResult {
	if l == nil {
		return LoopStepResult{}
	}
	l.mu.Lock()
	l.tick++
	now := l.clock.Now()
	ctx := TickContext{Tick: l.tick, Now: now}
	l.stepper.Step(ctx)
	budget := l.config.Budget()
	duration := l.clock.Now().Sub(now)
	l.mu.Unlock()

	result := LoopStepResult{
		Tick:     ctx.Tick,
		Now:      now,
		Duration: duration,
		Budget:   budget,
		Overrun:  duration > budget,
	}
	if l.hooks.AfterStep != nil {
		l.hooks.AfterStep(result)
	}
	return result
}

// Run drives the fixed-timestep loop until the stop channel closes.
func (l *Loop) Run(stop <-chan struct{}) {
	if l == nil {
		return
	}
	ticker := time.NewTicker(l.config.Budget())
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			l.Advance()
		}
	}
}
