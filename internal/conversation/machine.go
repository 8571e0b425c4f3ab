package conversation

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/yanmxa/wtf/internal/command"
	"github.com/yanmxa/wtf/internal/log"
	"github.com/yanmxa/wtf/internal/permission"
)

// ErrTerminated is returned when a turn exceeds its transition bound.
var ErrTerminated = errors.New("conversation exceeded its transition bound")

// Driver performs the effects of a turn.
type Driver interface {
	// Query asks the model and returns its answer.
	Query(ctx context.Context, c *Context) (string, error)
	// Decide resolves the permission for one command.
	Decide(ctx context.Context, cmd command.Command) permission.Decision
	// Execute runs an approved command.
	Execute(ctx context.Context, cmd command.Command) (output string, exitCode int)
	// Show presents EffExtract, EffRecordDisposition, EffRespond and
	// EffReportError to the user.
	Show(c *Context, eff Effect)
}

// Machine runs one turn.
type Machine struct {
	State  State
	Ctx    *Context
	Driver Driver

	// Extract defaults to command.Extract.
	Extract func(text string) []command.Command

	steps int
}

// New creates a machine in the Initializing state.
func New(c *Context, d Driver) *Machine {
	return &Machine{State: Initializing, Ctx: c, Driver: d, Extract: command.Extract}
}

// Steps returns the number of transitions taken so far.
func (m *Machine) Steps() int { return m.steps }

// bound is 2 transitions per command plus 4 per model answer, and one
// more for the Error to Complete step.
func (m *Machine) bound() int {
	return 2*len(m.Ctx.Commands) + 4*(m.Ctx.Iteration+1) + 1
}

// Run drives the turn to Complete and returns the turn-level error, if
// any. Command-level refusals are not errors.
func (m *Machine) Run(ctx context.Context) error {
	var ev Event = EvNext{}
	terminated := false
	for m.State != Complete {
		switch {
		case m.State == Error:
		case !terminated && m.steps >= m.bound():
			// fail through Error so pending commands are still settled
			terminated = true
			ev = EvFailed{Err: fmt.Errorf("%w after %d steps in state %s", ErrTerminated, m.steps, m.State)}
		case ctx.Err() != nil:
			ev = EvFailed{Err: ctx.Err()}
		}

		prev := m.State
		next, effects := Transition(m.State, m.Ctx, ev)
		m.steps++
		m.State = next
		log.Logger().Debug("conversation transition",
			zap.Stringer("from", prev),
			zap.Stringer("to", next),
			zap.Int("index", m.Ctx.Index),
			zap.Int("iteration", m.Ctx.Iteration))

		ev = EvNext{}
		for _, eff := range effects {
			if out := m.perform(ctx, eff); out != nil {
				ev = out
			}
		}
	}
	return m.Ctx.Err
}

func (m *Machine) perform(ctx context.Context, eff Effect) Event {
	c := m.Ctx
	switch e := eff.(type) {
	case EffQuery:
		text, err := m.Driver.Query(ctx, c)
		if err != nil {
			log.LogError("model call", err)
			return EvFailed{Err: err}
		}
		return EvResponse{Text: text}

	case EffExtract:
		extract := m.Extract
		if extract == nil {
			extract = command.Extract
		}
		c.AddCommands(extract(c.Response))
		m.Driver.Show(c, eff)

	case EffDecide:
		d := m.Driver.Decide(ctx, c.Commands[e.Index])
		disp := Declined
		if d.Verdict == permission.Deny {
			disp = Denied
		}
		return EvDecision{Approved: d.Approved, Disposition: disp}

	case EffExecute:
		out, code := m.Driver.Execute(ctx, c.Commands[e.Index])
		return EvExecuted{Output: out, ExitCode: code}

	default:
		m.Driver.Show(c, eff)
	}
	return nil
}
