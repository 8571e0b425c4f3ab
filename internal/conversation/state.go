// Package conversation sequences a legacy turn: the model answers in
// markdown, commands are pulled out of the answer, each one is approved or
// refused, approved ones run, and their output can be sent back for a
// follow-up answer.
//
// Transition is a pure function over (state, context, event). Machine
// drives it and performs the returned effects through a Driver.
package conversation

import (
	"errors"
	"fmt"

	"github.com/yanmxa/wtf/internal/command"
	"github.com/yanmxa/wtf/internal/system"
)

// State is the phase of a turn.
type State int

const (
	Initializing State = iota
	QueryingAI
	StreamingResponse
	AwaitingPermission
	ExecutingCommand
	Responding
	Complete
	Error
)

var stateNames = [...]string{
	Initializing:       "initializing",
	QueryingAI:         "querying_ai",
	StreamingResponse:  "streaming_response",
	AwaitingPermission: "awaiting_permission",
	ExecutingCommand:   "executing_command",
	Responding:         "responding",
	Complete:           "complete",
	Error:              "error",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Disposition is what happened to one extracted command.
type Disposition int

const (
	Pending Disposition = iota
	Executed
	Denied
	Declined
	Skipped
)

func (d Disposition) String() string {
	switch d {
	case Executed:
		return "executed"
	case Denied:
		return "denied"
	case Declined:
		return "declined"
	case Skipped:
		return "skipped"
	}
	return "pending"
}

// ErrUnexpectedEvent is attached to the context when an event arrives in a
// state that does not accept it.
var ErrUnexpectedEvent = errors.New("unexpected event")

// Context is the mutable state of one turn.
type Context struct {
	Query    string
	Snapshot system.Snapshot

	// Response is the latest model answer.
	Response string
	// Commands accumulates across follow-up answers; Dispositions is
	// parallel to it.
	Commands     []command.Command
	Dispositions []Disposition
	Index        int
	Outputs      []system.CommandOutput

	NeedsRequery  bool
	Iteration     int
	MaxIterations int

	Err error

	// batchStart is len(Outputs) when the current answer arrived.
	batchStart int
}

// NewContext creates the context for query.
func NewContext(query string, snap system.Snapshot, maxIterations int) *Context {
	return &Context{Query: query, Snapshot: snap, MaxIterations: maxIterations}
}

// AddCommands appends a batch of extracted commands.
func (c *Context) AddCommands(cmds []command.Command) {
	c.Commands = append(c.Commands, cmds...)
	for range cmds {
		c.Dispositions = append(c.Dispositions, Pending)
	}
}

// ExitCode is 1 when the turn failed and 0 otherwise.
func (c *Context) ExitCode() int {
	if c.Err != nil {
		return 1
	}
	return 0
}

// CommandTexts returns the executed commands.
func (c *Context) CommandTexts() []string {
	var out []string
	for _, o := range c.Outputs {
		out = append(out, o.Command)
	}
	return out
}

// Event is an input to Transition.
type Event interface{ isEvent() }

// EvNext advances a state that needs no input.
type EvNext struct{}

// EvResponse carries a model answer.
type EvResponse struct{ Text string }

// EvFailed moves any state to Error.
type EvFailed struct{ Err error }

// EvDecision resolves the permission for the current command. When
// Approved is false, Disposition says whether it was Denied or Declined.
type EvDecision struct {
	Approved    bool
	Disposition Disposition
}

// EvExecuted reports the outcome of the current command.
type EvExecuted struct {
	Output   string
	ExitCode int
}

func (EvNext) isEvent()     {}
func (EvResponse) isEvent() {}
func (EvFailed) isEvent()   {}
func (EvDecision) isEvent() {}
func (EvExecuted) isEvent() {}

// Effect is work requested by Transition.
type Effect interface{ isEffect() }

// EffQuery asks the model. Context.Iteration > 0 means a follow-up.
type EffQuery struct{}

// EffExtract pulls commands out of Context.Response.
type EffExtract struct{}

// EffDecide asks for permission to run Commands[Index].
type EffDecide struct{ Index int }

// EffExecute runs Commands[Index].
type EffExecute struct{ Index int }

// EffRespond finishes the turn with Context.Response.
type EffRespond struct{}

// EffReportError shows a turn-level failure.
type EffReportError struct{ Err error }

// EffRecordDisposition announces the final disposition of one command.
type EffRecordDisposition struct {
	Index       int
	Disposition Disposition
}

func (EffQuery) isEffect()             {}
func (EffExtract) isEffect()           {}
func (EffDecide) isEffect()            {}
func (EffExecute) isEffect()           {}
func (EffRespond) isEffect()           {}
func (EffReportError) isEffect()       {}
func (EffRecordDisposition) isEffect() {}

// Transition returns the next state and the effects to perform. It
// mutates c but performs no I/O. Index only moves forward, once per
// command, whether the command ran or not.
func Transition(s State, c *Context, ev Event) (State, []Effect) {
	if f, ok := ev.(EvFailed); ok && s != Complete && s != Error {
		c.Err = f.Err
		return Error, nil
	}

	switch s {
	case Initializing:
		if _, ok := ev.(EvNext); ok {
			return QueryingAI, []Effect{EffQuery{}}
		}

	case QueryingAI:
		if r, ok := ev.(EvResponse); ok {
			c.Response = r.Text
			c.batchStart = len(c.Outputs)
			return StreamingResponse, []Effect{EffExtract{}}
		}

	case StreamingResponse:
		if _, ok := ev.(EvNext); ok {
			return c.nextCommand(nil)
		}

	case AwaitingPermission:
		if d, ok := ev.(EvDecision); ok {
			if d.Approved {
				return ExecutingCommand, []Effect{EffExecute{Index: c.Index}}
			}
			disp := d.Disposition
			if disp != Denied {
				disp = Declined
			}
			return c.nextCommand(c.settle(disp))
		}

	case ExecutingCommand:
		if e, ok := ev.(EvExecuted); ok {
			c.Outputs = append(c.Outputs, system.CommandOutput{
				Command:  c.Commands[c.Index].Text,
				Output:   e.Output,
				ExitCode: e.ExitCode,
			})
			return c.nextCommand(c.settle(Executed))
		}

	case Responding:
		if _, ok := ev.(EvNext); ok {
			if c.NeedsRequery {
				c.NeedsRequery = false
				c.Iteration++
				return QueryingAI, []Effect{EffQuery{}}
			}
			return Complete, []Effect{EffRespond{}}
		}

	case Error:
		if _, ok := ev.(EvNext); ok {
			var effects []Effect
			for i, d := range c.Dispositions {
				if d == Pending {
					c.Dispositions[i] = Skipped
					effects = append(effects, EffRecordDisposition{Index: i, Disposition: Skipped})
				}
			}
			return Complete, append(effects, EffReportError{Err: c.Err})
		}

	case Complete:
		return Complete, nil
	}

	c.Err = fmt.Errorf("%w %T in state %s", ErrUnexpectedEvent, ev, s)
	return Error, nil
}

// settle records d for the current command and advances Index.
func (c *Context) settle(d Disposition) Effect {
	i := c.Index
	c.Dispositions[i] = d
	c.Index++
	return EffRecordDisposition{Index: i, Disposition: d}
}

// nextCommand moves to the next pending command or to Responding. A
// batch in which anything ran asks for a follow-up while the iteration
// budget lasts.
func (c *Context) nextCommand(recorded Effect) (State, []Effect) {
	var effects []Effect
	if recorded != nil {
		effects = append(effects, recorded)
	}
	if c.Index < len(c.Commands) {
		return AwaitingPermission, append(effects, EffDecide{Index: c.Index})
	}
	if len(c.Outputs) > c.batchStart && c.Iteration < c.MaxIterations {
		c.NeedsRequery = true
	}
	return Responding, effects
}
