package permission

import (
	"context"

	"go.uber.org/zap"

	"github.com/yanmxa/wtf/internal/command"
	"github.com/yanmxa/wtf/internal/config"
	"github.com/yanmxa/wtf/internal/log"
)

// Asker asks the user about a single command.
type Asker interface {
	PromptForPermission(cmd, explanation, pattern string) (Answer, error)
}

// Decision is the resolved outcome for one command.
type Decision struct {
	Verdict  Verdict
	Answer   Answer
	Approved bool
	// Persisted is set when the command's pattern was added to the
	// allowlist after a YesAlways answer.
	Persisted bool
}

// Approver decides whether a command may run. *Gate is the production
// implementation.
type Approver interface {
	Decide(ctx context.Context, cmd command.Command) Decision
}

// Gate combines the stored lists, the behavior settings and an interactive
// asker. It is the one place where a command is approved or refused.
type Gate struct {
	Store    *Store
	Behavior config.Behavior
	// Asker may be nil, in which case commands that need confirmation
	// are declined.
	Asker Asker
}

// NewGate creates a gate.
func NewGate(store *Store, behavior config.Behavior, asker Asker) *Gate {
	return &Gate{Store: store, Behavior: behavior, Asker: asker}
}

// Decide resolves the permission for cmd. Lists are reloaded on every call
// so changes made earlier in the turn are honored.
func (g *Gate) Decide(ctx context.Context, cmd command.Command) Decision {
	var lists Lists
	if g.Store != nil {
		lists = g.Store.Load()
	}

	d := Decision{Verdict: ShouldAutoExecute(cmd.Text, lists, g.Behavior)}
	switch d.Verdict {
	case Deny:
		d.Answer = No
	case Auto:
		d.Answer = Yes
		d.Approved = true
	case Ask:
		d.Answer = g.ask(ctx, cmd)
		d.Approved = d.Answer != No
	}

	if d.Answer == YesAlways && cmd.AllowlistPattern != "" && g.Store != nil {
		added, err := g.Store.AddToAllowlist(cmd.AllowlistPattern)
		if err != nil {
			log.Logger().Warn("failed to persist allowlist pattern",
				zap.String("pattern", cmd.AllowlistPattern), zap.Error(err))
		}
		d.Persisted = added
	}

	log.Logger().Info("permission decided",
		zap.String("command", cmd.Text),
		zap.String("verdict", d.Verdict.String()),
		zap.String("answer", d.Answer.String()),
		zap.Bool("approved", d.Approved))
	return d
}

func (g *Gate) ask(ctx context.Context, cmd command.Command) Answer {
	if g.Asker == nil || g.Behavior.DefaultPermission == "deny" {
		return No
	}
	if ctx.Err() != nil {
		return No
	}
	answer, err := g.Asker.PromptForPermission(cmd.Text, cmd.Explanation, cmd.AllowlistPattern)
	if err != nil {
		log.Logger().Warn("permission prompt failed", zap.Error(err))
		return No
	}
	return answer
}

var _ Approver = (*Gate)(nil)
