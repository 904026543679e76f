package bind

import (
	"path/filepath"

	"go.uber.org/zap"

	"github.com/dyluth/behave/internal/badreq"
)

// Source says where a resolved behavior came from.
type Source string

const (
	SourceBind     Source = "bind"
	SourceOverride Source = "override"
)

// OperationRequest is the caller's view of which behavior to act on.
type OperationRequest struct {
	// Branch defaults to the current branch when empty.
	Branch string
	// Behavior is an explicit name fragment overriding the bind.
	Behavior string
	// Force lets Behavior win over a bind to a different directory.
	Force bool
}

// Resolution is the behavior an operation should act on.
type Resolution struct {
	BehaviorDir string
	Branch      string
	Source      Source
	// BoundDir is the branch's bind, if any, even when the override won.
	BoundDir string
}

// ResolveForOperation layers an explicit behavior override on top of the
// branch bind. An override that disagrees with the bind is refused unless
// Force is set.
func (r *Registry) ResolveForOperation(req OperationRequest) (*Resolution, error) {
	q, err := r.Query(req.Branch)
	if err != nil {
		return nil, err
	}
	if len(q.Binds) > 1 {
		return nil, ambiguousBinds(q.Branch, q.Binds)
	}

	res := &Resolution{Branch: q.Branch, BoundDir: q.BehaviorDir}

	if req.Behavior == "" {
		if q.BehaviorDir == "" {
			return nil, badreq.NotFound("no behavior is bound to branch '%s'", q.Branch).
				WithHint("Bind one with 'behave bind set --behavior <name>', or pass --behavior <name>.")
		}
		res.BehaviorDir = q.BehaviorDir
		res.Source = SourceBind
		return res, nil
	}

	overrideDir, err := r.behaviors.Resolve(req.Behavior)
	if err != nil {
		return nil, err
	}

	switch {
	case q.BehaviorDir == "":
		res.BehaviorDir = overrideDir
		res.Source = SourceOverride
	case samePath(q.BehaviorDir, overrideDir):
		res.BehaviorDir = q.BehaviorDir
		res.Source = SourceBind
	case req.Force:
		r.logger.Warn("override wins over bind",
			zap.String("branch", q.Branch),
			zap.String("bound", q.BehaviorDir),
			zap.String("override", overrideDir))
		res.BehaviorDir = overrideDir
		res.Source = SourceOverride
	default:
		return nil, badreq.Conflict("branch '%s' is bound to %s, not %s",
			q.Branch, filepath.Base(q.BehaviorDir), filepath.Base(overrideDir)).
			WithMatches([]string{q.BehaviorDir, overrideDir}).
			WithHint("Pass --force to use %s anyway.", filepath.Base(overrideDir))
	}
	return res, nil
}
