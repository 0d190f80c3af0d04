package plan

import (
	"log/slog"
	"math/rand/v2"
)

type actionState int

const (
	stateUnscheduled actionState = iota
	stateChained
	stateOrdered
)

// moveGraph is the implicit graph of a batch: an edge leads from an action to
// the action whose source is its destination. With unique sources and
// destinations every action has at most one successor and one predecessor.
type moveGraph struct {
	actions []Action
	next    []int
	hasPrev []bool
	state   map[string]actionState
}

func newMoveGraph(actions []Action) *moveGraph {
	g := &moveGraph{
		actions: actions,
		next:    make([]int, len(actions)),
		hasPrev: make([]bool, len(actions)),
		state:   make(map[string]actionState, len(actions)),
	}

	bySource := make(map[string]int, len(actions))
	for i, a := range actions {
		bySource[a.Source] = i
		g.state[a.Source] = stateUnscheduled
	}

	for i, a := range actions {
		g.next[i] = -1
		if j, ok := bySource[a.Destination]; ok {
			g.next[i] = j
			g.hasPrev[j] = true
		}
	}

	return g
}

// pullChain follows successors from start until the chain ends or returns to
// start, marking every action on the way as chained.
func (g *moveGraph) pullChain(start int) (chain []int, cyclic bool) {
	for i := start; i >= 0; i = g.next[i] {
		if g.state[g.actions[i].Source] != stateUnscheduled {
			return chain, i == start
		}

		g.state[g.actions[i].Source] = stateChained
		chain = append(chain, i)
	}

	return chain, false
}

func (g *moveGraph) markOrdered(chain []int) {
	for _, i := range chain {
		g.state[g.actions[i].Source] = stateOrdered
	}
}

// Scheduler orders a validated batch so that no action overwrites a path
// which another action still has to move away.
type Scheduler struct {
	fsHandler   fsProvider
	randomStart func() uint16
}

// NewScheduler returns a pointer to a new [Scheduler]. Temporary paths for
// cycles are checked against the filesystem of fsHandler.
func NewScheduler(fsHandler fsProvider) *Scheduler {
	return &Scheduler{
		fsHandler: fsHandler,
		randomStart: func() uint16 {
			return uint16(rand.IntN(1 << 16)) //nolint:gosec,mnd
		},
	}
}

// Schedule returns the actions in a safe execution order.
//
// Chains are emitted from their end to their head, so that every destination
// is moved away before something is moved onto it. Chains are taken from
// their heads in input order first, the remaining actions form cycles. A
// cycle parks its last source at a temporary path, moves the rest of the
// cycle along and finally moves the temporary path onto the first source.
//
// The batch must not contain shared sources or destinations, otherwise a
// [*ConflictError] is returned. A [*CycleTemporaryCreationError] is returned
// when no temporary path is free for a cycle.
func (s *Scheduler) Schedule(actions []Action) ([]Action, error) {
	if conflicts := structuralConflicts(actions); len(conflicts) > 0 {
		return nil, &ConflictError{Conflicts: conflicts}
	}

	g := newMoveGraph(actions)
	ordered := make([]Action, 0, len(actions))
	taken := batchPaths(actions)

	for i, a := range actions {
		if g.hasPrev[i] || g.state[a.Source] != stateUnscheduled {
			continue
		}

		chain, _ := g.pullChain(i)
		for k := len(chain) - 1; k >= 0; k-- {
			ordered = append(ordered, actions[chain[k]])
		}
		g.markOrdered(chain)
	}

	for i, a := range actions {
		if g.state[a.Source] != stateUnscheduled {
			continue
		}

		chain, _ := g.pullChain(i)

		if len(chain) == 1 {
			ordered = append(ordered, actions[chain[0]])
			g.markOrdered(chain)

			continue
		}

		cycle, err := s.breakCycle(actions, chain, taken)
		if err != nil {
			return nil, err
		}

		ordered = append(ordered, cycle...)
		g.markOrdered(chain)
	}

	return ordered, nil
}

// breakCycle emits a cycle [a1..ak] as ak', a(k-1)..a1, a0 where ak' parks
// the source of ak at a temporary path and a0 moves it onto the source of a1.
func (s *Scheduler) breakCycle(actions []Action, chain []int, taken map[string]struct{}) ([]Action, error) {
	first := actions[chain[0]]
	last := actions[chain[len(chain)-1]]

	tmp, err := s.allocateTemporary(last.Source, taken)
	if err != nil {
		cycle := make([]Action, 0, len(chain))
		for _, i := range chain {
			cycle = append(cycle, actions[i])
		}

		return nil, &CycleTemporaryCreationError{Cycle: cycle, Base: last.Source, Err: err}
	}
	taken[tmp] = struct{}{}

	slog.Debug("Breaking cycle through temporary path", "cycle", len(chain), "tmp", tmp)

	out := make([]Action, 0, len(chain)+1)
	out = append(out, Action{Source: last.Source, Destination: tmp, Temporary: true})

	for k := len(chain) - 2; k >= 0; k-- {
		out = append(out, actions[chain[k]])
	}

	out = append(out, Action{Source: tmp, Destination: first.Source, Temporary: true})

	return out, nil
}

func batchPaths(actions []Action) map[string]struct{} {
	paths := make(map[string]struct{}, 2*len(actions))
	for _, a := range actions {
		paths[a.Source] = struct{}{}
		paths[a.Destination] = struct{}{}
	}

	return paths
}
