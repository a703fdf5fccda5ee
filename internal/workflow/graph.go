package workflow

import (
	"context"

	"github.com/ahrav/namesmith/internal/activity"
	"github.com/ahrav/namesmith/internal/domain"
)

// Node is one stage of the graph.
type Node struct {
	Name string
	Run  func(ctx context.Context, s State) (Delta, error)
}

// Graph is a linear sequence of stages with a single forward edge between each.
type Graph struct {
	nodes []Node
}

// AfterStage is called with the merged state after each successful stage.
type AfterStage func(ctx context.Context, stage string, s State)

// NewGraph builds the six-stage generation pipeline over acts.
func NewGraph(acts *activity.Activities) *Graph {
	return &Graph{nodes: []Node{
		{Name: activity.StageGather, Run: gatherNode(acts)},
		{Name: activity.StageGenerate, Run: generateNode(acts)},
		{Name: activity.StageDedupe, Run: dedupeNode(acts)},
		{Name: activity.StageScore, Run: scoreNode(acts)},
		{Name: activity.StageAvailability, Run: availabilityNode(acts)},
		{Name: activity.StagePersist, Run: persistNode(acts)},
	}}
}

// Stages returns the stage names in execution order.
func (g *Graph) Stages() []string {
	out := make([]string, len(g.nodes))
	for i, n := range g.nodes {
		out[i] = n.Name
	}
	return out
}

// Run executes every stage in order. The first stage error stops the run and
// is returned together with the state reached so far.
func (g *Graph) Run(ctx context.Context, initial State, after AfterStage) (State, error) {
	state := initial
	for _, n := range g.nodes {
		if err := ctx.Err(); err != nil {
			return state, activity.Classify(n.Name, err)
		}
		delta, err := n.Run(ctx, state)
		if err != nil {
			return state, activity.Classify(n.Name, err)
		}
		state = state.Merge(delta)
		if after != nil {
			after(ctx, n.Name, state)
		}
	}
	return state, nil
}

func gatherNode(a *activity.Activities) func(context.Context, State) (Delta, error) {
	return func(ctx context.Context, s State) (Delta, error) {
		res, err := a.GatherContext(ctx, s.Inputs)
		if err != nil {
			return Delta{}, err
		}
		return Delta{Trends: res.Trends, Examples: res.Examples}, nil
	}
}

func generateNode(a *activity.Activities) func(context.Context, State) (Delta, error) {
	return func(ctx context.Context, s State) (Delta, error) {
		cands, err := a.Generate(ctx, s.Inputs, s.Trends, s.Examples)
		if err != nil {
			return Delta{}, err
		}
		cands = nonNil(cands)
		return Delta{
			Candidates: cands,
			Progress:   map[string]int{domain.ProgressGenerated: len(cands)},
		}, nil
	}
}

func dedupeNode(a *activity.Activities) func(context.Context, State) (Delta, error) {
	return func(_ context.Context, s State) (Delta, error) {
		filtered := a.DedupeAndFilter(s.Inputs, s.Candidates)
		return Delta{
			Filtered: filtered,
			Progress: map[string]int{domain.ProgressFiltered: len(filtered)},
			Consumed: FieldCandidates,
		}, nil
	}
}

func scoreNode(a *activity.Activities) func(context.Context, State) (Delta, error) {
	return func(ctx context.Context, s State) (Delta, error) {
		scored, err := a.Score(ctx, s.ToScore())
		if err != nil {
			return Delta{}, err
		}
		scored = nonNil(scored)
		return Delta{
			Scored:   scored,
			Progress: map[string]int{domain.ProgressScored: len(scored)},
			Consumed: FieldFiltered,
		}, nil
	}
}

func availabilityNode(a *activity.Activities) func(context.Context, State) (Delta, error) {
	return func(ctx context.Context, s State) (Delta, error) {
		results, err := a.CheckAvailability(ctx, s.ToCheck())
		if err != nil {
			return Delta{}, err
		}
		results = nonNil(results)
		return Delta{
			Availability: results,
			Progress:     map[string]int{domain.ProgressAvailabilityChecked: len(results)},
			Consumed:     FieldCandidates | FieldFiltered,
		}, nil
	}
}

func persistNode(a *activity.Activities) func(context.Context, State) (Delta, error) {
	return func(ctx context.Context, s State) (Delta, error) {
		res, err := a.Persist(ctx, activity.PersistInput{
			Inputs:       s.Inputs,
			Scored:       s.Scored,
			Availability: s.Availability,
		})
		if err != nil {
			return Delta{}, err
		}
		ids := nonNil(res.DomainIDs)
		return Delta{
			PersistedIDs: ids,
			Progress:     map[string]int{domain.ProgressPersisted: len(ids)},
		}, nil
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
