package formatting

import (
	"sort"

	"github.com/vl4dimr/tesis-system-unap/internal/rules"
	"github.com/vl4dimr/tesis-system-unap/internal/types"
)

// Action is the correction of one rule over the elements that failed it.
type Action struct {
	Rule    rules.Rule
	Targets []types.Locus
}

// Propose groups the failing findings of a report into one action per
// auto-correctable rule, ordered by correction phase and then by catalog
// order.
func Propose(report *types.ValidationReport, cat *rules.Catalog) []Action {
	targets := make(map[string][]types.Locus)
	for _, f := range report.Failing() {
		targets[f.RuleID] = append(targets[f.RuleID], f.Locus)
	}

	var actions []Action
	for _, r := range cat.Rules() {
		loci, ok := targets[r.ID]
		if !ok || !cat.AutoCorrects(r) {
			continue
		}
		actions = append(actions, Action{Rule: r, Targets: loci})
	}

	sort.SliceStable(actions, func(i, j int) bool {
		return actions[i].Rule.Property.Phase() < actions[j].Rule.Property.Phase()
	})
	return actions
}
