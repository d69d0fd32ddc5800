package pairing

import "fmt"

// BuildTeamPlan assigns every submitting team to review the requested number
// of other teams' submissions. Teams are shuffled once and each team walks
// forward through the shuffled order collecting its next k distinct
// neighbours, so the relation is k-regular in both directions: every team
// reviews exactly k others and is reviewed by exactly k others.
func BuildTeamPlan(ctx Context, requested int, src *Source) Plan {
	plan := Plan{Requested: requested}

	n := ctx.TeamCount()
	if n < 2 {
		plan.warn(WarningTooFewTeams, "need at least two submitting teams to assign reviews")
		return plan
	}

	maxPossible := n - 1
	applied := requested
	if applied > maxPossible {
		applied = maxPossible
		plan.warn(WarningClampedRequest, fmt.Sprintf(
			"requested %d reviews per team but only %d are possible with %d submitting teams",
			requested, maxPossible, n))
	}
	if applied < 1 {
		plan.warn(WarningTooFewTeams, "no reviews can be assigned")
		return plan
	}

	order := append([]uint(nil), ctx.TeamIDs...)
	src.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})

	for i, reviewer := range order {
		chosen := make(map[uint]bool, applied)
		for offset := 1; offset <= n && len(chosen) < applied; offset++ {
			target := order[(i+offset)%n]
			if target == reviewer || chosen[target] {
				continue
			}
			chosen[target] = true

			plan.Pairs = append(plan.Pairs, Pair{
				ReviewerID:         reviewer,
				ReviewerName:       ctx.TeamNames[reviewer],
				ReviewerTeamID:     reviewer,
				TargetTeamID:       target,
				TargetSubmissionID: ctx.SubmissionOfTeam[target],
			})
		}
	}

	plan.Applied = applied

	return plan
}
