package pairing

import "fmt"

// BuildIndividualPlan assigns every person belonging to a submitting team to
// review the requested number of other teams' submissions. The reviewing
// unit (person) is finer-grained than the target unit (team submission), and
// a person must never land on their own team.
//
// The applied count is bounded by min(teamCount-1, min over persons of the
// people outside their own team). That floor is conservative for uneven team
// sizes but guarantees the chosen count is satisfiable for every person at
// once, including members of the largest team.
//
// Persons and teams are shuffled independently from the same source, and
// each person starts their walk at an offset rotated by their own position.
// A single shared shuffle would route teammates to the same handful of
// targets; the rotation spreads them out.
func BuildIndividualPlan(ctx Context, requested int, src *Source) Plan {
	plan := Plan{Requested: requested}

	n := ctx.TeamCount()
	if n < 2 {
		plan.warn(WarningTooFewTeams, "need at least two submitting teams to assign reviews")
		return plan
	}

	persons := ctx.ReviewerPersons()
	if len(persons) == 0 {
		plan.warn(WarningNoReviewers, "no eligible reviewers found in submitting teams")
		return plan
	}

	maxPossible := n - 1
	for _, person := range persons {
		outside := len(persons) - len(ctx.MembersOfTeam[person.TeamID])
		if outside < maxPossible {
			maxPossible = outside
		}
	}

	applied := requested
	if applied > maxPossible {
		applied = maxPossible
		plan.warn(WarningClampedRequest, fmt.Sprintf(
			"requested %d reviews per person but only %d are possible with the current team sizes",
			requested, maxPossible))
	}
	if applied < 1 {
		plan.warn(WarningNoReviewers, "no reviewer can be paired with a team other than their own")
		return plan
	}

	reviewers := append([]Person(nil), persons...)
	src.Shuffle(len(reviewers), func(i, j int) {
		reviewers[i], reviewers[j] = reviewers[j], reviewers[i]
	})

	order := append([]uint(nil), ctx.TeamIDs...)
	src.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})

	position := make(map[uint]int, n)
	for i, teamID := range order {
		position[teamID] = i
	}

	for i, person := range reviewers {
		start := (position[person.TeamID] + 1 + i) % n
		chosen := make(map[uint]bool, applied)
		for step := 0; step < 2*n && len(chosen) < applied; step++ {
			target := order[(start+step)%n]
			if target == person.TeamID || chosen[target] {
				continue
			}
			chosen[target] = true

			plan.Pairs = append(plan.Pairs, Pair{
				ReviewerID:         person.ID,
				ReviewerName:       person.Name,
				ReviewerTeamID:     person.TeamID,
				TargetTeamID:       target,
				TargetSubmissionID: ctx.SubmissionOfTeam[target],
			})
		}
	}

	plan.Applied = applied

	return plan
}
