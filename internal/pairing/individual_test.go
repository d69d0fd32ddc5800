package pairing

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// newIndividualContext builds a context with the given roster sizes; team ids
// start at 1 and person ids are teamID*10+index.
func newIndividualContext(rosterSizes ...int) Context {
	ctx := Context{
		TeamNames:        make(map[uint]string),
		SubmissionOfTeam: make(map[uint]uint),
		MembersOfTeam:    make(map[uint][]Person),
	}
	for i, size := range rosterSizes {
		teamID := uint(i + 1)
		ctx.TeamIDs = append(ctx.TeamIDs, teamID)
		ctx.TeamNames[teamID] = fmt.Sprintf("Team %d", teamID)
		ctx.SubmissionOfTeam[teamID] = uint(100 + i)
		for j := 0; j < size; j++ {
			personID := teamID*10 + uint(j)
			ctx.MembersOfTeam[teamID] = append(ctx.MembersOfTeam[teamID], Person{
				ID:     personID,
				Name:   fmt.Sprintf("Person %d", personID),
				TeamID: teamID,
			})
		}
	}

	return ctx
}

func TestBuildIndividualPlanUnevenTeams(t *testing.T) {
	// One team of three plus three single-person teams, six people total.
	ctx := newIndividualContext(3, 1, 1, 1)
	plan := BuildIndividualPlan(ctx, 3, NewSource("fixed-seed-1"))

	// min(teamCount-1 = 3, min outsideCount = 6-3 = 3)
	require.Equal(t, 3, plan.Applied)
	require.Len(t, plan.Pairs, 18)

	targets := make(map[uint]map[uint]bool)
	ownTeam := make(map[uint]uint)
	for _, team := range ctx.TeamIDs {
		for _, member := range ctx.MembersOfTeam[team] {
			ownTeam[member.ID] = team
		}
	}

	for _, pair := range plan.Pairs {
		require.NotEqual(t, ownTeam[pair.ReviewerID], pair.TargetTeamID,
			"person %d routed to own team", pair.ReviewerID)
		require.Equal(t, ctx.SubmissionOfTeam[pair.TargetTeamID], pair.TargetSubmissionID)

		if targets[pair.ReviewerID] == nil {
			targets[pair.ReviewerID] = make(map[uint]bool)
		}
		require.False(t, targets[pair.ReviewerID][pair.TargetTeamID], "duplicate target for person")
		targets[pair.ReviewerID][pair.TargetTeamID] = true
	}

	for personID := range ownTeam {
		require.Len(t, targets[personID], 3, "person %d must review exactly three teams", personID)
	}
}

func TestBuildIndividualPlanClampsRequest(t *testing.T) {
	ctx := newIndividualContext(1, 1)
	plan := BuildIndividualPlan(ctx, 3, NewSource("clamp"))

	require.Equal(t, 1, plan.Applied)
	hasWarning(t, plan, WarningClampedRequest)
	require.Len(t, plan.Pairs, 2)
}

func TestBuildIndividualPlanSingleTeam(t *testing.T) {
	ctx := newIndividualContext(4)
	plan := BuildIndividualPlan(ctx, 1, NewSource("single"))

	require.Empty(t, plan.Pairs)
	hasWarning(t, plan, WarningTooFewTeams)
}

func TestBuildIndividualPlanNoReviewers(t *testing.T) {
	ctx := newIndividualContext(0, 0)
	plan := BuildIndividualPlan(ctx, 1, NewSource("empty"))

	require.Empty(t, plan.Pairs)
	hasWarning(t, plan, WarningNoReviewers)
}

func TestBuildIndividualPlanAllReviewersInOneTeam(t *testing.T) {
	// Second team submitted but has no roster, so every reviewer's
	// outside-count is zero.
	ctx := newIndividualContext(2, 0)
	plan := BuildIndividualPlan(ctx, 1, NewSource("degenerate"))

	require.Empty(t, plan.Pairs)
	require.Zero(t, plan.Applied)
	hasWarning(t, plan, WarningNoReviewers)
}

func TestBuildIndividualPlanDeterministic(t *testing.T) {
	ctx := newIndividualContext(2, 2, 1, 3)

	first := BuildIndividualPlan(ctx, 2, NewSource("determinism"))
	second := BuildIndividualPlan(ctx, 2, NewSource("determinism"))

	require.Equal(t, first.Pairs, second.Pairs)
	require.Equal(t, first.Applied, second.Applied)
}
