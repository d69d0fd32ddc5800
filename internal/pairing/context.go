package pairing

// Person is a flattened roster entry: one individual together with the team
// they belong to for the task at hand.
type Person struct {
	ID     uint
	Name   string
	TeamID uint
}

// Context is the read-only snapshot both strategies pair against. TeamIDs
// contains only teams that actually submitted, in submission creation order;
// a team without a submission can be neither target nor (in team mode)
// reviewer.
type Context struct {
	TeamIDs          []uint
	TeamNames        map[uint]string
	SubmissionOfTeam map[uint]uint
	MembersOfTeam    map[uint][]Person
}

// TeamCount returns the number of submitting teams.
func (c Context) TeamCount() int {
	return len(c.TeamIDs)
}

// ReviewerPersons flattens the rosters of all submitting teams into a single
// deduplicated list, preserving team order then roster order.
func (c Context) ReviewerPersons() []Person {
	seen := make(map[uint]bool)
	persons := make([]Person, 0)
	for _, teamID := range c.TeamIDs {
		for _, member := range c.MembersOfTeam[teamID] {
			if seen[member.ID] {
				continue
			}
			seen[member.ID] = true
			persons = append(persons, Person{ID: member.ID, Name: member.Name, TeamID: teamID})
		}
	}

	return persons
}
