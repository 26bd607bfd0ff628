package models

// Responder is one row of the roster table. It binds a person to their
// organization type, primary team, and any secondary teams they also cover.
type Responder struct {
	Name           string
	OrgType        OrgType
	PrimaryTeam    string
	SecondaryTeams []string
	WorkTimeRatio  float64 // fraction of full time spent on support work
}

// InSecondary reports whether team is one of the responder's secondary teams.
func (r Responder) InSecondary(team string) bool {
	for _, t := range r.SecondaryTeams {
		if t == team {
			return true
		}
	}
	return false
}

// Roster indexes responders by name.
type Roster map[string]Responder

// Teams returns the distinct primary team names present in the roster.
func (r Roster) Teams() []string {
	seen := make(map[string]bool)
	var teams []string
	for _, m := range r {
		if m.PrimaryTeam == "" || seen[m.PrimaryTeam] {
			continue
		}
		seen[m.PrimaryTeam] = true
		teams = append(teams, m.PrimaryTeam)
	}
	return teams
}
