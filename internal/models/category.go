package models

// ResponderCategory crosses organization type with team membership kind.
// Every responder falls into exactly one category per team.
type ResponderCategory int

const (
	CategoryUnknown ResponderCategory = iota
	InternalPrimary
	InternalSecondary
	ExternalPrimary
	ExternalSecondary
)

var categoryLabels = map[ResponderCategory]string{
	InternalPrimary:   "IH専任",
	InternalSecondary: "IH兼任",
	ExternalPrimary:   "PT専任",
	ExternalSecondary: "PT兼任",
}

func (c ResponderCategory) String() string {
	if s, ok := categoryLabels[c]; ok {
		return s
	}
	return "不明"
}

// AllCategories lists the four concrete categories in report order.
func AllCategories() []ResponderCategory {
	return []ResponderCategory{InternalPrimary, InternalSecondary, ExternalPrimary, ExternalSecondary}
}

// Categorize resolves a responder's category relative to a team. A responder
// whose primary team matches is primary; one who only lists the team as
// secondary is secondary. Responders with no relation to the team, or absent
// from the roster, are CategoryUnknown.
func Categorize(r Responder, team string) ResponderCategory {
	primary := r.PrimaryTeam == team
	secondary := !primary && r.InSecondary(team)
	if !primary && !secondary {
		return CategoryUnknown
	}
	switch r.OrgType {
	case OrgInternal:
		if primary {
			return InternalPrimary
		}
		return InternalSecondary
	case OrgExternal:
		if primary {
			return ExternalPrimary
		}
		return ExternalSecondary
	}
	return CategoryUnknown
}
