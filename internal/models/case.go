package models

// Case is one completed support interaction, as imported from the raw data
// table. Records are immutable once loaded; every analysis run consumes a
// full snapshot of them.
type Case struct {
	Tag           string  // tag_name
	Area          string  // op_name (owning functional area / OP team)
	Responder     string  // user_name
	OrgType       OrgType // ih_pt
	Division      string  // div
	ResponseTime  float64 // total_response_time, minutes
	RallyCount    int     // rally_count, defaults to 1 when absent
	MacroUsed     bool    // use_macro
	PostTimestamp string  // post_timestamp (consultation thread opened)
	Asker         string  // soudan_user_name
	Adviser       string  // adviser_user_name
	SolveDuration float64 // solve_duration, minutes
	OJT           bool    // has_ojt_tag
}

// HasConsultation reports whether any consultation marker is present on the
// case (thread timestamp, asker, or adviser).
func (c Case) HasConsultation() bool {
	return c.PostTimestamp != "" || c.Asker != "" || c.Adviser != ""
}

// ValidResponseTime reports whether the response time passes the corrupt-data
// guard: non-positive values and anything at or beyond 24 hours are sentinel
// rows, not real outliers.
func (c Case) ValidResponseTime() bool {
	return c.ResponseTime > 0 && c.ResponseTime < 1440
}

// OrgType distinguishes internal staff (IH) from external/contracted staff (PT).
type OrgType string

const (
	OrgInternal OrgType = "IH"
	OrgExternal OrgType = "PT"
)
