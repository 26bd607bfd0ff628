// Package repo is the dataset boundary: it loads the raw case and roster
// tables from CSV and writes the result tables back out.
package repo

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/opsinsight/skillmap-engine/internal/models"
	"github.com/opsinsight/skillmap-engine/internal/utils"
)

// Case table column names. The loader resolves columns by header, not by
// position, so extra columns and reordering are harmless.
const (
	colTag           = "tag_name"
	colResponder     = "user_name"
	colOrgType       = "ih_pt"
	colDivision      = "div"
	colArea          = "op_name"
	colResponseTime  = "total_response_time"
	colRallyCount    = "rally_count"
	colUseMacro      = "use_macro"
	colPostTimestamp = "post_timestamp"
	colAsker         = "soudan_user_name"
	colAdviser       = "adviser_user_name"
	colSolveDuration = "solve_duration"
	colOJT           = "has_ojt_tag"
)

var requiredCaseColumns = []string{colTag, colResponder, colOrgType, colResponseTime}

// LoadCases reads the case table from a CSV file.
func LoadCases(path string) ([]models.Case, error) {
	const op = "repo.load_cases"

	f, err := os.Open(path)
	if err != nil {
		return nil, utils.NewAppError(op, fmt.Sprintf("open %s", path), err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, utils.NewAppError(op, "read header", err)
	}
	idx := headerIndex(header)
	for _, col := range requiredCaseColumns {
		if _, ok := idx[col]; !ok {
			return nil, utils.NewAppError(op, fmt.Sprintf("missing required column %q", col), utils.ErrConfiguration)
		}
	}

	var cases []models.Case
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, utils.NewAppError(op, "read record", err)
		}
		cases = append(cases, caseFromRecord(record, idx))
	}
	return cases, nil
}

func caseFromRecord(record []string, idx map[string]int) models.Case {
	field := func(col string) string {
		i, ok := idx[col]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	rally := parseInt(field(colRallyCount))
	if rally <= 0 {
		rally = 1
	}

	return models.Case{
		Tag:           field(colTag),
		Responder:     field(colResponder),
		OrgType:       models.OrgType(strings.ToUpper(field(colOrgType))),
		Division:      field(colDivision),
		Area:          field(colArea),
		ResponseTime:  parseFloat(field(colResponseTime)),
		RallyCount:    rally,
		MacroUsed:     parseBool(field(colUseMacro)),
		PostTimestamp: field(colPostTimestamp),
		Asker:         field(colAsker),
		Adviser:       field(colAdviser),
		SolveDuration: parseFloat(field(colSolveDuration)),
		OJT:           parseBool(field(colOJT)),
	}
}

// Roster table column names.
const (
	colRosterName      = "name"
	colRosterOrgType   = "ih_pt"
	colRosterPrimary   = "primary_team"
	colRosterSecondary = "secondary_teams"
	colRosterRatio     = "work_time_ratio"
)

var requiredRosterColumns = []string{colRosterName, colRosterOrgType, colRosterPrimary}

// LoadRoster reads the roster table from a CSV file. Secondary teams are a
// comma-separated list inside the one field.
func LoadRoster(path string) (models.Roster, error) {
	const op = "repo.load_roster"

	f, err := os.Open(path)
	if err != nil {
		return nil, utils.NewAppError(op, fmt.Sprintf("open %s", path), err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, utils.NewAppError(op, "read header", err)
	}
	idx := headerIndex(header)
	for _, col := range requiredRosterColumns {
		if _, ok := idx[col]; !ok {
			return nil, utils.NewAppError(op, fmt.Sprintf("missing required column %q", col), utils.ErrConfiguration)
		}
	}

	roster := make(models.Roster)
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, utils.NewAppError(op, "read record", err)
		}

		field := func(col string) string {
			i, ok := idx[col]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		name := field(colRosterName)
		if name == "" {
			continue
		}
		roster[name] = models.Responder{
			Name:           name,
			OrgType:        models.OrgType(strings.ToUpper(field(colRosterOrgType))),
			PrimaryTeam:    field(colRosterPrimary),
			SecondaryTeams: splitTeams(field(colRosterSecondary)),
			WorkTimeRatio:  parseFloat(field(colRosterRatio)),
		}
	}
	return roster, nil
}

func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(strings.ToLower(name))] = i
	}
	return idx
}

func splitTeams(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	teams := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			teams = append(teams, t)
		}
	}
	return teams
}

func parseFloat(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func parseInt(s string) int {
	if s == "" {
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return v
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "1", "yes":
		return true
	}
	return false
}
