package models

import "strings"

// Function tags carry one of these prefixes in the raw data. Everything else
// (status tags, routing tags) is ignored by the analyses.
var functionTagPrefixes = []string{"機能_", "koban_"}

// IsFunctionTag reports whether name denotes a functional classification tag.
func IsFunctionTag(name string) bool {
	for _, p := range functionTagPrefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

// TagType classifies a tag by how much of the workload it carries.
type TagType string

const (
	TagCore     TagType = "コアスキル"
	TagStandard TagType = "標準"
	TagRare     TagType = "レアケース"
)
