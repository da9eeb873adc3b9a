package catalog

import "regexp"

// Category classifies a plan document by its filename shape.
type Category string

const (
	CategorySprint  Category = "sprint"
	CategoryDoc     Category = "doc"
	CategoryCode    Category = "code"
	CategoryOpinion Category = "opinion"
	CategoryCore    Category = "core"

	// CategoryAll is a list-filter value only; no file classifies as "all".
	CategoryAll Category = "all"
)

// namingRule ties a filename pattern to the category it denotes.
type namingRule struct {
	pattern  *regexp.Regexp
	category Category
}

// namingRules is evaluated in order, first match wins. Names that match
// nothing fall back to CategoryDoc: loose markdown in the plan directory
// counts as documentation, not an error.
var namingRules = []namingRule{
	{regexp.MustCompile(`^M\d{2}_S\d{2}\..+\.md$`), CategorySprint},
	{regexp.MustCompile(`^DOCREF_\d{3}\..+\.md$`), CategoryDoc},
	{regexp.MustCompile(`^CODEREF_.+\.md$`), CategoryCode},
	{regexp.MustCompile(`^OPINIONS_\d{3}\..+\.md$`), CategoryOpinion},
	{regexp.MustCompile(`^(PLAN|CURRENT)\.md$`), CategoryCore},
}

// Categorize derives the category for a filename.
func Categorize(name string) Category {
	for _, r := range namingRules {
		if r.pattern.MatchString(name) {
			return r.category
		}
	}
	return CategoryDoc
}

// ValidFilter reports whether c can be used to filter a listing.
func ValidFilter(c Category) bool {
	switch c {
	case CategoryAll, CategorySprint, CategoryDoc, CategoryCode, CategoryOpinion:
		return true
	}
	return false
}

// Recordable reports whether c can be produced by a record operation.
// Sprint and core documents are only created through initialization.
func Recordable(c Category) bool {
	switch c {
	case CategoryDoc, CategoryCode, CategoryOpinion:
		return true
	}
	return false
}

// rank orders categories for listing: sprints first, then references,
// then opinions; everything else sorts last.
func rank(c Category) int {
	switch c {
	case CategorySprint:
		return 0
	case CategoryDoc:
		return 1
	case CategoryCode:
		return 2
	case CategoryOpinion:
		return 3
	case CategoryAll:
		return 4
	default:
		return 5
	}
}
