package association

import (
	"regexp"
	"strings"
	"unicode"

	"donation-import-backend/internal/models"
)

// RowView is the slice of an import row the resolver looks at. Presence of a
// metadata reference is explicit: an empty-but-present value counts as absent.
type RowView struct {
	RowNumber   int
	Nickname    string
	Description string

	ChildRef      string
	HasChildRef   bool
	ProjectRef    string
	HasProjectRef bool
}

// Result is the three-valued outcome of one extraction strategy.
type Result int

const (
	NotFound Result = iota
	Found
	Ambiguous
)

// Extraction carries whatever a strategy managed to pull out of the label
// text. ChildNames is set by name-pattern strategies, ProjectType by
// keyword strategies.
type Extraction struct {
	Result      Result
	ChildNames  []string
	ProjectType string
}

// Strategy is one named heuristic in the fallback chain. Strategies are pure
// text analysis; they never touch the store.
type Strategy interface {
	Name() string
	Extract(view RowView) Extraction
}

// DefaultStrategies returns the chain in evaluation order. First Found (or
// Ambiguous) wins; the resolver never consults later strategies after that.
func DefaultStrategies() []Strategy {
	return []Strategy{
		childNameStrategy{},
		projectKeywordStrategy{},
	}
}

// childNameStrategy matches labels of the form "... for <Name>[, <Name>]*",
// e.g. "Monthly Sponsorship Donation for Maria" or
// "Gift for Sangwan, Dara and Mai".
type childNameStrategy struct{}

var forNamesPattern = regexp.MustCompile(`(?i)\bfor\s+(.+?)\s*$`)

func (childNameStrategy) Name() string { return "child_name_pattern" }

func (childNameStrategy) Extract(view RowView) Extraction {
	for _, text := range []string{view.Nickname, view.Description} {
		m := forNamesPattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		names := splitNameList(m[1])
		if len(names) == 0 {
			continue
		}
		return Extraction{Result: Found, ChildNames: names}
	}
	return Extraction{Result: NotFound}
}

var nameSeparator = regexp.MustCompile(`(?i)\s*(?:,|\band\b|&)\s*`)

// splitNameList breaks "Sangwan, Dara and Mai" into its parts. Candidates
// that don't look like proper names (no leading capital) are rejected so
// phrases like "for the annual fund" don't turn into child records.
func splitNameList(raw string) []string {
	var names []string
	for _, part := range nameSeparator.Split(raw, -1) {
		name := strings.Trim(part, " .!?\"'")
		if name == "" {
			continue
		}
		runes := []rune(name)
		if !unicode.IsUpper(runes[0]) {
			return nil
		}
		names = append(names, name)
	}
	return names
}

// projectKeywordStrategy infers a project type from wording in the label or
// description. A sponsorship keyword with no extractable child name is
// Ambiguous: we know the intent but not the beneficiary.
type projectKeywordStrategy struct{}

func (projectKeywordStrategy) Name() string { return "project_keyword" }

var projectKeywords = []struct {
	keyword     string
	projectType string
}{
	{"sponsor", models.ProjectTypeSponsorship},
	{"campaign", models.ProjectTypeCampaign},
	{"fundraiser", models.ProjectTypeCampaign},
	{"appeal", models.ProjectTypeCampaign},
	{"general", models.ProjectTypeGeneral},
	{"where needed most", models.ProjectTypeGeneral},
}

func (projectKeywordStrategy) Extract(view RowView) Extraction {
	text := strings.ToLower(view.Nickname + " " + view.Description)
	for _, kw := range projectKeywords {
		if !strings.Contains(text, kw.keyword) {
			continue
		}
		if kw.projectType == models.ProjectTypeSponsorship {
			// Sponsorships are per child; without a name we can't
			// pick or create the right project.
			return Extraction{Result: Ambiguous, ProjectType: kw.projectType}
		}
		return Extraction{Result: Found, ProjectType: kw.projectType}
	}
	return Extraction{Result: NotFound}
}

// ChildKeys returns the normalized child identifiers a row refers to, without
// touching the store. The duplicate pre-pass uses this to group rows by
// (invoice, child) before any row is processed.
func ChildKeys(view RowView) []string {
	if view.HasChildRef {
		return []string{NormalizeName(view.ChildRef)}
	}
	ext := (childNameStrategy{}).Extract(view)
	if ext.Result != Found {
		return nil
	}
	keys := make([]string, 0, len(ext.ChildNames))
	for _, name := range ext.ChildNames {
		keys = append(keys, NormalizeName(name))
	}
	return keys
}

// NormalizeName is the find-or-create matching key: trimmed, lowercased.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
