package semantic

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// BooleanLabelPair holds display labels for the two outcomes of a boolean target.
type BooleanLabelPair struct {
	Positive string `json:"positive_label"`
	Negative string `json:"negative_label"`
}

var outcomeWords = [][2]string{
	{"passed", "failed"},
	{"won", "lost"},
	{"accepted", "rejected"},
	{"approved", "denied"},
	{"open", "closed"},
	{"present", "absent"},
	{"valid", "invalid"},
	{"completed", "incomplete"},
}

// opposites maps an outcome word to its negation in both directions.
var opposites = buildOpposites()

func buildOpposites() map[string]string {
	out := make(map[string]string)
	add := func(a, b string) {
		if _, ok := out[a]; !ok {
			out[a] = b
		}
		if _, ok := out[b]; !ok {
			out[b] = a
		}
	}
	for _, pair := range booleanPairs {
		// Single-letter and digit pairs are value codes, not words.
		if len(pair[0]) > 1 && len(pair[1]) > 1 {
			add(pair[0], pair[1])
		}
	}
	for _, pair := range outcomeWords {
		add(pair[0], pair[1])
	}
	return out
}

// BooleanLabels derives human labels for a boolean target column.
// "is_active" gives "Is active" / "Inactive", "churned" gives
// "Churned" / "Not churned".
func BooleanLabels(columnName string) BooleanLabelPair {
	base := humanize(columnName)
	if base == "" {
		return BooleanLabelPair{Positive: "Positive", Negative: "Not positive"}
	}
	positive := upperFirst(base)

	words := strings.Fields(base)
	if negative, ok := opposites[fold(words[len(words)-1])]; ok {
		return BooleanLabelPair{Positive: positive, Negative: upperFirst(negative)}
	}
	return BooleanLabelPair{
		Positive: positive,
		Negative: "Not " + strings.ToLower(positive),
	}
}

func humanize(name string) string {
	replaced := strings.NewReplacer("_", " ", "-", " ").Replace(name)
	return strings.Join(strings.Fields(replaced), " ")
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
