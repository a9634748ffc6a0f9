package ranking

import "strings"

// candidate is the normalized view of a page the signals are evaluated
// against. Everything is lower-cased once up front.
type candidate struct {
	query        string
	title        string
	extract      string
	categories   []string
	hasThumbnail bool
}

// Signal is one row of the scoring table: if Match reports true for a
// candidate, Weight is added to its score.
type Signal struct {
	Name   string
	Weight int
	Match  func(c *candidate) bool
}

// DefaultSignals is the album heuristic. Weights are summed per candidate;
// each signal fires at most once.
//
// The title prefix and exact-match bonuses both fire when the title equals
// the query, so an exact title is worth 5000.
var DefaultSignals = []Signal{
	// Categories carry the strongest evidence.
	categorySignal("category_albums_by", "albums_by", 4000),
	categorySignal("category_albums", "_albums", 3000),
	categorySignal("category_album_stubs", "_album_stubs", 2000),
	categorySignal("category_debut_albums", "debut_albums", 2000),
	categorySignal("category_eps", "_eps", 1500),
	categorySignal("category_disambiguation", "disambiguation_pages", -5000),
	categorySignal("category_musical_groups", "musical_groups", -3000),
	categorySignal("category_musicians", "musicians", -3000),

	{Name: "title_prefix", Weight: 2000, Match: func(c *candidate) bool {
		return strings.HasPrefix(c.title, c.query)
	}},
	{Name: "title_exact", Weight: 3000, Match: func(c *candidate) bool {
		return c.title == c.query
	}},

	extractSignal("extract_studio_album", "studio album", 1000),
	extractSignal("extract_released", "released", 800),
	extractSignal("extract_recorded", "recorded", 600),
	extractSignal("extract_produced_by", "produced by", 500),
	extractSignal("extract_track", "track", 400),
	extractSignal("extract_songs", "songs", 400),
	extractSignal("extract_singles", "singles", 300),
	extractSignal("extract_charts", "charts", 200),
	extractSignal("extract_label", "label:", 200),

	// Lead sentences that introduce a person or a group, not a record.
	extractPrefixSignal("extract_is_band", " is a band", -3000),
	extractPrefixSignal("extract_is_artist", " is an artist", -3000),
	extractPrefixSignal("extract_is_singer", " is a singer", -3000),

	titleSignal("title_discography", "discography", -2000),
	titleSignal("title_song", "song)", -1000),
	titleSignal("title_tour", "tour)", -1000),

	{Name: "has_thumbnail", Weight: 500, Match: func(c *candidate) bool {
		return c.hasThumbnail
	}},
}

func categorySignal(name, fragment string, weight int) Signal {
	return Signal{Name: name, Weight: weight, Match: func(c *candidate) bool {
		for _, cat := range c.categories {
			if strings.Contains(cat, fragment) {
				return true
			}
		}
		return false
	}}
}

func extractSignal(name, fragment string, weight int) Signal {
	return Signal{Name: name, Weight: weight, Match: func(c *candidate) bool {
		return strings.Contains(c.extract, fragment)
	}}
}

// extractPrefixSignal matches extracts that open with "{query}{phrase}".
// The phrase is literal: "X is a British rock band" does not match " is a band".
func extractPrefixSignal(name, phrase string, weight int) Signal {
	return Signal{Name: name, Weight: weight, Match: func(c *candidate) bool {
		return strings.HasPrefix(c.extract, c.query+phrase)
	}}
}

func titleSignal(name, fragment string, weight int) Signal {
	return Signal{Name: name, Weight: weight, Match: func(c *candidate) bool {
		return strings.Contains(c.title, fragment)
	}}
}
