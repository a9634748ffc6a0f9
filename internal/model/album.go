// Package model defines the core data types for the album resolver.
// Everything here is a plain value: the resolver builds them fresh for
// every query and hands them back to the caller, nothing is shared.
package model

import (
	"sort"
	"strings"
)

// NoAlbumFound is the display text returned whenever no candidate page
// describes an album (or the encyclopedia could not be reached).
const NoAlbumFound = "No album found."

// Query is the free-text search string typed by the user. It is sent to the
// external APIs verbatim and lower-cased only for comparisons.
type Query string

// Normalized returns the lower-case form used by the ranking signals.
func (q Query) Normalized() string {
	return strings.ToLower(string(q))
}

// Empty reports whether the query has no searchable content.
func (q Query) Empty() bool {
	return strings.TrimSpace(string(q)) == ""
}

// Image is a remote picture reference with its pixel dimensions.
type Image struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// CandidatePage is one encyclopedia search hit before ranking.
// Thumbnail and Original are nil when the page has no image.
type CandidatePage struct {
	Title      string   `json:"title"`
	Extract    string   `json:"extract"`
	Categories []string `json:"categories"`
	Thumbnail  *Image   `json:"thumbnail,omitempty"`
	Original   *Image   `json:"original,omitempty"`
}

// ScoredCandidate is a CandidatePage with its relevance score for one query.
// Signals lists the names of the ranking rules that fired, in table order.
type ScoredCandidate struct {
	Page    CandidatePage `json:"page"`
	Score   int           `json:"score"`
	Signals []string      `json:"signals"`
}

// EnrichmentResult is the optional metadata taken from the music catalog.
// A nil *EnrichmentResult means the catalog contributed nothing.
type EnrichmentResult struct {
	AlbumName    string   `json:"album_name"`
	ArtistNames  []string `json:"artist_names"`
	PreviewImage *Image   `json:"preview_image,omitempty"`
	Popularity   int      `json:"popularity"`
}

// ResultRecord is the display-ready output of one resolve call.
// ImageURL is nil only when no album was found. Thumbnail is a sizing hint
// for the UI and never replaces ImageURL.
type ResultRecord struct {
	Query       string  `json:"query"`
	DisplayText string  `json:"display_text"`
	ImageURL    *string `json:"image_url"`
	Thumbnail   *Image  `json:"thumbnail,omitempty"`
}

// NotFound builds the record shown when no album could be resolved.
func NotFound(q Query) ResultRecord {
	return ResultRecord{
		Query:       string(q),
		DisplayText: NoAlbumFound,
	}
}

// NormalizeCategories lower-cases the tags and drops duplicates and blanks.
// The result is sorted so two pages with the same tags compare equal.
func NormalizeCategories(categories []string) []string {
	seen := make(map[string]struct{}, len(categories))
	out := make([]string, 0, len(categories))
	for _, c := range categories {
		c = strings.ToLower(strings.TrimSpace(c))
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
