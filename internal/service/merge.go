package service

import (
	"strings"

	"github.com/DoggoSantini/vinyl-service/internal/model"
	"github.com/DoggoSantini/vinyl-service/internal/ranking"
)

// DefaultPlaceholderImageURL is shown when the winning page has no image.
const DefaultPlaceholderImageURL = "https://via.placeholder.com/400x300"

// Merge combines the ranked page and the optional catalog result into the
// record handed to the UI.
//
// The page image is authoritative for ImageURL (original, then thumbnail,
// then the placeholder). The catalog cover only replaces the display
// thumbnail.
func Merge(query model.Query, best *model.ScoredCandidate, enrichment *model.EnrichmentResult, placeholderURL string) model.ResultRecord {
	if best == nil {
		return model.NotFound(query)
	}

	text := ranking.FirstSentence(best.Page.Extract)
	if enrichment != nil && len(enrichment.ArtistNames) > 0 {
		text = "By " + strings.Join(enrichment.ArtistNames, ", ") + ". " + text
	}

	imageURL := placeholderURL
	switch {
	case best.Page.Original != nil:
		imageURL = best.Page.Original.URL
	case best.Page.Thumbnail != nil:
		imageURL = best.Page.Thumbnail.URL
	}

	thumbnail := best.Page.Thumbnail
	if enrichment != nil && enrichment.PreviewImage != nil {
		thumbnail = enrichment.PreviewImage
	}

	return model.ResultRecord{
		Query:       string(query),
		DisplayText: text,
		ImageURL:    &imageURL,
		Thumbnail:   thumbnail,
	}
}
