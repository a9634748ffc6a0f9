package model

import (
	"reflect"
	"testing"
)

func TestQuery_Normalized(t *testing.T) {
	q := Query("Abbey Road")
	if q.Normalized() != "abbey road" {
		t.Errorf("expected lower-case query, got %q", q.Normalized())
	}
	if string(q) != "Abbey Road" {
		t.Errorf("expected verbatim query to be preserved, got %q", q)
	}
}

func TestQuery_Empty(t *testing.T) {
	tests := map[string]bool{
		"":          true,
		"   ":       true,
		"\t\n":      true,
		"Kid A":     false,
		" Revolver": false,
	}
	for in, want := range tests {
		if got := Query(in).Empty(); got != want {
			t.Errorf("Query(%q).Empty() = %v, want %v", in, got, want)
		}
	}
}

func TestNormalizeCategories(t *testing.T) {
	got := NormalizeCategories([]string{
		"Category:1969_Albums",
		"category:1969_albums",
		"",
		"  ",
		"Category:Albums_by_The_Beatles",
	})
	want := []string{"category:1969_albums", "category:albums_by_the_beatles"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestNotFound(t *testing.T) {
	rec := NotFound("Nothing")
	if rec.DisplayText != NoAlbumFound {
		t.Errorf("expected %q, got %q", NoAlbumFound, rec.DisplayText)
	}
	if rec.ImageURL != nil {
		t.Errorf("expected nil image, got %q", *rec.ImageURL)
	}
	if rec.Query != "Nothing" {
		t.Errorf("expected query to be echoed, got %q", rec.Query)
	}
}
