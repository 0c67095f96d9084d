package state

import (
	"strings"

	cl "photo-albums/pkg/catalog"
)

// Filter narrows a list of images. Zero fields match everything.
type Filter struct {
	// Tag matches images having a tag that contains it.
	Tag string
	// Person matches images whose person contains it.
	Person       string
	FavoriteOnly bool
}

// FilterImages returns the images matching f in their original order.
// Matching is a case-insensitive substring test. images is not modified.
func FilterImages(images []cl.Image, f Filter) []cl.Image {
	tag := strings.ToLower(strings.TrimSpace(f.Tag))
	person := strings.ToLower(strings.TrimSpace(f.Person))

	out := make([]cl.Image, 0, len(images))
	for _, img := range images {
		if f.FavoriteOnly && !img.IsFavorite {
			continue
		}
		if person != "" && !strings.Contains(strings.ToLower(img.Person.String), person) {
			continue
		}
		if tag != "" && !hasTag(img.Tags, tag) {
			continue
		}
		out = append(out, img)
	}
	return out
}

func hasTag(tags []string, sub string) bool {
	for _, t := range tags {
		if strings.Contains(strings.ToLower(t), sub) {
			return true
		}
	}
	return false
}
