package catapi

import (
	"image"
	"strings"
)

// Image mirrors one record returned by /images/search.
type Image struct {
	ID     string  `json:"id"`
	URL    string  `json:"url"`
	Width  *int    `json:"width,omitempty"`
	Height *int    `json:"height,omitempty"`
	Breeds []Breed `json:"breeds,omitempty"`
}

// Breed mirrors the breed metadata attached to images and returned by /breeds.
type Breed struct {
	ID           string `json:"id,omitempty"`
	Name         string `json:"name,omitempty"`
	Temperament  string `json:"temperament,omitempty"`
	Origin       string `json:"origin,omitempty"`
	Description  string `json:"description,omitempty"`
	LifeSpan     string `json:"life_span,omitempty"`
	WikipediaURL string `json:"wikipedia_url,omitempty"`
}

// Dimensions returns the advertised width and height, and whether both are known.
func (i Image) Dimensions() (int, int, bool) {
	if i.Width == nil || i.Height == nil {
		return 0, 0, false
	}
	return *i.Width, *i.Height, true
}

// PrimaryBreed returns the first breed attached to the image, if any.
func (i Image) PrimaryBreed() (Breed, bool) {
	if len(i.Breeds) == 0 {
		return Breed{}, false
	}
	return i.Breeds[0], true
}

// Title builds a display title for the image.
func (i Image) Title() string {
	if b, ok := i.PrimaryBreed(); ok && strings.TrimSpace(b.Name) != "" {
		return strings.TrimSpace(b.Name)
	}
	return "Unknown breed"
}

// Traits splits the comma separated temperament into trimmed entries.
func (b Breed) Traits() []string {
	if strings.TrimSpace(b.Temperament) == "" {
		return nil
	}
	parts := strings.Split(b.Temperament, ",")
	traits := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			traits = append(traits, t)
		}
	}
	return traits
}

// Picture is a fetched and decoded image body.
type Picture struct {
	URL    string
	Format string // jpeg, png or gif
	Bytes  int    // encoded size, used to weigh cache entries
	Image  image.Image
}

// Bounds returns the decoded pixel dimensions.
func (p Picture) Bounds() (int, int) {
	if p.Image == nil {
		return 0, 0
	}
	r := p.Image.Bounds()
	return r.Dx(), r.Dy()
}

// SearchQuery configures /images/search requests.
type SearchQuery struct {
	Limit     int
	BreedID   string
	HasBreeds bool
	Order     string // RANDOM, ASC or DESC; empty leaves the server default
}
