package catapi

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageHelpers(t *testing.T) {
	img := Image{ID: "a", URL: "u"}
	assert.Equal(t, "Unknown breed", img.Title())
	_, ok := img.PrimaryBreed()
	assert.False(t, ok)

	img.Breeds = []Breed{{Name: " Siamese "}}
	assert.Equal(t, "Siamese", img.Title())
}

func TestBreedTraits(t *testing.T) {
	b := Breed{Temperament: "Active, Energetic,, Independent "}
	assert.Equal(t, []string{"Active", "Energetic", "Independent"}, b.Traits())
	assert.Nil(t, (Breed{}).Traits())
}

func TestImageOmitsAbsentOptionalFields(t *testing.T) {
	data, err := json.Marshal(Image{ID: "a", URL: "u"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"a","url":"u"}`, string(data))
}

func TestErrorFormatting(t *testing.T) {
	assert.Equal(t, "/v1/breeds: http status 404", httpStatus("/v1/breeds", 404).Error())
	assert.Equal(t, "/v1/breeds: decode failure: unexpected EOF",
		decodeFailure("/v1/breeds", errors.New("unexpected EOF")).Error())

	assert.Equal(t, KindUnknown, KindOf(errors.New("other")))
	assert.Equal(t, "other", Message(errors.New("other")), "falls back to Error()")

	timeout := transportFailure("/v1", errors.New("context deadline exceeded (Client.Timeout exceeded)"))
	assert.Equal(t, "Request timed out", Message(timeout))
}
