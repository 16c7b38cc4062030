package catapi

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func newTestClient(t *testing.T, base string) *Client {
	t.Helper()
	c, err := NewClient(Options{BaseURL: base, APIKey: "secret", Timeout: 2 * time.Second})
	require.NoError(t, err)
	return c
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 60), G: uint8(y * 80), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, u.String())

	u, err = parseBaseURL("example.com/v1/?x=1#frag")
	require.NoError(t, err)
	assert.Equal(t, "https", u.Scheme)
	assert.Equal(t, "/v1", u.Path)
	assert.Empty(t, u.RawQuery)
	assert.Empty(t, u.Fragment)

	for _, bad := range []string{"ftp://example.com", "http://", "http://exa mple.com"} {
		_, err := parseBaseURL(bad)
		assert.Error(t, err, bad)
	}
}

func TestNewClient_MalformedBaseIsInvalidRequest(t *testing.T) {
	_, err := NewClient(Options{BaseURL: "ftp://example.com"})
	assert.Equal(t, KindInvalidRequest, KindOf(err), "err=%v", err)
}

func TestClient_SearchImagesRoundTrip(t *testing.T) {
	t.Parallel()

	// Arrange
	want := []Image{
		{ID: "abc", URL: "https://cdn.example/abc.jpg", Width: intPtr(640), Height: intPtr(480),
			Breeds: []Breed{{ID: "beng", Name: "Bengal", Temperament: "Alert, Agile", Origin: "United States"}}},
		{ID: "xyz", URL: "https://cdn.example/xyz.png"},
	}

	var gotQuery url.Values
	var gotPath, gotKey, gotAgent, gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		gotKey = r.Header.Get("x-api-key")
		gotAgent = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(want)
	}))
	t.Cleanup(server.Close)
	c := newTestClient(t, server.URL+"/v1")

	// Act
	got, err := c.SearchImages(testContext(t), SearchQuery{Limit: 2, BreedID: "beng", HasBreeds: true, Order: "random"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "/v1/images/search", gotPath)
	assert.Equal(t, "2", gotQuery.Get("limit"))
	assert.Equal(t, "beng", gotQuery.Get("breed_ids"))
	assert.Equal(t, "1", gotQuery.Get("has_breeds"))
	assert.Equal(t, "RANDOM", gotQuery.Get("order"))
	assert.Equal(t, "secret", gotKey)
	assert.Contains(t, gotAgent, "whisker/")
	assert.Equal(t, "application/json", gotAccept)

	require.Len(t, got, 2)
	assert.Equal(t, "abc", got[0].ID)
	assert.Equal(t, want[0].URL, got[0].URL)
	w, h, ok := got[0].Dimensions()
	assert.True(t, ok)
	assert.Equal(t, 640, w)
	assert.Equal(t, 480, h)
	assert.Equal(t, want[0].Breeds[0], got[0].Breeds[0])

	_, _, ok = got[1].Dimensions()
	assert.False(t, ok, "second image should have unknown dimensions")
	assert.Empty(t, got[1].Breeds)
}

func TestClient_SearchImagesRejectsBadLimit(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	t.Cleanup(server.Close)

	c := newTestClient(t, server.URL)
	for _, limit := range []int{0, -1, MaxSearchLimit + 1} {
		_, err := c.SearchImages(testContext(t), SearchQuery{Limit: limit})
		assert.Equal(t, KindInvalidRequest, KindOf(err), "limit %d", limit)
	}
	assert.Zero(t, calls.Load())
}

func TestDo_EmptyParameterIsInvalidRequest(t *testing.T) {
	c := newTestClient(t, "http://127.0.0.1:1")
	_, err := Do(testContext(t), c, Query[[]Image]{
		Path:   "/images/search",
		Params: url.Values{"breed_ids": {""}},
	})
	assert.Equal(t, KindInvalidRequest, KindOf(err), "err=%v", err)
}

func TestDo_StatusOutside2xxIsHTTPStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	c := newTestClient(t, server.URL)
	_, err := c.Breeds(testContext(t))

	assert.Equal(t, KindHTTPStatus, KindOf(err), "err=%v", err)
	assert.Equal(t, http.StatusInternalServerError, StatusOf(err))
	assert.Equal(t, "HTTP 500 Internal Server Error", Message(err))
}

func TestDo_MalformedJSONIsDecodeFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id": "abc", "url": `))
	}))
	t.Cleanup(server.Close)

	c := newTestClient(t, server.URL)
	_, err := c.SearchImages(testContext(t), SearchQuery{Limit: 1})
	assert.Equal(t, KindDecode, KindOf(err), "err=%v", err)
}

func TestDo_MissingRequiredFieldIsDecodeFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id": "abc"}]`))
	}))
	t.Cleanup(server.Close)

	c := newTestClient(t, server.URL)
	_, err := c.SearchImages(testContext(t), SearchQuery{Limit: 1})
	assert.Equal(t, KindDecode, KindOf(err), "err=%v", err)
}

func TestDo_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := server.URL
	server.Close()

	c := newTestClient(t, base)
	_, err := c.Breeds(testContext(t))

	assert.Equal(t, KindTransport, KindOf(err), "err=%v", err)
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Error(t, apiErr.Err, "transport error should wrap the cause")
}

func TestDo_CancelledContextIsTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	t.Cleanup(server.Close)

	c := newTestClient(t, server.URL)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Breeds(ctx)

	assert.Equal(t, KindTransport, KindOf(err), "err=%v", err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFetchPicture_DecodesImage(t *testing.T) {
	t.Parallel()

	// Arrange
	body := pngBytes(t)
	var gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(body)
	}))
	t.Cleanup(server.Close)
	c := newTestClient(t, "https://api.example.test/v1")

	// Act
	pic, err := c.FetchPicture(testContext(t), server.URL+"/cat.png")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "png", pic.Format)
	assert.Equal(t, len(body), pic.Bytes)
	w, h := pic.Bounds()
	assert.Equal(t, 4, w)
	assert.Equal(t, 3, h)
	assert.Empty(t, gotKey, "api key must not reach the image host")
}

func TestFetchPicture_Failures(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/empty.jpg":
		case "/garbage.jpg":
			_, _ = w.Write([]byte("definitely not an image"))
		case "/huge.png":
			_, _ = w.Write(bytes.Repeat([]byte{0x89}, 2048))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(Options{BaseURL: server.URL, MaxPictureBytes: 1024})
	require.NoError(t, err)

	cases := []struct {
		name string
		url  string
		want Kind
	}{
		{"empty body", server.URL + "/empty.jpg", KindNoData},
		{"undecodable", server.URL + "/garbage.jpg", KindDecode},
		{"oversize", server.URL + "/huge.png", KindDecode},
		{"missing", server.URL + "/missing.jpg", KindHTTPStatus},
		{"relative url", "/cat.jpg", KindInvalidRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := c.FetchPicture(testContext(t), tc.url)
			assert.Equal(t, tc.want, KindOf(err), "err=%v", err)
		})
	}
}
