package services

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/desertthunder/lfx/internal/shared"
	tu "github.com/desertthunder/lfx/internal/testing"
)

const testBaseURL = "https://lastfm.test/2.0/"

const topArtistsJSON = `{
	"topartists": {
		"artist": [
			{"name": "Boards of Canada", "mbid": "", "url": "https://www.last.fm/music/Boards+of+Canada"},
			{"name": "Aphex Twin", "mbid": "abc", "url": "https://www.last.fm/music/Aphex+Twin"}
		],
		"@attr": {"tag": "idm", "page": "1", "perPage": "50", "totalPages": "1", "total": "2"}
	}
}`

const topAlbumsJSON = `{
	"topalbums": {
		"album": [
			{
				"name": "Music Has the Right to Children",
				"mbid": "mhtrtc",
				"url": "https://www.last.fm/music/Boards+of+Canada/Music+Has+the+Right+to+Children",
				"image": [
					{"#text": "https://img/34.png", "size": "small"},
					{"#text": "https://img/64.png", "size": "medium"},
					{"#text": "https://img/300.png", "size": "extralarge"},
					{"#text": "", "size": "mega"}
				]
			},
			{"name": "Geogaddi", "url": "https://www.last.fm/music/Boards+of+Canada/Geogaddi"}
		]
	}
}`

func newTestService(t *testing.T) (*LastFMService, *httpmock.MockTransport) {
	t.Helper()

	transport := httpmock.NewMockTransport()
	srv, err := NewLastFMService(LastFMOpts{
		APIKey:  "test-key",
		BaseURL: testBaseURL,
		Client:  &http.Client{Transport: transport},
		Logger:  shared.NewLogger(&bytes.Buffer{}),
	})
	require.NoError(t, err)
	return srv, transport
}

// capture responds with body and records the query of each request.
func capture(status int, body string, queries *[]url.Values) httpmock.Responder {
	return func(req *http.Request) (*http.Response, error) {
		*queries = append(*queries, req.URL.Query())
		return httpmock.NewStringResponse(status, body), nil
	}
}

func TestNewLastFMService(t *testing.T) {
	t.Run("MissingAPIKey", func(t *testing.T) {
		_, err := NewLastFMService(LastFMOpts{APIKey: "  "})
		assert.ErrorIs(t, err, shared.ErrMissingAPIKey)
	})

	t.Run("Defaults", func(t *testing.T) {
		srv, err := NewLastFMService(LastFMOpts{APIKey: "key"})
		require.NoError(t, err)
		assert.Equal(t, lastFMBaseURL, srv.baseURL)
		assert.NotNil(t, srv.httpClient)
		assert.Nil(t, srv.limiter)
		assert.Equal(t, "Last.fm", srv.Name())
	})

	t.Run("RateLimited", func(t *testing.T) {
		srv, err := NewLastFMService(LastFMOpts{APIKey: "key", RequestsPerSecond: 5})
		require.NoError(t, err)
		assert.NotNil(t, srv.limiter)
	})
}

func TestTopArtistsForTag(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		srv, transport := newTestService(t)
		var queries []url.Values
		transport.RegisterResponder(http.MethodGet, "=~^https://lastfm\\.test/2\\.0/", capture(200, topArtistsJSON, &queries))

		artists, err := srv.TopArtistsForTag(ctx, "idm", 50)
		require.NoError(t, err)
		require.Len(t, artists, 2)
		assert.Equal(t, Artist{Name: "Boards of Canada", URL: "https://www.last.fm/music/Boards+of+Canada"}, artists[0])
		assert.Equal(t, "abc", artists[1].MBID)

		require.Len(t, queries, 1)
		q := queries[0]
		assert.Equal(t, "tag.gettopartists", q.Get("method"))
		assert.Equal(t, "idm", q.Get("tag"))
		assert.Equal(t, "test-key", q.Get("api_key"))
		assert.Equal(t, "json", q.Get("format"))
		assert.Equal(t, "50", q.Get("limit"))
	})

	t.Run("EscapesParameters", func(t *testing.T) {
		srv, transport := newTestService(t)
		var raw string
		transport.RegisterResponder(http.MethodGet, "=~^https://lastfm\\.test/2\\.0/",
			func(req *http.Request) (*http.Response, error) {
				raw = req.URL.RawQuery
				return httpmock.NewStringResponse(200, `{"topartists":{"artist":[]}}`), nil
			})

		_, err := srv.TopArtistsForTag(ctx, "drum & bass", 10)
		require.NoError(t, err)
		assert.Contains(t, raw, "tag=drum+%26+bass")
		assert.NotContains(t, raw, "& bass")
	})

	t.Run("SingleObjectInsteadOfArray", func(t *testing.T) {
		srv, transport := newTestService(t)
		transport.RegisterResponder(http.MethodGet, "=~^https://lastfm\\.test/2\\.0/",
			httpmock.NewStringResponder(200, `{"topartists":{"artist":{"name":"Autechre"}}}`))

		artists, err := srv.TopArtistsForTag(ctx, "idm", 1)
		require.NoError(t, err)
		require.Len(t, artists, 1)
		assert.Equal(t, "Autechre", artists[0].Name)
	})

	t.Run("MissingTopLevelKey", func(t *testing.T) {
		srv, transport := newTestService(t)
		transport.RegisterResponder(http.MethodGet, "=~^https://lastfm\\.test/2\\.0/",
			httpmock.NewStringResponder(200, `{"unexpected": true}`))

		artists, err := srv.TopArtistsForTag(ctx, "idm", 50)
		assert.NoError(t, err)
		assert.Empty(t, artists)
	})

	t.Run("BlankNamesAreReturned", func(t *testing.T) {
		srv, transport := newTestService(t)
		transport.RegisterResponder(http.MethodGet, "=~^https://lastfm\\.test/2\\.0/",
			httpmock.NewStringResponder(200, `{"topartists":{"artist":[{"name":""},{"name":"Autechre"}]}}`))

		artists, err := srv.TopArtistsForTag(ctx, "idm", 50)
		require.NoError(t, err)
		assert.Len(t, artists, 2)
	})

	t.Run("UndecodableEntryIsKept", func(t *testing.T) {
		srv, transport := newTestService(t)
		transport.RegisterResponder(http.MethodGet, "=~^https://lastfm\\.test/2\\.0/",
			httpmock.NewStringResponder(200, `{"topartists":{"artist":[
				{"name":"Autechre"},
				{"name":12345},
				{"name":"Aphex Twin"},
				{"name":"Plaid"},
				{"name":"Squarepusher"}
			]}}`))

		artists, err := srv.TopArtistsForTag(ctx, "idm", 5)
		require.NoError(t, err)
		require.Len(t, artists, 5)

		assert.ErrorIs(t, artists[1].Err, shared.ErrMalformedResponse)
		assert.Equal(t, "12345", artists[1].Name)
		for _, i := range []int{0, 2, 3, 4} {
			assert.NoError(t, artists[i].Err)
		}
		assert.Equal(t, "Squarepusher", artists[4].Name)
	})

	t.Run("MalformedBody", func(t *testing.T) {
		srv, transport := newTestService(t)
		transport.RegisterResponder(http.MethodGet, "=~^https://lastfm\\.test/2\\.0/",
			httpmock.NewStringResponder(200, `<html>oops</html>`))

		_, err := srv.TopArtistsForTag(ctx, "idm", 50)
		assert.ErrorIs(t, err, shared.ErrMalformedResponse)
	})

	t.Run("ProviderError", func(t *testing.T) {
		srv, transport := newTestService(t)
		transport.RegisterResponder(http.MethodGet, "=~^https://lastfm\\.test/2\\.0/",
			httpmock.NewStringResponder(403, `{"error": 10, "message": "Invalid API key"}`))

		_, err := srv.TopArtistsForTag(ctx, "idm", 50)
		assert.ErrorIs(t, err, shared.ErrProviderError)
		assert.Contains(t, err.Error(), "Invalid API key")
	})

	t.Run("UnexpectedStatus", func(t *testing.T) {
		srv, transport := newTestService(t)
		transport.RegisterResponder(http.MethodGet, "=~^https://lastfm\\.test/2\\.0/",
			httpmock.NewStringResponder(503, `Service Unavailable`))

		_, err := srv.TopArtistsForTag(ctx, "idm", 50)
		assert.ErrorIs(t, err, shared.ErrAPIRequest)
	})

	t.Run("TransportError", func(t *testing.T) {
		srv, transport := newTestService(t)
		transport.RegisterResponder(http.MethodGet, "=~^https://lastfm\\.test/2\\.0/",
			httpmock.NewErrorResponder(errors.New("connection refused")))

		_, err := srv.TopArtistsForTag(ctx, "idm", 50)
		assert.ErrorIs(t, err, shared.ErrAPIRequest)
	})

	t.Run("BodyReadError", func(t *testing.T) {
		srv, err := NewLastFMService(LastFMOpts{
			APIKey: "test-key",
			Client: &http.Client{Transport: tu.NewMockRoundTripper(&http.Response{StatusCode: 200, Body: &tu.FCloser{}}, nil)},
			Logger: shared.NewLogger(&bytes.Buffer{}),
		})
		require.NoError(t, err)

		_, err = srv.TopArtistsForTag(ctx, "idm", 50)
		assert.ErrorIs(t, err, shared.ErrAPIRequest)
	})

	t.Run("CancelledWhileRateLimited", func(t *testing.T) {
		transport := httpmock.NewMockTransport()
		srv, err := NewLastFMService(LastFMOpts{
			APIKey:            "test-key",
			BaseURL:           testBaseURL,
			Client:            &http.Client{Transport: transport},
			Logger:            shared.NewLogger(&bytes.Buffer{}),
			RequestsPerSecond: 1,
		})
		require.NoError(t, err)

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err = srv.TopArtistsForTag(cancelled, "idm", 50)
		assert.ErrorIs(t, err, shared.ErrAPIRequest)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Zero(t, transport.GetTotalCallCount())
	})
}

func TestTopAlbumsForArtist(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		srv, transport := newTestService(t)
		var queries []url.Values
		transport.RegisterResponder(http.MethodGet, "=~^https://lastfm\\.test/2\\.0/", capture(200, topAlbumsJSON, &queries))

		albums, err := srv.TopAlbumsForArtist(ctx, "Boards of Canada", 10)
		require.NoError(t, err)
		require.Len(t, albums, 2)

		assert.Equal(t, "Music Has the Right to Children", albums[0].Title)
		assert.Equal(t, "mhtrtc", albums[0].MBID)
		assert.Equal(t, "https://img/300.png", albums[0].ImageURL, "largest non-empty image wins")
		assert.Equal(t, "", albums[1].ImageURL)

		require.Len(t, queries, 1)
		assert.Equal(t, "artist.gettopalbums", queries[0].Get("method"))
		assert.Equal(t, "Boards of Canada", queries[0].Get("artist"))
		assert.Equal(t, "10", queries[0].Get("limit"))
	})

	t.Run("UndecodableEntryIsKept", func(t *testing.T) {
		srv, transport := newTestService(t)
		transport.RegisterResponder(http.MethodGet, "=~^https://lastfm\\.test/2\\.0/",
			httpmock.NewStringResponder(200, `{"topalbums":{"album":[
				{"name":"Geogaddi"},
				"Twoism",
				{"name":"Tomorrow's Harvest","image":"none"}
			]}}`))

		albums, err := srv.TopAlbumsForArtist(ctx, "Boards of Canada", 10)
		require.NoError(t, err)
		require.Len(t, albums, 3)

		assert.NoError(t, albums[0].Err)
		assert.ErrorIs(t, albums[1].Err, shared.ErrMalformedResponse)
		assert.Empty(t, albums[1].Title)
		assert.ErrorIs(t, albums[2].Err, shared.ErrMalformedResponse)
		assert.Equal(t, "Tomorrow's Harvest", albums[2].Title)
	})

	t.Run("NoAlbumKey", func(t *testing.T) {
		srv, transport := newTestService(t)
		transport.RegisterResponder(http.MethodGet, "=~^https://lastfm\\.test/2\\.0/",
			httpmock.NewStringResponder(200, `{"topalbums": {"@attr": {"artist": "Nobody"}}}`))

		albums, err := srv.TopAlbumsForArtist(ctx, "Nobody", 10)
		assert.NoError(t, err)
		assert.Empty(t, albums)
	})

	t.Run("ProviderErrorWithOKStatus", func(t *testing.T) {
		srv, transport := newTestService(t)
		transport.RegisterResponder(http.MethodGet, "=~^https://lastfm\\.test/2\\.0/",
			httpmock.NewStringResponder(200, `{"error": 6, "message": "The artist you supplied could not be found"}`))

		_, err := srv.TopAlbumsForArtist(ctx, "Nobody", 10)
		assert.ErrorIs(t, err, shared.ErrProviderError)
	})

	t.Run("OmitsLimitWhenZero", func(t *testing.T) {
		srv, transport := newTestService(t)
		var queries []url.Values
		transport.RegisterResponder(http.MethodGet, "=~^https://lastfm\\.test/2\\.0/", capture(200, `{}`, &queries))

		_, err := srv.TopAlbumsForArtist(ctx, "Autechre", 0)
		require.NoError(t, err)
		require.Len(t, queries, 1)
		assert.False(t, queries[0].Has("limit"))
	})
}

func TestLargestImage(t *testing.T) {
	tests := []struct {
		name   string
		images []lastFMImage
		want   string
	}{
		{name: "None", want: ""},
		{name: "AllBlank", images: []lastFMImage{{Text: ""}, {Text: "  "}}, want: ""},
		{name: "Last", images: []lastFMImage{{Text: "s"}, {Text: "m"}, {Text: "l"}}, want: "l"},
		{name: "SkipsTrailingBlank", images: []lastFMImage{{Text: "s"}, {Text: "l"}, {Text: ""}}, want: "l"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LastFMAlbum{Image: tt.images}.LargestImage())
		})
	}
}

func TestCall(t *testing.T) {
	ctx := context.Background()

	t.Run("JSONResponse", func(t *testing.T) {
		srv, transport := newTestService(t)
		var queries []url.Values
		transport.RegisterResponder(http.MethodGet, "=~^https://lastfm\\.test/2\\.0/",
			capture(200, `{"tag": {"name": "idm", "reach": 1234}}`, &queries))

		resp, err := srv.Call(ctx, "tag.getinfo", map[string]string{"tag": "idm"})
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.True(t, resp.IsJSON)
		assert.IsType(t, map[string]any{}, resp.JSONData)

		require.Len(t, queries, 1)
		assert.Equal(t, "tag.getinfo", queries[0].Get("method"))
		assert.Equal(t, "test-key", queries[0].Get("api_key"))
	})

	t.Run("ErrorStatusIsReturnedRaw", func(t *testing.T) {
		srv, transport := newTestService(t)
		transport.RegisterResponder(http.MethodGet, "=~^https://lastfm\\.test/2\\.0/",
			httpmock.NewStringResponder(400, `plain text`))

		resp, err := srv.Call(ctx, "tag.getinfo", nil)
		require.NoError(t, err)
		assert.Equal(t, 400, resp.StatusCode)
		assert.False(t, resp.IsJSON)
		assert.Equal(t, "plain text", string(resp.Body))
	})

	t.Run("TransportError", func(t *testing.T) {
		srv, transport := newTestService(t)
		transport.RegisterResponder(http.MethodGet, "=~^https://lastfm\\.test/2\\.0/",
			httpmock.NewErrorResponder(errors.New("dial tcp: no such host")))

		_, err := srv.Call(ctx, "tag.getinfo", nil)
		assert.ErrorIs(t, err, shared.ErrAPIRequest)
	})
}
