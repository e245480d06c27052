package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/desertthunder/lfx/internal/shared"
)

const (
	lastFMBaseURL = "https://ws.audioscrobbler.com/2.0/"

	methodTopArtistsForTag   = "tag.gettopartists"
	methodTopAlbumsForArtist = "artist.gettopalbums"
)

// LastFMOpts configures a [LastFMService].
type LastFMOpts struct {
	APIKey            string
	BaseURL           string       // defaults to the public 2.0 endpoint
	Client            *http.Client // defaults to a client with a 15s timeout
	Logger            *log.Logger
	RequestsPerSecond float64 // 0 disables rate limiting
}

// LastFMService implements [Provider] for the Last.fm web API.
type LastFMService struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger
}

// NewLastFMService creates a Last.fm client. A blank API key is a configuration error.
func NewLastFMService(opts LastFMOpts) (*LastFMService, error) {
	if shared.IsBlank(opts.APIKey) {
		return nil, shared.ErrMissingAPIKey
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = lastFMBaseURL
	}

	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}

	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}

	return &LastFMService{
		apiKey:     opts.APIKey,
		baseURL:    baseURL,
		httpClient: client,
		limiter:    limiter,
		logger:     shared.WithLogger(logger, "component", "lastfm"),
	}, nil
}

func (s *LastFMService) Name() string {
	return "Last.fm"
}

// lastFMImage is one size variant of an image; Text holds the URL.
type lastFMImage struct {
	Text string `json:"#text"`
	Size string `json:"size"`
}

// LastFMArtist represents an entry of tag.gettopartists.
type LastFMArtist struct {
	Name string `json:"name"`
	MBID string `json:"mbid"`
	URL  string `json:"url"`
}

// LastFMAlbum represents an entry of artist.gettopalbums.
type LastFMAlbum struct {
	Name  string        `json:"name"`
	MBID  string        `json:"mbid"`
	URL   string        `json:"url"`
	Image []lastFMImage `json:"image"`
}

type topArtistsResponse struct {
	TopArtists *struct {
		Artist oneOrMany[json.RawMessage] `json:"artist"`
	} `json:"topartists"`
}

type topAlbumsResponse struct {
	TopAlbums *struct {
		Album oneOrMany[json.RawMessage] `json:"album"`
	} `json:"topalbums"`
}

// lastFMError is the payload Last.fm sends for failed calls.
type lastFMError struct {
	Code    int    `json:"error"`
	Message string `json:"message"`
}

// oneOrMany decodes either a JSON array or a single object into a slice.
type oneOrMany[T any] []T

func (o *oneOrMany[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*o = nil
		return nil
	}

	if data[0] == '[' {
		var items []T
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*o = items
		return nil
	}

	var item T
	if err := json.Unmarshal(data, &item); err != nil {
		return err
	}
	*o = oneOrMany[T]{item}
	return nil
}

// LargestImage returns the last image with a non-empty URL, or "" when there is none.
func (a LastFMAlbum) LargestImage() string {
	for i := len(a.Image) - 1; i >= 0; i-- {
		if text := strings.TrimSpace(a.Image[i].Text); text != "" {
			return text
		}
	}
	return ""
}

// TopArtistsForTag calls tag.gettopartists.
func (s *LastFMService) TopArtistsForTag(ctx context.Context, tag string, limit int) ([]Artist, error) {
	params := url.Values{}
	params.Set("tag", tag)
	setLimit(params, limit)

	body, err := s.get(ctx, methodTopArtistsForTag, params)
	if err != nil {
		return nil, err
	}

	var resp topArtistsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		err = fmt.Errorf("%w: %s: %v", shared.ErrMalformedResponse, methodTopArtistsForTag, err)
		s.logger.Warn("could not decode top artists", "tag", tag, "err", err)
		return nil, err
	}

	if resp.TopArtists == nil {
		s.logger.Debug("no topartists in response", "tag", tag)
		return nil, nil
	}

	artists := make([]Artist, 0, len(resp.TopArtists.Artist))
	for i, raw := range resp.TopArtists.Artist {
		var a LastFMArtist
		if err := json.Unmarshal(raw, &a); err != nil {
			err = fmt.Errorf("%w: %s entry %d: %v", shared.ErrMalformedResponse, methodTopArtistsForTag, i+1, err)
			s.logger.Warn("could not decode artist entry", "tag", tag, "entry", i+1, "err", err)
			artists = append(artists, Artist{Name: entryName(raw, "name"), Err: err})
			continue
		}
		artists = append(artists, Artist{Name: a.Name, MBID: a.MBID, URL: a.URL})
	}
	return artists, nil
}

// TopAlbumsForArtist calls artist.gettopalbums.
func (s *LastFMService) TopAlbumsForArtist(ctx context.Context, artist string, limit int) ([]Album, error) {
	params := url.Values{}
	params.Set("artist", artist)
	setLimit(params, limit)

	body, err := s.get(ctx, methodTopAlbumsForArtist, params)
	if err != nil {
		return nil, err
	}

	var resp topAlbumsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		err = fmt.Errorf("%w: %s: %v", shared.ErrMalformedResponse, methodTopAlbumsForArtist, err)
		s.logger.Warn("could not decode top albums", "artist", artist, "err", err)
		return nil, err
	}

	if resp.TopAlbums == nil {
		s.logger.Debug("no topalbums in response", "artist", artist)
		return nil, nil
	}

	albums := make([]Album, 0, len(resp.TopAlbums.Album))
	for i, raw := range resp.TopAlbums.Album {
		var a LastFMAlbum
		if err := json.Unmarshal(raw, &a); err != nil {
			err = fmt.Errorf("%w: %s entry %d: %v", shared.ErrMalformedResponse, methodTopAlbumsForArtist, i+1, err)
			s.logger.Warn("could not decode album entry", "artist", artist, "entry", i+1, "err", err)
			albums = append(albums, Album{Title: entryName(raw, "name"), Err: err})
			continue
		}
		albums = append(albums, Album{
			Title:    a.Name,
			MBID:     a.MBID,
			URL:      a.URL,
			ImageURL: a.LargestImage(),
		})
	}
	return albums, nil
}

// entryName recovers the key field of an undecodable entry for reporting, or "" when it has none.
func entryName(raw json.RawMessage, key string) string {
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil || fields[key] == nil {
		return ""
	}
	return fmt.Sprint(fields[key])
}

func setLimit(params url.Values, limit int) {
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
}

// requestURL builds the escaped query for method with the key and JSON format applied.
func (s *LastFMService) requestURL(method string, params url.Values) string {
	query := url.Values{}
	for k, v := range params {
		query[k] = v
	}
	query.Set("method", method)
	query.Set("api_key", s.apiKey)
	query.Set("format", "json")
	return s.baseURL + "?" + query.Encode()
}

// do performs a single GET and returns the status, headers and body.
func (s *LastFMService) do(ctx context.Context, method string, params url.Values) (*http.Response, []byte, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, nil, fmt.Errorf("%w: %s: rate limiter: %w", shared.ErrAPIRequest, method, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.requestURL(method, params), nil)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to create request: %w", shared.ErrAPIRequest, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %w", shared.ErrAPIRequest, method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: failed to read response: %w", shared.ErrAPIRequest, method, err)
	}

	return resp, body, nil
}

// get performs method and returns the body of a successful response.
//
// Every failure is logged at warn level before it is returned.
func (s *LastFMService) get(ctx context.Context, method string, params url.Values) ([]byte, error) {
	resp, body, err := s.do(ctx, method, params)
	if err != nil {
		s.logger.Warn("last.fm request failed", "method", method, "err", err)
		return nil, err
	}

	var apiErr lastFMError
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Code != 0 {
		err := fmt.Errorf("%w: %s: %d %s", shared.ErrProviderError, method, apiErr.Code, apiErr.Message)
		s.logger.Warn("last.fm returned an error", "method", method, "status", resp.StatusCode, "err", err)
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("%w: %s: unexpected status %d", shared.ErrAPIRequest, method, resp.StatusCode)
		s.logger.Warn("last.fm request failed", "method", method, "status", resp.StatusCode, "err", err)
		return nil, err
	}

	return body, nil
}
