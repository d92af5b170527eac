// Deezer API implementation of [Service]
//
// See https://developers.deezer.com/api
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/setlistx/internal/models"
	"github.com/desertthunder/setlistx/internal/shared"
	"github.com/go-resty/resty/v2"
)

const deezerBaseURL = "https://api.deezer.com"

type deezerError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// auth reports whether Deezer rejected the access token.
func (e *deezerError) auth() bool {
	return e.Type == "OAuthException" || e.Code == 200 || e.Code == 300
}

type deezerEnvelope struct {
	Error *deezerError `json:"error"`
}

type deezerUser struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type deezerTrack struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

type deezerSearch struct {
	Data  []deezerTrack `json:"data"`
	Total int           `json:"total"`
}

type deezerCreated struct {
	ID int64 `json:"id"`
}

// DeezerService implements [Service] for the Deezer API.
type DeezerService struct {
	client *resty.Client
	logger *log.Logger
	query  QueryDialect
}

// NewDeezerService creates a Deezer service against https://api.deezer.com unless BaseURL is set.
func NewDeezerService(opts Options) *DeezerService {
	opts = opts.withDefaults()
	base := opts.BaseURL
	if base == "" {
		base = deezerBaseURL
	}

	return &DeezerService{
		client: resty.NewWithClient(opts.HTTPClient).
			SetBaseURL(strings.TrimRight(base, "/")).
			SetHeader("Accept", "application/json"),
		logger: opts.Logger,
		query:  FieldQuery,
	}
}

func (d *DeezerService) Kind() models.ServiceKind { return models.Deezer }

func (d *DeezerService) Name() string { return models.Deezer.DisplayName() }

// Identify returns the numeric Deezer user ID as a string.
func (d *DeezerService) Identify(ctx context.Context, cred models.Credential) (string, error) {
	var user deezerUser
	if err := d.call(ctx, http.MethodGet, "/user/me", nil, cred, &user); err != nil {
		return "", fmt.Errorf("identify user: %w", err)
	}
	if user.ID == 0 {
		return "", fmt.Errorf("%w: identify user: empty id", shared.ErrAPIRequest)
	}
	return strconv.FormatInt(user.ID, 10), nil
}

// SearchTrack runs a field search and returns the first track's ID.
func (d *DeezerService) SearchTrack(ctx context.Context, title, artist string, cred models.Credential) (string, bool, error) {
	q := d.query(title, artist)
	var result deezerSearch
	if err := d.call(ctx, http.MethodGet, "/search", map[string]string{"q": q, "limit": "1"}, cred, &result); err != nil {
		return "", false, fmt.Errorf("search %s: %w", q, err)
	}
	if len(result.Data) == 0 || result.Data[0].ID == 0 {
		return "", false, nil
	}
	return strconv.FormatInt(result.Data[0].ID, 10), true, nil
}

// CreatePlaylist creates a playlist titled spec.Name for owner.
// Deezer takes no visibility or description at creation.
func (d *DeezerService) CreatePlaylist(ctx context.Context, owner string, spec PlaylistSpec, cred models.Credential) (*CreatedPlaylist, error) {
	var created deezerCreated
	path := "/user/" + owner + "/playlists"
	if err := d.call(ctx, http.MethodPost, path, map[string]string{"title": spec.Name}, cred, &created); err != nil {
		return nil, fmt.Errorf("create playlist: %w", err)
	}
	if created.ID == 0 {
		return nil, fmt.Errorf("%w: create playlist: empty id", shared.ErrAPIRequest)
	}

	id := strconv.FormatInt(created.ID, 10)
	return &CreatedPlaylist{ID: id, URL: PlaylistURL(models.Deezer, id)}, nil
}

// AddItems adds all track IDs in a single request.
func (d *DeezerService) AddItems(ctx context.Context, playlistID string, ids []string, cred models.Credential) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	var ok bool
	params := map[string]string{"songs": strings.Join(ids, ",")}
	if err := d.call(ctx, http.MethodPost, "/playlist/"+playlistID+"/tracks", params, cred, &ok); err != nil {
		return 0, fmt.Errorf("add tracks: %w", err)
	}
	if !ok {
		return 0, fmt.Errorf("%w: add tracks: rejected", shared.ErrAPIRequest)
	}
	return len(ids), nil
}

// DeletePlaylist deletes the playlist.
func (d *DeezerService) DeletePlaylist(ctx context.Context, playlistID string, cred models.Credential) error {
	if err := d.call(ctx, http.MethodDelete, "/playlist/"+playlistID, nil, cred, nil); err != nil {
		return fmt.Errorf("delete playlist: %w", err)
	}
	return nil
}

// call performs a request and decodes the body into out.
// Deezer reports errors as HTTP 200 with an error envelope, so the body is checked before decoding.
func (d *DeezerService) call(ctx context.Context, method, path string, params map[string]string, cred models.Credential, out any) error {
	req := d.client.R().SetContext(ctx).SetQueryParams(params)
	if token := cred.AccessToken(); token != "" {
		req.SetQueryParam("access_token", token)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		if shared.IsTimeout(err) {
			return fmt.Errorf("%w: %w: %v", shared.ErrAPIRequest, shared.ErrTimeout, err)
		}
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	body := resp.Body()
	if resp.StatusCode() == http.StatusUnauthorized || resp.StatusCode() == http.StatusForbidden {
		return fmt.Errorf("%w: status %d", shared.ErrAuthRequired, resp.StatusCode())
	}
	if resp.IsError() {
		return fmt.Errorf("%w: status %d: %s", shared.ErrAPIRequest, resp.StatusCode(), shared.Truncate(string(body), 200))
	}

	var env deezerEnvelope
	if json.Unmarshal(body, &env) == nil && env.Error != nil {
		if env.Error.auth() {
			return fmt.Errorf("%w: %s", shared.ErrAuthRequired, env.Error.Message)
		}
		return fmt.Errorf("%w: %s (code %d)", shared.ErrAPIRequest, env.Error.Message, env.Error.Code)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode response: %v", shared.ErrAPIRequest, err)
	}
	return nil
}

