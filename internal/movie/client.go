package movie

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-resty/resty/v2"

	"github.com/diginoron/imdb/internal/upstream"
)

const (
	serviceName = "movie-api"

	// DefaultBaseURL and DefaultHost point at the RapidAPI-hosted IMDb API.
	DefaultBaseURL = "https://imdb236.p.rapidapi.com/imdb"
	DefaultHost    = "imdb236.p.rapidapi.com"
)

var validate = validator.New()

// Client looks up movies by IMDb identifier.
type Client struct {
	client *resty.Client
	apiKey string
	host   string
}

// NewClient creates a Client. Empty baseURL or host select the defaults.
func NewClient(httpClient *http.Client, baseURL, apiKey, host string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if host == "" {
		host = DefaultHost
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		client: resty.NewWithClient(httpClient).
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetHeader("Accept", "application/json"),
		apiKey: apiKey,
		host:   host,
	}
}

// ValidateID checks the required "tt" prefix.
func ValidateID(id string) error {
	if err := validate.Var(id, "required,startswith=tt,min=3,alphanum"); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidIdentifier, id)
	}
	return nil
}

// FetchMovie validates id, fetches it and normalizes whichever envelope the API used.
func (c *Client) FetchMovie(ctx context.Context, id string) (*Record, error) {
	id = strings.TrimSpace(id)
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	if c.apiKey == "" {
		return nil, upstream.ErrMissingCredential
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("X-RapidAPI-Key", c.apiKey).
		SetHeader("X-RapidAPI-Host", c.host).
		SetPathParam("id", id).
		Get("/{id}")
	if err != nil {
		return nil, &upstream.TransportError{Service: serviceName, Err: err}
	}

	if resp.StatusCode() == http.StatusNotFound {
		return nil, &NotFoundError{Message: upstream.ReasonFromBody(resp.Body())}
	}
	if !resp.IsSuccess() {
		return nil, &upstream.StatusError{
			Service: serviceName,
			Status:  resp.StatusCode(),
			Reason:  upstream.ReasonFromBody(resp.Body()),
		}
	}

	rec, err := decodeRecord(resp.Body())
	if err != nil {
		log.Printf("INFO: movie %s not found: %v", id, err)
		return nil, err
	}
	return rec, nil
}
