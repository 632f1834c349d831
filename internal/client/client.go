// Package client provides an HTTP client for the fsbo REST API.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/evcraddock/fsbo/internal/message"
	"github.com/evcraddock/fsbo/internal/offer"
	"github.com/evcraddock/fsbo/internal/premium"
	"github.com/evcraddock/fsbo/internal/property"
	"github.com/evcraddock/fsbo/internal/user"
	"github.com/evcraddock/fsbo/internal/web"
)

// Endpoints whose responses are cached.
const (
	endpointSearch   = "/api/properties"
	endpointFeatured = "/api/properties/featured"
)

// Error is a non-2xx response from the server.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%s)", e.Message, e.Code)
	}
	return e.Message
}

// Client is an HTTP client for the fsbo API.
type Client struct {
	baseURL    string
	token      string
	cache      *Cache
	httpClient *http.Client
}

// New creates a new API client. cache may be nil to disable caching.
func New(baseURL, token string, cache *Cache) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		cache:      cache,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// SearchOptions mirrors the server's search query parameters.
type SearchOptions struct {
	Location     string
	MinPrice     *int64
	MaxPrice     *int64
	MinBeds      *int
	MinBaths     *float64
	PropertyType string
	Status       string
	PremiumOnly  bool
	Limit        int
}

// Values encodes o as query parameters, omitting unset fields.
func (o SearchOptions) Values() url.Values {
	v := url.Values{}
	if o.Location != "" {
		v.Set("location", o.Location)
	}
	if o.MinPrice != nil {
		v.Set("minPrice", strconv.FormatInt(*o.MinPrice, 10))
	}
	if o.MaxPrice != nil {
		v.Set("maxPrice", strconv.FormatInt(*o.MaxPrice, 10))
	}
	if o.MinBeds != nil {
		v.Set("minBeds", strconv.Itoa(*o.MinBeds))
	}
	if o.MinBaths != nil {
		v.Set("minBaths", strconv.FormatFloat(*o.MinBaths, 'f', -1, 64))
	}
	if o.PropertyType != "" {
		v.Set("propertyType", o.PropertyType)
	}
	if o.Status != "" {
		v.Set("status", o.Status)
	}
	if o.PremiumOnly {
		v.Set("premiumOnly", "true")
	}
	if o.Limit > 0 {
		v.Set("limit", strconv.Itoa(o.Limit))
	}
	return v
}

// Search returns listings matching opts.
func (c *Client) Search(opts SearchOptions) ([]*property.Property, error) {
	var props []*property.Property
	if err := c.cachedGet(endpointSearch, opts.Values(), &props); err != nil {
		return nil, err
	}
	return props, nil
}

// Featured returns premium listings, newest first.
func (c *Client) Featured(limit int) ([]*property.Property, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	var props []*property.Property
	if err := c.cachedGet(endpointFeatured, params, &props); err != nil {
		return nil, err
	}
	return props, nil
}

// GetProperty returns a listing's detail. It is never cached because
// each fetch counts as a view.
func (c *Client) GetProperty(id int64) (*property.Detail, error) {
	var d property.Detail
	if err := c.get(fmt.Sprintf("/api/properties/%d", id), &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// CreateProperty publishes a new listing.
func (c *Client) CreateProperty(in property.NewProperty) (*property.Property, error) {
	var p property.Property
	if err := c.send(http.MethodPost, "/api/properties", in, &p); err != nil {
		return nil, err
	}
	c.invalidateListings()
	return &p, nil
}

// DeleteProperty removes a listing.
func (c *Client) DeleteProperty(id int64) error {
	if err := c.send(http.MethodDelete, fmt.Sprintf("/api/properties/%d", id), nil, nil); err != nil {
		return err
	}
	c.invalidateListings()
	return nil
}

// UserProperties returns the listings a user owns.
func (c *Client) UserProperties(userID string) ([]*property.Property, error) {
	var props []*property.Property
	if err := c.get("/api/users/"+url.PathEscape(userID)+"/properties", &props); err != nil {
		return nil, err
	}
	return props, nil
}

// Me returns the signed-in account.
func (c *Client) Me() (*user.User, error) {
	var u user.User
	if err := c.get("/api/auth/user", &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// SetRole picks buyer or seller for the signed-in account.
func (c *Client) SetRole(role string) (*user.User, error) {
	var u user.User
	if err := c.send(http.MethodPost, "/api/users/type", map[string]string{"role": role}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// SendMessage messages another user about a listing.
func (c *Client) SendMessage(in message.NewMessage) (*message.Message, error) {
	var m message.Message
	if err := c.send(http.MethodPost, "/api/messages", in, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Messages returns every message sent or received by the caller.
func (c *Client) Messages() ([]*message.Message, error) {
	var msgs []*message.Message
	if err := c.get("/api/messages", &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// SubmitOffer makes an offer on a listing.
func (c *Client) SubmitOffer(in offer.NewOffer) (*offer.Offer, error) {
	var o offer.Offer
	if err := c.send(http.MethodPost, "/api/offers", in, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// SetOfferStatus accepts or rejects an offer.
func (c *Client) SetOfferStatus(id int64, status string) (*offer.Offer, error) {
	var o offer.Offer
	body := offer.StatusChange{Status: status}
	if err := c.send(http.MethodPut, fmt.Sprintf("/api/offers/%d/status", id), body, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// CreatePaymentIntent starts a premium upgrade for a listing.
func (c *Client) CreatePaymentIntent(propertyID int64) (*premium.Checkout, error) {
	var co premium.Checkout
	if err := c.send(http.MethodPost, "/api/create-payment-intent", map[string]int64{"propertyId": propertyID}, &co); err != nil {
		return nil, err
	}
	return &co, nil
}

// VerifyPremium asks the server to confirm a payment and upgrade the listing.
func (c *Client) VerifyPremium(req premium.VerifyRequest) (*property.Property, error) {
	var resp struct {
		Property *property.Property `json:"property"`
	}
	if err := c.send(http.MethodPost, "/api/premium-listing/verify", req, &resp); err != nil {
		return nil, err
	}
	c.invalidateListings()
	return resp.Property, nil
}

// AdminStats returns the back-office summary.
func (c *Client) AdminStats() (*web.Stats, error) {
	var s web.Stats
	if err := c.get("/api/admin/stats", &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// AdminSetRole assigns any role to a user.
func (c *Client) AdminSetRole(userID, role string) (*user.User, error) {
	var u user.User
	path := "/api/admin/users/" + url.PathEscape(userID) + "/role"
	if err := c.send(http.MethodPut, path, map[string]string{"role": role}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) invalidateListings() {
	if c.cache == nil {
		return
	}
	c.cache.Invalidate(endpointSearch)
	c.cache.Invalidate(endpointFeatured)
}

// cachedGet serves endpoint from the cache when possible.
func (c *Client) cachedGet(endpoint string, params url.Values, result any) error {
	key := NewKey(endpoint, params)
	if c.cache != nil {
		if body, ok := c.cache.Get(key); ok {
			return decodeBody(body, result)
		}
	}

	path := endpoint
	if q := params.Encode(); q != "" {
		path += "?" + q
	}
	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	body, err := c.do(req)
	if err != nil {
		return err
	}
	if c.cache != nil {
		c.cache.Put(key, body)
	}
	return decodeBody(body, result)
}

// get performs a GET request and decodes the response.
func (c *Client) get(path string, result any) error {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	body, err := c.do(req)
	if err != nil {
		return err
	}
	return decodeBody(body, result)
}

// send performs a request with an optional JSON body and decodes the response.
func (c *Client) send(method, path string, body, result any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	respBody, err := c.do(req)
	if err != nil {
		return err
	}
	return decodeBody(respBody, result)
}

// do executes an HTTP request with auth header and handles errors.
func (c *Client) do(req *http.Request) ([]byte, error) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			fmt.Printf("warning: closing response body: %v\n", cerr)
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &Error{Status: resp.StatusCode}
		var errResp struct {
			Error string `json:"error"`
			Code  string `json:"code"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			apiErr.Message, apiErr.Code = errResp.Error, errResp.Code
		} else {
			apiErr.Message = "server error: " + http.StatusText(resp.StatusCode)
		}
		return nil, apiErr
	}

	return respBody, nil
}

func decodeBody(body []byte, result any) error {
	if result == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
