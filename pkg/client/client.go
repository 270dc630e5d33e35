package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/formulacardz/cardz/pkg/domain"
)

// AddOwnershipRequest is the payload for adding a card variant to a collection.
type AddOwnershipRequest struct {
	UserID        string     `json:"userId"`
	CardID        string     `json:"cardId"`
	Quantity      int        `json:"quantity"`
	Parallel      string     `json:"parallel,omitempty"`
	PurchasePrice *float64   `json:"purchasePrice,omitempty"`
	PurchaseDate  *time.Time `json:"purchaseDate,omitempty"`
	Condition     string     `json:"condition"`
}

// UpdateOwnershipRequest is the payload for updating an owned card variant.
// OldParallel addresses the record being updated; Parallel and Condition, when
// set, are the new identity.
type UpdateOwnershipRequest struct {
	UserID        string     `json:"userId"`
	CardID        string     `json:"cardId"`
	OldParallel   string     `json:"oldParallel,omitempty"`
	Quantity      *int       `json:"quantity,omitempty"`
	Parallel      string     `json:"parallel,omitempty"`
	PurchasePrice *float64   `json:"purchasePrice,omitempty"`
	PurchaseDate  *time.Time `json:"purchaseDate,omitempty"`
	Condition     string     `json:"condition,omitempty"`
}

// RemoveOwnershipRequest is the payload for subtracting quantity from an
// owned card variant.
type RemoveOwnershipRequest struct {
	UserID             string `json:"userId"`
	CardID             string `json:"cardId"`
	QuantityToSubtract int    `json:"quantityToSubtract"`
	Parallel           string `json:"parallel,omitempty"`
	Condition          string `json:"condition"`
}

// UpdateUserRequest is a partial profile update.
type UpdateUserRequest struct {
	Username             string   `json:"username,omitempty"`
	Email                string   `json:"email,omitempty"`
	ProfileImageURL      string   `json:"profileImageUrl,omitempty"`
	FavoriteDrivers      []string `json:"favoriteDrivers,omitempty"`
	FavoriteConstructors []string `json:"favoriteConstructors,omitempty"`
}

// Client is the Formula Cardz API client.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a new API client. The token may be empty until a login
// succeeds; see SetToken.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetToken replaces the bearer token used on subsequent requests.
func (c *Client) SetToken(token string) {
	c.token = token
}

// Login exchanges credentials for a profile and bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (*domain.AuthResponse, error) {
	body := map[string]string{"email": email, "password": password}
	var auth domain.AuthResponse
	if err := c.post(ctx, "/v1/auth/login", body, &auth); err != nil {
		return nil, fmt.Errorf("client.Login: %w", err)
	}
	return &auth, nil
}

// Register creates a new account and returns its profile and bearer token.
func (c *Client) Register(ctx context.Context, nu domain.NewUser) (*domain.AuthResponse, error) {
	var auth domain.AuthResponse
	if err := c.post(ctx, "/v1/auth/register", nu, &auth); err != nil {
		return nil, fmt.Errorf("client.Register: %w", err)
	}
	return &auth, nil
}

// ForgotPassword requests a password-reset email. The response is an opaque
// acknowledgement.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	if err := c.post(ctx, "/v1/auth/forgot-password", map[string]string{"email": email}, nil); err != nil {
		return fmt.Errorf("client.ForgotPassword: %w", err)
	}
	return nil
}

// UpdateUser applies a partial profile update and returns the stored profile.
func (c *Client) UpdateUser(ctx context.Context, userID string, req UpdateUserRequest) (*domain.UpdatedUser, error) {
	var resp struct {
		User domain.UpdatedUser `json:"user"`
	}
	if err := c.doRequest(ctx, http.MethodPut, "/v1/user/"+url.PathEscape(userID), req, &resp); err != nil {
		return nil, fmt.Errorf("client.UpdateUser: %w", err)
	}
	return &resp.User, nil
}

// Collection fetches the user's ownership records, flattened with catalog
// card fields.
func (c *Client) Collection(ctx context.Context, userID string) ([]domain.OwnershipRecord, error) {
	var records []domain.OwnershipRecord
	if err := c.get(ctx, "/v1/ownership/"+url.PathEscape(userID), &records); err != nil {
		return nil, fmt.Errorf("client.Collection: %w", err)
	}
	return records, nil
}

// AddOwnership records newly acquired quantity of a card variant.
func (c *Client) AddOwnership(ctx context.Context, req AddOwnershipRequest) error {
	if err := c.post(ctx, "/v1/ownership", req, nil); err != nil {
		return fmt.Errorf("client.AddOwnership: %w", err)
	}
	return nil
}

// UpdateOwnership changes quantity, pricing, or identity of an owned variant.
func (c *Client) UpdateOwnership(ctx context.Context, req UpdateOwnershipRequest) error {
	if err := c.doRequest(ctx, http.MethodPut, "/v1/ownership", req, nil); err != nil {
		return fmt.Errorf("client.UpdateOwnership: %w", err)
	}
	return nil
}

// RemoveOwnership subtracts quantity from an owned variant.
func (c *Client) RemoveOwnership(ctx context.Context, req RemoveOwnershipRequest) error {
	if err := c.doRequest(ctx, http.MethodDelete, "/v1/ownership", req, nil); err != nil {
		return fmt.Errorf("client.RemoveOwnership: %w", err)
	}
	return nil
}

// CardsBySet lists catalog cards for one set.
func (c *Client) CardsBySet(ctx context.Context, setName string) ([]domain.CatalogCard, error) {
	params := url.Values{}
	params.Set("setName", setName)

	var cards []domain.CatalogCard
	if err := c.get(ctx, "/v1/cards?"+params.Encode(), &cards); err != nil {
		return nil, fmt.Errorf("client.CardsBySet: %w", err)
	}
	return cards, nil
}

// Sets lists the set picker options.
func (c *Client) Sets(ctx context.Context) ([]domain.Dropdown, error) {
	var sets []domain.Dropdown
	if err := c.get(ctx, "/v1/dropdown/sets", &sets); err != nil {
		return nil, fmt.Errorf("client.Sets: %w", err)
	}
	return sets, nil
}

// OneOfOnes lists catalog cards with their parallels for one-of-one tracking,
// optionally restricted to a set.
func (c *Client) OneOfOnes(ctx context.Context, setName string) ([]domain.CatalogCard, error) {
	path := "/v1/oneofones"
	if setName != "" {
		params := url.Values{}
		params.Set("setName", setName)
		path += "?" + params.Encode()
	}

	var cards []domain.CatalogCard
	if err := c.get(ctx, path, &cards); err != nil {
		return nil, fmt.Errorf("client.OneOfOnes: %w", err)
	}
	return cards, nil
}

// Drops lists upcoming product releases.
func (c *Client) Drops(ctx context.Context) ([]domain.Drop, error) {
	var drops []domain.Drop
	if err := c.get(ctx, "/v1/drops", &drops); err != nil {
		return nil, fmt.Errorf("client.Drops: %w", err)
	}
	return drops, nil
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	return c.doRequest(ctx, http.MethodPost, path, body, out)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.doRequest(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode >= 400 {
		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB max error body
		if readErr != nil {
			return &HTTPError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read body: %v", readErr)}
		}
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error != "" {
			return &HTTPError{StatusCode: resp.StatusCode, Message: apiErr.Error}
		}
		return &HTTPError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
