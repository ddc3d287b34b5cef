package market

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

	"github.com/google/uuid"
)

//go:generate mockgen -destination=mocks/mock_client.go -package=mocks github.com/VolkanCARBUGA/VintedClone/internal/market Messenger,Authenticator,People

// TokenSource yields the bearer token for outgoing requests. An empty token
// means the request is sent unauthenticated.
type TokenSource interface {
	Token() string
}

// Catalog is the product surface consumed by the catalog package.
type Catalog interface {
	Products(ctx context.Context, query ProductQuery) ([]Product, error)
	Product(ctx context.Context, id string) (*Product, error)
	Favorites(ctx context.Context) ([]Product, error)
	AddFavorite(ctx context.Context, id string) error
	RemoveFavorite(ctx context.Context, id string) error
}

// Messenger is the messaging surface consumed by the chat package.
type Messenger interface {
	Conversations(ctx context.Context) ([]Conversation, error)
	Conversation(ctx context.Context, id string) (*Conversation, error)
	CreateConversation(ctx context.Context, in NewConversation) (*Conversation, error)
	Messages(ctx context.Context, conversationID string, page Page) ([]Message, error)
	SendMessage(ctx context.Context, in OutgoingMessage) (*Message, error)
	MarkRead(ctx context.Context, messageID string) error
}

// People is the profile and follow surface consumed by the profile package.
type People interface {
	User(ctx context.Context, id string) (*User, error)
	UserProducts(ctx context.Context, userID, status string) ([]Product, error)
	Followers(ctx context.Context, id string) ([]UserSummary, error)
	Following(ctx context.Context, id string) ([]UserSummary, error)
	Follow(ctx context.Context, id string) error
	Unfollow(ctx context.Context, id string) error
	UpdateProfile(ctx context.Context, id string, in ProfileInput) (*User, error)
}

// Listings is the seller surface consumed by the listing package.
type Listings interface {
	Product(ctx context.Context, id string) (*Product, error)
	CreateProduct(ctx context.Context, in ProductInput) (*Product, error)
	UpdateProduct(ctx context.Context, id string, in ProductInput) (*Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

// Authenticator is the auth surface consumed by the session package.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*AuthResponse, error)
	Register(ctx context.Context, username, email, password string) (*AuthResponse, error)
}

var (
	_ Catalog       = (*Client)(nil)
	_ Messenger     = (*Client)(nil)
	_ Authenticator = (*Client)(nil)
	_ People        = (*Client)(nil)
	_ Listings      = (*Client)(nil)
)

// Client talks to the marketplace REST API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	tokens    TokenSource
	timeout   time.Duration
}

const (
	defaultBaseURL   = "http://localhost:5000/api"
	defaultAPIPath   = "/api"
	defaultUserAgent = "vinted-cli/0.1"
	requestTimeout   = 10 * time.Second
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTokenSource attaches the session token to every request.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) {
		c.tokens = ts
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if strings.TrimSpace(ua) != "" {
			c.userAgent = ua
		}
	}
}

// WithTimeout sets the per-request timeout. A client passed through
// WithHTTPClient is copied, never modified.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// NewClient builds a Client for the API rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 && c.http.Timeout != c.timeout {
		hc := *c.http
		hc.Timeout = c.timeout
		c.http = &hc
	}
	return c, nil
}

// BaseURL returns the normalized API root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Login authenticates with email and password.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var payload AuthResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "users/login", nil, body, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Register creates an account and returns its session.
func (c *Client) Register(ctx context.Context, username, email, password string) (*AuthResponse, error) {
	var payload AuthResponse
	body := map[string]string{"username": username, "email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "users/register", nil, body, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// ForgotPassword asks the server to send a reset email.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "users/forgot-password", nil, map[string]string{"email": email}, nil)
}

// Products lists products matching query.
func (c *Client) Products(ctx context.Context, query ProductQuery) ([]Product, error) {
	var payload []Product
	if err := c.do(ctx, http.MethodGet, "products", encodeProductQuery(query), nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// Product fetches a single listing.
func (c *Client) Product(ctx context.Context, id string) (*Product, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("product id required")
	}
	var payload Product
	if err := c.do(ctx, http.MethodGet, "products/"+url.PathEscape(id), nil, nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// CreateProduct publishes a new listing.
func (c *Client) CreateProduct(ctx context.Context, in ProductInput) (*Product, error) {
	var payload Product
	if err := c.do(ctx, http.MethodPost, "products", nil, in, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// UpdateProduct edits an existing listing.
func (c *Client) UpdateProduct(ctx context.Context, id string, in ProductInput) (*Product, error) {
	var payload Product
	if err := c.do(ctx, http.MethodPut, "products/"+url.PathEscape(id), nil, in, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// DeleteProduct removes a listing.
func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "products/"+url.PathEscape(id), nil, nil, nil)
}

// AddFavorite marks a product as favorite for the current user.
func (c *Client) AddFavorite(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "products/"+url.PathEscape(id)+"/favorite", nil, nil, nil)
}

// RemoveFavorite clears the favorite mark.
func (c *Client) RemoveFavorite(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "products/"+url.PathEscape(id)+"/favorite", nil, nil, nil)
}

// Favorites lists the current user's favorite products.
func (c *Client) Favorites(ctx context.Context) ([]Product, error) {
	var payload []Product
	if err := c.do(ctx, http.MethodGet, "products/favorites", nil, nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// UserProducts lists a user's listings, optionally filtered by status.
func (c *Client) UserProducts(ctx context.Context, userID, status string) ([]Product, error) {
	values := url.Values{}
	if s := strings.TrimSpace(status); s != "" {
		values.Set("status", s)
	}
	var payload []Product
	if err := c.do(ctx, http.MethodGet, "products/user/"+url.PathEscape(userID), values, nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// User fetches a profile.
func (c *Client) User(ctx context.Context, id string) (*User, error) {
	var payload User
	if err := c.do(ctx, http.MethodGet, "users/"+url.PathEscape(id), nil, nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// UpdateProfile edits the given user's profile.
func (c *Client) UpdateProfile(ctx context.Context, id string, in ProfileInput) (*User, error) {
	var payload User
	if err := c.do(ctx, http.MethodPut, "users/"+url.PathEscape(id), nil, in, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Follow starts following a user.
func (c *Client) Follow(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "users/follow/"+url.PathEscape(id), nil, nil, nil)
}

// Unfollow stops following a user.
func (c *Client) Unfollow(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "users/follow/"+url.PathEscape(id), nil, nil, nil)
}

// Followers lists the followers of a user.
func (c *Client) Followers(ctx context.Context, id string) ([]UserSummary, error) {
	var payload []UserSummary
	if err := c.do(ctx, http.MethodGet, "users/"+url.PathEscape(id)+"/followers", nil, nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// Following lists the users a user follows.
func (c *Client) Following(ctx context.Context, id string) ([]UserSummary, error) {
	var payload []UserSummary
	if err := c.do(ctx, http.MethodGet, "users/"+url.PathEscape(id)+"/following", nil, nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// Conversations lists the inbox, most recent first.
func (c *Client) Conversations(ctx context.Context) ([]Conversation, error) {
	var payload []Conversation
	if err := c.do(ctx, http.MethodGet, "conversations", nil, nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// Conversation fetches one conversation.
func (c *Client) Conversation(ctx context.Context, id string) (*Conversation, error) {
	var payload Conversation
	if err := c.do(ctx, http.MethodGet, "conversations/"+url.PathEscape(id), nil, nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// CreateConversation opens a thread with its first message.
func (c *Client) CreateConversation(ctx context.Context, in NewConversation) (*Conversation, error) {
	var payload Conversation
	if err := c.do(ctx, http.MethodPost, "conversations", nil, in, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Messages fetches a page of a conversation's messages.
func (c *Client) Messages(ctx context.Context, conversationID string, page Page) ([]Message, error) {
	if strings.TrimSpace(conversationID) == "" {
		return nil, fmt.Errorf("conversation id required")
	}
	page = page.normalized()
	values := url.Values{}
	values.Set("page", strconv.Itoa(page.Page))
	values.Set("limit", strconv.Itoa(page.Limit))
	var payload []Message
	if err := c.do(ctx, http.MethodGet, "conversations/"+url.PathEscape(conversationID)+"/messages", values, nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// SendMessage appends a message to an existing conversation.
func (c *Client) SendMessage(ctx context.Context, in OutgoingMessage) (*Message, error) {
	if in.Images == nil {
		in.Images = []string{}
	}
	var payload Message
	if err := c.do(ctx, http.MethodPost, "messages", nil, in, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// MarkRead flags a message as read.
func (c *Client) MarkRead(ctx context.Context, messageID string) error {
	return c.do(ctx, http.MethodPut, "messages/"+url.PathEscape(messageID)+"/read", nil, nil, nil)
}

func encodeProductQuery(q ProductQuery) url.Values {
	values := url.Values{}
	if s := strings.TrimSpace(q.Search); s != "" {
		values.Set("search", s)
	}
	if q.Category != "" {
		values.Set("category", q.Category)
	}
	if q.Condition != "" {
		values.Set("condition", q.Condition)
	}
	if q.MinPrice > 0 {
		values.Set("minPrice", strconv.FormatFloat(q.MinPrice, 'f', -1, 64))
	}
	if q.MaxPrice > 0 {
		values.Set("maxPrice", strconv.FormatFloat(q.MaxPrice, 'f', -1, 64))
	}
	if q.Sort != "" {
		values.Set("sort", q.Sort)
	}
	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}
	return values
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, dest any) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	op := method + " /" + path

	reqURL := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		reqURL.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet {
		req.Header.Set("X-Request-Id", uuid.NewString())
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return transportError(op, fmt.Errorf("execute request: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return &Error{
			Op:      op,
			Kind:    kindForStatus(resp.StatusCode),
			Status:  resp.StatusCode,
			Message: readErrorMessage(resp.Body),
		}
	}
	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return transportError(op, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func readErrorMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 64*1024))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	if msg := strings.TrimSpace(payload.Message); msg != "" {
		return msg
	}
	return strings.TrimSpace(payload.Error)
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api url %q: missing host", raw)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	if u.Path == "" {
		u.Path = defaultAPIPath
	}
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
