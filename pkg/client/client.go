package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"github.com/naveenspark/consultly/pkg/domain"
)

// TokenSource supplies the bearer token for each request.
// An empty token sends the request unauthenticated.
type TokenSource interface {
	Token() (string, bool)
}

// StaticToken is a TokenSource that always returns the same token.
type StaticToken string

// Token implements TokenSource.
func (t StaticToken) Token() (string, bool) {
	return string(t), t != ""
}

// Option configures a Client.
type Option func(*Client)

// WithTokenSource sets where the bearer token is read from.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithTimeout overrides the default 30s request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithRateLimit throttles outgoing requests to perSecond with the given burst.
// A non-positive perSecond disables throttling.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// Client is the consultly API client.
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
	limiter    *rate.Limiter
}

// New creates a new API client.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  StaticToken(""),
		httpClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// --- Catalog ---

// ListServices returns every bookable service.
func (c *Client) ListServices(ctx context.Context) ([]domain.Service, error) {
	var services []domain.Service
	if err := c.get(ctx, "/services", &services); err != nil {
		return nil, fmt.Errorf("client.ListServices: %w", err)
	}
	return services, nil
}

// GetAvailability returns all slots of a service for a month (YYYY-MM).
func (c *Client) GetAvailability(ctx context.Context, serviceID, month string) ([]domain.Slot, error) {
	params := url.Values{}
	params.Set("month", month)

	var slots []domain.Slot
	if err := c.get(ctx, "/availability/"+url.PathEscape(serviceID)+"?"+params.Encode(), &slots); err != nil {
		return nil, fmt.Errorf("client.GetAvailability: %w", err)
	}
	return slots, nil
}

// --- Bookings ---

// CreateBookingRequest is the payload for creating a booking.
type CreateBookingRequest struct {
	ServiceID      string `json:"serviceId"`
	SlotID         string `json:"slotId"`
	UserID         string `json:"userId"`
	PaymentMethod  string `json:"paymentMethod"`
	IdempotencyKey string `json:"-"`
}

// CreateBooking creates a booking record and returns its payment details.
func (c *Client) CreateBooking(ctx context.Context, req CreateBookingRequest) (*domain.BookingReceipt, error) {
	var headers http.Header
	if req.IdempotencyKey != "" {
		headers = http.Header{"Idempotency-Key": []string{req.IdempotencyKey}}
	}
	var receipt domain.BookingReceipt
	if err := c.doRequestWithHeaders(ctx, http.MethodPost, "/bookings", headers, req, &receipt); err != nil {
		return nil, fmt.Errorf("client.CreateBooking: %w", err)
	}
	return &receipt, nil
}

// ConfirmBookingRequest is the payload for confirming a booking's payment.
type ConfirmBookingRequest struct {
	BookingID  string `json:"bookingId"`
	PaymentRef string `json:"paymentRef"`
}

// ConfirmBooking confirms the (mock) payment of a created booking.
func (c *Client) ConfirmBooking(ctx context.Context, req ConfirmBookingRequest) (*domain.Booking, error) {
	var booking domain.Booking
	if err := c.post(ctx, "/bookings/confirm", req, &booking); err != nil {
		return nil, fmt.Errorf("client.ConfirmBooking: %w", err)
	}
	return &booking, nil
}

// ListUserBookings returns the bookings of a user.
func (c *Client) ListUserBookings(ctx context.Context, userID string) ([]domain.Booking, error) {
	var bookings []domain.Booking
	if err := c.get(ctx, "/bookings/user/"+url.PathEscape(userID), &bookings); err != nil {
		return nil, fmt.Errorf("client.ListUserBookings: %w", err)
	}
	return bookings, nil
}

// BookingNotification is the payload of the booking confirmation email.
type BookingNotification struct {
	BookingID   string    `json:"bookingId"`
	ServiceName string    `json:"serviceName"`
	Consultant  string    `json:"consultant,omitempty"`
	Start       time.Time `json:"start"`
	Amount      float64   `json:"amount"`
	UserName    string    `json:"userName"`
	UserEmail   string    `json:"userEmail"`
}

// SendBookingConfirmation asks the backend to email a booking confirmation.
func (c *Client) SendBookingConfirmation(ctx context.Context, n BookingNotification) error {
	if err := c.post(ctx, "/notifications/booking-confirmation", n, nil); err != nil {
		return fmt.Errorf("client.SendBookingConfirmation: %w", err)
	}
	return nil
}

// --- Auth ---

// LoginRequest carries user credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates and returns the resolved session.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*domain.Session, error) {
	var res loginResult
	if err := c.post(ctx, "/auth/login", req, &res); err != nil {
		return nil, fmt.Errorf("client.Login: %w", err)
	}
	sess, err := res.session()
	if err != nil {
		return nil, fmt.Errorf("client.Login: %w", err)
	}
	return sess, nil
}

// envelope is the response wrapper every endpoint uses.
type envelope struct {
	Result json.RawMessage `json:"result"`
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	return c.doRequest(ctx, http.MethodPost, path, body, out)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.doRequest(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any, out any) error {
	return c.doRequestWithHeaders(ctx, method, path, nil, body, out)
}

func (c *Client) doRequestWithHeaders(ctx context.Context, method, path string, headers http.Header, body any, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit: %w", err)
		}
	}

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
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if tok, ok := c.tokens.Token(); ok {
		req.Header.Set("Authorization", "Bearer "+tok)
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
		return newHTTPError(resp.StatusCode, respBody)
	}

	if out == nil {
		return nil
	}
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if len(env.Result) == 0 || string(env.Result) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return fmt.Errorf("decode result: %w", err)
	}
	return nil
}
