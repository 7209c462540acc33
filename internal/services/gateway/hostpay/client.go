package hostpay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"sync"
	"time"
)

type ClientConfig struct {
	BaseURL    string `json:"baseUrl" mapstructure:"base_url"`
	MerchantID string `json:"merchantId" mapstructure:"merchant_id"`
	ClientID   string `json:"clientId" mapstructure:"client_id"`
	ClientKey  string `json:"clientKey" mapstructure:"client_key"`
	HMACKey    string `json:"hmacKey" mapstructure:"hmac_key"`
}

type Client struct {
	// baseURL is the base url of the Hostpay backend.
	baseURL string

	// merchantID identifies the merchant account.
	merchantID string

	// clientID is the api client id of the Hostpay backend.
	clientID string

	// clientKey is the api client key of the Hostpay backend.
	clientKey string

	// hmacKey signs every outbound request body.
	hmacKey string

	// accessToken is used to authenticate with the Hostpay backend.
	accessToken string

	// mu is used to lock access token.
	mu sync.Mutex

	// toggleTokenRefresher is used to notify token refresher to refresh token.
	toggleTokenRefresher chan struct{}

	// hc is the http client.
	hc *http.Client
}

// newClient creates a new instance of the Hostpay api client.
func newClient(_ context.Context, c *ClientConfig) *Client {
	return &Client{
		baseURL:    c.BaseURL,
		merchantID: c.MerchantID,
		clientID:   c.ClientID,
		clientKey:  c.ClientKey,
		hmacKey:    c.HMACKey,

		// make a buffered channel to avoid blocking.
		toggleTokenRefresher: make(chan struct{}, 1),

		// set http client with timeout.
		hc: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// notifyAccessTokenExpired runs an infinite loop that renews the access
// token from the Hostpay backend, either on a fixed period or when a
// request observed a 401, with an exponential backOff strategy.
func (c *Client) notifyAccessTokenExpired(ctx context.Context) {
	ticker := time.NewTicker(10 * time.Minute)
	for {
		select {
		case <-ctx.Done():
			ticker.Stop()
			return

		case <-ticker.C:

		case <-c.toggleTokenRefresher:
			log.Println("notifyAccessTokenExpired: toggleTokenRefresher => token refreshed")
		}

		backOff := time.Second

	Retry:
		for {
			token, err := c.connect(ctx)
			switch err {
			case nil:
				c.setAccessToken(token)

				break Retry

			default:
				log.Printf("notifyAccessTokenExpired: %v", err)
				select {
				case <-ctx.Done():
					return

				case <-time.After(backOff):
					backOff *= 2
				}
			}
		}
	}
}

// setAccessToken set access token to client.
func (c *Client) setAccessToken(accessToken string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = accessToken
}

// getAccessToken get access token from client.
func (c *Client) getAccessToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken
}

// connect makes an http call to perform authentication with the Hostpay
// backend. The client key is never sent raw; the backend verifies the
// bcrypt proof against its stored copy.
func (c *Client) connect(ctx context.Context) (string, error) {
	number, err := randomNumber()
	if err != nil {
		return "", fmt.Errorf("connectHostpay: randomNumber: %v", err)
	}

	proof, err := GenerateHash([]byte(c.clientID + c.clientKey))
	if err != nil {
		return "", fmt.Errorf("connectHostpay: GenerateHash: %v", err)
	}

	body := fmt.Sprintf(`{"requestId":%q,"merchantId":%q,"clientId":%q,"clientProof":%q}`,
		number, c.merchantID, c.clientID, proof)

	req, err := c.newSignedRequest(ctx, "/api/v1/merchant/authenticate", body)
	if err != nil {
		return "", fmt.Errorf("connectHostpay: %v", err)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("connectHostpay: http.Do: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return "", errors.New("connectHostpay: resp.StatusCode: 401 => Unauthorized")
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("connectHostpay: unexpected status: %d", resp.StatusCode)
	}

	var reply struct {
		Status  string `json:"status"`
		Message string `json:"message"`
		Data    struct {
			AccessToken string `json:"accessToken"`
			TokenType   string `json:"tokenType"`
		} `json:"data"`
	}
	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(&reply); err != nil {
		return "", fmt.Errorf("connectHostpay: json.Decode: %v", err)
	}
	if reply.Status != "OK" {
		return "", fmt.Errorf("connectHostpay: reply.Status: %v, reply.Message: %v", reply.Status, reply.Message)
	}

	return fmt.Sprintf("%s %s", reply.Data.TokenType, reply.Data.AccessToken), nil
}

// createSession asks the Hostpay backend for a hosted checkout session.
func (c *Client) createSession(ctx context.Context, f *CheckoutForm) (*SessionReply, error) {
	number, err := randomNumber()
	if err != nil {
		return nil, fmt.Errorf("createSession: randomNumber: %v", err)
	}

	meta, err := json.Marshal(f.Metadata)
	if err != nil {
		return nil, fmt.Errorf("createSession: marshal metadata: %v", err)
	}

	body := fmt.Sprintf(`{"requestId":%q,"merchantId":%q,"amount":%s,"currency":%q,"reference":%q,"successUrl":%q,"cancelUrl":%q,"expiryMinutes":%d,"metadata":%s}`,
		number, c.merchantID, f.Amount, f.Currency, f.Reference, f.SuccessURL, f.CancelURL, f.ExpiryMinutes, meta)

	req, err := c.newSignedRequest(ctx, "/api/v1/checkout/sessions", body)
	if err != nil {
		return nil, fmt.Errorf("createSession: %v", err)
	}
	req.Header.Set("Authorization", c.getAccessToken())

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("createSession: http.Do: %v", err)
	}
	defer resp.Body.Close()

	// toggle token refresher if unauthorized
	if resp.StatusCode == http.StatusUnauthorized {
		c.toggleTokenRefresher <- struct{}{}
		return nil, errors.New("createSession: resp.StatusCode: 401 => Unauthorized")
	}

	var reply struct {
		Status  string       `json:"status"`
		Message string       `json:"message"`
		Data    SessionReply `json:"data"`
	}
	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(&reply); err != nil {
		return nil, fmt.Errorf("createSession: json.Decode: %v", err)
	}
	if reply.Status != "OK" {
		return nil, fmt.Errorf("createSession: reply.Status: %v, reply.Message: %v", reply.Status, reply.Message)
	}

	return &reply.Data, nil
}

// retrieveSession fetches the current state of a checkout session.
func (c *Client) retrieveSession(ctx context.Context, sessionID string) (*SessionReply, error) {
	number, err := randomNumber()
	if err != nil {
		return nil, fmt.Errorf("retrieveSession: randomNumber: %v", err)
	}

	body := fmt.Sprintf(`{"requestId":%q,"sessionId":%q}`, number, sessionID)

	req, err := c.newSignedRequest(ctx, "/api/v1/checkout/sessions/retrieve", body)
	if err != nil {
		return nil, fmt.Errorf("retrieveSession: %v", err)
	}
	req.Header.Set("Authorization", c.getAccessToken())

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("retrieveSession: http.Do: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.toggleTokenRefresher <- struct{}{}
		return nil, errors.New("retrieveSession: resp.StatusCode: 401 => Unauthorized")
	}

	var reply struct {
		Status  string       `json:"status"`
		Message string       `json:"message"`
		Data    SessionReply `json:"data"`
	}
	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(&reply); err != nil {
		return nil, fmt.Errorf("retrieveSession: json.Decode: %v", err)
	}
	if reply.Status != "OK" {
		if reply.Status == "NOT_FOUND" {
			return nil, errors.New("retrieveSession: session not found")
		}
		return nil, fmt.Errorf("retrieveSession: reply.Status: %v, reply.Message: %v", reply.Status, reply.Message)
	}

	return &reply.Data, nil
}

func (c *Client) newSignedRequest(ctx context.Context, path, body string) (*http.Request, error) {
	_baseURL, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, _baseURL.String()+path, bytes.NewReader([]byte(body)))
	if err != nil {
		return nil, fmt.Errorf("http.NewReq: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("SignedHash", Hmac256([]byte(body), []byte(c.hmacKey)))
	return req, nil
}
