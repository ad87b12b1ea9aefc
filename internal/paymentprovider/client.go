// Package paymentprovider клиент платёжного шлюза Lava для выставления
// счетов на оплату подписки.
package paymentprovider

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

// Client клиент API шлюза.
type Client struct {
	apiKey     string
	offerID    string
	apiURL     string
	httpClient *http.Client
}

// NewClient создаёт новый клиент Lava.
func NewClient(apiKey, offerID string) *Client {
	return &Client{
		apiKey:     apiKey,
		offerID:    offerID,
		apiURL:     "https://gate.lava.top/api/v2",
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) newRequest(method, path string, body interface{}) (*http.Request, error) {
	url := c.apiURL + path
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// CreateInvoice выставляет счёт на подписку и возвращает ссылку на оплату.
func (c *Client) CreateInvoice(email, periodicity string) (*CreateInvoiceResponse, error) {
	reqParams := CreateInvoiceRequest{
		Email:       email,
		OfferID:     c.offerID,
		Currency:    "RUB",
		Periodicity: periodicity,
	}
	req, err := c.newRequest("POST", "/invoice", reqParams)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, errors.New("unexpected status: " + resp.Status)
	}

	var invoiceResp CreateInvoiceResponse
	if err := json.NewDecoder(resp.Body).Decode(&invoiceResp); err != nil {
		return nil, err
	}
	if invoiceResp.PaymentURL == "" {
		return nil, errors.New("empty payment url in gateway response")
	}
	return &invoiceResp, nil
}
