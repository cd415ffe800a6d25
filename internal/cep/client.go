// Package cep looks up Brazilian postal codes (CEP) through the ViaCEP API.
package cep

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultBaseURL is the public ViaCEP endpoint.
const DefaultBaseURL = "https://viacep.com.br/ws"

var (
	// ErrInvalid is returned for codes that are not 8 digits.
	ErrInvalid = errors.New("invalid postal code")
	// ErrNotFound is returned when the service knows no such code.
	ErrNotFound = errors.New("postal code not found")
)

// Address is the result of a lookup.
type Address struct {
	PostalCode   string `json:"postal_code"`
	State        string `json:"state"`
	City         string `json:"city"`
	Street       string `json:"street"`
	Neighborhood string `json:"neighborhood"`
}

// Client fetches addresses from ViaCEP.
type Client struct {
	http *resty.Client
}

// NewClient creates a lookup client. An empty baseURL selects DefaultBaseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Accept", "application/json")
	if timeout > 0 {
		c.SetTimeout(timeout)
	}
	return &Client{http: c}
}

// Normalize strips everything but digits from code and checks that eight
// remain.
func Normalize(code string) (string, error) {
	var b strings.Builder
	for _, r := range code {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) != 8 {
		return "", fmt.Errorf("%w: %q must have 8 digits", ErrInvalid, code)
	}
	return digits, nil
}

// viaCEPResponse is the ViaCEP JSON payload. "erro" is a boolean in the
// v1 API and the string "true" in newer deployments.
type viaCEPResponse struct {
	CEP         string `json:"cep"`
	Logradouro  string `json:"logradouro"`
	Complemento string `json:"complemento"`
	Bairro      string `json:"bairro"`
	Localidade  string `json:"localidade"`
	UF          string `json:"uf"`
	Erro        any    `json:"erro"`
}

func (r viaCEPResponse) notFound() bool {
	switch v := r.Erro.(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(v, "true")
	default:
		return false
	}
}

// Lookup resolves code to an address.
func (c *Client) Lookup(ctx context.Context, code string) (*Address, error) {
	digits, err := Normalize(code)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("cep", digits).
		Get("/{cep}/json/")
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
	case http.StatusBadRequest:
		return nil, fmt.Errorf("%w: %s rejected by lookup service", ErrInvalid, digits)
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, digits)
	default:
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode())
	}

	var result viaCEPResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if result.notFound() {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, digits)
	}

	postal := result.CEP
	if postal == "" {
		postal = digits[:5] + "-" + digits[5:]
	}
	return &Address{
		PostalCode:   postal,
		State:        result.UF,
		City:         result.Localidade,
		Street:       result.Logradouro,
		Neighborhood: result.Bairro,
	}, nil
}
