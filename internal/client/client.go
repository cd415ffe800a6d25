// Package client provides an HTTP client for the visit-planner REST API.
package client

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/evcraddock/visit-planner/internal/cep"
	"github.com/evcraddock/visit-planner/internal/planner"
	"github.com/evcraddock/visit-planner/internal/schedule"
	"github.com/evcraddock/visit-planner/internal/visit"
)

// Client is an HTTP client for the visit-planner API.
type Client struct {
	http *resty.Client
}

// New creates a new API client.
func New(baseURL string) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetTimeout(30 * time.Second).
			SetHeader("Accept", "application/json"),
	}
}

// APIError is a non-2xx reply from the server.
type APIError struct {
	StatusCode int
	Message    string
	// Decision is set when a visit was rejected for lack of capacity.
	Decision *schedule.Decision
}

func (e *APIError) Error() string {
	return e.Message
}

// errorResponse is the body of every API error.
type errorResponse struct {
	Error    string             `json:"error"`
	Decision *schedule.Decision `json:"decision"`
}

// CapacityRequest asks whether a visit would fit on a day.
type CapacityRequest struct {
	Date         string `json:"date"`
	FormCount    int    `json:"form_count"`
	ProductCount int    `json:"product_count"`
	ExcludeID    string `json:"exclude_id,omitempty"`
}

// Health checks that the server is reachable.
func (c *Client) Health() error {
	return c.do(c.request(nil), http.MethodGet, "/health")
}

// ListVisits returns all visits, or only those on date when it is set.
func (c *Client) ListVisits(date string) ([]visit.Visit, error) {
	var visits []visit.Visit
	req := c.request(&visits)
	if date != "" {
		req.SetQueryParam("date", date)
	}
	if err := c.do(req, http.MethodGet, "/api/visits"); err != nil {
		return nil, err
	}
	return visits, nil
}

// GetVisit returns a single visit.
func (c *Client) GetVisit(id string) (*visit.Visit, error) {
	var v visit.Visit
	req := c.request(&v).SetPathParam("id", id)
	if err := c.do(req, http.MethodGet, "/api/visits/{id}"); err != nil {
		return nil, err
	}
	return &v, nil
}

// AddVisit creates a visit.
func (c *Client) AddVisit(in visit.Input) (*visit.Visit, error) {
	var v visit.Visit
	if err := c.do(c.request(&v).SetBody(in), http.MethodPost, "/api/visits"); err != nil {
		return nil, err
	}
	return &v, nil
}

// UpdateVisit edits a visit.
func (c *Client) UpdateVisit(id string, in visit.Input) (*visit.Visit, error) {
	var v visit.Visit
	req := c.request(&v).SetPathParam("id", id).SetBody(in)
	if err := c.do(req, http.MethodPut, "/api/visits/{id}"); err != nil {
		return nil, err
	}
	return &v, nil
}

// DeleteVisit removes a visit.
func (c *Client) DeleteVisit(id string) error {
	return c.do(c.request(nil).SetPathParam("id", id), http.MethodDelete, "/api/visits/{id}")
}

// CompleteVisit marks a visit completed.
func (c *Client) CompleteVisit(id string) (*visit.Visit, error) {
	var v visit.Visit
	req := c.request(&v).SetPathParam("id", id)
	if err := c.do(req, http.MethodPost, "/api/visits/{id}/complete"); err != nil {
		return nil, err
	}
	return &v, nil
}

// ReplaceVisits replaces the server's whole collection.
func (c *Client) ReplaceVisits(visits []visit.Visit) (int, error) {
	if visits == nil {
		visits = []visit.Visit{}
	}
	var resp struct {
		Imported int `json:"imported"`
	}
	if err := c.do(c.request(&resp).SetBody(visits), http.MethodPut, "/api/visits"); err != nil {
		return 0, err
	}
	return resp.Imported, nil
}

// CheckCapacity runs the capacity check without saving anything.
func (c *Client) CheckCapacity(req CapacityRequest) (*schedule.Decision, error) {
	var d schedule.Decision
	if err := c.do(c.request(&d).SetBody(req), http.MethodPost, "/api/capacity"); err != nil {
		return nil, err
	}
	return &d, nil
}

// ListDays returns a report per day with visits.
func (c *Client) ListDays() ([]schedule.DayReport, error) {
	var days []schedule.DayReport
	if err := c.do(c.request(&days), http.MethodGet, "/api/days"); err != nil {
		return nil, err
	}
	return days, nil
}

// GetDay returns one day's report and visits.
func (c *Client) GetDay(date string) (*planner.DayDetail, error) {
	var d planner.DayDetail
	req := c.request(&d).SetPathParam("date", date)
	if err := c.do(req, http.MethodGet, "/api/days/{date}"); err != nil {
		return nil, err
	}
	return &d, nil
}

// CloseDay relocates a day's pending visits.
func (c *Client) CloseDay(date string) (*planner.CloseResult, error) {
	var res planner.CloseResult
	req := c.request(&res).SetPathParam("date", date)
	if err := c.do(req, http.MethodPost, "/api/days/{date}/close"); err != nil {
		return nil, err
	}
	return &res, nil
}

// LookupAddress resolves a postal code through the server.
func (c *Client) LookupAddress(code string) (*cep.Address, error) {
	var addr cep.Address
	req := c.request(&addr).SetPathParam("code", code)
	if err := c.do(req, http.MethodGet, "/api/cep/{code}"); err != nil {
		return nil, err
	}
	return &addr, nil
}

// request starts a request that decodes a success body into result, when
// set, and an error body into errorResponse.
func (c *Client) request(result any) *resty.Request {
	req := c.http.R().SetError(&errorResponse{})
	if result != nil {
		req.SetResult(result)
	}
	return req
}

// do executes req and turns error replies into *APIError.
func (c *Client) do(req *resty.Request, method, path string) error {
	if req.Body != nil {
		req.SetHeader("Content-Type", "application/json")
	}

	resp, err := req.Execute(method, path)
	if resp != nil && resp.IsError() {
		apiErr := &APIError{StatusCode: resp.StatusCode()}
		if e, ok := resp.Error().(*errorResponse); ok && e.Error != "" {
			apiErr.Message = e.Error
			apiErr.Decision = e.Decision
		} else {
			apiErr.Message = fmt.Sprintf("server error: %s", http.StatusText(resp.StatusCode()))
		}
		return apiErr
	}
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	return nil
}
