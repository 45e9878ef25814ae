// Package printnode submits print jobs to the PrintNode cloud print API.
package printnode

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://api.printnode.com"
	DefaultSource  = "Order Relay"

	maxErrorBodyPreview = 512
)

type Client struct {
	baseURL    string
	apiKey     string
	source     string
	httpClient *http.Client
}

func NewClient(apiKey string, httpClient *http.Client) *Client {
	return NewClientWithBaseURL(DefaultBaseURL, apiKey, httpClient)
}

func NewClientWithBaseURL(baseURL, apiKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		source:     DefaultSource,
		httpClient: httpClient,
	}
}

// Job is one PDF document destined for a printer.
type Job struct {
	PrinterID int64
	Title     string
	PDF       []byte
}

type printJobRequest struct {
	PrinterID   int64  `json:"printerId"`
	Title       string `json:"title"`
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
	Source      string `json:"source"`
}

type Account struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	Email     string `json:"email"`
	State     string `json:"state"`
}

type Computer struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Hostname string `json:"hostname"`
	State    string `json:"state"`
}

type Printer struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	State       string   `json:"state"`
	Default     bool     `json:"default"`
	Computer    Computer `json:"computer"`
}

// SubmitJob sends a PDF to a printer and returns the PrintNode job id.
func (c *Client) SubmitJob(ctx context.Context, job Job) (int64, error) {
	if job.PrinterID == 0 {
		return 0, errors.New("printer id is required")
	}
	if len(job.PDF) == 0 {
		return 0, errors.New("print job has no content")
	}

	payload := printJobRequest{
		PrinterID:   job.PrinterID,
		Title:       job.Title,
		ContentType: "pdf_base64",
		Content:     base64.StdEncoding.EncodeToString(job.PDF),
		Source:      c.source,
	}

	var jobID int64
	if err := c.do(ctx, http.MethodPost, "/printjobs", payload, &jobID); err != nil {
		return 0, err
	}
	return jobID, nil
}

func (c *Client) Whoami(ctx context.Context) (*Account, error) {
	var account Account
	if err := c.do(ctx, http.MethodGet, "/whoami", nil, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

func (c *Client) Computers(ctx context.Context) ([]Computer, error) {
	var computers []Computer
	if err := c.do(ctx, http.MethodGet, "/computers", nil, &computers); err != nil {
		return nil, err
	}
	return computers, nil
}

func (c *Client) Printers(ctx context.Context) ([]Printer, error) {
	var printers []Printer
	if err := c.do(ctx, http.MethodGet, "/printers", nil, &printers); err != nil {
		return nil, err
	}
	return printers, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if c.apiKey == "" {
		return errors.New("printnode API key not configured")
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal printnode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create printnode request: %w", err)
	}
	req.SetBasicAuth(c.apiKey, "")
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("printnode request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read printnode response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		preview := string(respBody)
		if len(preview) > maxErrorBodyPreview {
			preview = preview[:maxErrorBodyPreview]
		}
		return fmt.Errorf("printnode API returned status %d: %s", resp.StatusCode, preview)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse printnode response: %w", err)
	}
	return nil
}
