// Package export talks to the external report-rendering service. Rendering
// internals (templating, PDF layout, bilingual output) live in that service;
// this client only hands over a report id and gets a document reference back.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/vidyalaya/hpc-service/internal/hpc"
)

// Client calls the render endpoint of the export service.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{baseURL: baseURL, http: &http.Client{Timeout: timeout}}
}

type renderRequest struct {
	ReportID          string `json:"report_id"`
	Language          string `json:"language"`
	IncludeCharts     bool   `json:"include_charts"`
	IncludeSignatures bool   `json:"include_signatures"`
}

func (c *Client) Render(ctx context.Context, reportID, language string) (hpc.DocumentRef, error) {
	if language == "" {
		language = "english"
	}
	body, err := json.Marshal(renderRequest{
		ReportID:          reportID,
		Language:          language,
		IncludeCharts:     true,
		IncludeSignatures: true,
	})
	if err != nil {
		return hpc.DocumentRef{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/render", bytes.NewReader(body))
	if err != nil {
		return hpc.DocumentRef{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := c.http.Do(req)
	if err != nil {
		return hpc.DocumentRef{}, err
	}
	defer res.Body.Close()
	if res.StatusCode/100 != 2 {
		return hpc.DocumentRef{}, fmt.Errorf("render report: %s", res.Status)
	}
	var out struct {
		URL      string `json:"pdf_url"`
		Filename string `json:"filename"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return hpc.DocumentRef{}, err
	}
	return hpc.DocumentRef{URL: out.URL, Filename: out.Filename}, nil
}
