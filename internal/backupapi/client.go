// Package backupapi talks to the external file backup service. It is
// configured per action through parameters, not through the BigID context.
package backupapi

import (
	"context"
	"net/http"

	"github.com/bigid-apps/quickstart/internal/bigid"
	"github.com/bigid-apps/quickstart/internal/execution"
)

// Action parameters naming the backup service.
const (
	ParamURL   = "Backup API URL"
	ParamToken = "Backup API Token"
)

// File is the minimal descriptor the backup API stores.
type File struct {
	ID   string `json:"id" validate:"required"`
	Path string `json:"path" validate:"required"`
}

// Result is the answer of one backup call. Results add up across cases.
type Result struct {
	BackupsCreated []File `json:"backups_created" validate:"dive"`
	BackupsFound   []File `json:"backups_found" validate:"dive"`
	NumCreated     int    `json:"num_created" validate:"gte=0"`
	NumFound       int    `json:"num_found" validate:"gte=0"`
}

// Add accumulates other into r.
func (r *Result) Add(other Result) {
	r.BackupsCreated = append(r.BackupsCreated, other.BackupsCreated...)
	r.BackupsFound = append(r.BackupsFound, other.BackupsFound...)
	r.NumCreated += other.NumCreated
	r.NumFound += other.NumFound
}

type request struct {
	Data []File `json:"data"`
}

// Poster is the part of the remote accessor the backup client needs.
type Poster interface {
	PostJSON(ctx context.Context, target bigid.Target, path string, body interface{}) (*bigid.Response, error)
}

// Client posts files to the backup API.
type Client struct {
	api Poster
}

// NewClient wraps api, which should authenticate with a bearer token.
func NewClient(api Poster) *Client {
	return &Client{api: api}
}

// TargetFrom reads the backup API URL and token from the action parameters.
func TargetFrom(ec *execution.Context) bigid.Target {
	return bigid.Target{
		BaseURL: execution.GetStringActionParam(ec, ParamURL),
		Token:   execution.GetStringActionParam(ec, ParamToken),
	}
}

// BackupFiles asks the backup API to store files. An empty list makes no call.
func (c *Client) BackupFiles(ctx context.Context, target bigid.Target, files []File) (Result, error) {
	if len(files) == 0 {
		return Result{}, nil
	}
	if target.BaseURL == "" {
		return Result{}, bigid.NotFoundf("Action parameter %q is not set.", ParamURL)
	}

	resp, err := c.api.PostJSON(ctx, target, "files/", request{Data: files})
	if err != nil {
		return Result{}, bigid.Annotate("Failed to back up files.", err)
	}
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return Result{}, bigid.Annotate("Failed to back up files.", &bigid.APIError{
			Service:    "backup",
			StatusCode: resp.StatusCode,
			Body:       string(resp.Body),
		})
	}

	var result Result
	if err := bigid.Decode(resp, &result); err != nil {
		return Result{}, bigid.Annotate("Failed to back up files.", err)
	}
	return result, nil
}
