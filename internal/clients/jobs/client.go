package jobs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"jobwatch/internal/core/domain"
)

// Client is the REST client for the job service. It implements both the
// operation source and the project source used by the monitoring core.
type Client struct {
	baseURL    string
	apiToken   string
	httpClient *http.Client
}

// NewClient creates a new job service client
func NewClient(baseURL, apiToken string) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiToken: apiToken,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// SetHTTPClient allows setting a custom HTTP client
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// createRequest creates an HTTP request with proper headers
func (c *Client) createRequest(ctx context.Context, method, endpoint string, body interface{}) (*http.Request, error) {
	var reqBody io.Reader

	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}

	return req, nil
}

// doRequest executes an HTTP request and handles the response
func (c *Client) doRequest(req *http.Request, result interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp ErrorResponse
		if err := json.Unmarshal(body, &errResp); err != nil {
			return fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
		}
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, errResp.Message)
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}

	return nil
}

// Operation retrieves the current snapshot of an operation
func (c *Client) Operation(ctx context.Context, id string) (domain.Operation, error) {
	endpoint := fmt.Sprintf("/api/versioned/v1/operations/%s", url.PathEscape(id))

	req, err := c.createRequest(ctx, "GET", endpoint, nil)
	if err != nil {
		return domain.Operation{}, err
	}

	var result OperationResponse
	if err := c.doRequest(req, &result); err != nil {
		return domain.Operation{}, fmt.Errorf("failed to get operation %s: %w", id, err)
	}

	return c.toOperation(result)
}

func (c *Client) toOperation(resp OperationResponse) (domain.Operation, error) {
	state, err := domain.ParseOperationState(resp.State)
	if err != nil {
		return domain.Operation{}, err
	}

	resourceID := resp.RelativeID
	if resourceID == "" {
		resourceID = resp.ID
	}

	host := strings.TrimPrefix(c.baseURL, "https://")
	host = strings.TrimPrefix(host, "http://")

	details := fmt.Sprintf("Host: %s\nJob: %s\nDescription: %s\nState: %s",
		host, resourceID, resp.Description, resp.State)

	return domain.Operation{
		ID:         resp.ID,
		ResourceID: resourceID,
		State:      state,
		Details:    details,
	}, nil
}

// Project retrieves a project by ID
func (c *Client) Project(ctx context.Context, id string) (domain.Project, error) {
	endpoint := fmt.Sprintf("/api/versioned/v1/projects/%s", url.PathEscape(id))

	req, err := c.createRequest(ctx, "GET", endpoint, nil)
	if err != nil {
		return domain.Project{}, err
	}

	var result ProjectResponse
	if err := c.doRequest(req, &result); err != nil {
		return domain.Project{}, fmt.Errorf("failed to get project %s: %w", id, err)
	}

	resourceID := result.RelativeID
	if resourceID == "" {
		resourceID = result.ID
	}

	return domain.Project{
		ID:   resourceID,
		Name: result.Name,
		Type: domain.ProjectType(result.Type),
	}, nil
}

// RefreshUnifiedDataset starts a refresh of the project's unified dataset
func (c *Client) RefreshUnifiedDataset(ctx context.Context, projectID string) (domain.Operation, error) {
	endpoint := fmt.Sprintf("/api/versioned/v1/projects/%s/unifiedDataset:refresh", url.PathEscape(projectID))
	return c.startOperation(ctx, endpoint, "refresh unified dataset")
}

// TrainModel trains the project's model on current feedback
func (c *Client) TrainModel(ctx context.Context, projectID string) (domain.Operation, error) {
	endpoint := fmt.Sprintf("/api/versioned/v1/projects/%s/model:train", url.PathEscape(projectID))
	return c.startOperation(ctx, endpoint, "train model")
}

// PredictModel applies the project's model to produce fresh results
func (c *Client) PredictModel(ctx context.Context, projectID string) (domain.Operation, error) {
	endpoint := fmt.Sprintf("/api/versioned/v1/projects/%s/model:predict", url.PathEscape(projectID))
	return c.startOperation(ctx, endpoint, "predict with model")
}

func (c *Client) startOperation(ctx context.Context, endpoint, action string) (domain.Operation, error) {
	req, err := c.createRequest(ctx, "POST", endpoint, nil)
	if err != nil {
		return domain.Operation{}, err
	}

	var result OperationResponse
	if err := c.doRequest(req, &result); err != nil {
		return domain.Operation{}, fmt.Errorf("failed to %s: %w", action, err)
	}

	return c.toOperation(result)
}
