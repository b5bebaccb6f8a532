package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/a-h/jsonapi"
	"github.com/a-h/matchmaker/models"
)

func New(baseURL, apiKey string) Client {
	return Client{
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

type Client struct {
	baseURL string
	apiKey  string
}

func (c Client) ChatPost(ctx context.Context, req models.ChatPostRequest) (resp models.ChatPostResponse, err error) {
	url, err := jsonapi.URL(c.baseURL).Path("api", "chat").String()
	if err != nil {
		return resp, err
	}
	return jsonapi.Post[models.ChatPostRequest, models.ChatPostResponse](ctx, url, req)
}

func (c Client) GenerateSummaryPost(ctx context.Context, req models.GenerateSummaryPostRequest) (resp models.GenerateSummaryPostResponse, err error) {
	url, err := jsonapi.URL(c.baseURL).Path("api", "generate-summary").String()
	if err != nil {
		return resp, err
	}
	return jsonapi.Post[models.GenerateSummaryPostRequest, models.GenerateSummaryPostResponse](ctx, url, req)
}

// ProfileGet returns ok=false if no profile is stored for the API key's user.
func (c Client) ProfileGet(ctx context.Context) (p models.Profile, ok bool, err error) {
	url, err := jsonapi.URL(c.baseURL).Path("api", "profile").String()
	if err != nil {
		return p, false, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return p, false, fmt.Errorf("failed to create request: %w", err)
	}
	ok, err = c.do(httpReq, &p)
	return p, ok, err
}

func (c Client) ProfilePut(ctx context.Context, req models.ProfilePutRequest) (p models.Profile, err error) {
	url, err := jsonapi.URL(c.baseURL).Path("api", "profile").String()
	if err != nil {
		return p, err
	}
	buf, err := json.Marshal(req)
	if err != nil {
		return p, fmt.Errorf("failed to marshal request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(buf))
	if err != nil {
		return p, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	ok, err := c.do(httpReq, &p)
	if err == nil && !ok {
		err = fmt.Errorf("profile endpoint not found")
	}
	return p, err
}

func (c Client) do(httpReq *http.Request, into any) (ok bool, err error) {
	res, err := jsonapi.Raw(httpReq, jsonapi.WithRequestHeader("Authorization", "Bearer "+c.apiKey))
	if err != nil {
		return false, fmt.Errorf("failed to perform HTTP request: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		body, _ := io.ReadAll(res.Body)
		return false, jsonapi.InvalidStatusError{
			Status: res.StatusCode,
			Body:   string(body),
		}
	}
	if err = json.NewDecoder(res.Body).Decode(into); err != nil {
		return false, fmt.Errorf("failed to decode response: %w", err)
	}
	return true, nil
}
