package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"custodia/pkg/model"
)

// CleanerRosterClient talks to the staff roster collaborator and lists the
// staff members eligible for schedule assignment.
type CleanerRosterClient struct {
	http *HttpClient
}

func NewCleanerRosterClient(baseURL string) *CleanerRosterClient {
	return &CleanerRosterClient{
		http: NewHttpClient(baseURL),
	}
}

func (c *CleanerRosterClient) ListCleaners(ctx context.Context, role string) ([]model.Cleaner, error) {
	path := "/api/v1/staff"
	if role != "" {
		path += "?role=" + url.QueryEscape(role)
	}

	resp, err := c.http.GET(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("cleaner roster request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cleaner roster returned status %d: %s", resp.StatusCode, GetErrorMessage(resp))
	}

	var envelope struct {
		Data []model.Cleaner `json:"data"`
	}
	if err := resp.DecodeJSON(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode cleaner roster response: %w", err)
	}

	return envelope.Data, nil
}
