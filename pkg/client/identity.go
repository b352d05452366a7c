package client

import (
	"context"
	"fmt"
	"net/http"

	apperrors "custodia/pkg/errors"
	"custodia/pkg/model"
)

// IdentityClient verifies bearer tokens against the identity collaborator.
type IdentityClient struct {
	http *HttpClient
}

func NewIdentityClient(baseURL string) *IdentityClient {
	return &IdentityClient{
		http: NewHttpClient(baseURL),
	}
}

func (c *IdentityClient) VerifyToken(ctx context.Context, token string) (*model.Principal, error) {
	resp, err := c.http.POSTWithHeaders(ctx, "/api/v1/tokens/verify", nil, map[string]string{
		"Authorization": "Bearer " + token,
	})
	if err != nil {
		return nil, fmt.Errorf("identity request failed: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, apperrors.Unauthorized("Invalid or expired token")
	default:
		return nil, fmt.Errorf("identity service returned status %d: %s", resp.StatusCode, GetErrorMessage(resp))
	}

	var envelope struct {
		Data model.Principal `json:"data"`
	}
	if err := resp.DecodeJSON(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode identity response: %w", err)
	}

	return &envelope.Data, nil
}
