package client

import (
	"context"
	"fmt"
	"net/http"

	"custodia/pkg/model"
)

// RoomDirectoryClient talks to the room directory collaborator, the system
// of record for bookable rooms.
type RoomDirectoryClient struct {
	http *HttpClient
}

func NewRoomDirectoryClient(baseURL string) *RoomDirectoryClient {
	return &RoomDirectoryClient{
		http: NewHttpClient(baseURL),
	}
}

func (c *RoomDirectoryClient) ListRooms(ctx context.Context) ([]model.Room, error) {
	resp, err := c.http.GET(ctx, "/api/v1/rooms")
	if err != nil {
		return nil, fmt.Errorf("room directory request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("room directory returned status %d: %s", resp.StatusCode, GetErrorMessage(resp))
	}

	var envelope struct {
		Data []model.Room `json:"data"`
	}
	if err := resp.DecodeJSON(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode room directory response: %w", err)
	}

	return envelope.Data, nil
}
