// internal/scoring/remote.go
package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/crtorres/canasta/internal/models"
)

// ErrGameNotFound is returned by the remote when the server does not
// know the requested game.
var ErrGameNotFound = errors.New("game not found on server")

// Remote is the server as seen by the scoring client.
type Remote interface {
	FetchGame(ctx context.Context, gameID string) (*models.Game, error)
	BatchUpdateStats(ctx context.Context, gameID string, deltas []models.StatDelta) error
	UpdateGameMetadata(ctx context.Context, gameID string, status models.GameStatus, period int) error
}

// DefaultRequestTimeout bounds each remote call so a hung request can
// never block the sync loop indefinitely.
const DefaultRequestTimeout = 10 * time.Second

// HTTPRemote talks to the game server's JSON API.
type HTTPRemote struct {
	baseURL string
	client  *http.Client
}

func NewHTTPRemote(baseURL string, timeout time.Duration) *HTTPRemote {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &HTTPRemote{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (r *HTTPRemote) FetchGame(ctx context.Context, gameID string) (*models.Game, error) {
	var game models.Game
	if err := r.do(ctx, http.MethodGet, "/api/v1/games/"+gameID, nil, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

func (r *HTTPRemote) BatchUpdateStats(ctx context.Context, gameID string, deltas []models.StatDelta) error {
	body := map[string]any{"deltas": deltas}
	return r.do(ctx, http.MethodPost, "/api/v1/games/"+gameID+"/stats/batch", body, nil)
}

// UpdateGameMetadata pushes status and current period. Stats are never
// part of this call; the batch endpoint is the only stats writer.
func (r *HTTPRemote) UpdateGameMetadata(ctx context.Context, gameID string, status models.GameStatus, period int) error {
	if err := r.do(ctx, http.MethodPut, "/api/v1/games/"+gameID+"/status", map[string]any{"status": status}, nil); err != nil {
		return err
	}
	return r.do(ctx, http.MethodPut, "/api/v1/games/"+gameID+"/period", map[string]any{"period": period}, nil)
}

func (r *HTTPRemote) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrGameNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%s %s: server returned %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(data)))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
