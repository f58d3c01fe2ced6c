package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/yourorg/marketdata-sync/internal/model"

	"go.uber.org/zap"
)

// SearchSymbols queries the platform's symbol-search endpoint for one term
func (c *Client) SearchSymbols(ctx context.Context, query string) ([]model.SymbolSearchResult, error) {
	params := url.Values{}
	params.Set("text", query)
	params.Set("type", "")
	reqURL := c.searchURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("Origin", c.origin)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Failed to query symbol search", zap.Error(err), zap.String("query", query))
		return nil, fmt.Errorf("failed to query symbol search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.logger.Error("Symbol search error response",
			zap.Int("statusCode", resp.StatusCode),
			zap.String("response", string(body)))
		return nil, fmt.Errorf("symbol search returned status %d", resp.StatusCode)
	}

	var results []model.SymbolSearchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		c.logger.Error("Failed to decode symbol search response", zap.Error(err))
		return nil, fmt.Errorf("failed to decode symbol search response: %w", err)
	}

	// The endpoint wraps matched fragments in <em> highlight tags
	for i := range results {
		results[i].Symbol = stripHighlight(results[i].Symbol)
		results[i].Description = stripHighlight(results[i].Description)
	}

	return results, nil
}

func stripHighlight(s string) string {
	s = strings.ReplaceAll(s, "<em>", "")
	return strings.ReplaceAll(s, "</em>", "")
}
