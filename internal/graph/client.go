package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/graph-gophers/dataloader/v7"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	followingCacheSize = 4096
	loaderWait         = 2 * time.Millisecond
)

// Client - HTTP-клиент сервиса графа (GET /following?user=...,
// в ответе JSON-массив идентификаторов). Одновременные запросы одного
// и того же пользователя схлопываются через dataloader, готовые
// множества подписок живут в LRU с TTL.
type Client struct {
	base   string
	http   *retryablehttp.Client
	cache  *expirable.LRU[string, []string]
	loader *dataloader.Loader[string, []string]
}

func NewClient(baseURL string, cacheTTL time.Duration) *Client {
	httpClient := retryablehttp.NewClient()
	httpClient.RetryMax = 3
	httpClient.Logger = nil

	c := &Client{
		base:  baseURL,
		http:  httpClient,
		cache: expirable.NewLRU[string, []string](followingCacheSize, nil, cacheTTL),
	}
	// Кэш dataloader-а отключен: межзапросное кэширование делает LRU
	// с TTL, loader нужен только для слияния одновременных загрузок.
	c.loader = dataloader.NewBatchedLoader(c.batchFollowing,
		dataloader.WithCache[string, []string](&dataloader.NoCache[string, []string]{}),
		dataloader.WithWait[string, []string](loaderWait),
	)
	return c
}

func (c *Client) Following(ctx context.Context, userID string) ([]string, error) {
	if ids, ok := c.cache.Get(userID); ok {
		return ids, nil
	}

	ids, err := c.loader.Load(ctx, userID)()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve following for %s: %w", userID, err)
	}

	c.cache.Add(userID, ids)
	return ids, nil
}

func (c *Client) batchFollowing(ctx context.Context, userIDs []string) []*dataloader.Result[[]string] {
	results := make([]*dataloader.Result[[]string], len(userIDs))

	var wg sync.WaitGroup
	for i, userID := range userIDs {
		wg.Add(1)
		go func(i int, userID string) {
			defer wg.Done()
			ids, err := c.fetchFollowing(ctx, userID)
			results[i] = &dataloader.Result[[]string]{Data: ids, Error: err}
		}(i, userID)
	}
	wg.Wait()

	return results
}

func (c *Client) fetchFollowing(ctx context.Context, userID string) ([]string, error) {
	reqURL := c.base + "/following?user=" + url.QueryEscape(userID)
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// Неизвестный сервису пользователь ни на кого не подписан.
	if resp.StatusCode == http.StatusNotFound {
		return []string{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("graph service returned status %d", resp.StatusCode)
	}

	var ids []string
	if err := json.NewDecoder(resp.Body).Decode(&ids); err != nil {
		return nil, fmt.Errorf("failed to decode graph response: %v", err)
	}
	return ids, nil
}
