package adapters

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"storybook-generator/application/ports/outbound"
	"storybook-generator/domain"
	"time"
)

type ContentFetcher interface {
	FetchContent(req *http.Request) ([]byte, string, error)
	outbound.VideoDownloaderPort
}

type contentFetcher struct {
	client *http.Client
	logger outbound.LoggerPort
}

func NewContentFetcher(logger outbound.LoggerPort) ContentFetcher {
	return &contentFetcher{
		client: &http.Client{Timeout: 5 * time.Minute},
		logger: logger,
	}
}

func (c *contentFetcher) FetchContent(req *http.Request) ([]byte, string, error) {
	res, err := c.client.Do(req)
	if err != nil {
		c.logger.ErrorWithFields(err, "Failed to send the HTTP request", map[string]interface{}{
			"method": req.Method,
			"URL":    redactedURL(req),
		})
		return nil, "", err
	}

	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			c.logger.ErrorWithFields(err, "Failed to close the response body", map[string]interface{}{
				"method": req.Method,
				"URL":    redactedURL(req),
			})
		}
	}(res.Body)

	if res.StatusCode != http.StatusOK {
		bodyPayload, err := io.ReadAll(io.LimitReader(res.Body, 4096))
		c.logger.ErrorWithFields(err, "HTTP request returned non-OK status code", map[string]interface{}{
			"method":  req.Method,
			"URL":     redactedURL(req),
			"status":  res.StatusCode,
			"message": string(bodyPayload),
		})
		return nil, "", fmt.Errorf("%w: HTTP request returned non-OK status code: %d", domain.ErrProviderOperation, res.StatusCode)
	}

	payload, err := io.ReadAll(res.Body)
	if err != nil {
		c.logger.ErrorWithFields(err, "Failed to read the response body", map[string]interface{}{
			"method": req.Method,
			"URL":    redactedURL(req),
		})
		return nil, "", err
	}

	return payload, res.Header.Get("Content-Type"), nil
}

func (c *contentFetcher) Download(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		c.logger.Error(err, "Failed to create the HTTP request")
		return nil, "", err
	}

	payload, contentType, err := c.FetchContent(req)
	if err != nil {
		return nil, "", err
	}
	if contentType == "" {
		contentType = "video/mp4"
	}
	return payload, contentType, nil
}

func redactedURL(req *http.Request) string {
	u := *req.URL
	if query := u.Query(); query.Has("key") {
		query.Set("key", "REDACTED")
		u.RawQuery = query.Encode()
	}
	return u.String()
}
