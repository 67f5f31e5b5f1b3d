package inference

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"urbanfix-backend/internal/logger"
	"urbanfix-backend/internal/storage"

	"github.com/sirupsen/logrus"
)

// ErrInvalidResponse indicates the detection service replied with something
// other than a JSON object.
var ErrInvalidResponse = errors.New("inference did not return a valid object response")

// Client wraps the hosted object-detection API. Infer persists the upload to
// a temp file first (the processed-image bookkeeping downstream expects the
// bytes on disk) and degrades remote failures to an empty result: callers
// must treat zero predictions as a valid non-error outcome.
type Client interface {
	Infer(ctx context.Context, imageBytes []byte) (result map[string]interface{}, tempPath string, err error)
}

type httpClient struct {
	endpoint string
	apiKey   string
	store    storage.FileStore
	client   *http.Client
}

// Options configures the inference client.
type Options struct {
	// Endpoint is the full model URL, e.g. https://detect.roboflow.com/yolov8-3hm9w/1
	Endpoint string
	APIKey   string
	Timeout  time.Duration
}

// NewClient creates an inference client backed by the hosted detection API.
func NewClient(opts Options, store storage.FileStore) Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &httpClient{
		endpoint: opts.Endpoint,
		apiKey:   opts.APIKey,
		store:    store,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:          10,
				MaxIdleConnsPerHost:   2,
				IdleConnTimeout:       30 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: timeout,
			},
		},
	}
}

func (c *httpClient) Infer(ctx context.Context, imageBytes []byte) (map[string]interface{}, string, error) {
	tempPath, err := c.store.SaveTemp(imageBytes)
	if err != nil {
		// Without the temp file the request cannot proceed; this is the one
		// hard failure the gateway surfaces.
		return nil, "", fmt.Errorf("failed to persist upload: %w", err)
	}
	logger.WithField("path", tempPath).Info("Saved temporary image for inference")

	result, err := c.callRemote(ctx, tempPath)
	if err != nil {
		logger.WithError(err).Error("Inference failed")
		if rmErr := c.store.Remove(tempPath); rmErr != nil && !os.IsNotExist(rmErr) {
			logger.WithError(rmErr).WithField("path", tempPath).Warn("Failed to remove temp image after inference failure")
		}
		// Degrade to an empty prediction set rather than failing the request.
		return map[string]interface{}{}, tempPath, nil
	}

	if preds, ok := result["predictions"].([]interface{}); ok {
		logger.WithField("predictions", len(preds)).Info("Inference completed")
	} else {
		logger.Info("Inference completed with no predictions key")
	}
	return result, tempPath, nil
}

// callRemote posts the image and parses the response, retrying once on
// transport errors and 5xx responses.
func (c *httpClient) callRemote(ctx context.Context, imagePath string) (map[string]interface{}, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Second):
			}
			logger.WithField("attempt", attempt+1).Warn("Retrying inference request")
		}

		result, retryable, err := c.doRequest(ctx, imagePath)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
	}
	return nil, lastErr
}

func (c *httpClient) doRequest(ctx context.Context, imagePath string) (map[string]interface{}, bool, error) {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read image file: %w", err)
	}

	// The hosted API takes the image as a base64 form body.
	body := base64.StdEncoding.EncodeToString(data)
	reqURL := fmt.Sprintf("%s?api_key=%s", c.endpoint, url.QueryEscape(c.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, strings.NewReader(body))
	if err != nil {
		return nil, false, fmt.Errorf("failed to build inference request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("inference request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("failed to read inference response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		retryable := resp.StatusCode >= 500
		logger.WithFields(logrus.Fields{
			"status": resp.StatusCode,
			"body":   truncate(string(respBody), 256),
		}).Error("Inference service returned error status")
		return nil, retryable, fmt.Errorf("inference service returned status %d", resp.StatusCode)
	}

	var result map[string]interface{}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, false, ErrInvalidResponse
	}
	return result, false, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
