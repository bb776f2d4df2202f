// Package gemini is the shared handle to the Gemini API used for transcription,
// translation and frame labeling. It rotates through the configured API keys when one
// hits its quota and backs off once every key is exhausted.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"google.golang.org/genai"

	"github.com/nguyentantai21042004/video-digest/internal/logger"
)

// ErrKeysExhausted means every API key was rate limited within one attempt.
var ErrKeysExhausted = errors.New("all API keys exhausted")

// Generator is the capability handed to the stages that call Gemini.
type Generator interface {
	Generate(ctx context.Context, cfg *genai.GenerateContentConfig, parts ...*genai.Part) (string, error)
}

type callFunc func(ctx context.Context, apiKey string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (string, error)

type Client struct {
	mu         sync.Mutex
	apiKeys    []string
	currentKey int
	clients    map[string]*genai.Client

	model      string
	maxRetries int
	interval   time.Duration
	logger     logger.Logger

	call callFunc
}

// New creates a Client that rotates through apiKeys.
func New(apiKeys []string, model string, maxRetries int, log logger.Logger) *Client {
	if maxRetries < 0 {
		maxRetries = 0
	}
	c := &Client{
		apiKeys:    apiKeys,
		clients:    make(map[string]*genai.Client),
		model:      model,
		maxRetries: maxRetries,
		interval:   2 * time.Second,
		logger:     log,
	}
	c.call = c.callModel
	return c
}

// Generate sends one user turn made of parts and returns the concatenated text of the first
// candidate. An empty candidate is a valid, empty answer.
func (c *Client) Generate(ctx context.Context, cfg *genai.GenerateContentConfig, parts ...*genai.Part) (string, error) {
	if len(c.apiKeys) == 0 {
		return "", errors.New("gemini: no API keys configured")
	}

	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = c.interval
	exp.MaxInterval = 30 * c.interval

	return backoff.Retry(ctx, func() (string, error) {
		return c.rotate(ctx, contents, cfg)
	},
		backoff.WithBackOff(exp),
		// first attempt plus maxRetries retries
		backoff.WithMaxTries(uint(c.maxRetries)+1),
		backoff.WithNotify(func(err error, wait time.Duration) {
			c.logger.Warn(ctx, "Gemini call failed, retrying in %s: %v", wait.Round(time.Millisecond), err)
		}),
	)
}

// rotate tries each key at most once, moving on when a key is rate limited.
func (c *Client) rotate(ctx context.Context, contents []*genai.Content, cfg *genai.GenerateContentConfig) (string, error) {
	var lastErr error

	for range len(c.apiKeys) {
		key, slot := c.key()

		text, err := c.call(ctx, key, contents, cfg)
		if err == nil {
			return text, nil
		}
		if ctx.Err() != nil {
			return "", backoff.Permanent(ctx.Err())
		}
		if isRateLimited(err) {
			c.logger.Warn(ctx, "Key %d rate limited, rotating...", slot+1)
			c.rotateFrom(slot)
			lastErr = err
			continue
		}
		if isPermanent(err) {
			return "", backoff.Permanent(fmt.Errorf("generate content: %w", err))
		}
		return "", fmt.Errorf("generate content: %w", err)
	}

	return "", fmt.Errorf("%w: %w", ErrKeysExhausted, lastErr)
}

func (c *Client) key() (string, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.apiKeys[c.currentKey], c.currentKey
}

// rotateFrom advances past slot unless a concurrent caller already did.
func (c *Client) rotateFrom(slot int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.currentKey == slot {
		c.currentKey = (c.currentKey + 1) % len(c.apiKeys)
	}
}

func (c *Client) clientFor(ctx context.Context, key string) (*genai.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if client, ok := c.clients[key]; ok {
		return client, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	c.clients[key] = client
	return client, nil
}

func (c *Client) callModel(ctx context.Context, key string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (string, error) {
	client, err := c.clientFor(ctx, key)
	if err != nil {
		return "", err
	}

	result, err := client.Models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		return "", err
	}

	if result == nil || len(result.Candidates) == 0 {
		return "", errors.New("empty response from Gemini")
	}

	var text strings.Builder
	if content := result.Candidates[0].Content; content != nil {
		for _, part := range content.Parts {
			if part != nil && part.Text != "" {
				text.WriteString(part.Text)
			}
		}
	}
	return text.String(), nil
}

func isRateLimited(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "quota") ||
		strings.Contains(msg, "RESOURCE_EXHAUSTED")
}

func isPermanent(err error) bool {
	msg := err.Error()
	for _, status := range []string{"INVALID_ARGUMENT", "PERMISSION_DENIED", "UNAUTHENTICATED", "NOT_FOUND", "FAILED_PRECONDITION"} {
		if strings.Contains(msg, status) {
			return true
		}
	}
	return false
}
