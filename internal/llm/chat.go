package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/faturai/faturai/internal/common"
)

// chatCompletionResponse is the shared response shape of the OpenAI-style
// chat completions API, which both the OpenAI and DeepSeek backends speak.
type chatCompletionResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
		Index        int    `json:"index"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout: requestTimeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// doChatCompletion posts a chat completions request and returns the reply
// content. Errors are wrapped in RetryableError so the caller's retry loop
// can tell transient failures (timeouts, 5xx, rate limits) from permanent
// ones (auth, malformed request).
func doChatCompletion(ctx context.Context, client *http.Client, url, apiKey, model string, systemPrompt, userText string, temperature float64, maxTokens int) (string, error) {
	requestBody := map[string]any{
		"model": model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": userText},
		},
		"temperature": temperature,
		"max_tokens":  maxTokens,
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return "", &common.RetryableError{Err: fmt.Errorf("failed to marshal request: %w", err), Retryable: false}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(jsonBody)))
	if err != nil {
		return "", &common.RetryableError{Err: fmt.Errorf("failed to create request: %w", err), Retryable: false}
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := client.Do(req)
	if err != nil {
		// Network errors and timeouts are worth another attempt.
		return "", &common.RetryableError{Err: fmt.Errorf("request failed: %w", err), Retryable: true}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &common.RetryableError{Err: fmt.Errorf("failed to read response: %w", err), Retryable: true}
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		// The sentinel tells the retry loop to back off at the max delay.
		rateErr := fmt.Errorf("%w: %s", common.ErrRateLimit, string(body))
		return "", &common.RetryableError{Err: rateErr, Retryable: true}
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
		return "", &common.RetryableError{Err: apiErr, Retryable: retryableStatus(resp.StatusCode)}
	}

	var response chatCompletionResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", &common.RetryableError{Err: fmt.Errorf("failed to parse response: %w", err), Retryable: true}
	}

	if len(response.Choices) == 0 {
		return "", &common.RetryableError{Err: fmt.Errorf("no completion choices returned"), Retryable: true}
	}

	return response.Choices[0].Message.Content, nil
}

// retryableStatus reports whether a non-429 HTTP status is transient. Auth
// and malformed-request failures will not get better on the next attempt.
func retryableStatus(status int) bool {
	return status == http.StatusRequestTimeout || status >= 500
}
