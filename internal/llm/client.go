package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// GenerateRequest holds the parameters for an LLM generation call.
type GenerateRequest struct {
	Task         TaskType
	SystemPrompt string
	UserPrompt   string
	Temperature  *float64 // nil uses task default
	MaxTokens    *int     // nil uses task default
}

// GenerateResponse holds the result of an LLM generation call.
type GenerateResponse struct {
	Text      string
	Model     string
	LatencyMs int64
}

// DeltaFunc receives partial text while a streamed reply is in progress.
type DeltaFunc func(delta string)

// LLMClient provides access to a language model for text generation.
type LLMClient interface {
	// Generate sends a prompt and returns the raw text response.
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)

	// Stream sends a prompt and reports partial text to onDelta as it arrives.
	// The returned response carries the complete text.
	Stream(ctx context.Context, req GenerateRequest, onDelta DeltaFunc) (*GenerateResponse, error)

	// Available checks whether the endpoint is reachable with the configured key.
	Available(ctx context.Context) bool
}

// openAIClient implements LLMClient against an OpenAI-compatible
// chat completions API. Calls are never retried.
type openAIClient struct {
	cfg      LLMConfig
	http     *http.Client
	observer Observer
}

// NewOpenAIClient creates an LLMClient for an OpenAI-compatible endpoint.
func NewOpenAIClient(cfg LLMConfig, observer Observer) LLMClient {
	if observer == nil {
		observer = NoopObserver{}
	}
	return &openAIClient{
		cfg: cfg,
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
			},
		},
		observer: observer,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest is the JSON body sent to POST /chat/completions.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Stream      bool          `json:"stream"`
}

// chatResponse is the JSON body returned by a non-streaming completion.
type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// chatChunk is one server-sent event of a streaming completion.
type chatChunk struct {
	Model   string `json:"model"`
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (c *openAIClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	return c.complete(ctx, req, false, nil)
}

func (c *openAIClient) Stream(ctx context.Context, req GenerateRequest, onDelta DeltaFunc) (*GenerateResponse, error) {
	return c.complete(ctx, req, true, onDelta)
}

func (c *openAIClient) complete(ctx context.Context, req GenerateRequest, stream bool, onDelta DeltaFunc) (*GenerateResponse, error) {
	if !c.cfg.HasCredential() {
		return nil, ErrMissingCredential
	}

	start := time.Now()
	body := c.buildBody(req, stream)

	timeoutMs := c.cfg.TaskTimeout(req.Task)
	callCtx, cancel := context.WithTimeout(ctx, time.Duration(timeoutMs)*time.Millisecond)
	defer cancel()

	var (
		text  string
		model string
		err   error
	)
	if stream {
		text, model, err = c.doStream(callCtx, body, onDelta)
	} else {
		text, model, err = c.doRequest(callCtx, body)
	}

	latency := time.Since(start).Milliseconds()
	if err != nil {
		err = classifyError(callCtx, err)
		c.observer.OnCallComplete(LLMCallEvent{
			Task:      req.Task,
			Model:     body.Model,
			LatencyMs: latency,
			Success:   false,
			Streamed:  stream,
			ErrorCode: errorCode(err),
		})
		return nil, err
	}

	if model == "" {
		model = body.Model
	}
	c.observer.OnCallComplete(LLMCallEvent{
		Task:      req.Task,
		Model:     model,
		LatencyMs: latency,
		Success:   true,
		Streamed:  stream,
	})
	return &GenerateResponse{Text: text, Model: model, LatencyMs: latency}, nil
}

func (c *openAIClient) buildBody(req GenerateRequest, stream bool) chatRequest {
	taskCfg := c.cfg.Task(req.Task)
	temp := taskCfg.Temperature
	if req.Temperature != nil {
		temp = *req.Temperature
	}
	maxTok := taskCfg.MaxTokens
	if req.MaxTokens != nil {
		maxTok = *req.MaxTokens
	}

	var messages []chatMessage
	if req.SystemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.SystemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.UserPrompt})

	return chatRequest{
		Model:       c.cfg.TaskModel(req.Task),
		Messages:    messages,
		Temperature: temp,
		MaxTokens:   maxTok,
		Stream:      stream,
	}
}

func (c *openAIClient) newRequest(ctx context.Context, body chatRequest) (*http.Request, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	if body.Stream {
		httpReq.Header.Set("Accept", "text/event-stream")
	}
	return httpReq, nil
}

func (c *openAIClient) doRequest(ctx context.Context, body chatRequest) (string, string, error) {
	httpReq, err := c.newRequest(ctx, body)
	if err != nil {
		return "", "", err
	}

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return "", "", err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", "", fmt.Errorf("reading response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return "", "", statusError(httpResp.StatusCode, respBody)
	}

	var resp chatResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", "", fmt.Errorf("%w: decoding response: %v", ErrRemoteCall, err)
	}
	if len(resp.Choices) == 0 {
		return "", "", fmt.Errorf("%w: response has no choices", ErrRemoteCall)
	}

	return resp.Choices[0].Message.Content, resp.Model, nil
}

func (c *openAIClient) doStream(ctx context.Context, body chatRequest, onDelta DeltaFunc) (string, string, error) {
	httpReq, err := c.newRequest(ctx, body)
	if err != nil {
		return "", "", err
	}

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return "", "", err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(httpResp.Body)
		return "", "", statusError(httpResp.StatusCode, respBody)
	}

	var (
		text  strings.Builder
		model string
	)
	scanner := bufio.NewScanner(httpResp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "[DONE]" {
			return text.String(), model, nil
		}

		var chunk chatChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			return "", "", fmt.Errorf("%w: decoding stream chunk: %v", ErrRemoteCall, err)
		}
		if chunk.Model != "" {
			model = chunk.Model
		}
		for _, choice := range chunk.Choices {
			if choice.Delta.Content == "" {
				continue
			}
			text.WriteString(choice.Delta.Content)
			if onDelta != nil {
				onDelta(choice.Delta.Content)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return "", "", err
	}

	// Some servers close the stream without the [DONE] sentinel.
	return text.String(), model, nil
}

func (c *openAIClient) Available(ctx context.Context) bool {
	if !c.cfg.HasCredential() {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/models"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func statusError(status int, body []byte) error {
	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		return fmt.Errorf("%w: status %d: %s", ErrRemoteCall, status, apiErr.Error.Message)
	}
	return fmt.Errorf("%w: status %d: %s", ErrRemoteCall, status, strings.TrimSpace(string(body)))
}

// classifyError maps transport failures onto the package sentinels.
func classifyError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, ErrRemoteCall):
		return err
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return ErrTimeout
	case errors.Is(ctx.Err(), context.Canceled):
		return fmt.Errorf("%w: %v", ErrRemoteCall, ctx.Err())
	case isConnectionError(err):
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	default:
		return fmt.Errorf("%w: %v", ErrRemoteCall, err)
	}
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var netErr *net.OpError
	return errors.As(err, &netErr)
}

func errorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout):
		return "TIMEOUT"
	case errors.Is(err, ErrUnavailable):
		return "UNAVAILABLE"
	case errors.Is(err, ErrMissingCredential):
		return "NO_CREDENTIAL"
	case errors.Is(err, ErrRemoteCall):
		return "REMOTE"
	default:
		return "UNKNOWN"
	}
}
