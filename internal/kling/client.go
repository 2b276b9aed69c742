package kling

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"videobot/internal/infra"
)

const defaultBaseURL = "https://api-singapore.klingai.com"

// Fixed rendering parameters; they are static configuration, not user input.
const (
	modelName     = "kling-v1-6"
	videoMode     = "pro"
	videoDuration = "5"
	cfgScale      = 0.5
)

// Options configures the Kling image-to-video client.
type Options struct {
	BaseURL        string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client performs HTTP calls to the Kling image2video API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *infra.Logger
}

// TaskView is the normalized result of one status query.
type TaskView struct {
	Status   string
	VideoURL string
}

type createTaskRequest struct {
	ModelName string  `json:"model_name"`
	Mode      string  `json:"mode"`
	Duration  string  `json:"duration"`
	Image     string  `json:"image"`
	Prompt    string  `json:"prompt"`
	CfgScale  float64 `json:"cfg_scale"`
}

type createTaskResponse struct {
	Data struct {
		TaskID string `json:"task_id"`
	} `json:"data"`
}

type taskStatusResponse struct {
	Data struct {
		TaskStatus string `json:"task_status"`
		Status     string `json:"status"`
		TaskResult struct {
			Videos []struct {
				URL string `json:"url"`
			} `json:"videos"`
		} `json:"task_result"`
	} `json:"data"`
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		logger:     logger,
	}
}

// CreateTask submits one image-to-video job and returns the assigned task id.
// Inputs are validated before any network call; failures are terminal for this
// call, retry policy belongs to the caller.
func (c *Client) CreateTask(ctx context.Context, image []byte, prompt string, cred Credential) (string, error) {
	if len(image) == 0 {
		return "", errors.New("kling: image payload is required")
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("kling: prompt is required")
	}

	payload := createTaskRequest{
		ModelName: modelName,
		Mode:      videoMode,
		Duration:  videoDuration,
		Image:     base64.StdEncoding.EncodeToString(image),
		Prompt:    prompt,
		CfgScale:  cfgScale,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("kling: encode request: %w", err)
	}

	endpoint := c.baseURL + "/v1/videos/image2video"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("kling: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cred.Token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &SubmissionError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &SubmissionError{Err: fmt.Errorf("read response: %w", err)}
	}
	if resp.StatusCode >= 300 {
		c.logger.Error().
			Int("status", resp.StatusCode).
			Str("body", strings.TrimSpace(string(raw))).
			Msg("kling: create task rejected")
		return "", &SubmissionError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var decoded createTaskResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMissingTaskID, err)
	}
	taskID := strings.TrimSpace(decoded.Data.TaskID)
	if taskID == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingTaskID, strings.TrimSpace(string(raw)))
	}

	c.logger.Debug().Str("task_id", taskID).Msg("kling: task created")
	return taskID, nil
}

// TaskStatus queries the current state of a task. The remote reports either
// task_status or status depending on API version; both are honored.
func (c *Client) TaskStatus(ctx context.Context, taskID string, cred Credential) (TaskView, error) {
	endpoint := c.baseURL + "/v1/videos/image2video/" + taskID
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return TaskView{}, fmt.Errorf("kling: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+cred.Token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return TaskView{}, &PollError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return TaskView{}, &PollError{Err: fmt.Errorf("read response: %w", err)}
	}
	if resp.StatusCode >= 300 {
		c.logger.Error().
			Int("status", resp.StatusCode).
			Str("task_id", taskID).
			Str("body", strings.TrimSpace(string(raw))).
			Msg("kling: status query rejected")
		return TaskView{}, &PollError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var decoded taskStatusResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return TaskView{}, &PollError{Err: fmt.Errorf("decode response: %w", err)}
	}

	status := decoded.Data.TaskStatus
	if status == "" {
		status = decoded.Data.Status
	}
	view := TaskView{Status: status, VideoURL: firstVideoURL(decoded)}
	return view, nil
}

func firstVideoURL(resp taskStatusResponse) string {
	for _, video := range resp.Data.TaskResult.Videos {
		if url := strings.TrimSpace(video.URL); url != "" {
			return url
		}
	}
	return ""
}
