// Package analysis talks to the remote speech-analysis service that scores lecture recordings.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/SAP-F-2025/lecture-service/internal/config"
)

const (
	audioFieldName  = "audio"
	maxErrorBodyLen = 512
)

// Result carries the metrics returned for one recording; every field may be absent
type Result struct {
	RequestID             *string  `json:"request_id"`
	Analysis              *string  `json:"analysis"`
	PedagogicalScore      *float64 `json:"pedagogical_score"`
	ScoreReasoning        *string  `json:"score_reasoning"`
	ProcessingTimeSeconds *float64 `json:"processing_time_seconds"`
	ReviewRatio           *float64 `json:"review_ratio"`
	QuestionVelocity      *float64 `json:"question_velocity"`
	WaitTime              *float64 `json:"wait_time"`
	TeacherTalkingTime    *float64 `json:"teacher_talking_time"`
	LanguageFluency       *float64 `json:"hinglish_fluency"`
}

type response struct {
	RequestID *string `json:"request_id"`
	Data      *Result `json:"data"`
}

// Analyzer scores an audio recording
type Analyzer interface {
	Analyze(ctx context.Context, filename string, audio io.Reader) (*Result, error)
}

// StatusError reports a non-2xx answer from the analysis service
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("analysis service returned status %d: %s", e.StatusCode, e.Body)
}

type Client struct {
	endpoint   string
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(cfg config.AnalysisConfig, logger *slog.Logger) *Client {
	return &Client{
		endpoint:   strings.TrimRight(cfg.BaseURL, "/") + "/" + strings.TrimLeft(cfg.Path, "/"),
		timeout:    cfg.Timeout,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// Analyze streams the audio as multipart part "audio" and decodes the metrics
func (c *Client) Analyze(ctx context.Context, filename string, audio io.Reader) (*Result, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		part, err := mw.CreateFormFile(audioFieldName, filepath.Base(filename))
		if err == nil {
			_, err = io.Copy(part, audio)
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, pr)
	if err != nil {
		_ = pr.Close()
		return nil, fmt.Errorf("failed to build analysis request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		_ = pr.Close()
		return nil, fmt.Errorf("analysis request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLen))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var decoded response
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode analysis response: %w", err)
	}

	result := decoded.Data
	if result == nil {
		result = &Result{}
	}
	if decoded.RequestID != nil {
		result.RequestID = decoded.RequestID
	}

	c.logger.InfoContext(ctx, "Audio analysis completed",
		"file", filepath.Base(filename),
		"duration_ms", time.Since(start).Milliseconds(),
		"has_score", result.PedagogicalScore != nil)

	return result, nil
}
