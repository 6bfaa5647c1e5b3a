// Package evalclient calls the external AI evaluation service that scores
// interview answers.
package evalclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"interviewai/pkg/domain"
)

const defaultTimeout = 10 * time.Second

// Client calls the evaluation service over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// APIError represents an evaluation service error response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("evaluation service returned status %d", e.Status)
}

// NewClient constructs an evaluation service client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

type evaluateRequest struct {
	InterviewID string `json:"interviewId"`
	Question    string `json:"question"`
	AnswerText  string `json:"answerText"`
}

// Evaluate submits one answer for scoring. Every response field is
// optional; callers apply defaults when persisting.
func (c *Client) Evaluate(ctx context.Context, interviewID, question, answerText string) (domain.Evaluation, error) {
	body, err := json.Marshal(evaluateRequest{
		InterviewID: interviewID,
		Question:    question,
		AnswerText:  answerText,
	})
	if err != nil {
		return domain.Evaluation{}, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ai/evaluate", bytes.NewReader(body))
	if err != nil {
		return domain.Evaluation{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Evaluation{}, fmt.Errorf("call evaluation service: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		return domain.Evaluation{}, &APIError{Status: resp.StatusCode, Message: errResp.Error}
	}
	var evaluation domain.Evaluation
	if err := json.NewDecoder(resp.Body).Decode(&evaluation); err != nil {
		return domain.Evaluation{}, fmt.Errorf("decode evaluation: %w", err)
	}
	return evaluation, nil
}
