package quiz_api_client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/brainup-app/brainup/go/clients"
)

// QuizAPIClient wraps the quiz service's JSON-over-HTTP contracts. It is
// stateless; identity and round state live with the callers.
type QuizAPIClient struct {
	*clients.BaseClient
}

func NewQuizAPIClient(baseURL string) *QuizAPIClient {
	client := &QuizAPIClient{
		BaseClient: clients.NewBaseClient(baseURL),
	}
	return client
}

// StartResponse is the session-join acknowledgment. The caller persists
// PlayerID for every subsequent call.
type StartResponse struct {
	PlayerID string `json:"playerId"`
}

// SubmitAnswerRequest delivers one answer for the current round.
type SubmitAnswerRequest struct {
	QuestionID     int `json:"questionId"`
	SelectedAnswer int `json:"selectedAnswer"`
	TimeUsed       int `json:"timeUsed"`
}

// ChangeQuestionRequest triggers a question broadcast (admin only).
type ChangeQuestionRequest struct {
	QuestionNumber int `json:"questionNumber"`
}

// Start joins the quiz room with the given form fields and returns the
// assigned participant identifier.
func (c *QuizAPIClient) Start(ctx context.Context, fields map[string]string) (*StartResponse, error) {
	body, err := c.postJSON(ctx, StartPath, fields)
	if err != nil {
		return nil, fmt.Errorf("start quiz: %w", err)
	}

	var resp StartResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode start response: %w", err)
	}
	if resp.PlayerID == "" {
		return nil, fmt.Errorf("start response missing playerId")
	}
	return &resp, nil
}

// Exit leaves the quiz room. No body and no content type, by contract.
func (c *QuizAPIClient) Exit(ctx context.Context, playerID string) error {
	endpoint := fmt.Sprintf(ExitPathFormat, url.PathEscape(playerID))
	if _, err := c.Post(ctx, endpoint, nil); err != nil {
		return fmt.Errorf("exit quiz: %w", err)
	}
	return nil
}

// Question fetches the raw DTO for one question by sequence number.
func (c *QuizAPIClient) Question(ctx context.Context, number int) ([]byte, error) {
	return c.Get(ctx, fmt.Sprintf(QuestionPathFormat, number))
}

// Questions fetches the raw full question list.
func (c *QuizAPIClient) Questions(ctx context.Context) ([]byte, error) {
	return c.Get(ctx, QuestionsPath)
}

// SubmitAnswer implements round.AnswerSubmitter.
func (c *QuizAPIClient) SubmitAnswer(ctx context.Context, questionID, selectedAnswer, timeUsedSec int) error {
	req := SubmitAnswerRequest{
		QuestionID:     questionID,
		SelectedAnswer: selectedAnswer,
		TimeUsed:       timeUsedSec,
	}
	if _, err := c.postJSON(ctx, SubmitAnswerPath, req); err != nil {
		return fmt.Errorf("submit answer: %w", err)
	}
	return nil
}

// ChangeQuestion triggers a question.changed broadcast to every subscriber.
func (c *QuizAPIClient) ChangeQuestion(ctx context.Context, questionNumber int) error {
	req := ChangeQuestionRequest{QuestionNumber: questionNumber}
	if _, err := c.postJSON(ctx, ChangeQuestionPath, req); err != nil {
		return fmt.Errorf("change question: %w", err)
	}
	return nil
}

// AdminStreamURL is the admin event-stream subscription URL.
func (c *QuizAPIClient) AdminStreamURL() string {
	return c.BaseURL() + AdminStreamPath
}

// PlayerStreamURL is the participant event-stream subscription URL.
func (c *QuizAPIClient) PlayerStreamURL(playerID string) string {
	return c.BaseURL() + PlayerStreamPath + "?playerId=" + url.QueryEscape(playerID)
}

func (c *QuizAPIClient) postJSON(ctx context.Context, endpoint string, v interface{}) ([]byte, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}
	return c.Post(ctx, endpoint, bytes.NewReader(payload))
}
