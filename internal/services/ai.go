package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/yukikurage/taskquest-api/internal/constants"
)

type AIService struct {
	client *openai.Client
	now    func() time.Time
}

type GeneratedTask struct {
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Difficulty       int        `json:"difficulty"`
	EstimatedMinutes int        `json:"estimated_minutes"`
	DueDate          *time.Time `json:"due_date"`
}

// NewAIService returns a service backed by OpenAI. With an empty key the
// service reports itself unavailable.
func NewAIService(apiKey string) *AIService {
	if apiKey == "" {
		return &AIService{now: time.Now}
	}
	return NewAIServiceWithConfig(openai.DefaultConfig(apiKey))
}

// NewAIServiceWithConfig builds the service from a full client config.
func NewAIServiceWithConfig(config openai.ClientConfig) *AIService {
	return &AIService{
		client: openai.NewClientWithConfig(config),
		now:    time.Now,
	}
}

// Enabled reports whether an OpenAI client is configured.
func (s *AIService) Enabled() bool {
	return s != nil && s.client != nil
}

// GenerateTasksFromText drafts tasks from free text using OpenAI GPT
func (s *AIService) GenerateTasksFromText(ctx context.Context, text string) ([]GeneratedTask, error) {
	if !s.Enabled() {
		return nil, ErrAIUnavailable
	}

	currentTime := s.now().Format(time.RFC3339)
	prompt := fmt.Sprintf(`You are a task planning assistant. Extract concrete, actionable tasks from the text below.

Current time: %s

Text:
%s

Return a JSON array of tasks in this shape:
[
  {
    "title": "short task title",
    "description": "what needs to be done",
    "difficulty": 3,
    "estimated_minutes": 90,
    "due_date": "deadline in ISO8601, e.g. 2025-10-28T23:59:59Z, or null when none is stated"
  }
]

Rules:
- Return [] when the text contains no tasks
- difficulty is an integer from 1 (trivial) to 10 (very hard)
- Convert relative deadlines ("tomorrow", "next week") to absolute times
- due_date must be an ISO8601 string or null
- Return only JSON, no prose`, currentTime, text)

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: openai.GPT4o,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: 0.3,
		},
	)
	if err != nil {
		return nil, ErrTaskGenerationFailed.WithCause(fmt.Errorf("OpenAI API error: %w", err))
	}

	if len(resp.Choices) == 0 {
		return nil, ErrTaskGenerationFailed.WithCause(fmt.Errorf("no response from OpenAI"))
	}

	tasks, err := parseGeneratedTasks(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, ErrTaskGenerationFailed.WithCause(err)
	}
	return tasks, nil
}

func parseGeneratedTasks(content string) ([]GeneratedTask, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var tasks []GeneratedTask
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &tasks); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}

	cleaned := make([]GeneratedTask, 0, len(tasks))
	for _, task := range tasks {
		task.Title = strings.TrimSpace(task.Title)
		if task.Title == "" {
			continue
		}
		if task.Difficulty < constants.MinTaskDifficulty {
			task.Difficulty = constants.MinTaskDifficulty
		}
		if task.Difficulty > constants.MaxTaskDifficulty {
			task.Difficulty = constants.MaxTaskDifficulty
		}
		if task.EstimatedMinutes < 0 {
			task.EstimatedMinutes = 0
		}
		cleaned = append(cleaned, task)
		if len(cleaned) == constants.MaxAIGeneratedTasks {
			break
		}
	}
	return cleaned, nil
}
