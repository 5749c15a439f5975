package service

import (
	"context"
	"fmt"

	"github.com/windoze95/dapur-api/internal/ai"
	"github.com/windoze95/dapur-api/internal/config"
	"github.com/windoze95/dapur-api/internal/logger"
	"github.com/windoze95/dapur-api/internal/models"
	"github.com/windoze95/dapur-api/internal/repository"
	"go.uber.org/zap"
)

// Generation settings for chef answers.
const (
	ChefMaxOutputTokens = 250
	ChefTemperature     = 0.2
)

const exhaustedNotice = "Maaf, Chef AI sedang tidak dapat dihubungi (Error: %v). Saya coba jawab singkat: \n"

// Answer is a chef reply together with how it was produced.
type Answer struct {
	Text    string     `json:"text"`
	Outcome ai.Outcome `json:"-"`
	Model   string     `json:"model,omitempty"`
}

// ChefService answers cooking questions with the Chef AI persona and keeps
// each user's conversation log.
type ChefService struct {
	Prompts *config.Prompts
	Gen     Generator
	Chats   repository.ConversationRepo
}

// NewChefService is the constructor function for initializing a new ChefService.
func NewChefService(prompts *config.Prompts, gen Generator, chats repository.ConversationRepo) *ChefService {
	if prompts == nil {
		prompts = config.DefaultPrompts()
	}
	return &ChefService{
		Prompts: prompts,
		Gen:     gen,
		Chats:   chats,
	}
}

// Ask answers question for username. It always returns an answer.
func (s *ChefService) Ask(ctx context.Context, question, username string) string {
	return s.Answer(ctx, question, username).Text
}

// Answer is Ask with the generation outcome attached. The question is
// logged before any model call so it is kept even if answering fails.
func (s *ChefService) Answer(ctx context.Context, question, username string) Answer {
	s.Chats.Append(username, models.RoleUser, question)
	log := logger.ForUser(username)

	var res ai.Result
	prompt, err := config.RenderPrompt(s.Prompts.Chef.Persona, map[string]interface{}{
		"Question": question,
		"Username": username,
	})
	if err != nil {
		log.Error("failed to render chef persona prompt", zap.Error(err))
		res = ai.Result{Outcome: ai.OutcomeUnavailable}
	} else {
		res = generate(ctx, s.Gen, ai.GenerationRequest{
			Prompt:          prompt,
			MaxOutputTokens: ChefMaxOutputTokens,
			Temperature:     ChefTemperature,
		})
	}

	ans := Answer{Outcome: res.Outcome, Model: res.Model}
	switch res.Outcome {
	case ai.OutcomeSuccess:
		ans.Text = res.Text
	case ai.OutcomeExhausted:
		log.Warn("chef answered from fallback after model failures",
			zap.Int("attempts", len(res.Attempts)), zap.Error(res.Err))
		ans.Text = fmt.Sprintf(exhaustedNotice, res.Err) + FallbackAnswer(question)
	default:
		ans.Text = FallbackAnswer(question)
	}

	s.Chats.Append(username, models.RoleAssistant, ans.Text)
	return ans
}

// History returns the conversation log of username, oldest first.
func (s *ChefService) History(username string) []models.ChatMessage {
	return s.Chats.History(username)
}

// ClearHistory empties the conversation log of username. It reports whether
// there was a log to clear.
func (s *ChefService) ClearHistory(username string) bool {
	return s.Chats.Clear(username)
}
