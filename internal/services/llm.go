package services

import (
	"civicpulse/internal/config"
	"civicpulse/internal/utils"
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/prompts"
)

var ErrAIDisabled = errors.New("services: AI client not configured")

// NewLLM 根据配置创建 OpenAI 兼容的模型客户端。未配置 token 时返回 nil, nil。
func NewLLM(cfg config.Config) (llms.Model, error) {
	if !cfg.AIEnabled() {
		return nil, nil
	}
	opts := []openai.Option{openai.WithToken(cfg.LLMToken)}
	if cfg.LLMModel != "" {
		opts = append(opts, openai.WithModel(cfg.LLMModel))
	}
	if cfg.LLMBaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.LLMBaseURL))
	}
	model, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("services: init llm: %w", err)
	}
	return model, nil
}

var briefPrompt = prompts.NewPromptTemplate(`You are a neutral civic analyst for constituency {{.constituency}}.
Summarise today's ({{.civic_day}}) public signals below for residents in at most 5 short sentences.
Do not take sides, do not speculate, and do not name citizens. Mention elections and expiring terms first,
then public sentiment, then what people are discussing, then what is new or resolved.
If every list is empty, say that it was a quiet day.

Signals (JSON):
{{.signals}}`, []string{"constituency", "civic_day", "signals"})

var replyPrompt = prompts.NewPromptTemplate(`You are a neutral assistant in a public policy discussion.
Policy: {{.title}}
Representative statement: {{.statement}}
{{- if .opposition}}
Opposition statement: {{.opposition}}
{{- end}}

A citizen asked: {{.question}}

Answer factually in at most 4 sentences using only the information above. If it is not enough, say so.`,
	[]string{"title", "statement", "opposition", "question"})

// complete 渲染模板并调用模型，返回去掉首尾空白的文本
func complete(ctx context.Context, model llms.Model, tmpl prompts.PromptTemplate, values map[string]any) (string, error) {
	if model == nil {
		return "", ErrAIDisabled
	}
	prompt, err := tmpl.Format(values)
	if err != nil {
		return "", fmt.Errorf("services: render prompt: %w", err)
	}
	out, err := llms.GenerateFromSinglePrompt(ctx, model, prompt, llms.WithTemperature(0.2))
	if err != nil {
		return "", fmt.Errorf("services: llm call: %w", err)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", errors.New("services: llm returned empty text")
	}
	return out, nil
}

var mentionPattern = regexp.MustCompile(`(?i)` + regexp.QuoteMeta(utils.AIMention))

// stripMention 去掉评论中的 @ai 标记，作为提问文本
func stripMention(content string) string {
	return strings.Join(strings.Fields(mentionPattern.ReplaceAllString(content, " ")), " ")
}
