package summary

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/voicedesk/receptionist-service/internal/core/task"
	"github.com/voicedesk/receptionist-service/internal/domain"
	"github.com/voicedesk/receptionist-service/internal/repository"
	"github.com/voicedesk/receptionist-service/pkg/logger"
)

// Completer produces a JSON completion for a prompt pair.
type Completer interface {
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Notifier delivers a call summary to the business owner.
type Notifier interface {
	NotifyOwner(ctx context.Context, business *domain.Business, callID string, summary *domain.CallSummary) error
}

// Service generates structured call summaries from transcripts and delivers
// them to business owners.
type Service struct {
	repos    repository.RepositoryManager
	llm      Completer
	notifier Notifier
}

// NewService creates a new summary service.
func NewService(repos repository.RepositoryManager, llm Completer, notifier Notifier) *Service {
	return &Service{
		repos:    repos,
		llm:      llm,
		notifier: notifier,
	}
}

// llmSummary mirrors the JSON shape the model is asked to produce.
type llmSummary struct {
	Intent  string                 `json:"intent"`
	Details map[string]interface{} `json:"details"`
	Action  string                 `json:"action"`
}

func buildSystemPrompt(business *domain.Business) string {
	var b strings.Builder
	b.WriteString("You are an assistant that summarizes phone call transcripts for ")
	if business != nil && business.Name != "" {
		b.WriteString(business.Name)
	} else {
		b.WriteString("a small business")
	}
	if business != nil && business.BusinessType != "" {
		fmt.Fprintf(&b, " (a %s business)", business.BusinessType)
	}
	b.WriteString(".\n")
	b.WriteString("Analyze the transcript and respond with a JSON object with exactly these fields:\n")
	b.WriteString(`- "intent": a short phrase describing what the caller wanted` + "\n")
	b.WriteString(`- "details": an object with any relevant extracted facts (names, dates, services, amounts)` + "\n")
	b.WriteString(`- "action": one of "callback", "booking", "quote", "info"` + "\n")
	b.WriteString("Respond with JSON only.")
	return b.String()
}

// Generate produces a summary for a transcript. It never fails: any error
// from the model, transport, or parsing yields the fallback summary so that
// finalization of a call is not blocked on the LLM.
func (s *Service) Generate(ctx context.Context, business *domain.Business, transcript string) *domain.CallSummary {
	content, err := s.llm.CompleteJSON(ctx, buildSystemPrompt(business), transcript)
	if err != nil {
		logger.Base().Warn("Summary generation failed, using fallback", zap.Error(err))
		return domain.FallbackCallSummary()
	}

	var parsed llmSummary
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		logger.Base().Warn("Summary response was not valid JSON, using fallback",
			zap.Error(err), zap.String("content", content))
		return domain.FallbackCallSummary()
	}

	if parsed.Intent == "" {
		parsed.Intent = "unknown"
	}
	if parsed.Details == nil {
		parsed.Details = map[string]interface{}{}
	}

	return &domain.CallSummary{
		Intent:  parsed.Intent,
		Details: parsed.Details,
		Action:  domain.CoerceSummaryAction(parsed.Action),
	}
}

// Process handles one summarization task: generate the summary, persist it,
// and notify the owner. Failures are logged and never propagated so a bad
// task cannot wedge the processor.
func (s *Service) Process(ctx context.Context, t task.SummaryTask) {
	log := logger.Base().With(
		zap.String("call_id", t.CallID),
		zap.String("business_id", t.BusinessID))

	if t.Transcript == "" {
		log.Debug("Skipping summary for empty transcript")
		return
	}

	business, err := s.repos.Businesses().GetByID(ctx, t.BusinessID)
	if err != nil {
		log.Error("Failed to load business for summary", zap.Error(err))
		return
	}

	summary := s.Generate(ctx, business, t.Transcript)

	if err := s.repos.Calls().SaveSummary(ctx, t.CallID, summary); err != nil {
		log.Error("Failed to save call summary", zap.Error(err))
		return
	}
	log.Info("Call summary saved",
		zap.String("intent", summary.Intent),
		zap.String("action", string(summary.Action)))

	// Informational calls do not warrant an owner notification.
	if summary.Action == domain.SummaryActionInfo {
		log.Debug("Skipping notification for info action")
		return
	}
	if business == nil || s.notifier == nil {
		return
	}

	if err := s.notifier.NotifyOwner(ctx, business, t.CallID, summary); err != nil {
		log.Warn("Failed to notify business owner", zap.Error(err))
	}
}

// StartProcessor subscribes the service to the task bus. Without a bus the
// caller is expected to invoke Process directly in a goroutine.
func (s *Service) StartProcessor(ctx context.Context, bus task.Bus) error {
	return bus.Subscribe(ctx, func(t task.SummaryTask) {
		s.Process(ctx, t)
	})
}
