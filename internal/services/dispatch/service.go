package dispatch

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/voicedesk/receptionist-service/internal/core/task"
	"github.com/voicedesk/receptionist-service/internal/domain"
	"github.com/voicedesk/receptionist-service/internal/repository"
	"github.com/voicedesk/receptionist-service/pkg/logger"
)

// SummaryProcessor runs a summarization task inline. Used as the fallback
// path when no task bus is configured.
type SummaryProcessor interface {
	Process(ctx context.Context, t task.SummaryTask)
}

type eventHandler func(ctx context.Context, event *WebhookEvent) error

// ToolHandler executes one named tool invocation side effect.
type ToolHandler func(ctx context.Context, call *domain.Call, params map[string]interface{}) error

// Dispatcher routes webhook events from the voice platform to the matching
// call-lifecycle handler.
type Dispatcher struct {
	repos     repository.RepositoryManager
	bus       task.Bus
	processor SummaryProcessor

	handlers map[string]eventHandler
	tools    map[string]ToolHandler
}

// NewDispatcher creates a dispatcher. bus may be nil, in which case
// summarization runs in a local goroutine via processor.
func NewDispatcher(repos repository.RepositoryManager, bus task.Bus, processor SummaryProcessor) *Dispatcher {
	d := &Dispatcher{
		repos:     repos,
		bus:       bus,
		processor: processor,
	}
	d.handlers = map[string]eventHandler{
		EventCallStart:    d.handleCallStart,
		EventCallEnd:      d.handleCallEnd,
		EventStatusUpdate: d.handleStatusUpdate,
		EventTranscript:   d.handleTranscript,
		EventFunctionCall: d.handleFunctionCall,
	}
	d.tools = map[string]ToolHandler{
		ToolBookAppointment:     d.bookAppointment,
		ToolExtractCustomerInfo: d.extractCustomerInfo,
	}
	return d
}

// RegisterTool adds a named tool handler. Registering an existing name
// replaces the previous handler.
func (d *Dispatcher) RegisterTool(name string, handler ToolHandler) {
	d.tools[name] = handler
}

// Dispatch routes one event. Unknown event types are logged and ignored so
// the webhook endpoint can acknowledge everything the provider sends.
func (d *Dispatcher) Dispatch(ctx context.Context, event *WebhookEvent) error {
	if err := event.Validate(); err != nil {
		return err
	}

	handler, ok := d.handlers[event.Type]
	if !ok {
		logger.Base().Info("Unhandled webhook event type", zap.String("type", event.Type))
		return nil
	}
	return handler(ctx, event)
}

func (d *Dispatcher) handleCallStart(ctx context.Context, event *WebhookEvent) error {
	if event.Call == nil || event.Call.ID == "" {
		return fmt.Errorf("call-start event missing call payload")
	}
	payload := event.Call

	business, err := d.resolveBusiness(ctx, payload.To)
	if err != nil {
		return err
	}
	if business == nil {
		// Best effort: an orphan call with no tenant is worse than a
		// dropped event.
		logger.Base().Warn("No business found for callee number, dropping call-start",
			zap.String("vapi_call_id", payload.ID),
			zap.String("to", payload.To))
		return nil
	}

	direction := domain.CallDirection(payload.Direction)
	if direction == "" {
		direction = domain.CallDirectionInbound
	}

	call := &domain.Call{
		VapiCallID:   payload.ID,
		BusinessID:   business.ID,
		CallerPhone:  payload.From,
		Direction:    direction,
		Status:       domain.CallStatusAnswered,
		Timestamp:    time.Now().UTC(),
		VapiMetadata: payload.metadata(),
	}
	if err := d.repos.Calls().Create(ctx, call); err != nil {
		return fmt.Errorf("failed to record call start: %w", err)
	}

	logger.Base().Info("Call started",
		zap.String("vapi_call_id", payload.ID),
		zap.String("business", business.Name))
	return nil
}

func (d *Dispatcher) handleCallEnd(ctx context.Context, event *WebhookEvent) error {
	if event.Call == nil || event.Call.ID == "" {
		return fmt.Errorf("call-end event missing call payload")
	}
	payload := event.Call

	updates := map[string]interface{}{
		"status":        domain.CallStatusCompleted,
		"duration":      int(payload.Duration),
		"audio_url":     payload.RecordingURL,
		"transcript":    payload.Transcript,
		"vapi_metadata": payload.metadata(),
	}
	if err := d.repos.Calls().UpdateByVapiCallID(ctx, payload.ID, updates); err != nil {
		return fmt.Errorf("failed to finalize call: %w", err)
	}

	logger.Base().Info("Call ended",
		zap.String("vapi_call_id", payload.ID),
		zap.Int("duration", int(payload.Duration)))

	if payload.Transcript == "" {
		return nil
	}

	call, err := d.repos.Calls().GetByVapiCallID(ctx, payload.ID)
	if err != nil || call == nil {
		return fmt.Errorf("failed to load finalized call %s: %w", payload.ID, err)
	}

	d.enqueueSummary(ctx, task.SummaryTask{
		Type:       task.TaskTypeSummarize,
		CallID:     call.ID,
		BusinessID: call.BusinessID,
		Transcript: payload.Transcript,
	})
	return nil
}

func (d *Dispatcher) handleStatusUpdate(ctx context.Context, event *WebhookEvent) error {
	if event.Call == nil || event.Call.ID == "" {
		return fmt.Errorf("status-update event missing call payload")
	}
	payload := event.Call

	updates := map[string]interface{}{
		"status":        domain.MapProviderCallStatus(payload.Status),
		"vapi_metadata": payload.metadata(),
	}
	if err := d.repos.Calls().UpdateByVapiCallID(ctx, payload.ID, updates); err != nil {
		return fmt.Errorf("failed to update call status: %w", err)
	}
	return nil
}

func (d *Dispatcher) handleTranscript(ctx context.Context, event *WebhookEvent) error {
	if event.Call == nil || event.Call.ID == "" || event.Message == nil || event.Message.Transcript == "" {
		return nil
	}

	updates := map[string]interface{}{
		"transcript": event.Message.Transcript,
	}
	if err := d.repos.Calls().UpdateByVapiCallID(ctx, event.Call.ID, updates); err != nil {
		return fmt.Errorf("failed to update transcript: %w", err)
	}
	return nil
}

func (d *Dispatcher) handleFunctionCall(ctx context.Context, event *WebhookEvent) error {
	if event.Message == nil || event.Message.FunctionCall == nil {
		return nil
	}
	if event.Call == nil || event.Call.ID == "" {
		return nil
	}
	fc := event.Message.FunctionCall

	call, err := d.repos.Calls().GetByVapiCallID(ctx, event.Call.ID)
	if err != nil {
		return fmt.Errorf("failed to load call for tool invocation: %w", err)
	}
	if call == nil {
		logger.Base().Warn("Tool invocation for unknown call",
			zap.String("vapi_call_id", event.Call.ID),
			zap.String("tool", fc.Name))
		return nil
	}

	handler, ok := d.tools[fc.Name]
	if !ok {
		logger.Base().Info("Unhandled tool invocation", zap.String("tool", fc.Name))
		return nil
	}
	return handler(ctx, call, fc.Parameters)
}

func (d *Dispatcher) bookAppointment(ctx context.Context, call *domain.Call, params map[string]interface{}) error {
	scheduledAt := time.Now().UTC()
	if raw := stringParam(params, "scheduledAt"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			scheduledAt = t
		} else {
			logger.Base().Warn("Unparseable scheduledAt in booking, using now",
				zap.String("scheduledAt", raw))
		}
	}

	appointment := &domain.Appointment{
		BusinessID:    call.BusinessID,
		CallID:        call.ID,
		CustomerName:  stringParam(params, "customerName"),
		CustomerPhone: stringParam(params, "customerPhone"),
		CustomerEmail: stringParam(params, "customerEmail"),
		ServiceType:   stringParam(params, "serviceType"),
		ScheduledAt:   scheduledAt,
		Notes:         stringParam(params, "notes"),
		Status:        domain.AppointmentStatusPending,
	}
	if err := d.repos.Appointments().Create(ctx, appointment); err != nil {
		return fmt.Errorf("failed to book appointment: %w", err)
	}

	logger.Base().Info("Appointment booked via call",
		zap.String("call_id", call.ID),
		zap.String("customer", appointment.CustomerName))
	return nil
}

func (d *Dispatcher) extractCustomerInfo(ctx context.Context, call *domain.Call, params map[string]interface{}) error {
	updates := map[string]interface{}{
		"extracted_info": domain.JSONB(params),
	}
	if err := d.repos.Calls().UpdateByVapiCallID(ctx, call.VapiCallID, updates); err != nil {
		return fmt.Errorf("failed to store extracted info: %w", err)
	}
	return nil
}

// resolveBusiness maps a callee phone number to a tenant. When several
// businesses share a forwarding number the oldest one wins.
func (d *Dispatcher) resolveBusiness(ctx context.Context, phoneNumber string) (*domain.Business, error) {
	if phoneNumber == "" {
		return nil, nil
	}
	matches, err := d.repos.Businesses().FindByPhoneNumber(ctx, phoneNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve business by phone number: %w", err)
	}
	if len(matches) == 0 {
		return nil, nil
	}
	if len(matches) > 1 {
		logger.Base().Warn("Multiple businesses share a forwarding number",
			zap.String("phone_number", phoneNumber),
			zap.Int("count", len(matches)))
	}
	return matches[0], nil
}

func (d *Dispatcher) enqueueSummary(ctx context.Context, t task.SummaryTask) {
	if d.bus != nil {
		err := d.bus.Publish(ctx, t)
		if err == nil {
			return
		}
		logger.Base().Warn("Failed to publish summary task, running inline",
			zap.Error(err), zap.String("call_id", t.CallID))
	}
	if d.processor != nil {
		go d.processor.Process(context.Background(), t)
	}
}

func stringParam(params map[string]interface{}, key string) string {
	if v, ok := params[key].(string); ok {
		return v
	}
	return ""
}
