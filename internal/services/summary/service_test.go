package summary

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/voicedesk/receptionist-service/internal/core/task"
	"github.com/voicedesk/receptionist-service/internal/domain"
	"github.com/voicedesk/receptionist-service/internal/repository"
)

// completionServer fakes the chat completions endpoint with a fixed body.
func completionServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
}

func completionBody(content string) string {
	resp := map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"content": content}},
		},
	}
	raw, _ := json.Marshal(resp)
	return string(raw)
}

func testBusiness() *domain.Business {
	return &domain.Business{
		ID:           "biz-1",
		Name:         "Glow Salon",
		BusinessType: "hair salon",
	}
}

func TestGenerateParsesModelOutput(t *testing.T) {
	srv := completionServer(t, http.StatusOK, completionBody(
		`{"intent":"book a haircut","details":{"service":"haircut"},"action":"booking"}`))
	defer srv.Close()

	svc := NewService(nil, NewOpenAIClient(srv.URL, "test-key"), nil)
	summary := svc.Generate(context.Background(), testBusiness(), "I want a haircut on Monday")

	require.Equal(t, "book a haircut", summary.Intent)
	require.Equal(t, domain.SummaryActionBooking, summary.Action)
	require.Equal(t, "haircut", summary.Details["service"])
}

func TestGenerateFallsBackOnAPIError(t *testing.T) {
	srv := completionServer(t, http.StatusInternalServerError, `{"error":{"message":"boom"}}`)
	defer srv.Close()

	svc := NewService(nil, NewOpenAIClient(srv.URL, "test-key"), nil)
	summary := svc.Generate(context.Background(), testBusiness(), "transcript")

	require.Equal(t, domain.FallbackCallSummary(), summary)
}

func TestGenerateFallsBackOnNonJSONContent(t *testing.T) {
	srv := completionServer(t, http.StatusOK, completionBody("I could not produce JSON, sorry"))
	defer srv.Close()

	svc := NewService(nil, NewOpenAIClient(srv.URL, "test-key"), nil)
	summary := svc.Generate(context.Background(), testBusiness(), "transcript")

	require.Equal(t, domain.FallbackCallSummary(), summary)
}

func TestGenerateCoercesUnknownAction(t *testing.T) {
	srv := completionServer(t, http.StatusOK, completionBody(
		`{"intent":"complaint","details":{},"action":"escalate_to_manager"}`))
	defer srv.Close()

	svc := NewService(nil, NewOpenAIClient(srv.URL, "test-key"), nil)
	summary := svc.Generate(context.Background(), testBusiness(), "transcript")

	require.Equal(t, "complaint", summary.Intent)
	require.Equal(t, domain.SummaryActionCallback, summary.Action)
}

func TestGenerateFillsMissingFields(t *testing.T) {
	srv := completionServer(t, http.StatusOK, completionBody(`{"action":"info"}`))
	defer srv.Close()

	svc := NewService(nil, NewOpenAIClient(srv.URL, "test-key"), nil)
	summary := svc.Generate(context.Background(), testBusiness(), "transcript")

	require.Equal(t, "unknown", summary.Intent)
	require.NotNil(t, summary.Details)
	require.Equal(t, domain.SummaryActionInfo, summary.Action)
}

// stubCompleter returns a canned completion without HTTP.
type stubCompleter struct {
	content string
	err     error
}

func (s *stubCompleter) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return s.content, s.err
}

// recordingNotifier captures NotifyOwner invocations.
type recordingNotifier struct {
	mu    sync.Mutex
	calls int
}

func (n *recordingNotifier) NotifyOwner(ctx context.Context, business *domain.Business, callID string, summary *domain.CallSummary) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls++
	return nil
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls
}

// summaryRepos implements just enough of RepositoryManager for Process.
type summaryRepos struct {
	repository.RepositoryManager
	business *domain.Business
	saved    map[string]*domain.CallSummary
}

func newSummaryRepos(b *domain.Business) *summaryRepos {
	return &summaryRepos{business: b, saved: map[string]*domain.CallSummary{}}
}

func (r *summaryRepos) Businesses() repository.BusinessRepository {
	return &summaryBusinessRepo{business: r.business}
}
func (r *summaryRepos) Calls() repository.CallRepository { return &summaryCallRepo{parent: r} }

type summaryBusinessRepo struct {
	repository.BusinessRepository
	business *domain.Business
}

func (r *summaryBusinessRepo) GetByID(ctx context.Context, id string) (*domain.Business, error) {
	if r.business != nil && r.business.ID == id {
		return r.business, nil
	}
	return nil, fmt.Errorf("business lookup failed")
}

type summaryCallRepo struct {
	repository.CallRepository
	parent *summaryRepos
}

func (r *summaryCallRepo) SaveSummary(ctx context.Context, id string, summary *domain.CallSummary) error {
	r.parent.saved[id] = summary
	return nil
}

func TestProcessSavesSummaryAndNotifies(t *testing.T) {
	repos := newSummaryRepos(testBusiness())
	notifier := &recordingNotifier{}
	svc := NewService(repos, &stubCompleter{
		content: `{"intent":"book a haircut","details":{},"action":"booking"}`,
	}, notifier)

	svc.Process(context.Background(), task.SummaryTask{
		Type:       task.TaskTypeSummarize,
		CallID:     "call-1",
		BusinessID: "biz-1",
		Transcript: "I want a haircut",
	})

	require.Contains(t, repos.saved, "call-1")
	require.Equal(t, domain.SummaryActionBooking, repos.saved["call-1"].Action)
	require.Equal(t, 1, notifier.count())
}

func TestProcessSkipsNotificationForInfoAction(t *testing.T) {
	repos := newSummaryRepos(testBusiness())
	notifier := &recordingNotifier{}
	svc := NewService(repos, &stubCompleter{
		content: `{"intent":"asked for hours","details":{},"action":"info"}`,
	}, notifier)

	svc.Process(context.Background(), task.SummaryTask{
		CallID:     "call-1",
		BusinessID: "biz-1",
		Transcript: "What are your hours?",
	})

	require.Contains(t, repos.saved, "call-1")
	require.Equal(t, 0, notifier.count())
}

func TestProcessSkipsEmptyTranscript(t *testing.T) {
	repos := newSummaryRepos(testBusiness())
	notifier := &recordingNotifier{}
	svc := NewService(repos, &stubCompleter{content: `{}`}, notifier)

	svc.Process(context.Background(), task.SummaryTask{
		CallID:     "call-1",
		BusinessID: "biz-1",
		Transcript: "",
	})

	require.Empty(t, repos.saved)
	require.Equal(t, 0, notifier.count())
}

func TestCompleteJSONRequiresAPIKey(t *testing.T) {
	client := NewOpenAIClient("", "")
	_, err := client.CompleteJSON(context.Background(), "system", "user")
	require.Error(t, err)
}
