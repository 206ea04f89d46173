package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/supportmesh/core"
	"github.com/hupe1980/supportmesh/engine"
	"github.com/hupe1980/supportmesh/internal/testutil"
	"github.com/hupe1980/supportmesh/model"
	"github.com/hupe1980/supportmesh/observability"
	"github.com/hupe1980/supportmesh/session"
	"github.com/hupe1980/supportmesh/tool"
	"github.com/hupe1980/supportmesh/tool/courier"
)

// -------------------- helpers --------------------

func newEngine(t *testing.T, llm model.Model, tools ...tool.Tool) *engine.Engine {
	t.Helper()
	reg, err := tool.NewRegistry(tools)
	require.NoError(t, err)
	return engine.New(llm, reg, func(o *engine.Options) { o.MaxIterations = 4 })
}

type failingStore struct {
	getErr error
	putErr error
	puts   int
}

func (s *failingStore) Get(context.Context, string) ([]core.Message, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return []core.Message{}, nil
}

func (s *failingStore) Put(context.Context, string, []core.Message) error {
	s.puts++
	return s.putErr
}

// gatedRunner blocks each run until released, so two invocations can be
// forced to read the same transcript before either writes.
type gatedRunner struct {
	mu      sync.Mutex
	started chan string
	release map[string]chan struct{}
}

func newGatedRunner(prompts ...string) *gatedRunner {
	g := &gatedRunner{started: make(chan string, len(prompts)), release: map[string]chan struct{}{}}
	for _, p := range prompts {
		g.release[p] = make(chan struct{})
	}
	return g
}

func (g *gatedRunner) Run(_ context.Context, transcript []core.Message, prompt string) (*core.RunOutcome, error) {
	g.mu.Lock()
	gate := g.release[prompt]
	g.mu.Unlock()

	g.started <- prompt
	<-gate

	msgs := append(core.CloneMessages(transcript), core.NewUserMessage(prompt), core.NewAssistantMessage("re: "+prompt))
	return &core.RunOutcome{FinalText: "re: " + prompt, Transcript: msgs, Iterations: 1}, nil
}

// -------------------- Handle --------------------

func TestHandle_TrackingScenario(t *testing.T) {
	backend := testutil.NewStubBackend(t, http.StatusOK, `{"status":"delivered"}`)
	tracking, err := courier.NewTrackingAdapter(backend.URL, "")
	require.NoError(t, err)

	llm := model.NewScriptedModel(
		model.CallTools(core.ToolCall{ID: "c1", Name: courier.TrackPackage, Arguments: map[string]any{"packageId": "ABC123"}}),
		model.Reply("Your package ABC123 was delivered to the Mumbai Office."),
	)
	store := session.NewInMemoryStore()
	h := New(store, newEngine(t, llm, tracking))

	resp := h.Handle(context.Background(), Request{Prompt: "Where is my package ABC123", UserID: "u1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, ok := resp.Body.(SuccessBody)
	require.True(t, ok)
	assert.NotEmpty(t, body.Response)
	assert.Equal(t, "Where is my package ABC123", body.Prompt)
	assert.Equal(t, "u1", body.UserID)

	stored, err := store.Get(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, stored, 4)
	toolMsg := stored[2]
	assert.Equal(t, core.RoleTool, toolMsg.Role)
	require.NotNil(t, toolMsg.Result)
	assert.True(t, toolMsg.Result.Success)
	assert.Equal(t, map[string]any{"status": "delivered"}, toolMsg.Result.Payload)
	assert.Equal(t, 1, backend.Calls())
}

func TestHandle_TicketWithoutPackageID(t *testing.T) {
	backend := testutil.NewStubBackend(t, http.StatusCreated, `{"message":"Support ticket created successfully","ticket":{"ticketId":"TK-1-AAAAAA"}}`)
	ticketing, err := courier.NewTicketAdapter(backend.URL)
	require.NoError(t, err)

	llm := model.NewScriptedModel(
		model.CallTools(core.ToolCall{ID: "c1", Name: courier.CreateSupportTicket, Arguments: map[string]any{
			"email":            "a@b.com",
			"phoneNo":          "555",
			"issueDescription": "lost item",
		}}),
		model.Reply("I opened ticket TK-1-AAAAAA for you."),
	)
	h := New(session.NewInMemoryStore(), newEngine(t, llm, ticketing))

	resp := h.Handle(context.Background(), Request{Prompt: "I lost an item", UserID: "u3"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	req, ok := backend.LastRequest()
	require.True(t, ok)
	assert.Equal(t, map[string]any{
		"email":            "a@b.com",
		"phoneNo":          "555",
		"issueDescription": "lost item",
		"packageId":        "N/A",
	}, req.Body)
}

func TestHandle_Defaults(t *testing.T) {
	llm := model.NewScriptedModel(model.Reply("Hi there!"))
	store := session.NewInMemoryStore()
	h := New(store, newEngine(t, llm))

	resp := h.Handle(context.Background(), Request{Prompt: "   "})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := resp.Body.(SuccessBody)
	assert.Equal(t, DefaultPrompt, body.Prompt)
	assert.Equal(t, DefaultUserID, body.UserID)

	stored, err := store.Get(context.Background(), DefaultUserID)
	require.NoError(t, err)
	assert.Equal(t, "Hello", stored[0].Content)
}

func TestHandle_ContinuesConversation(t *testing.T) {
	llm := model.NewScriptedModel(model.Reply("first"), model.Reply("second"))
	store := session.NewInMemoryStore()
	h := New(store, newEngine(t, llm))

	require.Equal(t, http.StatusOK, h.Handle(context.Background(), Request{Prompt: "one", UserID: "u"}).StatusCode)
	require.Equal(t, http.StatusOK, h.Handle(context.Background(), Request{Prompt: "two", UserID: "u"}).StatusCode)

	reqs := llm.Requests()
	require.Len(t, reqs, 2)
	require.Len(t, reqs[1].Messages, 3)
	assert.Equal(t, "one", reqs[1].Messages[0].Content)
	assert.Equal(t, "first", reqs[1].Messages[1].Content)
	assert.Equal(t, "two", reqs[1].Messages[2].Content)
}

func TestHandle_LoopLimitFailsWithoutPersisting(t *testing.T) {
	echo, err := tool.NewFunctionTool("echo", "echo", map[string]any{"type": "object"}, func(context.Context, map[string]any) (any, error) {
		return "again", nil
	})
	require.NoError(t, err)

	llm := model.NewScriptedModel(model.CallTools(core.ToolCall{ID: "x", Name: "echo"}))
	store := session.NewInMemoryStore()
	prior := testutil.NewTranscriptBuilder().User("earlier").Assistant("reply").Build()
	require.NoError(t, store.Put(context.Background(), "carol", prior))

	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	h := New(store, newEngine(t, llm, echo), func(o *Options) { o.Metrics = metrics })

	resp := h.Handle(context.Background(), Request{Prompt: "spin", UserID: "carol"})
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	body, ok := resp.Body.(ErrorBody)
	require.True(t, ok)
	assert.Equal(t, "Internal Server Error", body.Error)
	assert.Contains(t, body.Message, core.ErrLoopLimitExceeded.Error())

	stored, err := store.Get(context.Background(), "carol")
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestHandle_ModelFailure(t *testing.T) {
	llm := model.NewScriptedModel(model.Fail(errors.New("rate limited")))
	store := &failingStore{}
	resp := New(store, newEngine(t, llm)).Handle(context.Background(), Request{Prompt: "hi", UserID: "u"})

	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, resp.Body.(ErrorBody).Message, "rate limited")
	assert.Equal(t, 0, store.puts)
}

func TestHandle_StoreFailures(t *testing.T) {
	llm := model.NewScriptedModel(model.Reply("ok"))

	resp := New(&failingStore{getErr: errors.New("db down")}, newEngine(t, llm)).
		Handle(context.Background(), Request{UserID: "u"})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, resp.Body.(ErrorBody).Message, "db down")

	resp = New(&failingStore{putErr: errors.New("disk full")}, newEngine(t, llm)).
		Handle(context.Background(), Request{UserID: "u"})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, resp.Body.(ErrorBody).Message, "disk full")
}

// Two invocations for the same session read the same transcript; the one
// that writes last wins and the other turn is lost.
func TestHandle_ConcurrentSameSessionLosesUpdate(t *testing.T) {
	store := session.NewInMemoryStore()
	runner := newGatedRunner("one", "two")
	h := New(store, runner)

	first := make(chan struct{})
	second := make(chan struct{})
	go func() { defer close(first); h.Handle(context.Background(), Request{Prompt: "one", UserID: "u2"}) }()
	<-runner.started
	go func() { defer close(second); h.Handle(context.Background(), Request{Prompt: "two", UserID: "u2"}) }()
	<-runner.started

	close(runner.release["one"])
	<-first
	close(runner.release["two"])
	<-second

	stored, err := store.Get(context.Background(), "u2")
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, "two", stored[0].Content)
	assert.Equal(t, "re: two", stored[1].Content)
}

// -------------------- HTTP --------------------

func newHTTP(t *testing.T, llm model.Model) (http.Handler, *session.InMemoryStore, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	store := session.NewInMemoryStore()
	h := New(store, newEngine(t, llm), func(o *Options) { o.Metrics = metrics })
	return NewHTTPHandler(h, func(o *HTTPOptions) { o.Gatherer = reg }), store, reg
}

func TestHTTP_Agent(t *testing.T) {
	srv, store, _ := newHTTP(t, model.NewScriptedModel(model.Reply("Hello from support")))

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/agent", strings.NewReader(`{"prompt":"hi","session_id":"s-1"}`)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"response":"Hello from support","prompt":"hi","user_id":"s-1"}`, rec.Body.String())
	assert.Equal(t, 1, store.Len())
}

func TestHTTP_AgentEmptyBodyUsesDefaults(t *testing.T) {
	srv, _, _ := newHTTP(t, model.NewScriptedModel(model.Reply("Hi")))

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/agent", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"response":"Hi","prompt":"Hello","user_id":"anonymous"}`, rec.Body.String())
}

func TestHTTP_AgentInvalidJSON(t *testing.T) {
	srv, store, _ := newHTTP(t, model.NewScriptedModel(model.Reply("unused")))

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/agent", strings.NewReader(`{"prompt":`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid JSON body")
	assert.Equal(t, 0, store.Len())
}

func TestHTTP_AgentFailureShape(t *testing.T) {
	srv, _, _ := newHTTP(t, model.NewScriptedModel(model.Fail(errors.New("upstream 503"))))

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/agent", strings.NewReader(`{"prompt":"hi"}`)))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error":"Internal Server Error"`)
	assert.Contains(t, rec.Body.String(), "upstream 503")
}

func TestHTTP_HealthAndMetrics(t *testing.T) {
	srv, _, _ := newHTTP(t, model.NewScriptedModel(model.Reply("ok")))

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/agent", strings.NewReader(`{}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `supportmesh_invocations_total{status="success"} 1`)
}

func TestHTTP_WrongMethod(t *testing.T) {
	srv, _, _ := newHTTP(t, model.NewScriptedModel(model.Reply("ok")))

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/agent", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
