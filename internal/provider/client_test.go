package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"flowforge/internal/blueprint"
	"flowforge/internal/config"
	"flowforge/internal/fault"
)

func testConfig(baseURL string) *config.Config {
	cfg := config.Default()
	cfg.Gemini.APIKey = "test-key"
	cfg.Gemini.BaseURL = baseURL
	cfg.Retry.InitialDelayMs = 1
	return cfg
}

func textResponse(text string) geminiResponse {
	var resp geminiResponse
	resp.Candidates = make([]struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
			Role  string       `json:"role"`
		} `json:"content"`
		FinishReason      string                   `json:"finishReason"`
		GroundingMetadata *geminiGroundingMetadata `json:"groundingMetadata,omitempty"`
	}, 1)
	resp.Candidates[0].Content.Parts = []geminiPart{{Text: text}}
	return resp
}

const blueprintJSON = `{
	"platform": "zapier",
	"explanation": "Watches a folder and posts to chat.",
	"steps": [
		{"id": 1, "title": "New file", "description": "Folder watcher fires", "kind": "trigger"},
		{"id": 2, "title": "Post message", "description": "Send a chat notification", "kind": "action"}
	]
}`

func TestNew_MissingCredential(t *testing.T) {
	cfg := config.Default() // no key
	_, err := New(cfg)
	if !errors.Is(err, fault.ErrConfiguration) {
		t.Errorf("error %v is not ErrConfiguration", err)
	}
}

func TestGenerateBlueprint_Success(t *testing.T) {
	var sawSchema atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req geminiRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if req.GenerationConfig.ResponseMimeType == "application/json" && req.GenerationConfig.ResponseSchema != nil {
			sawSchema.Store(true)
		}
		// The model wraps its JSON in fences despite instructions.
		json.NewEncoder(w).Encode(textResponse("```json\n" + blueprintJSON + "\n```"))
	}))
	defer server.Close()

	client, err := New(testConfig(server.URL))
	if err != nil {
		t.Fatal(err)
	}
	bp, err := client.GenerateBlueprint(context.Background(), "notify on new files", blueprint.PlatformZapier)
	if err != nil {
		t.Fatal(err)
	}
	if bp.Platform != blueprint.PlatformZapier || len(bp.Steps) != 2 {
		t.Errorf("unexpected blueprint: %+v", bp)
	}
	if !sawSchema.Load() {
		t.Error("request did not carry the generation schema constraint")
	}
}

func TestGenerate_RetriesRateLimitThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":{"code":429,"message":"slow down","status":"RESOURCE_EXHAUSTED"}}`))
			return
		}
		json.NewEncoder(w).Encode(textResponse(blueprintJSON))
	}))
	defer server.Close()

	client, err := New(testConfig(server.URL))
	if err != nil {
		t.Fatal(err)
	}
	_, err = client.GenerateBlueprint(context.Background(), "goal", blueprint.PlatformGeneric)
	if err != nil {
		t.Fatal(err)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("server saw %d calls, want 3", got)
	}
}

func TestGenerate_FatalStatusIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":400,"message":"invalid argument","status":"INVALID_ARGUMENT"}}`))
	}))
	defer server.Close()

	client, err := New(testConfig(server.URL))
	if err != nil {
		t.Fatal(err)
	}
	_, err = client.GenerateBlueprint(context.Background(), "goal", blueprint.PlatformGeneric)
	if err == nil {
		t.Fatal("expected error")
	}
	var httpErr *fault.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Status != 400 {
		t.Errorf("error %v does not carry status 400", err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("server saw %d calls, want 1 (no retry on fatal)", got)
	}
}

func TestGenerate_ExhaustionReportsServiceUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":{"code":503,"message":"overloaded","status":"UNAVAILABLE"}}`))
	}))
	defer server.Close()

	client, err := New(testConfig(server.URL))
	if err != nil {
		t.Fatal(err)
	}
	_, _, err = client.Chat(context.Background(), "why is my zap failing?")
	if !errors.Is(err, fault.ErrServiceUnavailable) {
		t.Errorf("error %v is not ErrServiceUnavailable", err)
	}
}

func TestGenerateBlueprint_MalformedOutput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(textResponse("I cannot produce JSON today."))
	}))
	defer server.Close()

	client, err := New(testConfig(server.URL))
	if err != nil {
		t.Fatal(err)
	}
	_, err = client.GenerateBlueprint(context.Background(), "goal", blueprint.PlatformGeneric)
	if !errors.Is(err, fault.ErrMalformedOutput) {
		t.Errorf("error %v is not ErrMalformedOutput", err)
	}
}

func TestSynthesize_ReturnsTransportedAudio(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := textResponse("")
		resp.Candidates[0].Content.Parts = []geminiPart{
			{InlineData: &geminiInlineData{MimeType: "audio/pcm;rate=24000", Data: "AACAfw=="}},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client, err := New(testConfig(server.URL))
	if err != nil {
		t.Fatal(err)
	}
	audio, err := client.Synthesize(context.Background(), "hello")
	if err != nil {
		t.Fatal(err)
	}
	if audio != "AACAfw==" {
		t.Errorf("audio = %q, want base64 payload as transported", audio)
	}
}

func TestSynthesize_NoAudioIsMalformed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(textResponse("sorry, text instead"))
	}))
	defer server.Close()

	client, err := New(testConfig(server.URL))
	if err != nil {
		t.Fatal(err)
	}
	_, err = client.Synthesize(context.Background(), "hello")
	if !errors.Is(err, fault.ErrMalformedOutput) {
		t.Errorf("error %v is not ErrMalformedOutput", err)
	}
}

func TestSimulateRun_RejectsBadPayloadBeforeNetwork(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	client, err := New(testConfig(server.URL))
	if err != nil {
		t.Fatal(err)
	}
	bp := &blueprint.Blueprint{
		Platform: blueprint.PlatformGeneric, Explanation: "x",
		Steps: []blueprint.Step{{ID: 1, Title: "t", Description: "d", Kind: blueprint.StepTrigger}},
	}
	_, err = client.SimulateRun(context.Background(), bp, "{not json")
	if !errors.Is(err, fault.ErrConfiguration) {
		t.Errorf("error %v is not ErrConfiguration", err)
	}
	if calls.Load() != 0 {
		t.Error("malformed payload must be rejected before any remote call")
	}
}

func TestSimulateRun_ValidTrace(t *testing.T) {
	trace := `{"overallStatus":"failure","summary":"step 2 would fail","stepResults":[
		{"stepId":1,"status":"success","output":"event accepted","reasoning":"payload valid"},
		{"stepId":2,"status":"failure","output":"","reasoning":"missing email field"}]}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(textResponse(trace))
	}))
	defer server.Close()

	client, err := New(testConfig(server.URL))
	if err != nil {
		t.Fatal(err)
	}
	bp := &blueprint.Blueprint{
		Platform: blueprint.PlatformGeneric, Explanation: "x",
		Steps: []blueprint.Step{
			{ID: 1, Title: "a", Description: "d", Kind: blueprint.StepTrigger},
			{ID: 2, Title: "b", Description: "d", Kind: blueprint.StepAction},
		},
	}
	result, err := client.SimulateRun(context.Background(), bp, `{"name":"ada"}`)
	if err != nil {
		t.Fatal(err)
	}
	if result.OverallStatus != "failure" || len(result.StepResults) != 2 {
		t.Errorf("unexpected trace: %+v", result)
	}
}

func TestChat_ExtractsGroundingSources(t *testing.T) {
	body := `{"candidates":[{"content":{"parts":[{"text":"Use a webhook."}],"role":"model"},
		"finishReason":"STOP",
		"groundingMetadata":{"groundingChunks":[
			{"web":{"uri":"https://example.com/docs","title":"Webhook docs"}},
			{"web":{"uri":"","title":"empty uri dropped"}}
		],"webSearchQueries":["webhooks"]}}]}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer server.Close()

	client, err := New(testConfig(server.URL))
	if err != nil {
		t.Fatal(err)
	}
	answer, sources, err := client.Chat(context.Background(), "how do I connect these?")
	if err != nil {
		t.Fatal(err)
	}
	if answer != "Use a webhook." {
		t.Errorf("answer = %q", answer)
	}
	if len(sources) != 1 || sources[0].URI != "https://example.com/docs" {
		t.Errorf("sources = %+v, want one entry with the docs URI", sources)
	}
}
