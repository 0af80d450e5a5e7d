package server_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/pitchpartner/pitchpartner/internal/health"
	"github.com/pitchpartner/pitchpartner/internal/observe"
	"github.com/pitchpartner/pitchpartner/internal/report"
	"github.com/pitchpartner/pitchpartner/internal/server"
	"github.com/pitchpartner/pitchpartner/internal/session"
	"github.com/pitchpartner/pitchpartner/pkg/provider/chat"
	chatmock "github.com/pitchpartner/pitchpartner/pkg/provider/chat/mock"
	sttmock "github.com/pitchpartner/pitchpartner/pkg/provider/stt/mock"
	"github.com/pitchpartner/pitchpartner/pkg/provider/tts"
	ttsmock "github.com/pitchpartner/pitchpartner/pkg/provider/tts/mock"
	"github.com/pitchpartner/pitchpartner/pkg/types"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestServer builds a server around an isolated controller and meter
// provider. Fields left nil in cfg get working defaults.
func newTestServer(t *testing.T, cfg session.Config) (*server.Server, *session.Controller) {
	t.Helper()

	if cfg.Chat == nil {
		cfg.Chat = &chatmock.Provider{Response: &chat.Response{Content: "Tell me more."}}
	}
	if cfg.Reports == nil {
		cfg.Reports = report.NewChain(nil, report.NewRuleBased(), testLogger())
	}
	if cfg.Log == nil {
		cfg.Log = testLogger()
	}
	ctrl := session.New(cfg)

	metrics, err := observe.NewMetrics(sdkmetric.NewMeterProvider())
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	srv := server.New(server.Config{
		Controller: ctrl,
		Metrics:    metrics,
		Health:     health.New(),
		Log:        testLogger(),
	})
	return srv, ctrl
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func startSession(t *testing.T, h http.Handler, persona, mode string) {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/api/session/start", map[string]any{
		"persona": persona,
		"mode":    mode,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("start status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestStartSession(t *testing.T) {
	t.Parallel()

	srv, ctrl := newTestServer(t, session.Config{})
	startSession(t, srv.Handler(), "skeptic", "freeform")

	if got := ctrl.State(); got != session.StateActive {
		t.Fatalf("state after start = %s, want active", got)
	}

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/session/start", map[string]any{
		"persona": "skeptic",
		"mode":    "freeform",
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("second start status = %d, want 409", rec.Code)
	}
}

func TestStartSession_InvalidInput(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, session.Config{})

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/session/start", map[string]any{
		"persona": "angel",
		"mode":    "freeform",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown persona status = %d, want 400", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/session/start", strings.NewReader("{not json"))
	mal := httptest.NewRecorder()
	srv.Handler().ServeHTTP(mal, req)
	if mal.Code != http.StatusBadRequest {
		t.Errorf("malformed body status = %d, want 400", mal.Code)
	}
}

func TestTranscriptRound(t *testing.T) {
	t.Parallel()

	ttsProv := &ttsmock.Provider{Audio: &tts.Audio{Data: []byte("fake-mp3"), MIMEType: "audio/mpeg"}}
	srv, _ := newTestServer(t, session.Config{TTS: ttsProv})
	startSession(t, srv.Handler(), "skeptic", "freeform")

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/session/transcript", map[string]any{
		"text": "We grew revenue forty percent quarter over quarter.",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("transcript status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Transcript string `json:"transcript"`
		Reply      string `json:"reply"`
		Round      int    `json:"round"`
		Done       bool   `json:"done"`
		Audio      string `json:"audio"`
		AudioMIME  string `json:"audio_mime"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Reply != "Tell me more." {
		t.Errorf("reply = %q", resp.Reply)
	}
	if resp.Round != 1 || resp.Done {
		t.Errorf("round = %d done = %v, want round 1 not done", resp.Round, resp.Done)
	}
	audio, err := base64.StdEncoding.DecodeString(resp.Audio)
	if err != nil {
		t.Fatalf("audio is not valid base64: %v", err)
	}
	if string(audio) != "fake-mp3" || resp.AudioMIME != "audio/mpeg" {
		t.Errorf("audio = %q mime = %q", audio, resp.AudioMIME)
	}
}

func TestTranscript_ErrorMapping(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, session.Config{})

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/session/transcript", map[string]any{"text": "hello"})
	if rec.Code != http.StatusConflict {
		t.Errorf("no session status = %d, want 409", rec.Code)
	}

	startSession(t, srv.Handler(), "skeptic", "freeform")
	rec = doJSON(t, srv.Handler(), http.MethodPost, "/api/session/transcript", map[string]any{"text": "   "})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("empty transcript status = %d, want 422", rec.Code)
	}
}

func TestAudioRound(t *testing.T) {
	t.Parallel()

	stt := &sttmock.Provider{Text: "Our churn is under two percent."}
	srv, _ := newTestServer(t, session.Config{STT: stt})
	startSession(t, srv.Handler(), "micromanager", "freeform")

	req := httptest.NewRequest(http.MethodPost, "/api/session/audio?format=webm", bytes.NewReader([]byte("audio-bytes")))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("audio status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Transcript string `json:"transcript"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Transcript != "Our churn is under two percent." {
		t.Errorf("transcript = %q", resp.Transcript)
	}
	if len(stt.Calls) != 1 || stt.Calls[0].Format != "webm" {
		t.Errorf("stt calls = %+v, want one webm request", stt.Calls)
	}
}

func TestAudioRound_TranscriptionFailure(t *testing.T) {
	t.Parallel()

	stt := &sttmock.Provider{Err: io.ErrUnexpectedEOF}
	srv, _ := newTestServer(t, session.Config{STT: stt})
	startSession(t, srv.Handler(), "skeptic", "freeform")

	req := httptest.NewRequest(http.MethodPost, "/api/session/audio", bytes.NewReader([]byte("noise")))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

func TestEndAndReport(t *testing.T) {
	t.Parallel()

	srv, ctrl := newTestServer(t, session.Config{})
	startSession(t, srv.Handler(), "visionary", "freeform")

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/session/end", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("end status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Report string `json:"report"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Report == "" {
		t.Fatal("report is empty")
	}
	if ctrl.State() != session.StateComplete {
		t.Fatalf("state = %s, want complete", ctrl.State())
	}

	get := doJSON(t, srv.Handler(), http.MethodGet, "/api/session/report", nil)
	if get.Code != http.StatusOK {
		t.Fatalf("report status = %d", get.Code)
	}
	if !strings.Contains(get.Body.String(), `"report"`) {
		t.Errorf("report body = %s", get.Body.String())
	}

	again := doJSON(t, srv.Handler(), http.MethodPost, "/api/session/end", nil)
	if again.Code != http.StatusOK {
		t.Errorf("repeat end status = %d, want 200", again.Code)
	}
}

func TestEndWithoutSession(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, session.Config{})
	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/session/end", nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}

	rep := doJSON(t, srv.Handler(), http.MethodGet, "/api/session/report", nil)
	if rep.Code != http.StatusNotFound {
		t.Errorf("report status = %d, want 404", rep.Code)
	}
}

func TestReset(t *testing.T) {
	t.Parallel()

	srv, ctrl := newTestServer(t, session.Config{})
	startSession(t, srv.Handler(), "skeptic", "freeform")

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/session/reset", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("reset status = %d, want 204", rec.Code)
	}
	if ctrl.State() != session.StateIdle {
		t.Fatalf("state = %s, want idle", ctrl.State())
	}
}

func TestCatalogEndpoints(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, session.Config{})

	personas := doJSON(t, srv.Handler(), http.MethodGet, "/api/personas", nil)
	if personas.Code != http.StatusOK {
		t.Fatalf("personas status = %d", personas.Code)
	}
	var plist []struct {
		ID          string `json:"id"`
		DisplayName string `json:"display_name"`
		Opener      string `json:"opener"`
	}
	if err := json.Unmarshal(personas.Body.Bytes(), &plist); err != nil {
		t.Fatalf("decode personas: %v", err)
	}
	if len(plist) != 3 {
		t.Fatalf("personas = %d, want 3", len(plist))
	}
	for _, p := range plist {
		if p.ID == "" || p.DisplayName == "" || p.Opener == "" {
			t.Errorf("incomplete persona entry: %+v", p)
		}
	}

	modes := doJSON(t, srv.Handler(), http.MethodGet, "/api/modes", nil)
	if modes.Code != http.StatusOK {
		t.Fatalf("modes status = %d", modes.Code)
	}
	var mlist []struct {
		ID              string `json:"id"`
		DurationSeconds int    `json:"duration_seconds"`
		RoundsTarget    int    `json:"rounds_target"`
	}
	if err := json.Unmarshal(modes.Body.Bytes(), &mlist); err != nil {
		t.Fatalf("decode modes: %v", err)
	}
	if len(mlist) != 3 {
		t.Fatalf("modes = %d, want 3", len(mlist))
	}
}

func TestInfoAndSessionMetrics(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, session.Config{})
	startSession(t, srv.Handler(), "skeptic", "sprint")

	info := doJSON(t, srv.Handler(), http.MethodGet, "/api/session", nil)
	if info.Code != http.StatusOK {
		t.Fatalf("info status = %d", info.Code)
	}
	var parsed struct {
		State         string `json:"state"`
		Persona       string `json:"persona"`
		RemainingSecs int    `json:"remaining_secs"`
	}
	if err := json.Unmarshal(info.Body.Bytes(), &parsed); err != nil {
		t.Fatalf("decode info: %v", err)
	}
	if parsed.State != "active" || parsed.Persona != "skeptic" {
		t.Errorf("info = %+v", parsed)
	}
	if parsed.RemainingSecs <= 0 || parsed.RemainingSecs > 60 {
		t.Errorf("remaining_secs = %d, want within (0,60]", parsed.RemainingSecs)
	}

	metrics := doJSON(t, srv.Handler(), http.MethodGet, "/api/session/metrics", nil)
	if metrics.Code != http.StatusOK {
		t.Fatalf("session metrics status = %d", metrics.Code)
	}
	if !strings.Contains(metrics.Body.String(), `"clarity_score"`) {
		t.Errorf("metrics body = %s", metrics.Body.String())
	}
}

func TestOperationalEndpoints(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, session.Config{})

	for _, path := range []string{"/metrics", "/healthz", "/readyz"} {
		rec := doJSON(t, srv.Handler(), http.MethodGet, path, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", path, rec.Code)
		}
	}
}

// frontalFace is a centered 468-point face scoring a perfect 100.
func frontalFace() types.FaceLandmarkSet {
	return make(types.FaceLandmarkSet, 468)
}

// uprightPose is a level, uncompressed 33-point pose scoring 100.
func uprightPose() types.PoseLandmarkSet {
	pose := make(types.PoseLandmarkSet, 33)
	for i := range pose {
		pose[i].Visibility = 0.9
	}
	pose[7] = types.Landmark{X: -0.05, Y: 0.3, Visibility: 0.9}
	pose[8] = types.Landmark{X: 0.05, Y: 0.3, Visibility: 0.9}
	pose[11] = types.Landmark{X: -0.1, Y: 0.5, Visibility: 0.9}
	pose[12] = types.Landmark{X: 0.1, Y: 0.5, Visibility: 0.9}
	pose[23] = types.Landmark{X: -0.1, Y: 0.9, Visibility: 0.9}
	pose[24] = types.Landmark{X: 0.1, Y: 0.9, Visibility: 0.9}
	return pose
}

func TestLandmarkStream(t *testing.T) {
	t.Parallel()

	srv, ctrl := newTestServer(t, session.Config{})
	httpSrv := httptest.NewServer(srv.Handler())
	defer httpSrv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(httpSrv.URL, "http") + "/ws/landmarks"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "test done")

	frame := types.LandmarkFrame{Face: frontalFace(), Pose: uprightPose(), TimestampMs: 500}

	// No active session yet: the frame is answered with an error message
	// and the socket stays open.
	if err := wsjson.Write(ctx, conn, frame); err != nil {
		t.Fatalf("write frame: %v", err)
	}
	var wsErr struct {
		Error string `json:"error"`
	}
	if err := wsjson.Read(ctx, conn, &wsErr); err != nil {
		t.Fatalf("read error reply: %v", err)
	}
	if wsErr.Error == "" {
		t.Fatal("expected an error message before session start")
	}

	if err := ctrl.StartSession("skeptic", "freeform", false); err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	if err := wsjson.Write(ctx, conn, frame); err != nil {
		t.Fatalf("write frame: %v", err)
	}
	var sample types.VisualSample
	if err := wsjson.Read(ctx, conn, &sample); err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if sample.EyeContact != 100 || sample.Posture != 100 {
		t.Errorf("sample = %+v, want both scores 100", sample)
	}

	snap := ctrl.VisualSnapshot()
	if snap.Samples != 1 {
		t.Errorf("snapshot samples = %d, want 1", snap.Samples)
	}

	// An empty frame scores 0/0; it is echoed back but rejected by the
	// aggregator as a detector dropout.
	if err := wsjson.Write(ctx, conn, types.LandmarkFrame{TimestampMs: 700}); err != nil {
		t.Fatalf("write empty frame: %v", err)
	}
	if err := wsjson.Read(ctx, conn, &sample); err != nil {
		t.Fatalf("read dropout sample: %v", err)
	}
	if sample.EyeContact != 0 || sample.Posture != 0 {
		t.Errorf("dropout sample = %+v, want both scores 0", sample)
	}

	snap = ctrl.VisualSnapshot()
	if snap.Samples != 1 {
		t.Errorf("snapshot samples after dropout = %d, want 1", snap.Samples)
	}
	if snap.Discarded != 1 {
		t.Errorf("snapshot discarded = %d, want 1", snap.Discarded)
	}
}
