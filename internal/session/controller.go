// Package session owns the lifecycle of a pitch-practice session: a
// state machine from idle through configuration, the live round loop,
// scoring, and the final coaching report.
//
// Only one session exists at a time. All exported methods on
// [Controller] are safe for concurrent use; camera samples and
// transcript rounds may arrive from different goroutines.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pitchpartner/pitchpartner/internal/persona"
	"github.com/pitchpartner/pitchpartner/internal/report"
	"github.com/pitchpartner/pitchpartner/internal/score"
	"github.com/pitchpartner/pitchpartner/internal/speech"
	"github.com/pitchpartner/pitchpartner/internal/vision"
	"github.com/pitchpartner/pitchpartner/pkg/provider/chat"
	"github.com/pitchpartner/pitchpartner/pkg/provider/stt"
	"github.com/pitchpartner/pitchpartner/pkg/provider/tts"
	"github.com/pitchpartner/pitchpartner/pkg/types"
)

var (
	// ErrSessionActive is returned when starting while a session runs.
	ErrSessionActive = errors.New("session: a session is already active")

	// ErrNoActiveSession is returned by round and sample ingestion when
	// the session is not in the active state.
	ErrNoActiveSession = errors.New("session: no active session")

	// ErrNotConfigured is returned by Start before Configure succeeded.
	ErrNotConfigured = errors.New("session: persona and mode not configured")

	// ErrEmptyTranscript is returned when a transcript carries no words.
	// The round is not counted.
	ErrEmptyTranscript = errors.New("session: transcript carried no words")

	// ErrTranscription wraps a speech-to-text failure. The round is not
	// counted and the caller should ask the speaker to repeat.
	ErrTranscription = errors.New("session: could not transcribe audio")
)

// fallbackFollowUp keeps the conversation going when the chat backend
// produces nothing usable for a round.
const fallbackFollowUp = "Hmm, let me stop you there. Walk me through the numbers one more time, slower."

// reportTimeout bounds report generation when the session ends on the
// countdown rather than an explicit request.
const reportTimeout = 30 * time.Second

// Config holds the dependencies for a [Controller]. Chat and Reports
// are required. STT and TTS are optional; without STT only text
// transcripts can be ingested, without TTS rounds carry no audio.
type Config struct {
	Chat    chat.Provider
	STT     stt.Provider
	TTS     tts.Provider
	Reports report.Generator
	Log     *slog.Logger

	// OnStateChange, when set, is called after every state transition
	// with the new state. Invoked with the controller lock held; keep
	// the callback fast and non-blocking.
	OnStateChange func(State)
}

// Info is a point-in-time public view of the session.
type Info struct {
	State         State           `json:"state"`
	Persona       persona.ID      `json:"persona,omitempty"`
	Mode          persona.ModeID  `json:"mode,omitempty"`
	Roast         bool            `json:"roast"`
	Round         int             `json:"round"`
	RemainingSecs int             `json:"remaining_secs"`
	StartedAt     time.Time       `json:"started_at,omitzero"`
	Snapshot      vision.Snapshot `json:"snapshot"`
}

// RoundResult is what one transcript round produced.
type RoundResult struct {
	// Transcript is the text that was scored.
	Transcript string

	// Analysis is the speech breakdown for this round alone.
	Analysis types.TranscriptAnalysis

	// Reply is the persona's sanitized response.
	Reply string

	// Audio is the synthesized reply, nil when TTS is unavailable or failed.
	Audio *tts.Audio

	// Round is the 1-based round number this transcript completed.
	Round int

	// Done is true when this round hit the mode's round target and the
	// session finished. Report then holds the coaching report.
	Done   bool
	Report string
}

// Controller runs the single practice session.
type Controller struct {
	log     *slog.Logger
	chat    chat.Provider
	stt     stt.Provider
	tts     tts.Provider
	reports report.Generator

	mu    sync.Mutex
	state State
	epoch int

	personaID persona.ID
	modeID    persona.ModeID
	roast     bool

	metrics  types.SessionMetrics
	messages []types.Message
	agg      *vision.Aggregator

	onState func(State)

	startedAt time.Time
	deadline  time.Time
	timer     *time.Timer

	finalReport string
}

// New creates an idle Controller.
func New(cfg Config) *Controller {
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}
	return &Controller{
		log:     log,
		chat:    cfg.Chat,
		stt:     cfg.STT,
		tts:     cfg.TTS,
		reports: cfg.Reports,
		onState: cfg.OnStateChange,
		agg:     vision.NewAggregator(),
	}
}

// Configure records the persona, mode and roast choice for the next
// session. Allowed from idle or configuring; reconfiguring before
// Start overwrites the previous choice.
func (c *Controller) Configure(p persona.ID, m persona.ModeID, roast bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateIdle && c.state != StateConfiguring {
		return fmt.Errorf("%w (state=%s)", ErrSessionActive, c.state)
	}
	if !p.IsValid() {
		return fmt.Errorf("session: unknown persona %q", p)
	}
	if !m.IsValid() {
		return fmt.Errorf("session: unknown mode %q", m)
	}

	c.personaID = p
	c.modeID = m
	c.roast = roast
	c.setStateLocked(StateConfiguring)
	return nil
}

// Start moves a configured session to active. All per-session state is
// reset, the persona's opener seeds the message log, and timed modes
// start their countdown.
func (c *Controller) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateConfiguring:
	case StateIdle:
		return ErrNotConfigured
	default:
		return fmt.Errorf("%w (state=%s)", ErrSessionActive, c.state)
	}

	p, _ := persona.Get(c.personaID)
	m, _ := persona.GetMode(c.modeID)

	c.epoch++
	c.metrics = types.SessionMetrics{}
	c.messages = []types.Message{{Role: types.RoleAssistant, Content: p.Opener}}
	c.agg.Reset()
	c.finalReport = ""
	c.startedAt = time.Now()
	c.deadline = time.Time{}

	if m.DurationSeconds > 0 {
		d := time.Duration(m.DurationSeconds) * time.Second
		c.deadline = c.startedAt.Add(d)
		epoch := c.epoch
		c.timer = time.AfterFunc(d, func() { c.expire(epoch) })
	}

	c.setStateLocked(StateActive)
	c.log.Info("session started",
		"persona", c.personaID,
		"mode", c.modeID,
		"roast", c.roast,
		"duration_secs", m.DurationSeconds,
		"rounds_target", m.RoundsTarget,
	)
	return nil
}

// setStateLocked transitions to s and fires the state-change hook.
func (c *Controller) setStateLocked(s State) {
	c.state = s
	if c.onState != nil {
		c.onState(s)
	}
}

// StartSession configures and starts in one step.
func (c *Controller) StartSession(p persona.ID, m persona.ModeID, roast bool) error {
	if err := c.Configure(p, m, roast); err != nil {
		return err
	}
	return c.Start()
}

// IngestFrame scores a raw landmark frame and folds the resulting
// sample into the session. The computed sample is returned so callers
// can stream live scores back to the client; accepted is false when the
// aggregator rejected the sample as a detector dropout.
func (c *Controller) IngestFrame(frame types.LandmarkFrame) (sample types.VisualSample, accepted bool, err error) {
	sample = types.VisualSample{
		EyeContact:  vision.EyeContactScore(frame.Face),
		Posture:     vision.PostureScore(frame.Pose),
		TimestampMs: frame.TimestampMs,
	}
	accepted, err = c.IngestVisualSample(sample)
	if err != nil {
		return types.VisualSample{}, false, err
	}
	return sample, accepted, nil
}

// IngestVisualSample folds one already-scored camera sample into the
// running visual averages. The aggregator decides whether the sample
// counts as an observation; accepted reports that decision.
func (c *Controller) IngestVisualSample(s types.VisualSample) (accepted bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateActive {
		return false, ErrNoActiveSession
	}
	accepted = c.agg.Ingest(s)
	score.ApplyVisual(&c.metrics, c.agg.Snapshot())
	return accepted, nil
}

// IngestAudio transcribes an utterance and runs it as a round. A
// speech-to-text failure returns [ErrTranscription] and leaves the
// round uncounted.
func (c *Controller) IngestAudio(ctx context.Context, audio []byte, format string) (*RoundResult, error) {
	if c.stt == nil {
		return nil, fmt.Errorf("%w: no speech-to-text provider configured", ErrTranscription)
	}
	if c.State() != StateActive {
		return nil, ErrNoActiveSession
	}

	res, err := c.stt.Transcribe(ctx, stt.Request{Audio: audio, Format: format})
	if err != nil {
		c.log.Warn("transcription failed, round not counted", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrTranscription, err)
	}
	return c.IngestTranscript(ctx, res.Text)
}

// IngestTranscript scores one spoken round and produces the persona's
// reply. The chat call runs outside the session lock so camera samples
// keep flowing while the model thinks; if the session ends mid-call the
// reply is dropped.
func (c *Controller) IngestTranscript(ctx context.Context, transcript string) (*RoundResult, error) {
	analysis := speech.Analyze(transcript)
	if analysis.TotalWords == 0 {
		return nil, ErrEmptyTranscript
	}

	c.mu.Lock()
	if c.state != StateActive {
		c.mu.Unlock()
		return nil, ErrNoActiveSession
	}

	score.ApplyRound(&c.metrics, analysis)
	c.messages = append(c.messages, types.Message{Role: types.RoleUser, Content: transcript})

	epoch := c.epoch
	round := c.metrics.Rounds
	history := make([]types.Message, len(c.messages))
	copy(history, c.messages)
	systemPrompt := persona.SystemPrompt(c.personaID, c.roast)
	temperature := 0.7
	if c.roast {
		temperature = 0.9
	}
	voice, _ := persona.Get(c.personaID)
	mode, _ := persona.GetMode(c.modeID)
	c.mu.Unlock()

	reply := c.completeReply(ctx, systemPrompt, history, temperature)
	audio := c.synthesize(ctx, reply, voice.Voice)

	c.mu.Lock()
	if c.epoch != epoch || c.state != StateActive {
		c.mu.Unlock()
		c.log.Debug("session ended during round, reply dropped", "round", round)
		return nil, ErrNoActiveSession
	}
	c.messages = append(c.messages, types.Message{Role: types.RoleAssistant, Content: reply})

	result := &RoundResult{
		Transcript: transcript,
		Analysis:   analysis,
		Reply:      reply,
		Audio:      audio,
		Round:      round,
	}
	if mode.RoundsTarget > 0 && round >= mode.RoundsTarget {
		result.Done = true
		result.Report = c.finishLocked(ctx)
	}
	c.mu.Unlock()

	c.log.Info("round scored",
		"round", round,
		"words", analysis.TotalWords,
		"fillers", analysis.FillerCount,
		"clarity", analysis.ClarityScore,
		"confidence", analysis.ConfidenceScore,
		"done", result.Done,
	)
	return result, nil
}

// completeReply asks the chat backend for the persona's next line.
// Failures and empty replies degrade to a canned follow-up question.
func (c *Controller) completeReply(ctx context.Context, systemPrompt string, history []types.Message, temperature float64) string {
	resp, err := c.chat.Complete(ctx, chat.Request{
		SystemPrompt: systemPrompt,
		Messages:     history,
		Temperature:  temperature,
		MaxTokens:    256,
	})
	if err != nil {
		c.log.Warn("chat completion failed, using fallback follow-up", "error", err)
		return fallbackFollowUp
	}
	reply := report.StripReasoning(resp.Content)
	if reply == "" {
		c.log.Warn("chat reply empty after sanitization, using fallback follow-up")
		return fallbackFollowUp
	}
	return reply
}

// synthesize renders the reply to audio. Best-effort: a TTS failure
// only costs the audio, never the round.
func (c *Controller) synthesize(ctx context.Context, text string, voice types.VoiceProfile) *tts.Audio {
	if c.tts == nil {
		return nil
	}
	audio, err := c.tts.Synthesize(ctx, text, voice)
	if err != nil {
		c.log.Warn("speech synthesis failed, round continues without audio", "error", err)
		return nil
	}
	return audio
}

// End finishes the active session and returns the coaching report.
// Calling End when the session already completed returns the stored
// report, so the client can always retrieve it.
func (c *Controller) End(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateActive:
		return c.finishLocked(ctx), nil
	case StateComplete:
		return c.finalReport, nil
	default:
		return "", fmt.Errorf("%w (state=%s)", ErrNoActiveSession, c.state)
	}
}

// finishLocked runs the active -> scoring -> complete transition. The
// caller holds the lock. Everything the generator needs is snapshotted
// and the lock released for the duration of the call, the same way
// IngestTranscript drops it around the chat call, so reads and camera
// samples never block on a slow remote. Report generation ignores
// caller cancellation so an aborted request still leaves a finished
// session.
func (c *Controller) finishLocked(ctx context.Context) string {
	c.stopTimerLocked()
	c.setStateLocked(StateScoring)

	c.log.Info("session scoring",
		"rounds", c.metrics.Rounds,
		"samples", c.agg.Snapshot().Samples,
		"elapsed", time.Since(c.startedAt).Round(time.Second),
	)

	epoch := c.epoch
	history := make([]types.Message, len(c.messages))
	copy(history, c.messages)
	req := report.Request{
		Metrics:  c.metrics,
		Messages: history,
		Visual:   c.agg.Snapshot(),
		Persona:  c.personaID,
		Mode:     c.modeID,
		Roast:    c.roast,
	}
	c.mu.Unlock()

	reqCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), reportTimeout)
	text, err := c.reports.Generate(reqCtx, req)
	cancel()
	if err != nil {
		// The rule-based fallback never fails, so this only happens
		// with a misconfigured generator. Finish the session anyway.
		c.log.Error("report generation failed", "error", err)
		text = "Session complete. The coaching report could not be generated this time."
	}

	c.mu.Lock()
	if c.epoch != epoch {
		// Reset ran while the generator was out. The session data is
		// gone; hand the text to the caller but store nothing.
		c.log.Debug("session reset during report generation")
		return text
	}
	c.finalReport = text
	c.setStateLocked(StateComplete)
	c.log.Info("session complete", "overall", score.Overall(c.metrics), "grade", score.LetterGrade(score.Overall(c.metrics)))
	return text
}

// expire is the countdown callback for timed modes.
func (c *Controller) expire(epoch int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.epoch != epoch || c.state != StateActive {
		return
	}
	c.log.Info("countdown elapsed, ending session")
	c.finishLocked(context.Background())
}

// Reset returns the controller to idle from any state, discarding all
// session data.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopTimerLocked()
	c.epoch++
	c.setStateLocked(StateIdle)
	c.personaID = ""
	c.modeID = ""
	c.roast = false
	c.metrics = types.SessionMetrics{}
	c.messages = nil
	c.agg.Reset()
	c.startedAt = time.Time{}
	c.deadline = time.Time{}
	c.finalReport = ""
}

// stopTimerLocked clears the countdown. Every transition out of active
// goes through here so no timer outlives its session.
func (c *Controller) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Metrics returns a copy of the running scorecard.
func (c *Controller) Metrics() types.SessionMetrics {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.metrics
}

// Messages returns a copy of the conversation log.
func (c *Controller) Messages() []types.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]types.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// VisualSnapshot returns the current camera aggregate.
func (c *Controller) VisualSnapshot() vision.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.agg.Snapshot()
}

// Report returns the coaching report once the session completed.
func (c *Controller) Report() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.finalReport, c.state == StateComplete
}

// Info returns the public session view used by the status endpoint.
func (c *Controller) Info() Info {
	c.mu.Lock()
	defer c.mu.Unlock()

	info := Info{
		State:     c.state,
		Persona:   c.personaID,
		Mode:      c.modeID,
		Roast:     c.roast,
		Round:     c.metrics.Rounds,
		StartedAt: c.startedAt,
		Snapshot:  c.agg.Snapshot(),
	}
	if c.state == StateActive && !c.deadline.IsZero() {
		if remaining := time.Until(c.deadline); remaining > 0 {
			info.RemainingSecs = int(remaining.Round(time.Second) / time.Second)
		}
	}
	return info
}
