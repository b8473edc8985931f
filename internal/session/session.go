// Package session hosts playback for connected clients. Each Session owns one
// engine.Controller and runs every command and frame tick for it on a single
// goroutine, so the controller never sees concurrent calls.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/inamate/vizscene/internal/engine"
	"github.com/inamate/vizscene/internal/render"
	"github.com/inamate/vizscene/internal/render/recorder"
	"github.com/inamate/vizscene/internal/sample"
	"github.com/inamate/vizscene/internal/scene"
)

const inboxSize = 32

var ErrNoSceneSource = errors.New("no scene store configured")

// SceneSource looks up stored scenes by ID.
type SceneSource interface {
	Get(ctx context.Context, id string) (*scene.Scene, error)
}

// Config holds playback settings shared by all sessions.
type Config struct {
	// AutoPlay starts playback as soon as a scene is loaded.
	AutoPlay bool
	// MaxFPS caps the tick rate below a scene's own fps. Zero means no cap.
	MaxFPS float64
}

type Session struct {
	id      string
	cfg     Config
	ctrl    *engine.Controller
	emit    func(*Message)
	scenes  SceneSource
	painter *render.Painter
	logger  *slog.Logger
	now     func() time.Time

	inbox chan *Message
	seq   int64

	ticker    *time.Ticker
	tickGen   uint64
	lastTick  time.Time
	completed *engine.Completion
}

type Option func(*Session)

func WithConfig(cfg Config) Option {
	return func(s *Session) { s.cfg = cfg }
}

func WithSceneSource(src SceneSource) Option {
	return func(s *Session) { s.scenes = src }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// New creates a session that reports events through emit. emit is called
// from the session goroutine and must not block.
func New(id string, emit func(*Message), opts ...Option) *Session {
	s := &Session{
		id:     id,
		emit:   emit,
		logger: slog.Default(),
		now:    time.Now,
		inbox:  make(chan *Message, inboxSize),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("session", id)
	s.painter = render.NewPainter(render.WithLogger(s.logger))
	s.ctrl = engine.NewController(engine.WithCompletionHook(func(c engine.Completion) {
		s.completed = &c
	}))
	return s
}

func (s *Session) ID() string {
	return s.id
}

// Submit queues a client command for the session goroutine.
func (s *Session) Submit(ctx context.Context, msg *Message) error {
	select {
	case s.inbox <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run processes commands and frame ticks until ctx is canceled.
func (s *Session) Run(ctx context.Context) error {
	defer s.stopTicker()

	for {
		var tickC <-chan time.Time
		if s.ticker != nil {
			tickC = s.ticker.C
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-s.inbox:
			s.handle(ctx, msg)
		case now := <-tickC:
			s.tick(s.tickGen, now)
		}
	}
}

func (s *Session) handle(ctx context.Context, msg *Message) {
	switch msg.Type {
	case TypeSceneLoad:
		if err := s.load(ctx, msg.Payload); err != nil {
			s.sendError(err)
			return
		}
	case TypePlaybackPlay:
		if s.ctrl.Scene() == nil {
			s.sendError(engine.ErrNoScene)
			return
		}
		s.ctrl.Play()
	case TypePlaybackPause:
		s.ctrl.Pause()
	case TypePlaybackSeek:
		var p SeekPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			s.sendError(fmt.Errorf("invalid seek payload: %w", err))
			return
		}
		s.ctrl.Seek(p.CursorMs)
	case TypePlaybackRestart:
		s.ctrl.Restart()
	default:
		s.logger.Warn("unknown message type", "type", msg.Type)
		s.sendError(fmt.Errorf("unknown message type %q", msg.Type))
		return
	}

	s.reschedule()
	s.send(TypePlaybackState, s.ctrl.Snapshot())
	s.sendFrame()
}

func (s *Session) load(ctx context.Context, raw json.RawMessage) error {
	var p SceneLoadPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return fmt.Errorf("invalid scene payload: %w", err)
	}

	var sc *scene.Scene
	switch {
	case p.Scene != nil:
		sc = p.Scene
	case p.SceneID != "":
		if s.scenes == nil {
			return ErrNoSceneSource
		}
		stored, err := s.scenes.Get(ctx, p.SceneID)
		if err != nil {
			return fmt.Errorf("load scene %s: %w", p.SceneID, err)
		}
		sc = stored
	case p.Sample != "":
		smp, ok := sample.Get(p.Sample)
		if !ok {
			return fmt.Errorf("unknown sample %q", p.Sample)
		}
		sc = smp.Scene
	default:
		return errors.New("scene.load needs scene, sceneId or sample")
	}

	if err := s.ctrl.LoadScene(sc); err != nil {
		return err
	}
	s.logger.Info("scene loaded", "scene", sc.ID, "layers", len(sc.Layers))

	if s.cfg.AutoPlay {
		s.ctrl.Play()
	}
	return nil
}

// reschedule keeps the ticker in step with the controller: running only
// while playing, and restarted whenever the generation moves on.
func (s *Session) reschedule() {
	if s.ctrl.Mode() != engine.ModePlaying {
		s.stopTicker()
		return
	}
	gen := s.ctrl.Generation()
	if s.ticker != nil && s.tickGen == gen {
		return
	}

	s.stopTicker()
	s.ticker = time.NewTicker(s.interval())
	s.tickGen = gen
	s.lastTick = s.now()
}

func (s *Session) interval() time.Duration {
	fps := s.ctrl.Scene().FPS
	if s.cfg.MaxFPS > 0 && fps > s.cfg.MaxFPS {
		fps = s.cfg.MaxFPS
	}
	return time.Duration(float64(time.Second) / fps)
}

func (s *Session) stopTicker() {
	if s.ticker != nil {
		s.ticker.Stop()
		s.ticker = nil
	}
}

// tick advances playback by the wall-clock time since the previous tick.
// Ticks from an older generation are dropped by the controller.
func (s *Session) tick(gen uint64, now time.Time) {
	delta := float64(now.Sub(s.lastTick)) / float64(time.Millisecond)
	s.lastTick = now

	if !s.ctrl.Advance(gen, delta) {
		return
	}
	s.sendFrame()

	if c := s.completed; c != nil {
		s.completed = nil
		s.stopTicker()
		s.send(TypePlaybackComplete, CompletePayload{SceneID: c.SceneID, Generation: c.Generation})
		s.send(TypePlaybackState, s.ctrl.Snapshot())
	}
}

func (s *Session) sendFrame() {
	if s.ctrl.Scene() == nil {
		return
	}
	frame := s.ctrl.Frame()

	rec := recorder.New()
	payload := FramePayload{CursorMs: frame.CursorMs}
	if err := s.painter.Paint(rec, frame.Layers); err != nil {
		var frameErrs *render.FrameErrors
		if errors.As(err, &frameErrs) {
			for _, e := range frameErrs.Errs {
				payload.Issues = append(payload.Issues, e.Error())
			}
		} else {
			payload.Issues = []string{err.Error()}
		}
	}
	payload.Commands = rec.Commands()
	if payload.Commands == nil {
		payload.Commands = []recorder.DrawCommand{}
	}
	s.send(TypeFrame, payload)
}

func (s *Session) sendError(err error) {
	p := ErrorPayload{Message: err.Error()}
	var verr *scene.ValidationError
	if errors.As(err, &verr) {
		for _, f := range verr.Fields {
			p.Fields = append(p.Fields, f.String())
		}
	}
	s.send(TypeError, p)
}

func (s *Session) send(msgType string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("marshal payload", "type", msgType, "error", err)
		return
	}
	s.seq++
	s.emit(&Message{
		Type:      msgType,
		SessionID: s.id,
		Seq:       s.seq,
		Payload:   data,
	})
}
