// Package tts wires the synthesis pipeline: text normalization,
// tokenization, style lookup, inference, and post-processing. Each request
// runs the stages as strict sequential dependencies; the only cross-request
// state is the loaded engine session and the voice style cache, both owned
// by the caller-constructed Service.
package tts

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/example/go-kitten-tts/internal/audio"
	"github.com/example/go-kitten-tts/internal/engine"
	"github.com/example/go-kitten-tts/internal/text"
	"github.com/example/go-kitten-tts/internal/vocab"
	"github.com/example/go-kitten-tts/internal/voice"
)

// Engine executes one inference call against the loaded model session.
// *engine.Runner is the production implementation.
type Engine interface {
	Run(ctx context.Context, inputs map[string]*engine.Tensor) (map[string]*engine.Tensor, error)
}

// Service owns the loaded model session, the tokenizer, and the voice style
// cache. Generation requests are serialized: the engine session is not
// assumed reentrant, so at most one inference call is in flight at a time.
type Service struct {
	mu     sync.Mutex
	eng    Engine
	tok    vocab.Tokenizer
	styles *voice.Store
	hooks  []audio.Hook
	log    *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithHooks sets sample-domain post-processing applied after inference.
func WithHooks(hooks ...audio.Hook) Option {
	return func(s *Service) { s.hooks = hooks }
}

// WithLogger sets the slog.Logger used for per-stage logging.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.log = l }
}

// NewService builds a Service over an engine, a tokenizer, and a style store.
func NewService(eng Engine, tok vocab.Tokenizer, styles *voice.Store, opts ...Option) *Service {
	s := &Service{
		eng:    eng,
		tok:    tok,
		styles: styles,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// ClampSpeed bounds a playback speed to the range the model accepts.
func ClampSpeed(v float64) float64 {
	if v < engine.MinSpeed {
		return engine.MinSpeed
	}

	if v > engine.MaxSpeed {
		return engine.MaxSpeed
	}

	return v
}

// Styles returns the service's voice style store.
func (s *Service) Styles() *voice.Store {
	return s.styles
}

// Synthesize runs one generation request end to end and returns the raw
// waveform samples. speed is clamped to the model's accepted range before
// tensor construction. A failed request leaves no partial state behind;
// calling again after an abandoned attempt is safe.
func (s *Service) Synthesize(ctx context.Context, input, voiceID string, speed float64) ([]float32, error) {
	if s.eng == nil {
		return nil, engine.ErrModelNotLoaded
	}

	normalized, err := text.Normalize(input)
	if err != nil {
		return nil, fmt.Errorf("normalize input: %w", err)
	}

	tokens := vocab.TruncateTokens(s.tok.Tokenize(normalized))
	tokenCount := vocab.ClampTokenCount(tokens)

	style, err := s.styles.StyleSlice(voiceID, tokenCount)
	if err != nil {
		return nil, fmt.Errorf("style lookup for voice %q: %w", voiceID, err)
	}

	inputs, err := engine.BuildInputs(tokens, style, float32(ClampSpeed(speed)))
	if err != nil {
		return nil, err
	}

	s.log.DebugContext(ctx, "running inference",
		slog.String("voice", voiceID),
		slog.Int("tokens", tokenCount),
		slog.Float64("speed", ClampSpeed(speed)),
	)

	s.mu.Lock()
	outputs, err := s.eng.Run(ctx, inputs)
	s.mu.Unlock()

	if err != nil {
		return nil, err
	}

	samples, err := engine.ExtractWaveform(outputs)
	if err != nil {
		return nil, err
	}

	return audio.ApplyHooks(samples, s.hooks...), nil
}

// SynthesizeChunks synthesizes each sentence chunk in order and concatenates
// the waveforms.
func (s *Service) SynthesizeChunks(ctx context.Context, chunks []string, voiceID string, speed float64) ([]float32, error) {
	if len(chunks) == 0 {
		return nil, text.ErrEmptyText
	}

	var combined []float32
	for i, chunk := range chunks {
		samples, err := s.Synthesize(ctx, chunk, voiceID, speed)
		if err != nil {
			return nil, fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err)
		}

		combined = append(combined, samples...)
	}

	return combined, nil
}

// SynthesizeWAV is Synthesize followed by canonical WAV encoding.
func (s *Service) SynthesizeWAV(ctx context.Context, input, voiceID string, speed float64) ([]byte, error) {
	samples, err := s.Synthesize(ctx, input, voiceID, speed)
	if err != nil {
		return nil, err
	}

	return audio.EncodeWAV(samples, audio.ExpectedSampleRate)
}

// SynthesizeToFile runs SynthesizeWAV and publishes the result under dir via
// the write-then-rename handoff. It returns the published file path.
func (s *Service) SynthesizeToFile(ctx context.Context, input, voiceID string, speed float64, dir string) (string, error) {
	wav, err := s.SynthesizeWAV(ctx, input, voiceID, speed)
	if err != nil {
		return "", err
	}

	path, err := audio.Save(dir, wav)
	if err != nil {
		return "", err
	}

	s.log.InfoContext(ctx, "audio published",
		slog.String("voice", voiceID),
		slog.String("path", path),
		slog.Int("wav_bytes", len(wav)),
	)

	return path, nil
}
