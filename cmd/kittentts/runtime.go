package main

import (
	"fmt"

	"github.com/example/go-kitten-tts/internal/config"
	"github.com/example/go-kitten-tts/internal/engine"
	"github.com/example/go-kitten-tts/internal/tts"
	"github.com/example/go-kitten-tts/internal/vocab"
	"github.com/example/go-kitten-tts/internal/voice"
)

// appRuntime bundles the loaded pipeline pieces a command needs, plus the
// engine session that must be closed when the command finishes.
type appRuntime struct {
	svc    *tts.Service
	runner *engine.Runner
	voices *voice.Manager
}

// Close tears down the engine session.
func (a *appRuntime) Close() {
	if a == nil {
		return
	}
	a.runner.Close()
}

// buildRuntime loads the tokenizer, voice styles, and model session described
// by cfg and wires them into a synthesis service.
func buildRuntime(cfg config.Config) (*appRuntime, error) {
	tok, err := buildTokenizer(cfg)
	if err != nil {
		return nil, err
	}

	voices, styles, err := loadVoices(cfg.Paths.VoicesManifest)
	if err != nil {
		return nil, err
	}

	info, err := engine.DetectRuntime(cfg.Runtime.ORTLibraryPath, cfg.Runtime.ORTVersion)
	if err != nil {
		return nil, fmt.Errorf("locate onnx runtime: %w", err)
	}

	runner, err := engine.NewRunner(cfg.Paths.ModelPath, engine.RunnerConfig{
		LibraryPath: info.LibraryPath,
		APIVersion:  cfg.Runtime.APIVersion,
	})
	if err != nil {
		return nil, fmt.Errorf("load model %q: %w", cfg.Paths.ModelPath, err)
	}

	return &appRuntime{
		svc:    tts.NewService(runner, tok, styles),
		runner: runner,
		voices: voices,
	}, nil
}

func buildTokenizer(cfg config.Config) (vocab.Tokenizer, error) {
	backend, err := config.NormalizeTokenizer(cfg.TTS.Tokenizer)
	if err != nil {
		return nil, err
	}

	switch backend {
	case config.TokenizerSentencePiece:
		return vocab.NewSentencePieceTokenizer(cfg.TTS.TokenizerModel)
	default:
		table, err := vocab.LoadTable(cfg.Paths.VocabPath)
		if err != nil {
			return nil, fmt.Errorf("load vocabulary: %w", err)
		}
		return vocab.NewTableTokenizer(table), nil
	}
}

// loadVoices reads the manifest and loads every resolvable style blob into
// a fresh store. Voices whose blob file is absent are skipped so a partially
// downloaded voice set still serves the voices it has.
func loadVoices(manifestPath string) (*voice.Manager, *voice.Store, error) {
	mgr, err := voice.NewManager(manifestPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load voice manifest: %w", err)
	}

	styles := voice.NewStore()
	loaded := 0
	for _, v := range mgr.ListVoices() {
		path, err := mgr.ResolvePath(v.ID)
		if err != nil {
			continue
		}

		if err := styles.LoadFile(v.ID, path); err != nil {
			return nil, nil, fmt.Errorf("load voice %q: %w", v.ID, err)
		}
		loaded++
	}

	if loaded == 0 {
		return nil, nil, fmt.Errorf("no voice style files available under %q; run kittentts voice download", manifestPath)
	}

	return mgr, styles, nil
}
