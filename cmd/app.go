package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/daikw/scenariochat/internal/chat"
	"github.com/daikw/scenariochat/internal/config"
	"github.com/daikw/scenariochat/internal/conversation"
	"github.com/daikw/scenariochat/internal/listen"
	"github.com/daikw/scenariochat/internal/llm"
	"github.com/daikw/scenariochat/internal/scenario"
	"github.com/daikw/scenariochat/internal/voice"
	"github.com/daikw/scenariochat/internal/voice/provider"
)

// appContext is built once per command and handed to every component.
type appContext struct {
	cfg       *config.Config
	scenarios *scenario.Store
}

// loadConfig reads the config file and applies command line overrides.
func loadConfig(c *cli.Command) (*config.Config, string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, "", fmt.Errorf("failed to get working directory: %w", err)
	}

	cfg, path, err := config.NewLoader().Load(c.String("config"), cwd)
	if err != nil {
		return nil, "", err
	}
	applyFlags(cfg, c)
	cfg.ApplyDefaults()

	if problems := cfg.Validate(); len(problems) > 0 {
		return nil, "", fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return cfg, path, nil
}

func applyFlags(cfg *config.Config, c *cli.Command) {
	override := func(dst *string, flag string) {
		if v := c.String(flag); v != "" {
			*dst = v
		}
	}
	override(&cfg.Scenarios, "scenarios")
	override(&cfg.LLM.Provider, "llm-provider")
	override(&cfg.LLM.Model, "model")
	override(&cfg.LLM.APIKey, "api-key")
	override(&cfg.Speech.Provider, "tts-provider")
	override(&cfg.Speech.Voice, "voice")
	override(&cfg.Speech.Region, "region")
	override(&cfg.Speech.ProjectID, "project-id")

	if c.Bool("mute") {
		cfg.Speech.Disabled = true
	}
	if c.Bool("supersede") {
		cfg.Supersede = true
	}
}

// loadApp loads the configuration and the scenario store. Both failures are
// fatal at startup.
func loadApp(c *cli.Command) (*appContext, error) {
	cfg, path, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	store, err := scenario.Load(scenario.Resolve(cfg.Scenarios))
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("config", path).
		Str("scenarios", store.Source()).
		Str("llm", cfg.LLM.Provider).
		Str("speech", cfg.Speech.Provider).
		Msg("Application context loaded")
	return &appContext{cfg: cfg, scenarios: store}, nil
}

func (a *appContext) newLLM() (llm.Client, error) {
	return llm.New(llm.Options{
		Provider: a.cfg.LLM.Provider,
		APIKey:   a.cfg.LLM.APIKey,
		Model:    a.cfg.LLM.Model,
		BaseURL:  a.cfg.LLM.BaseURL,
	})
}

func (a *appContext) newProvider(ctx context.Context) (provider.Provider, error) {
	s := a.cfg.Speech
	return provider.NewFactory().CreateProvider(ctx, provider.Settings{
		Provider:  s.Provider,
		APIKey:    s.APIKey,
		Region:    s.Region,
		Engine:    s.Engine,
		ProjectID: s.ProjectID,
		Model:     s.Model,
		Language:  s.Language,
		Host:      s.Host,
	})
}

// newSpeech creates the synthesis client and enumerates its voices. It
// returns nil without error when speech is disabled.
func (a *appContext) newSpeech(ctx context.Context) (*voice.Client, error) {
	if a.cfg.Speech.Disabled {
		return nil, nil
	}

	p, err := a.newProvider(ctx)
	if err != nil {
		return nil, err
	}

	var player voice.Player
	if cp, err := voice.NewCommandPlayer(a.cfg.Speech.Player); err != nil {
		log.Warn().Err(err).Msg("Replies will not be played")
	} else {
		player = cp
		log.Debug().Strs("player", cp.Command()).Msg("Using audio player")
	}

	client := voice.NewClient(p, player, voice.Options{
		Engine:   a.cfg.Speech.Engine,
		Model:    a.cfg.Speech.Model,
		Language: a.cfg.Speech.Language,
		Speed:    a.cfg.Speech.Speed,
	})
	if err := client.Init(ctx); err != nil {
		return nil, err
	}
	return client, nil
}

// newCapture creates the microphone adapter. It returns nil without error
// when recognition is disabled.
func (a *appContext) newCapture() (*listen.Adapter, error) {
	r := a.cfg.Recognition
	if r.Disabled {
		return nil, nil
	}

	recorder, err := listen.NewCommandRecorder(r.Recorder, r.MaxSeconds)
	if err != nil {
		return nil, err
	}

	key := r.APIKey
	if key == "" {
		key = os.Getenv("OPENAI_API_KEY")
	}
	if key == "" {
		return nil, errors.New("OpenAI API key is required for speech recognition")
	}

	log.Debug().Str("recorder", recorder.Tool()).Msg("Voice input enabled")
	return listen.NewAdapter(recorder, listen.NewWhisperRecognizer(key, r.Model, r.Language, r.BaseURL)), nil
}

// session wires one orchestrator for a transcript. Speech and capture
// failures degrade to a notice in the transcript instead of aborting.
type session struct {
	orch      *chat.Orchestrator
	selection *chat.Selection
}

func (a *appContext) newSession(ctx context.Context, c *cli.Command, display conversation.Display, withCapture bool) (*session, error) {
	client, err := a.newLLM()
	if err != nil {
		return nil, err
	}

	deps := chat.Deps{
		Scenarios: a.scenarios,
		LLM:       client,
		Display:   display,
	}

	speech, err := a.newSpeech(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Speech synthesis disabled")
		display.Append(conversation.SystemError, "Speech unavailable: "+err.Error())
	}
	var voices []string
	if speech != nil {
		deps.Speech = speech
		voices = speech.VoiceIDs()
	}

	if withCapture {
		capture, err := a.newCapture()
		if err != nil {
			log.Warn().Err(err).Msg("Voice input disabled")
		} else if capture != nil {
			deps.Capture = capture
		}
	}

	deps.Selection = chat.NewSelection(a.scenarios.Names(), voices, c.String("scenario"), a.cfg.Speech.Voice)

	orch := chat.New(deps, chat.Options{
		Workers:   a.cfg.Workers,
		QueueSize: a.cfg.QueueSize,
		Timeout:   a.cfg.Timeout(),
		Supersede: a.cfg.Supersede,
	})
	return &session{orch: orch, selection: deps.Selection}, nil
}
