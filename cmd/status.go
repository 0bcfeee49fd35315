package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/urfave/cli/v3"

	"github.com/daikw/scenariochat/internal/listen"
	"github.com/daikw/scenariochat/internal/scenario"
	"github.com/daikw/scenariochat/internal/voice"
)

func handleStatus(ctx context.Context, c *cli.Command) error {
	issues := 0
	warnings := 0

	ok := func(format string, args ...any) {
		fmt.Printf("%s %s\n", color.GreenString("✓"), fmt.Sprintf(format, args...))
	}
	warn := func(format string, args ...any) {
		warnings++
		fmt.Printf("%s %s\n", color.YellowString("!"), fmt.Sprintf(format, args...))
	}
	fail := func(format string, args ...any) {
		issues++
		fmt.Printf("%s %s\n", color.RedString("✗"), fmt.Sprintf(format, args...))
	}

	cfg, path, err := loadConfig(c)
	if err != nil {
		fail("config: %v", err)
		return fmt.Errorf("%d issue(s) found", issues)
	}
	if path == "" {
		warn("config: no file, using defaults (run 'scenariochat config init')")
	} else {
		ok("config: %s", path)
	}

	if store, err := scenario.Load(scenario.Resolve(cfg.Scenarios)); err != nil {
		fail("scenarios: %v", err)
	} else {
		ok("scenarios: %d from %s", len(store.Names()), store.Source())
	}

	a := &appContext{cfg: cfg}
	if _, err := a.newLLM(); err != nil {
		fail("llm: %v", err)
	} else {
		ok("llm: %s", cfg.LLM.Provider)
	}

	if cfg.Speech.Disabled {
		warn("speech: disabled")
	} else {
		checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		p, err := a.newProvider(checkCtx)
		switch {
		case err != nil:
			fail("speech: %v", err)
		case !p.IsAvailable(checkCtx):
			fail("speech: %s is not reachable", p.Name())
		default:
			ok("speech: %s", p.Name())
		}
		cancel()

		if player, err := voice.NewCommandPlayer(cfg.Speech.Player); err != nil {
			fail("player: %v", err)
		} else {
			ok("player: %v", player.Command())
		}
	}

	if cfg.Recognition.Disabled {
		warn("voice input: disabled")
	} else {
		if recorder, err := listen.NewCommandRecorder(cfg.Recognition.Recorder, cfg.Recognition.MaxSeconds); err != nil {
			fail("recorder: %v", err)
		} else {
			ok("recorder: %s", recorder.Tool())
		}
		if cfg.Recognition.APIKey == "" && os.Getenv("OPENAI_API_KEY") == "" {
			fail("recognition: OpenAI API key not set")
		} else {
			ok("recognition: %s", cfg.Recognition.Model)
		}
	}

	fmt.Println()
	switch {
	case issues > 0:
		return fmt.Errorf("%d issue(s), %d warning(s)", issues, warnings)
	case warnings > 0:
		fmt.Printf("Ready with %d warning(s)\n", warnings)
	default:
		fmt.Println("Ready")
	}
	return nil
}
