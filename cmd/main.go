package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/daikw/scenariochat/internal/voice/provider"
)

var (
	version  = "dev"
	revision = "none"
)

func main() {
	// Setup logger
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	app := &cli.Command{
		Name:  "scenariochat",
		Usage: "Role-play conversations with an AI persona, by keyboard or voice",
		Description: `scenariochat lets you practice conversations against a named scenario
such as a job interview. Each turn is sent to a language model with the
scenario's persona prompt, shown in the transcript and read aloud.`,
		Version: fmt.Sprintf("%s (rev: %s)", version, revision),
		Flags:   globalFlags(),
		Action:  handleChat,
		Commands: []*cli.Command{
			{
				Name:   "chat",
				Usage:  "Start the interactive chat (default)",
				Action: handleChat,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "log-file",
						Usage: "Log destination while the chat screen is open",
						Value: filepath.Join(os.TempDir(), "scenariochat.log"),
					},
				},
			},
			{
				Name:      "ask",
				Usage:     "Run one turn without the chat screen and print the transcript",
				ArgsUsage: "<message>",
				Action:    handleAsk,
			},
			{
				Name:    "scenarios",
				Aliases: []string{"sc"},
				Usage:   "Inspect available scenarios",
				Commands: []*cli.Command{
					{
						Name:    "list",
						Aliases: []string{"ls"},
						Usage:   "List scenario names",
						Action:  handleScenariosList,
					},
					{
						Name:      "show",
						Usage:     "Print a scenario's persona prompt",
						ArgsUsage: "<name>",
						Action:    handleScenariosShow,
					},
				},
			},
			{
				Name:   "voices",
				Usage:  "List the voices of the configured speech engine",
				Action: handleVoices,
			},
			{
				Name:   "status",
				Usage:  "Check configuration, engines and audio tools",
				Action: handleStatus,
			},
			{
				Name:   "mcp",
				Usage:  "Serve chat turns as MCP tools over stdio",
				Action: handleMCP,
			},
			{
				Name:  "config",
				Usage: "Manage the configuration file",
				Commands: []*cli.Command{
					{
						Name:   "init",
						Usage:  "Write an example configuration file",
						Action: handleConfigInit,
						Flags: []cli.Flag{
							&cli.BoolFlag{
								Name:    "global",
								Aliases: []string{"g"},
								Usage:   "Write ~/.scenariochat/config.json instead of the project file",
							},
						},
					},
					{
						Name:   "show",
						Usage:  "Print the effective configuration with secrets masked",
						Action: handleConfigShow,
					},
				},
			},
		},
		Before: func(ctx context.Context, c *cli.Command) error {
			if c.Bool("verbose") {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			} else {
				zerolog.SetGlobalLevel(zerolog.InfoLevel)
			}
			return nil
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("Failed to run application")
	}
}

// globalFlags are accepted by every command.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"V"},
			Usage:   "Enable verbose logging",
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Config file (default: ./.scenariochat/config.json, then ~/.scenariochat/config.json)",
		},
		&cli.StringFlag{
			Name:  "scenarios",
			Usage: "Scenario file (.json, .yaml) or directory of <name>.md prompts",
		},
		&cli.StringFlag{
			Name:    "scenario",
			Aliases: []string{"s"},
			Usage:   "Initially selected scenario",
		},
		&cli.StringFlag{
			Name:  "llm-provider",
			Usage: "Language model provider: openai, anthropic",
		},
		&cli.StringFlag{
			Name:  "model",
			Usage: "Language model identifier",
		},
		&cli.StringFlag{
			Name:  "api-key",
			Usage: "API key for the language model (or use OPENAI_API_KEY / ANTHROPIC_API_KEY)",
		},
		&cli.StringFlag{
			Name:  "tts-provider",
			Usage: "Speech engine: " + strings.Join(provider.NewFactory().ListProviders(), ", "),
		},
		&cli.StringFlag{
			Name:  "voice",
			Usage: "Voice ID (engine specific, see 'scenariochat voices')",
		},
		&cli.StringFlag{
			Name:  "region",
			Usage: "AWS region for Polly",
		},
		&cli.StringFlag{
			Name:  "project-id",
			Usage: "Google Cloud project ID for GCP TTS",
		},
		&cli.BoolFlag{
			Name:  "mute",
			Usage: "Do not synthesize replies",
		},
		&cli.BoolFlag{
			Name:  "supersede",
			Usage: "Cancel the previous in-flight turn when a new one is sent",
		},
	}
}
