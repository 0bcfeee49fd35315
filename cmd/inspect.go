package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli/v3"

	"github.com/daikw/scenariochat/internal/config"
	"github.com/daikw/scenariochat/internal/scenario"
)

func handleScenariosList(ctx context.Context, c *cli.Command) error {
	cfg, _, err := loadConfig(c)
	if err != nil {
		return err
	}
	store, err := scenario.Load(scenario.Resolve(cfg.Scenarios))
	if err != nil {
		return err
	}

	name := color.New(color.FgCyan, color.Bold)
	dim := color.New(color.Faint)

	fmt.Printf("Scenarios from %s:\n", store.Source())
	for _, n := range store.Names() {
		prompt, _ := store.Lookup(n)
		name.Printf("  %s", n)
		dim.Printf("  %s\n", summarize(prompt, 60))
	}
	return nil
}

func handleScenariosShow(ctx context.Context, c *cli.Command) error {
	n := c.Args().Get(0)
	if n == "" {
		return fmt.Errorf("scenario name is required")
	}

	cfg, _, err := loadConfig(c)
	if err != nil {
		return err
	}
	store, err := scenario.Load(scenario.Resolve(cfg.Scenarios))
	if err != nil {
		return err
	}

	prompt, err := store.Lookup(n)
	if err != nil {
		return fmt.Errorf("%w (available: %s)", err, strings.Join(store.Names(), ", "))
	}
	fmt.Println(prompt)
	return nil
}

// summarize returns the first line of s cut to width runes.
func summarize(s string, width int) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	r := []rune(line)
	if len(r) <= width {
		return line
	}
	return string(r[:width-1]) + "…"
}

func handleVoices(ctx context.Context, c *cli.Command) error {
	cfg, _, err := loadConfig(c)
	if err != nil {
		return err
	}

	a := &appContext{cfg: cfg}
	p, err := a.newProvider(ctx)
	if err != nil {
		return fmt.Errorf("failed to create provider: %w", err)
	}

	voices, err := p.ListVoices(ctx)
	if err != nil {
		return fmt.Errorf("failed to list %s voices: %w", p.Name(), err)
	}

	id := color.New(color.FgCyan, color.Bold)
	dim := color.New(color.Faint)

	fmt.Printf("Available voices for %s:\n\n", p.Name())
	for _, v := range voices {
		marker := "  "
		if v.ID == cfg.Speech.Voice {
			marker = color.GreenString("* ")
		}
		fmt.Print(marker)
		id.Print(v.ID)
		if v.Name != "" && v.Name != v.ID {
			fmt.Printf(" - %s", v.Name)
		}
		var details []string
		for _, d := range []string{v.Gender, v.Language} {
			if d != "" {
				details = append(details, d)
			}
		}
		if len(details) > 0 {
			fmt.Printf(" (%s)", strings.Join(details, ", "))
		}
		if v.Description != "" {
			dim.Printf("  %s", v.Description)
		}
		fmt.Println()
	}
	return nil
}

func handleConfigInit(ctx context.Context, c *cli.Command) error {
	path := c.String("config")
	if path == "" {
		loader := config.NewLoader()
		if c.Bool("global") {
			path = loader.GlobalPath()
		} else {
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
			path = loader.ProjectPath(cwd)
		}
	}

	if err := config.WriteExample(path); err != nil {
		return err
	}

	fmt.Printf("%s %s\n", color.GreenString("Created"), path)
	fmt.Println("Edit it to pick your language model, speech engine and voice.")
	return nil
}

func handleConfigShow(ctx context.Context, c *cli.Command) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	cfg, path, err := config.NewLoader().Load(c.String("config"), cwd)
	if err != nil {
		return err
	}
	applyFlags(cfg, c)
	cfg.ApplyDefaults()

	if path == "" {
		fmt.Println(color.YellowString("# no config file found, showing defaults"))
	} else {
		abs, _ := filepath.Abs(path)
		fmt.Printf("# %s\n", abs)
	}

	data, err := json.MarshalIndent(cfg.MaskSecrets(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	fmt.Println(string(data))

	for _, p := range cfg.Validate() {
		fmt.Println(color.RedString("! %s", p))
	}
	return nil
}
