package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/jonathan/cv-builder/internal/browser"
	"github.com/jonathan/cv-builder/internal/config"
	"github.com/jonathan/cv-builder/internal/logging"
	"github.com/jonathan/cv-builder/internal/schemas"
	"github.com/jonathan/cv-builder/internal/templates"
	"github.com/jonathan/cv-builder/internal/types"
	"github.com/spf13/cobra"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			Bold(true)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("7"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11"))
)

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) logging.Logger {
	return logging.New(os.Stderr, cfg.Log.Format, cfg.Log.Level)
}

func newChrome(cfg *config.Config, spool browser.Spool, logger logging.Logger) *browser.Chrome {
	return browser.New(browser.Config{ExecPath: cfg.Chrome.Path, Timeout: cfg.Chrome.Timeout}, spool, logger)
}

// readDocument loads a CV JSON file. The file is checked against the schema
// before it is decoded.
func readDocument(path string) (*types.CVData, error) {
	if path == "" {
		return nil, fmt.Errorf("--in is required")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	if err := schemas.ValidateCV(raw); err != nil {
		return nil, fmt.Errorf("invalid document %s: %w", path, err)
	}
	var cv types.CVData
	if err := json.Unmarshal(raw, &cv); err != nil {
		return nil, fmt.Errorf("failed to parse document %s: %w", path, err)
	}
	return &cv, nil
}

// readSettings loads settings from path, or the defaults when path is empty.
// A non-empty template overrides the file.
func readSettings(path, template string) (types.CVSettings, error) {
	settings := types.DefaultSettings()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return settings, fmt.Errorf("failed to read settings: %w", err)
		}
		if err := json.Unmarshal(raw, &settings); err != nil {
			return settings, fmt.Errorf("failed to parse settings %s: %w", path, err)
		}
	}
	if template != "" {
		settings.Template = template
	}
	if err := settings.Validate(); err != nil {
		return settings, err
	}
	return settings, nil
}

// documentFlags are shared by every command that renders a document.
type documentFlags struct {
	in       string
	settings string
	template string
}

func addDocumentFlags(cmd *cobra.Command, f *documentFlags) {
	cmd.Flags().StringVarP(&f.in, "in", "i", "", "Path to the CV JSON document (required)")
	cmd.Flags().StringVarP(&f.settings, "settings", "s", "", "Path to a settings JSON file")
	cmd.Flags().StringVarP(&f.template, "template", "t", "", "Template id, overrides the settings file")
}

func (f *documentFlags) render() (*types.CVData, types.CVSettings, *templates.VisualTree, error) {
	cv, err := readDocument(f.in)
	if err != nil {
		return nil, types.CVSettings{}, nil, err
	}
	settings, err := readSettings(f.settings, f.template)
	if err != nil {
		return nil, settings, nil, err
	}
	tree, err := templates.Render(cv, settings)
	if err != nil {
		return nil, settings, nil, fmt.Errorf("failed to render document: %w", err)
	}
	return cv, settings, tree, nil
}

func readFile(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(raw), nil
}

// writeOutput writes data to path, or to w when path is empty or "-".
func writeOutput(w io.Writer, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := w.Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
