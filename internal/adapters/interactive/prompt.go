package interactive

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/manifoldco/promptui"
	"github.com/sahilm/fuzzy"
	"github.com/vinci-protocol/vinci-deploy/internal/domain/config"
	"github.com/vinci-protocol/vinci-deploy/internal/usecase"
)

// PromptAdapter asks the operator through promptui
type PromptAdapter struct {
	config *config.RuntimeConfig
}

// NewPromptAdapter creates a new prompt adapter
func NewPromptAdapter(cfg *config.RuntimeConfig) *PromptAdapter {
	return &PromptAdapter{config: cfg}
}

// Confirm asks a yes/no question. --yes answers it; non-interactive mode refuses it.
func (p *PromptAdapter) Confirm(ctx context.Context, prompt string) (bool, error) {
	if p.config.AssumeYes {
		return true, nil
	}
	if p.config.NonInteractive {
		return false, fmt.Errorf("confirmation required in non-interactive mode, pass --yes")
	}

	confirm := promptui.Prompt{
		Label:     prompt,
		IsConfirm: true,
	}
	if _, err := confirm.Run(); err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		return false, fmt.Errorf("confirmation cancelled: %w", err)
	}
	return true, nil
}

// Select picks one of options with fuzzy search
func (p *PromptAdapter) Select(ctx context.Context, label string, options []string) (string, error) {
	if len(options) == 0 {
		return "", fmt.Errorf("nothing to select")
	}
	if len(options) == 1 {
		return options[0], nil
	}
	if p.config.NonInteractive {
		return "", fmt.Errorf("interactive selection not available in non-interactive mode")
	}

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "▸ {{ . | cyan }}",
		Inactive: "  {{ . | faint }}",
		Selected: "✓ {{ . | green }}",
		Help:     color.New(color.FgYellow).Sprint("Use arrow keys to navigate, Enter to select"),
	}

	sel := promptui.Select{
		Label:             label,
		Items:             options,
		Templates:         templates,
		Size:              10,
		StartInSearchMode: true,
		Searcher:          fuzzySearcher(options),
	}
	index, _, err := sel.Run()
	if err != nil {
		return "", fmt.Errorf("selection cancelled: %w", err)
	}
	return options[index], nil
}

func fuzzySearcher(items []string) func(input string, index int) bool {
	return func(input string, index int) bool {
		if input == "" {
			return true
		}
		input = strings.ToLower(input)
		item := strings.ToLower(items[index])
		if strings.Contains(item, input) {
			return true
		}
		return len(fuzzy.Find(input, []string{item})) > 0
	}
}

var (
	_ usecase.Confirmer = (*PromptAdapter)(nil)
	_ usecase.Selector  = (*PromptAdapter)(nil)
)
