package cmd

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/telecontrol-mt/calendario/internal/clip"
	"github.com/telecontrol-mt/calendario/internal/config"
	"github.com/telecontrol-mt/calendario/internal/gate"
	"github.com/telecontrol-mt/calendario/internal/tui"
	"github.com/telecontrol-mt/calendario/internal/watcher"
)

func runTUI(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	b, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	model := tui.New(ctx, tui.Deps{
		Config:    cfg,
		Session:   b.sess,
		Calendar:  b.cal,
		Source:    b.src,
		Modal:     b.modal(),
		Cromo:     b.api,
		Mover:     b.reschedule(),
		Clipboard: clip.New(clip.WithTerminal(os.Stderr)),
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	// Prompts are answered in the password overlay instead of the terminal.
	b.sess.Gate().SetNotify(func(pr gate.Prompt) {
		p.Send(tui.PromptMsg{Prompt: pr})
	})

	go startTUIWatcher(ctx, cfg, p)

	_, err = p.Run()
	return err
}

func startTUIWatcher(ctx context.Context, cfg *config.Config, p *tea.Program) {
	w, err := watcher.New(cfg.Dir(), []string{config.ConfigFileName}, func() {
		p.Send(tui.ReloadMsg{})
	})
	if err != nil {
		return // non-fatal: TUI works without live reload
	}
	defer w.Close()
	w.Run(ctx, nil)
}
