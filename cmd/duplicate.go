package cmd

import (
	"github.com/spf13/cobra"

	"github.com/telecontrol-mt/calendario/internal/event"
	"github.com/telecontrol-mt/calendario/internal/modal"
)

var duplicateCmd = &cobra.Command{
	Use:     "duplicate ID",
	Aliases: []string{"dup", "copy"},
	Short:   "Copy a task to another day",
	Long: `Creates a copy of a task with every stored field. The copy keeps the source
date unless --date is given and starts as PROGRAMADO unless --estado is given.
The password is asked before creating the copy.`,
	Args: cobra.ExactArgs(1),
	RunE: runDuplicate,
}

func init() {
	duplicateCmd.Flags().String("date", "", "date of the copy (YYYY-MM-DD)")
	duplicateCmd.Flags().String("estado", "", "estado of the copy")
	rootCmd.AddCommand(duplicateCmd)
}

func runDuplicate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	b, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	ev, err := b.task(ctx, event.ID(args[0]))
	if err != nil {
		return err
	}

	m := b.modal()
	if err := m.OpenDuplicate(ev); err != nil {
		return err
	}
	if cmd.Flags().Changed("date") {
		v, _ := cmd.Flags().GetString("date")
		if err := m.Set(modal.KeyDupFecha, v); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("estado") {
		v, _ := cmd.Flags().GetString("estado")
		if err := m.Set(modal.KeyDupEstado, v); err != nil {
			return err
		}
	}
	if err := m.Duplicate(ctx); err != nil {
		return err
	}
	return reportMutation(ev.ID, "duplicate", "Copia de la tarea %s creada", ev.ID)
}
