package cmd

import (
	"slices"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/telecontrol-mt/calendario/internal/event"
	"github.com/telecontrol-mt/calendario/internal/modal"
)

var editCmd = &cobra.Command{
	Use:   "edit ID",
	Short: "Edit a task",
	Long: `Modifies fields of an existing task through the edit form. Only the given
fields change; the rest keep their stored values. Use --set field=value for
any form field (tipo, marca, modelo, ut, pedido, ajuste, lado, cuenta,
horario_start, horario_end, horario_none, lugar_obrador, lugar, ...).
The password is asked before saving.`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

func init() {
	addFormFlags(editCmd)
	rootCmd.AddCommand(editCmd)
}

// addFormFlags registers the field flags shared by edit and create.
func addFormFlags(cmd *cobra.Command) {
	cmd.Flags().StringArray("set", nil, "set a form field (field=value, repeatable)")
	cmd.Flags().String("estado", "", "new estado")
	cmd.Flags().String("tarea", "", "new task kind")
	cmd.Flags().String("comentario", "", "new comment (markdown)")
	cmd.Flags().SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		switch name {
		case "status":
			name = "estado"
		case "kind":
			name = "tarea"
		case "comment":
			name = "comentario"
		}
		return pflag.NormalizedName(name)
	})
}

func runEdit(cmd *cobra.Command, args []string) error {
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
	m.OpenEdit(ev)
	if err := applyFormFlags(cmd, m); err != nil {
		return err
	}
	if err := m.Save(ctx); err != nil {
		return err
	}
	return reportMutation(ev.ID, "edit", "Tarea %s guardada", ev.ID)
}

// cascadeOrder lists the fields whose value resets others; they are set
// first so the explicit values of the dependent fields survive.
var cascadeOrder = []string{
	modal.KeyTipo, modal.KeyMarca, modal.KeyModelo, modal.KeyObrador, modal.KeyHorarioNone,
}

// applyFormFlags writes the convenience flags and every --set assignment
// into the open form.
func applyFormFlags(cmd *cobra.Command, m *modal.Modal) error {
	type assignment struct{ key, value string }
	var all []assignment

	sets, _ := cmd.Flags().GetStringArray("set")
	for _, s := range sets {
		k, v, err := event.ParseAssignment(s)
		if err != nil {
			return err
		}
		all = append(all, assignment{k, v})
	}
	for flag, key := range map[string]string{
		"estado":     modal.KeyEstado,
		"tarea":      modal.KeyTarea,
		"comentario": modal.KeyComentario,
	} {
		if cmd.Flags().Changed(flag) {
			v, _ := cmd.Flags().GetString(flag)
			all = append(all, assignment{key, v})
		}
	}

	rank := func(key string) int {
		if i := slices.Index(cascadeOrder, key); i >= 0 {
			return i
		}
		return len(cascadeOrder)
	}
	slices.SortStableFunc(all, func(a, b assignment) int { return rank(a.key) - rank(b.key) })

	for _, a := range all {
		if err := m.Set(a.key, a.value); err != nil {
			return err
		}
	}
	return nil
}
