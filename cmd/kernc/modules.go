package main

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"kernc/internal/compose"
	"kernc/internal/rtmod"
	"kernc/internal/ui"
)

func newModulesCmd(a *app) *cobra.Command {
	var (
		override string
		selected bool
	)
	cmd := &cobra.Command{
		Use:   "modules",
		Short: "List the runtime modules built into kernc",
		Long: `List every registered runtime module. Modules selected for the effective
target are marked with '*', in link order; the device library is marked 'd'
when the target has one.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := a.session(override, nil)
			t, _, err := s.EffectiveTarget(cmd.Context())
			if err != nil {
				return err
			}
			reg := s.Registry()
			sels, err := compose.SelectFrom(t, reg.Descriptors())
			if err != nil {
				return err
			}
			order := make(map[string]int, len(sels))
			for i, sel := range sels {
				order[sel.Descriptor.Key()] = i + 1
			}

			tbl := ui.Table{Header: []string{"", "#", "MODULE", "KIND", "GROUP", "PAYLOAD"}, MaxWidth: 40}
			marked := make([]bool, 0, len(reg.Descriptors()))
			for _, d := range reg.Descriptors() {
				mark, pos := "", ""
				if n, ok := order[d.Key()]; ok {
					mark, pos = "*", strconv.Itoa(n)
				} else if d.Group == rtmod.GroupDevice && d.Applies(t) {
					mark = "d"
				}
				if selected && mark == "" {
					continue
				}
				payload := d.FileName(t.Bits)
				if !reg.Has(d, t.Bits) {
					payload += " (missing)"
				}
				tbl.Rows = append(tbl.Rows, []string{mark, pos, d.Stem(t.Bits), d.Kind.String(), d.Group.String(), payload})
				marked = append(marked, mark != "")
			}

			st := a.styles(cmd.OutOrStdout())
			tbl.Style = func(row, _ int) lipgloss.Style {
				switch {
				case row < 0:
					return st.Title
				case marked[row]:
					return st.Selected
				default:
					return st.Dim
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n\n", st.Title.Render(t.String()), st.Dim.Render(fmt.Sprintf("%d of %d modules selected", len(sels), len(reg.Descriptors()))))
			fmt.Fprint(cmd.OutOrStdout(), tbl.String())
			return nil
		},
	}
	cmd.Flags().StringVar(&override, "target", "", "override string applied to the host target")
	cmd.Flags().BoolVar(&selected, "selected", false, "only list modules used by the target")
	return cmd
}
