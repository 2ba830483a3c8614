package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"kernc/internal/cpu"
	"kernc/internal/driver"
	"kernc/internal/target"
	"kernc/internal/ui"
)

type targetPayload struct {
	Target      string   `json:"target"`
	Source      string   `json:"source"`
	OS          string   `json:"os"`
	Arch        string   `json:"arch"`
	Bits        int      `json:"bits"`
	Features    []string `json:"features"`
	Accelerator string   `json:"accelerator"`
	Triple      string   `json:"triple"`
	DataLayout  string   `json:"data_layout"`
	HostCPU     []string `json:"host_cpu"`
}

func newTargetCmd(a *app) *cobra.Command {
	var (
		override string
		format   string
	)
	cmd := &cobra.Command{
		Use:   "target",
		Short: "Show the effective target and how it was chosen",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format = strings.ToLower(format)
			if format != "text" && format != "json" {
				return fmt.Errorf("unsupported format %q (must be text or json)", format)
			}
			t, src, err := a.session(override, nil).EffectiveTarget(cmd.Context())
			if err != nil {
				return err
			}
			p := newTargetPayload(t, src)
			if format == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(p)
			}
			renderTarget(cmd.OutOrStdout(), a.styles(cmd.OutOrStdout()), p)
			return nil
		},
	}
	cmd.Flags().StringVar(&override, "target", "", "override string applied to the host target")
	cmd.Flags().StringVar(&format, "format", "text", "output format (text|json)")
	return cmd
}

func newTargetPayload(t target.Target, src driver.Source) targetPayload {
	features := t.Features.Names()
	if features == nil {
		features = []string{}
	}
	osName := t.OS.String()
	if osName == "" {
		osName = "unknown"
	}
	return targetPayload{
		Target:      t.String(),
		Source:      string(src),
		OS:          osName,
		Arch:        t.Arch.String(),
		Bits:        t.Bits,
		Features:    features,
		Accelerator: t.Accelerator().String(),
		Triple:      t.Triple(),
		DataLayout:  t.DataLayout(),
		HostCPU:     hostCPUFeatures(),
	}
}

func hostCPUFeatures() []string {
	f, err := cpu.Host()
	if err != nil {
		return []string{}
	}
	out := []string{}
	for _, c := range []struct {
		on   bool
		name string
	}{
		{f.SSE2, "sse2"}, {f.SSE41, "sse4.1"}, {f.AVX, "avx"}, {f.F16C, "f16c"},
		{f.RDRAND, "rdrand"}, {f.AVX2, "avx2"}, {f.NEON, "neon"},
	} {
		if c.on {
			out = append(out, c.name)
		}
	}
	return out
}

func renderTarget(w io.Writer, st ui.Styles, p targetPayload) {
	fmt.Fprintln(w, st.Title.Render(p.Target))
	rows := [][]string{
		{"source", p.Source},
		{"os", p.OS},
		{"arch", fmt.Sprintf("%s (%d-bit)", p.Arch, p.Bits)},
		{"features", orNone(strings.Join(p.Features, ", "))},
		{"accelerator", p.Accelerator},
		{"triple", p.Triple},
		{"data layout", p.DataLayout},
		{"host cpu", orNone(strings.Join(p.HostCPU, ", "))},
	}
	tbl := ui.Table{Rows: rows}
	tbl.Style = func(_, col int) lipgloss.Style {
		if col == 0 {
			return st.Key
		}
		return st.Plain
	}
	fmt.Fprint(w, tbl.String())
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
