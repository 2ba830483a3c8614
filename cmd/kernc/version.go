package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"kernc/internal/rtmod"
	"kernc/internal/version"
)

type versionInfo struct {
	Version   string
	GitCommit string
	BuildDate string
	Payloads  string
	Modules   int
}

type versionPayload struct {
	Tool      string `json:"tool"`
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
	Payloads  string `json:"payloads"`
	Modules   int    `json:"modules"`
}

func newVersionCmd(_ *app) *cobra.Command {
	var (
		format string
		full   bool
	)
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show kernc build fingerprints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format = strings.ToLower(format)
			switch format {
			case "pretty", "json":
			default:
				return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
			}
			info, err := collectVersionInfo(rtmod.Default())
			if err != nil {
				return err
			}
			if format == "json" {
				return renderVersionJSON(cmd.OutOrStdout(), info)
			}
			renderVersionPretty(cmd.OutOrStdout(), info, full)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "pretty", "output format (pretty|json)")
	cmd.Flags().BoolVar(&full, "full", false, "show commit, build date and payload digest")
	return cmd
}

func collectVersionInfo(reg *rtmod.Registry) (versionInfo, error) {
	digest, err := reg.Digest()
	if err != nil {
		return versionInfo{}, err
	}
	v := strings.TrimSpace(version.Version)
	if v == "" {
		v = "dev"
	}
	return versionInfo{
		Version:   v,
		GitCommit: strings.TrimSpace(version.GitCommit),
		BuildDate: strings.TrimSpace(version.BuildDate),
		Payloads:  hex.EncodeToString(digest[:]),
		Modules:   len(reg.Descriptors()),
	}, nil
}

func renderVersionPretty(out io.Writer, info versionInfo, full bool) {
	fmt.Fprintf(out, "kernc %s\n", version.Colored())
	fmt.Fprintf(out, "payloads: %s (%d modules)\n", info.Payloads[:12], info.Modules)
	if full {
		fmt.Fprintf(out, "commit:   %s\n", valueOrUnknown(info.GitCommit))
		fmt.Fprintf(out, "built:    %s\n", valueOrUnknown(info.BuildDate))
		fmt.Fprintf(out, "digest:   %s\n", info.Payloads)
	}
}

func renderVersionJSON(out io.Writer, info versionInfo) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(versionPayload{
		Tool:      "kernc",
		Version:   info.Version,
		GitCommit: info.GitCommit,
		BuildDate: info.BuildDate,
		Payloads:  info.Payloads,
		Modules:   info.Modules,
	})
}

func valueOrUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
