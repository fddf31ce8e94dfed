// Command cisctl inspects and builds identifiers offline, without a server
// or database.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"cis/internal/scheme"
	"cis/internal/sctid"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	var format string

	root := &cobra.Command{
		Use:   "cisctl",
		Short: "Offline tools for SNOMED CT and legacy scheme identifiers",
		Long: `cisctl validates, composes and steps identifiers locally.

Examples:
  cisctl check 609354008
  cisctl compose --namespace 1000003 --partition 10 --sequence 42
  cisctl scheme next CTV3ID 0000z`,
		SilenceUsage: true,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVarP(&format, "format", "f", "text", "Output format: text|json")

	root.AddCommand(newCheckCmd(&format), newComposeCmd(), newSchemeCmd())
	return root
}

func newCheckCmd(format *string) *cobra.Command {
	return &cobra.Command{
		Use:   "check <sctid>...",
		Short: "Validate SCTIDs and show their structure",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			invalid := 0
			for _, id := range args {
				report := sctid.Check(id)
				if !report.Valid {
					invalid++
				}
				if err := printReport(cmd.OutOrStdout(), *format, report); err != nil {
					return err
				}
			}
			if invalid > 0 {
				return fmt.Errorf("%d of %d identifiers are invalid", invalid, len(args))
			}
			return nil
		},
	}
}

func printReport(w io.Writer, format string, r sctid.Report) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}
	if !r.Valid {
		_, err := fmt.Fprintf(w, "%s\tinvalid\t%s\n", r.SCTID, r.ErrorMessage)
		return err
	}
	ns := int64(0)
	if r.Namespace != nil {
		ns = *r.Namespace
	}
	var seq int64
	if r.Sequence != nil {
		seq = *r.Sequence
	}
	_, err := fmt.Fprintf(w, "%s\tvalid\tnamespace=%d partition=%s sequence=%d component=%s\n",
		r.SCTID, ns, r.PartitionID, seq, r.ComponentType)
	return err
}

func newComposeCmd() *cobra.Command {
	var (
		namespace int64
		partition string
		sequence  int64
	)
	cmd := &cobra.Command{
		Use:   "compose",
		Short: "Build an SCTID from its parts, computing the check digit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, err := sctid.Compose(namespace, partition, sequence)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), id)
			return err
		},
	}
	cmd.Flags().Int64VarP(&namespace, "namespace", "n", 0, "Namespace (0 for core)")
	cmd.Flags().StringVarP(&partition, "partition", "p", "", "Two digit partition id (required)")
	cmd.Flags().Int64VarP(&sequence, "sequence", "s", 0, "Item identifier")
	_ = cmd.MarkFlagRequired("partition")
	return cmd
}

func newSchemeCmd() *cobra.Command {
	registry := scheme.DefaultRegistry()
	cmd := &cobra.Command{
		Use:   "scheme",
		Short: "Work with legacy scheme identifiers (" + strings.Join(registry.Names(), ", ") + ")",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "next <scheme> [previous]",
		Short: "Print the identifier following previous, or the first one",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			gen, err := registry.Lookup(args[0])
			if err != nil {
				return err
			}
			prev := ""
			if len(args) == 2 {
				prev = args[1]
			}
			next, err := gen.Next(prev)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), next)
			return err
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "valid <scheme> <id>...",
		Short: "Check identifiers against a scheme's format",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			gen, err := registry.Lookup(args[0])
			if err != nil {
				return err
			}
			bad := 0
			for _, id := range args[1:] {
				ok := gen.Valid(id)
				if !ok {
					bad++
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%t\n", id, ok)
			}
			if bad > 0 {
				return fmt.Errorf("%d identifiers are not valid %s ids", bad, gen.Name())
			}
			return nil
		},
	})
	return cmd
}
