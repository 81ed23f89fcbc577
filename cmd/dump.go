package cmd

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/premtools/unpack/prem"
)

func init() {
	rootCmd.AddCommand(dumpCmd)
	dumpCmd.Flags().Bool("no-header", false, "Omit the CSV header row")
	viper.BindPFlag("dump.no-header", dumpCmd.Flags().Lookup("no-header"))
}

// dumpCmd lists the tokens of a compressed resource as CSV
var dumpCmd = &cobra.Command{
	Use:           "dump [INPUT]",
	Short:         "List the tokens of a compressed resource as CSV",
	Args:          cobra.MaximumNArgs(1),
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		input := "-"
		if len(args) == 1 {
			input = args[0]
		}
		r, closeIn, err := openInput(input)
		if err != nil {
			return err
		}
		defer closeIn()

		stats, err := dumpTokens(cmd.OutOrStdout(), r, !viper.GetBool("dump.no-header"))
		log.WithFields(log.Fields{
			"literals": stats.Literals,
			"refs":     stats.BackRefs,
			"copied":   humanize.Bytes(uint64(stats.Copied)),
			"read":     humanize.Bytes(uint64(stats.Consumed)),
		}).Info(displayName(input))
		if err != nil {
			return fmt.Errorf("failed to decode %s: %w", displayName(input), err)
		}
		return nil
	},
}

var dumpHeader = []string{"index", "input_offset", "output_offset", "kind", "value", "offset", "length", "start"}

// dumpTokens writes one CSV row per token. References are listed with their
// resolved start but not checked; rows already written are kept on error.
func dumpTokens(w io.Writer, r io.Reader, header bool) (prem.Stats, error) {
	var stats prem.Stats

	cw := csv.NewWriter(w)
	defer cw.Flush()
	if header {
		if err := cw.Write(dumpHeader); err != nil {
			return stats, err
		}
	}

	d, err := prem.NewDecoder(r)
	if err != nil {
		return stats, err
	}

	outLen := 0
	for i := 0; ; i++ {
		inOff := d.InputOffset()
		tok, err := d.Next()
		stats.Consumed = d.InputOffset()
		if err != nil {
			return stats, err
		}

		row := []string{strconv.Itoa(i), strconv.FormatInt(inOff, 10), strconv.Itoa(outLen), tok.Kind.String(), "", "", "", ""}
		switch tok.Kind {
		case prem.KindLiteral:
			row[4] = fmt.Sprintf("0x%02x", tok.Value)
			outLen++
			stats.Literals++
		case prem.KindBackRef:
			row[5] = strconv.Itoa(int(tok.Ref.Offset))
			row[6] = strconv.Itoa(int(tok.Ref.Length))
			row[7] = strconv.Itoa(int(tok.Ref.Start(outLen)))
			outLen += int(tok.Ref.Length)
			stats.BackRefs++
			stats.Copied += int(tok.Ref.Length)
		}
		if err := cw.Write(row); err != nil {
			return stats, err
		}
		if tok.Kind == prem.KindEndOfFile {
			cw.Flush()
			return stats, cw.Error()
		}
	}
}
