// Command hl7fhir converts HL7 v2.5 ADT messages into FHIR R4 transaction
// Bundles from the command line (§10.3).
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/svoer/hl7fhir/convert"
	"github.com/svoer/hl7fhir/internal/config"
	"github.com/svoer/hl7fhir/terminology"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "hl7fhir",
		Short: "Convert HL7 v2.5 ADT messages to FHIR R4 transaction Bundles",
	}
	rootCmd.AddCommand(convertCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func convertCmd() *cobra.Command {
	var strictFlag bool
	cmd := &cobra.Command{
		Use:   "convert <file>",
		Short: "Convert one HL7 message file to a FHIR Bundle printed on stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			logger := zerolog.New(os.Stderr).Level(parseLevel(cfg.LogLevel)).With().Timestamp().Logger()

			opts := []convert.Option{
				convert.WithLogger(logger),
				convert.WithGenerateTestINS(cfg.GenerateTestINS),
				convert.WithStrict(cfg.Strict || strictFlag),
				convert.WithBroadScanCoveragePeriodEnd(cfg.BroadScanCoverage),
			}
			if cfg.CataloguePath != "" {
				raw, err := os.ReadFile(cfg.CataloguePath)
				if err != nil {
					return fmt.Errorf("read catalogue %s: %w", cfg.CataloguePath, err)
				}
				cat, err := terminology.Load(raw)
				if err != nil {
					return fmt.Errorf("parse catalogue %s: %w", cfg.CataloguePath, err)
				}
				opts = append(opts, convert.WithCatalogue(cat))
			}

			result, err := convert.Convert(data, opts...)
			if err != nil {
				return err
			}

			for _, w := range result.Warnings {
				logger.Warn().Str("kind", string(w.Kind)).Str("segment", w.Segment).Msg(w.Detail)
			}
			for _, f := range result.InvariantFindings {
				logger.Error().Str("invariant", f.Invariant).Msg(f.Message)
			}

			out, err := json.MarshalIndent(result.Bundle, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal bundle: %w", err)
			}
			fmt.Println(string(out))
			return nil
		},
	}
	cmd.Flags().BoolVar(&strictFlag, "strict", false, "run Bundle invariant checks and log findings")
	return cmd
}

func parseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(s)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}
