package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/copyleftdev/tundr-problems/internal/logging"
	"github.com/copyleftdev/tundr-problems/internal/optimization"
)

const (
	Version = "0.1.0"
	appName = "problemctl"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		logLevel string
		logger   = logging.NewNop()
	)

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Inspect and convert optimization problem definitions",
		Long: `problemctl validates optimization problem documents (YAML or JSON)
and converts them to and from the protobuf wire form served by the
problem registry.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger = logging.New(logging.ParseLevel(logLevel), cmd.ErrOrStderr())
		},
	}
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	log := func() *logging.Logger { return logger }

	cmd.AddCommand(
		validateCmd(log),
		encodeCmd(log),
		decodeCmd(log),
		featuresCmd(log),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
			},
		},
	)
	return cmd
}

func validateCmd(log func() *logging.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE",
		Short: "Validate a problem document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := optimization.LoadDocument(args[0])
			if err != nil {
				log().Debug("Validation failed", map[string]interface{}{
					"file":   args[0],
					"reason": optimization.ReasonOf(err),
				})
				return err
			}
			names := p.FeatureSpace().DimensionNames()
			fmt.Fprintf(cmd.OutOrStdout(), "valid: %d feature dimensions (%s)\n", len(names), strings.Join(names, ", "))
			return nil
		},
	}
}

func encodeCmd(log func() *logging.Logger) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "encode FILE",
		Short: "Encode a problem document to protobuf wire bytes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := optimization.LoadDocument(args[0])
			if err != nil {
				return err
			}
			data, err := p.MarshalWire(nil)
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			log().Info("Wrote wire message", map[string]interface{}{"file": output, "bytes": len(data)})
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	return cmd
}

func decodeCmd(log func() *logging.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "decode FILE",
		Short: "Decode protobuf wire bytes and print the problem document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			log().Debug("Decoding wire message", map[string]interface{}{"file": args[0], "bytes": len(data)})
			p, err := optimization.UnmarshalWire(data, nil)
			if err != nil {
				return err
			}
			out, err := yaml.Marshal(p.ToDocument())
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}

func featuresCmd(log func() *logging.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "features FILE",
		Short: "List the modeling dimensions of a problem's feature space",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := optimization.LoadDocument(args[0])
			if err != nil {
				return err
			}
			dims := optimization.ModelingDimensions(p.FeatureSpace())
			log().Debug("Listing features", map[string]interface{}{"count": len(dims)})
			for _, d := range dims {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", d.Name(), d.Kind())
			}
			return nil
		},
	}
}
