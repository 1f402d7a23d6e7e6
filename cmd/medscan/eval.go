// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/medscan/internal/classify"
	"github.com/pdiddy/medscan/internal/evaluate"
)

var evalCmd = &cobra.Command{
	Use:   "eval <dir>",
	Short: "Benchmark accuracy and latency against a labeled directory",
	Long: `Eval classifies every image under <dir> and scores the results against
the directory layout: one subdirectory per label (medical/, non-medical/),
each holding images of that label. It reports accuracy per label, mean
latency, and throughput.`,
	Args: cobra.ExactArgs(1),
	RunE: runEval,
}

func init() {
	evalCmd.Flags().String("labels", "", "YAML file overriding the built-in label prompts")

	rootCmd.AddCommand(evalCmd)
}

func runEval(cmd *cobra.Command, args []string) error {
	labels, err := labelsFromFlags(cmd)
	if err != nil {
		return err
	}

	modelCfg := modelConfigFromViper()
	enc, err := classify.NewCLIPEncoder(modelCfg)
	if err != nil {
		return err
	}
	cl, err := classify.New(enc, labels)
	if err != nil {
		enc.Close()
		return err
	}
	defer cl.Close()

	outcome, err := evaluate.Run(cmd.Context(), args[0], cl, modelCfg.ImageSide, os.Stdout)
	if err != nil {
		return err
	}
	if outcome.Total == 0 {
		return fmt.Errorf("no decodable images under %s", args[0])
	}
	return nil
}
