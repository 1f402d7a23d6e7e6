// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"
)

var labelsCmd = &cobra.Command{
	Use:   "labels",
	Short: "Print the active label prompt set as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		set, err := labelsFromFlags(cmd)
		if err != nil {
			return err
		}
		data, err := yaml.Marshal(set)
		if err != nil {
			return fmt.Errorf("marshaling labels: %w", err)
		}
		_, err = os.Stdout.Write(data)
		return err
	},
}

func init() {
	labelsCmd.Flags().String("labels", "", "YAML file overriding the built-in label prompts")

	rootCmd.AddCommand(labelsCmd)
}
