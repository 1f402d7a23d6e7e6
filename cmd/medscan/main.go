// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the medscan CLI.
// See docs/ARCHITECTURE.md § CLI Surface.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is set at build time via ldflags.
var version = "dev"

// logger is the process-wide diagnostic logger. The classification report
// goes to stdout; zap output goes to stderr and stays silent unless
// --verbose is set.
var logger = zap.NewNop()

// rootCmd is the base command for the medscan CLI.
var rootCmd = &cobra.Command{
	Use:   "medscan",
	Short: "Extract images from PDFs and web pages and label them medical / non-medical",
	Long: `medscan extracts raster images from a PDF, a direct image URL, a webpage,
or a local file, then zero-shot classifies each image as medical or
non-medical with a CLIP-style dual-encoder model running on ONNX Runtime.

Each run handles exactly one input source and prints one report line per
image, followed by a summary.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		if !verbose {
			return nil
		}
		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		l, err := cfg.Build()
		if err != nil {
			return fmt.Errorf("building logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./medscan.yaml or ~/.config/medscan/config.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "log diagnostics to stderr")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("medscan")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "medscan"))
		}
	}

	viper.SetDefault("model.image_encoder", "models/clip-image.onnx")
	viper.SetDefault("model.text_encoder", "models/clip-text.onnx")
	viper.SetDefault("model.tokenizer", "models/tokenizer.json")
	viper.SetDefault("model.image_side", 224)
	viper.SetDefault("model.embed_dim", 512)
	viper.SetDefault("model.context_length", 77)
	viper.SetDefault("http.user_agent", "medscan/0.1")
	viper.SetDefault("http.timeout", "30s")

	viper.SetEnvPrefix("MEDSCAN")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
