// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/medscan/internal/classify"
	"github.com/pdiddy/medscan/internal/pipeline"
	"github.com/pdiddy/medscan/internal/source"
	"github.com/pdiddy/medscan/pkg/types"
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify the images of one PDF, URL, or file",
	Long: `Classify extracts every raster image from exactly one input source and
labels each one medical or non-medical.

Select the source with exactly one of --pdf, --image-url, --page-url, or
--file. --url is a convenience that treats links ending in an image
extension as --image-url and everything else as --page-url.`,
	RunE: runClassify,
}

func init() {
	classifyCmd.Flags().String("pdf", "", "path to a local PDF")
	classifyCmd.Flags().String("image-url", "", "direct image URL")
	classifyCmd.Flags().String("page-url", "", "webpage URL to scan for images")
	classifyCmd.Flags().String("url", "", "image or page URL, auto-detected by extension")
	classifyCmd.Flags().String("file", "", "path to a local image file")
	classifyCmd.Flags().Float64("threshold", 0, "flag report lines below this confidence (display only)")
	classifyCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default from config, 30s)")
	classifyCmd.Flags().String("labels", "", "YAML file overriding the built-in label prompts")

	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	src, err := sourceFromFlags(cmd)
	if err != nil {
		return err
	}

	labels, err := labelsFromFlags(cmd)
	if err != nil {
		return err
	}

	modelCfg := modelConfigFromViper()
	threshold, _ := cmd.Flags().GetFloat64("threshold")

	logger.Debug("starting run")
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

	cfg := pipeline.Config{
		ImageSide: modelCfg.ImageSide,
		Threshold: threshold,
	}
	_, err = pipeline.Run(cmd.Context(), src, cl, cfg, os.Stdout)
	return err
}

// sourceFromFlags builds the one source the flags select, or errors when
// the selection is not exactly one.
func sourceFromFlags(cmd *cobra.Command) (source.Source, error) {
	pdfPath, _ := cmd.Flags().GetString("pdf")
	imageURL, _ := cmd.Flags().GetString("image-url")
	pageURL, _ := cmd.Flags().GetString("page-url")
	anyURL, _ := cmd.Flags().GetString("url")
	filePath, _ := cmd.Flags().GetString("file")

	set := 0
	for _, v := range []string{pdfPath, imageURL, pageURL, anyURL, filePath} {
		if v != "" {
			set++
		}
	}
	if set != 1 {
		return nil, fmt.Errorf("provide exactly one of --pdf, --image-url, --page-url, --url, or --file")
	}

	httpCfg := types.HTTPConfig{
		Timeout:   viper.GetDuration("http.timeout"),
		UserAgent: viper.GetString("http.user_agent"),
	}
	if t, _ := cmd.Flags().GetDuration("timeout"); t > 0 {
		httpCfg.Timeout = t
	}
	client := &http.Client{Timeout: httpCfg.Timeout}

	if anyURL != "" {
		if source.IsDirectImageURL(anyURL) {
			imageURL = anyURL
		} else {
			pageURL = anyURL
		}
	}

	switch {
	case pdfPath != "":
		return &source.PDFSource{Path: pdfPath, Logger: logger}, nil
	case imageURL != "":
		return &source.ImageURLSource{URL: imageURL, Client: client, UserAgent: httpCfg.UserAgent}, nil
	case pageURL != "":
		return &source.PageURLSource{URL: pageURL, Client: client, UserAgent: httpCfg.UserAgent, Logger: logger}, nil
	default:
		return &source.FileSource{Path: filePath}, nil
	}
}

// labelsFromFlags resolves the label set: --labels flag, then the
// labels_file config key, then the built-in defaults.
func labelsFromFlags(cmd *cobra.Command) (classify.LabelSet, error) {
	path, _ := cmd.Flags().GetString("labels")
	if path == "" {
		path = viper.GetString("labels_file")
	}
	if path == "" {
		return classify.DefaultLabels(), nil
	}
	return classify.LoadLabels(path)
}

func modelConfigFromViper() types.ModelConfig {
	return types.ModelConfig{
		ImageEncoderPath: viper.GetString("model.image_encoder"),
		TextEncoderPath:  viper.GetString("model.text_encoder"),
		TokenizerPath:    viper.GetString("model.tokenizer"),
		ImageSide:        viper.GetInt("model.image_side"),
		EmbedDim:         viper.GetInt("model.embed_dim"),
		ContextLength:    viper.GetInt("model.context_length"),
		ORTLibraryPath:   viper.GetString("model.ort_library"),
	}
}
