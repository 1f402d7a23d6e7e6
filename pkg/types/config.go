// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by sources that fetch over
// the network.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "medscan/0.1"). Some image hosts reject the Go default.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ModelConfig locates the dual-encoder model artifacts and describes the
// tensor shapes the exported ONNX graphs expect.
type ModelConfig struct {
	// ImageEncoderPath is the ONNX file for the vision tower
	// (input "pixel_values", output "image_embeds").
	ImageEncoderPath string `json:"image_encoder" yaml:"image_encoder"`

	// TextEncoderPath is the ONNX file for the text tower
	// (inputs "input_ids"/"attention_mask", output "text_embeds").
	TextEncoderPath string `json:"text_encoder" yaml:"text_encoder"`

	// TokenizerPath is the HuggingFace tokenizer.json for the text tower.
	TokenizerPath string `json:"tokenizer" yaml:"tokenizer"`

	// ImageSide is the square input dimension the vision tower expects
	// (224 for the reference CLIP export).
	ImageSide int `json:"image_side" yaml:"image_side"`

	// EmbedDim is the shared embedding width (512 for the reference export).
	EmbedDim int `json:"embed_dim" yaml:"embed_dim"`

	// ContextLength is the fixed token length of the text tower (77).
	ContextLength int `json:"context_length" yaml:"context_length"`

	// ORTLibraryPath optionally points at the ONNX Runtime shared
	// library when it is not on the default search path.
	ORTLibraryPath string `json:"ort_library,omitempty" yaml:"ort_library,omitempty"`
}

// PipelineConfig holds settings for one classification run.
type PipelineConfig struct {
	HTTPConfig `yaml:",inline"`

	// Threshold is a display-only confidence floor: items below it are
	// flagged low-confidence on their report line. It never changes the
	// winning label.
	Threshold float64 `json:"threshold" yaml:"threshold"`

	// LabelsPath optionally overrides the built-in label prompt set
	// with a YAML file.
	LabelsPath string `json:"labels_file,omitempty" yaml:"labels_file,omitempty"`
}
