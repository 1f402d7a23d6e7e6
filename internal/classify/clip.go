// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classify

import (
	"fmt"

	"github.com/daulet/tokenizers"
	ort "github.com/yalue/onnxruntime_go"

	"github.com/pdiddy/medscan/pkg/types"
)

// Tensor names of the HuggingFace CLIP ONNX export.
const (
	imageInputName  = "pixel_values"
	imageOutputName = "image_embeds"
	textIDsName     = "input_ids"
	textMaskName    = "attention_mask"
	textOutputName  = "text_embeds"
)

// Per-channel pixel normalization constants of the CLIP preprocessor.
var (
	clipMean = [3]float32{0.48145466, 0.4578275, 0.40821073}
	clipStd  = [3]float32{0.26862954, 0.26130258, 0.27577711}
)

const (
	defaultImageSide     = 224
	defaultEmbedDim      = 512
	defaultContextLength = 77
)

// CLIPEncoder runs the two towers of a CLIP export on ONNX Runtime:
// one session for the vision tower, one for the text tower, with
// preallocated input/output tensors reused across calls. Calls are
// sequential by design; the encoder is not safe for concurrent use.
type CLIPEncoder struct {
	side   int
	ctxLen int

	imageSession *ort.AdvancedSession
	imageInput   *ort.Tensor[float32]
	imageOutput  *ort.Tensor[float32]

	textSession *ort.AdvancedSession
	idsInput    *ort.Tensor[int64]
	maskInput   *ort.Tensor[int64]
	textOutput  *ort.Tensor[float32]

	tokenizer *tokenizers.Tokenizer
}

// NewCLIPEncoder loads both towers and the tokenizer. Every failure here
// wraps types.ErrModelUnavailable: nothing can be classified without the
// model, so the caller aborts before touching any image.
func NewCLIPEncoder(cfg types.ModelConfig) (*CLIPEncoder, error) {
	side := cfg.ImageSide
	if side <= 0 {
		side = defaultImageSide
	}
	dim := cfg.EmbedDim
	if dim <= 0 {
		dim = defaultEmbedDim
	}
	ctxLen := cfg.ContextLength
	if ctxLen <= 0 {
		ctxLen = defaultContextLength
	}

	if cfg.ORTLibraryPath != "" {
		ort.SetSharedLibraryPath(cfg.ORTLibraryPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, modelErr("initializing ONNX runtime", err)
	}

	e := &CLIPEncoder{side: side, ctxLen: ctxLen}

	var err error
	e.imageInput, err = ort.NewEmptyTensor[float32](ort.NewShape(1, 3, int64(side), int64(side)))
	if err != nil {
		e.destroy()
		return nil, modelErr("creating image input tensor", err)
	}
	e.imageOutput, err = ort.NewEmptyTensor[float32](ort.NewShape(1, int64(dim)))
	if err != nil {
		e.destroy()
		return nil, modelErr("creating image output tensor", err)
	}
	e.imageSession, err = ort.NewAdvancedSession(cfg.ImageEncoderPath,
		[]string{imageInputName}, []string{imageOutputName},
		[]ort.ArbitraryTensor{e.imageInput}, []ort.ArbitraryTensor{e.imageOutput},
		nil)
	if err != nil {
		e.destroy()
		return nil, modelErr(fmt.Sprintf("loading image encoder %s", cfg.ImageEncoderPath), err)
	}

	e.idsInput, err = ort.NewEmptyTensor[int64](ort.NewShape(1, int64(ctxLen)))
	if err != nil {
		e.destroy()
		return nil, modelErr("creating token id tensor", err)
	}
	e.maskInput, err = ort.NewEmptyTensor[int64](ort.NewShape(1, int64(ctxLen)))
	if err != nil {
		e.destroy()
		return nil, modelErr("creating attention mask tensor", err)
	}
	e.textOutput, err = ort.NewEmptyTensor[float32](ort.NewShape(1, int64(dim)))
	if err != nil {
		e.destroy()
		return nil, modelErr("creating text output tensor", err)
	}
	e.textSession, err = ort.NewAdvancedSession(cfg.TextEncoderPath,
		[]string{textIDsName, textMaskName}, []string{textOutputName},
		[]ort.ArbitraryTensor{e.idsInput, e.maskInput}, []ort.ArbitraryTensor{e.textOutput},
		nil)
	if err != nil {
		e.destroy()
		return nil, modelErr(fmt.Sprintf("loading text encoder %s", cfg.TextEncoderPath), err)
	}

	e.tokenizer, err = tokenizers.FromFile(cfg.TokenizerPath)
	if err != nil {
		e.destroy()
		return nil, modelErr(fmt.Sprintf("loading tokenizer %s", cfg.TokenizerPath), err)
	}

	return e, nil
}

// EncodeImage runs the vision tower on one normalized image.
func (e *CLIPEncoder) EncodeImage(img *types.NormalizedImage) ([]float32, error) {
	if img.Side != e.side {
		return nil, fmt.Errorf("image side %d, model expects %d", img.Side, e.side)
	}

	copy(e.imageInput.GetData(), pixelTensor(img))
	if err := e.imageSession.Run(); err != nil {
		return nil, fmt.Errorf("image encoder inference: %w", err)
	}

	out := e.imageOutput.GetData()
	vec := make([]float32, len(out))
	copy(vec, out)
	return vec, nil
}

// EncodeText runs the text tower on one prompt.
func (e *CLIPEncoder) EncodeText(prompt string) ([]float32, error) {
	tokenIDs, _ := e.tokenizer.Encode(prompt, true)

	// Pad or truncate to the tower's fixed context length; the mask
	// zeroes out padding positions.
	ids := e.idsInput.GetData()
	mask := e.maskInput.GetData()
	for i := 0; i < e.ctxLen; i++ {
		if i < len(tokenIDs) {
			ids[i] = int64(tokenIDs[i])
			mask[i] = 1
		} else {
			ids[i] = 0
			mask[i] = 0
		}
	}

	if err := e.textSession.Run(); err != nil {
		return nil, fmt.Errorf("text encoder inference: %w", err)
	}

	out := e.textOutput.GetData()
	vec := make([]float32, len(out))
	copy(vec, out)
	return vec, nil
}

// Close releases tensors, sessions, tokenizer, and the ONNX environment.
func (e *CLIPEncoder) Close() error {
	e.destroy()
	ort.DestroyEnvironment()
	return nil
}

func (e *CLIPEncoder) destroy() {
	if e.tokenizer != nil {
		e.tokenizer.Close()
		e.tokenizer = nil
	}
	if e.imageSession != nil {
		e.imageSession.Destroy()
		e.imageSession = nil
	}
	if e.textSession != nil {
		e.textSession.Destroy()
		e.textSession = nil
	}
	if e.imageInput != nil {
		e.imageInput.Destroy()
		e.imageInput = nil
	}
	if e.imageOutput != nil {
		e.imageOutput.Destroy()
		e.imageOutput = nil
	}
	if e.textOutput != nil {
		e.textOutput.Destroy()
		e.textOutput = nil
	}
	if e.idsInput != nil {
		e.idsInput.Destroy()
		e.idsInput = nil
	}
	if e.maskInput != nil {
		e.maskInput.Destroy()
		e.maskInput = nil
	}
}

// pixelTensor flattens the image to CHW float32 with CLIP's per-channel
// mean/std normalization.
func pixelTensor(img *types.NormalizedImage) []float32 {
	side := img.Side
	out := make([]float32, 3*side*side)
	for c := 0; c < 3; c++ {
		for y := 0; y < side; y++ {
			for x := 0; x < side; x++ {
				v := float32(img.Pixels.Pix[y*img.Pixels.Stride+x*4+c]) / 255.0
				out[c*side*side+y*side+x] = (v - clipMean[c]) / clipStd[c]
			}
		}
	}
	return out
}

func modelErr(what string, err error) error {
	return fmt.Errorf("%s: %v: %w", what, err, types.ErrModelUnavailable)
}
