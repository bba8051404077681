// File: internal/classifier/classifier.go

// Package classifier turns raw screenshots into structured page
// classifications using a multimodal Gemini model. It is the only component
// that talks to the inference service; everything downstream consumes the
// schemas.Classification it produces.
package classifier

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/xkilldash9x/meetpilot/api/schemas"
	"github.com/xkilldash9x/meetpilot/internal/config"
	"github.com/xkilldash9x/meetpilot/internal/llmutil"
	"github.com/xkilldash9x/meetpilot/internal/vision"
)

// contentGenerator is the slice of the genai client the classifier needs.
// *genai.Models satisfies it; tests substitute a canned implementation.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Classifier implements schemas.VisionClassifier over the Gemini API.
// Each Classify call performs two model invocations: one schema-constrained
// page-state call, then one element-detection call whose mode depends on the
// classified state.
type Classifier struct {
	gen    contentGenerator
	cfg    config.ClassifierConfig
	logger *zap.Logger

	knownStates map[schemas.PageState]struct{}
}

// NewClassifier constructs a Classifier backed by a real Gemini client.
func NewClassifier(ctx context.Context, cfg config.ClassifierConfig, logger *zap.Logger) (*Classifier, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("classifier: api key is not set (GEMINI_API_KEY)")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("classifier: creating genai client: %w", err)
	}
	return newClassifier(client.Models, cfg, logger), nil
}

func newClassifier(gen contentGenerator, cfg config.ClassifierConfig, logger *zap.Logger) *Classifier {
	known := make(map[schemas.PageState]struct{})
	for _, s := range schemas.AllPageStates() {
		known[s] = struct{}{}
	}
	return &Classifier{
		gen:         gen,
		cfg:         cfg,
		logger:      logger.Named("classifier"),
		knownStates: known,
	}
}

// stateResult mirrors the JSON body of the page-state call.
type stateResult struct {
	State    string `json:"state"`
	LoggedIn bool   `json:"logged_in"`
	Alone    bool   `json:"alone_in_the_call"`
}

// rawElement is one detected control as the model reports it, before label
// normalization and coordinate mapping. Box stays a slice so a malformed
// entry can be dropped instead of failing the whole response.
type rawElement struct {
	Label string `json:"label"`
	Box   []int  `json:"box_2d"`
}

// Classify implements schemas.VisionClassifier. Any transport or parse
// failure is returned as an error; the caller treats those as fatal for the
// session rather than retrying here.
func (c *Classifier) Classify(ctx context.Context, img image.Image, width, height int) (*schemas.Classification, error) {
	shot, err := encodeJPEG(img)
	if err != nil {
		return nil, fmt.Errorf("classifier: encoding screenshot: %w", err)
	}

	st, err := c.classifyState(ctx, shot)
	if err != nil {
		return nil, err
	}

	state := schemas.PageState(st.State)
	if _, ok := c.knownStates[state]; !ok {
		c.logger.Warn("Model returned unrecognized state, treating as unknown page.",
			zap.String("state", st.State))
		state = schemas.StateUnknownPage
	}

	elements, err := c.detectElements(ctx, shot, state, width, height)
	if err != nil {
		return nil, err
	}

	cls := &schemas.Classification{
		State:       state,
		LoggedIn:    st.LoggedIn,
		AloneInCall: state == schemas.StateMeetingPage && st.Alone,
		Elements:    elements,
	}

	c.logger.Debug("Screenshot classified.",
		zap.String("state", string(cls.State)),
		zap.Bool("logged_in", cls.LoggedIn),
		zap.Bool("alone", cls.AloneInCall),
		zap.Int("elements", len(cls.Elements)))

	if c.cfg.Debug {
		c.saveDebugShot(img, cls)
	}
	return cls, nil
}

// classifyState runs the schema-constrained page-state call.
func (c *Classifier) classifyState(ctx context.Context, shot []byte) (*stateResult, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(shot, "image/jpeg"),
		}, genai.RoleUser),
	}
	genCfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(statePrompt, genai.RoleUser),
		Temperature:       genai.Ptr(c.cfg.StateTemperature),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    stateSchema(),
		ThinkingConfig:    &genai.ThinkingConfig{ThinkingBudget: genai.Ptr[int32](0)},
		SafetySettings:    safetySettings(),
	}

	resp, err := c.gen.GenerateContent(ctx, c.cfg.Model, contents, genCfg)
	if err != nil {
		return nil, fmt.Errorf("classifier: state call failed: %w", err)
	}
	result, err := llmutil.DecodeResponse[stateResult](resp.Text())
	if err != nil {
		return nil, fmt.Errorf("classifier: parsing state response: %w", err)
	}
	return result, nil
}

// detectElements runs the element-detection call for the classified state.
//
// The active-call screen is handled in free-form mode: a short prompt, higher
// temperature and no response schema. The control bar packs many small
// targets close together, and schema-constrained decoding measurably degrades
// localization there. Every other state uses schema mode with a per-state
// control list.
func (c *Classifier) detectElements(ctx context.Context, shot []byte, state schemas.PageState, width, height int) ([]schemas.ControlElement, error) {
	var (
		genCfg *genai.GenerateContentConfig
		user   string
	)
	if state == schemas.StateMeetingPage {
		user = densePromptUser
		genCfg = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(densePrompt, genai.RoleUser),
			Temperature:       genai.Ptr(c.cfg.DenseTemperature),
			ThinkingConfig:    &genai.ThinkingConfig{ThinkingBudget: genai.Ptr[int32](0)},
			SafetySettings:    safetySettings(),
		}
	} else {
		user = elementPromptUser
		genCfg = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(elementInstructionFor(state), genai.RoleUser),
			Temperature:       genai.Ptr(c.cfg.ElementTemperature),
			ResponseMIMEType:  "application/json",
			ResponseSchema:    elementListSchema(),
			ThinkingConfig:    &genai.ThinkingConfig{ThinkingBudget: genai.Ptr[int32](0)},
			SafetySettings:    safetySettings(),
		}
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(user),
			genai.NewPartFromBytes(shot, "image/jpeg"),
		}, genai.RoleUser),
	}

	resp, err := c.gen.GenerateContent(ctx, c.cfg.Model, contents, genCfg)
	if err != nil {
		return nil, fmt.Errorf("classifier: element call failed: %w", err)
	}
	raw, err := llmutil.DecodeResponse[[]rawElement](resp.Text())
	if err != nil {
		return nil, fmt.Errorf("classifier: parsing element response: %w", err)
	}
	return c.normalizeElements(*raw, width, height), nil
}

// normalizeElements canonicalizes labels, maps boxes into pixel space and
// enforces the element cap.
func (c *Classifier) normalizeElements(raw []rawElement, width, height int) []schemas.ControlElement {
	out := make([]schemas.ControlElement, 0, len(raw))
	for _, r := range raw {
		if len(r.Box) != 4 {
			c.logger.Warn("Dropping element with malformed box.", zap.String("label", r.Label))
			continue
		}
		label := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(r.Label)), " ", "_")
		if label == "" {
			continue
		}
		box := schemas.Box{r.Box[0], r.Box[1], r.Box[2], r.Box[3]}
		out = append(out, schemas.ControlElement{
			Label: label,
			Box:   vision.ToPixels(box, width, height),
		})
		if len(out) == schemas.MaxElements {
			break
		}
	}
	return out
}

func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
