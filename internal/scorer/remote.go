package scorer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	inferenceTimeout = 60 * time.Second
	maxImageBytes    = 10 << 20
)

// RemoteTextModel calls a hosted text-classification endpoint that
// returns raw logits for a caption. One logit means a single-output
// scam head; two logits mean a (benign, scam) pair.
type RemoteTextModel struct {
	name       string
	endpoint   string
	token      string
	httpClient *http.Client
}

// RemoteTextConfig holds configuration for a remote text model.
type RemoteTextConfig struct {
	Name     string
	Endpoint string
	Token    string
}

// NewRemoteTextModel creates a remote text model client.
func NewRemoteTextModel(cfg RemoteTextConfig) *RemoteTextModel {
	name := cfg.Name
	if name == "" {
		name = "remote-text"
	}

	return &RemoteTextModel{
		name:       name,
		endpoint:   cfg.Endpoint,
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: inferenceTimeout},
	}
}

// Name returns the model name.
func (m *RemoteTextModel) Name() string { return m.name }

type textInferenceRequest struct {
	Inputs string `json:"inputs"`
}

type textInferenceResponse struct {
	Logits []float64 `json:"logits"`
}

// Classify sends the caption to the inference endpoint and converts
// its logits into a positive-class probability.
func (m *RemoteTextModel) Classify(ctx context.Context, text string) (Classification, error) {
	body, err := json.Marshal(textInferenceRequest{Inputs: text})
	if err != nil {
		return Classification{}, fmt.Errorf("marshal request: %w", err)
	}

	respBody, err := m.post(ctx, m.endpoint, "application/json", body)
	if err != nil {
		return Classification{}, err
	}

	var resp textInferenceResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return Classification{}, fmt.Errorf("unmarshal response: %w", err)
	}

	prob, err := PositiveProbability(resp.Logits)
	if err != nil {
		return Classification{}, err
	}

	return Classification{Probability: prob}, nil
}

func (m *RemoteTextModel) post(ctx context.Context, url, contentType string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	if m.token != "" {
		req.Header.Set("Authorization", "Bearer "+m.token)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("inference error (status %d): %s", resp.StatusCode, respBody)
	}

	return respBody, nil
}

// LabelScore is one labeled probability from an image classifier.
type LabelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// ImageClassifier returns labeled probabilities for an image.
type ImageClassifier interface {
	Labels(ctx context.Context, imageURL string) ([]LabelScore, error)
}

// RemoteImageModel downloads an image and classifies it through a
// hosted image-classification endpoint returning label/score pairs.
type RemoteImageModel struct {
	endpoint   string
	token      string
	httpClient *http.Client
}

// RemoteImageConfig holds configuration for a remote image model.
type RemoteImageConfig struct {
	Endpoint string
	Token    string
}

// NewRemoteImageModel creates a remote image model client.
func NewRemoteImageModel(cfg RemoteImageConfig) *RemoteImageModel {
	return &RemoteImageModel{
		endpoint:   cfg.Endpoint,
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: inferenceTimeout},
	}
}

// Labels fetches the image at imageURL and returns the classifier's
// labeled probabilities.
func (m *RemoteImageModel) Labels(ctx context.Context, imageURL string) ([]LabelScore, error) {
	img, err := m.fetchImage(ctx, imageURL)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", m.endpoint, bytes.NewReader(img))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	if m.token != "" {
		req.Header.Set("Authorization", "Bearer "+m.token)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("inference error (status %d): %s", resp.StatusCode, respBody)
	}

	var labels []LabelScore
	if err := json.Unmarshal(respBody, &labels); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	return labels, nil
}

func (m *RemoteImageModel) fetchImage(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create image request: %w", err)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image fetch returned status %d", resp.StatusCode)
	}

	img, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if len(img) == 0 {
		return nil, fmt.Errorf("image at %s is empty", imageURL)
	}

	return img, nil
}
