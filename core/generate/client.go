package generate

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	"MuseFM/logger"
)

// Client communicates with the MusicGen inference backend over REST.
// The backend hosts the pretrained facebook/musicgen-{small,medium,large}
// checkpoints and returns raw mono float32 PCM at 32 kHz.
type Client struct {
	apiURL string
	apiKey string
	http   *http.Client
}

// NewClient creates a backend API client. Generation can take minutes on
// CPU, so the request timeout is generous.
func NewClient(apiURL, apiKey string) *Client {
	return &Client{
		apiURL: apiURL,
		apiKey: apiKey,
		http:   &http.Client{Timeout: 10 * time.Minute},
	}
}

type loadRequest struct {
	Model  string `json:"model"`
	Device string `json:"device"`
}

type generateRequest struct {
	Model        string  `json:"model"`
	Prompt       string  `json:"prompt"`
	Temperature  float64 `json:"temperature"`
	TopK         int     `json:"top_k"`
	MaxNewTokens int     `json:"max_new_tokens"`
}

type generateResponse struct {
	SampleRate int    `json:"sample_rate"`
	Audio      string `json:"audio"` // base64 little-endian float32 PCM
	Error      string `json:"error"`
}

type deviceResponse struct {
	Device string `json:"device"`
}

// WaitForHealthy blocks until the backend responds to health checks or the
// context is cancelled.
func (c *Client) WaitForHealthy(ctx context.Context) error {
	logger.Info("waiting for generation backend", logger.String("url", c.apiURL))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"/health", nil)
		if err != nil {
			return err
		}
		resp, err := c.http.Do(req)
		if err == nil && resp.StatusCode == http.StatusOK {
			resp.Body.Close()
			logger.Info("generation backend is healthy")
			return nil
		}
		if resp != nil {
			resp.Body.Close()
		}

		logger.Debug("backend not ready, retrying in 5s")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(5 * time.Second):
		}
	}
}

// DetectDevice asks the backend which compute device it would use.
// Falls back to cpu when the backend cannot be reached.
func (c *Client) DetectDevice(ctx context.Context) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"/v1/device", nil)
	if err != nil {
		return "cpu"
	}
	resp, err := c.http.Do(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		if resp != nil {
			resp.Body.Close()
		}
		return "cpu"
	}
	defer resp.Body.Close()

	var result deviceResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil || result.Device == "" {
		return "cpu"
	}
	return result.Device
}

// LoadModel asks the backend to load a model checkpoint onto a device.
func (c *Client) LoadModel(ctx context.Context, model, device string) error {
	body, err := json.Marshal(loadRequest{Model: model, Device: device})
	if err != nil {
		return fmt.Errorf("marshal load request: %w", err)
	}

	resp, err := c.post(ctx, "/v1/load", body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr generateResponse
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		if apiErr.Error != "" {
			return fmt.Errorf("backend refused to load %s: %s", model, apiErr.Error)
		}
		return fmt.Errorf("backend refused to load %s: status %d", model, resp.StatusCode)
	}
	return nil
}

// Generate runs one inference call and returns the decoded waveform.
func (c *Client) Generate(ctx context.Context, req generateRequest) ([]float32, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal generate request: %w", err)
	}

	resp, err := c.post(ctx, "/v1/generate", body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode generate response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || result.Error != "" {
		if result.Error != "" {
			return nil, fmt.Errorf("backend error: %s", result.Error)
		}
		return nil, fmt.Errorf("backend error: status %d", resp.StatusCode)
	}

	samples, err := decodePCM(result.Audio)
	if err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("backend returned empty waveform")
	}
	return samples, nil
}

func (c *Client) post(ctx context.Context, path string, body []byte) (*http.Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", path, err)
	}
	return resp, nil
}

// decodePCM decodes base64 little-endian float32 PCM into a waveform.
func decodePCM(encoded string) ([]float32, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode audio payload: %w", err)
	}
	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("malformed audio payload: %d bytes", len(raw))
	}

	samples := make([]float32, len(raw)/4)
	for i := range samples {
		samples[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return samples, nil
}

// encodePCM is the inverse of decodePCM, used by tests standing in for the backend.
func encodePCM(samples []float32) string {
	raw := make([]byte, len(samples)*4)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(raw[i*4:], math.Float32bits(s))
	}
	return base64.StdEncoding.EncodeToString(raw)
}
