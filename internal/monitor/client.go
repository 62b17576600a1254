package monitor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/banshee-data/motion.swarm/internal/config"
	"github.com/banshee-data/motion.swarm/internal/httputil"
	"github.com/banshee-data/motion.swarm/internal/monitoring"
)

// Client provides HTTP operations against a running monitor.
type Client struct {
	HTTPClient httputil.HTTPClient
	BaseURL    string

	// Sleep is used between WaitForTick polls; tests replace it.
	Sleep func(time.Duration)
}

// NewClient creates a monitor client. A nil httpClient gets a
// StandardClient with the default timeout.
func NewClient(httpClient httputil.HTTPClient, baseURL string) *Client {
	if httpClient == nil {
		httpClient = httputil.NewStandardClient(nil)
	}
	return &Client{
		HTTPClient: httpClient,
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Sleep:      time.Sleep,
	}
}

// Health fetches /health.
func (c *Client) Health() (HealthResponse, error) {
	var out HealthResponse
	err := c.getJSON("/health", &out)
	return out, err
}

// Params fetches the live tuning configuration.
func (c *Client) Params() (*config.TuningConfig, error) {
	out := config.EmptyTuningConfig()
	if err := c.getJSON("/api/params", out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetParams posts a partial configuration and returns the config the
// server will run with once the patch is applied.
func (c *Client) SetParams(patch *config.TuningConfig) (*config.TuningConfig, error) {
	out := config.EmptyTuningConfig()
	if err := c.postJSON("/api/params", patch, http.StatusAccepted, out); err != nil {
		return nil, err
	}
	return out, nil
}

// SendKey presses one key on the simulation.
func (c *Client) SendKey(key rune) error {
	return c.postJSON("/api/keys", KeyRequest{Key: string(key)}, http.StatusAccepted, nil)
}

// Hotspots fetches the hotspot lists of the last detection pass.
func (c *Client) Hotspots() (HotspotsResponse, error) {
	var out HotspotsResponse
	err := c.getJSON("/api/hotspots", &out)
	return out, err
}

// Calibrations fetches up to limit stored calibration runs.
func (c *Client) Calibrations(limit int) (CalibrationsResponse, error) {
	var out CalibrationsResponse
	err := c.getJSON(fmt.Sprintf("/api/calibrations?limit=%d", limit), &out)
	return out, err
}

// WaitForTick polls /health until the simulation has passed tick, giving
// up after maxPolls attempts spaced by interval.
func (c *Client) WaitForTick(tick int64, interval time.Duration, maxPolls int) (int64, error) {
	if maxPolls <= 0 {
		maxPolls = 100
	}
	var last int64
	for i := 0; i < maxPolls; i++ {
		h, err := c.Health()
		if err != nil {
			return 0, err
		}
		last = h.Tick
		if last >= tick {
			return last, nil
		}
		if i == 0 {
			monitoring.Diagf("waiting for tick %d (at %d)", tick, last)
		}
		c.Sleep(interval)
	}
	return last, fmt.Errorf("timeout waiting for tick %d (last %d)", tick, last)
}

func (c *Client) getJSON(path string, out interface{}) error {
	resp, err := c.HTTPClient.Get(c.BaseURL + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decodeResponse(resp, http.StatusOK, out)
}

func (c *Client) postJSON(path string, in interface{}, want int, out interface{}) error {
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}
	resp, err := c.HTTPClient.Post(c.BaseURL+path, "application/json", bytes.NewReader(data))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decodeResponse(resp, want, out)
}

func decodeResponse(resp *http.Response, want int, out interface{}) error {
	if resp.StatusCode != want {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &e) == nil && e.Error != "" {
			return fmt.Errorf("status %d: %s", resp.StatusCode, e.Error)
		}
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
