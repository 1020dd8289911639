package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"stomatrack/internal/models"
)

var (
	// ErrEmptyDescription is returned when there is no text to analyse.
	ErrEmptyDescription = errors.New("description is empty")
	// ErrAnalysisFailed wraps every provider or decoding failure surfaced to callers.
	ErrAnalysisFailed = errors.New("analysis failed")
	// ErrNoProvider is returned when the server runs without any configured AI provider.
	ErrNoProvider = errors.New("no AI provider configured")
)

// Provider is the text/image generation backend used by every analyzer.
type Provider interface {
	Generate(ctx context.Context, req models.AIRequest) (string, error)
}

func generateJSON(ctx context.Context, p Provider, req models.AIRequest, out interface{}) error {
	if p == nil {
		return ErrNoProvider
	}
	req.JSON = true
	raw, err := p.Generate(ctx, req)
	if err != nil {
		return err
	}
	return decodeJSON(raw, out)
}

// decodeJSON strips markdown code fences and, failing a direct decode,
// retries on the outermost {...} span of the text.
func decodeJSON(raw string, out interface{}) error {
	clean := strings.TrimSpace(raw)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	clean = strings.TrimSpace(clean)

	err := json.Unmarshal([]byte(clean), out)
	if err == nil {
		return nil
	}

	start := strings.Index(clean, "{")
	end := strings.LastIndex(clean, "}")
	if start == -1 || end <= start {
		return fmt.Errorf("no JSON object in response: %w", err)
	}
	if err := json.Unmarshal([]byte(clean[start:end+1]), out); err != nil {
		return fmt.Errorf("failed to parse response JSON: %w", err)
	}
	return nil
}

// looseNumber accepts a JSON number, a numeric string ("7", "85%") or null.
type looseNumber struct {
	Value float64
	Set   bool
}

func (n *looseNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
		if s == "" {
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			// Non-numeric and non-finite strings are treated as absent.
			return nil
		}
		n.Value, n.Set = v, true
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	n.Value, n.Set = v, true
	return nil
}
