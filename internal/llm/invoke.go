package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Caller is the subset of a model client needed for text generation. The
// goframe model types satisfy it, and tests swap in cheap stubs.
type Caller interface {
	Call(ctx context.Context, prompt string) (string, error)
}

// GenerateWithTimeout wraps a model call with a hard timeout. Some clients
// ignore context cancellation once a request is in flight, so the call runs
// in its own goroutine and the caller is released when the deadline passes.
func GenerateWithTimeout(ctx context.Context, model Caller, prompt string, timeout time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		resp string
		err  error
	}
	resultCh := make(chan result, 1)

	go func() {
		resp, err := model.Call(ctx, prompt)
		select {
		case resultCh <- result{resp, err}:
		case <-ctx.Done():
			// Do not block the goroutine if the parent timed out.
		}
	}()

	select {
	case res := <-resultCh:
		return res.resp, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// ExtractJSON pulls a single JSON object out of raw model output. Models
// routinely wrap their answer in markdown code fences or prepend prose, so
// fences are stripped first and then the decoder is anchored at the first
// opening brace.
func ExtractJSON(raw string) (string, error) {
	if startFence := strings.Index(raw, "```"); startFence != -1 {
		if endFence := strings.LastIndex(raw, "```"); endFence > startFence {
			inner := strings.TrimSpace(raw[startFence+3 : endFence])
			if strings.HasPrefix(strings.ToLower(inner), "json") {
				inner = strings.TrimSpace(inner[4:])
			}
			raw = inner
		}
	}

	raw = strings.TrimSpace(raw)

	if json.Valid([]byte(raw)) {
		return raw, nil
	}

	// A lone opening fence means the closing one was cut off mid-stream;
	// take everything after the first fence.
	if startFence := strings.Index(raw, "```"); startFence != -1 {
		remaining := raw[startFence+3:]
		if endFence := strings.Index(remaining, "```"); endFence != -1 {
			remaining = remaining[:endFence]
		}
		inner := strings.TrimSpace(remaining)
		if strings.HasPrefix(strings.ToLower(inner), "json") {
			inner = strings.TrimSpace(inner[4:])
		}
		raw = inner
	}

	startBrace := strings.Index(raw, "{")
	if startBrace == -1 {
		return "", fmt.Errorf("response did not contain valid JSON start")
	}
	raw = raw[startBrace:]

	decoder := json.NewDecoder(strings.NewReader(raw))
	var msg any
	if err := decoder.Decode(&msg); err != nil {
		return "", fmt.Errorf("failed to decode JSON from response: %w", err)
	}
	// Re-encode to get a clean, compacted JSON string.
	clean, _ := json.Marshal(msg)
	return string(clean), nil
}

// SanitizeJSON repairs common invalid escape sequences in model output.
// The repair is validated by round-tripping through the decoder; if it still
// does not parse, the best-effort repaired string is returned unchanged.
func SanitizeJSON(input string) string {
	if json.Valid([]byte(input)) {
		return input
	}

	var sb strings.Builder
	sb.Grow(len(input) + 20)

	runes := []rune(input)
	length := len(runes)

	for i := 0; i < length; i++ {
		char := runes[i]
		if char != '\\' {
			sb.WriteRune(char)
			continue
		}
		if i+1 >= length {
			// Trailing backslash.
			sb.WriteString(`\\`)
			break
		}
		next := runes[i+1]
		switch next {
		case '"', '\\', '/', 'b', 'f', 'n', 'r', 't', 'u':
			sb.WriteRune(char)
			sb.WriteRune(next)
			i++
		default:
			// Invalid escape, for example \s in a file path.
			sb.WriteString(`\\`)
		}
	}

	repaired := sb.String()
	if json.Valid([]byte(repaired)) {
		return repaired
	}
	return repaired
}
