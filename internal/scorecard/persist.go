package scorecard

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"robocall-qa-go/internal/types"
)

// Filename returns the result file name for an evaluation made at ts.
func Filename(ts time.Time) string {
	return "llm_result_" + ts.Format("20060102_150405") + ".json"
}

// Save writes the verdict payload, indented, to a new file in dir. An
// existing file is never replaced: a second save within the same second
// fails with an error wrapping fs.ErrExist.
func Save(dir string, ts time.Time, v types.Verdict) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create results dir: %w", err)
	}

	data, err := payload(v)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, Filename(ts))
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create result file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write result: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("write result: %w", err)
	}
	return path, nil
}

// payload re-indents the model's own JSON so fields outside the typed
// verdict survive; a verdict built in code is marshalled directly.
func payload(v types.Verdict) ([]byte, error) {
	var buf bytes.Buffer
	if len(v.Raw) > 0 {
		if err := json.Indent(&buf, v.Raw, "", "  "); err != nil {
			return nil, fmt.Errorf("indent verdict: %w", err)
		}
	} else {
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal verdict: %w", err)
		}
		buf.Write(data)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
