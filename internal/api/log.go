package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	"travelglobe/pkg/logging"
)

// maxParamLen drops noisy attributes such as UUIDs from the status line.
const maxParamLen = 20

// Regex to capture key=value or key="value with spaces"
var logRegex = regexp.MustCompile(`([a-zA-Z0-9_\-.]+)=(?:"([^"]*)"|([^ ]+))`)

// handleLatestLog returns the last captured server log line.
// GET /api/log/latest
func handleLatestLog(w http.ResponseWriter, r *http.Request) {
	line := logging.GlobalLogCapture.LastLine()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{
		"log": formatLogLine(line),
	}); err != nil {
		slog.Error("Failed to write log response", "error", err)
	}
}

// formatLogLine turns a slog text line into "HH:MM:SS msg (k=v, ...)".
// Level is dropped and attributes are sorted by key.
func formatLogLine(raw string) string {
	matches := logRegex.FindAllStringSubmatch(raw, -1)
	if len(matches) == 0 {
		return raw
	}

	var msg, timeStr string
	var params []string

	for _, m := range matches {
		key, val := m[1], m[2]
		if val == "" {
			val = m[3]
		}
		val = strings.TrimSpace(val)

		switch key {
		case "time":
			if t, err := time.Parse(time.RFC3339, val); err == nil {
				timeStr = t.Format("15:04:05")
			}
		case "level":
		case "msg":
			msg = val
		default:
			if len(val) <= maxParamLen {
				params = append(params, key+"="+val)
			}
		}
	}

	if msg == "" {
		return raw
	}
	sort.Strings(params)

	out := msg
	if timeStr != "" {
		out = timeStr + " " + msg
	}
	if len(params) > 0 {
		return fmt.Sprintf("%s (%s)", out, strings.Join(params, ", "))
	}
	return out
}
