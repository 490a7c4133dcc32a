package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/compliance/pkg/constants"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &m), line)
		out = append(out, m)
	}
	return out
}

func TestJSONLogger_LevelsAndContext(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(constants.LogLevelInfo, &buf).WithComponent("scoring")

	ctx := context.WithValue(context.Background(), constants.ContextKeyTenantID, "umoja")
	ctx = context.WithValue(ctx, constants.ContextKeyRequestID, "req-1")

	log.Debug(ctx, "hidden")
	log.Info(ctx, "Score calculated", Float64("overall_score", 78.25))
	log.Error(ctx, "Store failed", errors.New("connection reset"))

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)

	assert.Equal(t, "INFO", lines[0]["level"])
	assert.Equal(t, "Score calculated", lines[0]["message"])
	assert.Equal(t, "scoring", lines[0]["component"])
	assert.Equal(t, "umoja", lines[0]["tenant_id"])
	assert.Equal(t, "req-1", lines[0]["request_id"])
	assert.Equal(t, 78.25, lines[0]["overall_score"])

	assert.Equal(t, "ERROR", lines[1]["level"])
	assert.Equal(t, "connection reset", lines[1]["error"])
	assert.Contains(t, lines[1]["caller"], "logger_test.go")
}

func TestJSONLogger_SetLevelReachesDerivedLoggers(t *testing.T) {
	var buf bytes.Buffer
	root := NewLogger(constants.LogLevelWarn, &buf)
	child := root.WithComponent("sweeps").WithFields(String("job", "score"))

	child.Info(context.Background(), "dropped")
	root.SetLevel(constants.LogLevelDebug)
	child.Debug(context.Background(), "kept")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "kept", lines[0]["message"])
	assert.Equal(t, "score", lines[0]["job"])
	assert.Equal(t, constants.LogLevelDebug, child.GetLevel())
}

func TestRedact(t *testing.T) {
	assert.Equal(t, "***", redact("password", "hunter22"))
	assert.Equal(t, "***", redact("database_dsn", "host=db user=x password=y"))
	assert.Equal(t, "postgres://compliance:xxxxx@db:5432/compliance", redact("url", "postgres://compliance:s3cret@db:5432/compliance"))
	assert.Equal(t, "umoja", redact("tenant_id", "umoja"))
	assert.Equal(t, 3, redact("count", 3))
}

func TestPerformanceLogger(t *testing.T) {
	var buf bytes.Buffer
	perf := NewPerformanceLogger(NewLogger(constants.LogLevelDebug, &buf))
	perf.slowThreshold = time.Nanosecond

	done := perf.StartOperation(context.Background(), "calculate_score")
	time.Sleep(time.Millisecond)
	done(String("tenant_id", "umoja"))

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "WARN", lines[0]["level"])
	assert.Equal(t, "calculate_score", lines[0]["operation"])
	assert.Equal(t, "performance", lines[0]["component"])
}
