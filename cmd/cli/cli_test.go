package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/compliance/internal/application/dto"
	"github.com/turtacn/compliance/internal/domain/models"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cfg := fmt.Sprintf(`
database:
  driver: sqlite
  sqlite_path: %s
scheduler:
  enabled: false
log:
  level: error
`, filepath.Join(dir, "compliance.db"))
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))
	return path
}

func run(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestScoreCommands(t *testing.T) {
	cfg := writeConfig(t)

	out, err := run(t, cfg, "score", "calculate", "--tenant", "t1", "--by", "officer-12", "--json")
	require.NoError(t, err, out)
	var score models.ComplianceScore
	require.NoError(t, json.Unmarshal([]byte(out), &score))
	assert.InDelta(t, 86.25, score.OverallScore, 1e-9)
	assert.Equal(t, "officer-12", score.CalculatedBy)

	out, err = run(t, cfg, "score", "latest")
	require.NoError(t, err)
	assert.Contains(t, out, "t1")
	assert.Contains(t, out, "86.25")

	out, err = run(t, cfg, "score", "latest", "--tenant", "t1")
	require.NoError(t, err)
	assert.Contains(t, out, "Overall:")

	_, err = run(t, cfg, "score", "latest", "--tenant", "nobody")
	assert.Error(t, err)

	_, err = run(t, cfg, "score", "calculate")
	assert.Error(t, err, "--tenant is required")
}

func TestRulesAndEvaluate(t *testing.T) {
	cfg := writeConfig(t)
	seed := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(seed, []byte(`
rules:
  - id: overall-above-50
    name: Overall above fifty
    metric: compliance_score
    operator: greater_than
    threshold: 50
    severity: high
`), 0o600))

	out, err := run(t, cfg, "rules", "import", seed)
	require.NoError(t, err, out)
	assert.Contains(t, out, "1 rule(s) saved")

	out, err = run(t, cfg, "rules", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "overall-above-50")

	out, err = run(t, cfg, "evaluate", "--tenant", "t1", "--json")
	require.NoError(t, err, out)
	var results []dto.EvaluationResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 1)
	assert.Equal(t, 1, results[0].Created)

	out, err = run(t, cfg, "evaluate", "--tenant", "t1")
	require.NoError(t, err)
	assert.Contains(t, out, "already open: 1")

	out, err = run(t, cfg, "alerts", "list", "--tenant", "t1", "--open", "--json")
	require.NoError(t, err)
	var alerts []*models.RegulatoryAlert
	require.NoError(t, json.Unmarshal([]byte(out), &alerts))
	require.Len(t, alerts, 1)

	out, err = run(t, cfg, "alerts", "resolve", alerts[0].ID, "--by", "inspector")
	require.NoError(t, err, out)
	assert.Contains(t, out, "resolved by inspector")

	_, err = run(t, cfg, "rules", "save", "--name", "bad", "--metric", "liquidity", "--operator", "less_than", "--threshold", "5")
	assert.Error(t, err)
}

func TestThresholdsAndAudits(t *testing.T) {
	cfg := writeConfig(t)

	out, err := run(t, cfg, "thresholds", "get")
	require.NoError(t, err)
	assert.Contains(t, out, "defaults")

	out, err = run(t, cfg, "thresholds", "set", "--good", "80", "--by", "regulator-1", "--json")
	require.NoError(t, err, out)
	var th dto.ThresholdsResponse
	require.NoError(t, json.Unmarshal([]byte(out), &th))
	assert.Equal(t, 80.0, th.Good)
	assert.Equal(t, 90.0, th.Excellent)

	_, err = run(t, cfg, "thresholds", "set", "--good", "95", "--by", "regulator-1")
	assert.Error(t, err)

	_, err = run(t, cfg, "audit", "schedule", "--tenant", "t1", "--auditor", "a-3", "--date", "02/11/2026")
	assert.Error(t, err)

	out, err = run(t, cfg, "audit", "schedule", "--tenant", "t1", "--auditor", "a-3", "--date", "2026-11-02", "--json")
	require.NoError(t, err, out)
	var audit models.ComplianceAudit
	require.NoError(t, json.Unmarshal([]byte(out), &audit))

	out, err = run(t, cfg, "audit", "complete", audit.ID, "--findings", "ok")
	require.NoError(t, err, out)
	assert.Contains(t, out, "score at completion 0.00")

	_, err = run(t, cfg, "audit", "complete", audit.ID)
	assert.Error(t, err)

	out, err = run(t, cfg, "audit", "list", "--tenant", "t1")
	require.NoError(t, err)
	assert.Contains(t, out, "COMPLETED")
}

func TestSweepAndMigrate(t *testing.T) {
	cfg := writeConfig(t)

	out, err := run(t, cfg, "migrate")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Schema is up to date")

	out, err = run(t, cfg, "sweep", "score", "--json")
	require.NoError(t, err, out)
	var report dto.SweepReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 0, report.Tenants)

	_, err = run(t, cfg, "report")
	assert.Error(t, err, "report is postgres only")

	_, err = run(t, cfg, "events", "tail")
	assert.Error(t, err, "kafka is disabled")
}
