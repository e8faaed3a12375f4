package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ac "github.com/gofhir/anthrocheck"
	"github.com/gofhir/anthrocheck/sink"
)

const (
	healthy  = `{"id":"r1","age":30,"sex":"homme","height":175,"weight":70}`
	tooWide  = `{"id":"r2","age":30,"sex":"femme","height":160,"weight":60,"waist":120}`
	badEntry = `{"id":"r3","age":"old","sex":"homme","height":175,"weight":70}`
)

var variables = []string{
	"LOG_LEVEL", "LOG_FORMAT", "WORKERS", "TABLES", "STRICT",
	"DISABLED_RULES", "AMQP_URL", "AMQP_QUEUE",
}

type outcome struct {
	code   int
	stdout string
	stderr string
}

// run executes the command line with a clean ANTHRO_ environment.
func run(t *testing.T, stdin string, env map[string]string, args ...string) outcome {
	t.Helper()
	for _, v := range variables {
		t.Setenv("ANTHRO_"+v, "")
		require.NoError(t, os.Unsetenv("ANTHRO_"+v))
	}
	for k, v := range env {
		t.Setenv(k, v)
	}

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(newApp(strings.NewReader(stdin), &stdout, &stderr))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	code := exitCode(err, &stderr)
	return outcome{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func lines(s ...string) string {
	return strings.Join(s, "\n") + "\n"
}

func TestVersion(t *testing.T) {
	out := run(t, "", map[string]string{"ANTHRO_LOG_LEVEL": "verbose"}, "version")

	assert.Equal(t, exitValid, out.code)
	assert.Contains(t, out.stdout, "anthrocheck v"+ac.Version)
}

func TestValidate_AllValid(t *testing.T) {
	out := run(t, lines(healthy), nil, "validate")

	assert.Equal(t, exitValid, out.code, out.stderr)
	assert.Equal(t, "r1: VALID (score 100)\n", out.stdout)
}

func TestValidate_Invalid(t *testing.T) {
	out := run(t, "["+healthy+","+tooWide+"]", nil, "validate", "-")

	assert.Equal(t, exitInvalid, out.code)
	assert.Contains(t, out.stdout, "r1: VALID")
	assert.Contains(t, out.stdout, "r2: INVALID")
	assert.Contains(t, out.stdout, "  error [body-ratio]: ")
}

func TestValidate_Quiet(t *testing.T) {
	out := run(t, lines(healthy, tooWide), nil, "validate", "-q")

	assert.Equal(t, exitInvalid, out.code)
	assert.NotContains(t, out.stdout, "r1")
	assert.Contains(t, out.stdout, "r2: INVALID")
}

func TestValidate_Unreadable(t *testing.T) {
	out := run(t, lines(healthy, badEntry), nil, "validate")

	assert.Equal(t, exitContract, out.code)
	assert.Contains(t, out.stdout, "#1: UNREADABLE")
}

func TestValidate_Strict(t *testing.T) {
	// Arm span ratio 1.08 is only a warning.
	rec := `{"id":"s","age":30,"sex":"homme","height":175,"weight":70,"arm_span":189}`

	out := run(t, lines(rec), nil, "validate")
	assert.Equal(t, exitValid, out.code, out.stderr)

	out = run(t, lines(rec), nil, "validate", "--strict")
	assert.Equal(t, exitInvalid, out.code)

	out = run(t, lines(rec), map[string]string{"ANTHRO_STRICT": "true"}, "validate")
	assert.Equal(t, exitInvalid, out.code)

	out = run(t, lines(rec), map[string]string{"ANTHRO_STRICT": "true"}, "validate", "--strict=false")
	assert.Equal(t, exitValid, out.code, "flags override the environment")
}

func TestValidate_JSONL(t *testing.T) {
	out := run(t, lines(healthy, tooWide, healthy), nil, "validate", "--output", "jsonl", "--workers", "3")
	require.Equal(t, exitInvalid, out.code)

	var reports []sink.Report
	sc := bufio.NewScanner(strings.NewReader(out.stdout))
	for sc.Scan() {
		var r sink.Report
		require.NoError(t, json.Unmarshal(sc.Bytes(), &r))
		reports = append(reports, r)
	}
	require.Len(t, reports, 3)
	for i, r := range reports {
		assert.Equal(t, i, r.Index)
		assert.NotEmpty(t, r.MessageID)
	}
	assert.True(t, reports[0].Valid)
	assert.False(t, reports[1].Valid)
	assert.Equal(t, 1, reports[1].Errors)
}

func TestValidate_JSONDocument(t *testing.T) {
	out := run(t, lines(healthy, tooWide), nil, "validate", "--output", "json")
	require.Equal(t, exitInvalid, out.code)

	var doc document
	require.NoError(t, json.Unmarshal([]byte(out.stdout), &doc))
	assert.Equal(t, 2, doc.Total)
	assert.Equal(t, 1, doc.Valid)
	assert.Equal(t, 1, doc.Invalid)
	assert.Equal(t, 0, doc.Unreadable)
	assert.Len(t, doc.Reports, 2)
}

func TestValidate_JSONDocumentUnreadable(t *testing.T) {
	out := run(t, lines(healthy, badEntry, tooWide), nil, "validate", "--output", "json")
	require.Equal(t, exitContract, out.code)

	var doc document
	require.NoError(t, json.Unmarshal([]byte(out.stdout), &doc))
	assert.Equal(t, 3, doc.Total)
	assert.Equal(t, 1, doc.Valid)
	assert.Equal(t, 1, doc.Invalid)
	assert.Equal(t, 1, doc.Unreadable)
	assert.NotEmpty(t, doc.Reports[1].Error)
}

func TestValidate_EmptyJSONDocument(t *testing.T) {
	out := run(t, "[]", nil, "validate", "--output", "json")
	require.Equal(t, exitValid, out.code)
	assert.JSONEq(t, `{"total":0,"valid":0,"invalid":0,"unreadable":0,"reports":[]}`, out.stdout)
}

func TestValidate_FHIRBundle(t *testing.T) {
	out := run(t, "", nil, "validate", "--format", "fhir", "../../fhirimport/testdata/bundle.json")

	assert.Equal(t, exitInvalid, out.code, out.stderr)
	assert.Contains(t, out.stdout, "p1: VALID (score 100)")
	assert.Contains(t, out.stdout, "p2: INVALID")
	assert.Contains(t, out.stdout, "error [height-norm]")
}

func TestValidate_FHIRBundleLogging(t *testing.T) {
	out := run(t, "", nil, "validate", "--format", "fhir", "--log-format", "json", "--log-level", "debug",
		"../../fhirimport/testdata/bundle.json")
	require.Equal(t, exitInvalid, out.code, out.stderr)

	assert.Contains(t, out.stderr, `"msg":"pipeline built"`)
	assert.Contains(t, out.stderr, `"msg":"bundle validated"`)
	assert.Contains(t, out.stderr, `"completed":2`)
	assert.Contains(t, out.stderr, `"invalid":1`)
	assert.Contains(t, out.stderr, `"msg":"engine metrics"`)
}

func TestValidate_ContractErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		args []string
	}{
		{"unknown input format", nil, []string{"validate", "--format", "csv"}},
		{"unknown output format", nil, []string{"validate", "--output", "xml"}},
		{"publish without broker", nil, []string{"validate", "--publish"}},
		{"missing file", nil, []string{"validate", "testdata/missing.json"}},
		{"missing table", nil, []string{"validate", "--tables", "testdata/missing.yaml"}},
		{"bad log level", map[string]string{"ANTHRO_LOG_LEVEL": "verbose"}, []string{"validate"}},
		{"bad log level flag", nil, []string{"validate", "--log-level", "loud"}},
		{"unknown rule", map[string]string{"ANTHRO_DISABLED_RULES": "shoe-size"}, []string{"validate"}},
		{"not json", nil, []string{"validate"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := run(t, "hello", tt.env, tt.args...)
			assert.Equal(t, exitContract, out.code)
			assert.Contains(t, out.stderr, "anthrocheck:")
		})
	}
}

func TestValidate_Logging(t *testing.T) {
	out := run(t, lines(healthy), nil, "validate", "--log-format", "json", "--log-level", "info")
	require.Equal(t, exitValid, out.code)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(out.stderr)), &entry))
	assert.Equal(t, "validation finished", entry["msg"])
	assert.InDelta(t, 1, entry["records"], 0)
	assert.Equal(t, ac.Version, entry["version"])
}

func TestTables(t *testing.T) {
	out := run(t, "", nil, "tables", "--as", "toml")
	require.Equal(t, exitValid, out.code, out.stderr)
	assert.Contains(t, out.stdout, `name = "builtin"`)

	out = run(t, "", nil, "tables")
	require.Equal(t, exitValid, out.code, out.stderr)
	assert.Contains(t, out.stdout, "name: builtin")

	out = run(t, "", nil, "tables", "--tables", "../../reference/testdata/pediatric.yaml")
	require.Equal(t, exitValid, out.code, out.stderr)
	assert.Contains(t, out.stdout, "name: pediatric-strict")

	out = run(t, "", nil, "tables", "--as", "xml")
	assert.Equal(t, exitContract, out.code)
}

func TestRules(t *testing.T) {
	out := run(t, "", map[string]string{"ANTHRO_DISABLED_RULES": "bmi"}, "rules")
	require.Equal(t, exitValid, out.code, out.stderr)

	assert.Contains(t, out.stdout, "STAGE")
	assert.Contains(t, out.stdout, string(ac.RuleRequiredField))
	assert.Contains(t, out.stdout, "bmi (disabled)")
	assert.Contains(t, out.stdout, "13 phases, 8 of 9 rules enabled")
	assert.Less(t,
		strings.Index(out.stdout, string(ac.RuleBasicValue)),
		strings.Index(out.stdout, string(ac.RuleLegSpan)))
}

func TestExitCode(t *testing.T) {
	var buf bytes.Buffer

	assert.Equal(t, exitValid, exitCode(nil, &buf))
	assert.Equal(t, exitInvalid, exitCode(&exitError{code: exitInvalid}, &buf))
	assert.Empty(t, buf.String())

	assert.Equal(t, exitContract, exitCode(errors.New("boom"), &buf))
	assert.Equal(t, "anthrocheck: boom\n", buf.String())
}
