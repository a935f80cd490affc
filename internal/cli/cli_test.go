package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const testProjectConfig = `
metadata:
  name: frogs
  sample_annotation: samples.csv
  output_dir: out
data_sources:
  src1: "/data/{sample_name}.fastq"
compute:
  default:
    submission_template: templates/localhost_template.sub
    submission_command: sh
  slurm:
    submission_template: templates/slurm_template.sub
    submission_command: sbatch
    partition: standard
pipeline_inputs:
  RNA-seq:
    required: [data_source]
`

const testProjectSamples = `sample_name,protocol,read_type,data_source,toggle
frog_1,RNA-seq,paired,src1,1
frog_2,ATAC-seq,single,src1,0
frog_3,RNA-seq,single,src1,1
`

// resetFlags restores every command flag to its default between runs.
func resetFlags() {
	jsonOutput = false
	configPath = ""
	quiet = false
	verbose = false
	samplesProtocol = ""
	samplesAll = false
	statusWatch = false
	statusProtocol = ""
	statusSamples = false
	queryProtocol = ""
	queryStatus = ""
	queryActive = false
	queryLimit = 0
	computeList = false
}

// setupTestEnv writes a project into a temp dir and makes it the working
// directory. Exits are captured in ExitCode instead of ending the process.
func setupTestEnv(t *testing.T) string {
	t.Helper()
	tempDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "project_config.yaml"), []byte(testProjectConfig), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "samples.csv"), []byte(testProjectSamples), 0644))

	t.Setenv("PEPPY_CONFIG", "")
	t.Setenv("PEPPY_INDEX_PATH", "")
	t.Setenv("PEPPY_COMPUTE", "")
	t.Setenv("PEPPY_COMPUTE_CONFIG", "")

	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(tempDir))

	origExitFunc := ExitFunc
	ExitFunc = func(code int) {
		ExitCode = code
	}
	ExitCode = 0

	t.Cleanup(func() {
		os.Chdir(origDir)
		ExitFunc = origExitFunc
		ExitCode = 0
		resetFlags()
	})
	return tempDir
}

// runCommand executes the root command with args and returns its stdout.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	err := rootCmd.Execute()
	return out.String(), err
}

// mustRun fails the test if the command returns an error.
func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := runCommand(t, args...)
	require.NoError(t, err, "peppy %v\noutput: %s", args, out)
	return out
}

func parseJSONArray(t *testing.T, output string) []map[string]interface{} {
	t.Helper()
	var result []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(output), &result), "output: %s", output)
	return result
}

func parseJSONObject(t *testing.T, output string) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(output), &result), "output: %s", output)
	return result
}
