package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"go.viam.com/test"

	"github.com/geosolve/geotools/rimage"
	"github.com/geosolve/geotools/testutils"
)

// runApp runs the app with an explicit config so that the config of the user is never read.
func runApp(t *testing.T, configPath string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	app := NewApp(&out, &errOut)
	err := app.Run(append([]string{"geotools", "--" + generalFlagConfig, configPath}, args...))
	return out.String(), errOut.String(), err
}

func writeConfig(t *testing.T, dir, contents string) string {
	t.Helper()
	return testutils.WriteFile(t, dir, "config.json", contents)
}

// setupProject lays out a data root with two flat colored images and a project directory
// holding the two camera solve they belong to.
func setupProject(t *testing.T) (dataRoot, projectDir string) {
	t.Helper()
	root := testutils.TempDir(t, "", "cli")
	dataRoot = filepath.Join(root, "data")
	projectDir = filepath.Join(root, "results")
	test.That(t, os.MkdirAll(dataRoot, 0o750), test.ShouldBeNil)
	for name, c := range map[string]rimage.Color{
		"left.png":  rimage.NewColor(200, 30, 30),
		"right.png": rimage.NewColor(30, 30, 200),
	} {
		img := rimage.NewImage(100, 100)
		img.Fill(c)
		test.That(t, rimage.WriteImageToFile(filepath.Join(dataRoot, name), img), test.ShouldBeNil)
	}
	data, err := os.ReadFile(filepath.Join("..", "project", "testdata", "project_single.json"))
	test.That(t, err, test.ShouldBeNil)
	testutils.WriteFile(t, projectDir, "project.json", string(data))
	return dataRoot, projectDir
}

func TestUsageErrors(t *testing.T) {
	cfg := writeConfig(t, testutils.TempDir(t, "", "cli"), "{}")
	for _, tc := range []struct {
		args  []string
		usage string
	}{
		{[]string{"orthoimage", "only_one"}, "orthoimage <data_root> <project_dir>"},
		{[]string{"dtm"}, "dtm <data_root> <project_dir>"},
		{[]string{"residuals"}, "residuals <project.json>"},
		{[]string{"bootstrap", "a", "b"}, "bootstrap <project_dir>"},
		{[]string{"match-features", "a", "b"}, "match-features <image1> <image2> <out_dir>"},
		{[]string{"view-angle", "a", "b"}, "view-angle [dir]"},
		{[]string{"run-all", "all", "again"}, "run-all [all|build|solve|orthoimage]"},
	} {
		t.Run(tc.args[0], func(t *testing.T) {
			_, _, err := runApp(t, cfg, tc.args...)
			test.That(t, err, test.ShouldNotBeNil)
			test.That(t, err.Error(), test.ShouldEqual, "usage: geotools "+tc.usage)
		})
	}
}

func TestBadConfig(t *testing.T) {
	dir := testutils.TempDir(t, "", "cli")
	cfg := writeConfig(t, dir, `{"ortho": {"jpeg_quality": 1000}}`)
	_, _, err := runApp(t, cfg, "view-angle", dir)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "cannot read config")

	_, _, err = runApp(t, filepath.Join(dir, "missing.json"), "view-angle", dir)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestProjectPath(t *testing.T) {
	test.That(t, projectPath("results"), test.ShouldEqual, filepath.Join("results", "project.json"))
	test.That(t, projectPath("results/other.json"), test.ShouldEqual, "results/other.json")
}

func TestDebugLogs(t *testing.T) {
	_, projectDir := setupProject(t)
	cfg := writeConfig(t, projectDir, "{}")

	_, errOut, err := runApp(t, cfg, "residuals", "--init", "--solution", "0", filepath.Join(projectDir, "project.json"))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, errOut, test.ShouldNotContainSubstring, "terrain initialised")

	_, errOut, err = runApp(t, cfg, "--debug", "residuals", "--init", "--solution", "0", filepath.Join(projectDir, "project.json"))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, errOut, test.ShouldContainSubstring, "terrain initialised")
}
