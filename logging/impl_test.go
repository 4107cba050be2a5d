package logging

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"testing"

	"go.viam.com/test"
)

// assertLogMatches will fuzzy match log lines. Notably, this checks the time format, but ignores
// the exact time. And it expects a match on the filename, but the exact line number can be wrong.
func assertLogMatches(t *testing.T, actual *bytes.Buffer, expected string) {
	t.Helper()

	output, err := actual.ReadString('\n')
	test.That(t, err, test.ShouldBeNil)

	actualTrimmed := strings.TrimSuffix(output, "\n")
	actualParts := strings.Split(actualTrimmed, "\t")
	expectedParts := strings.Split(expected, "\t")
	// Use the length of the first string as a weak verification of checking that the result looks like a date.
	test.That(t, len(actualParts[0]), test.ShouldEqual, len(expectedParts[0]))
	// Log level.
	test.That(t, actualParts[1], test.ShouldEqual, expectedParts[1])
	// Logger name.
	test.That(t, actualParts[2], test.ShouldEqual, expectedParts[2])

	// Filename:line_number.
	actualFilename, actualLineNumber, found := strings.Cut(actualParts[3], ":")
	test.That(t, found, test.ShouldBeTrue)
	expectedFilename, _, found := strings.Cut(expectedParts[3], ":")
	test.That(t, found, test.ShouldBeTrue)
	test.That(t, actualFilename, test.ShouldEqual, expectedFilename)
	_, err = strconv.Atoi(actualLineNumber)
	test.That(t, err, test.ShouldBeNil)

	// Log message.
	test.That(t, actualParts[4], test.ShouldEqual, expectedParts[4])

	test.That(t, len(actualParts), test.ShouldEqual, len(expectedParts))
	if len(actualParts) == 5 {
		return
	}

	// JSON encoding of maps can be unpredictable because map iteration order can change between
	// runs. Parse the output into maps and assert on map equality.
	expectedMap := make(map[string]any)
	err = json.Unmarshal([]byte(expectedParts[5]), &expectedMap)
	test.That(t, err, test.ShouldBeNil)

	actualMap := make(map[string]any)
	err = json.Unmarshal([]byte(actualParts[5]), &actualMap)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, actualMap, test.ShouldResemble, expectedMap)
}

func TestConsoleOutputFormat(t *testing.T) {
	notStdout := &bytes.Buffer{}
	logger := &impl{name: "impl", level: NewAtomicLevelAt(DEBUG), inUTC: true, appenders: []Appender{NewWriterAppender(notStdout)}}

	logger.Info("impl Info log")
	assertLogMatches(t, notStdout,
		`2023-10-30T13:19:45.806Z	INFO	impl	logging/impl_test.go:67	impl Info log`)

	logger.Infof("impl %s log", "infof")
	assertLogMatches(t, notStdout,
		`2023-10-30T13:19:45.806Z	INFO	impl	logging/impl_test.go:71	impl infof log`)

	logger.Infow("impl logw", "key", "val", "tiles", 3)
	assertLogMatches(t, notStdout,
		`2023-10-30T13:19:45.806Z	INFO	impl	logging/impl_test.go:75	impl logw	{"key":"val","tiles":3}`)
}

func TestLevelFiltering(t *testing.T) {
	notStdout := &bytes.Buffer{}
	logger := &impl{name: "filter", level: NewAtomicLevelAt(WARN), inUTC: true, appenders: []Appender{NewWriterAppender(notStdout)}}

	logger.Debug("dropped")
	logger.Info("dropped")
	test.That(t, notStdout.Len(), test.ShouldEqual, 0)

	logger.Warn("kept")
	test.That(t, notStdout.String(), test.ShouldContainSubstring, "WARN")
	test.That(t, notStdout.String(), test.ShouldContainSubstring, "kept")

	logger.SetLevel(DEBUG)
	test.That(t, logger.GetLevel(), test.ShouldEqual, DEBUG)
	notStdout.Reset()
	logger.Debugf("now %d", 1)
	test.That(t, notStdout.String(), test.ShouldContainSubstring, "now 1")
}

func TestSublogger(t *testing.T) {
	logger, observed := NewObservedTestLogger(t)
	sub := logger.Sublogger("ortho").Sublogger("tile")

	sub.Infow("projected", "camera", 1)
	entries := observed.All()
	test.That(t, entries, test.ShouldHaveLength, 1)
	test.That(t, entries[0].LoggerName, test.ShouldEqual, "ortho.tile")
	test.That(t, entries[0].Message, test.ShouldEqual, "projected")
	test.That(t, entries[0].ContextMap()["camera"], test.ShouldEqual, int64(1))
}

func TestWithAttachesFields(t *testing.T) {
	logger, observed := NewObservedTestLogger(t)
	logger.SetLevel(INFO)
	sub := logger.Sublogger("ortho")
	cam := sub.With("camera", "IMG_0001", "tile", 3)

	cam.Debugw("filtered", "pixels", 12)
	test.That(t, observed.Len(), test.ShouldEqual, 0)

	// the derived logger follows its parent's level
	sub.SetLevel(DEBUG)
	cam.Debugw("filtered", "pixels", 12)
	cam.Infow("projected", "odd")
	entries := observed.TakeAll()
	test.That(t, entries, test.ShouldHaveLength, 2)
	test.That(t, entries[0].LoggerName, test.ShouldEqual, "ortho")
	test.That(t, entries[0].ContextMap(), test.ShouldResemble, map[string]interface{}{
		"camera": "IMG_0001",
		"tile":   int64(3),
		"pixels": int64(12),
	})
	test.That(t, entries[1].ContextMap()["odd"], test.ShouldResemble, "unpaired log key")

	// fields of one derived logger do not leak into its siblings
	other := logger.With("camera", "IMG_0002")
	other.Info("done")
	test.That(t, observed.All()[0].ContextMap(), test.ShouldResemble, map[string]interface{}{"camera": "IMG_0002"})
}

func TestWithWritesConsoleFields(t *testing.T) {
	notStdout := &bytes.Buffer{}
	logger := &impl{name: "geotools", level: NewAtomicLevelAt(INFO), inUTC: true, appenders: []Appender{NewWriterAppender(notStdout)}}

	logger.With("camera", "c1").Infow("projected", "written", 10)
	assertLogMatches(t, notStdout,
		`2023-10-30T13:19:45.806Z	INFO	geotools	logging/impl_test.go:0	projected	{"camera":"c1","written":10}`)
}

func TestReplaceGlobal(t *testing.T) {
	prev := Global()
	defer ReplaceGlobal(prev)

	logger, observed := NewObservedTestLogger(t)
	ReplaceGlobal(logger)
	Global().Error("run failed")
	test.That(t, observed.FilterMessage("run failed").Len(), test.ShouldEqual, 1)
}

func TestLevelFromString(t *testing.T) {
	for _, tc := range []struct {
		input    string
		expected Level
	}{
		{"debug", DEBUG},
		{"Info", INFO},
		{"WARNING", WARN},
		{"error", ERROR},
	} {
		t.Run(tc.input, func(t *testing.T) {
			level, err := LevelFromString(tc.input)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, level, test.ShouldEqual, tc.expected)
		})
	}

	_, err := LevelFromString("verbose")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "unknown log level")
}

func TestLevelJSON(t *testing.T) {
	data, err := json.Marshal(WARN)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(data), test.ShouldEqual, `"Warn"`)

	var level Level
	test.That(t, json.Unmarshal([]byte(`"debug"`), &level), test.ShouldBeNil)
	test.That(t, level, test.ShouldEqual, DEBUG)
}
