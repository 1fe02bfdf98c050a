package log

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func newTestLogger() (*Logger, *bytes.Buffer) {
	color.NoColor = true
	buf := &bytes.Buffer{}
	return New(buf, zerolog.Disabled), buf
}

func TestLogEntry(t *testing.T) {
	tests := []struct {
		name   string
		op     EntryOperation
		expect []string
	}{
		{
			name:   "converted",
			op:     EntryOperation{Path: "src/Main.java", Action: ActionConverted, Detail: "src/Main.swift"},
			expect: []string{"✓", "src/Main.java", "converted", "src/Main.swift"},
		},
		{
			name:   "fallback",
			op:     EntryOperation{Path: "res/activity_main.xml", Action: ActionFallback},
			expect: []string{"⚠", "fallback"},
		},
		{
			name:   "preserved",
			op:     EntryOperation{Path: "res/icon.png", Action: ActionPreserved},
			expect: []string{"•", "preserved"},
		},
		{
			name:   "skipped",
			op:     EntryOperation{Path: "gradlew", Action: ActionSkipped, Detail: "denied basename"},
			expect: []string{"-", "skipped", "denied basename"},
		},
		{
			name:   "errored",
			op:     EntryOperation{Path: "broken.java", Action: ActionErrored},
			expect: []string{"✗", "errored"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, buf := newTestLogger()
			logger.LogEntry(tt.op)
			for _, want := range tt.expect {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}

func TestStartConversion(t *testing.T) {
	logger, buf := newTestLogger()
	logger.StartConversion("android_java", "ios_swift", "project.zip")

	out := buf.String()
	assert.Contains(t, out, "project.zip")
	assert.Contains(t, out, "android_java → ios_swift")
}

func TestMessages(t *testing.T) {
	logger, buf := newTestLogger()

	logger.Header("converting project")
	logger.Successf("%d entries converted", 3)
	logger.Warningf("%d fallbacks", 1)
	logger.Errorf("assembly failed: %s", "disk full")

	out := buf.String()
	assert.Contains(t, out, "portmill")
	assert.Contains(t, out, "3 entries converted")
	assert.Contains(t, out, "1 fallbacks")
	assert.Contains(t, out, "assembly failed: disk full")
}
