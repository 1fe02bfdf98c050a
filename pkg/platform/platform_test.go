package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Platform
		wantErr bool
	}{
		{name: "android_java", input: "android_java", want: AndroidJava},
		{name: "android_kotlin", input: "android_kotlin", want: AndroidKotlin},
		{name: "ios_swift", input: "ios_swift", want: IOSSwift},
		{name: "mixed_case", input: "Android_Java", want: AndroidJava},
		{name: "whitespace", input: "  ios_swift ", want: IOSSwift},
		{name: "unknown", input: "windows_phone", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSourceExtensions(t *testing.T) {
	assert.ElementsMatch(t, []string{".java", ".xml"}, AndroidJava.SourceExtensions())
	assert.ElementsMatch(t, []string{".kt", ".xml"}, AndroidKotlin.SourceExtensions())
	assert.ElementsMatch(t, []string{".swift", ".storyboard", ".xib"}, IOSSwift.SourceExtensions())
}

func TestCanonicalExtension(t *testing.T) {
	assert.Equal(t, ".java", AndroidJava.CanonicalExtension())
	assert.Equal(t, ".kt", AndroidKotlin.CanonicalExtension())
	assert.Equal(t, ".swift", IOSSwift.CanonicalExtension())
}

func TestRecognizesExtension(t *testing.T) {
	assert.True(t, AndroidJava.RecognizesExtension(".java"))
	assert.True(t, AndroidJava.RecognizesExtension(".XML"), "extension match should be case-insensitive")
	assert.False(t, AndroidJava.RecognizesExtension(".swift"))
	assert.False(t, IOSSwift.RecognizesExtension(".xml"))
	assert.True(t, IOSSwift.RecognizesExtension(".storyboard"))
}

func TestIsAllowedUpload(t *testing.T) {
	tests := []struct {
		filename string
		want     bool
	}{
		{"project.zip", true},
		{"MainActivity.java", true},
		{"MainActivity.kt", true},
		{"ContentView.swift", true},
		{"activity_main.xml", true},
		{"Main.storyboard", true},
		{"notes.md", false},
		{"icon.png", false},
		{"archive.tar", false},
		{"no_extension", false},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAllowedUpload(tt.filename))
		})
	}
}

func TestConversionTypeMatches(t *testing.T) {
	tests := []struct {
		name string
		ct   ConversionType
		path string
		want bool
	}{
		{name: "full_project_code", ct: FullProject, path: "src/Main.java", want: true},
		{name: "full_project_markup", ct: FullProject, path: "res/layout/activity_main.xml", want: true},
		{name: "logic_only_code", ct: LogicOnly, path: "src/Main.java", want: true},
		{name: "logic_only_markup", ct: LogicOnly, path: "res/activity_main.xml", want: false},
		{name: "logic_only_markup_in_layout_dir", ct: LogicOnly, path: "res/layout/activity_main.xml", want: false},
		{name: "layouts_only_markup", ct: LayoutsOnly, path: "res/strings.xml", want: true},
		{name: "layouts_only_layout_path", ct: LayoutsOnly, path: "ui/layouts/main.swift", want: true},
		{name: "layouts_only_code", ct: LayoutsOnly, path: "src/Main.java", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ct.Matches(tt.path))
		})
	}
}

func TestParseConversionType(t *testing.T) {
	ct, err := ParseConversionType("")
	require.NoError(t, err)
	assert.Equal(t, FullProject, ct, "empty conversion type should default to full_project")

	_, err = ParseConversionType("everything")
	require.Error(t, err)
}
