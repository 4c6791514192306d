package logging

import (
	"strings"
	"testing"
)

func TestSanitizeCommand(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		want   string
		absent string
	}{
		{
			name: "plain driver command",
			args: []string{"cmake", "-G", "Ninja", "-DCMAKE_BUILD_TYPE=Release", "-S", "sources"},
			want: "cmake -G Ninja -DCMAKE_BUILD_TYPE=Release -S sources",
		},
		{
			name:   "sensitive cache definition",
			args:   []string{"cmake", "-DSIGNING_TOKEN=abc123", "-DQT_SRC_DIR=/src/qt"},
			want:   "cmake -DSIGNING_TOKEN=*** -DQT_SRC_DIR=/src/qt",
			absent: "abc123",
		},
		{
			name:   "inline flag value",
			args:   []string{"upload", "--api-token=s3cr3t", "--verbose"},
			want:   "upload --api-token=*** --verbose",
			absent: "s3cr3t",
		},
		{
			name:   "separated flag value",
			args:   []string{"upload", "--password", "hunter2", "--retry", "3"},
			want:   "upload --password *** --retry 3",
			absent: "hunter2",
		},
		{
			name: "trailing sensitive flag",
			args: []string{"upload", "--secret"},
			want: "upload --secret",
		},
		{
			name:   "bare assignment",
			args:   []string{"env", "GITHUB_TOKEN=ghp_x", "make"},
			want:   "env GITHUB_TOKEN=*** make",
			absent: "ghp_x",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := SanitizeCommand(tc.args)
			if got != tc.want {
				t.Fatalf("SanitizeCommand() = %q, want %q", got, tc.want)
			}
			if tc.absent != "" && strings.Contains(got, tc.absent) {
				t.Fatalf("secret %q leaked in %q", tc.absent, got)
			}
		})
	}
}

func TestSanitizeCommandEmpty(t *testing.T) {
	if got := SanitizeCommand(nil); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}

func TestSanitizeEnv(t *testing.T) {
	got := SanitizeEnv(map[string]string{
		"MACOSX_DEPLOYMENT_TARGET": "11.0",
		"NOTARY_PASSWORD":          "pw",
		"CMAKE_GENERATOR":          "Ninja",
	})
	want := []string{"CMAKE_GENERATOR=Ninja", "MACOSX_DEPLOYMENT_TARGET=11.0", "NOTARY_PASSWORD=***"}
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Fatalf("SanitizeEnv() = %v, want %v", got, want)
	}
	if SanitizeEnv(nil) != nil {
		t.Fatalf("expected nil for empty env")
	}
}

func TestSanitizeText(t *testing.T) {
	text := "configure failed: api_token=abcd while reading secret_file=/tmp/x; ok=1"
	got := SanitizeText(text)
	if strings.Contains(got, "abcd") || strings.Contains(got, "/tmp/x") {
		t.Fatalf("expected secrets to be redacted, got %q", got)
	}
	if !strings.Contains(got, "api_token=***") || !strings.Contains(got, "ok=1") {
		t.Fatalf("unexpected sanitized text %q", got)
	}
	if SanitizeText("") != "" {
		t.Fatalf("expected empty text to stay empty")
	}
}
