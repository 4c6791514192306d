package telemetry

import (
	"bytes"
	"testing"
)

func BenchmarkLoggerEmit(b *testing.B) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, "workflow-bench")
	if err != nil {
		b.Fatalf("new logger: %v", err)
	}

	entry := Entry{
		Category: CategoryOption,
		Message:  `Option "--jobs" is deprecated and may be removed in a future release.`,
		Severity: SeverityWarn,
		Option:   "--jobs",
		Metadata: map[string]string{"replacement": "--parallel"},
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf.Reset()
		if err := logger.Emit(entry); err != nil {
			b.Fatalf("emit: %v", err)
		}
	}
}
