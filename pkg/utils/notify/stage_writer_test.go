package notify_test

import (
	"bytes"
	"testing"

	"github.com/Jaydooooooo/happy-code/pkg/utils/notify"
)

func TestStageSeparatingWriter_FirstTitleNoLeadingNewline(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	writer := notify.NewStageSeparatingWriter(&buf)

	_, err := writer.Write([]byte("🔍 Run preflight checks...\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := buf.String()
	want := "🔍 Run preflight checks...\n"

	if got != want {
		t.Fatalf("output mismatch. want %q, got %q", want, got)
	}
}

func TestStageSeparatingWriter_SecondTitleGetsSeparated(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	writer := notify.NewStageSeparatingWriter(&buf)

	_, _ = writer.Write([]byte("🔍 Run preflight checks...\n"))
	_, _ = writer.Write([]byte("✔ docker-daemon passed\n"))
	_, _ = writer.Write([]byte("🐳 Deploy containers...\n"))

	got := buf.String()
	want := "🔍 Run preflight checks...\n✔ docker-daemon passed\n\n🐳 Deploy containers...\n"

	if got != want {
		t.Fatalf("output mismatch. want %q, got %q", want, got)
	}
}

func TestStageSeparatingWriter_ActivitySymbolsNotSeparated(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	writer := notify.NewStageSeparatingWriter(&buf)

	_, _ = writer.Write([]byte("► creating network\n"))
	_, _ = writer.Write([]byte("✔ network created\n"))
	_, _ = writer.Write([]byte("✗ failed\n"))
	_, _ = writer.Write([]byte("⚠ warning\n"))
	_, _ = writer.Write([]byte("ℹ note\n"))
	_, _ = writer.Write([]byte("✚ created 'Caddyfile'\n"))

	got := buf.String()
	if bytes.Contains(buf.Bytes(), []byte("\n\n")) {
		t.Fatalf("expected no blank lines between status messages, got %q", got)
	}
}

func TestStageSeparatingWriter_ResetClearsState(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	writer := notify.NewStageSeparatingWriter(&buf)

	_, _ = writer.Write([]byte("🔍 First...\n"))
	writer.Reset()
	_, _ = writer.Write([]byte("🐳 Second...\n"))

	got := buf.String()
	want := "🔍 First...\n🐳 Second...\n"

	if got != want {
		t.Fatalf("output mismatch. want %q, got %q", want, got)
	}
}

func TestStageSeparatingWriter_HasWritten(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	writer := notify.NewStageSeparatingWriter(&buf)

	if writer.HasWritten() {
		t.Fatal("expected HasWritten to be false before any write")
	}

	_, _ = writer.Write([]byte("x"))

	if !writer.HasWritten() {
		t.Fatal("expected HasWritten to be true after a write")
	}
}

func TestStageSeparatingWriter_EmptyWrite(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	writer := notify.NewStageSeparatingWriter(&buf)

	n, err := writer.Write(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if n != 0 {
		t.Fatalf("expected 0 bytes written, got %d", n)
	}

	if writer.HasWritten() {
		t.Fatal("expected HasWritten to remain false after empty write")
	}
}
