package report

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/stretchr/testify/require"
)

func TestChromePDF(t *testing.T) {
	if testing.Short() {
		t.Skip("launches a browser")
	}
	bin, ok := launcher.LookPath()
	if !ok {
		t.Skip("no chrome or chromium binary found")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	out, err := Chrome{Bin: bin}.PDF(ctx, sampleRecap())
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(out, []byte("%PDF")), "got %q", out[:min(len(out), 16)])
}

func TestChromePDFHoliday(t *testing.T) {
	if testing.Short() {
		t.Skip("launches a browser")
	}
	bin, ok := launcher.LookPath()
	if !ok {
		t.Skip("no chrome or chromium binary found")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	recap := sampleRecap()
	recap.Holiday = true
	recap.Students = nil
	out, err := Chrome{Bin: bin}.PDF(ctx, recap)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}
