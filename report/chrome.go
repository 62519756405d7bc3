package report

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"absensi-server-go/attendance"
)

// Chrome prints the HTML recap page to PDF with a headless browser, so the
// PDF matches the HTML view.
type Chrome struct {
	Bin string // browser binary; empty lets rod find or download one
}

func (c Chrome) PDF(ctx context.Context, recap *attendance.Recap) ([]byte, error) {
	html, err := HTMLBytes(recap)
	if err != nil {
		return nil, err
	}

	l := launcher.New().Headless(true).Leakless(false).Context(ctx)
	if c.Bin != "" {
		l = l.Bin(c.Bin)
	}
	if os.Geteuid() == 0 {
		l = l.NoSandbox(true)
	}
	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}
	defer l.Kill()

	browser := rod.New().ControlURL(u).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}
	defer browser.Close()

	var out []byte
	err = rod.Try(func() {
		page := browser.MustPage("")
		page.MustSetDocumentContent(string(html))
		page.MustWaitLoad()
		r, err := page.PDF(&proto.PagePrintToPDF{PrintBackground: true})
		if err != nil {
			panic(err)
		}
		out, err = io.ReadAll(r)
		if err != nil {
			panic(err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to print recap pdf: %w", err)
	}
	return out, nil
}
