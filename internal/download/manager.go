package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/havokzero/myrient-browser/internal/util"
)

type Progress struct {
	BytesDone   int64
	BytesTotal  int64
	CurrentFile string
	ETA         string
	Done        bool
	Skipped     bool
	Err         error
}

// Options configures a Manager.
type Options struct {
	ExtractZip bool
	UserAgent  string
	Console    *Console
}

type Manager struct {
	client  *http.Client
	console *Console
	opts    Options
}

func NewManager(opts Options) *Manager {
	// Tuned transport so we can hammer a single host efficiently.
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,

		ForceAttemptHTTP2:     true,
		MaxIdleConns:          200,
		MaxIdleConnsPerHost:   100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	console := opts.Console
	if console == nil {
		console = NewConsole(nil, nil)
	}

	return &Manager{
		// No global timeout: archive files can be huge; callers cancel via ctx.
		client:  &http.Client{Transport: transport},
		console: console,
		opts:    opts,
	}
}

// DownloadFileWithRetry wraps DownloadFile with simple retry logic.
func (m *Manager) DownloadFileWithRetry(ctx context.Context, urlStr, targetDir string, cb func(Progress), attempts int) error {
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for i := 1; i <= attempts; i++ {
		if i > 1 {
			m.console.Log(fmt.Sprintf("Retry %d/%d for %s", i, attempts, urlStr))
		}
		lastErr = m.DownloadFile(ctx, urlStr, targetDir, cb)
		if lastErr == nil || ctx.Err() != nil {
			return lastErr
		}
	}
	return lastErr
}

// DownloadFile downloads a single URL into targetDir and reports progress via cb.
// An existing non-empty target file is skipped. A failed transfer removes the
// partial file.
func (m *Manager) DownloadFile(ctx context.Context, urlStr, targetDir string, cb func(Progress)) error {
	start := time.Now()
	p := Progress{CurrentFile: urlStr}

	if cb == nil {
		cb = func(Progress) {}
	}
	fail := func(msg string, err error) error {
		p.Err = err
		cb(p)
		if errors.Is(err, context.Canceled) {
			m.console.LogCancelled(urlStr)
		} else {
			m.console.LogError(msg, err)
		}
		return err
	}

	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return fail("create target dir", err)
	}

	filename := util.FileNameFromURL(urlStr)
	dstPath := filepath.Join(targetDir, filename)

	if fi, err := os.Stat(dstPath); err == nil && fi.Size() > 0 {
		m.console.LogSkipped(dstPath)
		p.BytesTotal = fi.Size()
		p.BytesDone = fi.Size()
		p.Done = true
		p.Skipped = true
		cb(p)
		return nil
	}

	m.console.Log(fmt.Sprintf("Downloading %s -> %s", urlStr, dstPath))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return fail("build request", err)
	}
	if m.opts.UserAgent != "" {
		req.Header.Set("User-Agent", m.opts.UserAgent)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return fail("http get "+filename, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fail("http get "+filename, fmt.Errorf("http error: %s", resp.Status))
	}

	total := resp.ContentLength
	p.BytesTotal = total

	tmpPath := dstPath + ".part"
	out, err := os.Create(tmpPath)
	if err != nil {
		return fail("create file", err)
	}

	buf := make([]byte, 32*1024)
	for {
		n, rerr := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := out.Write(buf[:n]); werr != nil {
				out.Close()
				os.Remove(tmpPath)
				return fail("write "+filename, werr)
			}
			p.BytesDone += int64(n)
			p.ETA = util.CalculateETA(p.BytesDone, total, start)
			cb(p)
		}
		if rerr != nil {
			if rerr == io.EOF {
				break
			}
			out.Close()
			os.Remove(tmpPath)
			return fail("read "+filename, rerr)
		}
	}

	if err := out.Close(); err != nil {
		os.Remove(tmpPath)
		return fail("close "+filename, err)
	}
	if err := os.Rename(tmpPath, dstPath); err != nil {
		return fail("rename "+filename, err)
	}

	p.Done = true
	cb(p)
	m.console.LogComplete(fmt.Sprintf("%s (%s)", filename, util.FormatBytes(p.BytesDone, 2)), p.BytesDone)

	if m.opts.ExtractZip {
		return m.maybeUnzip(dstPath)
	}
	return nil
}

func (m *Manager) maybeUnzip(dstPath string) error {
	if !strings.HasSuffix(strings.ToLower(dstPath), ".zip") {
		return nil
	}
	m.console.Log("Extracting: " + dstPath)
	outDir, count, err := util.UnzipInPlace(dstPath)
	if err != nil {
		m.console.LogError("extract "+dstPath, err)
		return err
	}
	m.console.Log(fmt.Sprintf("Extracted %d files into %s", count, outDir))
	return nil
}
