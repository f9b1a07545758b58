package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrServer wraps errors reported by the conversion server.
var ErrServer = errors.New("conversion server")

// Video formats accepted by the conversion server.
const (
	FormatMP4 = "mp4"
	FormatMOV = "mov"
)

// MaxVideoFrames is the largest upload the conversion server accepts.
const MaxVideoFrames = 1000

// VideoClient uploads PNG frames to a conversion server and streams back the
// encoded video.
type VideoClient struct {
	BaseURL string
	HTTP    *http.Client
	// PollInterval is the delay between progress polls.
	PollInterval time.Duration
	// MaxStalls is the number of consecutive unchanged polls tolerated
	// before polling gives up. The upload itself keeps running.
	MaxStalls int

	log *zap.Logger
}

// NewVideoClient returns a client for the server at baseURL.
func NewVideoClient(baseURL string, log *zap.Logger) *VideoClient {
	if log == nil {
		log = zap.NewNop()
	}
	return &VideoClient{
		BaseURL:      strings.TrimRight(baseURL, "/"),
		HTTP:         &http.Client{Timeout: 5 * time.Minute},
		PollInterval: time.Second,
		MaxStalls:    30,
		log:          log,
	}
}

type statusResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

type progressResponse struct {
	Progress float64 `json:"progress"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Health checks that the server is reachable and returns its version.
func (c *VideoClient) Health(ctx context.Context) (string, error) {
	var st statusResponse
	if err := c.getJSON(ctx, "/api/flask-status", &st); err != nil {
		return "", err
	}
	if st.Status != "running" {
		return "", fmt.Errorf("%w: status %q", ErrServer, st.Status)
	}
	return st.Version, nil
}

// Convert uploads frames, reports upload and conversion progress, and copies
// the resulting video into dst.
func (c *VideoClient) Convert(ctx context.Context, frames []Frame, format string, dst io.Writer, report Report) error {
	if len(frames) == 0 {
		return ErrNoFrames
	}
	if len(frames) > MaxVideoFrames {
		return fmt.Errorf("%w: %d frames exceeds %d", ErrServer, len(frames), MaxVideoFrames)
	}
	switch format {
	case FormatMP4, FormatMOV:
	default:
		return fmt.Errorf("unsupported video format %q", format)
	}
	if report == nil {
		report = func(State, float64) {}
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/convert", pr)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	g, gctx := errgroup.WithContext(ctx)
	uploaded := make(chan struct{})

	g.Go(func() error {
		err := writeFrames(mw, frames, format, report)
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
		close(uploaded)
		if errors.Is(err, io.ErrClosedPipe) {
			// The request ended early; its goroutine reports why.
			return nil
		}
		return err
	})

	done := make(chan struct{})
	g.Go(func() error {
		defer close(done)
		resp, err := c.HTTP.Do(req)
		if err != nil {
			return fmt.Errorf("convert: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return serverError(resp)
		}
		report(StateWriting, 100)
		if _, err := io.Copy(dst, resp.Body); err != nil {
			return fmt.Errorf("download video: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		select {
		case <-uploaded:
		case <-done:
			return nil
		case <-gctx.Done():
			return nil
		}
		c.poll(gctx, done, report)
		return nil
	})

	return g.Wait()
}

func writeFrames(mw *multipart.Writer, frames []Frame, format string, report Report) error {
	if err := mw.WriteField("format", format); err != nil {
		return err
	}
	for i, f := range frames {
		part, err := mw.CreateFormFile("files[]", FrameName(f.Index))
		if err != nil {
			return err
		}
		if err := png.Encode(part, f.Image); err != nil {
			return fmt.Errorf("encode %s: %w", FrameName(f.Index), err)
		}
		report(StateUploading, 100*float64(i+1)/float64(len(frames)))
	}
	return nil
}

// poll follows the server's conversion progress until it completes, the
// download finishes, or progress stalls. Poll failures are logged and
// otherwise ignored.
func (c *VideoClient) poll(ctx context.Context, done <-chan struct{}, report Report) {
	t := time.NewTicker(c.PollInterval)
	defer t.Stop()
	last, stalls := -1.0, 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		case <-t.C:
		}
		var p progressResponse
		if err := c.getJSON(ctx, "/api/progress", &p); err != nil {
			c.log.Debug("progress poll failed", zap.Error(err))
			continue
		}
		if p.Progress == last {
			stalls++
			if stalls > c.MaxStalls {
				c.log.Warn("conversion progress stalled", zap.Float64("progress", p.Progress))
				return
			}
			continue
		}
		last, stalls = p.Progress, 0
		report(StateConverting, min(p.Progress, 100))
		if p.Progress >= 100 {
			return
		}
	}
}

func (c *VideoClient) getJSON(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return serverError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func serverError(resp *http.Response) error {
	var e errorResponse
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if json.Unmarshal(body, &e) == nil && e.Error != "" {
		return fmt.Errorf("%w: %s", ErrServer, e.Error)
	}
	return fmt.Errorf("%w: %s", ErrServer, resp.Status)
}
