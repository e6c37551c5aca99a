package musicapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"musicsearcher/internal/logger"
)

// The media URLs reset connections on long single transfers, so audio is
// pulled in fixed-size ranges until the server says the range is past the
// end.

type rangeState int

const (
	fetchChunk rangeState = iota
	followRedirect
	done
)

type chunkResult struct {
	code     int
	body     []byte
	location string
}

func (c *Client) download(ctx context.Context, id, target string) ([]byte, error) {
	var (
		buf       bytes.Buffer
		offset    int64
		requests  int
		redirects int
		chunks    int
		last      chunkResult
		state     = fetchChunk
		start     = time.Now()
	)

	for state != done {
		switch state {
		case fetchChunk:
			if requests >= c.cfg.MaxChunkRequests {
				return nil, fmt.Errorf("%s after %d requests: %w", id, requests, ErrDownloadStalled)
			}
			requests++

			res, err := c.fetchRange(ctx, target, offset, offset+c.cfg.ChunkSize-1)
			if err != nil {
				return nil, fmt.Errorf("%s chunk at %d: %w", id, offset, err)
			}
			last = res

			switch {
			case res.code == http.StatusRequestedRangeNotSatisfiable:
				state = done
			case isRedirect(res.code):
				state = followRedirect
			case res.code == http.StatusPartialContent:
				buf.Write(res.body)
				offset += c.cfg.ChunkSize
				chunks++
				redirects = 0
			case res.code == http.StatusOK:
				// Range ignored: the body is the whole file.
				buf.Write(res.body)
				chunks++
				state = done
			default:
				return nil, &StatusError{Op: "GET", URL: target, Code: res.code}
			}

		case followRedirect:
			redirects++
			if redirects > c.cfg.MaxRedirects {
				return nil, fmt.Errorf("%s after %d redirects: %w", id, redirects-1, ErrDownloadStalled)
			}
			if last.location == "" {
				return nil, fmt.Errorf("%s: redirect %d without location", id, last.code)
			}
			target = last.location
			state = fetchChunk
		}
	}

	logger.Info("download finished",
		logger.String("id", id),
		logger.Int("bytes", buf.Len()),
		logger.Int("chunks", chunks),
		logger.Int("requests", requests),
		logger.Duration("took", time.Since(start)),
	)
	return buf.Bytes(), nil
}

func (c *Client) fetchRange(ctx context.Context, target string, from, to int64) (chunkResult, error) {
	header := http.Header{}
	header.Set("Range", fmt.Sprintf("bytes=%d-%d", from, to))

	resp, err := c.get(ctx, target, header)
	if err != nil {
		return chunkResult{}, err
	}
	defer resp.Body.Close()

	res := chunkResult{code: resp.StatusCode}
	switch {
	case isRedirect(resp.StatusCode):
		if loc, err := resp.Location(); err == nil {
			res.location = loc.String()
		}
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusPartialContent:
		if res.body, err = io.ReadAll(resp.Body); err != nil {
			return chunkResult{}, err
		}
	}
	return res, nil
}

func isRedirect(code int) bool {
	switch code {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}
