package musicapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type step struct {
	code     int
	body     string
	location string
}

type seenRequest struct {
	path  string
	rng   string
	agent string
}

// scriptedServer answers requests with the given steps in order and records
// what it saw. Requests past the script get a 500.
type scriptedServer struct {
	*httptest.Server

	mu    sync.Mutex
	steps []step
	seen  []seenRequest
}

func newScriptedServer(t *testing.T, steps ...step) *scriptedServer {
	t.Helper()
	s := &scriptedServer{steps: steps}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		i := len(s.seen)
		s.seen = append(s.seen, seenRequest{path: r.URL.Path, rng: r.Header.Get("Range"), agent: r.UserAgent()})
		s.mu.Unlock()

		if i >= len(s.steps) {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		st := s.steps[i]
		if st.location != "" {
			w.Header().Set("Location", st.location)
		}
		w.WriteHeader(st.code)
		_, _ = w.Write([]byte(st.body))
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *scriptedServer) requests() []seenRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]seenRequest(nil), s.seen...)
}

func newTestClient(chunk int64) *Client {
	cfg := DefaultConfig()
	cfg.ChunkSize = chunk
	return New(cfg)
}

func TestDownload_ConcatenatesUntilRangeNotSatisfiable(t *testing.T) {
	srv := newScriptedServer(t,
		step{code: http.StatusPartialContent, body: "chunk1"},
		step{code: http.StatusPartialContent, body: "chunk2"},
		step{code: http.StatusRequestedRangeNotSatisfiable},
	)
	c := newTestClient(10)

	data, err := c.download(context.Background(), "id", srv.URL+"/media")
	require.NoError(t, err)
	assert.Equal(t, "chunk1chunk2", string(data))

	reqs := srv.requests()
	require.Len(t, reqs, 3)
	assert.Equal(t, "bytes=0-9", reqs[0].rng)
	assert.Equal(t, "bytes=10-19", reqs[1].rng)
	assert.Equal(t, "bytes=20-29", reqs[2].rng)
	assert.Equal(t, userAgent, reqs[0].agent)
}

func TestDownload_FollowsRedirectAtSameOffset(t *testing.T) {
	srv := newScriptedServer(t,
		step{code: http.StatusFound, location: "/moved"},
		step{code: http.StatusPartialContent, body: "chunk1"},
		step{code: http.StatusRequestedRangeNotSatisfiable},
	)
	c := newTestClient(10)

	data, err := c.download(context.Background(), "id", srv.URL+"/media")
	require.NoError(t, err)
	assert.Equal(t, "chunk1", string(data))

	reqs := srv.requests()
	require.Len(t, reqs, 3)
	assert.Equal(t, seenRequest{path: "/media", rng: "bytes=0-9", agent: userAgent}, reqs[0])
	assert.Equal(t, seenRequest{path: "/moved", rng: "bytes=0-9", agent: userAgent}, reqs[1])
	assert.Equal(t, seenRequest{path: "/moved", rng: "bytes=10-19", agent: userAgent}, reqs[2])
}

func TestDownload_FullBodyWhenRangeIgnored(t *testing.T) {
	srv := newScriptedServer(t, step{code: http.StatusOK, body: "whole file"})
	c := newTestClient(4)

	data, err := c.download(context.Background(), "id", srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "whole file", string(data))
	assert.Len(t, srv.requests(), 1)
}

func TestDownload_UnexpectedStatus(t *testing.T) {
	srv := newScriptedServer(t,
		step{code: http.StatusPartialContent, body: "chunk1"},
		step{code: http.StatusForbidden, body: "nope"},
	)
	c := newTestClient(10)

	data, err := c.download(context.Background(), "id", srv.URL)
	assert.Nil(t, data)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusForbidden, se.Code)
}

func TestDownload_RedirectLoopIsBounded(t *testing.T) {
	steps := make([]step, 0, 20)
	for i := 0; i < 20; i++ {
		steps = append(steps, step{code: http.StatusFound, location: "/again"})
	}
	srv := newScriptedServer(t, steps...)

	cfg := DefaultConfig()
	cfg.MaxRedirects = 3
	c := New(cfg)

	_, err := c.download(context.Background(), "id", srv.URL)
	assert.ErrorIs(t, err, ErrDownloadStalled)
	assert.Len(t, srv.requests(), 4)
}

func TestDownload_ChunkRequestsAreBounded(t *testing.T) {
	steps := make([]step, 0, 10)
	for i := 0; i < 10; i++ {
		steps = append(steps, step{code: http.StatusPartialContent, body: "x"})
	}
	srv := newScriptedServer(t, steps...)

	cfg := DefaultConfig()
	cfg.ChunkSize = 1
	cfg.MaxChunkRequests = 5
	c := New(cfg)

	_, err := c.download(context.Background(), "id", srv.URL)
	assert.ErrorIs(t, err, ErrDownloadStalled)
	assert.Len(t, srv.requests(), 5)
}

func TestDownload_RedirectWithoutLocation(t *testing.T) {
	srv := newScriptedServer(t, step{code: http.StatusFound})
	c := newTestClient(10)

	_, err := c.download(context.Background(), "id", srv.URL)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrDownloadStalled)
}

func TestDownload_Cancelled(t *testing.T) {
	srv := newScriptedServer(t, step{code: http.StatusPartialContent, body: "chunk"})
	c := newTestClient(10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.download(ctx, "id", srv.URL)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSongDownload_PicksCandidateUnderLimit(t *testing.T) {
	srv := newScriptedServer(t,
		step{code: http.StatusPartialContent, body: "small"},
		step{code: http.StatusRequestedRangeNotSatisfiable},
	)
	c := newTestClient(10)

	s := &Song{
		ID:       "x",
		client:   c,
		resolved: true,
		candidates: []Candidate{
			{URL: srv.URL + "/small", SizeMB: 3},
			{URL: srv.URL + "/big", SizeMB: 8},
		},
	}

	data, err := s.Download(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "small", string(data))
	assert.Equal(t, "/small", srv.requests()[0].path)
}
