package handler

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cuceimatch/matchcore/internal/model"
	"github.com/stretchr/testify/require"
)

func readEventName(t *testing.T, r *bufio.Reader) string {
	t.Helper()
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "event:") {
			return strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		}
	}
}

func TestEventStream(t *testing.T) {
	_, upstreamServer := newUpstream(t)
	router, svc := newTestRouter(t, upstreamServer.URL)
	bridge := httptest.NewServer(router)
	defer bridge.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, bridge.URL+"/api/v1/events", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	reader := bufio.NewReader(resp.Body)
	require.Equal(t, "ready", readEventName(t, reader))

	svc.Events.Publish(model.Event{Type: model.EventMatchSurfaced, Match: &model.Match{ID: 3}})
	require.Equal(t, string(model.EventMatchSurfaced), readEventName(t, reader))
}
