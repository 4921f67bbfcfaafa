package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"villrein/internal/config"
	"villrein/internal/domain/track"
)

type fakeTracks struct {
	years       []string
	err         error
	lastDetails track.Details
	lastNum     *int
}

func (f *fakeTracks) Years(ctx context.Context) ([]string, error) {
	return f.years, f.err
}

func (f *fakeTracks) Tracks(ctx context.Context, year string, details track.Details, num *int) ([]track.AnimalTrack, error) {
	f.lastDetails = details
	f.lastNum = num
	if f.err != nil {
		return nil, f.err
	}
	return []track.AnimalTrack{{
		ID:        "1",
		Name:      "Rein " + year,
		AgeString: "Voksen",
		Positions: []track.TrackPoint{{Longitude: 9.1, Latitude: 61.2, Date: "2023-04-01T10:00:00", Distance: 12.5}},
	}}, nil
}

type fakeFeed struct {
	mu       sync.Mutex
	handler  func([]byte)
	ready    chan struct{}
	released chan struct{}
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{ready: make(chan struct{}), released: make(chan struct{})}
}

func (f *fakeFeed) Subscribe(handler func([]byte)) (func(), error) {
	f.mu.Lock()
	f.handler = handler
	f.mu.Unlock()
	close(f.ready)
	return func() { close(f.released) }, nil
}

func (f *fakeFeed) emit(data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handler(data)
}

func newTestServer(tracks track.Service, feed *fakeFeed) *Server {
	cfg := config.ServerConfig{CorsOrigins: []string{"*"}}
	if feed == nil {
		return NewServer(cfg, tracks, nil, nil)
	}
	return NewServer(cfg, tracks, feed, nil)
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Header.Set("Origin", "https://map.example")
	h.ServeHTTP(rec, req)
	return rec
}

func TestListYears(t *testing.T) {
	srv := newTestServer(&fakeTracks{years: []string{"2022", "2023"}}, nil)

	rec := get(t, srv.Handler(), "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `["2022","2023"]`, rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestGetYear(t *testing.T) {
	tracks := &fakeTracks{}
	srv := newTestServer(tracks, nil)

	rec := get(t, srv.Handler(), "/year/2023")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, track.DetailsDay, tracks.lastDetails)
	assert.Nil(t, tracks.lastNum)

	var body []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.Equal(t, "Rein 2023", body[0]["name"])
	positions := body[0]["positions"].([]interface{})
	point := positions[0].(map[string]interface{})
	assert.Equal(t, []interface{}{9.1, 61.2}, point["point"])
	assert.Equal(t, 12.5, point["dist"])

	rec = get(t, srv.Handler(), "/year/2023?details=week&num=2")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, track.DetailsWeek, tracks.lastDetails)
	require.NotNil(t, tracks.lastNum)
	assert.Equal(t, 2, *tracks.lastNum)
}

func TestGetYearBadRequests(t *testing.T) {
	srv := newTestServer(&fakeTracks{}, nil)

	for _, target := range []string{
		"/year/abc",
		"/year/2023?details=hourly",
		"/year/2023?num=first",
	} {
		rec := get(t, srv.Handler(), target)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestServiceErrors(t *testing.T) {
	srv := newTestServer(&fakeTracks{err: track.ErrNotFound}, nil)
	assert.Equal(t, http.StatusNotFound, get(t, srv.Handler(), "/").Code)

	srv = newTestServer(&fakeTracks{err: errors.New("disk on fire")}, nil)
	rec := get(t, srv.Handler(), "/year/2023")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "disk on fire")
}

func TestHealth(t *testing.T) {
	srv := newTestServer(&fakeTracks{}, nil)
	rec := get(t, srv.Handler(), "/api/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestProgressWebSocketNotMountedWithoutFeed(t *testing.T) {
	srv := newTestServer(&fakeTracks{}, nil)
	assert.Equal(t, http.StatusNotFound, get(t, srv.Handler(), "/ws/progress").Code)
}

func TestProgressWebSocket(t *testing.T) {
	feed := newFakeFeed()
	srv := newTestServer(&fakeTracks{}, feed)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/progress"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(msg), `"welcome"`)

	<-feed.ready
	feed.emit([]byte(`{"type":"progress","data":{"completed":1,"total":2}}`))

	_, msg, err = conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"progress","data":{"completed":1,"total":2}}`, string(msg))

	require.NoError(t, conn.Close())
	select {
	case <-feed.released:
	case <-time.After(5 * time.Second):
		t.Fatal("subscription was not released after disconnect")
	}
}
