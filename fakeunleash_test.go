package main

// Based on a stub by Jason Barron (@jrbarron) in the Unleash Slack server; the
// unleash-go client ships no server stub of its own.

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

type featureResponse struct {
	Version  int       `json:"version"`
	Features []feature `json:"features"`
}

type feature struct {
	Name       string     `json:"name"`
	Enabled    bool       `json:"enabled"`
	Strategies []strategy `json:"strategies"`
	CreatedAt  time.Time  `json:"createdAt"`
}

type strategy struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type fakeUnleashServer struct {
	sync.RWMutex
	srv      *httptest.Server
	features map[string]bool
}

func (f *fakeUnleashServer) url() string {
	return f.srv.URL + "/"
}

func (f *fakeUnleashServer) setEnabled(feature string, enabled bool) {
	f.Lock()
	f.features[feature] = enabled
	f.Unlock()
}

func (f *fakeUnleashServer) handler(w http.ResponseWriter, req *http.Request) {
	switch req.Method + " " + req.URL.Path {
	case "GET /client/features":
		f.RLock()
		features := []feature{}
		for k, v := range f.features {
			features = append(features, feature{
				Name:       k,
				Enabled:    v,
				Strategies: []strategy{{ID: 0, Name: "default"}},
			})
		}
		f.RUnlock()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(featureResponse{Version: 2, Features: features})
	case "POST /client/register", "POST /client/metrics":
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Unknown route"))
	}
}

func newFakeUnleash() *fakeUnleashServer {
	faker := &fakeUnleashServer{
		features: map[string]bool{},
	}
	faker.srv = httptest.NewServer(http.HandlerFunc(faker.handler))
	return faker
}

// readyListener lets tests block until a fresh client has fetched the toggles.
type readyListener struct {
	BasicListener
	once  sync.Once
	ready chan struct{}
}

func newReadyListener() *readyListener {
	return &readyListener{ready: make(chan struct{})}
}

func (l *readyListener) OnReady() {
	l.once.Do(func() { close(l.ready) })
}

func (l *readyListener) wait(timeout time.Duration) {
	select {
	case <-l.ready:
	case <-time.After(timeout):
	}
}
