package cart

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byway-labs/byway-gateway/internal/normalize"
	"github.com/byway-labs/byway-gateway/internal/upstream"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) Publish(level, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, level)
}

func (n *recordingNotifier) levels() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.events...)
}

type cartServer struct {
	mu          sync.Mutex
	requests    int
	addConflict bool
}

func (s *cartServer) start(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/Cart", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests++
		s.mu.Unlock()
		if r.Header.Get("Authorization") == "" {
			http.Error(w, `{"message":"missing token"}`, http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]any{
				{"courseId": 5, "courseName": "React Basics", "price": 49.99},
			},
			"itemCount": 1,
			"subTotal":  49.99,
			"tax":       7.5,
			"total":     57.49,
		})
	})

	mux.HandleFunc("/Cart/add/", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests++
		conflict := s.addConflict
		s.mu.Unlock()
		if conflict {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"message": "course is already in cart"})
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("/Cart/remove/", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests++
		s.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("/Order/Checkout", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests++
		s.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]any{"id": 77, "total": 57.49})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func (s *cartServer) requestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests
}

func newOrchestrator(t *testing.T, s *cartServer) (*Orchestrator, *recordingNotifier) {
	t.Helper()
	srv := s.start(t)
	client := upstream.NewClient(srv.URL, upstream.WithTimeout(5*time.Second))
	notifier := &recordingNotifier{}
	return NewOrchestrator(client, normalize.NewMapperWithSeed(time.Now, 1), notifier), notifier
}

func TestAddWithoutTokenSkipsNetwork(t *testing.T) {
	server := &cartServer{}
	orch, _ := newOrchestrator(t, server)

	_, err := orch.Add(context.Background(), "", 5)

	assert.ErrorIs(t, err, upstream.ErrUnauthenticated)
	assert.Zero(t, server.requestCount(), "no network call may happen without a token")
}

func TestAddRefetchesCart(t *testing.T) {
	server := &cartServer{}
	orch, _ := newOrchestrator(t, server)

	cart, err := orch.Add(context.Background(), "tok", 5)
	require.NoError(t, err)

	assert.Equal(t, 1, cart.ItemCount)
	assert.True(t, cart.TotalsConsistent())
	// One add plus one re-fetch.
	assert.Equal(t, 2, server.requestCount())
}

func TestDuplicateAddIsWarningNotError(t *testing.T) {
	server := &cartServer{addConflict: true}
	orch, notifier := newOrchestrator(t, server)

	cart, err := orch.Add(context.Background(), "tok", 5)

	require.NoError(t, err)
	assert.Equal(t, 1, cart.ItemCount)
	assert.Contains(t, notifier.levels(), "warning")
}

func TestRemoveRefetchesCart(t *testing.T) {
	server := &cartServer{}
	orch, _ := newOrchestrator(t, server)

	cart, err := orch.Remove(context.Background(), "tok", 5)
	require.NoError(t, err)

	assert.True(t, cart.TotalsConsistent())
	assert.Equal(t, 2, server.requestCount())
}

func TestCheckoutValidatesBeforeNetwork(t *testing.T) {
	server := &cartServer{}
	orch, _ := newOrchestrator(t, server)

	form := validCardForm()
	form.CVV = "12"

	_, _, err := orch.Checkout(context.Background(), "tok", form)

	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Zero(t, server.requestCount(), "validation failures must not reach the network")
}

func TestCheckoutSubmitsAndResyncs(t *testing.T) {
	server := &cartServer{}
	orch, _ := newOrchestrator(t, server)

	order, cart, err := orch.Checkout(context.Background(), "tok", validCardForm())
	require.NoError(t, err)

	assert.Equal(t, int64(77), order.ID)
	assert.True(t, cart.TotalsConsistent())
	// Checkout plus cart re-fetch.
	assert.Equal(t, 2, server.requestCount())
}
