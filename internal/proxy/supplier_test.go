package proxy

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	log "github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProxySupplier_NoProxies(t *testing.T) {
	supplier, err := NewProxySupplier(context.Background(), nil, "http://catalog.test/categories", "test-agent")
	require.NoError(t, err)

	assert.Equal(t, 0, supplier.Len())
	assert.Equal(t, "", supplier.Get())
}

func TestNewProxySupplier_DropsBrokenProxies(t *testing.T) {
	working := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		w.WriteHeader(http.StatusOK)
	}))
	defer working.Close()

	blocked := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer blocked.Close()

	closed := httptest.NewServer(http.NotFoundHandler())
	closedURL := closed.URL
	closed.Close()

	supplier, err := NewProxySupplier(context.Background(),
		[]string{closedURL, working.URL, blocked.URL},
		"http://catalog.test/categories", "test-agent")
	require.NoError(t, err)

	assert.Equal(t, 1, supplier.Len())
	assert.Equal(t, working.URL, supplier.Get())
	assert.Equal(t, working.URL, supplier.Get())
}

func TestNewProxySupplier_WarnsWhenNoProxyWorks(t *testing.T) {
	hook := logtest.NewGlobal()
	t.Cleanup(hook.Reset)

	blocked := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer blocked.Close()

	supplier, err := NewProxySupplier(context.Background(), []string{blocked.URL}, "http://catalog.test/categories", "test-agent")
	require.NoError(t, err)

	assert.Equal(t, 0, supplier.Len())
	assert.Equal(t, "", supplier.Get())

	var warnings []string
	for _, entry := range hook.AllEntries() {
		if entry.Level == log.WarnLevel {
			warnings = append(warnings, entry.Message)
		}
	}
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "None of the 1 configured proxies is working")
}

func TestProxySupplier_RoundRobin(t *testing.T) {
	supplier := &proxySupplier{proxies: []string{"http://a", "http://b", "http://c"}}

	got := make([]string, 0, 5)
	for i := 0; i < 5; i++ {
		got = append(got, supplier.Get())
	}

	assert.Equal(t, []string{"http://a", "http://b", "http://c", "http://a", "http://b"}, got)
}
