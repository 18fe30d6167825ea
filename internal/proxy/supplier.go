package proxy

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"resty.dev/v3"
)

const maxConcurrentProxyChecks = 50

// ProxySupplier hands out proxy URLs in round-robin order
type ProxySupplier interface {
	Get() string // "" when no proxy is available
	Len() int
}

type proxySupplier struct {
	proxies []string
	current int
	mutex   sync.Mutex
}

// NewProxySupplier keeps the proxies that can reach testURL, in their configured order
func NewProxySupplier(ctx context.Context, proxies []string, testURL, userAgent string) (ProxySupplier, error) {
	if len(proxies) == 0 {
		return &proxySupplier{proxies: []string{}}, nil
	}

	log.Infof("🔄 Testing %d proxies in parallel...", len(proxies))

	working := make([]bool, len(proxies))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentProxyChecks)

	for i, proxyURL := range proxies {
		g.Go(func() error {
			log.Debugf("🔄 Testing proxy %d/%d: %s", i+1, len(proxies), proxyURL)
			working[i] = isProxyValid(ctx, proxyURL, testURL, userAgent)
			if working[i] {
				log.Infof("✅ Proxy %s is working", proxyURL)
			} else {
				log.Infof("❌ Proxy %s is not working, skipping", proxyURL)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	validProxies := make([]string, 0, len(proxies))
	for i, proxyURL := range proxies {
		if working[i] {
			validProxies = append(validProxies, proxyURL)
		}
	}

	if len(validProxies) == 0 {
		log.Warnf("⚠️ None of the %d configured proxies is working, requests will go out directly", len(proxies))
	} else {
		log.Infof("✅ ProxySupplier initialized with %d working proxies out of %d tested", len(validProxies), len(proxies))
	}

	return &proxySupplier{proxies: validProxies}, nil
}

func (p *proxySupplier) Get() string {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if len(p.proxies) == 0 {
		return ""
	}

	proxy := p.proxies[p.current]
	p.current = (p.current + 1) % len(p.proxies)

	return proxy
}

func (p *proxySupplier) Len() int {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return len(p.proxies)
}

// isProxyValid checks that testURL answers with a 2xx status through proxyURL
func isProxyValid(ctx context.Context, proxyURL, testURL, userAgent string) bool {
	client := resty.New().
		SetTimeout(5 * time.Second).
		SetHeader("User-Agent", userAgent).
		SetProxy(proxyURL)
	defer client.Close()

	resp, err := client.R().
		SetContext(ctx).
		Get(testURL)

	if err != nil {
		log.Infof("Proxy test failed for %s: %v", proxyURL, err)
		return false
	}

	if !resp.IsSuccess() {
		log.Infof("Proxy test failed for %s with status: %s", proxyURL, resp.Status())
		return false
	}

	return true
}
