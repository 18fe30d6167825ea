package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"zara/catalog/internal/config"
	"zara/catalog/internal/domain"
	"zara/catalog/internal/proxy"

	log "github.com/sirupsen/logrus"
	"resty.dev/v3"
)

type CatalogClient interface {
	GetCategories(ctx context.Context) ([]domain.Category, error)
	GetProducts(ctx context.Context, category domain.Category) ([]domain.Product, error)
	Close() error
}

type zaraClient struct {
	config        config.CatalogConfig
	baseURL       string
	parser        *catalogParser
	proxySupplier proxy.ProxySupplier

	// One resty client per proxy URL ("" is the direct client)
	clientsMutex sync.Mutex
	httpClients  map[string]*resty.Client
}

func NewZaraClient(cfg config.CatalogConfig, proxySupplier proxy.ProxySupplier) CatalogClient {
	c := &zaraClient{
		config:        cfg,
		baseURL:       strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		parser:        newCatalogParser(),
		proxySupplier: proxySupplier,
		httpClients:   make(map[string]*resty.Client),
	}

	if proxySupplier != nil && proxySupplier.Len() > 0 {
		log.Infof("🔗 Rotating requests over %d proxies", proxySupplier.Len())
	}

	return c
}

func (c *zaraClient) GetCategories(ctx context.Context) ([]domain.Category, error) {
	body, err := c.fetchJSON(ctx, c.baseURL+"/categories")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}

	categories, err := c.parser.ParseCategories(body)
	if err != nil {
		return nil, err
	}

	log.Debugf("Successfully fetched %d leaf categories", len(categories))
	return categories, nil
}

func (c *zaraClient) GetProducts(ctx context.Context, category domain.Category) ([]domain.Product, error) {
	productsURL := fmt.Sprintf("%s/category/%s/products", c.baseURL, url.PathEscape(category.ID))

	body, err := c.fetchJSON(ctx, productsURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products for category %s: %w", category.ID, err)
	}

	products, err := c.parser.ParseProducts(body)
	if err != nil {
		return nil, fmt.Errorf("category %s: %w", category.ID, err)
	}

	log.Debugf("Successfully fetched %d products for %s", len(products), category)
	return products, nil
}

// httpClient returns the resty client bound to the next proxy of the supplier
func (c *zaraClient) httpClient() *resty.Client {
	proxyURL := ""
	if c.proxySupplier != nil {
		proxyURL = c.proxySupplier.Get()
	}

	c.clientsMutex.Lock()
	defer c.clientsMutex.Unlock()

	if client, ok := c.httpClients[proxyURL]; ok {
		return client
	}

	client := resty.New().
		SetTimeout(time.Duration(c.config.Timeout)*time.Second).
		SetHeader("User-Agent", c.config.UserAgent)
	if proxyURL != "" {
		client.SetProxy(proxyURL)
	}

	c.httpClients[proxyURL] = client
	return client
}

// Close releases every cached HTTP client. The client may still be used afterwards,
// new HTTP clients are created on demand.
func (c *zaraClient) Close() error {
	c.clientsMutex.Lock()
	defer c.clientsMutex.Unlock()

	var errs []error
	for proxyURL, client := range c.httpClients {
		if err := client.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close HTTP client for %q: %w", proxyURL, err))
		}
		delete(c.httpClients, proxyURL)
	}
	return errors.Join(errs...)
}

func (c *zaraClient) fetchJSON(ctx context.Context, endpoint string) ([]byte, error) {
	resp, err := c.httpClient().R().
		SetContext(ctx).
		Get(endpoint)

	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("request cancelled: %w", ctx.Err())
		}
		return nil, fmt.Errorf("failed to fetch URL %s: %w", endpoint, err)
	}

	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: %s from %s: %s",
			domain.ErrUnexpectedStatus, resp.Status(), endpoint, summarizeErrorBody(resp.String()))
	}

	return []byte(resp.String()), nil
}
