package gitlab

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/thoas/go-funk"
	"go.uber.org/zap"
)

const (
	apiPathSuffixConstant        = "/api/v4"
	groupsResourceConstant       = "groups"
	projectsResourceConstant     = "projects"
	privateTokenHeaderConstant   = "PRIVATE-TOKEN"
	acceptHeaderConstant         = "Accept"
	acceptJSONValueConstant      = "application/json"
	urlPathSeparatorConstant     = "/"
	urlSchemeSeparatorConstant   = "://"
	schemeMissingMessageConstant = "missing scheme or host"

	// DefaultPageSize is the number of records requested per listing page.
	DefaultPageSize = 100
	// DefaultRetryMax bounds the retries performed for a single request.
	DefaultRetryMax = 3
	// DefaultTimeout bounds a single HTTP exchange.
	DefaultTimeout = 30 * time.Second
)

var retryableStatusCodes = []int{
	http.StatusRequestTimeout,
	http.StatusTooManyRequests,
	http.StatusTooEarly,
	http.StatusInternalServerError,
	http.StatusBadGateway,
	http.StatusServiceUnavailable,
	http.StatusGatewayTimeout,
}

// Instance identifies a GitLab server and the identity used against it.
type Instance struct {
	BaseURL     string
	Username    string
	AccessToken string
}

// ClientOptions tunes HTTP behavior.
type ClientOptions struct {
	PageSize  int
	RetryMax  int
	Timeout   time.Duration
	Transport http.RoundTripper
}

// Client issues GitLab API requests for a single instance.
type Client struct {
	instance   Instance
	apiURL     string
	pageSize   int
	httpClient *retryablehttp.Client
	logger     *zap.Logger
}

// NewClient validates the instance address and constructs a retrying client.
func NewClient(instance Instance, options ClientOptions, logger *zap.Logger) (*Client, error) {
	normalizedBaseURL := NormalizeBaseURL(instance.BaseURL)
	if len(normalizedBaseURL) == 0 {
		return nil, ErrBaseURLNotConfigured
	}

	parsedBaseURL, parseError := url.Parse(normalizedBaseURL)
	if parseError != nil {
		return nil, fmt.Errorf(invalidBaseURLErrorTemplateConstant, instance.BaseURL, parseError)
	}
	if len(parsedBaseURL.Scheme) == 0 || len(parsedBaseURL.Host) == 0 {
		return nil, fmt.Errorf(invalidBaseURLErrorTemplateConstant, instance.BaseURL, errors.New(schemeMissingMessageConstant))
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	pageSize := options.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	retryMax := options.RetryMax
	if retryMax < 0 {
		retryMax = DefaultRetryMax
	}

	timeout := options.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	transport := options.Transport
	if transport == nil {
		transport = cleanhttp.DefaultPooledTransport()
	}

	retryClient := retryablehttp.NewClient()
	retryClient.Logger = nil
	retryClient.HTTPClient = &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
	retryClient.RetryMax = retryMax
	retryClient.CheckRetry = retryPolicy
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	instance.BaseURL = normalizedBaseURL

	return &Client{
		instance:   instance,
		apiURL:     normalizedBaseURL + apiPathSuffixConstant,
		pageSize:   pageSize,
		httpClient: retryClient,
		logger:     logger,
	}, nil
}

// Instance reports the instance this client talks to.
func (client *Client) Instance() Instance {
	return client.instance
}

// NormalizeBaseURL trims whitespace and trailing separators from an instance address.
func NormalizeBaseURL(baseURL string) string {
	return strings.TrimRight(strings.TrimSpace(baseURL), urlPathSeparatorConstant)
}

// StripScheme returns the address without its scheme prefix.
func StripScheme(address string) (string, bool) {
	schemeIndex := strings.Index(address, urlSchemeSeparatorConstant)
	if schemeIndex < 0 {
		return "", false
	}
	return address[schemeIndex+len(urlSchemeSeparatorConstant):], true
}

func (client *Client) newRequest(executionContext context.Context, method string, resource string, query url.Values, body io.Reader) (*retryablehttp.Request, error) {
	endpoint := client.apiURL + urlPathSeparatorConstant + resource
	if len(query) > 0 {
		endpoint = endpoint + "?" + query.Encode()
	}

	request, requestError := retryablehttp.NewRequestWithContext(executionContext, method, endpoint, body)
	if requestError != nil {
		return nil, fmt.Errorf(requestConstructionErrorTemplateConstant, resource, requestError)
	}

	request.Header.Set(acceptHeaderConstant, acceptJSONValueConstant)
	if len(client.instance.AccessToken) > 0 {
		request.Header.Set(privateTokenHeaderConstant, client.instance.AccessToken)
	}

	return request, nil
}

func retryPolicy(executionContext context.Context, response *http.Response, requestError error) (bool, error) {
	if executionContext.Err() != nil {
		return false, executionContext.Err()
	}

	if requestError != nil {
		return retryablehttp.DefaultRetryPolicy(executionContext, response, requestError)
	}

	if response != nil && funk.ContainsInt(retryableStatusCodes, response.StatusCode) {
		return true, nil
	}

	return false, nil
}

func readBody(response *http.Response) string {
	if response == nil || response.Body == nil {
		return ""
	}
	content, _ := io.ReadAll(response.Body)
	return strings.TrimSpace(string(content))
}
