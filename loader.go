package imagepipe

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gogpu/imagepipe/internal/cache"
)

// Loader resolves a URL into a decoded image. It is the external fetch and
// decode collaborator behind URL sources and image sinks.
//
// Implementations should honor ctx cancellation where the transport allows.
type Loader interface {
	Load(ctx context.Context, rawURL string) (image.Image, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, rawURL string) (image.Image, error)

// Load calls f(ctx, rawURL).
func (f LoaderFunc) Load(ctx context.Context, rawURL string) (image.Image, error) {
	return f(ctx, rawURL)
}

// Loader errors.
var (
	// ErrUnsupportedScheme is returned for URL schemes URLLoader cannot fetch.
	ErrUnsupportedScheme = errors.New("imagepipe: unsupported URL scheme")

	// ErrMalformedDataURL is returned for data URLs without a payload separator.
	ErrMalformedDataURL = errors.New("imagepipe: malformed data URL")
)

// HTTPStatusError reports a non-2xx HTTP response.
type HTTPStatusError struct {
	StatusCode int
	Status     string
}

func (e *HTTPStatusError) Error() string {
	return "imagepipe: http status " + e.Status
}

// URLLoader loads images from http(s), file and data URLs, and from bare
// filesystem paths.
type URLLoader struct {
	// Client performs HTTP requests. Nil means http.DefaultClient.
	Client *http.Client

	// MaxBytes limits how much of an HTTP response body is read.
	// Zero means no limit.
	MaxBytes int64
}

// DefaultLoader is the loader used when no Loader option is given.
var DefaultLoader Loader = &URLLoader{}

// Load fetches and decodes rawURL.
func (l *URLLoader) Load(ctx context.Context, rawURL string) (image.Image, error) {
	if strings.HasPrefix(rawURL, "data:") {
		return loadDataURL(rawURL)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("imagepipe: parse URL: %w", err)
	}

	switch u.Scheme {
	case "http", "https":
		return l.loadHTTP(ctx, u.String())
	case "file":
		return DecodeFile(u.Path)
	case "":
		return DecodeFile(rawURL)
	default:
		// Windows drive letters parse as single-letter schemes.
		if len(u.Scheme) == 1 {
			return DecodeFile(rawURL)
		}
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
}

func (l *URLLoader) loadHTTP(ctx context.Context, rawURL string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("imagepipe: build request: %w", err)
	}

	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPStatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	var body io.Reader = resp.Body
	if l.MaxBytes > 0 {
		body = io.LimitReader(resp.Body, l.MaxBytes)
	}
	return Decode(body)
}

// loadDataURL decodes "data:[<mediatype>][;base64],<data>".
func loadDataURL(rawURL string) (image.Image, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(rawURL, "data:"), ",")
	if !ok {
		return nil, ErrMalformedDataURL
	}

	var data []byte
	if strings.HasSuffix(meta, ";base64") {
		decoded, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("imagepipe: data URL: %w", err)
		}
		data = decoded
	} else {
		unescaped, err := url.PathUnescape(payload)
		if err != nil {
			return nil, fmt.Errorf("imagepipe: data URL: %w", err)
		}
		data = []byte(unescaped)
	}

	return DecodeBytes(data)
}

// CacheStats reports CachingLoader usage.
type CacheStats = cache.Stats

// CachingLoader keeps recently decoded images keyed by URL in front of
// another Loader. Failed loads and data URLs are not cached.
//
// Cached images are shared between callers and must not be modified.
type CachingLoader struct {
	next   Loader
	images *cache.LRU[string, image.Image]
}

// NewCachingLoader wraps next with a cache of up to capacity decoded images.
// A nil next means DefaultLoader; capacity <= 0 selects a default size.
func NewCachingLoader(next Loader, capacity int) *CachingLoader {
	if next == nil {
		next = DefaultLoader
	}
	return &CachingLoader{
		next:   next,
		images: cache.New[string, image.Image](capacity),
	}
}

// Load returns the cached image for rawURL or loads it through the wrapped
// loader.
func (l *CachingLoader) Load(ctx context.Context, rawURL string) (image.Image, error) {
	if strings.HasPrefix(rawURL, "data:") {
		return l.next.Load(ctx, rawURL)
	}
	if img, ok := l.images.Get(rawURL); ok {
		Logger().Debug("imagepipe: loader cache hit", "url", rawURL)
		return img, nil
	}

	img, err := l.next.Load(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	if img != nil {
		l.images.Set(rawURL, img)
	}
	return img, nil
}

// Forget drops rawURL from the cache.
func (l *CachingLoader) Forget(rawURL string) {
	l.images.Delete(rawURL)
}

// Len returns the number of cached images.
func (l *CachingLoader) Len() int {
	return l.images.Len()
}

// Capacity returns the maximum number of cached images.
func (l *CachingLoader) Capacity() int {
	return l.images.Capacity()
}

// Purge drops every cached image. Hit and miss counters are kept.
func (l *CachingLoader) Purge() {
	l.images.Clear()
}

// Stats returns the cache counters.
func (l *CachingLoader) Stats() CacheStats {
	return l.images.Stats()
}
