// Package metadata uploads token images and metadata JSON to the letsbonk IPFS gateway.
package metadata

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"strings"

	"github.com/itchyny/gojq"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/bonk-launcher/internal/metrics"
)

const (
	DefaultImageEndpoint = "https://gated.chat/upload/img"
	DefaultMetaEndpoint  = "https://gated.chat/upload/meta"

	// PinnedGatewayPrefix marks image URLs that are already pinned and are reused as is.
	PinnedGatewayPrefix = "https://sapphire-working-koi-276.mypinata.cloud/ipfs/"
	DefaultImageURI     = PinnedGatewayPrefix + "bafybeihpy352xnqgn74nrjj6bgxndrss5nbqix4kfhwfanoyo766tgwzz4"

	CreatedOn = "https://bonk.fun"

	formBoundary = "----WebKitFormBoundarymkE1BAuPXiGrhrdB"
	referrer     = "https://letsbonk.fun/"
	origin       = "https://letsbonk.fun"

	// maxResponseBody caps how much of an upload response is read.
	maxResponseBody = 1 << 20
)

var (
	ErrUploadRejected = errors.New("upload rejected")
	ErrEmptyURI       = errors.New("upload returned empty uri")
)

// Request describes the token metadata. Image sources are tried in order:
// pinned ImageURL, ImageData, ImageFile, downloadable ImageURL, default image.
type Request struct {
	Name        string
	Symbol      string
	Description string
	Twitter     string
	Telegram    string
	Website     string

	ImageURL  string
	ImageData []byte
	ImageFile string
}

// document is the JSON stored on IPFS.
type document struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Description string `json:"description"`
	CreatedOn   string `json:"createdOn"`
	Image       string `json:"image"`
	Twitter     string `json:"twitter,omitempty"`
	Telegram    string `json:"telegram,omitempty"`
	Website     string `json:"website,omitempty"`
}

// Config holds the upload endpoints.
type Config struct {
	ImageEndpoint string
	MetaEndpoint  string
}

// DefaultConfig returns the production endpoints.
func DefaultConfig() Config {
	return Config{
		ImageEndpoint: DefaultImageEndpoint,
		MetaEndpoint:  DefaultMetaEndpoint,
	}
}

// Uploader talks to the upload service over the shared HTTP client.
type Uploader struct {
	cfg     Config
	client  *http.Client
	urlCode *gojq.Code
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewUploader creates an Uploader. Empty endpoints fall back to DefaultConfig.
func NewUploader(cfg Config, client *http.Client, m *metrics.Metrics, logger *zap.Logger) (*Uploader, error) {
	def := DefaultConfig()
	if cfg.ImageEndpoint == "" {
		cfg.ImageEndpoint = def.ImageEndpoint
	}
	if cfg.MetaEndpoint == "" {
		cfg.MetaEndpoint = def.MetaEndpoint
	}
	if client == nil {
		client = http.DefaultClient
	}

	query, err := gojq.Parse(`.url | select(type == "string" and length > 0)`)
	if err != nil {
		return nil, fmt.Errorf("failed to parse url query: %w", err)
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("failed to compile url query: %w", err)
	}

	return &Uploader{
		cfg:     cfg,
		client:  client,
		urlCode: code,
		metrics: m,
		logger:  logger.Named("metadata"),
	}, nil
}

// Upload resolves the image, uploads it when needed and then publishes the
// metadata document. It returns the metadata URI.
func (u *Uploader) Upload(ctx context.Context, req Request) (string, error) {
	image, err := u.resolveImage(ctx, req)
	if err != nil {
		return "", err
	}

	doc := document{
		Name:        req.Name,
		Symbol:      req.Symbol,
		Description: req.Description,
		CreatedOn:   CreatedOn,
		Image:       image,
		Twitter:     req.Twitter,
		Telegram:    req.Telegram,
		Website:     req.Website,
	}

	u.logger.Info("Uploading metadata",
		zap.String("name", req.Name),
		zap.String("symbol", req.Symbol))

	uri, err := u.uploadMetadata(ctx, doc)
	u.metrics.RecordUpload("metadata", err)
	if err != nil {
		return "", err
	}

	u.logger.Info("Metadata uploaded", zap.String("uri", uri))
	return uri, nil
}

func (u *Uploader) resolveImage(ctx context.Context, req Request) (string, error) {
	if strings.HasPrefix(req.ImageURL, PinnedGatewayPrefix) {
		u.logger.Debug("Using pinned image URL", zap.String("url", req.ImageURL))
		return req.ImageURL, nil
	}

	data := u.imageBytes(ctx, req)
	if len(data) == 0 {
		u.logger.Info("No image provided, using default", zap.String("url", DefaultImageURI))
		return DefaultImageURI, nil
	}

	uri, err := u.uploadImage(ctx, data)
	u.metrics.RecordUpload("image", err)
	if err != nil {
		return "", err
	}
	u.logger.Info("Image uploaded", zap.String("url", uri))
	return uri, nil
}

// imageBytes returns the first available image source. Read and download
// failures are logged and fall through to the default image.
func (u *Uploader) imageBytes(ctx context.Context, req Request) []byte {
	switch {
	case len(req.ImageData) > 0:
		return req.ImageData
	case req.ImageFile != "":
		data, err := os.ReadFile(req.ImageFile)
		if err != nil {
			u.logger.Warn("Failed to read image file", zap.String("file", req.ImageFile), zap.Error(err))
			return nil
		}
		return data
	case req.ImageURL != "":
		data, err := u.download(ctx, req.ImageURL)
		if err != nil {
			u.logger.Warn("Failed to download image", zap.String("url", req.ImageURL), zap.Error(err))
			return nil
		}
		return data
	}
	return nil
}

func (u *Uploader) download(ctx context.Context, url string) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := u.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (u *Uploader) uploadImage(ctx context.Context, data []byte) (string, error) {
	body, contentType, err := encodeImageForm(data)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u.cfg.ImageEndpoint, body)
	if err != nil {
		return "", fmt.Errorf("image upload request: %w", err)
	}
	setBrowserHeaders(httpReq.Header)
	httpReq.Header.Set("Content-Type", contentType)

	return u.do(httpReq, "image")
}

func (u *Uploader) uploadMetadata(ctx context.Context, doc document) (string, error) {
	payload, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode metadata: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u.cfg.MetaEndpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("metadata upload request: %w", err)
	}
	setBrowserHeaders(httpReq.Header)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Origin", origin)

	return u.do(httpReq, "metadata")
}

// do sends the request and extracts the resulting URI from the response.
func (u *Uploader) do(req *http.Request, kind string) (string, error) {
	resp, err := u.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s upload: %w", kind, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return "", fmt.Errorf("%s upload: read response: %w", kind, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %s upload status %d: %s", ErrUploadRejected, kind, resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return u.parseURI(raw)
}

// parseURI accepts either a bare https URL body or JSON with a non-empty "url".
func (u *Uploader) parseURI(raw []byte) (string, error) {
	text := strings.TrimSpace(string(raw))
	if strings.HasPrefix(text, "https://") {
		return text, nil
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", fmt.Errorf("%w: unrecognised response: %s", ErrUploadRejected, text)
	}

	iter := u.urlCode.Run(v)
	for {
		out, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := out.(error); isErr {
			return "", fmt.Errorf("%w: %v", ErrUploadRejected, err)
		}
		if s, ok := out.(string); ok && s != "" {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrEmptyURI, text)
}

// encodeImageForm builds the single-part form the upload service expects.
func encodeImageForm(data []byte) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.SetBoundary(formBoundary); err != nil {
		return nil, "", err
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="image"; filename="image.jpg"`)
	h.Set("Content-Type", "image/jpeg")
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func setBrowserHeaders(h http.Header) {
	h.Set("Accept", "application/json, text/plain, */*")
	h.Set("Accept-Language", "en-US,en;q=0.9")
	h.Set("Sec-Fetch-Dest", "empty")
	h.Set("Sec-Fetch-Mode", "cors")
	h.Set("Sec-Fetch-Site", "cross-site")
	h.Set("Referer", referrer)
}
