package googlenl

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2/google"
	language "google.golang.org/api/language/v1"
	"google.golang.org/api/option"

	"github.com/custodia-labs/gapscope/internal/core/domain"
	"github.com/custodia-labs/gapscope/internal/core/ports/driven"
	"github.com/custodia-labs/gapscope/internal/logger"
	"github.com/custodia-labs/gapscope/internal/ratelimit"
)

// Ensure Annotator implements the interface.
var _ driven.Annotator = (*Annotator)(nil)

// DefaultTimeout bounds a single annotateText call.
const DefaultTimeout = 60 * time.Second

// Config holds configuration for the annotator.
type Config struct {
	// CredentialsFile is a service account JSON key.
	CredentialsFile string

	// APIKey is used when no credentials file is set.
	APIKey string

	// Endpoint overrides the API base URL. Must end with a slash.
	Endpoint string

	// RequestsPerMinute bounds annotateText calls. Zero disables limiting.
	RequestsPerMinute int

	// Timeout bounds each call (default: 60s).
	Timeout time.Duration

	// HTTPClient replaces credential resolution entirely. Mainly for tests.
	HTTPClient *http.Client
}

// Annotator calls the Natural Language API.
type Annotator struct {
	service *language.Service
	limiter *ratelimit.Limiter
	timeout time.Duration
}

// New creates an annotator. It fails with domain.ErrAnnotatorNotConfigured
// when no credentials can be found.
func New(ctx context.Context, cfg Config) (*Annotator, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	opts, err := clientOptions(ctx, cfg)
	if err != nil {
		return nil, err
	}

	svc, err := language.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create language service: %w", err)
	}

	return &Annotator{
		service: svc,
		limiter: ratelimit.New("natural-language", ratelimit.PerMinute(cfg.RequestsPerMinute)),
		timeout: cfg.Timeout,
	}, nil
}

// CheckCredentials resolves credentials the same way New does, without
// creating a client or calling the API.
func CheckCredentials(ctx context.Context, cfg Config) error {
	_, err := clientOptions(ctx, cfg)
	return err
}

func clientOptions(ctx context.Context, cfg Config) ([]option.ClientOption, error) {
	var opts []option.ClientOption
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	switch {
	case cfg.HTTPClient != nil:
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	case cfg.CredentialsFile != "":
		data, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("%w: read credentials: %w", domain.ErrAnnotatorNotConfigured, err)
		}
		//nolint:staticcheck // SA1019: service account keys are the documented input here.
		creds, err := google.CredentialsFromJSON(ctx, data, language.CloudLanguageScope)
		if err != nil {
			return nil, fmt.Errorf("%w: parse credentials: %w", domain.ErrAnnotatorNotConfigured, err)
		}
		opts = append(opts, option.WithTokenSource(creds.TokenSource))
	case cfg.APIKey != "":
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	default:
		creds, err := google.FindDefaultCredentials(ctx, language.CloudLanguageScope)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrAnnotatorNotConfigured, err)
		}
		opts = append(opts, option.WithTokenSource(creds.TokenSource))
	}
	return opts, nil
}

// Annotate extracts entities and sentiment from text in a single call.
func (a *Annotator) Annotate(ctx context.Context, text string) (*domain.Annotation, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrAnnotationFailed, err)
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	req := &language.AnnotateTextRequest{
		Document: &language.Document{
			Content: text,
			Type:    "PLAIN_TEXT",
		},
		EncodingType: "UTF8",
		Features: &language.AnnotateTextRequestFeatures{
			ExtractEntities:          true,
			ExtractEntitySentiment:   true,
			ExtractDocumentSentiment: true,
		},
	}

	resp, err := a.service.Documents.AnnotateText(req).Context(ctx).Do()
	if err != nil {
		if IsRateLimited(err) {
			a.limiter.RecordRateLimitError(retryAfter(err))
		}
		return nil, WrapError(err)
	}

	return convert(resp), nil
}

// convert maps the API response onto domain types. Missing sentiment becomes
// zero and mentions without a text span are skipped.
func convert(resp *language.AnnotateTextResponse) *domain.Annotation {
	out := &domain.Annotation{
		Entities:          make([]domain.AnnotatedEntity, 0, len(resp.Entities)),
		DocumentSentiment: sentiment(resp.DocumentSentiment),
	}

	for _, e := range resp.Entities {
		if e == nil || e.Name == "" {
			logger.Warn("annotation: skipping entity without a name")
			continue
		}

		entityType := domain.EntityType(e.Type)
		if !entityType.IsKnown() {
			logger.Warn("annotation: entity %q has unrecognised type %q", e.Name, e.Type)
		}

		mentions := make([]domain.Mention, 0, len(e.Mentions))
		for _, m := range e.Mentions {
			if m == nil || m.Text == nil {
				logger.Debug("annotation: entity %q has a mention without text", e.Name)
				continue
			}
			mentions = append(mentions, domain.Mention{
				Text:        m.Text.Content,
				Type:        m.Type,
				BeginOffset: m.Text.BeginOffset,
			})
		}

		out.Entities = append(out.Entities, domain.AnnotatedEntity{
			Name: e.Name,
			EntityRecord: domain.EntityRecord{
				Type:      entityType,
				Salience:  e.Salience,
				Mentions:  mentions,
				Sentiment: sentiment(e.Sentiment),
			},
		})
	}
	return out
}

func sentiment(s *language.Sentiment) domain.Sentiment {
	if s == nil {
		return domain.Sentiment{}
	}
	return domain.Sentiment{Score: s.Score, Magnitude: s.Magnitude}
}

// Close releases resources.
func (a *Annotator) Close() error {
	// The generated client holds no resources beyond its HTTP client.
	return nil
}
