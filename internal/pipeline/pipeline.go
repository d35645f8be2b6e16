// Package pipeline implements the request orchestrator: the sequence of
// fingerprinting, exact lookup, embedding, vector search, upstream call,
// and dual writeback that answers a single chat-completion request.
package pipeline

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/quillcache/llmproxy/api"
	"github.com/quillcache/llmproxy/internal/cache"
	"github.com/quillcache/llmproxy/internal/embedding"
	"github.com/quillcache/llmproxy/internal/fingerprint"
	"github.com/quillcache/llmproxy/internal/metrics"
	"github.com/quillcache/llmproxy/internal/pricing"
	"github.com/quillcache/llmproxy/internal/requestlog"
	"github.com/quillcache/llmproxy/internal/upstream"
	"github.com/quillcache/llmproxy/internal/vectorcache"
)

const (
	ttlHighTemperature = 1 * time.Hour
	ttlDefault         = 24 * time.Hour
	highTempThreshold  = 0.7
)

// Outcome is one of the three terminal pipeline outcomes, reused from
// requestlog so callers have a single type to branch on.
type Outcome = requestlog.Outcome

// Pipeline wires the exact cache, vector cache, embedding client, and
// upstream client into the ten-step request flow.
type Pipeline struct {
	exact     *cache.Manager
	vector    *vectorcache.Client
	embedder  *embedding.Client
	upstream  *upstream.Client
	registry  *metrics.Registry
	collector *metrics.Collector
	log       *requestlog.Writer
	logger    *zap.Logger
}

// New builds a Pipeline from its already-constructed dependencies.
func New(
	exact *cache.Manager,
	vector *vectorcache.Client,
	embedder *embedding.Client,
	upstreamClient *upstream.Client,
	registry *metrics.Registry,
	collector *metrics.Collector,
	log *requestlog.Writer,
	logger *zap.Logger,
) *Pipeline {
	return &Pipeline{
		exact:     exact,
		vector:    vector,
		embedder:  embedder,
		upstream:  upstreamClient,
		registry:  registry,
		collector: collector,
		log:       log,
		logger:    logger.With(zap.String("component", "pipeline")),
	}
}

// Result is the outcome of a completed request, used by the chat handler
// for the response body and its log line.
type Result struct {
	Response *api.ChatResponse
	Outcome  Outcome
}

// Options carries the per-request header overrides.
type Options struct {
	Bypass bool
	TTL    time.Duration // zero means "resolve from temperature"
}

// OptionsFromHeaders parses x-bypass-cache and x-cache-ttl.
func OptionsFromHeaders(bypassHeader, ttlHeader string) Options {
	var opts Options
	if strings.EqualFold(strings.TrimSpace(bypassHeader), "true") {
		opts.Bypass = true
	}
	if ttlHeader != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(ttlHeader)); err == nil && n > 0 {
			opts.TTL = time.Duration(n) * time.Second
		}
	}
	return opts
}

// Execute drives the ten-step contract for one request.
func (p *Pipeline) Execute(ctx context.Context, req *api.ChatRequest, opts Options) (*Result, error) {
	_, exactKey := fingerprint.ExactKey(req)

	ttl := p.resolveTTL(req, opts)

	if opts.Bypass {
		return p.callUpstreamBypassed(ctx, req)
	}

	if cached, ok := p.tryExactGet(ctx, exactKey); ok {
		p.recordExactHit(req.Model)
		return &Result{Response: cached, Outcome: requestlog.ExactHit}, nil
	}

	embeddingVec, embedErr := p.embedder.Embed(ctx, embedding.PromptText(req.Messages))
	if embedErr != nil {
		p.logger.Warn("embedding error, skipping semantic cache", zap.Error(embedErr))
		return p.callUpstreamAndRecord(ctx, req, exactKey, ttl, nil)
	}

	if match, ok := p.trySemanticSearch(ctx, embeddingVec); ok {
		var cached api.ChatResponse
		if err := json.Unmarshal([]byte(match.Payload.Response), &cached); err != nil {
			p.logger.Warn("semantic hit payload decode failed, treating as miss", zap.Error(err))
		} else {
			if err := p.exact.Set(ctx, exactKey, match.Payload.Response, ttl); err != nil {
				p.logger.Warn("exact promotion after semantic hit failed", zap.Error(err))
			}
			p.recordSemanticHit(req.Model, cached.Usage)
			return &Result{Response: &cached, Outcome: requestlog.SemanticHit}, nil
		}
	}

	return p.callUpstreamAndRecord(ctx, req, exactKey, ttl, embeddingVec)
}

func (p *Pipeline) resolveTTL(req *api.ChatRequest, opts Options) time.Duration {
	if opts.TTL > 0 {
		return opts.TTL
	}
	if req.Temperature != nil && *req.Temperature > highTempThreshold {
		return ttlHighTemperature
	}
	return ttlDefault
}

// tryExactGet performs step 5. The second return value is false both for
// a genuine miss and for a transport error — both continue as a miss per
// the graceful-degradation contract.
func (p *Pipeline) tryExactGet(ctx context.Context, exactKey string) (*api.ChatResponse, bool) {
	raw, err := p.exact.Get(ctx, exactKey)
	if err != nil {
		if !cache.IsCacheMiss(err) {
			p.logger.Warn("exact cache get failed, continuing as miss", zap.Error(err))
		}
		return nil, false
	}

	var resp api.ChatResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		p.logger.Warn("exact cache value decode failed, continuing as miss", zap.Error(err))
		return nil, false
	}
	return &resp, true
}

func (p *Pipeline) trySemanticSearch(ctx context.Context, vector []float32) (*vectorcache.Match, bool) {
	match, err := p.vector.Search(ctx, vector)
	if err != nil {
		p.logger.Warn("vector cache search failed, continuing as miss", zap.Error(err))
		return nil, false
	}
	if match == nil {
		return nil, false
	}
	return match, true
}

// callUpstreamBypassed performs a pure passthrough: no exact-tier read,
// no exact or vector writeback, accounted as a MISS.
func (p *Pipeline) callUpstreamBypassed(ctx context.Context, req *api.ChatRequest) (*Result, error) {
	resp, err := p.upstream.Complete(ctx, req)
	if err != nil {
		return nil, err
	}
	p.recordMiss(resp.Model, resp.Usage.TotalTokens, resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	return &Result{Response: resp, Outcome: requestlog.Miss}, nil
}

// callUpstreamAndRecord performs steps 8–10. embeddingVec is nil when the
// embedding call failed; the vector upsert is skipped in that case.
// Bypassed requests go through callUpstreamBypassed instead.
func (p *Pipeline) callUpstreamAndRecord(ctx context.Context, req *api.ChatRequest, exactKey string, ttl time.Duration, embeddingVec []float32) (*Result, error) {
	resp, err := p.upstream.Complete(ctx, req)
	if err != nil {
		return nil, err
	}

	raw, marshalErr := json.Marshal(resp)
	if marshalErr != nil {
		p.logger.Warn("response marshal failed, skipping writeback", zap.Error(marshalErr))
	} else {
		if err := p.exact.Set(ctx, exactKey, string(raw), ttl); err != nil {
			p.logger.Warn("exact writeback failed", zap.Error(err))
		}
		if embeddingVec != nil {
			if err := p.vector.Upsert(ctx, embeddingVec, vectorcache.Payload{
				CacheKey: exactKey,
				Response: string(raw),
			}); err != nil {
				p.logger.Warn("vector writeback failed", zap.Error(err))
			}
		}
	}

	p.recordMiss(resp.Model, resp.Usage.TotalTokens, resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	return &Result{Response: resp, Outcome: requestlog.Miss}, nil
}

func (p *Pipeline) recordExactHit(model string) {
	p.registry.RecordExactHit()
	p.collector.RecordOutcome("exact_hit")
	if err := p.log.Append(requestlog.ExactHit, model, 0, 0); err != nil {
		p.logger.Warn("request log append failed", zap.Error(err))
	}
}

func (p *Pipeline) recordSemanticHit(model string, usage api.ChatUsage) {
	rate, fellBack := pricing.RateFor(model)
	cost := pricing.Calculate(rate, usage.PromptTokens, usage.CompletionTokens)
	if fellBack {
		p.registry.RecordFallbackPricing()
	}
	p.registry.RecordSemanticHit(usage.TotalTokens, cost)
	p.collector.RecordOutcome("semantic_hit")
	p.collector.RecordTokensSaved(model, usage.TotalTokens, cost)
	if err := p.log.Append(requestlog.SemanticHit, model, usage.TotalTokens, cost); err != nil {
		p.logger.Warn("request log append failed", zap.Error(err))
	}
}

func (p *Pipeline) recordMiss(model string, totalTokens, promptTokens, completionTokens int) {
	rate, fellBack := pricing.RateFor(model)
	cost := pricing.Calculate(rate, promptTokens, completionTokens)
	if fellBack {
		p.registry.RecordFallbackPricing()
	}
	p.registry.RecordMiss(totalTokens, cost)
	p.collector.RecordOutcome("miss")
	p.collector.RecordTokensUsed(model, totalTokens, cost)
	if err := p.log.Append(requestlog.Miss, model, totalTokens, cost); err != nil {
		p.logger.Warn("request log append failed", zap.Error(err))
	}
}
