package search

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"

	"github.com/poiesic/educaia/ai"
	"github.com/poiesic/educaia/core"
	"golang.org/x/sync/errgroup"
)

// DefaultThreshold is the minimum combined score for a semantic answer.
const DefaultThreshold = 0.35

// Scored is the score breakdown of one passage.
type Scored struct {
	Index       int
	Similarity  float64
	Boosted     float64
	KeywordHits int
	Score       float64
}

// Engine answers questions from a corpus. It holds no per-call state and is
// safe for concurrent use.
type Engine struct {
	embedder         ai.Embedder
	logger           *slog.Logger
	threshold        float64
	semanticWeight   float64
	keywordWeight    float64
	maxCombined      int
	minCombined      int
	keywordMinLength int
}

// Option configures an Engine.
type Option func(*Engine) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// WithThreshold sets the score threshold used by Answer.
func WithThreshold(threshold float64) Option {
	return func(e *Engine) error {
		if math.IsNaN(threshold) || math.IsInf(threshold, 0) {
			return fmt.Errorf("%w: threshold must be finite", ErrInvalidOption)
		}
		e.threshold = threshold
		return nil
	}
}

// WithWeights sets the semantic and keyword weights. They are normalized by their sum.
func WithWeights(semantic, keyword float64) Option {
	return func(e *Engine) error {
		sum := semantic + keyword
		if semantic < 0 || keyword < 0 || !(sum > 0) || math.IsInf(sum, 0) {
			return fmt.Errorf("%w: weights must be non-negative with a positive sum", ErrInvalidOption)
		}
		e.semanticWeight = semantic
		e.keywordWeight = keyword
		return nil
	}
}

// WithMaxCombined sets how many top passages are considered for a joined answer.
func WithMaxCombined(n int) Option {
	return func(e *Engine) error {
		if n < 1 {
			return fmt.Errorf("%w: max combined must be positive", ErrInvalidOption)
		}
		e.maxCombined = n
		return nil
	}
}

// WithMinCombined sets how many passages must clear the threshold for a joined answer.
func WithMinCombined(n int) Option {
	return func(e *Engine) error {
		if n < 1 {
			return fmt.Errorf("%w: min combined must be positive", ErrInvalidOption)
		}
		e.minCombined = n
		return nil
	}
}

// WithKeywordMinLength sets the minimum keyword length in runes.
func WithKeywordMinLength(n int) Option {
	return func(e *Engine) error {
		if n < 1 {
			return fmt.Errorf("%w: keyword length must be positive", ErrInvalidOption)
		}
		e.keywordMinLength = n
		return nil
	}
}

// NewEngine creates an engine around embedder.
func NewEngine(embedder ai.Embedder, opts ...Option) (*Engine, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	e := &Engine{
		embedder:         embedder,
		logger:           slog.Default(),
		threshold:        DefaultThreshold,
		semanticWeight:   DefaultSemanticWeight,
		keywordWeight:    DefaultKeywordWeight,
		maxCombined:      3,
		minCombined:      2,
		keywordMinLength: DefaultKeywordMinLength,
	}

	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	if e.minCombined > e.maxCombined {
		return nil, fmt.Errorf("%w: min combined %d exceeds max combined %d", ErrInvalidOption, e.minCombined, e.maxCombined)
	}
	e.logger = e.logger.With("component", "engine")

	return e, nil
}

// Threshold returns the configured threshold.
func (e *Engine) Threshold() float64 {
	return e.threshold
}

// Answer answers question from corpus with the configured threshold.
func (e *Engine) Answer(ctx context.Context, question string, corpus core.Corpus) core.Result {
	return e.AnswerWithMonitor(ctx, question, corpus, e.threshold, nil)
}

// AnswerWithThreshold answers question from corpus with an explicit threshold.
func (e *Engine) AnswerWithThreshold(ctx context.Context, question string, corpus core.Corpus, threshold float64) core.Result {
	return e.AnswerWithMonitor(ctx, question, corpus, threshold, nil)
}

// AnswerWithMonitor answers question from corpus. The monitor receives a
// callback at each stage. It never panics: failures come back as core.Failure.
func (e *Engine) AnswerWithMonitor(ctx context.Context, question string, corpus core.Corpus, threshold float64, monitor Monitor) (result core.Result) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("%w: panic: %v", core.ErrScoring, r)
			e.logger.Error("recovered from panic while answering", "err", err)
			result = core.Failure{Err: err}
			e.notifyFailed(monitor, err)
		}
	}()

	monitor.Start(question)

	query := newQuery(question, e.keywordMinLength)
	monitor.AfterQueryAnalysis(query)

	if corpus.IsEmpty() {
		e.logger.Debug("empty corpus, nothing to answer")
		monitor.NoAnswer()
		return core.NoAnswer{}
	}

	scores, err := e.score(ctx, query, corpus, threshold, monitor)
	if err != nil {
		e.logger.Error("error scoring passages", "question", question, "err", err)
		e.notifyFailed(monitor, err)
		return core.Failure{Err: err}
	}
	monitor.AfterScoring(scores)

	return e.selectAnswer(query, corpus, scores, threshold, monitor)
}

// notifyFailed reports err to monitor. A panic raised by the monitor is logged and dropped.
func (e *Engine) notifyFailed(monitor Monitor, err error) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("monitor panicked while reporting a failure", "panic", r)
		}
	}()
	monitor.Failed(err)
}

// Rank returns the score breakdown of every passage, sorted by score
// descending then index ascending.
func (e *Engine) Rank(ctx context.Context, question string, corpus core.Corpus, threshold float64) (ranked []Scored, err error) {
	defer func() {
		if r := recover(); r != nil {
			ranked = nil
			err = fmt.Errorf("%w: panic: %v", core.ErrScoring, r)
		}
	}()

	if corpus.IsEmpty() {
		return []Scored{}, nil
	}
	scores, err := e.score(ctx, newQuery(question, e.keywordMinLength), corpus, threshold, &noopMonitor{})
	if err != nil {
		return nil, err
	}
	return rankByScore(scores), nil
}

// score embeds question and passages concurrently and builds one Scored per passage.
func (e *Engine) score(ctx context.Context, query Query, corpus core.Corpus, threshold float64, monitor Monitor) ([]Scored, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	questionVector, passageVectors, err := e.embed(ctx, query.Raw, corpus.Texts())
	if err != nil {
		return nil, err
	}
	if len(passageVectors) != corpus.Len() {
		return nil, fmt.Errorf("%w: got %d vectors for %d passages", core.ErrEmbeddingModel, len(passageVectors), corpus.Len())
	}
	monitor.AfterEmbedding(len(questionVector), len(passageVectors))

	scores := make([]Scored, corpus.Len())
	for i, passage := range corpus.Passages() {
		similarity, err := ai.CosineSimilarity(questionVector, passageVectors[i])
		if err != nil {
			return nil, fmt.Errorf("%w: passage %d: %w", core.ErrScoring, i, err)
		}

		boosted := similarity
		if query.GenericBonus > 0 && similarity > threshold {
			boosted += query.GenericBonus
		}

		hits := countHits(query.Keywords, tokenSet(Normalize(passage.Text)))
		score := combineHits(boosted, hits, len(query.Keywords), e.semanticWeight, e.keywordWeight)
		if math.IsNaN(score) {
			return nil, fmt.Errorf("%w: passage %d: score is NaN", core.ErrScoring, i)
		}

		scores[i] = Scored{
			Index:       passage.Index,
			Similarity:  similarity,
			Boosted:     boosted,
			KeywordHits: hits,
			Score:       score,
		}
	}
	return scores, nil
}

// embed runs the question and corpus embedding calls in parallel.
func (e *Engine) embed(ctx context.Context, question string, texts []string) ([]float32, [][]float32, error) {
	var questionVector []float32
	var passageVectors [][]float32

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		defer recoverInto(&err)
		questionVector, err = e.embedder.EmbedText(gctx, question)
		if err != nil {
			return fmt.Errorf("%w: question: %w", core.ErrEmbeddingModel, err)
		}
		return nil
	})
	g.Go(func() (err error) {
		defer recoverInto(&err)
		passageVectors, err = e.embedder.EmbedTexts(gctx, texts)
		if err != nil {
			return fmt.Errorf("%w: passages: %w", core.ErrEmbeddingModel, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return questionVector, passageVectors, nil
}

// recoverInto turns a panic in a worker goroutine into an error.
func recoverInto(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%w: panic: %v", core.ErrScoring, r)
	}
}

func (e *Engine) selectAnswer(query Query, corpus core.Corpus, scores []Scored, threshold float64, monitor Monitor) core.Result {
	best := scores[0]
	for _, s := range scores[1:] {
		if s.Score > best.Score {
			best = s
		}
	}

	if best.Score >= threshold {
		if query.IsGeneric() {
			if answer, ok := e.combineTop(corpus, scores, threshold); ok {
				e.logger.Debug("joined passages", "indices", answer.Indices)
				monitor.MultiPassageSelected(answer.Indices)
				return answer
			}
		}
		e.logger.Debug("single passage selected", "index", best.Index, "score", best.Score)
		monitor.SinglePassageSelected(best)
		return single(corpus, best.Index)
	}

	bestIndex, bestHits := -1, 0
	for _, s := range scores {
		if s.KeywordHits > bestHits {
			bestIndex, bestHits = s.Index, s.KeywordHits
		}
	}
	if bestHits > 0 {
		e.logger.Debug("lexical fallback", "index", bestIndex, "hits", bestHits)
		monitor.LexicalFallback(bestIndex, bestHits)
		return single(corpus, bestIndex)
	}

	e.logger.Debug("no passage matched", "best_score", best.Score, "threshold", threshold)
	monitor.NoAnswer()
	return core.NoAnswer{}
}

// combineTop joins the top passages that clear threshold, in corpus order.
func (e *Engine) combineTop(corpus core.Corpus, scores []Scored, threshold float64) (core.Answer, bool) {
	ranked := rankByScore(scores)
	top := ranked[:min(e.maxCombined, len(ranked))]

	indices := make([]int, 0, len(top))
	for _, s := range top {
		if s.Score >= threshold {
			indices = append(indices, s.Index)
		}
	}
	if len(indices) < e.minCombined {
		return core.Answer{}, false
	}
	slices.Sort(indices)

	texts := make([]string, len(indices))
	for i, idx := range indices {
		texts[i] = corpus.Passage(idx).Text
	}
	return core.Answer{Text: strings.Join(texts, " "), Indices: indices}, true
}

func single(corpus core.Corpus, index int) core.Answer {
	return core.Answer{Text: corpus.Passage(index).Text, Indices: []int{index}}
}

// rankByScore returns a copy sorted by score descending, index ascending.
func rankByScore(scores []Scored) []Scored {
	ranked := slices.Clone(scores)
	slices.SortFunc(ranked, func(a, b Scored) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Index, b.Index)
	})
	return ranked
}
