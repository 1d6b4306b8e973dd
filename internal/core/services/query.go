package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/maarif-labs/maarif/internal/core/domain"
	"github.com/maarif-labs/maarif/internal/core/ports/driven"
	"github.com/maarif-labs/maarif/internal/core/ports/driving"
	"github.com/maarif-labs/maarif/internal/lang"
	"github.com/maarif-labs/maarif/internal/logger"
)

// Ensure QueryService implements the interface.
var _ driving.QueryService = (*QueryService)(nil)

// QueryService runs one user turn through the engine's state machine:
// pre-classification, retrieval, context assembly, generation and the
// post-generation grounding gate. Collaborator failures never surface
// as errors to the caller; they become a Failed response carrying the
// fixed unavailable message.
type QueryService struct {
	index      driven.VectorIndex
	embedder   driven.EmbeddingProvider
	generator  driven.Generator
	classifier driven.ScopeClassifier
	audit      driven.AuditSink

	topK            int
	maxContextChars int
	orgName         string
	assistantName   string
	defaultLanguage domain.Language

	now func() time.Time
}

// QueryOption configures a QueryService.
type QueryOption func(*QueryService)

// WithTopK sets the retrieval depth.
func WithTopK(k int) QueryOption {
	return func(s *QueryService) { s.topK = k }
}

// WithMaxContextChars bounds the assembled generator context.
func WithMaxContextChars(n int) QueryOption {
	return func(s *QueryService) { s.maxContextChars = n }
}

// WithOrganization names the organisation and assistant in prompts.
func WithOrganization(org, assistant string) QueryOption {
	return func(s *QueryService) {
		s.orgName = org
		s.assistantName = assistant
	}
}

// WithDefaultLanguage sets the fallback when detection is inconclusive.
func WithDefaultLanguage(l domain.Language) QueryOption {
	return func(s *QueryService) { s.defaultLanguage = l }
}

// WithQueryAudit attaches an audit sink for query summaries.
func WithQueryAudit(sink driven.AuditSink) QueryOption {
	return func(s *QueryService) { s.audit = sink }
}

// WithQueryClock overrides the time source.
func WithQueryClock(now func() time.Time) QueryOption {
	return func(s *QueryService) { s.now = now }
}

// NewQueryService creates a query service.
func NewQueryService(
	index driven.VectorIndex,
	embedder driven.EmbeddingProvider,
	generator driven.Generator,
	classifier driven.ScopeClassifier,
	opts ...QueryOption,
) *QueryService {
	s := &QueryService{
		index:           index,
		embedder:        embedder,
		generator:       generator,
		classifier:      classifier,
		topK:            5,
		maxContextChars: 2000,
		orgName:         "الهيئة",
		assistantName:   "المُساعِد الرقمي",
		defaultLanguage: domain.LanguageArabic,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Answer runs the query state machine to a terminal state.
func (s *QueryService) Answer(ctx context.Context, req domain.QueryRequest) (*domain.QueryResponse, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrValidation)
	}

	start := s.now()
	language := req.Language
	if !language.IsValid() {
		language = lang.Detect(text, s.defaultLanguage)
	}

	logger.Section("Query")
	logger.Debug("Query: %q (language %s)", text, language)

	resp := s.run(ctx, text, language, req.Requester)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	s.recordQuery(ctx, text, language, resp, s.now().Sub(start))
	return resp, nil
}

// run executes the pipeline and always produces a terminal response.
func (s *QueryService) run(ctx context.Context, text string, language domain.Language, requester domain.Requester) *domain.QueryResponse {
	// Pre-classification: cheap topical gate before any retrieval cost.
	preDecision := s.classifier.ClassifyQuery(text, language)
	if !preDecision.InScope {
		logger.Debug("Rejected pre-generation: %s", preDecision.Reason)
		return rejected(language, domain.OutOfScopeMessage(language), preDecision)
	}

	// Retrieval.
	queryVector, err := s.embedWithRetry(ctx, text, language)
	if err != nil {
		logger.Error("query embedding failed: %v", err)
		return failed(language)
	}

	filter := domain.SearchFilter{
		Departments:       requester.Departments,
		MaxClassification: requester.MaxClassification(),
	}
	result, err := s.searchWithRetry(ctx, queryVector, filter)
	if err != nil {
		logger.Error("retrieval failed: %v", err)
		return failed(language)
	}
	if len(result.Hits) == 0 {
		logger.Debug("No chunks above the similarity floor")
		return rejected(language, domain.EscalationMessage(language),
			domain.ScopeDecision{InScope: false, Reason: domain.ReasonNoSources})
	}

	// Context assembly under the character budget. Only chunks that
	// survive assembly may be cited or used for grounding.
	contextText, surviving := assembleContext(result.Hits, s.maxContextChars)

	// Generation. Never retried, to bound query latency.
	answer, err := s.generator.Generate(ctx, driven.GenerationRequest{
		Instruction: s.instruction(language),
		Context:     contextText,
		Query:       text,
		Language:    language,
	})
	if err != nil {
		logger.Error("generation failed: %v", err)
		return failed(language)
	}
	answer = strings.TrimSpace(answer)

	// Post-generation grounding gate: the fail-closed boundary.
	sourceChunks := make([]domain.Chunk, len(surviving))
	for i, hit := range surviving {
		sourceChunks[i] = hit.Chunk
	}
	postDecision := s.classifier.ClassifyAnswer(answer, language, sourceChunks)
	if !postDecision.InScope {
		logger.Debug("Rejected post-generation: %s", postDecision.Reason)
		return rejected(language, domain.EscalationMessage(language), postDecision)
	}

	return &domain.QueryResponse{
		Answer:     answer,
		Language:   language,
		Sources:    sourceRefs(surviving),
		Confidence: surviving[0].Similarity * 100,
		State:      domain.StateFinalized,
		Scope:      &postDecision,
	}
}

// embedWithRetry embeds the query, retrying once on backend failure.
func (s *QueryService) embedWithRetry(ctx context.Context, text string, language domain.Language) ([]float32, error) {
	vector, err := s.embedder.Embed(ctx, text, language)
	if err == nil || ctx.Err() != nil {
		return vector, err
	}
	logger.Warn("query embedding retry after: %v", err)
	return s.embedder.Embed(ctx, text, language)
}

// searchWithRetry searches the index, retrying once on backend failure.
func (s *QueryService) searchWithRetry(ctx context.Context, vector []float32, filter domain.SearchFilter) (*domain.RetrievalResult, error) {
	result, err := s.index.Search(ctx, vector, s.topK, filter)
	if err == nil || ctx.Err() != nil {
		return result, err
	}
	logger.Warn("retrieval retry after: %v", err)
	return s.index.Search(ctx, vector, s.topK, filter)
}

// assembleContext concatenates hit contents in rank order until the
// rune budget is exhausted. It returns the assembled text and the hits
// that made it in; a hit is either fully included or fully excluded,
// except the first, which is truncated if it alone exceeds the budget.
func assembleContext(hits []domain.RetrievedChunk, budget int) (string, []domain.RetrievedChunk) {
	const separator = "\n\n"

	var b strings.Builder
	var surviving []domain.RetrievedChunk
	used := 0

	for _, hit := range hits {
		content := []rune(hit.Chunk.Content)
		needed := len(content)
		if len(surviving) > 0 {
			needed += len(separator)
		}

		if used+needed > budget {
			if len(surviving) == 0 {
				// The grounding gate checks the answer against the
				// surviving chunks, so the hit must carry exactly the
				// text the generator was given.
				hit.Chunk.Content = string(content[:budget])
				b.WriteString(hit.Chunk.Content)
				surviving = append(surviving, hit)
			}
			break
		}

		if len(surviving) > 0 {
			b.WriteString(separator)
		}
		b.WriteString(hit.Chunk.Content)
		used += needed
		surviving = append(surviving, hit)
	}

	return b.String(), surviving
}

// sourceRefs deduplicates citations per document, keeping rank order
// and each document's best similarity.
func sourceRefs(hits []domain.RetrievedChunk) []domain.SourceRef {
	seen := make(map[string]bool)
	var refs []domain.SourceRef
	for _, hit := range hits {
		if seen[hit.Chunk.DocumentID] {
			continue
		}
		seen[hit.Chunk.DocumentID] = true
		refs = append(refs, domain.SourceRef{
			DocumentID: hit.Chunk.DocumentID,
			Title:      hit.Chunk.Meta.Title,
			Department: hit.Chunk.Meta.Department,
			Similarity: hit.Similarity,
		})
	}
	return refs
}

// instruction builds the system prompt fixing the answer language and
// confining the generator to the provided context.
func (s *QueryService) instruction(language domain.Language) string {
	if language == domain.LanguageArabic {
		return fmt.Sprintf(
			"أنت «%s»، المساعد الرقمي لموظفي «%s». أجب عن سؤال الموظف اعتماداً على السياق المرفق فقط، دون أي معلومات من خارجه. إذا لم تكن الإجابة موجودة في السياق فقل بوضوح إنك لا تملك هذه المعلومة. أجب باللغة العربية وبإيجاز.",
			s.assistantName, s.orgName)
	}
	return fmt.Sprintf(
		"You are %q, the digital assistant for employees of %s. Answer the employee's question using only the provided context, never outside knowledge. If the answer is not in the context, state clearly that you do not have this information. Answer in English, concisely.",
		s.assistantName, s.orgName)
}

func rejected(language domain.Language, message string, decision domain.ScopeDecision) *domain.QueryResponse {
	return &domain.QueryResponse{
		Answer:   message,
		Language: language,
		State:    domain.StateRejected,
		Scope:    &decision,
	}
}

func failed(language domain.Language) *domain.QueryResponse {
	return &domain.QueryResponse{
		Answer:   domain.UnavailableMessage(language),
		Language: language,
		State:    domain.StateFailed,
	}
}

func (s *QueryService) recordQuery(ctx context.Context, text string, language domain.Language, resp *domain.QueryResponse, elapsed time.Duration) {
	if s.audit == nil {
		return
	}
	s.audit.RecordQuery(ctx, domain.QuerySummary{
		Query:      text,
		Language:   language,
		State:      resp.State,
		Sources:    resp.Sources,
		Confidence: resp.Confidence,
		Duration:   elapsed,
		At:         s.now().UTC(),
	})
}
