// Package answer orchestrates the retrieval-then-prompt-assembly pipeline.
package answer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ecoquerai/quer/internal/domain"
)

// Request is one incoming question. Audio (raw PCM16LE 16 kHz mono), when
// present, is transcribed and replaces Question. An empty SessionID selects
// the shared default session.
type Request struct {
	SessionID string
	Question  string
	Audio     []byte
}

// Answer is the orchestrator output: the labeled answer text and the matched
// park payloads for the echo variant.
type Answer struct {
	Text  string
	Parks []domain.Park
}

// Service sequences preprocessing, retrieval, ranking, conversation budget
// enforcement, and the chat completion call. Failures propagate unchanged; the
// transport layer decides what the caller sees.
type Service struct {
	pre        Preprocessor
	catalog    CatalogFetcher
	embed      domain.Embedder
	ranker     Ranker
	convs      Conversations
	chat       domain.Chatter
	transcribe domain.Transcriber
	persona    string
	label      string
	language   string
	logger     *zap.Logger
}

// New creates an answer service. transcribe may be nil when audio input is
// disabled.
func New(
	pre Preprocessor, catalog CatalogFetcher, embed domain.Embedder,
	ranker Ranker, convs Conversations, chat domain.Chatter,
	transcribe domain.Transcriber,
	persona, label, language string,
	logger *zap.Logger,
) *Service {
	return &Service{
		pre:        pre,
		catalog:    catalog,
		embed:      embed,
		ranker:     ranker,
		convs:      convs,
		chat:       chat,
		transcribe: transcribe,
		persona:    persona,
		label:      label,
		language:   language,
		logger:     logger,
	}
}

// Answer runs the full pipeline for one question.
func (s *Service) Answer(ctx context.Context, req Request) (Answer, error) {
	question := req.Question
	if len(req.Audio) > 0 && s.transcribe != nil {
		transcript, err := s.transcribe.Transcribe(ctx, req.Audio, s.language)
		if err != nil {
			return Answer{}, fmt.Errorf("transcribe question: %w", err)
		}
		question = transcript
	}

	query := s.pre.Normalize(question)
	s.logger.Debug("Question preprocessed",
		zap.String("session", req.SessionID),
		zap.String("query", query),
	)

	// Catalog embedding and query embedding are independent; issue them
	// concurrently.
	var (
		parkEmbeddings []domain.ParkEmbedding
		queryEmbedding domain.EmbeddingResult
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		parkEmbeddings, err = s.catalog.Catalog(gctx)
		if err != nil {
			return fmt.Errorf("fetch park catalog: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		queryEmbedding, err = s.embed.Embed(gctx, query)
		if err != nil {
			return fmt.Errorf("embed question: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Answer{}, err
	}

	matches, err := s.ranker.TopK(queryEmbedding.Embedding, parkEmbeddings)
	if err != nil {
		return Answer{}, fmt.Errorf("rank parks: %w", err)
	}

	systemContext, parksOut, err := s.buildContext(matches)
	if err != nil {
		return Answer{}, err
	}

	if err := s.convs.Append(req.SessionID, systemContext, query); err != nil {
		return Answer{}, err
	}

	content, err := s.chat.Complete(ctx, s.convs.Messages(req.SessionID))
	if err != nil {
		return Answer{}, fmt.Errorf("chat completion: %w", err)
	}

	return Answer{
		Text:  s.label + ": " + content,
		Parks: parksOut,
	}, nil
}

// buildContext assembles the system message: the persona block followed by the
// newline-joined JSON payloads of the matched parks.
func (s *Service) buildContext(matches []domain.Match) (string, []domain.Park, error) {
	lines := make([]string, 0, len(matches)+1)
	lines = append(lines, s.persona)

	parksOut := make([]domain.Park, 0, len(matches))
	for _, m := range matches {
		payload, err := json.Marshal(m.Park)
		if err != nil {
			return "", nil, fmt.Errorf("serialize park %s: %w", m.Park.ID, err)
		}
		lines = append(lines, string(payload))
		parksOut = append(parksOut, m.Park)
	}

	return strings.Join(lines, "\n"), parksOut, nil
}
