// Package projection builds read models over a tab's message log.
// It never mutates the log it observes.
package projection

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"global-chat/domain"

	"github.com/blugelabs/bluge"
)

const (
	fieldText    = "text"
	fieldSender  = "sender"
	fieldChannel = "channel"
	defaultLimit = 10
)

// SearchIndex is an in-memory full-text index of chat messages.
type SearchIndex struct {
	log    *slog.Logger
	writer *bluge.Writer

	mu       sync.RWMutex
	messages map[string]domain.ChatMessage
}

func NewSearchIndex(log *slog.Logger) (*SearchIndex, error) {
	writer, err := bluge.OpenWriter(bluge.InMemoryOnlyConfig())
	if err != nil {
		return nil, fmt.Errorf("open search index: %w", err)
	}
	return &SearchIndex{log: log, writer: writer, messages: make(map[string]domain.ChatMessage)}, nil
}

// Consume indexes msg. Re-indexing the same ID replaces the previous version.
func (s *SearchIndex) Consume(msg domain.ChatMessage) {
	doc := bluge.NewDocument(msg.ID).
		AddField(bluge.NewTextField(fieldText, msg.Text)).
		AddField(bluge.NewTextField(fieldSender, msg.SenderName)).
		AddField(bluge.NewKeywordField(fieldChannel, msg.ChannelID))

	if err := s.writer.Update(doc.ID(), doc); err != nil {
		s.log.Warn("Unable to index message", "message_id", msg.ID, "error", err)
		return
	}
	s.mu.Lock()
	s.messages[msg.ID] = msg
	s.mu.Unlock()
}

// Search returns the best matches of terms in channelID, best first.
// Terms match the message text or the sender name.
func (s *SearchIndex) Search(ctx context.Context, channelID domain.ChannelID, terms string, limit int) ([]domain.ChatMessage, error) {
	terms = strings.TrimSpace(terms)
	if terms == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = defaultLimit
	}

	reader, err := s.writer.Reader()
	if err != nil {
		return nil, fmt.Errorf("open reader: %w", err)
	}
	defer reader.Close()

	textQuery := bluge.NewBooleanQuery().
		AddShould(bluge.NewMatchQuery(terms).SetField(fieldText)).
		AddShould(bluge.NewMatchQuery(terms).SetField(fieldSender))
	query := bluge.NewBooleanQuery().
		AddMust(textQuery).
		AddMust(bluge.NewTermQuery(channelID).SetField(fieldChannel))

	matches, err := reader.Search(ctx, bluge.NewTopNSearch(limit, query))
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	var results []domain.ChatMessage
	match, err := matches.Next()
	for err == nil && match != nil {
		var id string
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			if field == "_id" {
				id = string(value)
				return false
			}
			return true
		})
		if err != nil {
			break
		}
		s.mu.RLock()
		if msg, ok := s.messages[id]; ok {
			results = append(results, msg)
		}
		s.mu.RUnlock()
		match, err = matches.Next()
	}
	if err != nil {
		return nil, fmt.Errorf("iterate matches: %w", err)
	}
	return results, nil
}

func (s *SearchIndex) Close() error {
	return s.writer.Close()
}
