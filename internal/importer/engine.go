// Package importer drives the read-parse-correlate-store pipeline as a
// sequence of bounded steps with progress reporting between them.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/matheus3301/chatvault/internal/bus"
	"github.com/matheus3301/chatvault/internal/export"
	"github.com/matheus3301/chatvault/internal/intake"
	"github.com/matheus3301/chatvault/internal/media"
	"github.com/matheus3301/chatvault/internal/status"
	"github.com/matheus3301/chatvault/internal/store"
)

// Options tunes chunk sizes and intake limits for one engine.
type Options struct {
	ParseChunkLines int
	WriteBatchSize  int
	DeleteBatchSize int
	ReadChunkBytes  int
	Limits          intake.Limits
}

// DefaultOptions returns the sizes used when the config does not override
// them.
func DefaultOptions() Options {
	return Options{
		ParseChunkLines: 500,
		WriteBatchSize:  200,
		DeleteBatchSize: 500,
		ReadChunkBytes:  256 * 1024,
		Limits:          intake.DefaultLimits(),
	}
}

// Engine runs imports and deletes against one vault store. Everything is
// single-threaded and cooperative: suspension happens only between chunks,
// never inside a line, record, or correlation pass.
type Engine struct {
	db   *store.DB
	bus  *bus.Bus
	log  *zap.Logger
	opts Options
}

// NewEngine creates an import engine.
func NewEngine(db *store.DB, b *bus.Bus, logger *zap.Logger, opts Options) *Engine {
	if opts.ParseChunkLines < 1 {
		opts.ParseChunkLines = 1
	}
	if opts.WriteBatchSize < 1 {
		opts.WriteBatchSize = 1
	}
	if opts.DeleteBatchSize < 1 {
		opts.DeleteBatchSize = 1
	}
	if opts.ReadChunkBytes < 1 {
		opts.ReadChunkBytes = 64 * 1024
	}
	return &Engine{db: db, bus: b, log: logger, opts: opts}
}

// Summary reports what one import produced.
type Summary struct {
	ChatID         string
	ChatName       string
	IsGroup        bool
	Messages       int
	MediaMatched   int
	MediaUnmatched int
	Warnings       []string
}

// Import ingests the export at path into the vault. Intake rejections come
// back as *intake.RejectError; any other failure is terminal for the
// attempt but leaves already-committed batches in place.
func (e *Engine) Import(ctx context.Context, path string) (*Summary, error) {
	machine := status.NewMachine(e.bus)

	summary, err := e.runImport(ctx, machine, path)
	if err != nil {
		machine.Fail(err)
		e.log.Error("import failed", zap.String("input", path), zap.Error(err))
		return nil, err
	}
	return summary, nil
}

func (e *Engine) runImport(ctx context.Context, machine *status.Machine, path string) (*Summary, error) {
	// Reading: intake verdict, then raw bytes with byte-level progress.
	if err := machine.Transition(status.Reading); err != nil {
		return nil, err
	}
	verdict, err := intake.Inspect(path, e.opts.Limits)
	if err != nil {
		return nil, err
	}
	for _, w := range verdict.Warnings {
		e.log.Warn("intake warning", zap.String("warning", w))
	}

	text, err := e.readAll(ctx, verdict.TextPath)
	if err != nil {
		return nil, err
	}
	candidates, err := loadCandidates(verdict.MediaPaths)
	if err != nil {
		return nil, err
	}

	// Parsing: feed the parser a bounded number of lines per step.
	if err := machine.Transition(status.Parsing); err != nil {
		return nil, err
	}
	parser, err := e.parseAll(ctx, text)
	if err != nil {
		return nil, err
	}
	msgs := parser.Messages()

	// Correlation runs to completion once invoked; its working set is
	// bounded by the parsed message count.
	correlated := media.Correlate(msgs, candidates)
	e.log.Info("media correlated",
		zap.Int("candidates", len(candidates)),
		zap.Int("matched", len(correlated.Bindings)),
		zap.Int("unmatched", len(correlated.Unmatched)))

	// Storing: chat record first, then message batches. A reader may see
	// the chat with a partial message set while batches drain.
	if err := machine.Transition(status.Storing); err != nil {
		return nil, err
	}
	chat := e.buildChat(filepath.Base(verdict.TextPath), parser, msgs)
	if err := e.db.InsertChat(chat); err != nil {
		return nil, fmt.Errorf("insert chat: %w", err)
	}
	if err := e.storeAll(ctx, chat.ID, msgs, correlated.Bindings); err != nil {
		return nil, err
	}

	if err := machine.Transition(status.Complete); err != nil {
		return nil, err
	}
	e.log.Info("import complete",
		zap.String("chat_id", chat.ID),
		zap.String("chat", chat.Name),
		zap.Int("messages", len(msgs)))

	return &Summary{
		ChatID:         chat.ID,
		ChatName:       chat.Name,
		IsGroup:        chat.IsGroup,
		Messages:       len(msgs),
		MediaMatched:   len(correlated.Bindings),
		MediaUnmatched: len(correlated.Unmatched),
		Warnings:       verdict.Warnings,
	}, nil
}

// readAll reads the export in bounded chunks, reporting byte progress and
// yielding between chunks.
func (e *Engine) readAll(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open export: %w", err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat export: %w", err)
	}
	total := int(info.Size())

	var sb strings.Builder
	sb.Grow(total)
	buf := make([]byte, e.opts.ReadChunkBytes)
	read := 0
	for {
		if err := e.yield(ctx); err != nil {
			return "", err
		}
		n, err := f.Read(buf)
		if n > 0 {
			sb.Write(buf[:n])
			read += n
			e.bus.Emit("import.progress", progressOf(status.Reading, read, total))
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return "", fmt.Errorf("read export: %w", err)
		}
	}
	e.bus.Emit("import.progress", progressOf(status.Reading, total, total))
	return sb.String(), nil
}

// parseAll feeds lines to the parser in bounded chunks. Parser state is
// carried across steps, so the chunk size never changes the result.
func (e *Engine) parseAll(ctx context.Context, text string) (*export.Parser, error) {
	lines := strings.SplitAfter(text, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	total := len(lines)

	parser := export.NewParser()
	for start := 0; start < total; start += e.opts.ParseChunkLines {
		if err := e.yield(ctx); err != nil {
			return nil, err
		}
		end := start + e.opts.ParseChunkLines
		if end > total {
			end = total
		}
		parser.Feed(strings.Join(lines[start:end], ""))
		e.bus.Emit("import.progress", progressOf(status.Parsing, end, total))
	}
	parser.Close()
	e.bus.Emit("import.progress", progressOf(status.Parsing, total, total))
	return parser, nil
}

// storeAll writes messages and bound payloads in batches, reporting
// progress after each committed batch.
func (e *Engine) storeAll(ctx context.Context, chatID string, msgs []export.Message, bindings []media.Binding) error {
	blobs := make(map[string]*store.MediaBlob, len(bindings))
	for _, b := range bindings {
		blobs[b.MessageID] = &store.MediaBlob{
			ChatID:      chatID,
			MessageID:   b.MessageID,
			FileName:    b.Candidate.Name,
			ContentType: contentTypeFor(b.Candidate.Name),
			Data:        b.Candidate.Data,
		}
	}

	records := make([]store.Record, len(msgs))
	for i, m := range msgs {
		records[i] = store.Record{
			Msg: store.Message{
				ID:            m.ID,
				ChatID:        chatID,
				Timestamp:     m.Timestamp,
				Sender:        m.Sender,
				Content:       m.Content,
				Kind:          string(m.Kind),
				MediaFileName: m.MediaFileName,
				MediaKind:     string(m.MediaKind),
			},
			Blob: blobs[m.ID],
		}
	}

	w := e.db.NewBatchWriter(records, e.opts.WriteBatchSize)
	for {
		if err := e.yield(ctx); err != nil {
			return err
		}
		written, done, err := w.Step(ctx)
		if err != nil {
			return err
		}
		e.bus.Emit("import.progress", progressOf(status.Storing, written, w.Total()))
		if done {
			return nil
		}
	}
}

// DeleteSummary reports what one delete removed.
type DeleteSummary struct {
	ChatID   string
	Messages int
}

// Delete removes a chat and drains its dependents in batches. The chat
// record disappears first; readers may observe messages still draining.
func (e *Engine) Delete(ctx context.Context, chatID string) (*DeleteSummary, error) {
	d, err := e.db.NewBatchDeleter(chatID, e.opts.DeleteBatchSize)
	if err != nil {
		return nil, err
	}
	for {
		if err := e.yield(ctx); err != nil {
			return nil, err
		}
		deleted, done, err := d.Step(ctx)
		if err != nil {
			return nil, err
		}
		e.bus.Emit("delete.progress", progressOf(status.Storing, deleted, d.Total()))
		if done {
			e.log.Info("chat deleted", zap.String("chat_id", chatID), zap.Int("messages", deleted))
			return &DeleteSummary{ChatID: chatID, Messages: deleted}, nil
		}
	}
}

func (e *Engine) buildChat(fileName string, parser *export.Parser, msgs []export.Message) *store.Chat {
	now := time.Now().UnixMilli()
	chat := &store.Chat{
		ID:           uuid.NewString(),
		Name:         export.ChatNameFromFile(fileName),
		IsGroup:      parser.IsGroup(),
		MessageCount: len(msgs),
		CreatedAt:    now,
		LastOpenedAt: now,
	}
	if len(msgs) > 0 {
		chat.LastMessageAt = msgs[len(msgs)-1].Timestamp
	}
	return chat
}

// yield is the cooperative suspension point between chunks.
func (e *Engine) yield(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	runtime.Gosched()
	return nil
}

func loadCandidates(paths []string) ([]media.Candidate, error) {
	var out []media.Candidate
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read media file %s: %w", filepath.Base(p), err)
		}
		out = append(out, media.NewCandidate(filepath.Base(p), data))
	}
	return out, nil
}

func contentTypeFor(name string) string {
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); t != "" {
		return t
	}
	return "application/octet-stream"
}
