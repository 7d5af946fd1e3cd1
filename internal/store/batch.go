package store

import (
	"context"
	"fmt"
)

// BatchWriter persists an ordered record sequence in bounded, independently
// committed transactions. The caller drives it step by step and is free to
// report progress or yield between steps; a failed step leaves prior
// committed batches in place.
//
// The final stored state is identical for any batch size >= 1.
type BatchWriter struct {
	db      *DB
	records []Record
	size    int
	written int
}

// NewBatchWriter prepares a writer over records with the given batch size.
func (db *DB) NewBatchWriter(records []Record, size int) *BatchWriter {
	if size < 1 {
		size = 1
	}
	return &BatchWriter{db: db, records: records, size: size}
}

// Total returns the number of records to be written.
func (w *BatchWriter) Total() int { return len(w.records) }

// Written returns the number of records committed so far.
func (w *BatchWriter) Written() int { return w.written }

// Step commits the next batch. It returns done == true once every record is
// stored; the final successful step always reports written == total.
func (w *BatchWriter) Step(ctx context.Context) (written int, done bool, err error) {
	if w.written >= len(w.records) {
		return w.written, true, nil
	}
	if err := ctx.Err(); err != nil {
		return w.written, false, err
	}

	end := w.written + w.size
	if end > len(w.records) {
		end = len(w.records)
	}
	batch := w.records[w.written:end]

	tx, err := w.db.Begin()
	if err != nil {
		return w.written, false, fmt.Errorf("begin batch: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, rec := range batch {
		m := rec.Msg
		if _, err := tx.Exec(`
			INSERT INTO messages (id, chat_id, timestamp, sender, content, kind, media_file_name, media_kind)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			m.ID, m.ChatID, m.Timestamp, m.Sender, m.Content, m.Kind, m.MediaFileName, m.MediaKind); err != nil {
			return w.written, false, fmt.Errorf("insert message %s: %w", m.ID, err)
		}
		if rec.Blob != nil {
			b := rec.Blob
			if _, err := tx.Exec(`
				INSERT INTO media_blobs (chat_id, message_id, file_name, content_type, data)
				VALUES (?, ?, ?, ?, ?)`,
				b.ChatID, b.MessageID, b.FileName, b.ContentType, b.Data); err != nil {
				return w.written, false, fmt.Errorf("insert media blob %s: %w", b.MessageID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return w.written, false, fmt.Errorf("commit batch: %w", err)
	}
	w.written = end
	return w.written, w.written == len(w.records), nil
}

// BatchDeleter removes a chat and everything it owns in bounded
// transactions. The chat record itself goes first; dependents are counted
// before any batch runs so progress totals are exact, not estimated.
type BatchDeleter struct {
	db      *DB
	chatID  string
	size    int
	total   int
	deleted int
}

// NewBatchDeleter deletes the chat record, enumerates its dependents, and
// returns a deleter ready to drain them batch by batch.
func (db *DB) NewBatchDeleter(chatID string, size int) (*BatchDeleter, error) {
	if size < 1 {
		size = 1
	}
	if _, err := db.Exec(`DELETE FROM chats WHERE id = ?`, chatID); err != nil {
		return nil, fmt.Errorf("delete chat: %w", err)
	}
	total, err := db.CountMessages(chatID)
	if err != nil {
		return nil, fmt.Errorf("count messages: %w", err)
	}
	return &BatchDeleter{db: db, chatID: chatID, size: size, total: total}, nil
}

// Total returns the exact number of dependent messages to delete.
func (d *BatchDeleter) Total() int { return d.total }

// Deleted returns the number of messages removed so far.
func (d *BatchDeleter) Deleted() int { return d.deleted }

// Step removes the next batch of messages together with their payloads.
func (d *BatchDeleter) Step(ctx context.Context) (deleted int, done bool, err error) {
	if d.deleted >= d.total {
		return d.deleted, true, nil
	}
	if err := ctx.Err(); err != nil {
		return d.deleted, false, err
	}

	tx, err := d.db.Begin()
	if err != nil {
		return d.deleted, false, fmt.Errorf("begin delete batch: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.Query(`SELECT id FROM messages WHERE chat_id = ? ORDER BY timestamp, id LIMIT ?`, d.chatID, d.size)
	if err != nil {
		return d.deleted, false, fmt.Errorf("select delete batch: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return d.deleted, false, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return d.deleted, false, err
	}
	_ = rows.Close()

	for _, id := range ids {
		if _, err := tx.Exec(`DELETE FROM media_blobs WHERE chat_id = ? AND message_id = ?`, d.chatID, id); err != nil {
			return d.deleted, false, fmt.Errorf("delete media blob %s: %w", id, err)
		}
		if _, err := tx.Exec(`DELETE FROM messages WHERE chat_id = ? AND id = ?`, d.chatID, id); err != nil {
			return d.deleted, false, fmt.Errorf("delete message %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return d.deleted, false, fmt.Errorf("commit delete batch: %w", err)
	}
	d.deleted += len(ids)
	return d.deleted, d.deleted >= d.total || len(ids) == 0, nil
}
