package store

import "database/sql"

const messageColumns = `id, chat_id, timestamp, sender, content, kind, media_file_name, media_kind`

// ListMessages returns a chat's messages in timestamp order using keyset
// pagination: pass the last seen (timestamp, id) pair, or (0, "") to start.
func (db *DB) ListMessages(chatID string, afterTs int64, afterID string, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := db.Query(`
		SELECT `+messageColumns+`
		FROM messages
		WHERE chat_id = ? AND (timestamp, id) > (?, ?)
		ORDER BY timestamp ASC, id ASC
		LIMIT ?`, chatID, afterTs, afterID, limit)
	if err != nil {
		return nil, err
	}
	return scanMessages(rows)
}

// ListMessagesBySender returns a sender's messages across a chat, newest
// first.
func (db *DB) ListMessagesBySender(chatID, sender string, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Query(`
		SELECT `+messageColumns+`
		FROM messages
		WHERE chat_id = ? AND sender = ?
		ORDER BY timestamp DESC, id DESC
		LIMIT ?`, chatID, sender, limit)
	if err != nil {
		return nil, err
	}
	return scanMessages(rows)
}

// ListSenders returns the distinct participants of a chat, sorted by name.
func (db *DB) ListSenders(chatID string) ([]string, error) {
	rows, err := db.Query(`
		SELECT DISTINCT sender
		FROM messages
		WHERE chat_id = ? AND sender != ''
		ORDER BY sender`, chatID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var senders []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		senders = append(senders, s)
	}
	return senders, rows.Err()
}

// CountMessages returns the exact number of messages owned by a chat.
func (db *DB) CountMessages(chatID string) (int, error) {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM messages WHERE chat_id = ?`, chatID).Scan(&n)
	return n, err
}

func scanMessages(rows *sql.Rows) ([]Message, error) {
	defer func() { _ = rows.Close() }()

	var msgs []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.ChatID, &m.Timestamp, &m.Sender, &m.Content, &m.Kind, &m.MediaFileName, &m.MediaKind); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}
