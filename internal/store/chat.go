package store

import "database/sql"

// InsertChat creates a new chat record.
func (db *DB) InsertChat(c *Chat) error {
	_, err := db.Exec(`
		INSERT INTO chats (id, name, is_group, message_count, view_as, created_at, last_opened_at, last_message_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.IsGroup, c.MessageCount, c.ViewAs, c.CreatedAt, c.LastOpenedAt, c.LastMessageAt)
	return err
}

// ReplaceChat overwrites every field of an existing chat record. Whole-record
// replacement is the only mutation path, so concurrent partial patches can
// never interleave.
func (db *DB) ReplaceChat(c *Chat) error {
	_, err := db.Exec(`
		UPDATE chats SET name = ?, is_group = ?, message_count = ?, view_as = ?,
			created_at = ?, last_opened_at = ?, last_message_at = ?
		WHERE id = ?`,
		c.Name, c.IsGroup, c.MessageCount, c.ViewAs, c.CreatedAt, c.LastOpenedAt, c.LastMessageAt, c.ID)
	return err
}

// GetChat returns a single chat by id, or nil when absent.
func (db *DB) GetChat(id string) (*Chat, error) {
	var c Chat
	err := db.QueryRow(`
		SELECT id, name, is_group, message_count, view_as, created_at, last_opened_at, last_message_at
		FROM chats WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.IsGroup, &c.MessageCount, &c.ViewAs, &c.CreatedAt, &c.LastOpenedAt, &c.LastMessageAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListChats returns chats ordered by last-opened time descending.
func (db *DB) ListChats(limit, offset int) ([]Chat, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Query(`
		SELECT id, name, is_group, message_count, view_as, created_at, last_opened_at, last_message_at
		FROM chats
		ORDER BY last_opened_at DESC
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var chats []Chat
	for rows.Next() {
		var c Chat
		if err := rows.Scan(&c.ID, &c.Name, &c.IsGroup, &c.MessageCount, &c.ViewAs, &c.CreatedAt, &c.LastOpenedAt, &c.LastMessageAt); err != nil {
			return nil, err
		}
		chats = append(chats, c)
	}
	return chats, rows.Err()
}
