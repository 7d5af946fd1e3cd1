package store

import "database/sql"

// GetMediaBlob returns the payload bound to a message, or nil when the
// message has no stored media.
func (db *DB) GetMediaBlob(chatID, messageID string) (*MediaBlob, error) {
	var b MediaBlob
	err := db.QueryRow(`
		SELECT chat_id, message_id, file_name, content_type, data
		FROM media_blobs WHERE chat_id = ? AND message_id = ?`, chatID, messageID).
		Scan(&b.ChatID, &b.MessageID, &b.FileName, &b.ContentType, &b.Data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// CountMediaBlobs returns the number of stored payloads owned by a chat.
func (db *DB) CountMediaBlobs(chatID string) (int, error) {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM media_blobs WHERE chat_id = ?`, chatID).Scan(&n)
	return n, err
}
