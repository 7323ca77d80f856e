package db

import "database/sql"

// GetSetting returns a settings value, or the empty string if unset
func GetSetting(key string) (string, error) {
	var value string
	err := GetDB().QueryRow(
		"SELECT value FROM settings WHERE key = ?", key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// SetSetting upserts a settings value
func SetSetting(key, value string) error {
	_, err := GetDB().Exec(`
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, key, value, NowMilli())
	return err
}
