package domain

import "time"

// Defaults applied when sign-up omits optional profile fields, matching the
// legacy Mesto schema.
const (
	DefaultName   = "Жак-Ив Кусто"
	DefaultAbout  = "Исследователь"
	DefaultAvatar = "https://pictures.s3.yandex.net/resources/jacques-cousteau_1604399756.png"
)

// User represents a registered account. PasswordHash never leaves the
// backend; only the login path reads it.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	About        string
	Avatar       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
