package users

import "time"

type User struct {
	ID           string
	Username     string
	PasswordHash []byte
	Salt         []byte
	CreatedAt    time.Time
}
