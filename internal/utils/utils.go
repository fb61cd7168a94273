package utils

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"go.mongodb.org/mongo-driver/mongo"
)

const pgUniqueViolation = "23505"

// ParseDuration reads an env-style duration. Quotes are stripped, a bare
// integer means seconds ("10" -> 10s), anything else goes to time.ParseDuration.
func ParseDuration(raw string) (time.Duration, error) {
	s := strings.Trim(strings.TrimSpace(raw), `"'`)
	if s == "" {
		return 0, errors.New("empty duration")
	}
	if secs, err := strconv.Atoi(s); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("want 10s, 5m or a number of seconds, got %q", raw)
	}
	return d, nil
}

// IsUniqueViolation reports whether err is a duplicate-key failure from
// Postgres (SQLSTATE 23505) or MongoDB (E11000).
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pge *pgconn.PgError
	if errors.As(err, &pge) {
		return pge.Code == pgUniqueViolation
	}
	return mongo.IsDuplicateKeyError(err)
}

// NormalizeEmail lowercases and trims an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
