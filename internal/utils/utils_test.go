package utils

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestParseRedisURL(t *testing.T) {
	addr, pass, db, err := ParseRedisURL("rediss://user:pw@host:6380/3")
	if err != nil || addr != "host:6380" || pass != "pw" || db != 3 {
		t.Errorf("got %q %q %d %v", addr, pass, db, err)
	}
	addr, _, db, err = ParseRedisURL("redis://host:6379")
	if err != nil || addr != "host:6379" || db != 0 {
		t.Errorf("got %q %d %v", addr, db, err)
	}
	for _, bad := range []string{"http://host", "redis://", "redis://host/x"} {
		if _, _, _, err := ParseRedisURL(bad); err == nil {
			t.Errorf("%q should fail", bad)
		}
	}
}

func TestIsUniqueViolation(t *testing.T) {
	wrapped := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	if !IsUniqueViolation(wrapped) {
		t.Error("wrapped 23505 should be a unique violation")
	}
	if IsUniqueViolation(&pgconn.PgError{Code: "23503"}) {
		t.Error("foreign key violation is not a unique violation")
	}
	if IsUniqueViolation(errors.New("boom")) {
		t.Error("plain error is not a unique violation")
	}
}
