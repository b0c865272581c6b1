package rfc6265

import (
	"math"
	"testing"
	"time"
)

func TestFromMaxAge(t *testing.T) {
	now := time.Date(2023, time.March, 14, 12, 0, 0, 0, time.UTC)

	e := FromMaxAge(now, 60)
	expiry, ok := e.Time()
	if !ok {
		t.Fatal("Max-Age cookie is not persistent")
	}
	if !expiry.Equal(now.Add(time.Minute)) {
		t.Errorf("expiry = %v, expected %v", expiry, now.Add(time.Minute))
	}
	if e.ExpiresBy(now) {
		t.Error("cookie expires before its Max-Age elapsed")
	}
	if !e.ExpiresBy(now.Add(2 * time.Minute)) {
		t.Error("cookie does not expire after its Max-Age elapsed")
	}
}

func TestFromMaxAgeNonPositive(t *testing.T) {
	now := time.Now()
	for _, delta := range []int64{0, -1, -3600} {
		e := FromMaxAge(now, delta)
		expiry, ok := e.Time()
		if !ok {
			t.Fatalf("Max-Age=%d cookie is not persistent", delta)
		}
		if !expiry.Equal(EarliestExpiry) {
			t.Errorf("Max-Age=%d expiry = %v, expected the earliest representable instant", delta, expiry)
		}
	}
}

func TestFromMaxAgeClamps(t *testing.T) {
	now := time.Now()
	for _, delta := range []int64{math.MaxInt64, math.MaxInt64 / 2, 9223372036854776} {
		e := FromMaxAge(now, delta)
		expiry, ok := e.Time()
		if !ok {
			t.Fatalf("Max-Age=%d cookie is not persistent", delta)
		}
		if expiry.After(LatestExpiry) {
			t.Errorf("Max-Age=%d expiry = %v, beyond the latest representable instant", delta, expiry)
		}
	}
}

func TestFromExpires(t *testing.T) {
	stamp := time.Date(2100, time.August, 3, 0, 38, 37, 123456789, time.FixedZone("CET", 3600))
	e := FromExpires(stamp)
	expiry, ok := e.Time()
	if !ok {
		t.Fatal("Expires cookie is not persistent")
	}
	if expiry.Location() != time.UTC {
		t.Errorf("expiry not stored in UTC: %v", expiry)
	}
	if expiry.Nanosecond() != 0 {
		t.Errorf("expiry not truncated to second precision: %v", expiry)
	}
}

func TestSessionEnd(t *testing.T) {
	e := SessionEnd()
	if e.IsPersistent() {
		t.Fatal("session expiry is persistent")
	}
	if _, ok := e.Time(); ok {
		t.Fatal("session expiry has an absolute instant")
	}
	// a session cookie never expires by any supplied instant
	if e.ExpiresBy(time.Now().Add(24 * time.Hour)) {
		t.Error("session cookie expires by a future instant")
	}
	if e.ExpiresBy(time.Now().Add(-24 * time.Hour)) {
		t.Error("session cookie expires by a past instant")
	}
}

func TestExpired(t *testing.T) {
	e := Expired()
	if !e.ExpiresBy(time.Now()) {
		t.Error("Expired() is not expired now")
	}
	expiry, _ := e.Time()
	if !expiry.Equal(EarliestExpiry) {
		t.Errorf("Expired() expiry = %v, expected the earliest representable instant", expiry)
	}
}
