package models

import (
	"testing"
	"time"
)

func TestCredentialExpired(t *testing.T) {
	t.Run("Before Expiry", func(t *testing.T) {
		cred := Credential{
			AccessToken: "access",
			ExpiresIn:   3600,
			IssuedAt:    time.Now().Add(-3599 * time.Second),
		}

		if cred.Expired() {
			t.Error("credential should not be expired one second before its lifetime ends")
		}
	})

	t.Run("After Expiry", func(t *testing.T) {
		cred := Credential{
			AccessToken: "access",
			ExpiresIn:   3600,
			IssuedAt:    time.Now().Add(-3601 * time.Second),
		}

		if !cred.Expired() {
			t.Error("credential should be expired one second after its lifetime ends")
		}
	})

	t.Run("Zero Lifetime", func(t *testing.T) {
		cred := Credential{
			AccessToken: "access",
			ExpiresIn:   0,
			IssuedAt:    time.Now().Add(-time.Second),
		}

		if !cred.Expired() {
			t.Error("credential with zero lifetime should be expired")
		}
	})
}
