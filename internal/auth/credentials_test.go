package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testTrusted() Trusted {
	return Trusted{
		APIClients: []Credentials{
			{APIClientID: "client-a", APIToken: "token-a"},
			{APIClientID: "client-b", APIToken: "token-b"},
		},
		TenantIDs: []string{"tenant-1", "tenant-2"},
	}
}

func TestAuthenticate(t *testing.T) {
	trusted := testTrusted()

	tests := []struct {
		name     string
		supplied Credentials
		want     bool
	}{
		{"first pair", Credentials{"client-a", "token-a"}, true},
		{"second pair", Credentials{"client-b", "token-b"}, true},
		{"crossed pair", Credentials{"client-a", "token-b"}, false},
		{"wrong token", Credentials{"client-a", "token-x"}, false},
		{"unknown client", Credentials{"client-z", "token-a"}, false},
		{"token prefix", Credentials{"client-a", "token"}, false},
		{"empty", Credentials{}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Authenticate(tc.supplied, trusted))
		})
	}
}

func TestAuthenticate_NoTrustedClients(t *testing.T) {
	assert.False(t, Authenticate(Credentials{"client-a", "token-a"}, Trusted{}))
}

func TestAuthenticate_EmptyTrustedPairNeverMatches(t *testing.T) {
	trusted := Trusted{APIClients: []Credentials{{}}}
	assert.False(t, Authenticate(Credentials{}, trusted))
}

func TestValidTenant(t *testing.T) {
	trusted := testTrusted()

	assert.True(t, ValidTenant("tenant-1", trusted))
	assert.True(t, ValidTenant("tenant-2", trusted))
	assert.False(t, ValidTenant("tenant-3", trusted))
	assert.False(t, ValidTenant("Tenant-1", trusted))
	assert.False(t, ValidTenant("", trusted))
}
