// Package testdata builds throwaway Ed25519 keys for auth tests.
package testdata

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
)

const TestUserID = "test-user-123"

// RSAPublicKeyPEM is a well formed PKIX key that is not Ed25519.
const RSAPublicKeyPEM = `-----BEGIN PUBLIC KEY-----
MFwwDQYJKoZIhvcNAQEBBQADSwAwSAJBAKjaoGswNhxjNCn3pkb3a7tzj19uGdpA
VwJVWRq9EFHIlz7nItOHS+7VDXLInorpVi1GTketrQpxyOWez5NpAVcCAwEAAQ==
-----END PUBLIC KEY-----`

// NewKeyPair returns a PEM encoded public key and its private key.
func NewKeyPair() (string, ed25519.PrivateKey) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		panic(err)
	}
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		panic(err)
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})), priv
}
