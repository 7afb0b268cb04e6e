// Package token implements the signing key ring and the token authority
// that issues, validates, and revokes signed bearer credentials.
package token

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/golang-jwt/jwt/v5"
)

// Keypair is one asymmetric signing key, addressed by a stable identifier.
// Every issued token names the key that signed it, so validation depends
// only on key existence in the ring, never on which key is primary.
type Keypair struct {
	KID     string
	Private *rsa.PrivateKey
	Public  *rsa.PublicKey
}

// KeypairFile references a PEM-encoded RSA private key on disk.
type KeypairFile struct {
	KID  string `yaml:"kid"`
	Path string `yaml:"path"`
}

type keySet struct {
	keys  []Keypair
	byKID map[string]*Keypair
}

// KeyRing holds an ordered set of keypairs. The first key is the primary
// signing key; older keys stay resolvable by identifier so outstanding
// tokens survive rotation. Rotation replaces the whole set atomically —
// entries are never mutated in place.
type KeyRing struct {
	set atomic.Pointer[keySet]
}

// NewKeyRing builds a ring from the given keypairs, primary first.
func NewKeyRing(keys []Keypair) (*KeyRing, error) {
	set, err := buildKeySet(keys)
	if err != nil {
		return nil, err
	}
	r := &KeyRing{}
	r.set.Store(set)
	return r, nil
}

func buildKeySet(keys []Keypair) (*keySet, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("key ring requires at least one signing key")
	}
	set := &keySet{byKID: make(map[string]*Keypair, len(keys))}
	for _, k := range keys {
		if k.KID == "" {
			return nil, fmt.Errorf("signing key without a key identifier")
		}
		if k.Private == nil {
			return nil, fmt.Errorf("signing key %q has no private key", k.KID)
		}
		if _, dup := set.byKID[k.KID]; dup {
			return nil, fmt.Errorf("duplicate key identifier %q", k.KID)
		}
		kp := k
		if kp.Public == nil {
			kp.Public = &kp.Private.PublicKey
		}
		set.keys = append(set.keys, kp)
		set.byKID[kp.KID] = &set.keys[len(set.keys)-1]
	}
	return set, nil
}

// Current returns the primary signing key.
func (r *KeyRing) Current() Keypair {
	return r.set.Load().keys[0]
}

// Lookup returns the keypair for the given identifier, if still in the ring.
func (r *KeyRing) Lookup(kid string) (Keypair, bool) {
	kp, ok := r.set.Load().byKID[kid]
	if !ok {
		return Keypair{}, false
	}
	return *kp, true
}

// KIDs returns the key identifiers in ring order, primary first.
func (r *KeyRing) KIDs() []string {
	set := r.set.Load()
	ids := make([]string, len(set.keys))
	for i, k := range set.keys {
		ids[i] = k.KID
	}
	return ids
}

// Rotate replaces the whole ring. Keys carried over keep validating tokens
// they signed; keys left out stop validating immediately.
func (r *KeyRing) Rotate(keys []Keypair) error {
	set, err := buildKeySet(keys)
	if err != nil {
		return err
	}
	r.set.Store(set)
	return nil
}

// GenerateKeypair creates a fresh RSA keypair for the given identifier.
// Used by tests and dev bootstrap; production keys come from PEM files.
func GenerateKeypair(kid string) (Keypair, error) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return Keypair{}, fmt.Errorf("generate keypair %q: %w", kid, err)
	}
	return Keypair{KID: kid, Private: priv, Public: &priv.PublicKey}, nil
}

// WritePEM writes the private key to path as a PKCS#1 PEM block, readable
// only by the owner.
func (k Keypair) WritePEM(path string) error {
	block := &pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(k.Private),
	}
	if err := os.WriteFile(path, pem.EncodeToMemory(block), 0o600); err != nil {
		return fmt.Errorf("write signing key %q: %w", k.KID, err)
	}
	return nil
}

// LoadKeyRing reads PEM keypair files in order, primary first.
func LoadKeyRing(files []KeypairFile) (*KeyRing, error) {
	keys := make([]Keypair, 0, len(files))
	for _, f := range files {
		pemBytes, err := os.ReadFile(f.Path)
		if err != nil {
			return nil, fmt.Errorf("read signing key %q: %w", f.KID, err)
		}
		priv, err := jwt.ParseRSAPrivateKeyFromPEM(pemBytes)
		if err != nil {
			return nil, fmt.Errorf("parse signing key %q: %w", f.KID, err)
		}
		keys = append(keys, Keypair{KID: f.KID, Private: priv, Public: &priv.PublicKey})
	}
	return NewKeyRing(keys)
}
