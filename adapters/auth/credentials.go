package auth

import (
	"errors"
	"strings"
	"sync"

	"github.com/artpar/catalogctl/ports"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for an unknown email or wrong password.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Account is a login identity of the stub catalog.
type Account struct {
	ID      string
	Email   string
	Name    string
	IsAdmin bool
}

// Bcrypt hashes passwords with bcrypt.
type Bcrypt struct {
	cost int
}

// NewBcrypt creates a bcrypt hasher. Out of range costs use the default.
func NewBcrypt(cost int) Bcrypt {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return Bcrypt{cost: cost}
}

// Hash generates a bcrypt hash from plaintext.
func (b Bcrypt) Hash(plaintext string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(plaintext), b.cost)
}

// Compare reports whether plaintext matches hash.
func (Bcrypt) Compare(hash []byte, plaintext string) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(plaintext)) == nil
}

var _ ports.Hasher = Bcrypt{}

// Credentials holds accounts keyed by lower-cased email.
type Credentials struct {
	hasher ports.Hasher

	mu       sync.RWMutex
	accounts map[string]credential
}

type credential struct {
	account Account
	hash    []byte
}

// NewCredentials creates an empty credential store.
func NewCredentials(hasher ports.Hasher) *Credentials {
	return &Credentials{hasher: hasher, accounts: make(map[string]credential)}
}

// Add stores an account, replacing any account with the same email.
func (c *Credentials) Add(acct Account, password string) error {
	hash, err := c.hasher.Hash(password)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.accounts[strings.ToLower(acct.Email)] = credential{account: acct, hash: hash}
	c.mu.Unlock()
	return nil
}

// Verify checks the password and returns the account.
func (c *Credentials) Verify(email, password string) (Account, error) {
	c.mu.RLock()
	cred, ok := c.accounts[strings.ToLower(email)]
	c.mu.RUnlock()
	if !ok || !c.hasher.Compare(cred.hash, password) {
		return Account{}, ErrInvalidCredentials
	}
	return cred.account, nil
}
