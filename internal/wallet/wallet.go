// ==================================
// File: internal/wallet/wallet.go
// ==================================
package wallet

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

// KeypairLength is the size of a Solana secret+public key pair.
const KeypairLength = 64

var (
	ErrInvalidKeyLength = errors.New("invalid private key length")
	ErrMissingSigner    = errors.New("missing private key for required signer")
)

// Wallet представляет кошелёк Solana. Ключ живёт только в памяти процесса.
type Wallet struct {
	PrivateKey solana.PrivateKey
	PublicKey  solana.PublicKey
}

// NewWallet создаёт новый кошелёк из base58-encoded приватного ключа.
func NewWallet(privateKeyBase58 string) (*Wallet, error) {
	privateKeyBytes, err := base58.Decode(privateKeyBase58)
	if err != nil {
		return nil, fmt.Errorf("failed to decode private key: %w", err)
	}
	if len(privateKeyBytes) != KeypairLength {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidKeyLength, KeypairLength, len(privateKeyBytes))
	}
	return FromPrivateKey(solana.PrivateKey(privateKeyBytes)), nil
}

// FromPrivateKey оборачивает уже существующий ключ.
func FromPrivateKey(key solana.PrivateKey) *Wallet {
	return &Wallet{
		PrivateKey: key,
		PublicKey:  key.PublicKey(),
	}
}

// NewRandom генерирует одноразовый кошелёк (mint нового токена, временный WSOL-аккаунт).
func NewRandom() (*Wallet, error) {
	key, err := solana.NewRandomPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate keypair: %w", err)
	}
	return FromPrivateKey(key), nil
}

// SignTransaction подписывает транзакцию ключом кошелька и дополнительными ключами.
// Если транзакция требует подпись, для которой ключ не передан, возвращается ErrMissingSigner.
func (w *Wallet) SignTransaction(tx *solana.Transaction, extra ...solana.PrivateKey) error {
	return SignWith(tx, append([]solana.PrivateKey{w.PrivateKey}, extra...)...)
}

// SignWith подписывает транзакцию набором ключей.
func SignWith(tx *solana.Transaction, keys ...solana.PrivateKey) error {
	var missing solana.PublicKey
	_, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		for i := range keys {
			if keys[i].PublicKey().Equals(key) {
				return &keys[i]
			}
		}
		missing = key
		return nil
	})
	if err != nil {
		if !missing.IsZero() {
			return fmt.Errorf("%w %s: %v", ErrMissingSigner, missing, err)
		}
		return fmt.Errorf("failed to sign transaction: %w", err)
	}
	return nil
}

// GetATA возвращает адрес ассоциированного токен-аккаунта (ATA) для заданного токена (mint).
func (w *Wallet) GetATA(mint solana.PublicKey) (solana.PublicKey, error) {
	ata, _, err := solana.FindAssociatedTokenAddress(w.PublicKey, mint)
	if err != nil {
		return solana.PublicKey{}, err
	}
	return ata, nil
}

// String возвращает строковое представление кошелька (его публичный ключ).
func (w *Wallet) String() string {
	return w.PublicKey.String()
}
