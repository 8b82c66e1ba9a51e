// Package unlock реализует локальную блокировку клиента. На авторизацию на сервере не влияет.
package unlock

import (
	"context"
	"errors"
	"fmt"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"github.com/iudanet/geojournal/internal/client/iocli"
	"github.com/iudanet/geojournal/internal/client/storage"
)

// MaxAttempts сколько раз спрашивать PIN перед отказом
const MaxAttempts = 3

// ErrLocked is returned when the user failed to unlock the client
var ErrLocked = errors.New("journal is locked")

// Gate is a local unlock check run before journal commands
type Gate interface {
	// Supported reports whether this device can use the gate at all
	Supported() bool
	// Enabled reports whether the user turned the lock on
	Enabled(ctx context.Context) bool
	Authenticate(ctx context.Context) (bool, error)
}

// PIN is a Gate backed by a bcrypt hash in local storage
type PIN struct {
	store storage.UnlockStorage
	io    iocli.IO
	cost  int
}

// NewPIN создает PIN gate
func NewPIN(store storage.UnlockStorage, io iocli.IO) *PIN {
	return &PIN{store: store, io: io, cost: bcrypt.DefaultCost}
}

func (p *PIN) Supported() bool { return true }

// Enabled is false only when no PIN is stored; a storage failure keeps the lock on
func (p *PIN) Enabled(ctx context.Context) bool {
	_, err := p.store.GetPINHash(ctx)
	return !errors.Is(err, storage.ErrPINNotSet)
}

// Authenticate asks for the PIN up to MaxAttempts times
func (p *PIN) Authenticate(ctx context.Context) (bool, error) {
	hash, err := p.store.GetPINHash(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrPINNotSet) {
			return true, nil
		}
		return false, fmt.Errorf("failed to read pin: %w", err)
	}

	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		pin, err := p.io.ReadPassword("PIN: ")
		if err != nil {
			return false, fmt.Errorf("failed to read pin: %w", err)
		}
		if bcrypt.CompareHashAndPassword(hash, []byte(pin)) == nil {
			return true, nil
		}
		if attempt < MaxAttempts {
			p.io.Printf("Wrong PIN, %d attempt(s) left\n", MaxAttempts-attempt)
		}
	}
	return false, nil
}

// Set включает блокировку с новым PIN
func (p *PIN) Set(ctx context.Context, pin string) error {
	if err := ValidatePIN(pin); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), p.cost)
	if err != nil {
		return fmt.Errorf("failed to hash pin: %w", err)
	}
	return p.store.SavePINHash(ctx, hash)
}

// Clear выключает блокировку
func (p *PIN) Clear(ctx context.Context) error {
	return p.store.DeletePINHash(ctx)
}

// ValidatePIN accepts 4 to 8 digits
func ValidatePIN(pin string) error {
	if len(pin) < 4 || len(pin) > 8 {
		return errors.New("PIN must be 4 to 8 digits")
	}
	for _, r := range pin {
		if !unicode.IsDigit(r) || r > unicode.MaxASCII {
			return errors.New("PIN must contain digits only")
		}
	}
	return nil
}

// Require runs the gate when it is supported and enabled
func Require(ctx context.Context, gate Gate) error {
	if gate == nil || !gate.Supported() || !gate.Enabled(ctx) {
		return nil
	}
	ok, err := gate.Authenticate(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return ErrLocked
	}
	return nil
}
