// Package admincli implements the operator commands of taarezctl.
package admincli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/taarez/taarez-backend/internal/domain"
	"github.com/taarez/taarez-backend/internal/identity"
	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// ErrPasswordMismatch is returned when the confirmation prompt differs.
var ErrPasswordMismatch = errors.New("passwords do not match")

// UserCreator creates accounts with an explicit role.
type UserCreator interface {
	CreateUser(ctx context.Context, input identity.CreateUserInput) (*domain.User, error)
}

// SeedUser describes one development account.
type SeedUser struct {
	Email       string
	FirstName   string
	LastName    string
	Role        domain.Role
	IsSuperuser bool
}

// SeedPassword is shared by every seeded account.
const SeedPassword = "password123"

// DefaultSeedUsers is one account per role.
var DefaultSeedUsers = []SeedUser{
	{Email: "test@example.com", FirstName: "Test", LastName: "Customer", Role: domain.RoleCustomer},
	{Email: "designer@example.com", FirstName: "Test", LastName: "Designer", Role: domain.RoleDesigner},
	{Email: "tailor@example.com", FirstName: "Test", LastName: "Tailor", Role: domain.RoleTailor},
	{Email: "admin@example.com", FirstName: "Test", LastName: "Admin", Role: domain.RoleAdmin, IsSuperuser: true},
}

// Seed creates the given accounts, skipping emails that already exist.
// It returns how many accounts were created.
func Seed(ctx context.Context, users UserCreator, seed []SeedUser, out io.Writer) (int, error) {
	created := 0
	for _, su := range seed {
		_, err := users.CreateUser(ctx, identity.CreateUserInput{
			Email:       su.Email,
			Password:    SeedPassword,
			FirstName:   su.FirstName,
			LastName:    su.LastName,
			Role:        su.Role,
			IsSuperuser: su.IsSuperuser,
		})
		if errors.Is(err, identity.ErrEmailExists) {
			fmt.Fprintf(out, "skip    %-24s already exists\n", su.Email)
			continue
		}
		if err != nil {
			return created, fmt.Errorf("seed %s: %w", su.Email, err)
		}
		created++
		fmt.Fprintf(out, "created %-24s role=%s superuser=%t\n", su.Email, su.Role, su.IsSuperuser)
	}
	return created, nil
}

// CreateSuperuser creates an admin account with the superuser flag set.
// The password policy is checked before users is touched.
func CreateSuperuser(ctx context.Context, users UserCreator, email string, password []byte, out io.Writer) (*domain.User, error) {
	if err := identity.CheckPassword(string(password)); err != nil {
		return nil, fmt.Errorf("create superuser: %w", err)
	}

	user, err := users.CreateUser(ctx, identity.CreateUserInput{
		Email:       email,
		Password:    string(password),
		Role:        domain.RoleAdmin,
		IsSuperuser: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create superuser: %w", err)
	}

	fmt.Fprintf(out, "superuser %s created (id %s)\n", user.Email, user.ID)
	return user, nil
}

// PromptPassword reads a password twice from the terminal without echo.
// The returned slice should be wiped by the caller when no longer needed.
func PromptPassword(w io.Writer) ([]byte, error) {
	first, err := prompt(w, "Password: ")
	if err != nil {
		return nil, err
	}

	second, err := prompt(w, "Repeat password: ")
	if err != nil {
		Wipe(first)
		return nil, err
	}
	defer Wipe(second)

	if !bytes.Equal(first, second) {
		Wipe(first)
		return nil, ErrPasswordMismatch
	}
	return first, nil
}

func prompt(w io.Writer, label string) ([]byte, error) {
	if _, err := fmt.Fprint(w, label); err != nil {
		return nil, err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return nil, fmt.Errorf("read password: %w", err)
	}
	return pw, nil
}

// Wipe zeroes b in place.
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
