package seed

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/accounts-service/internal/core/domain"
	"github.com/99minutos/accounts-service/internal/infrastructure/db/memory"
	"github.com/99minutos/accounts-service/pkg/password"
)

const seedYAML = `
users:
  - full_name: Root Admin
    birth_date: 1990-01-01
    email: admin@example.com
    password: change-me-now
    role: admin
  - full_name: Plain User
    birth_date: "1995-06-15"
    email: plain@example.com
    password: secret1
`

func writeSeed(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	return path
}

func TestFromFile_CreatesUsers(t *testing.T) {
	repo := memory.NewUserRepository()
	hasher := password.NewHasher(bcrypt.MinCost)
	ctx := context.Background()

	res, err := FromFile(ctx, writeSeed(t, seedYAML), repo, hasher, zerolog.Nop())
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if res.Created != 2 {
		t.Fatalf("expected 2 created, got %+v", res)
	}

	admin, err := repo.FindByEmail(ctx, "admin@example.com")
	if err != nil {
		t.Fatalf("admin not found: %v", err)
	}
	if admin.Role != domain.RoleAdmin || !admin.IsActive {
		t.Fatalf("unexpected admin: %+v", admin)
	}
	if ok, _ := hasher.Compare("change-me-now", admin.PasswordHash); !ok {
		t.Fatalf("admin password not hashed correctly")
	}

	plain, _ := repo.FindByEmail(ctx, "plain@example.com")
	if plain.Role != domain.RoleUser {
		t.Fatalf("expected default role user, got %q", plain.Role)
	}
	if plain.BirthDate.Year() != 1995 {
		t.Fatalf("unexpected birth date %v", plain.BirthDate)
	}
}

func TestFromFile_Idempotent(t *testing.T) {
	repo := memory.NewUserRepository()
	hasher := password.NewHasher(bcrypt.MinCost)
	path := writeSeed(t, seedYAML)

	if _, err := FromFile(context.Background(), path, repo, hasher, zerolog.Nop()); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	res, err := FromFile(context.Background(), path, repo, hasher, zerolog.Nop())
	if err != nil {
		t.Fatalf("second seed: %v", err)
	}
	if res.Created != 0 || res.Skipped != 2 {
		t.Fatalf("expected everything skipped, got %+v", res)
	}
}

func TestFromFile_PromotesExistingAccount(t *testing.T) {
	repo := memory.NewUserRepository()
	hasher := password.NewHasher(bcrypt.MinCost)
	ctx := context.Background()

	existing, err := repo.Create(ctx, &domain.User{Email: "admin@example.com", FullName: "Early Bird", PasswordHash: "x", Role: domain.RoleUser, IsActive: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	res, err := FromFile(ctx, writeSeed(t, seedYAML), repo, hasher, zerolog.Nop())
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if res.Updated != 1 || res.Created != 1 {
		t.Fatalf("unexpected result %+v", res)
	}

	promoted, _ := repo.FindByID(ctx, existing.ID)
	if promoted.Role != domain.RoleAdmin {
		t.Fatalf("expected promotion to admin, got %q", promoted.Role)
	}
	if promoted.PasswordHash != "x" {
		t.Fatalf("existing password must be kept")
	}
}

func TestLoad_Rejects(t *testing.T) {
	cases := map[string]string{
		"bad role":       "users:\n  - {full_name: A B, birth_date: 1990-01-01, email: a@b.co, password: secret1, role: root}\n",
		"short password": "users:\n  - {full_name: A B, birth_date: 1990-01-01, email: a@b.co, password: abc}\n",
		"bad email":      "users:\n  - {full_name: A B, birth_date: 1990-01-01, email: nope, password: secret1}\n",
		"no birth date":  "users:\n  - {full_name: A B, email: a@b.co, password: secret1}\n",
		"not yaml":       "users: [",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeSeed(t, content)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestFromFile_EmptyPath(t *testing.T) {
	res, err := FromFile(context.Background(), "", memory.NewUserRepository(), password.NewHasher(bcrypt.MinCost), zerolog.Nop())
	if err != nil || res != (Result{}) {
		t.Fatalf("expected no-op, got %+v, %v", res, err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil || !strings.Contains(err.Error(), "read seed file") {
		t.Fatalf("expected read error, got %v", err)
	}
}
