package service

import (
	"context"
	"testing"
	"time"

	"modaix-api/internal/config"
	"modaix-api/internal/domain"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"golang.org/x/crypto/bcrypt"
)

func newTestAuthService() (AuthService, *mockUserRepository, *mockRefreshTokenRepository) {
	userRepo := newMockUserRepository()
	refreshTokenRepo := newMockRefreshTokenRepository()
	jwtCfg := config.JWTConfig{Secret: "test-secret", AccessExpiry: 15, RefreshExpiry: 7}
	return NewAuthService(userRepo, refreshTokenRepo, jwtCfg), userRepo, refreshTokenRepo
}

func TestProperty_RegistrationHashesPasswords(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("passwords are bcrypt hashed, never stored as plaintext", prop.ForAll(
		func(name, email, password string) bool {
			svc, _, _ := newTestAuthService()
			ctx := context.Background()

			user, tokens, err := svc.Register(ctx, name, email, password)
			if err != nil {
				t.Logf("FAIL: registration error: %v", err)
				return false
			}

			if user.PasswordHash == nil {
				t.Logf("FAIL: no password hash stored")
				return false
			}
			if *user.PasswordHash == password {
				t.Logf("FAIL: password stored as plaintext")
				return false
			}
			if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)); err != nil {
				t.Logf("FAIL: stored hash does not verify: %v", err)
				return false
			}

			// Registration doubles as login
			if tokens == nil || tokens.AccessToken == "" || tokens.RefreshToken == "" {
				t.Logf("FAIL: registration did not issue tokens")
				return false
			}
			return true
		},
		gen.RegexMatch(`[A-Z][a-z]{2,12}`),
		gen.RegexMatch(`[a-z]{5,10}@[a-z]{3,8}\.(com|org|net)`),
		gen.RegexMatch(`[A-Za-z0-9!@#$%]{8,20}`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestRegister_DuplicateEmailConflicts(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "Ana", "ana@example.com", "password123"); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}

	_, _, err := svc.Register(ctx, "Otra Ana", "ana@example.com", "different456")
	if err == nil {
		t.Fatal("expected conflict for duplicate email")
	}
	if domain.KindOf(err) != domain.KindConflict {
		t.Errorf("error kind = %s, want conflict", domain.KindOf(err))
	}
}

func TestLogin(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "Ana", "ana@example.com", "password123"); err != nil {
		t.Fatalf("registration failed: %v", err)
	}

	t.Run("correct password succeeds", func(t *testing.T) {
		user, tokens, err := svc.Login(ctx, "ana@example.com", "password123")
		if err != nil {
			t.Fatalf("login failed: %v", err)
		}
		if user.Email != "ana@example.com" {
			t.Errorf("user email = %q", user.Email)
		}
		if tokens.AccessToken == "" {
			t.Error("no access token issued")
		}
	})

	t.Run("wrong password rejected", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "ana@example.com", "wrongpass")
		if err != ErrInvalidCredentials {
			t.Errorf("err = %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("unknown email rejected with same error", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "nobody@example.com", "password123")
		if err != ErrInvalidCredentials {
			t.Errorf("err = %v, want ErrInvalidCredentials", err)
		}
	})
}

func TestLogin_SocialOnlyAccountHasNoPassword(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	if _, _, err := svc.SocialLogin(ctx, "google-uid-1", "social@example.com", "Social User"); err != nil {
		t.Fatalf("social login failed: %v", err)
	}

	_, _, err := svc.Login(ctx, "social@example.com", "anything")
	if err != ErrInvalidCredentials {
		t.Errorf("password login against a social-only account: err = %v, want ErrInvalidCredentials", err)
	}
}

func TestSocialLogin_Reconciliation(t *testing.T) {
	t.Run("creates a fresh passwordless account", func(t *testing.T) {
		svc, userRepo, _ := newTestAuthService()
		ctx := context.Background()

		user, tokens, err := svc.SocialLogin(ctx, "uid-1", "new@example.com", "New User")
		if err != nil {
			t.Fatalf("social login failed: %v", err)
		}
		if user.PasswordHash != nil {
			t.Error("social account must not carry a password hash")
		}
		if user.ProviderUID == nil || *user.ProviderUID != "uid-1" {
			t.Error("provider UID not stored")
		}
		if tokens.AccessToken == "" {
			t.Error("no access token issued")
		}

		if _, err := userRepo.FindByEmail(ctx, "new@example.com"); err != nil {
			t.Errorf("account was not persisted: %v", err)
		}
	})

	t.Run("links provider to an existing email account", func(t *testing.T) {
		svc, _, _ := newTestAuthService()
		ctx := context.Background()

		registered, _, err := svc.Register(ctx, "Ana", "ana@example.com", "password123")
		if err != nil {
			t.Fatalf("registration failed: %v", err)
		}

		user, _, err := svc.SocialLogin(ctx, "uid-2", "ana@example.com", "Ana G")
		if err != nil {
			t.Fatalf("social login failed: %v", err)
		}
		if user.ID != registered.ID {
			t.Error("social login must reuse the existing account for the email")
		}
		if user.ProviderUID == nil || *user.ProviderUID != "uid-2" {
			t.Error("provider was not linked")
		}
	})

	t.Run("returning provider UID signs into the same account", func(t *testing.T) {
		svc, _, _ := newTestAuthService()
		ctx := context.Background()

		first, _, err := svc.SocialLogin(ctx, "uid-3", "rep@example.com", "Rep")
		if err != nil {
			t.Fatalf("social login failed: %v", err)
		}
		second, _, err := svc.SocialLogin(ctx, "uid-3", "rep@example.com", "Rep")
		if err != nil {
			t.Fatalf("second social login failed: %v", err)
		}
		if first.ID != second.ID {
			t.Error("same provider UID must map to the same account")
		}
	})
}

func TestValidateToken_RoundTrip(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	user, tokens, err := svc.Register(ctx, "Ana", "ana@example.com", "password123")
	if err != nil {
		t.Fatalf("registration failed: %v", err)
	}

	claims, err := svc.ValidateToken(tokens.AccessToken)
	if err != nil {
		t.Fatalf("token validation failed: %v", err)
	}
	if claims.UserID != user.ID {
		t.Errorf("claims user ID = %s, want %s", claims.UserID, user.ID)
	}
	if claims.Role != domain.RoleCustomer {
		t.Errorf("claims role = %q, want customer", claims.Role)
	}
}

func TestValidateToken_RejectsGarbage(t *testing.T) {
	svc, _, _ := newTestAuthService()
	if _, err := svc.ValidateToken("not.a.token"); err == nil {
		t.Fatal("expected error for malformed token")
	}
}

func TestTokenLifetimesFollowConfig(t *testing.T) {
	userRepo := newMockUserRepository()
	refreshTokenRepo := newMockRefreshTokenRepository()
	svc := NewAuthService(userRepo, refreshTokenRepo, config.JWTConfig{
		Secret:        "test-secret",
		AccessExpiry:  5,
		RefreshExpiry: 2,
	})
	ctx := context.Background()

	_, tokens, err := svc.Register(ctx, "Ana", "ana@example.com", "password123")
	if err != nil {
		t.Fatalf("registration failed: %v", err)
	}

	claims, err := svc.ValidateToken(tokens.AccessToken)
	if err != nil {
		t.Fatalf("access token did not validate: %v", err)
	}
	wantAccess := time.Now().Add(5 * time.Minute)
	if drift := claims.ExpiresAt.Time.Sub(wantAccess); drift < -time.Minute || drift > time.Minute {
		t.Errorf("access token expires at %v, want ~%v", claims.ExpiresAt.Time, wantAccess)
	}

	stored, err := refreshTokenRepo.FindByToken(ctx, tokens.RefreshToken)
	if err != nil {
		t.Fatalf("stored refresh token not found: %v", err)
	}
	wantRefresh := time.Now().Add(2 * 24 * time.Hour)
	if drift := stored.ExpiresAt.Sub(wantRefresh); drift < -time.Minute || drift > time.Minute {
		t.Errorf("refresh token expires at %v, want ~%v", stored.ExpiresAt, wantRefresh)
	}
}

func TestRefreshAndLogout(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	_, tokens, err := svc.Register(ctx, "Ana", "ana@example.com", "password123")
	if err != nil {
		t.Fatalf("registration failed: %v", err)
	}

	accessToken, err := svc.RefreshToken(ctx, tokens.RefreshToken)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if accessToken == "" {
		t.Fatal("refresh returned empty access token")
	}

	if err := svc.Logout(ctx, tokens.RefreshToken); err != nil {
		t.Fatalf("logout failed: %v", err)
	}

	// A revoked refresh token no longer refreshes
	if _, err := svc.RefreshToken(ctx, tokens.RefreshToken); err != ErrInvalidToken {
		t.Errorf("refresh after logout: err = %v, want ErrInvalidToken", err)
	}

	// Logging out twice, or with an unknown token, is a no-op
	if err := svc.Logout(ctx, tokens.RefreshToken); err != nil {
		t.Errorf("second logout errored: %v", err)
	}
	if err := svc.Logout(ctx, "never-issued"); err != nil {
		t.Errorf("logout with unknown token errored: %v", err)
	}
}

func TestUpdateProfile_PartialContact(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	user, _, err := svc.Register(ctx, "Ana", "ana@example.com", "password123")
	if err != nil {
		t.Fatalf("registration failed: %v", err)
	}

	phone := "5551234"
	city := "Guadalajara"
	updated, err := svc.UpdateProfile(ctx, user.ID, "Ana Torres", domain.ContactInfo{
		Phone: &phone,
		City:  &city,
	})
	if err != nil {
		t.Fatalf("profile update failed: %v", err)
	}
	if updated.Name != "Ana Torres" {
		t.Errorf("name = %q, want %q", updated.Name, "Ana Torres")
	}
	if updated.Phone == nil || *updated.Phone != phone {
		t.Error("phone was not updated")
	}
	if updated.Address != nil {
		t.Error("address must stay untouched when omitted")
	}

	// Empty name keeps the stored one
	kept, err := svc.UpdateProfile(ctx, user.ID, "", domain.ContactInfo{})
	if err != nil {
		t.Fatalf("profile update failed: %v", err)
	}
	if kept.Name != "Ana Torres" {
		t.Errorf("empty name overwrote the stored name: %q", kept.Name)
	}
	if kept.City == nil || *kept.City != city {
		t.Error("city was lost on a no-op update")
	}
}
