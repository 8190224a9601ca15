package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"blog-backend/internal/apperr"
	"blog-backend/internal/repository/memory"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func newAuthService() (*AuthService, *memory.Users) {
	users := memory.NewUsers()
	return NewAuthService(users, testSecret), users
}

func TestPasswordRoundTrip(t *testing.T) {
	hashed, err := HashPassword("pass1")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hashed == "pass1" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !CheckPassword("pass1", hashed) {
		t.Fatal("correct password should match")
	}
	if CheckPassword("wrong", hashed) {
		t.Fatal("wrong password should not match")
	}
}

func TestSignup(t *testing.T) {
	auth, _ := newAuthService()
	ctx := context.Background()

	userID, err := auth.Signup(ctx, "a@x.com", "A", "pass1")
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if userID == "" {
		t.Fatal("Signup returned empty user id")
	}

	user, err := auth.User(ctx, userID)
	if err != nil {
		t.Fatalf("User: %v", err)
	}
	if user.Status != "I am new!" {
		t.Fatalf("Status = %q, want default status", user.Status)
	}
	if len(user.Posts) != 0 {
		t.Fatalf("Posts = %v, want empty", user.Posts)
	}
}

func TestSignupValidation(t *testing.T) {
	auth, _ := newAuthService()
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		username string
		password string
	}{
		{"malformed email", "not-an-email", "A", "pass1"},
		{"short password", "a@x.com", "A", "4chr"},
		{"missing name", "a@x.com", "", "pass1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.Signup(ctx, tt.email, tt.username, tt.password)
			var ae *apperr.Error
			if !errors.As(err, &ae) || ae.Kind != apperr.Validation {
				t.Fatalf("Signup() err = %v, want validation failure", err)
			}
			if len(ae.Data) == 0 {
				t.Fatal("validation failure should carry field detail")
			}
		})
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	auth, users := newAuthService()
	ctx := context.Background()

	if _, err := auth.Signup(ctx, "a@x.com", "A", "pass1"); err != nil {
		t.Fatalf("first Signup: %v", err)
	}
	_, err := auth.Signup(ctx, "a@x.com", "B", "pass2")
	var ae *apperr.Error
	if !errors.As(err, &ae) || ae.Kind != apperr.Validation {
		t.Fatalf("duplicate Signup() err = %v, want validation failure", err)
	}

	// No second identity may exist.
	exists, err := users.EmailExists(ctx, "a@x.com")
	if err != nil || !exists {
		t.Fatalf("EmailExists = %v, %v", exists, err)
	}
	user, err := users.GetByEmail(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if user.Name != "A" {
		t.Fatalf("stored user = %q, want the first signup only", user.Name)
	}
}

func TestLogin(t *testing.T) {
	auth, _ := newAuthService()
	ctx := context.Background()

	userID, err := auth.Signup(ctx, "a@x.com", "A", "pass1")
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}

	t.Run("unknown email", func(t *testing.T) {
		_, _, err := auth.Login(ctx, "b@x.com", "pass1")
		var ae *apperr.Error
		if !errors.As(err, &ae) || ae.Kind != apperr.NotFound {
			t.Fatalf("Login() err = %v, want not found", err)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := auth.Login(ctx, "a@x.com", "wrong")
		var ae *apperr.Error
		if !errors.As(err, &ae) || ae.Kind != apperr.Unauthorized {
			t.Fatalf("Login() err = %v, want unauthorized", err)
		}
	})

	t.Run("success", func(t *testing.T) {
		token, gotID, err := auth.Login(ctx, "a@x.com", "pass1")
		if err != nil {
			t.Fatalf("Login: %v", err)
		}
		if gotID != userID {
			t.Fatalf("Login userID = %q, want %q", gotID, userID)
		}
		decoded, err := auth.VerifyToken(token)
		if err != nil {
			t.Fatalf("VerifyToken: %v", err)
		}
		if decoded != userID {
			t.Fatalf("token userId = %q, want %q", decoded, userID)
		}
	})
}

func TestVerifyTokenFailures(t *testing.T) {
	auth, _ := newAuthService()

	t.Run("garbage", func(t *testing.T) {
		if _, err := auth.VerifyToken("not-a-token"); err == nil {
			t.Fatal("garbage token should not verify")
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewAuthService(memory.NewUsers(), "other-secret")
		token, err := other.IssueToken("someid", "a@x.com")
		if err != nil {
			t.Fatalf("IssueToken: %v", err)
		}
		if _, err := auth.VerifyToken(token); err == nil {
			t.Fatal("token signed with another secret should not verify")
		}
	})

	t.Run("expired", func(t *testing.T) {
		claims := jwt.MapClaims{
			"email":  "a@x.com",
			"userId": "someid",
			"exp":    time.Now().Add(-2 * time.Hour).Unix(),
			"iat":    time.Now().Add(-3 * time.Hour).Unix(),
		}
		expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		if _, err := auth.VerifyToken(expired); err == nil {
			t.Fatal("expired token should not verify")
		}
	})

	t.Run("missing userId claim", func(t *testing.T) {
		claims := jwt.MapClaims{
			"email": "a@x.com",
			"exp":   time.Now().Add(time.Hour).Unix(),
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		if _, err := auth.VerifyToken(token); err == nil {
			t.Fatal("token without userId should not verify")
		}
	})
}

func TestStatus(t *testing.T) {
	auth, _ := newAuthService()
	ctx := context.Background()

	userID, err := auth.Signup(ctx, "a@x.com", "A", "pass1")
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}

	status, err := auth.Status(ctx, userID)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status != "I am new!" {
		t.Fatalf("Status = %q, want default", status)
	}

	if err := auth.UpdateStatus(ctx, userID, "Shipping"); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	status, err = auth.Status(ctx, userID)
	if err != nil {
		t.Fatalf("Status after update: %v", err)
	}
	if status != "Shipping" {
		t.Fatalf("Status = %q, want updated value", status)
	}

	t.Run("empty status", func(t *testing.T) {
		err := auth.UpdateStatus(ctx, userID, "")
		var ae *apperr.Error
		if !errors.As(err, &ae) || ae.Kind != apperr.Validation {
			t.Fatalf("UpdateStatus(\"\") err = %v, want validation failure", err)
		}
	})

	t.Run("vanished user", func(t *testing.T) {
		_, err := auth.Status(ctx, "ffffffffffffffffffffffff")
		var ae *apperr.Error
		if !errors.As(err, &ae) || ae.Kind != apperr.NotFound {
			t.Fatalf("Status() err = %v, want not found", err)
		}
	})
}
