package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"blog-backend/internal/apperr"
	"blog-backend/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

const (
	bcryptCost = 12
	tokenTTL   = time.Hour
)

var validate = validator.New()

// HashPassword produces a one-way hash of a plaintext secret suitable for
// storage.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// CheckPassword reports whether a plaintext secret matches a stored hash.
func CheckPassword(password, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)) == nil
}

// AuthService handles identity, credential, and token logic
type AuthService struct {
	users     UserStore
	jwtSecret string
}

// NewAuthService creates a new auth service
func NewAuthService(users UserStore, jwtSecret string) *AuthService {
	return &AuthService{users: users, jwtSecret: jwtSecret}
}

type signupInput struct {
	Email    string `validate:"required,email"`
	Name     string `validate:"required"`
	Password string `validate:"required,min=5"`
}

// Signup validates and registers a new identity, returning its id.
// A malformed email, short password, or already-registered email is a
// validation failure; nothing is stored in those cases.
func (s *AuthService) Signup(ctx context.Context, email, name, password string) (string, error) {
	in := signupInput{Email: email, Name: name, Password: password}
	if err := validate.Struct(in); err != nil {
		return "", validationError("Validation failed, entered data is incorrect.", err)
	}

	exists, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return "", apperr.NewInternal("Error while creating the user", err)
	}
	if exists {
		return "", apperr.NewValidation("Validation failed, entered data is incorrect.", apperr.FieldError{
			Message: "User with that email already exists, please choose another one",
			Param:   "email",
		})
	}

	hashed, err := HashPassword(password)
	if err != nil {
		return "", apperr.NewInternal("Error while creating the user", err)
	}

	user := &models.User{
		Email:    email,
		Password: hashed,
		Name:     name,
		Status:   models.DefaultUserStatus,
		Posts:    []primitive.ObjectID{},
	}
	id, err := s.users.Create(ctx, user)
	if err != nil {
		return "", apperr.NewInternal("Error while creating the user", err)
	}

	return id.Hex(), nil
}

// Login verifies credentials and issues a session token. Unknown emails are
// not found; wrong passwords are unauthorized.
func (s *AuthService) Login(ctx context.Context, email, password string) (token, userID string, err error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		var ae *apperr.Error
		if errors.As(err, &ae) {
			return "", "", err
		}
		return "", "", apperr.NewInternal("Error while logging in", err)
	}

	if !CheckPassword(password, user.Password) {
		return "", "", apperr.NewUnauthorized("Invalid credentials")
	}

	token, err = s.IssueToken(user.ID.Hex(), user.Email)
	if err != nil {
		return "", "", apperr.NewInternal("Error while logging in", err)
	}

	return token, user.ID.Hex(), nil
}

// IssueToken signs a session token embedding the identity id and email,
// valid for one hour.
func (s *AuthService) IssueToken(userID, email string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"email":  email,
		"userId": userID,
		"exp":    now.Add(tokenTTL).Unix(),
		"iat":    now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// VerifyToken validates signature and expiry and returns the embedded
// identity id. Any structural or cryptographic failure is an authentication
// failure.
func (s *AuthService) VerifyToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return "", errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid token claims")
	}
	userID, ok := claims["userId"].(string)
	if !ok {
		return "", errors.New("userId not found in token")
	}

	return userID, nil
}

// User retrieves the identity behind an id.
func (s *AuthService) User(ctx context.Context, userID string) (*models.User, error) {
	id, err := parseID(userID)
	if err != nil {
		return nil, apperr.NewNotFound("User not found")
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		var ae *apperr.Error
		if errors.As(err, &ae) {
			return nil, err
		}
		return nil, apperr.NewInternal("Error while getting user", err)
	}
	return user, nil
}

// Status reads the status string of an identity.
func (s *AuthService) Status(ctx context.Context, userID string) (string, error) {
	user, err := s.User(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.Status, nil
}

// UpdateStatus writes the status string of an identity.
func (s *AuthService) UpdateStatus(ctx context.Context, userID, status string) error {
	if status == "" {
		return apperr.NewValidation("Validation failed, entered data is incorrect.", apperr.FieldError{
			Message: "Status cannot be empty",
			Param:   "status",
		})
	}
	id, err := parseID(userID)
	if err != nil {
		return apperr.NewNotFound("User not found")
	}
	if err := s.users.UpdateStatus(ctx, id, status); err != nil {
		var ae *apperr.Error
		if errors.As(err, &ae) {
			return err
		}
		return apperr.NewInternal("Error while updating status", err)
	}
	return nil
}

func parseID(hex string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(hex)
}

// validationError translates validator failures into the taxonomy's
// field-level shape.
func validationError(message string, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.NewInternal("Error while validating input", err)
	}

	fields := make([]apperr.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apperr.FieldError{
			Message: fieldMessage(fe),
			Param:   fe.Field(),
		})
	}
	return apperr.NewValidation(message, fields...)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "email":
		return "Please enter a valid email."
	case "min":
		return fmt.Sprintf("%s should be at least %s characters long", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is required", fe.Field())
	}
}
