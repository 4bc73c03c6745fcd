package identity

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rakbuku/rakbuku/pkg/database"
	"github.com/rakbuku/rakbuku/pkg/errcodes"
	"github.com/rakbuku/rakbuku/pkg/models"
	"github.com/uptrace/bun"
	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the cost factor for bcrypt hashing.
const BcryptCost = 12

// Claims are the claims of a locally issued access token. The subject is the
// user id.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// LocalProvider keeps accounts in the users table and issues HS256 tokens.
// Tokens are stateless, so signing out doesn't revoke them.
type LocalProvider struct {
	db          *bun.DB
	jwtSecret   []byte
	tokenExpiry time.Duration
}

func NewLocalProvider(db *bun.DB, jwtSecret string, tokenExpiry time.Duration) *LocalProvider {
	return &LocalProvider{
		db:          db,
		jwtSecret:   []byte(jwtSecret),
		tokenExpiry: tokenExpiry,
	}
}

func (p *LocalProvider) UserFromToken(ctx context.Context, token string) (*User, error) {
	claims, err := p.ValidateToken(token)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user := &models.User{}
	err = p.db.NewSelect().
		Model(user).
		Where("u.id = ?", claims.Subject).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidToken
		}
		return nil, errors.WithStack(err)
	}
	return &User{ID: user.ID, Email: user.Email}, nil
}

func (p *LocalProvider) SignUp(ctx context.Context, email, password string) (*User, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &models.User{
		ID:           uuid.NewString(),
		CreatedAt:    now,
		UpdatedAt:    now,
		Email:        normalizeEmail(email),
		PasswordHash: hash,
	}
	_, err = p.db.NewInsert().Model(user).Exec(ctx)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, errcodes.ValidationError("User already registered")
		}
		return nil, errors.WithStack(err)
	}
	return &User{ID: user.ID, Email: user.Email}, nil
}

func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (*Session, error) {
	user := &models.User{}
	err := p.db.NewSelect().
		Model(user).
		Where("u.email = ?", normalizeEmail(email)).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.InvalidCredentials()
		}
		return nil, errors.WithStack(err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, errcodes.InvalidCredentials()
	}

	token, err := p.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	return &Session{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int(p.tokenExpiry.Seconds()),
		User:        &User{ID: user.ID, Email: user.Email},
	}, nil
}

func (p *LocalProvider) SignOut(_ context.Context, token string) error {
	if _, err := p.ValidateToken(token); err != nil {
		return ErrInvalidToken
	}
	return nil
}

// GenerateToken creates a new JWT token for the user.
func (p *LocalProvider) GenerateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(p.tokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(p.jwtSecret)
	if err != nil {
		return "", errors.WithStack(err)
	}
	return signedToken, nil
}

// ValidateToken validates a JWT token and returns the claims.
func (p *LocalProvider) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return p.jwtSecret, nil
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// HashPassword hashes a password using bcrypt.
func HashPassword(password string) (string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", errors.WithStack(err)
	}
	return string(hashedPassword), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
