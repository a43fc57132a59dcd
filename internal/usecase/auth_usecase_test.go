package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"naijashop/internal/config"
	"naijashop/internal/domain/model"
	repo "naijashop/internal/repository"
	"naijashop/internal/usecase"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

type userRepoMock struct {
	repo.UserRepository
	mock.Mock
}

func (m *userRepoMock) Create(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *userRepoMock) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *userRepoMock) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *userRepoMock) TouchLastLogin(ctx context.Context, userID int64, at time.Time) error {
	return m.Called(ctx, userID, at).Error(0)
}

type cartCountMock struct {
	repo.CartRepository
	mock.Mock
}

func (m *cartCountMock) CountByUserID(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

type wishlistCountMock struct {
	repo.WishlistRepository
	mock.Mock
}

func (m *wishlistCountMock) CountByUserID(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

type authValidatorMock struct{ mock.Mock }

func (m *authValidatorMock) ValidateRegister(ctx context.Context, in usecase.RegisterInput) error {
	return m.Called(ctx, in).Error(0)
}

func (m *authValidatorMock) ValidateLogin(ctx context.Context, email, password string) error {
	return m.Called(ctx, email, password).Error(0)
}

type authMocks struct {
	users     *userRepoMock
	cart      *cartCountMock
	wishlist  *wishlistCountMock
	validator *authValidatorMock
	uc        *usecase.AuthUsecase
}

func newAuthMocks() *authMocks {
	m := &authMocks{
		users:     new(userRepoMock),
		cart:      new(cartCountMock),
		wishlist:  new(wishlistCountMock),
		validator: new(authValidatorMock),
	}
	cfg := config.Config{JWTSecret: testSecret, TokenTTL: time.Hour, BcryptCost: bcrypt.MinCost}
	m.uc = usecase.NewAuthUsecase(cfg, m.users, m.cart, m.wishlist, m.validator)
	return m
}

func parseClaims(t *testing.T, token string) jwt.MapClaims {
	t.Helper()
	parsed, err := jwt.Parse(token, func(tok *jwt.Token) (any, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	return parsed.Claims.(jwt.MapClaims)
}

func hashed(t *testing.T, pw string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

// =====================
// Register
// =====================

func TestAuthUsecase_Register_Success(t *testing.T) {
	m := newAuthMocks()
	ctx := context.Background()

	want := usecase.RegisterInput{FirstName: "Ada", LastName: "Obi", Email: "ada@example.com", Password: "secret1", Role: "customer"}
	m.validator.On("ValidateRegister", ctx, want).Return(nil)
	m.users.On("Create", ctx, mock.AnythingOfType("*model.User")).
		Run(func(args mock.Arguments) {
			u := args.Get(1).(*model.User)
			u.ID = 42
			u.CreatedAt = time.Now()
		}).
		Return(nil)

	res, err := m.uc.Register(ctx, usecase.RegisterInput{FirstName: " Ada ", LastName: "Obi", Email: " ADA@example.com ", Password: "secret1"})
	require.NoError(t, err)

	assert.Equal(t, int64(42), res.User.ID)
	assert.Equal(t, "ada@example.com", res.User.Email)
	assert.Equal(t, "Ada Obi", res.User.FullName)
	assert.Equal(t, model.RoleCustomer, res.User.Role)
	assert.Equal(t, "Nigeria", res.User.Country)
	assert.True(t, res.User.IsActive)

	created := m.users.Calls[0].Arguments.Get(1).(*model.User)
	assert.NotEqual(t, "secret1", created.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("secret1")))

	claims := parseClaims(t, res.Token)
	assert.Equal(t, "42", claims["sub"])
	assert.Equal(t, "customer", claims["role"])
	assert.EqualValues(t, 0, claims["tv"])

	m.validator.AssertExpectations(t)
	m.users.AssertExpectations(t)
}

func TestAuthUsecase_Register_SellerKeepsBusinessInfo(t *testing.T) {
	m := newAuthMocks()
	ctx := context.Background()
	m.validator.On("ValidateRegister", ctx, mock.Anything).Return(nil)
	m.users.On("Create", ctx, mock.MatchedBy(func(u *model.User) bool {
		return u.Role == model.RoleSeller && u.BusinessName == "Ada Stores"
	})).Return(nil)

	res, err := m.uc.Register(ctx, usecase.RegisterInput{
		FirstName: "Ada", LastName: "Obi", Email: "ada@example.com", Password: "secret1",
		Role: "seller", BusinessName: " Ada Stores ",
	})
	require.NoError(t, err)
	assert.Equal(t, model.RoleSeller, res.User.Role)
	m.users.AssertExpectations(t)
}

func TestAuthUsecase_Register_ValidationErrorStops(t *testing.T) {
	m := newAuthMocks()
	ctx := context.Background()
	m.validator.On("ValidateRegister", ctx, mock.Anything).Return(usecase.NewHTTPError(http.StatusBadRequest, "Invalid email format"))

	_, err := m.uc.Register(ctx, usecase.RegisterInput{Email: "nope"})
	assertHTTPError(t, err, http.StatusBadRequest, "Invalid email format")
	m.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthUsecase_Register_DuplicateRace(t *testing.T) {
	m := newAuthMocks()
	ctx := context.Background()
	m.validator.On("ValidateRegister", ctx, mock.Anything).Return(nil)
	m.users.On("Create", ctx, mock.Anything).Return(repo.ErrDuplicate)

	_, err := m.uc.Register(ctx, usecase.RegisterInput{FirstName: "A", LastName: "B", Email: "a@b.com", Password: "secret1"})
	assertHTTPError(t, err, http.StatusBadRequest, "User already exists with this email")
}

func TestAuthUsecase_Register_DBError(t *testing.T) {
	m := newAuthMocks()
	ctx := context.Background()
	m.validator.On("ValidateRegister", ctx, mock.Anything).Return(nil)
	m.users.On("Create", ctx, mock.Anything).Return(errors.New("conn reset"))

	_, err := m.uc.Register(ctx, usecase.RegisterInput{FirstName: "A", LastName: "B", Email: "a@b.com", Password: "secret1"})
	assertHTTPError(t, err, http.StatusInternalServerError, "db error")
}

// =====================
// Login
// =====================

func TestAuthUsecase_Login_Success(t *testing.T) {
	m := newAuthMocks()
	ctx := context.Background()
	user := &model.User{ID: 7, Email: "ada@example.com", PasswordHash: hashed(t, "secret1"), Role: model.RoleAdmin, TokenVersion: 3, IsActive: true}

	m.validator.On("ValidateLogin", ctx, "ada@example.com", "secret1").Return(nil)
	m.users.On("FindByEmail", ctx, "ada@example.com").Return(user, nil)
	m.users.On("TouchLastLogin", ctx, int64(7), mock.AnythingOfType("time.Time")).Return(nil)

	res, err := m.uc.Login(ctx, "Ada@Example.com", "secret1")
	require.NoError(t, err)
	require.NotNil(t, res.User.LastLoginAt)

	claims := parseClaims(t, res.Token)
	assert.Equal(t, "7", claims["sub"])
	assert.Equal(t, "admin", claims["role"])
	assert.EqualValues(t, 3, claims["tv"])
	m.users.AssertExpectations(t)
}

func TestAuthUsecase_Login_Rejections(t *testing.T) {
	active := &model.User{ID: 7, Email: "ada@example.com", PasswordHash: hashed(t, "secret1"), IsActive: true}
	inactive := &model.User{ID: 8, Email: "old@example.com", PasswordHash: hashed(t, "secret1"), IsActive: false}

	tests := []struct {
		name     string
		email    string
		password string
		found    *model.User
		findErr  error
		status   int
		msg      string
	}{
		{name: "unknown email", email: "who@example.com", password: "secret1", findErr: repo.ErrNotFound, status: http.StatusUnauthorized, msg: "Invalid credentials"},
		{name: "wrong password", email: "ada@example.com", password: "nope", found: active, status: http.StatusUnauthorized, msg: "Invalid credentials"},
		{name: "deactivated", email: "old@example.com", password: "secret1", found: inactive, status: http.StatusUnauthorized, msg: "Account has been deactivated"},
		{name: "db down", email: "ada@example.com", password: "secret1", findErr: errors.New("timeout"), status: http.StatusInternalServerError, msg: "db error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newAuthMocks()
			ctx := context.Background()
			m.validator.On("ValidateLogin", ctx, tt.email, tt.password).Return(nil)
			m.users.On("FindByEmail", ctx, tt.email).Return(tt.found, tt.findErr)

			_, err := m.uc.Login(ctx, tt.email, tt.password)
			assertHTTPError(t, err, tt.status, tt.msg)
			m.users.AssertNotCalled(t, "TouchLastLogin", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestAuthUsecase_Login_ValidatorFirst(t *testing.T) {
	m := newAuthMocks()
	ctx := context.Background()
	m.validator.On("ValidateLogin", ctx, "", "").Return(usecase.NewHTTPError(http.StatusBadRequest, "Please provide email and password"))

	_, err := m.uc.Login(ctx, "", "")
	assertHTTPError(t, err, http.StatusBadRequest, "Please provide email and password")
	m.users.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
}

// =====================
// Profile / IssueToken
// =====================

func TestAuthUsecase_Profile_IncludesCounts(t *testing.T) {
	m := newAuthMocks()
	ctx := context.Background()
	m.users.On("FindByID", ctx, int64(7)).Return(&model.User{ID: 7, FirstName: "Ada", Role: model.RoleCustomer}, nil)
	m.cart.On("CountByUserID", ctx, int64(7)).Return(int64(3), nil)
	m.wishlist.On("CountByUserID", ctx, int64(7)).Return(int64(1), nil)

	dto, err := m.uc.Profile(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, dto.CartItemCount)
	assert.Equal(t, int64(3), *dto.CartItemCount)
	assert.Equal(t, int64(1), *dto.WishlistCount)
}

func TestAuthUsecase_Profile_MissingUser(t *testing.T) {
	m := newAuthMocks()
	ctx := context.Background()
	m.users.On("FindByID", ctx, int64(7)).Return(nil, repo.ErrNotFound)

	_, err := m.uc.Profile(ctx, 7)
	assertHTTPError(t, err, http.StatusNotFound, "User not found")

	_, err = m.uc.Profile(ctx, 0)
	assertHTTPError(t, err, http.StatusUnauthorized, "")
}

func TestIssueToken_ExpiresAfterTTL(t *testing.T) {
	now := time.Now().Add(-2 * time.Hour)
	token, err := usecase.IssueToken(testSecret, time.Hour, &model.User{ID: 1, Role: model.RoleCustomer}, now)
	require.NoError(t, err)

	_, err = jwt.Parse(token, func(tok *jwt.Token) (any, error) { return []byte(testSecret), nil })
	var ve *jwt.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.NotZero(t, ve.Errors&jwt.ValidationErrorExpired)
}
