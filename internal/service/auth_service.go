package service

import (
	"context"
	"errors"
	"time"

	"github.com/keyan-next/internal/cache"
	"github.com/keyan-next/internal/config"
	"github.com/keyan-next/internal/constants"
	"github.com/keyan-next/internal/models"
	"github.com/keyan-next/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// 身份判定来源
const (
	IdentitySourceClaims = "claims" // 仅凭令牌声明判定，未访问数据库
	IdentitySourceStore  = "store"  // 回退到用户表核实后判定
)

// Identity 授权判定结果
// Source 标记判定走的是声明快路径还是数据库回退路径。
type Identity struct {
	UserID      uint
	Role        string
	IsSuperuser bool
	Source      string
	User        *models.User // 仅 store 路径填充
}

// JWTClaims JWT 声明
type JWTClaims struct {
	UserID      uint   `json:"user_id"`
	Role        string `json:"role"`
	IsSuperuser bool   `json:"is_superuser"`
	jwt.RegisteredClaims
}

// AuthService 认证与授权判定服务
type AuthService struct {
	cfg      *config.Config
	userRepo repository.UserRepository
	roleRepo repository.RoleRepository
}

// NewAuthService 创建认证服务实例
func NewAuthService(cfg *config.Config, userRepo repository.UserRepository, roleRepo repository.RoleRepository) *AuthService {
	return &AuthService{
		cfg:      cfg,
		userRepo: userRepo,
		roleRepo: roleRepo,
	}
}

// HashPassword 使用 bcrypt 加密密码
func (s *AuthService) HashPassword(password string) (string, error) {
	cost := bcrypt.DefaultCost
	if s.cfg != nil && s.cfg.Security.BcryptCost > 0 {
		cost = s.cfg.Security.BcryptCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword 验证密码
func (s *AuthService) VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// GenerateJWT 生成 JWT Token
func (s *AuthService) GenerateJWT(user *models.User) (string, time.Time, error) {
	expiresAt := time.Now().Add(time.Duration(s.cfg.JWT.ExpireHours) * time.Hour)

	claims := JWTClaims{
		UserID:      user.ID,
		Role:        user.Role,
		IsSuperuser: user.IsSuperuser,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Email,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.JWT.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// ParseJWT 解析 JWT Token
func (s *AuthService) ParseJWT(tokenString string) (*JWTClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWT.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("无效的 token")
}

// Login 用户登录
func (s *AuthService) Login(email, password string) (*models.User, string, time.Time, error) {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if user == nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if err := s.VerifyPassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, "", time.Time{}, ErrInactiveUser
	}

	token, expiresAt, err := s.GenerateJWT(user)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	_ = cache.SetUserAuthState(context.Background(), cache.BuildUserAuthState(user))
	return user, token, expiresAt, nil
}

// ResolveReviewer 审核身份判定
// 两级判定：声明里已是超管或科研管理员则直接放行，不访问数据库；
// 否则回退到用户表核实角色与激活状态。
func (s *AuthService) ResolveReviewer(claims *JWTClaims) (*Identity, error) {
	if claims == nil {
		return nil, ErrPermissionDenied
	}
	if claims.IsSuperuser || claims.Role == constants.RoleResearchAdmin {
		return &Identity{
			UserID:      claims.UserID,
			Role:        claims.Role,
			IsSuperuser: claims.IsSuperuser,
			Source:      IdentitySourceClaims,
		}, nil
	}

	user, err := s.userRepo.GetByID(claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	if !user.IsActive {
		return nil, ErrPermissionDenied
	}
	if !user.IsSuperuser && user.Role != constants.RoleResearchAdmin {
		return nil, ErrPermissionDenied
	}
	return &Identity{
		UserID:      user.ID,
		Role:        user.Role,
		IsSuperuser: user.IsSuperuser,
		Source:      IdentitySourceStore,
		User:        user,
	}, nil
}

// ResolveActiveUser 解析当前活跃用户（任何已登录接口使用）
func (s *AuthService) ResolveActiveUser(claims *JWTClaims) (*models.User, error) {
	if claims == nil {
		return nil, ErrPermissionDenied
	}
	user, err := s.userRepo.GetByID(claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	if !user.IsActive {
		return nil, ErrInactiveUser
	}
	return user, nil
}

// ResolveSuperuser 超管身份判定，声明快路径同样适用
func (s *AuthService) ResolveSuperuser(claims *JWTClaims) (*Identity, error) {
	if claims == nil {
		return nil, ErrPermissionDenied
	}
	if claims.IsSuperuser {
		return &Identity{
			UserID:      claims.UserID,
			Role:        claims.Role,
			IsSuperuser: true,
			Source:      IdentitySourceClaims,
		}, nil
	}

	user, err := s.userRepo.GetByID(claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	if !user.IsActive || !user.IsSuperuser {
		return nil, ErrPermissionDenied
	}
	return &Identity{
		UserID:      user.ID,
		Role:        user.Role,
		IsSuperuser: true,
		Source:      IdentitySourceStore,
		User:        user,
	}, nil
}

// HasPermission 判定角色是否持有权限编码
// 超管直接放行，其余按角色的权限编码集判定。
func (s *AuthService) HasPermission(claims *JWTClaims, code string) (bool, error) {
	if claims == nil {
		return false, nil
	}
	if claims.IsSuperuser {
		return true, nil
	}
	role, err := s.roleRepo.GetByName(claims.Role)
	if err != nil {
		return false, err
	}
	if role == nil {
		return false, nil
	}
	for _, perm := range role.Permissions {
		if perm.Code == code {
			return true, nil
		}
	}
	return false, nil
}
