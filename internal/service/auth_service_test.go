package service_test

import (
	"context"
	"testing"

	"github.com/ProyectoSpoon/spoon-platform-sub004/internal/config"
	"github.com/ProyectoSpoon/spoon-platform-sub004/internal/domain"
	"github.com/ProyectoSpoon/spoon-platform-sub004/internal/dto"
	"github.com/ProyectoSpoon/spoon-platform-sub004/internal/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuth(t *testing.T) (service.AuthService, *fakeUsuarioRepo, uuid.UUID) {
	t.Helper()
	repo := newFakeUsuarioRepo()
	cfg := &config.Config{JWTSecret: "test-secret", JWTExpirationHours: 1, JWTRefreshHours: 2}
	svc := service.NewAuthService(repo, cfg)
	rid := uuid.New()
	_, err := svc.CrearUsuario(context.Background(), rid, dto.CrearUsuarioRequest{
		Username: "cajero1", Nombre: "Cajero Uno", Password: "secreto123", Rol: "cajero",
	})
	require.NoError(t, err)
	return svc, repo, rid
}

func TestLogin(t *testing.T) {
	svc, _, rid := newAuth(t)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{Username: "cajero1", Password: "secreto123"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, 3600, resp.ExpiresIn)
	assert.Equal(t, rid.String(), resp.User.RestauranteID)
	assert.NotEqual(t, resp.AccessToken, resp.RefreshToken)

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(resp.AccessToken, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, service.TokenAcceso, claims["tipo"])
	assert.Equal(t, "cajero", claims["rol"])
	assert.Equal(t, rid.String(), claims["restaurante_id"])
}

func TestLogin_CredencialesInvalidas(t *testing.T) {
	svc, _, _ := newAuth(t)

	_, err := svc.Login(context.Background(), dto.LoginRequest{Username: "cajero1", Password: "incorrecta"})
	assert.ErrorIs(t, err, service.ErrCredenciales)

	_, err = svc.Login(context.Background(), dto.LoginRequest{Username: "nadie", Password: "secreto123"})
	assert.ErrorIs(t, err, service.ErrCredenciales)
}

func TestRefresh(t *testing.T) {
	svc, _, _ := newAuth(t)
	login, err := svc.Login(context.Background(), dto.LoginRequest{Username: "cajero1", Password: "secreto123"})
	require.NoError(t, err)

	resp, err := svc.Refresh(context.Background(), login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)

	// an access token cannot be used to refresh
	_, err = svc.Refresh(context.Background(), login.AccessToken)
	assert.ErrorIs(t, err, service.ErrCredenciales)

	_, err = svc.Refresh(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, service.ErrCredenciales)
}

func TestRefresh_UsuarioDesactivado(t *testing.T) {
	svc, _, rid := newAuth(t)
	login, err := svc.Login(context.Background(), dto.LoginRequest{Username: "cajero1", Password: "secreto123"})
	require.NoError(t, err)

	require.NoError(t, svc.DesactivarUsuario(context.Background(), rid, uuid.MustParse(login.User.ID)))

	_, err = svc.Refresh(context.Background(), login.RefreshToken)
	assert.ErrorIs(t, err, service.ErrCredenciales)
	_, err = svc.Login(context.Background(), dto.LoginRequest{Username: "cajero1", Password: "secreto123"})
	assert.ErrorIs(t, err, service.ErrCredenciales)
}

func TestUsuarios_DuplicadoYAislamiento(t *testing.T) {
	svc, _, rid := newAuth(t)

	_, err := svc.CrearUsuario(context.Background(), rid, dto.CrearUsuarioRequest{
		Username: "cajero1", Nombre: "Otro", Password: "secreto123", Rol: "mesero",
	})
	assert.ErrorIs(t, err, service.ErrUsuarioDuplicado)

	users, err := svc.ListarUsuarios(context.Background(), rid)
	require.NoError(t, err)
	require.Len(t, users, 1)

	err = svc.DesactivarUsuario(context.Background(), uuid.New(), uuid.MustParse(users[0].ID))
	assert.ErrorIs(t, err, domain.ErrNoEncontrado)
}
