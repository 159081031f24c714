package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/feermza/sistema-justificaciones/internal/auth"
	"github.com/feermza/sistema-justificaciones/internal/domain"
	apperrors "github.com/feermza/sistema-justificaciones/pkg/util/errorutil"
)

type fakeCredencialRepo struct {
	mu     sync.Mutex
	nextID int64
	items  map[string]*domain.Credencial
}

func newFakeCredencialRepo() *fakeCredencialRepo {
	return &fakeCredencialRepo{nextID: 1, items: map[string]*domain.Credencial{}}
}

func (f *fakeCredencialRepo) Create(_ context.Context, c *domain.Credencial) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.ID = f.nextID
	f.nextID++
	copia := *c
	f.items[c.Usuario] = &copia
	return nil
}

func (f *fakeCredencialRepo) GetByUsuario(_ context.Context, usuario string) (*domain.Credencial, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.items[usuario]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copia := *c
	return &copia, nil
}

func (f *fakeCredencialRepo) DeleteByUsuario(_ context.Context, usuario string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[usuario]; !ok {
		return 0, nil
	}
	delete(f.items, usuario)
	return 1, nil
}

type guardaEnMemoria struct {
	mu     sync.Mutex
	usados map[string]bool
	caida  bool
}

func (g *guardaEnMemoria) MarcarUsado(_ context.Context, jti string, _ time.Duration) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.caida {
		return false, errGuardaCaida
	}
	if g.usados == nil {
		g.usados = map[string]bool{}
	}
	if g.usados[jti] {
		return false, nil
	}
	g.usados[jti] = true
	return true, nil
}

var errGuardaCaida = errors.New("guarda no disponible")

type activacionFixture struct {
	service      *ActivacionService
	agentes      *fakeAgenteRepo
	credenciales *fakeCredencialRepo
	guarda       *guardaEnMemoria
	agente       *domain.Agente
	rrhh         *domain.Agente
}

func newActivacionFixture(t *testing.T) *activacionFixture {
	t.Helper()
	dni := "30.111.222"
	nacimiento := time.Date(1990, time.May, 10, 0, 0, 0, 0, time.UTC)
	agente := &domain.Agente{ID: 1, Legajo: 1001, Nombre: "Ana", Apellido: "Gómez",
		DNI: &dni, FechaNacimiento: &nacimiento, Categoria: domain.CategoriaOperativo}

	dniRRHH := "27.555.888"
	rrhh := &domain.Agente{ID: 2, Legajo: 3001, Nombre: "Rita", Apellido: "Sosa",
		DNI: &dniRRHH, FechaNacimiento: &nacimiento, Categoria: domain.CategoriaSupervisor, EsRRHH: true}

	agentes := &fakeAgenteRepo{agentes: map[int64]*domain.Agente{1: agente, 2: rrhh}}
	credenciales := newFakeCredencialRepo()
	guarda := &guardaEnMemoria{}
	svc := NewActivacionService(ActivacionDependencies{
		AgenteRepo:     agentes,
		CredencialRepo: credenciales,
		Tokens:         auth.NewTokenManager("test-secret", time.Hour, 10*time.Minute),
		TokensUsados:   guarda,
		BcryptCost:     4, // min cost keeps the suite fast
		Logger:         zap.NewNop(),
	})
	return &activacionFixture{service: svc, agentes: agentes, credenciales: credenciales,
		guarda: guarda, agente: agente, rrhh: rrhh}
}

func TestValidarIdentidad(t *testing.T) {
	f := newActivacionFixture(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		legajo int
		dni    string
		fecha  string
		code   string
	}{
		{"legajo inexistente", 9999, "30.111.222", "1990-05-10", "NOT_FOUND"},
		{"dni incorrecto", 1001, "20.000.000", "1990-05-10", "VALIDATION_FAILED"},
		{"fecha incorrecta", 1001, "30.111.222", "1991-05-10", "VALIDATION_FAILED"},
		{"fecha mal formada", 1001, "30.111.222", "10/05/1990", "VALIDATION_FAILED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.ValidarIdentidad(ctx, tt.legajo, tt.dni, tt.fecha)
			require.Error(t, err)
			assert.Equal(t, tt.code, apperrors.ToDomainError(err).Code)
		})
	}

	// The DNI comparison normalizes punctuation on both sides.
	resultado, err := f.service.ValidarIdentidad(ctx, 1001, "30111222", "1990-05-10")
	require.NoError(t, err)
	assert.NotEmpty(t, resultado.Token)
	assert.Equal(t, CredencialPIN, resultado.TipoCredencial)

	rrhh, err := f.service.ValidarIdentidad(ctx, 3001, "27555888", "1990-05-10")
	require.NoError(t, err)
	assert.Equal(t, CredencialPassword, rrhh.TipoCredencial)
}

func TestActivarCuentaCompleta(t *testing.T) {
	f := newActivacionFixture(t)
	ctx := context.Background()

	resultado, err := f.service.ValidarIdentidad(ctx, 1001, "30.111.222", "1990-05-10")
	require.NoError(t, err)

	require.NoError(t, f.service.ActivarCuenta(ctx, resultado.Token, "482957"))
	assert.True(t, f.agente.CuentaActivada())

	// An already activated account refuses the token.
	err = f.service.ActivarCuenta(ctx, resultado.Token, "482957")
	require.Error(t, err)
	assert.Equal(t, "STATE_CONFLICT", apperrors.ToDomainError(err).Code)

	// Step 1 refuses an already activated account.
	_, err = f.service.ValidarIdentidad(ctx, 1001, "30.111.222", "1990-05-10")
	require.Error(t, err)
	assert.Equal(t, "STATE_CONFLICT", apperrors.ToDomainError(err).Code)
}

func TestActivarCuentaRechazaPINDebil(t *testing.T) {
	f := newActivacionFixture(t)
	ctx := context.Background()

	resultado, err := f.service.ValidarIdentidad(ctx, 1001, "30.111.222", "1990-05-10")
	require.NoError(t, err)

	// "301112" leaks the DNI prefix; the account stays inactive.
	err = f.service.ActivarCuenta(ctx, resultado.Token, "301112")
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
	assert.False(t, f.agente.CuentaActivada())
}

func TestActivarCuentaReintentaConElMismoToken(t *testing.T) {
	f := newActivacionFixture(t)
	ctx := context.Background()

	resultado, err := f.service.ValidarIdentidad(ctx, 1001, "30.111.222", "1990-05-10")
	require.NoError(t, err)

	// A rejected PIN does not burn the token: the agent keeps retrying
	// until the policy passes, all within the token's lifetime.
	err = f.service.ActivarCuenta(ctx, resultado.Token, "301112")
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)

	err = f.service.ActivarCuenta(ctx, resultado.Token, "905100")
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)

	require.NoError(t, f.service.ActivarCuenta(ctx, resultado.Token, "774193"))
	assert.True(t, f.agente.CuentaActivada())

	// Only the successful activation consumed it.
	err = f.service.ActivarCuenta(ctx, resultado.Token, "774193")
	require.Error(t, err)
	assert.Equal(t, "STATE_CONFLICT", apperrors.ToDomainError(err).Code)
}

func TestActivarCuentaRRHHUsaPoliticaDeClave(t *testing.T) {
	f := newActivacionFixture(t)
	ctx := context.Background()

	resultado, err := f.service.ValidarIdentidad(ctx, 3001, "27.555.888", "1990-05-10")
	require.NoError(t, err)

	err = f.service.ActivarCuenta(ctx, resultado.Token, "1234567")
	require.Error(t, err, "una clave corta y numérica no alcanza para RRHH")

	// The rejection left the token usable for the next attempt.
	require.NoError(t, f.service.ActivarCuenta(ctx, resultado.Token, "personal2024"))
	assert.True(t, f.rrhh.CuentaActivada())
}

func TestActivarCuentaTokenInvalido(t *testing.T) {
	f := newActivacionFixture(t)

	err := f.service.ActivarCuenta(context.Background(), "no-es-un-token", "482957")
	require.Error(t, err)
	assert.Equal(t, "STATE_CONFLICT", apperrors.ToDomainError(err).Code)
}

func TestActivarCuentaConGuardaCaida(t *testing.T) {
	f := newActivacionFixture(t)
	f.guarda.caida = true
	ctx := context.Background()

	// When the replay guard is unreachable activation still works on
	// signature and expiry alone.
	resultado, err := f.service.ValidarIdentidad(ctx, 1001, "30.111.222", "1990-05-10")
	require.NoError(t, err)
	assert.NoError(t, f.service.ActivarCuenta(ctx, resultado.Token, "482957"))
}

func TestLogin(t *testing.T) {
	f := newActivacionFixture(t)
	ctx := context.Background()

	// Unknown legajo.
	_, _, _, err := f.service.Login(ctx, 9999, "482957")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)

	// Known but never activated.
	_, _, _, err = f.service.Login(ctx, 1001, "482957")
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "NEEDS_ACTIVATION", domainErr.Code)
	assert.Equal(t, true, domainErr.Details["necesita_activacion"])

	resultado, err := f.service.ValidarIdentidad(ctx, 1001, "30.111.222", "1990-05-10")
	require.NoError(t, err)
	require.NoError(t, f.service.ActivarCuenta(ctx, resultado.Token, "482957"))

	// Wrong PIN gives the generic message.
	_, _, _, err = f.service.Login(ctx, 1001, "000000")
	require.Error(t, err)
	domainErr = apperrors.ToDomainError(err)
	assert.Equal(t, "UNAUTHORIZED", domainErr.Code)
	assert.Equal(t, "Contraseña o PIN incorrecto.", domainErr.Message)

	agente, token, expira, err := f.service.Login(ctx, 1001, "482957")
	require.NoError(t, err)
	assert.Equal(t, f.agente.ID, agente.ID)
	assert.NotEmpty(t, token)
	assert.True(t, expira.After(time.Now()))
}
