package service

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/feermza/sistema-justificaciones/internal/auth"
	"github.com/feermza/sistema-justificaciones/internal/domain"
	"github.com/feermza/sistema-justificaciones/internal/events"
	"github.com/feermza/sistema-justificaciones/internal/repository"
	apperrors "github.com/feermza/sistema-justificaciones/pkg/util/errorutil"
)

// Layout of the birthdate exchanged with the client.
const formatoFecha = "2006-01-02"

// TipoCredencial tells the client which input to prompt for in step 2.
type TipoCredencial string

const (
	CredencialPassword TipoCredencial = "password"
	CredencialPIN      TipoCredencial = "pin"
)

// ResultadoValidacion is the outcome of the identity-validation step.
type ResultadoValidacion struct {
	Token          string
	ExpiraEn       time.Time
	TipoCredencial TipoCredencial
}

// GuardaTokenUsado marks an activation token as consumed. Implementations
// must be atomic: the first caller wins, any replay loses.
type GuardaTokenUsado interface {
	MarcarUsado(ctx context.Context, jti string, ttl time.Duration) (bool, error)
}

// ActivacionService implements the two-step account activation plus login.
type ActivacionService struct {
	agentes      repository.AgenteRepository
	credenciales repository.CredencialRepository
	tokens       *auth.TokenManager
	usados       GuardaTokenUsado
	dispatcher   events.Dispatcher
	bcryptCost   int
	logger       *zap.Logger
}

// ActivacionDependencies bundles collaborators for the service.
type ActivacionDependencies struct {
	AgenteRepo     repository.AgenteRepository
	CredencialRepo repository.CredencialRepository
	Tokens         *auth.TokenManager
	TokensUsados   GuardaTokenUsado
	Dispatcher     events.Dispatcher
	BcryptCost     int
	Logger         *zap.Logger
}

// NewActivacionService constructs the service.
func NewActivacionService(deps ActivacionDependencies) *ActivacionService {
	return &ActivacionService{
		agentes:      deps.AgenteRepo,
		credenciales: deps.CredencialRepo,
		tokens:       deps.Tokens,
		usados:       deps.TokensUsados,
		dispatcher:   deps.Dispatcher,
		bcryptCost:   deps.BcryptCost,
		logger:       deps.Logger,
	}
}

// ValidarIdentidad is step 1: legajo + DNI + birthdate in exchange for a
// short-lived signed token.
func (s *ActivacionService) ValidarIdentidad(ctx context.Context, legajo int, dni, fechaNacimiento string) (*ResultadoValidacion, error) {
	agente, err := s.agentes.GetByLegajo(ctx, legajo)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("legajo", map[string]any{"legajo": legajo})
		}
		return nil, apperrors.MapError(err)
	}

	if agente.CuentaActivada() {
		return nil, apperrors.NewStateConflict("La cuenta ya se encuentra activada.", nil)
	}

	if agente.DNI == nil || auth.NormalizarDNI(*agente.DNI) != auth.NormalizarDNI(dni) {
		return nil, apperrors.NewValidationError("los datos no coinciden con el legajo informado",
			map[string]any{"dni": "no coincide"})
	}

	if agente.FechaNacimiento == nil {
		// Data-quality problem, not a wrong input: HR never loaded the date.
		return nil, apperrors.NewStateConflict(
			"El agente no tiene fecha de nacimiento registrada. Comuníquese con RRHH.", nil)
	}
	provista, err := time.Parse(formatoFecha, fechaNacimiento)
	if err != nil {
		return nil, apperrors.NewValidationError("fecha de nacimiento inválida",
			map[string]any{"fecha_nacimiento": fechaNacimiento})
	}
	if agente.FechaNacimiento.Format(formatoFecha) != provista.Format(formatoFecha) {
		return nil, apperrors.NewValidationError("los datos no coinciden con el legajo informado",
			map[string]any{"fecha_nacimiento": "no coincide"})
	}

	token, expira, err := s.tokens.GenerateActivacion(agente.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	tipoCredencial := CredencialPIN
	if agente.EsRRHH {
		tipoCredencial = CredencialPassword
	}
	return &ResultadoValidacion{Token: token, ExpiraEn: expira, TipoCredencial: tipoCredencial}, nil
}

// ActivarCuenta is step 2: a valid, unused token plus a credential that
// passes the strength policy provisions the login and links it to the agent.
func (s *ActivacionService) ActivarCuenta(ctx context.Context, token, clave string) error {
	claims, err := s.tokens.ParseToken(token, auth.PropositoActivacion)
	if err != nil {
		return apperrors.NewStateConflict("Token vencido o inválido. Vuelva a validar su identidad.", nil)
	}

	agente, err := s.agentes.GetByID(ctx, claims.AgenteID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if agente.CuentaActivada() {
		return apperrors.NewStateConflict("La cuenta ya se encuentra activada.", nil)
	}

	var motivos []string
	if agente.EsRRHH {
		motivos = auth.ValidarClaveRRHH(clave)
	} else {
		motivos = auth.ValidarPIN(clave, agente.DNI, agente.FechaNacimiento)
	}
	if len(motivos) > 0 {
		return apperrors.NewValidationError("la clave elegida no cumple la política de seguridad",
			map[string]any{"clave": motivos})
	}

	// The token is burned only once the credential passed the policy: a
	// rejected PIN must leave the token replayable so the agent can retry.
	if s.usados != nil {
		restante := time.Until(claims.ExpiresAt.Time)
		primero, err := s.usados.MarcarUsado(ctx, claims.ID, restante)
		if err != nil {
			// Degrade to signature+expiry checking when the guard is down.
			s.logger.Warn("guarda de tokens no disponible", zap.Error(err))
		} else if !primero {
			return apperrors.NewStateConflict("El token ya fue utilizado.", nil)
		}
	}

	hash, err := auth.HashPassword(clave, s.bcryptCost)
	if err != nil {
		return apperrors.MapError(err)
	}

	usuario := strconv.Itoa(agente.Legajo)
	// Purge any orphaned credential left under the same login identifier.
	if _, err := s.credenciales.DeleteByUsuario(ctx, usuario); err != nil {
		return apperrors.MapError(err)
	}

	credencial := &domain.Credencial{Usuario: usuario, Email: agente.Email, Hash: hash}
	if err := s.credenciales.Create(ctx, credencial); err != nil {
		return apperrors.MapError(err)
	}
	if err := s.agentes.VincularCredencial(ctx, agente.ID, credencial.ID); err != nil {
		return apperrors.MapError(err)
	}

	if s.dispatcher != nil {
		err := s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventCuentaActivada,
			Timestamp: time.Now(),
			Payload:   events.CuentaActivadaPayload{AgenteID: agente.ID, Legajo: agente.Legajo},
		})
		if err != nil {
			s.logger.Warn("fallo al publicar evento",
				zap.String("type", string(events.EventCuentaActivada)), zap.Error(err))
		}
	}
	return nil
}

// Login authenticates legajo + credential and issues a session token. The
// failure cause is disambiguated: unknown legajo, account never activated,
// or a generic wrong-credential error that reveals nothing else.
func (s *ActivacionService) Login(ctx context.Context, legajo int, clave string) (*domain.Agente, string, time.Time, error) {
	agente, err := s.agentes.GetByLegajo(ctx, legajo)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, "", time.Time{}, apperrors.NewNotFound("legajo", map[string]any{"legajo": legajo})
		}
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	if !agente.CuentaActivada() {
		return nil, "", time.Time{}, apperrors.NewDomainError(
			"NEEDS_ACTIVATION",
			"Tu cuenta no está activada. Completá el proceso de activación.",
			401,
			map[string]any{"necesita_activacion": true})
	}

	credencial, err := s.credenciales.GetByUsuario(ctx, strconv.Itoa(legajo))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, "", time.Time{}, apperrors.NewDomainError(
				"NEEDS_ACTIVATION",
				"Tu cuenta no está activada. Completá el proceso de activación.",
				401,
				map[string]any{"necesita_activacion": true})
		}
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	if err := auth.ComparePassword(credencial.Hash, clave); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("Contraseña o PIN incorrecto.")
	}

	token, expira, err := s.tokens.GenerateSesion(agente.ID)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	return agente, token, expira, nil
}
