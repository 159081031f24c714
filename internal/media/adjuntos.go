package media

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/feermza/sistema-justificaciones/internal/config"
)

// AlmacenAdjuntos stores uploaded certificates under {root}/certificados,
// keyed by a generated name so uploads never collide.
type AlmacenAdjuntos struct {
	root string
}

// NewAlmacenAdjuntos builds the store.
func NewAlmacenAdjuntos(cfg config.MediaConfig) *AlmacenAdjuntos {
	return &AlmacenAdjuntos{root: cfg.Root}
}

// Guardar persists the file content and returns the storage key to record on
// the request.
func (a *AlmacenAdjuntos) Guardar(nombreOriginal string, contenido []byte) (string, error) {
	dir := filepath.Join(a.root, "certificados")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("crear directorio de certificados: %w", err)
	}

	clave := uuid.NewString() + "_" + filepath.Base(nombreOriginal)
	if err := os.WriteFile(filepath.Join(dir, clave), contenido, 0o644); err != nil {
		return "", fmt.Errorf("guardar adjunto: %w", err)
	}
	return clave, nil
}

// Ruta resolves a storage key back to its absolute path.
func (a *AlmacenAdjuntos) Ruta(clave string) string {
	return filepath.Join(a.root, "certificados", filepath.Base(clave))
}
