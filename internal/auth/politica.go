package auth

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// Credential strength policy for the activation flow. HR staff set a real
// password; everyone else sets a numeric PIN. Each validator returns the
// full list of violated rules so the caller can surface them one by one.

// ValidarClaveRRHH checks the password policy applied to HR agents.
func ValidarClaveRRHH(clave string) []string {
	var motivos []string
	if len(clave) < 8 {
		motivos = append(motivos, "la clave debe tener al menos 8 caracteres")
	}
	var tieneLetra, tieneDigito bool
	for _, r := range clave {
		switch {
		case unicode.IsLetter(r):
			tieneLetra = true
		case unicode.IsDigit(r):
			tieneDigito = true
		}
	}
	if !tieneLetra || !tieneDigito {
		motivos = append(motivos, "la clave debe combinar letras y números")
	}
	return motivos
}

// ValidarPIN checks the PIN policy applied to non-HR agents. The PIN may not
// be guessable from the agent's DNI or birthdate.
func ValidarPIN(pin string, dni *string, fechaNacimiento *time.Time) []string {
	if !esNumerico(pin) || len(pin) != 6 {
		return []string{"el PIN debe tener exactamente 6 dígitos"}
	}

	var motivos []string
	if todosIguales(pin) {
		motivos = append(motivos, "el PIN no puede repetir un mismo dígito")
	}
	if esSecuencia(pin) {
		motivos = append(motivos, "el PIN no puede ser una secuencia de dígitos")
	}

	if dni != nil {
		normalizado := NormalizarDNI(*dni)
		if normalizado != "" {
			if pin == normalizado {
				motivos = append(motivos, "el PIN no puede ser su DNI")
			} else if len(normalizado) >= 4 {
				primeros := normalizado[:4]
				ultimos := normalizado[len(normalizado)-4:]
				if strings.Contains(pin, primeros) || strings.Contains(pin, ultimos) {
					motivos = append(motivos, "el PIN no puede contener parte de su DNI")
				}
			}
		}
	}

	if fechaNacimiento != nil {
		for _, forma := range formasFecha(*fechaNacimiento) {
			if pin == forma || strings.Contains(pin, forma) {
				motivos = append(motivos, "el PIN no puede derivarse de su fecha de nacimiento")
				break
			}
		}
	}
	return motivos
}

// NormalizarDNI strips periods and whitespace so "30.111.222" and
// "30111222" compare equal.
func NormalizarDNI(dni string) string {
	var b strings.Builder
	for _, r := range dni {
		if r == '.' || unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// formasFecha renders every digit pattern of the birthdate a PIN must not
// contain: full dates (DDMMYY, DDMMYYYY, YYYYMMDD), day+month in both
// orders, and the bare year.
func formasFecha(fecha time.Time) []string {
	dia := fmt.Sprintf("%02d", fecha.Day())
	mes := fmt.Sprintf("%02d", int(fecha.Month()))
	anio := fmt.Sprintf("%04d", fecha.Year())
	return []string{
		dia + mes + anio[2:], // DDMMYY
		dia + mes + anio,     // DDMMYYYY
		anio + mes + dia,     // YYYYMMDD
		dia + mes,
		mes + dia,
		anio,
	}
}

func esNumerico(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func todosIguales(s string) bool {
	for i := 1; i < len(s); i++ {
		if s[i] != s[0] {
			return false
		}
	}
	return true
}

func esSecuencia(s string) bool {
	asc, desc := true, true
	for i := 1; i < len(s); i++ {
		if s[i] != s[i-1]+1 {
			asc = false
		}
		if s[i] != s[i-1]-1 {
			desc = false
		}
	}
	return asc || desc
}
