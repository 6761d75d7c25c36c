// Package mirror uploads the record workbook to a cloud disk.
package mirror

import (
	"errors"
	"time"
)

var (
	// ErrLocked means the remote file is held by another client.
	ErrLocked = errors.New("remote resource is locked")
	// ErrTokenExpired means the stored OAuth token is no longer accepted.
	ErrTokenExpired = errors.New("disk token expired or revoked")
)

type Config struct {
	Token      string        `envconfig:"YANDEX_TOKEN" required:"true"`
	Dir        string        `envconfig:"YANDEX_DIR" default:"/Боты/Бот журнала"`
	BaseURL    string        `envconfig:"YANDEX_BASE_URL" default:"https://cloud-api.yandex.net/v1/disk"`
	Timeout    time.Duration `envconfig:"YANDEX_TIMEOUT" default:"30s"`
	RetryDelay time.Duration `envconfig:"YANDEX_RETRY_DELAY" default:"2s"`
}

// Remediation returns an operator hint for a mirror failure.
func Remediation(err error) string {
	switch {
	case errors.Is(err, ErrLocked):
		return "Файл на Яндекс.Диске заблокирован: закройте его в браузере или в редакторе и дождитесь следующей заявки."
	case errors.Is(err, ErrTokenExpired):
		return "Токен Яндекс.Диска просрочен или отозван: выпустите новый YANDEX_TOKEN и перезапустите бота."
	default:
		return "Проверьте доступ к Яндекс.Диску и свободное место. Локальная копия сохранена."
	}
}
