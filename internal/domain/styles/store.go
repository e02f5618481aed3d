package styles

import (
	"context"

	"github.com/Spok95/barber-kiosk/internal/domain/catalog"
)

// Store — внешнее key-blob хранилище переопределений: записи плюс
// сами картинки. Пути блобов: {userID}/{type}_{optionID}_{suffix}.{ext};
// старая форма без суффикса тоже встречается и подлежит зачистке.
type Store interface {
	// ListOverrides — все записи пользователя.
	ListOverrides(ctx context.Context, userID string) ([]Override, error)

	// PutBlob — идемпотентный upsert блоба по пути.
	PutBlob(ctx context.Context, path string, data []byte) error

	// ListBlobs — пути блобов с данным префиксом.
	ListBlobs(ctx context.Context, prefix string) ([]string, error)

	// DeleteBlobs удаляет блобы по путям.
	DeleteBlobs(ctx context.Context, paths []string) error

	// PublicURL — стабильный публичный URL блоба.
	PublicURL(path string) string

	// UpsertOverrideRecord — запись, уникальная по (user, option, type).
	UpsertOverrideRecord(ctx context.Context, o Override) error

	// DeleteOverrideRecord удаляет запись по ключу.
	DeleteOverrideRecord(ctx context.Context, userID string, t catalog.OptionType, optionID string) error
}
