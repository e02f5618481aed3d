package styles

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Spok95/barber-kiosk/internal/domain/catalog"
)

var (
	// ErrNoUser — операция с переопределениями без пользователя.
	ErrNoUser = errors.New("styles: no user")
	// ErrUnknownOption — опции нет в каталоге.
	ErrUnknownOption = errors.New("styles: unknown catalog option")
	// ErrUpdateInFlight — по этому ключу уже идёт запись; повторная
	// параллельная запись привела бы к lost update на upsert.
	ErrUpdateInFlight = errors.New("styles: update already in flight")
)

// Merger на каждое чтение склеивает дефолтный каталог с
// переопределениями пользователя. Кэш переопределений — плоская мапа
// по составному ключу, O(1) на позицию каталога.
type Merger struct {
	store Store
	log   *slog.Logger
	now   func() time.Time

	mu        sync.Mutex
	overrides map[Key]Override
	inflight  map[Key]struct{}
}

func NewMerger(store Store, log *slog.Logger) *Merger {
	return &Merger{
		store:     store,
		log:       log,
		now:       time.Now,
		overrides: make(map[Key]Override),
		inflight:  make(map[Key]struct{}),
	}
}

// Load подтягивает переопределения пользователя. Пустой userID —
// пустой набор. Ошибка стора деградирует до «без переопределений»:
// дефолтный каталог рабочий всегда.
func (g *Merger) Load(ctx context.Context, userID string) {
	if userID == "" {
		return
	}
	recs, err := g.store.ListOverrides(ctx, userID)
	if err != nil {
		g.log.Error("override list failed, using defaults", "user", userID, "err", err)
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	for k := range g.overrides {
		if k.UserID == userID {
			delete(g.overrides, k)
		}
	}
	for _, r := range recs {
		g.overrides[r.key()] = r
	}
}

// EffectiveCatalog — позиции каталога категории t с подставленными
// картинками пользователя. URL несёт revision-токен от времени
// последнего обновления, чтобы клиент не показал закэшированную
// старую картинку.
func (g *Merger) EffectiveCatalog(userID string, t catalog.OptionType) []catalog.StyleOption {
	opts := catalog.Options(t)
	if userID == "" {
		return opts
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := range opts {
		k := Key{UserID: userID, OptionType: t, OptionID: opts[i].ID}
		if rec, ok := g.overrides[k]; ok {
			opts[i].ImageURL = bustURL(rec)
		}
	}
	return opts
}

func bustURL(rec Override) string {
	return rec.ImageURL + "?v=" + strconv.FormatInt(rec.UpdatedAt.UnixMilli(), 10)
}

// blobBase — общая часть имени блоба для ключа, без суффикса.
func blobBase(t catalog.OptionType, optionID string) string {
	return fmt.Sprintf("%s_%s", t, optionID)
}

// ownsBlob: имя принадлежит ровно этому ключу. Id опций сами содержат
// подчёркивания ("zero" и "zero_half"), поэтому префикса мало:
// после base допускается только расширение (старая форма) либо
// числовой суффикс с расширением.
func ownsBlob(name, base string) bool {
	rest, ok := strings.CutPrefix(name, base)
	if !ok {
		return false
	}
	if ext, ok := strings.CutPrefix(rest, "."); ok {
		return ext != ""
	}
	suf, ok := strings.CutPrefix(rest, "_")
	if !ok {
		return false
	}
	digits, ext, found := strings.Cut(suf, ".")
	if !found || digits == "" || ext == "" {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (g *Merger) acquire(k Key) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.inflight[k]; busy {
		return ErrUpdateInFlight
	}
	g.inflight[k] = struct{}{}
	return nil
}

func (g *Merger) release(k Key) {
	g.mu.Lock()
	delete(g.inflight, k)
	g.mu.Unlock()
}

// UpdateOverride загружает новую картинку опции и перезаписывает
// запись переопределения. Кэш трогаем только после того, как прошла
// вся цепочка (upload → URL → upsert); старые блобы ключа зачищаются
// в рамках той же операции, чтобы повторные правки не копили мусор.
// Возвращает новый (уже cache-busted) URL.
func (g *Merger) UpdateOverride(ctx context.Context, userID, optionID string, t catalog.OptionType, data []byte, ext string) (string, error) {
	if userID == "" {
		return "", ErrNoUser
	}
	if _, ok := catalog.Find(t, optionID); !ok {
		return "", fmt.Errorf("%w: %s/%s", ErrUnknownOption, t, optionID)
	}

	k := Key{UserID: userID, OptionType: t, OptionID: optionID}
	if err := g.acquire(k); err != nil {
		return "", err
	}
	defer g.release(k)

	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		ext = "jpg"
	}
	now := g.now()
	base := blobBase(t, optionID)
	name := fmt.Sprintf("%s_%d.%s", base, now.UnixMilli(), ext)
	path := userID + "/" + name

	if err := g.store.PutBlob(ctx, path, data); err != nil {
		return "", fmt.Errorf("upload blob: %w", err)
	}

	rec := Override{
		UserID:     userID,
		OptionID:   optionID,
		OptionType: t,
		ImageURL:   g.store.PublicURL(path),
		UpdatedAt:  now,
	}
	if err := g.store.UpsertOverrideRecord(ctx, rec); err != nil {
		// запись не прошла — свежий блоб осиротел, убираем его,
		// кэш остаётся согласованным со стором
		if derr := g.store.DeleteBlobs(ctx, []string{path}); derr != nil {
			g.log.Error("orphan blob cleanup failed", "path", path, "err", derr)
		}
		return "", fmt.Errorf("upsert override: %w", err)
	}

	g.cleanupStale(ctx, userID, base, name)

	g.mu.Lock()
	g.overrides[k] = rec
	g.mu.Unlock()

	return bustURL(rec), nil
}

// cleanupStale удаляет прежние блобы ключа (включая старую форму
// имени без суффикса), кроме только что записанного.
func (g *Merger) cleanupStale(ctx context.Context, userID, base, keep string) {
	names, err := g.store.ListBlobs(ctx, userID+"/"+base)
	if err != nil {
		g.log.Error("stale blob list failed", "user", userID, "err", err)
		return
	}
	var stale []string
	for _, p := range names {
		name := strings.TrimPrefix(p, userID+"/")
		if name == keep || !ownsBlob(name, base) {
			continue
		}
		stale = append(stale, p)
	}
	if len(stale) == 0 {
		return
	}
	if err := g.store.DeleteBlobs(ctx, stale); err != nil {
		g.log.Error("stale blob delete failed", "user", userID, "err", err)
	}
}

// ResetOverride возвращает опцию к дефолтной картинке: удаляет запись
// и все блобы ключа.
func (g *Merger) ResetOverride(ctx context.Context, userID, optionID string, t catalog.OptionType) error {
	if userID == "" {
		return ErrNoUser
	}
	k := Key{UserID: userID, OptionType: t, OptionID: optionID}
	if err := g.acquire(k); err != nil {
		return err
	}
	defer g.release(k)

	if err := g.store.DeleteOverrideRecord(ctx, userID, t, optionID); err != nil {
		return fmt.Errorf("delete override: %w", err)
	}

	g.cleanupStale(ctx, userID, blobBase(t, optionID), "")

	g.mu.Lock()
	delete(g.overrides, k)
	g.mu.Unlock()
	return nil
}
