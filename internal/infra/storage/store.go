// Package storage — реализация styles.Store: записи переопределений
// в Postgres, блобы на диске киоска, раздаются нашим же HTTP-сервером
// под /files/.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Spok95/barber-kiosk/internal/domain/catalog"
	"github.com/Spok95/barber-kiosk/internal/domain/styles"
)

var errBadPath = errors.New("storage: bad blob path")

type Store struct {
	pool    *pgxpool.Pool
	dir     string
	baseURL string // например http://kiosk.local:8080/files
}

func New(pool *pgxpool.Pool, dir, baseURL string) *Store {
	return &Store{pool: pool, dir: dir, baseURL: strings.TrimRight(baseURL, "/")}
}

// safePath отображает логический путь блоба в файловый и отрезает
// попытки выйти из каталога.
func (s *Store) safePath(p string) (string, error) {
	clean := path.Clean("/" + p)
	if clean == "/" || strings.Contains(clean, "..") {
		return "", fmt.Errorf("%w: %q", errBadPath, p)
	}
	return filepath.Join(s.dir, filepath.FromSlash(strings.TrimPrefix(clean, "/"))), nil
}

func (s *Store) PutBlob(_ context.Context, p string, data []byte) error {
	fp, err := s.safePath(p)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(fp), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	// через временный файл, чтобы не оставить полузаписанный блоб
	tmp := fp + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write blob: %w", err)
	}
	if err := os.Rename(tmp, fp); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename blob: %w", err)
	}
	return nil
}

func (s *Store) ListBlobs(_ context.Context, prefix string) ([]string, error) {
	dir, namePrefix := path.Split(prefix)
	dir = strings.TrimSuffix(dir, "/")
	fsDir, err := s.safePath(dir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(fsDir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), namePrefix) {
			continue
		}
		out = append(out, dir+"/"+e.Name())
	}
	return out, nil
}

func (s *Store) DeleteBlobs(_ context.Context, paths []string) error {
	var firstErr error
	for _, p := range paths {
		fp, err := s.safePath(p)
		if err == nil {
			err = os.Remove(fp)
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (s *Store) PublicURL(p string) string {
	return s.baseURL + "/" + strings.TrimPrefix(path.Clean("/"+p), "/")
}

// Dir — корень блобов, его раздаёт HTTP-сервер.
func (s *Store) Dir() string { return s.dir }

func (s *Store) ListOverrides(ctx context.Context, userID string) ([]styles.Override, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT style_id, type, custom_image_url, updated_at
		FROM user_style_configs
		WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []styles.Override
	for rows.Next() {
		o := styles.Override{UserID: userID}
		var t string
		var updated time.Time
		if err := rows.Scan(&o.OptionID, &t, &o.ImageURL, &updated); err != nil {
			return nil, err
		}
		o.OptionType = catalog.OptionType(t)
		o.UpdatedAt = updated
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *Store) UpsertOverrideRecord(ctx context.Context, o styles.Override) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO user_style_configs (user_id, style_id, type, custom_image_url, updated_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (user_id, style_id, type) DO UPDATE SET
		  custom_image_url = $4, updated_at = $5
	`, o.UserID, o.OptionID, string(o.OptionType), o.ImageURL, o.UpdatedAt)
	return err
}

func (s *Store) DeleteOverrideRecord(ctx context.Context, userID string, t catalog.OptionType, optionID string) error {
	_, err := s.pool.Exec(ctx, `
		DELETE FROM user_style_configs
		WHERE user_id = $1 AND style_id = $2 AND type = $3
	`, userID, optionID, string(t))
	return err
}
