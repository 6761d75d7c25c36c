// Package records persists completed submissions into an xlsx workbook and
// mirrors the workbook to a cloud disk.
package records

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"

	errx "github.com/subscription-bot/server/internal/core/error"
	"github.com/subscription-bot/server/internal/dialogue/model"
	"github.com/subscription-bot/server/internal/records/mirror"
	logx "github.com/subscription-bot/server/pkg/logger"
)

const timeLayout = "2006-01-02 15:04"

type Config struct {
	File  string `envconfig:"EXCEL_FILE" default:"subscriptions.xlsx"`
	Sheet string `envconfig:"EXCEL_SHEET" default:"Подписки"`
}

// Mirror is the remote side of the store. Upload overwrites.
type Mirror interface {
	CheckToken(ctx context.Context) (bool, error)
	Exists(ctx context.Context, path string) (bool, error)
	Mkdir(ctx context.Context, path string) error
	Upload(ctx context.Context, localPath, remotePath string) error
	Remove(ctx context.Context, path string) error
}

// Store is the durable record store. Every append, local and remote, runs
// under one write lock so rows from concurrent sessions never interleave.
type Store struct {
	mu         sync.RWMutex
	file       string
	sheet      string
	schema     Schema
	mirror     Mirror
	remoteDir  string
	retryDelay time.Duration
}

type Option func(*Store)

// WithMirror enables the remote copy under dir.
func WithMirror(m Mirror, dir string, retryDelay time.Duration) Option {
	return func(s *Store) {
		s.mirror = m
		s.remoteDir = "/" + strings.Trim(dir, "/")
		s.retryDelay = retryDelay
	}
}

// WithSchema overrides the default column schema.
func WithSchema(schema Schema) Option {
	return func(s *Store) { s.schema = schema }
}

func New(cfg Config, opts ...Option) *Store {
	s := &Store{file: cfg.File, sheet: cfg.Sheet, schema: DefaultSchema}
	if s.sheet == "" {
		s.sheet = "Sheet1"
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Store) remotePath() string {
	return path.Join(s.remoteDir, filepath.Base(s.file))
}

// Append writes rec locally and then mirrors the workbook. A local failure is
// an IO error and nothing is uploaded. A mirror failure is a cloud-upload
// error; the local row is kept.
func (s *Store) Append(ctx context.Context, rec model.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.appendLocked(rec); err != nil {
		logx.Error().Err(err).Str("file", s.file).Int64("user_id", rec.UserID).Msg("failed to write record locally")
		return errx.IO(err)
	}
	logx.Info().Str("file", s.file).Str("handle", rec.Handle).Msg("record saved locally")

	if s.mirror == nil {
		return nil
	}
	if err := s.syncLocked(ctx); err != nil {
		logx.Error().Err(err).Str("remote", s.remotePath()).Msg("failed to mirror records")
		return errx.CloudUpload(err)
	}
	logx.Info().Str("remote", s.remotePath()).Msg("records mirrored")
	return nil
}

func (s *Store) appendLocked(rec model.Record) error {
	f, err := s.openLocked()
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := f.GetRows(s.sheet)
	if err != nil {
		return fmt.Errorf("read rows: %w", err)
	}
	if len(rows) == 0 || !s.schema.Matches(rows[0]) {
		if err := s.writeHeaderLocked(f, rows); err != nil {
			return err
		}
		if len(rows) == 0 {
			rows = [][]string{s.schema.Headers()}
		}
	}

	cell, err := excelize.CoordinatesToCellName(1, len(rows)+1)
	if err != nil {
		return err
	}
	row := s.schema.Row(rec)
	if err := f.SetSheetRow(s.sheet, cell, &row); err != nil {
		return fmt.Errorf("write row: %w", err)
	}
	if err := f.SaveAs(s.file); err != nil {
		return fmt.Errorf("save %s: %w", s.file, err)
	}
	return nil
}

// openLocked opens the workbook, creating it with the configured sheet when
// it does not exist yet.
func (s *Store) openLocked() (*excelize.File, error) {
	if _, err := os.Stat(s.file); errors.Is(err, os.ErrNotExist) {
		if dir := filepath.Dir(s.file); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create directory: %w", err)
			}
		}
		f := excelize.NewFile()
		if err := f.SetSheetName(f.GetSheetName(0), s.sheet); err != nil {
			f.Close()
			return nil, err
		}
		return f, nil
	}
	f, err := excelize.OpenFile(s.file)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.file, err)
	}
	if idx, _ := f.GetSheetIndex(s.sheet); idx < 0 {
		if _, err := f.NewSheet(s.sheet); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

// writeHeaderLocked rewrites the header row and reapplies column widths.
func (s *Store) writeHeaderLocked(f *excelize.File, rows [][]string) error {
	headers := s.schema.Headers()
	cells := make([]any, 0, len(headers))
	for _, h := range headers {
		cells = append(cells, h)
	}
	if len(rows) > 0 {
		for i := len(headers); i < len(rows[0]); i++ {
			cells = append(cells, "")
		}
		logx.Warn().Strs("old", rows[0]).Strs("new", headers).Msg("record header changed, rewriting")
	}
	if err := f.SetSheetRow(s.sheet, "A1", &cells); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, col := range s.schema {
		if col.Width <= 0 {
			continue
		}
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(s.sheet, name, name, col.Width); err != nil {
			return fmt.Errorf("set width %s: %w", name, err)
		}
	}
	return nil
}

// syncLocked mirrors the workbook. A locked remote file is removed and the
// upload retried once after retryDelay. The token is checked before every
// upload attempt.
func (s *Store) syncLocked(ctx context.Context) error {
	if err := s.checkTokenLocked(ctx); err != nil {
		return err
	}
	s.ensureRemoteDirLocked(ctx)

	remote := s.remotePath()
	err := s.mirror.Upload(ctx, s.file, remote)
	if err == nil || !errors.Is(err, mirror.ErrLocked) {
		return err
	}

	logx.Warn().Err(err).Str("remote", remote).Dur("delay", s.retryDelay).Msg("remote file locked, removing and retrying once")
	if rerr := s.mirror.Remove(ctx, remote); rerr != nil {
		logx.Warn().Err(rerr).Str("remote", remote).Msg("failed to remove locked remote file")
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.retryDelay):
	}
	if err := s.checkTokenLocked(ctx); err != nil {
		return err
	}
	return s.mirror.Upload(ctx, s.file, remote)
}

func (s *Store) checkTokenLocked(ctx context.Context) error {
	ok, err := s.mirror.CheckToken(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return mirror.ErrTokenExpired
	}
	return nil
}

// ensureRemoteDirLocked creates the remote directory one component at a
// time. Failures are logged; the upload reports the real problem.
func (s *Store) ensureRemoteDirLocked(ctx context.Context) {
	current := ""
	for _, part := range strings.Split(strings.Trim(s.remoteDir, "/"), "/") {
		if part == "" {
			continue
		}
		current += "/" + part
		exists, err := s.mirror.Exists(ctx, current)
		if err == nil && !exists {
			err = s.mirror.Mkdir(ctx, current)
			if err == nil {
				logx.Info().Str("dir", current).Msg("remote directory created")
			}
		}
		if err != nil {
			logx.Warn().Err(err).Str("dir", current).Msg("failed to check or create remote directory")
		}
	}
}

// FindLast scans records newest first and returns the first one whose user
// id matches, or nil.
func (s *Store) FindLast(_ context.Context, userID int64) (*model.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, err := os.Stat(s.file); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	f, err := excelize.OpenFile(s.file)
	if err != nil {
		return nil, errx.IO(fmt.Errorf("open %s: %w", s.file, err))
	}
	defer f.Close()

	rows, err := f.GetRows(s.sheet)
	if err != nil {
		return nil, errx.IO(fmt.Errorf("read rows: %w", err))
	}
	want := strconv.FormatInt(userID, 10)
	for i := len(rows) - 1; i >= 1; i-- {
		row := rows[i]
		if len(row) > colUserID && NormalizeID(row[colUserID]) == want {
			rec := s.schema.Parse(row)
			return &rec, nil
		}
	}
	return nil, nil
}

// NormalizeID trims an identity cell and drops the ".0" suffix spreadsheet
// tools add to numbers.
func NormalizeID(v string) string {
	v = strings.TrimSpace(v)
	if i := strings.IndexByte(v, '.'); i > 0 && strings.Trim(v[i+1:], "0") == "" {
		v = v[:i]
	}
	return v
}

var _ model.RecordStore = (*Store)(nil)
