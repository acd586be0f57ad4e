package credential

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// FileName is the name of the credential config inside the config directory.
const FileName = "credential.yaml"

const (
	dirPerm  = 0o700
	filePerm = 0o600
)

// (qualifier, organization, application) of the per-user config directory.
const (
	dirQualifier    = "dev"
	dirOrganization = "sp1rit"
	dirApplication  = "smcli"
)

// DefaultDir returns the per-user config directory following the host OS convention:
// $XDG_CONFIG_HOME/smcli on Unix, ~/Library/Application Support/dev.sp1rit.smcli on
// macOS and %AppData%\sp1rit\smcli\config on Windows.
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("determining user config dir: %w", err)
	}

	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(base, dirQualifier+"."+dirOrganization+"."+dirApplication), nil
	case "windows":
		return filepath.Join(base, dirOrganization, dirApplication, "config"), nil
	default:
		return filepath.Join(base, dirApplication), nil
	}
}

// Store loads and saves the record set at a fixed path.
type Store struct {
	path string
}

// NewStore creates a Store for credential.yaml inside dir. The directory is created
// on the first Save.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("config directory cannot be empty")
	}

	return &Store{
		path: filepath.Join(dir, FileName),
	}, nil
}

// Path returns the location of the credential config.
func (s *Store) Path() string {
	return s.path
}

// Load returns the stored record set. It never fails:
//   - a missing file yields Empty, which is persisted immediately
//   - an unreadable or corrupt file is logged and yields Empty; the file is left in
//     place until the next explicit Save replaces it
func (s *Store) Load(ctx context.Context) *RecordSet {
	rs, err := s.Read(ctx)
	switch {
	case err == nil:
		return rs

	case errors.Is(err, fs.ErrNotExist):
		slog.InfoContext(ctx, "credential config not found, creating new one", "path", s.path)
		rs = Empty()
		if err := s.Save(ctx, rs); err != nil {
			slog.WarnContext(ctx, "failed to create credential config", "path", s.path, "error", err)
		}
		return rs

	default:
		slog.WarnContext(ctx, "ignoring unreadable credential config", "path", s.path, "error", err)
		return Empty()
	}
}

// Read loads and decodes the credential config. Errors wrap ErrConfigUnreadable and
// keep fs.ErrNotExist matchable for a missing file.
func (s *Store) Read(ctx context.Context) (*RecordSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := os.Stat(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigUnreadable, err)
	}
	if perm := info.Mode().Perm(); perm&0o077 != 0 {
		slog.WarnContext(ctx, "credential config is accessible by other users",
			"path", s.path, "mode", fmt.Sprintf("%04o", perm))
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigUnreadable, err)
	}

	rs := Empty()
	if len(bytes.TrimSpace(data)) == 0 {
		return rs, nil
	}
	if err := yaml.Unmarshal(data, rs); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %w", ErrConfigUnreadable, s.path, err)
	}

	if rs.Version > SchemaVersion {
		slog.WarnContext(ctx, "credential config was written by a newer smcli, unknown fields will be dropped on save",
			"path", s.path, "version", rs.Version)
	}

	return rs, nil
}

// Save writes rs as the complete new content of the credential config.
// Writes use temp file + rename so a failed save leaves the previous file intact.
func (s *Store) Save(ctx context.Context, rs *RecordSet) error {
	if rs == nil {
		return fmt.Errorf("%w: cannot save nil record set", ErrConfigWrite)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(rs); err != nil {
		return fmt.Errorf("%w: encoding: %w", ErrConfigWrite, err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("%w: encoding: %w", ErrConfigWrite, err)
	}

	if err := writeFileAtomic(ctx, s.path, buf.Bytes()); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrConfigWrite, s.path, err)
	}

	slog.DebugContext(ctx, "saved credential config", "path", s.path)
	return nil
}

// writeFileAtomic replaces path with data via a temp file in the same directory.
// Parent directories are created with 0700 and the result has 0600 permissions.
func writeFileAtomic(ctx context.Context, path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return err
	}

	tempFile, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tempName := tempFile.Name()
	// Cleanup deferred for all exit paths; after a successful rename the remove is a no-op
	defer func() { _ = os.Remove(tempName) }()
	defer func() { _ = tempFile.Close() }()

	if _, err := tempFile.Write(data); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := tempFile.Close(); err != nil {
		return err
	}

	if err := os.Rename(tempName, path); err != nil {
		return err
	}

	return os.Chmod(path, filePerm)
}
