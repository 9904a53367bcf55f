package receipt

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	goupdate "github.com/doitdistributed/go-update"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/setup-package/internal/config"
	"github.com/oshokin/setup-package/internal/domain/setup"
)

// Filename is the receipt file name inside the content root.
const Filename = ".setup-receipt.json"

// Field names of the JSON document.
const (
	fieldVersion     = "version"
	fieldArchive     = "archive"
	fieldEntryID     = "entry_id"
	fieldInstalledAt = "installed_at"
	fieldActor       = "actor"
	fieldHostname    = "hostname"
	fieldUsername    = "username"
	fieldSchemas     = "schemas"
	fieldWarning     = "warning"
)

// Repository defines persistence operations for the install receipt.
type Repository interface {
	Load(ctx context.Context) (*setup.Receipt, error)
	Save(ctx context.Context, receipt *setup.Receipt) error
}

// FileRepository persists the receipt to a JSON file on disk.
// JSON is produced and consumed via protobuf JSON (protojson) over a
// structpb.Struct document.
type FileRepository struct {
	// path is the filesystem location of the JSON receipt file.
	path string
	// mu protects concurrent access to the receipt file.
	mu sync.Mutex
}

// ErrNotFound is returned when the receipt file does not exist yet.
var ErrNotFound = errors.New("receipt not found")

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// NewRootRepository creates a repository for the receipt inside a content root.
func NewRootRepository(root string) *FileRepository {
	return NewFileRepository(filepath.Join(root, Filename))
}

// Path returns the receipt file location.
func (r *FileRepository) Path() string {
	return r.path
}

// Load reads the receipt from disk.
func (r *FileRepository) Load(_ context.Context) (*setup.Receipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read receipt file: %w", err)
	}

	var document structpb.Struct
	if err = protojson.Unmarshal(contents, &document); err != nil {
		return nil, fmt.Errorf("decode receipt file: %w", err)
	}

	return fromStruct(&document)
}

// Save writes the receipt to disk using JSON representation.
func (r *FileRepository) Save(_ context.Context, receipt *setup.Receipt) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	document, err := toStruct(receipt)
	if err != nil {
		return fmt.Errorf("encode receipt: %w", err)
	}

	marshalOptions := protojson.MarshalOptions{
		Multiline: true,
		Indent:    "  ",
	}

	data, err := marshalOptions.Marshal(document)
	if err != nil {
		return fmt.Errorf("encode receipt: %w", err)
	}

	return writeFile(r.path, data)
}

// writeFile creates the receipt file on the first run and afterwards swaps
// it atomically, restoring the previous receipt if the swap fails.
func writeFile(path string, data []byte) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err = os.WriteFile(path, data, config.DefaultFilePermissions); err != nil {
			return fmt.Errorf("write receipt file: %w", err)
		}

		return nil
	}

	checksum := sha256.Sum256(data)
	options := goupdate.Options{
		TargetPath: path,
		TargetMode: config.DefaultFilePermissions,
		Checksum:   checksum[:],
	}

	if err := goupdate.Apply(bytes.NewReader(data), options); err != nil {
		if rollbackErr := goupdate.RollbackError(err); rollbackErr != nil {
			return fmt.Errorf("replace receipt file: %w (restore failed: %w)", err, rollbackErr)
		}

		return fmt.Errorf("replace receipt file: %w", err)
	}

	return nil
}

// fromStruct converts the JSON document into the domain Receipt model.
func fromStruct(document *structpb.Struct) (*setup.Receipt, error) {
	fields := document.GetFields()

	receipt := &setup.Receipt{
		Version: fields[fieldVersion].GetStringValue(),
		Archive: fields[fieldArchive].GetStringValue(),
		EntryID: fields[fieldEntryID].GetStringValue(),
		Schemas: int(fields[fieldSchemas].GetNumberValue()),
		Warning: fields[fieldWarning].GetStringValue(),
	}

	if raw := fields[fieldInstalledAt].GetStringValue(); raw != "" {
		installedAt, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, fmt.Errorf("decode installed_at: %w", err)
		}

		receipt.InstalledAt = installedAt
	}

	if actor := fields[fieldActor].GetStructValue(); actor != nil {
		receipt.Actor = &setup.Actor{
			Hostname: actor.GetFields()[fieldHostname].GetStringValue(),
			Username: actor.GetFields()[fieldUsername].GetStringValue(),
		}
	}

	return receipt, nil
}

// toStruct converts the domain Receipt model into a JSON document.
func toStruct(receipt *setup.Receipt) (*structpb.Struct, error) {
	values := map[string]any{
		fieldVersion: receipt.Version,
		fieldArchive: receipt.Archive,
		fieldEntryID: receipt.EntryID,
		fieldSchemas: receipt.Schemas,
	}

	if !receipt.InstalledAt.IsZero() {
		values[fieldInstalledAt] = receipt.InstalledAt.UTC().Format(time.RFC3339Nano)
	}

	if receipt.Actor != nil {
		values[fieldActor] = map[string]any{
			fieldHostname: receipt.Actor.Hostname,
			fieldUsername: receipt.Actor.Username,
		}
	}

	if receipt.Warning != "" {
		values[fieldWarning] = receipt.Warning
	}

	return structpb.NewStruct(values)
}
