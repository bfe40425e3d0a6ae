package storage

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

// HistorySuffix is appended to the vault path to name the history database.
const HistorySuffix = ".history"

// Bucket names
var (
	ConfigBucket    = []byte("config")    // Version, timestamps, vault ID - unencrypted
	IndexBucket     = []byte("index")     // Snapshot metadata - unencrypted
	SnapshotsBucket = []byte("snapshots") // Raw (encrypted) vault files
)

// Config keys
var (
	ConfigVersion  = []byte("version")
	ConfigCreated  = []byte("created")
	ConfigModified = []byte("modified")
	ConfigVaultID  = []byte("vault_id")
)

var (
	ErrSnapshotNotFound = errors.New("snapshot not found")
	ErrNotInitialized   = errors.New("history not initialized")
)

// Storage provides BBolt-based storage for vault history
type Storage struct {
	db *bolt.DB
}

// HistoryPath returns the history database path for a vault file.
func HistoryPath(vaultPath string) string {
	return vaultPath + HistorySuffix
}

// Open opens or creates a history database
func Open(path string) (*Storage, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Storage{db: db}, nil
}

// OpenInitialized opens the database and makes sure the buckets exist.
func OpenInitialized(path string) (*Storage, error) {
	s, err := Open(path)
	if err != nil {
		return nil, err
	}
	if err := s.Initialize(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database
func (s *Storage) Close() error {
	return s.db.Close()
}

// Path returns the database file path
func (s *Storage) Path() string {
	return s.db.Path()
}

// Initialize creates the bucket structure. It is idempotent.
func (s *Storage) Initialize() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		// Create all buckets
		for _, bucket := range [][]byte{ConfigBucket, IndexBucket, SnapshotsBucket} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}

		config := tx.Bucket(ConfigBucket)
		if config.Get(ConfigVersion) != nil {
			return nil
		}

		// Set version
		if err := config.Put(ConfigVersion, []byte("1")); err != nil {
			return err
		}

		// Set creation time
		created, _ := time.Now().MarshalBinary()
		if err := config.Put(ConfigCreated, created); err != nil {
			return err
		}
		return config.Put(ConfigModified, created)
	})
}

// IsInitialized checks if the database has been initialized
func (s *Storage) IsInitialized() (bool, error) {
	var initialized bool
	err := s.db.View(func(tx *bolt.Tx) error {
		config := tx.Bucket(ConfigBucket)
		if config != nil && config.Get(ConfigVersion) != nil {
			initialized = true
		}
		return nil
	})
	return initialized, err
}

// GetModified retrieves the time of the last snapshot change
func (s *Storage) GetModified() (time.Time, error) {
	var modified time.Time
	err := s.db.View(func(tx *bolt.Tx) error {
		config := tx.Bucket(ConfigBucket)
		if config == nil {
			return ErrNotInitialized
		}
		data := config.Get(ConfigModified)
		if data == nil {
			return fmt.Errorf("modified time not found")
		}
		return modified.UnmarshalBinary(data)
	})
	return modified, err
}

func touchModified(tx *bolt.Tx) error {
	modified, _ := time.Now().MarshalBinary()
	return tx.Bucket(ConfigBucket).Put(ConfigModified, modified)
}

// GetVaultID retrieves the vault ID from config bucket
func (s *Storage) GetVaultID() (string, error) {
	var vaultID string
	err := s.db.View(func(tx *bolt.Tx) error {
		config := tx.Bucket(ConfigBucket)
		if config == nil {
			return ErrNotInitialized
		}
		data := config.Get(ConfigVaultID)
		if data == nil {
			return fmt.Errorf("vault_id not found")
		}
		vaultID = string(data)
		return nil
	})
	return vaultID, err
}

// GetOrCreateVaultID retrieves existing vault ID or generates a new one
func (s *Storage) GetOrCreateVaultID() (string, error) {
	var vaultID string
	err := s.db.Update(func(tx *bolt.Tx) error {
		config := tx.Bucket(ConfigBucket)
		if config == nil {
			return ErrNotInitialized
		}
		if data := config.Get(ConfigVaultID); data != nil {
			vaultID = string(data)
			return nil
		}
		vaultID = uuid.NewString()
		return config.Put(ConfigVaultID, []byte(vaultID))
	})
	if err != nil {
		return "", err
	}
	return vaultID, nil
}

func idKey(id uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, id)
	return k
}

// AddSnapshot stores a copy of raw vault file bytes.
func (s *Storage) AddSnapshot(raw []byte, reason string) (SnapshotInfo, error) {
	var info SnapshotInfo
	err := s.db.Update(func(tx *bolt.Tx) error {
		index := tx.Bucket(IndexBucket)
		snapshots := tx.Bucket(SnapshotsBucket)
		if index == nil || snapshots == nil {
			return ErrNotInitialized
		}

		id, err := index.NextSequence()
		if err != nil {
			return err
		}
		info = SnapshotInfo{
			ID:      id,
			Created: time.Now(),
			Size:    int64(len(raw)),
			Reason:  reason,
		}
		data, err := json.Marshal(info)
		if err != nil {
			return err
		}
		if err := index.Put(idKey(id), data); err != nil {
			return err
		}
		if err := snapshots.Put(idKey(id), raw); err != nil {
			return err
		}
		return touchModified(tx)
	})
	return info, err
}

// SnapshotFile stores the current contents of the vault file at path.
// A missing file is not an error; ok is false in that case.
func (s *Storage) SnapshotFile(path, reason string) (info SnapshotInfo, ok bool, err error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return SnapshotInfo{}, false, nil
		}
		return SnapshotInfo{}, false, fmt.Errorf("failed to read vault for snapshot: %w", err)
	}
	info, err = s.AddSnapshot(raw, reason)
	if err != nil {
		return SnapshotInfo{}, false, err
	}
	return info, true, nil
}

// ListSnapshots returns all snapshots, oldest first
func (s *Storage) ListSnapshots() ([]SnapshotInfo, error) {
	var infos []SnapshotInfo
	err := s.db.View(func(tx *bolt.Tx) error {
		index := tx.Bucket(IndexBucket)
		if index == nil {
			return ErrNotInitialized
		}
		return index.ForEach(func(k, v []byte) error {
			var info SnapshotInfo
			if err := json.Unmarshal(v, &info); err != nil {
				return err
			}
			infos = append(infos, info)
			return nil
		})
	})
	return infos, err
}

// GetSnapshot retrieves the raw vault bytes of a snapshot
func (s *Storage) GetSnapshot(id uint64) ([]byte, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		snapshots := tx.Bucket(SnapshotsBucket)
		if snapshots == nil {
			return ErrNotInitialized
		}
		data = snapshots.Get(idKey(id))
		if data == nil {
			return ErrSnapshotNotFound
		}
		// Make a copy since the slice is only valid during the transaction
		data = append([]byte(nil), data...)
		return nil
	})
	return data, err
}

// Latest returns the newest snapshot, if any
func (s *Storage) Latest() (SnapshotInfo, bool, error) {
	var info SnapshotInfo
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		index := tx.Bucket(IndexBucket)
		if index == nil {
			return ErrNotInitialized
		}
		k, v := index.Cursor().Last()
		if k == nil {
			return nil
		}
		found = true
		return json.Unmarshal(v, &info)
	})
	return info, found, err
}

// RemoveSnapshot deletes a single snapshot
func (s *Storage) RemoveSnapshot(id uint64) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		index := tx.Bucket(IndexBucket)
		if index == nil {
			return ErrNotInitialized
		}
		if index.Get(idKey(id)) == nil {
			return ErrSnapshotNotFound
		}
		if err := index.Delete(idKey(id)); err != nil {
			return err
		}
		if err := tx.Bucket(SnapshotsBucket).Delete(idKey(id)); err != nil {
			return err
		}
		return touchModified(tx)
	})
}

// Prune keeps the newest keep snapshots and deletes the rest. It returns
// the number of snapshots removed.
func (s *Storage) Prune(keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}
	removed := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		index := tx.Bucket(IndexBucket)
		snapshots := tx.Bucket(SnapshotsBucket)
		if index == nil || snapshots == nil {
			return ErrNotInitialized
		}

		var keys [][]byte
		if err := index.ForEach(func(k, _ []byte) error {
			keys = append(keys, append([]byte(nil), k...))
			return nil
		}); err != nil {
			return err
		}
		if len(keys) <= keep {
			return nil
		}

		victims := keys[:len(keys)-keep]
		for _, k := range victims {
			if err := index.Delete(k); err != nil {
				return err
			}
			if err := snapshots.Delete(k); err != nil {
				return err
			}
		}
		removed = len(victims)
		return touchModified(tx)
	})
	return removed, err
}

// Compact creates a compacted copy of the database, removing unused space.
// This is useful after pruning snapshots to reclaim disk space.
func (s *Storage) Compact() error {
	srcPath := s.db.Path()
	tmpPath := srcPath + ".compact"

	// Create new database
	dst, err := bolt.Open(tmpPath, 0600, nil)
	if err != nil {
		return fmt.Errorf("failed to create compact database: %w", err)
	}

	// Copy all buckets, keeping the index sequence so IDs stay unique
	err = s.db.View(func(srcTx *bolt.Tx) error {
		return dst.Update(func(dstTx *bolt.Tx) error {
			return srcTx.ForEach(func(name []byte, srcBucket *bolt.Bucket) error {
				dstBucket, err := dstTx.CreateBucketIfNotExists(name)
				if err != nil {
					return err
				}
				if err := dstBucket.SetSequence(srcBucket.Sequence()); err != nil {
					return err
				}
				return srcBucket.ForEach(func(k, v []byte) error {
					return dstBucket.Put(k, v)
				})
			})
		})
	})

	if err != nil {
		dst.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to copy data: %w", err)
	}

	if err := dst.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close compact database: %w", err)
	}

	if err := s.db.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close source database: %w", err)
	}

	// Atomic replace
	backupPath := srcPath + ".backup"
	if err := os.Rename(srcPath, backupPath); err != nil {
		return fmt.Errorf("failed to backup original: %w", err)
	}
	if err := os.Rename(tmpPath, srcPath); err != nil {
		os.Rename(backupPath, srcPath) // rollback
		return fmt.Errorf("failed to replace database: %w", err)
	}
	os.Remove(backupPath)

	// Reopen database
	s.db, err = bolt.Open(srcPath, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return fmt.Errorf("failed to reopen database: %w", err)
	}

	return nil
}
