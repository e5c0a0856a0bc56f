// Package services wires the parsers, crypto, and device layers into the
// components callers use: the key store, the partition stream, and the
// disc image enumerator.
package services

import (
	"bufio"
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/disctools/go-wiidisc/internal/interfaces"
)

// KeyStoreConfig holds configuration for locating the key file.
type KeyStoreConfig struct {
	KeysFile    string   `mapstructure:"keys_file"`
	SearchPaths []string `mapstructure:"search_paths"`
}

// LoadKeyStoreConfig loads key store configuration using Viper.
func LoadKeyStoreConfig() (*KeyStoreConfig, error) {
	v := viper.New()
	v.SetConfigName("wiidisc-config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.wiidisc")
	v.AddConfigPath("/etc/wiidisc")

	v.SetDefault("keys_file", "")
	v.SetDefault("search_paths", []string{
		"keys.txt",
		"$HOME/.wiidisc/keys.txt",
	})

	v.SetEnvPrefix("WIIDISC")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults
	}

	var config KeyStoreConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}

// FileKeyStore is a key store loaded from a text file of `name = hexkey`
// lines. Verification is by MD5 fingerprint of the raw key bytes.
type FileKeyStore struct {
	keys map[string][]byte
}

// Ensure FileKeyStore implements the KeyStore interface
var _ interfaces.KeyStore = (*FileKeyStore)(nil)

// NewFileKeyStore loads a key file from the given filesystem. Lines that
// are blank, comments, or malformed hex are skipped.
func NewFileKeyStore(fsys afero.Fs, path string) (*FileKeyStore, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", interfaces.ErrKeyStore, err)
	}
	defer f.Close()

	store := &FileKeyStore{keys: make(map[string][]byte)}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		name := strings.TrimSpace(parts[0])
		val, err := hex.DecodeString(strings.TrimSpace(parts[1]))
		if err != nil {
			continue
		}
		store.keys[name] = val
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", interfaces.ErrKeyStore, err)
	}

	return store, nil
}

// OpenDefaultKeyStore loads the key file named by the configuration,
// trying the configured path first and then the search paths.
func OpenDefaultKeyStore(fsys afero.Fs, config *KeyStoreConfig) (*FileKeyStore, error) {
	var candidates []string
	if config.KeysFile != "" {
		candidates = append(candidates, config.KeysFile)
	}
	candidates = append(candidates, config.SearchPaths...)

	for _, path := range candidates {
		if ok, _ := afero.Exists(fsys, path); ok {
			return NewFileKeyStore(fsys, path)
		}
	}
	return nil, fmt.Errorf("%w: no key file found", interfaces.ErrKeyStore)
}

// GetAndVerify returns the key stored under name after checking its MD5
// fingerprint against the caller's expectation.
func (s *FileKeyStore) GetAndVerify(name string, fingerprint [16]byte) ([]byte, error) {
	key, ok := s.keys[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", interfaces.ErrKeyAbsent, name)
	}

	sum := md5.Sum(key)
	if subtle.ConstantTimeCompare(sum[:], fingerprint[:]) != 1 {
		return nil, fmt.Errorf("%w: %q", interfaces.ErrKeyChecksumMismatch, name)
	}

	// Copy so callers cannot mutate the store.
	out := make([]byte, len(key))
	copy(out, key)
	return out, nil
}

// Names returns the names of the loaded keys, for diagnostics.
func (s *FileKeyStore) Names() []string {
	names := make([]string, 0, len(s.keys))
	for name := range s.keys {
		names = append(names, name)
	}
	return names
}

// MemoryKeyStore is an in-memory key store with the same verification
// semantics as FileKeyStore.
type MemoryKeyStore struct {
	keys map[string][]byte
}

// Ensure MemoryKeyStore implements the KeyStore interface
var _ interfaces.KeyStore = (*MemoryKeyStore)(nil)

// NewMemoryKeyStore creates an empty in-memory store.
func NewMemoryKeyStore() *MemoryKeyStore {
	return &MemoryKeyStore{keys: make(map[string][]byte)}
}

// Set stores a key under name.
func (s *MemoryKeyStore) Set(name string, key []byte) {
	val := make([]byte, len(key))
	copy(val, key)
	s.keys[name] = val
}

// GetAndVerify returns the key stored under name after checking its MD5
// fingerprint.
func (s *MemoryKeyStore) GetAndVerify(name string, fingerprint [16]byte) ([]byte, error) {
	key, ok := s.keys[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", interfaces.ErrKeyAbsent, name)
	}

	sum := md5.Sum(key)
	if subtle.ConstantTimeCompare(sum[:], fingerprint[:]) != 1 {
		return nil, fmt.Errorf("%w: %q", interfaces.ErrKeyChecksumMismatch, name)
	}

	out := make([]byte, len(key))
	copy(out, key)
	return out, nil
}
