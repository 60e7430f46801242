package services

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// UsersEnvKey is the dotfile key carrying the credential mapping.
const UsersEnvKey = "APP_USERS"

var (
	ErrUserExists   = errors.New("user already exists")
	ErrUserNotFound = errors.New("user does not exist")
)

// UserStore is the authoritative mapping of username -> password hash.
// The serving process treats it as read-only after the initial load;
// mutations happen through the administrative CLI.
type UserStore struct {
	mu    sync.RWMutex
	users map[string]string
	log   logrus.FieldLogger
}

// NewUserStore creates an empty store. The logger receives the loader's
// diagnostics so callers can capture them in tests.
func NewUserStore(log logrus.FieldLogger) *UserStore {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &UserStore{
		users: make(map[string]string),
		log:   log,
	}
}

// LoadFromJSON replaces the mapping with the parsed contents of a JSON
// object of username -> hash. Malformed input leaves the store empty and
// reports a warning; the system then runs with zero valid users.
func (s *UserStore) LoadFromJSON(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		s.log.Warnf("%s value is empty, no users loaded", UsersEnvKey)
		return nil
	}

	var users map[string]string
	if err := json.Unmarshal([]byte(raw), &users); err != nil {
		s.log.Warnf("Error parsing %s JSON: %v", UsersEnvKey, err)
		return nil
	}
	if users == nil {
		// "null" unmarshals into a nil map without an error; keep the
		// store's map allocated so later mutations stay safe.
		s.log.Warnf("%s value is not a JSON object, no users loaded", UsersEnvKey)
		return nil
	}

	s.mu.Lock()
	s.users = users
	s.mu.Unlock()
	return nil
}

// LoadFromEnvLine parses a single "APP_USERS=<json>" dotfile line.
// A wrong key name or a line without '=' degrades to zero users.
func (s *UserStore) LoadFromEnvLine(line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		s.log.Warn("Credential line is empty, no users loaded")
		return nil
	}

	key, value, found := strings.Cut(line, "=")
	if !found {
		s.log.Warnf("Malformed credential line, expected %s=<json>", UsersEnvKey)
		return nil
	}
	if key != UsersEnvKey {
		s.log.Warnf("Expected key %s but found %s, no users loaded", UsersEnvKey, key)
		return nil
	}

	return s.LoadFromJSON(value)
}

// secretsFile is the on-disk shape of the structured secrets source.
// TOML is marshalled directly so usernames keep their case; viper
// lower-cases keys on read.
type secretsFile struct {
	Users map[string]string `toml:"users"`
}

// LoadFromSecretsFile reads a structured secrets file with a "users"
// table mapping username -> hash. Missing or unreadable files degrade
// to zero users with a warning.
func (s *UserStore) LoadFromSecretsFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		s.log.Warnf("Error reading secrets file %s: %v", path, err)
		return nil
	}

	var sf secretsFile
	if err := toml.Unmarshal(data, &sf); err != nil {
		s.log.Warnf("Error parsing secrets file %s: %v", path, err)
		return nil
	}

	if len(sf.Users) == 0 {
		s.log.Warnf("Secrets file %s has no users section", path)
		return nil
	}

	s.mu.Lock()
	s.users = sf.Users
	s.mu.Unlock()
	return nil
}

// Verify hashes the supplied password and compares it against the stored
// hash for the username. Legacy records hold an unsalted hex sha256 digest;
// records written by Add/ChangePassword hold a bcrypt hash ("$2" prefix).
// An absent username returns false the same way a wrong password does.
func (s *UserStore) Verify(username, password string) bool {
	s.mu.RLock()
	stored, ok := s.users[username]
	s.mu.RUnlock()

	if !ok {
		return false
	}

	if strings.HasPrefix(stored, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
	}

	sum := sha256.Sum256([]byte(password))
	digest := hex.EncodeToString(sum[:])
	return subtle.ConstantTimeCompare([]byte(digest), []byte(stored)) == 1
}

// Exists reports whether a username is present.
func (s *UserStore) Exists(username string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.users[username]
	return ok
}

// Add inserts a new credential record with a bcrypt hash.
func (s *UserStore) Add(username, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[username]; ok {
		return ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.log.Error("Error hashing password: ", err)
		return errors.New("failed to hash password")
	}

	s.users[username] = string(hash)
	return nil
}

// Remove deletes a credential record.
func (s *UserStore) Remove(username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[username]; !ok {
		return ErrUserNotFound
	}

	delete(s.users, username)
	return nil
}

// ChangePassword replaces the stored hash for an existing user.
// The new hash is bcrypt, so legacy sha256 records migrate as
// passwords change.
func (s *UserStore) ChangePassword(username, newPassword string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[username]; !ok {
		return ErrUserNotFound
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		s.log.Error("Error hashing password: ", err)
		return errors.New("failed to hash password")
	}

	s.users[username] = string(hash)
	return nil
}

// EnvLine renders the full mapping as an "APP_USERS=<json>" line so an
// operator can persist it back to the dotfile after a mutation.
func (s *UserStore) EnvLine() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	raw, err := json.Marshal(s.users)
	if err != nil {
		// map[string]string cannot fail to marshal; guard anyway
		s.log.Error("Error rendering users JSON: ", err)
		return UsersEnvKey + "={}"
	}
	return fmt.Sprintf("%s=%s", UsersEnvKey, raw)
}

// WriteSecretsFile writes the mapping as a structured secrets file with a
// "users" table. Used by the bootstrap flow; normal mutations only render
// the env line.
func (s *UserStore) WriteSecretsFile(path string) error {
	s.mu.RLock()
	users := make(map[string]string, len(s.users))
	for name, hash := range s.users {
		users[name] = hash
	}
	s.mu.RUnlock()

	data, err := toml.Marshal(secretsFile{Users: users})
	if err != nil {
		return fmt.Errorf("failed to render secrets file: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write secrets file %s: %w", path, err)
	}
	return nil
}

// Usernames returns a sorted list of known usernames.
func (s *UserStore) Usernames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.users))
	for name := range s.users {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len reports the number of credential records.
func (s *UserStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}
