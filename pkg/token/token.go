package token

import (
	"encoding/json"
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/authenticare/location-agent/pkg/encryption"
	"github.com/authenticare/location-agent/pkg/file"
)

// ManagerInterface defines methods to manage the backend access and refresh tokens.
type ManagerInterface interface {
	LoadTokens() error
	SaveTokens(accessToken, refreshToken string) error
	AccessToken() string
	RefreshToken() (string, error)
	IsAccessTokenValid() (bool, error)
}

// tokenData holds both tokens for storage.
type tokenData struct {
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// Manager persists backend tokens encrypted at rest.
type Manager struct {
	TokenFilePath     string
	access            string
	refresh           string
	FileOps           file.FileOperations
	EncryptionManager encryption.EncryptionManagerInterface
}

// NewManager initializes a new token Manager backed by a single file.
func NewManager(tokenFilePath string, fileOps file.FileOperations,
	encryptionManager encryption.EncryptionManagerInterface) ManagerInterface {
	return &Manager{
		TokenFilePath:     tokenFilePath,
		FileOps:           fileOps,
		EncryptionManager: encryptionManager,
	}
}

// LoadTokens reads both tokens from the token file. A missing or empty file
// initializes both to empty strings.
func (m *Manager) LoadTokens() error {
	data, err := m.FileOps.ReadFileRaw(m.TokenFilePath)
	if err != nil {
		if os.IsNotExist(err) {
			m.access = ""
			m.refresh = ""
			return nil
		}
		return err
	}

	if len(data) == 0 {
		m.access = ""
		m.refresh = ""
		return nil
	}

	decryptedData, err := m.EncryptionManager.Decrypt(data)
	if err != nil {
		return err
	}

	var tokens tokenData
	if err := json.Unmarshal(decryptedData, &tokens); err != nil {
		return errors.New("failed to parse token data: " + err.Error())
	}

	m.access = tokens.AccessToken
	m.refresh = tokens.RefreshToken
	return nil
}

// SaveTokens encrypts and writes both tokens to the token file.
func (m *Manager) SaveTokens(accessToken, refreshToken string) error {
	tokens := tokenData{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}

	data, err := json.Marshal(tokens)
	if err != nil {
		return errors.New("failed to serialize token data: " + err.Error())
	}

	encryptedData, err := m.EncryptionManager.Encrypt(data)
	if err != nil {
		return errors.New("failed to encrypt token data: " + err.Error())
	}

	if err := m.FileOps.WriteFileRaw(m.TokenFilePath, encryptedData); err != nil {
		return err
	}

	m.access = accessToken
	m.refresh = refreshToken
	return nil
}

// AccessToken returns the current access token only if it is still valid.
func (m *Manager) AccessToken() string {
	if m.access == "" {
		return ""
	}

	isValid, err := m.IsAccessTokenValid()
	if err != nil || !isValid {
		return ""
	}

	return m.access
}

// RefreshToken returns the current refresh token, loading it from the file if necessary.
func (m *Manager) RefreshToken() (string, error) {
	if m.refresh == "" && m.access == "" {
		if err := m.LoadTokens(); err != nil {
			return "", err
		}
	}
	return m.refresh, nil
}

// IsAccessTokenValid checks the expiry claim of the current access token.
// The token is issued and signed by the backend; the agent only inspects the
// claims, it cannot verify the signature.
func (m *Manager) IsAccessTokenValid() (bool, error) {
	if m.access == "" {
		return false, nil
	}

	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(m.access, claims); err != nil {
		return false, nil // Malformed tokens are treated as expired, not as errors
	}

	exp, ok := claims["exp"].(float64)
	if !ok {
		return false, errors.New("token expiration (exp) claim missing or invalid")
	}

	if time.Now().After(time.Unix(int64(exp), 0)) {
		return false, nil
	}

	return true, nil
}
