package identity

import (
	"encoding/json"
	"os"

	"github.com/authenticare/location-agent/pkg/file"
)

// Identity holds the user account and agent install metadata.
type Identity struct {
	UserID   string          `json:"user_id,omitempty"`
	AgentID  string          `json:"agent_id,omitempty"`
	Name     string          `json:"name,omitempty"`
	Metadata json.RawMessage `json:"metadata,omitempty"`
}

// IdentityInterface defines methods for managing the agent identity.
type IdentityInterface interface {
	LoadIdentity() error
	SaveAgentID(agentID string) error
	GetUserID() string
	GetAgentID() string
	GetIdentity() *Identity
}

// IdentityService manages the identity and its associated file operations.
type IdentityService struct {
	IdentityFile string
	Identity     Identity
	fileOps      file.FileOperations
}

// NewIdentityService initializes a new IdentityService instance.
func NewIdentityService(filePath string, fileOps file.FileOperations) IdentityInterface {
	return &IdentityService{
		IdentityFile: filePath,
		fileOps:      fileOps,
		Identity:     Identity{},
	}
}

// LoadIdentity reads the identity file and populates the Identity field.
func (d *IdentityService) LoadIdentity() error {
	err := d.fileOps.ReadJsonFile(d.IdentityFile, &d.Identity)
	if err != nil {
		if os.IsNotExist(err) {
			// File does not exist, initialize with default empty values
			d.Identity = Identity{}
			return nil
		}
		return err
	}

	return nil
}

// GetIdentity returns the current Identity.
func (d *IdentityService) GetIdentity() *Identity {
	return &d.Identity
}

// GetUserID returns the current user ID.
func (d *IdentityService) GetUserID() string {
	return d.Identity.UserID
}

// GetAgentID returns the current agent ID.
func (d *IdentityService) GetAgentID() string {
	return d.Identity.AgentID
}

// SaveAgentID updates the agent ID in the Identity field and writes it back to the file.
func (d *IdentityService) SaveAgentID(agentID string) error {
	d.Identity.AgentID = agentID
	return d.fileOps.WriteJsonFile(d.IdentityFile, d.Identity)
}
