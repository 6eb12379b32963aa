package storage

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/fishtank/internal/server/models"
)

// DocumentVersion is written into every persisted document.
const DocumentVersion = 1

// document is the persisted layout: four named top-level collections.
type document struct {
	Version     int                         `json:"version"`
	Fish        []models.Fish               `json:"fish"`
	Users       []models.User               `json:"users"`
	Reports     []models.Report             `json:"reports"`
	ResetTokens []models.PasswordResetToken `json:"resetTokens"`
}

// Encode renders s as an indented JSON document.
func Encode(s *models.Snapshot) ([]byte, error) {
	doc := document{
		Version:     DocumentVersion,
		Fish:        s.Fish,
		Users:       s.Users,
		Reports:     s.Reports,
		ResetTokens: s.ResetTokens,
	}
	if doc.Fish == nil {
		doc.Fish = []models.Fish{}
	}
	if doc.Users == nil {
		doc.Users = []models.User{}
	}
	if doc.Reports == nil {
		doc.Reports = []models.Report{}
	}
	if doc.ResetTokens == nil {
		doc.ResetTokens = []models.PasswordResetToken{}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// Decode parses a document produced by Encode. Documents without a version
// field (written before versioning) are accepted; newer versions are not.
func Decode(data []byte) (*models.Snapshot, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("decode snapshot: empty document")
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if doc.Version > DocumentVersion {
		return nil, fmt.Errorf("decode snapshot: unsupported version %d", doc.Version)
	}

	s := &models.Snapshot{
		Fish:        doc.Fish,
		Users:       doc.Users,
		Reports:     doc.Reports,
		ResetTokens: doc.ResetTokens,
	}
	return s.Normalize(), nil
}
