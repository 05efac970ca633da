package intelligence

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/alexanderramin/prdchat/internal/domain"
)

// ErrEmptyProfile is returned when a profile file has no usable entries.
var ErrEmptyProfile = errors.New("company profile is empty")

// profileLoadedText is the AI turn content recorded for a loaded profile.
const profileLoadedText = "Company profile loaded from file."

type profileFile struct {
	Company map[string]string `yaml:"company"`
}

// SaveProfile writes collected data as a YAML profile that LoadProfile reads.
func SaveProfile(path string, collected map[string]string) error {
	if len(collected) == 0 {
		return ErrEmptyProfile
	}
	data, err := yaml.Marshal(profileFile{Company: collected})
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write profile %s: %w", path, err)
	}
	return nil
}

// LoadProfile reads a profile written by SaveProfile.
func LoadProfile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile %s: %w", path, err)
	}
	var pf profileFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parse profile %s: %w", path, err)
	}
	fields := domain.NewStructuredResponse("", pf.Company, false).Fields
	if len(fields) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyProfile)
	}
	return fields, nil
}

// StateFromProfile returns a finished intake session whose collected data is
// fields, so drafting can start without repeating the interview.
func StateFromProfile(fields map[string]string) *domain.SessionState {
	state := domain.NewSessionState(false)
	state.AppendAI(domain.NewStructuredResponse(profileLoadedText, fields, true))
	return state
}
