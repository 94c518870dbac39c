package profile

import (
	"encoding/json"
	"fmt"
	"os"
)

// Export serializes the current snapshot to indented JSON.
func (p *Profiler) Export() ([]byte, error) {
	data, err := json.MarshalIndent(p.Profile(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("profile: export: %w", err)
	}
	return data, nil
}

// ExportFile writes the current snapshot to path as JSON.
func (p *Profiler) ExportFile(path string) error {
	data, err := p.Export()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("profile: export: %w", err)
	}
	return nil
}
