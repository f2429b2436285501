package domain

import "time"

// BuildInfo records the last promotion of a package's output.
type BuildInfo struct {
	Package    string       `json:"package,omitzero"`
	Version    string       `json:"version,omitzero"`
	OutputHash string       `json:"output_hash,omitzero"`
	Targets    []TargetKind `json:"targets,omitempty"`
	Timestamp  time.Time    `json:"timestamp,omitzero"`
}
