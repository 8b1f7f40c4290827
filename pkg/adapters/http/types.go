package http

import (
	"encoding/json"

	"github.com/aretw0/flowstudio/pkg/domain"
	"github.com/aretw0/flowstudio/pkg/validation"
)

// ValidateFlowRequest is the body of POST /validate.
type ValidateFlowRequest struct {
	Flow       domain.UserFlowConfig `json:"flow"`
	UILanguage string                `json:"ui_language,omitempty"`
}

// ValidateFlowResponse is the body returned by POST /validate.
type ValidateFlowResponse struct {
	OK     bool              `json:"ok"`
	Report validation.Report `json:"report"`
}

// ValidateNodeRequest is the body of POST /validate/node. Config is an
// entrypoint or block config, as found in a flow.
type ValidateNodeRequest struct {
	Kind           domain.NodeKind        `json:"kind"`
	Config         json.RawMessage        `json:"config"`
	LanguageConfig *domain.LanguageConfig `json:"language_config,omitempty"`
	UILanguage     string                 `json:"ui_language,omitempty"`
}

// ValidateNodeResponse is the body returned by POST /validate/node.
type ValidateNodeResponse struct {
	OK     bool     `json:"ok"`
	Errors []string `json:"errors"`
}

// CloneRequest is the body of POST /clone.
type CloneRequest struct {
	Flow    domain.UserFlowConfig `json:"flow"`
	NodeIDs []string              `json:"node_ids"`
}

// PositionRequest is the body of POST /layout/position.
type PositionRequest struct {
	Flow domain.UserFlowConfig `json:"flow"`
}

// ConfigEvent is sent to /events subscribers when a config changes.
type ConfigEvent struct {
	Name string `json:"name"`
	Op   string `json:"op"`
}

// ErrorResponse is the body of every error reply. Internal is set for
// structural errors, which are not validation problems of the user's config.
type ErrorResponse struct {
	Error    string `json:"error"`
	Internal bool   `json:"internal,omitempty"`
}
