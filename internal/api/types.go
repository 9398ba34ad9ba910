// Copyright (c) 2025 Arteus Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import "github.com/arteusai/council-tui/internal/council"

// =============================================================================
// SERVER METADATA
// =============================================================================

// ServerConfig is the deployment configuration exposed by GET /api/config.
type ServerConfig struct {
	AuthEnabled  bool   `json:"auth_enabled"`
	LeadsMode    bool   `json:"leads_mode"`
	AppName      string `json:"app_name,omitempty"`
	DefaultLang  string `json:"default_language,omitempty"`
	ScrapingOn   bool   `json:"scraping_enabled,omitempty"`
	MaxModels    int    `json:"max_models,omitempty"`
	BackendBuild string `json:"build,omitempty"`
}

// ModelCatalog is the response of GET /api/models.
type ModelCatalog struct {
	CouncilModels    []string `json:"council_models"`
	ChairmanModel    string   `json:"chairman_model"`
	DefaultPreferred []string `json:"default_preferred_models,omitempty"`
}

// PromptTemplate is one entry of the personalization or identity template
// catalogs. Names come localized per deployment language.
type PromptTemplate struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Prompt      string `json:"prompt,omitempty"`
}

// =============================================================================
// AUTH
// =============================================================================

// User is the authenticated account returned by login and /api/auth/me.
type User struct {
	ID       string `json:"id,omitempty"`
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
	IsAdmin  bool   `json:"is_admin,omitempty"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the bearer token issued on successful login.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
	User        *User  `json:"user,omitempty"`
}

// MeResponse is the body of GET /api/auth/me.
type MeResponse struct {
	Authenticated bool  `json:"authenticated"`
	User          *User `json:"user,omitempty"`
	IPBypassed    bool  `json:"ip_bypassed,omitempty"`
}

// LeadRegisterRequest is the body of POST /api/leads/register, used by
// deployments that gate access on a contact instead of a password.
type LeadRegisterRequest struct {
	Email    string `json:"email,omitempty"`
	Telegram string `json:"telegram,omitempty"`
}

// =============================================================================
// SETTINGS
// =============================================================================

// CouncilSettings is the per-user personalization payload of
// GET/POST /api/user/council-settings.
type CouncilSettings struct {
	PersonalPrompt     string `json:"personal_prompt"`
	TemplateID         string `json:"template_id"`
	BaseSystemPrompt   string `json:"base_system_prompt"`
	BaseSystemPromptID string `json:"base_system_prompt_id"`
}

// =============================================================================
// MESSAGING
// =============================================================================

// SendMessageRequest is the body of POST /api/conversations/{id}/message
// and its /stream variant.
type SendMessageRequest struct {
	Content          string   `json:"content"`
	Language         string   `json:"language,omitempty"`
	Models           []string `json:"models,omitempty"`
	ChairmanModel    string   `json:"chairman_model,omitempty"`
	BaseSystemPrompt string   `json:"base_system_prompt,omitempty"`
}

// SendMessageResponse is the full (non-streaming) council result.
type SendMessageResponse struct {
	Stage1   council.Stage1Results   `json:"stage1"`
	Stage2   council.Stage2Results   `json:"stage2"`
	Stage3   *council.Stage3Response `json:"stage3"`
	Metadata *council.Metadata       `json:"metadata,omitempty"`
}
