// Copyright (c) 2025 Arteus Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api is the HTTP/SSE client for the Arteus council backend.
//
// The backend runs the actual council orchestration (per-model drafts, peer
// rankings, chairman synthesis); this package is the thin wire layer: one
// method per endpoint, bearer-token or session-id auth attached from a
// pluggable credential source, and a streaming consumer that decodes the
// `data: <json>` event lines emitted by the message/stream endpoint.
package api
