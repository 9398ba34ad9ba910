// Copyright (c) 2025 Arteus Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"sync"
	"time"
)

// =============================================================================
// FONT PACK
// =============================================================================

// maxFontSize limits fetched font files.
const maxFontSize = 20 * 1024 * 1024 // 20MB

// FontLoader fetches the regular and bold TTF bytes.
type FontLoader func() (regular, bold []byte, err error)

// FontPack is an explicitly owned, lazily-initialized handle to the
// Unicode font pair used by the PDF exporter. The loader runs at most once
// per pack lifetime; the result (or failure) is cached. On failure the PDF
// path falls back to a built-in core font with degraded glyph coverage.
type FontPack struct {
	loader FontLoader

	once    sync.Once
	regular []byte
	bold    []byte
	err     error
}

// NewFontPack creates a font pack with the given loader. A nil loader
// yields a pack that always reports the core-font fallback.
func NewFontPack(loader FontLoader) *FontPack {
	return &FontPack{loader: loader}
}

// NewFileFontPack loads the font pair from TTF files on disk.
func NewFileFontPack(regularPath, boldPath string) *FontPack {
	return NewFontPack(func() ([]byte, []byte, error) {
		regular, err := os.ReadFile(regularPath)
		if err != nil {
			return nil, nil, fmt.Errorf("read regular font: %w", err)
		}
		bold, err := os.ReadFile(boldPath)
		if err != nil {
			return nil, nil, fmt.Errorf("read bold font: %w", err)
		}
		return regular, bold, nil
	})
}

// NewHTTPFontPack fetches the font pair from URLs once per pack lifetime.
func NewHTTPFontPack(regularURL, boldURL string) *FontPack {
	client := &http.Client{Timeout: 30 * time.Second}
	return NewFontPack(func() ([]byte, []byte, error) {
		regular, err := fetchFont(client, regularURL)
		if err != nil {
			return nil, nil, err
		}
		bold, err := fetchFont(client, boldURL)
		if err != nil {
			return nil, nil, err
		}
		return regular, bold, nil
	})
}

func fetchFont(client *http.Client, url string) ([]byte, error) {
	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch font %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch font %s: HTTP %d", url, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFontSize))
	if err != nil {
		return nil, fmt.Errorf("read font %s: %w", url, err)
	}
	return data, nil
}

// Load returns the cached font pair, fetching on first call. After a
// failure every subsequent call returns the same error without retrying.
func (p *FontPack) Load() (regular, bold []byte, err error) {
	p.once.Do(func() {
		if p.loader == nil {
			p.err = errors.New("no font loader configured")
			return
		}
		p.regular, p.bold, p.err = p.loader()
		if p.err != nil {
			log.Printf("export: font load failed, PDF falls back to core font: %v", p.err)
		}
	})
	return p.regular, p.bold, p.err
}
