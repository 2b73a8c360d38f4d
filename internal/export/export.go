// Package export writes computed scenes to disk as JSON files, gzipped
// when configured, so a rendered timeline can be archived or handed to
// a viewer without the engine running.
package export

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lifeweave/lifeweave/internal/config"
	"github.com/lifeweave/lifeweave/internal/util"
	"github.com/lifeweave/lifeweave/pkg/core"
)

// SceneExport is the root JSON structure.
type SceneExport struct {
	AppVersion string     `json:"appVersion"`
	Scene      core.Scene `json:"scene"`
}

// Exporter writes scenes into a configured directory.
type Exporter struct {
	cfg        config.MemoryConfig
	appVersion string

	lastExportPath string
}

// New creates an Exporter.
func New(cfg config.MemoryConfig, appVersion string) *Exporter {
	return &Exporter{cfg: cfg, appVersion: appVersion}
}

// LastExportPath returns the path of the most recent export, empty if
// nothing has been exported yet.
func (e *Exporter) LastExportPath() string {
	return e.lastExportPath
}

// Export writes the scene to a gzipped (or plain) JSON file named after
// the tier and compute time.
func (e *Exporter) Export(scene core.Scene) (string, error) {
	export := SceneExport{
		AppVersion: e.appVersion,
		Scene:      scene,
	}

	// Build filename
	tierName := util.Slugify(scene.Tier)
	timestamp := scene.ComputedAt.UTC().Format("20060102_150405")

	var filename string
	if e.cfg.CompressOutput {
		filename = fmt.Sprintf("scene_%s_%s.json.gz", tierName, timestamp)
	} else {
		filename = fmt.Sprintf("scene_%s_%s.json", tierName, timestamp)
	}

	outputPath := filepath.Join(e.cfg.ExportDir, filename)

	// Ensure output directory exists
	if err := os.MkdirAll(e.cfg.ExportDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	if e.cfg.CompressOutput {
		if err := writeGzipJSON(outputPath, export); err != nil {
			return "", err
		}
	} else {
		if err := writeJSON(outputPath, export); err != nil {
			return "", err
		}
	}

	e.lastExportPath = outputPath
	return outputPath, nil
}

func writeJSON(path string, data SceneExport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	return encoder.Encode(data)
}

func writeGzipJSON(path string, data SceneExport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	gzWriter := gzip.NewWriter(f)
	defer gzWriter.Close()

	encoder := json.NewEncoder(gzWriter)
	return encoder.Encode(data)
}

// Load reads a scene export back from disk, transparently handling
// gzip by extension.
func Load(path string) (SceneExport, error) {
	f, err := os.Open(path)
	if err != nil {
		return SceneExport{}, fmt.Errorf("failed to open export: %w", err)
	}
	defer f.Close()

	var decoder *json.Decoder
	if strings.HasSuffix(path, ".gz") {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return SceneExport{}, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		defer zr.Close()
		decoder = json.NewDecoder(zr)
	} else {
		decoder = json.NewDecoder(f)
	}

	var export SceneExport
	if err := decoder.Decode(&export); err != nil {
		return SceneExport{}, fmt.Errorf("failed to decode export: %w", err)
	}
	return export, nil
}
