package studio

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"canvas-ai/internal/adapter/surface/raster"
	"canvas-ai/internal/domain"
	"canvas-ai/internal/usecase/canvas"
)

const (
	defaultPNGPath  = "canvas.png"
	defaultJSONPath = "canvas.json"
)

// savePNG renders the session at full canvas resolution into a PNG file.
func (m Model) savePNG(path string) (string, error) {
	if path == "" {
		path = defaultPNGPath
	}
	surf, err := raster.New(m.deps.CanvasWidth, m.deps.CanvasHeight, raster.WithBackground(m.deps.Background))
	if err != nil {
		return "", err
	}
	if err := m.deps.Session.RenderTo(surf); err != nil {
		// Objects drawn before the failure are still written.
		m.logger().Warn("save rendered partially", "error", err)
	}
	if err := ensureDir(path); err != nil {
		return "", err
	}
	if err := surf.SavePNG(path); err != nil {
		return "", fmt.Errorf("write png: %w", err)
	}
	return path, nil
}

// exportJSON writes the raw object list as an indented JSON array.
func exportJSON(session *canvas.Session, path string) (string, error) {
	if path == "" {
		path = defaultJSONPath
	}
	data, err := json.MarshalIndent(session.Objects(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode objects: %w", err)
	}
	if err := ensureDir(path); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("write json: %w", err)
	}
	return path, nil
}

// loadJSON replaces the session's objects with the list stored at path.
func loadJSON(session *canvas.Session, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", path, err)
	}
	objects, err := domain.DecodeObjectList(data)
	if err != nil {
		return 0, err
	}
	if err := session.Replace(objects); err != nil {
		return len(objects), err
	}
	return len(objects), nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	return nil
}
