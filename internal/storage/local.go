package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalStore guarda archivos subidos en disco local bajo un directorio raiz.
// Las rutas devueltas son relativas al directorio raiz.
type LocalStore struct {
	root string
}

func NewLocalStore(root string) (*LocalStore, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("upload root is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &LocalStore{root: root}, nil
}

// Save escribe el contenido en <root>/<prefix>/<uuid><ext> y devuelve la ruta relativa.
func (s *LocalStore) Save(prefix, originalName string, r io.Reader) (string, error) {
	dir := filepath.Join(s.root, prefix)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	name := uuid.NewString() + strings.ToLower(filepath.Ext(originalName))
	rel := filepath.ToSlash(filepath.Join(prefix, name))

	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", err
	}
	return rel, nil
}

// Remove borra el archivo de respaldo; un archivo inexistente no es error.
func (s *LocalStore) Remove(rel string) error {
	rel = strings.TrimPrefix(filepath.ToSlash(rel), "/")
	if rel == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(rel)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
