package source

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"vk-archive-parser/internal/ports"
)

// DirSource реализует интерфейс DataSource для папки чата в архиве.
// Каждый обычный файл папки считается одной страницей переписки.
type DirSource struct {
	dir string
}

// NewDirSource создает новый экземпляр DirSource.
func NewDirSource(dir string) ports.DataSource {
	return &DirSource{dir: dir}
}

// Files возвращает пути обычных файлов папки в лексическом порядке.
// Вложенные папки и прочие записи пропускаются.
func (s *DirSource) Files() ([]string, error) {
	if s.dir == "" {
		return nil, fmt.Errorf("не указан путь к папке")
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать папку %s: %w", s.dir, err)
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		path := filepath.Join(s.dir, entry.Name())
		// os.Stat идет по симлинкам, поэтому ссылка на файл тоже считается страницей
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("не удалось получить сведения о %s: %w", path, err)
		}
		if !info.Mode().IsRegular() {
			continue
		}
		files = append(files, path)
	}
	sort.Strings(files)

	return files, nil
}

// Open открывает файл страницы.
func (s *DirSource) Open(name string) (io.ReadCloser, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", name, err)
	}
	return f, nil
}
