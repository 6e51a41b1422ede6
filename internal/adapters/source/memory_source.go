package source

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"vk-archive-parser/internal/ports"
)

// MemorySource реализует интерфейс DataSource для страниц, уже загруженных в память.
type MemorySource struct {
	files map[string][]byte
}

// NewMemorySource создает новый экземпляр MemorySource.
func NewMemorySource(files map[string][]byte) ports.DataSource {
	return &MemorySource{files: files}
}

// Files возвращает имена страниц в лексическом порядке.
func (s *MemorySource) Files() ([]string, error) {
	if s.files == nil {
		return nil, fmt.Errorf("данные не установлены")
	}

	names := make([]string, 0, len(s.files))
	for name := range s.files {
		names = append(names, name)
	}
	sort.Strings(names)

	return names, nil
}

// Open возвращает копию содержимого страницы.
func (s *MemorySource) Open(name string) (io.ReadCloser, error) {
	data, ok := s.files[name]
	if !ok {
		return nil, fmt.Errorf("файл %s не найден", name)
	}

	// Возвращаем копию данных, чтобы избежать изменений оригинальных данных
	dataCopy := make([]byte, len(data))
	copy(dataCopy, data)

	return io.NopCloser(bytes.NewReader(dataCopy)), nil
}
