package analysis

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"
)

const fetchTimeout = 30 * time.Second

// LoadDocument resolves one supporting-material reference into a document.
// A reference is either an http(s) URL, whose readable body is extracted,
// or a local file path read verbatim (text or JSON).
func LoadDocument(ref string) (Document, error) {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		article, err := readability.FromURL(ref, fetchTimeout)
		if err != nil {
			return Document{}, fmt.Errorf("fetch document %s: %w", ref, err)
		}
		name := article.Title
		if name == "" {
			name = ref
		}
		return Document{Name: name, Content: article.TextContent}, nil
	}

	data, err := os.ReadFile(ref)
	if err != nil {
		return Document{}, fmt.Errorf("read document %s: %w", ref, err)
	}
	return Document{Name: filepath.Base(ref), Content: string(data)}, nil
}

// LoadDocuments resolves all references, failing on the first bad one.
func LoadDocuments(refs []string) ([]Document, error) {
	docs := make([]Document, 0, len(refs))
	for _, ref := range refs {
		doc, err := LoadDocument(ref)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
