package knowledge

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"unicode/utf8"

	"github.com/poiesic/educaia/core"
)

// maxFileSize bounds the knowledge base file read into memory.
const maxFileSize = 32 << 20

// Load reads the knowledge base at path. It never fails: problems are reported
// through the status string together with an empty corpus.
func Load(path string) (core.Corpus, string) {
	corpus, err := LoadFile(path)
	if err != nil {
		return core.Corpus{}, Status(corpus, err)
	}
	return corpus, Status(corpus, nil)
}

// Status renders the human-readable result of a load.
func Status(corpus core.Corpus, err error) string {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return "knowledge base file not found"
	case errors.Is(err, core.ErrEmptyCorpus):
		return "knowledge base has no passages"
	case err != nil:
		return fmt.Sprintf("failed to load knowledge base: %v", err)
	default:
		return fmt.Sprintf("knowledge base loaded: %d passages", corpus.Len())
	}
}

// LoadFile reads the knowledge base at path.
// Errors wrap core.ErrCorpusLoad; a file without passages also wraps core.ErrEmptyCorpus.
func LoadFile(path string) (core.Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		return core.Corpus{}, fmt.Errorf("%w: %w", core.ErrCorpusLoad, err)
	}
	defer f.Close()
	return LoadReader(f)
}

// LoadReader reads a knowledge base from r, one passage per non-blank line.
func LoadReader(r io.Reader) (core.Corpus, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxFileSize+1))
	if err != nil {
		return core.Corpus{}, fmt.Errorf("%w: %w", core.ErrCorpusLoad, err)
	}
	if len(data) > maxFileSize {
		return core.Corpus{}, fmt.Errorf("%w: file larger than %d bytes", core.ErrCorpusLoad, maxFileSize)
	}
	if !utf8.Valid(data) {
		return core.Corpus{}, fmt.Errorf("%w: file is not valid UTF-8", core.ErrCorpusLoad)
	}

	corpus := core.ParseCorpus(string(data))
	if corpus.IsEmpty() {
		return core.Corpus{}, fmt.Errorf("%w: %w", core.ErrCorpusLoad, core.ErrEmptyCorpus)
	}
	return corpus, nil
}
