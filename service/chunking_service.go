package service

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/tieubaoca/pdfqa-be/types"
	"github.com/tieubaoca/pdfqa-be/utils"
)

const (
	DefaultChunkSize    = 600
	DefaultChunkOverlap = 100

	// charsPerToken approximates token counts without a tokenizer.
	charsPerToken = 4
)

var chunkSeparators = []string{"\n\n", "\n", ". ", " ", ""}

type ChunkingService struct {
	chunkSize    int
	chunkOverlap int
}

func NewChunkingService(chunkSize, chunkOverlap int) *ChunkingService {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkOverlap < 0 {
		chunkOverlap = DefaultChunkOverlap
	}
	return &ChunkingService{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// ChunkText splits pages (1-indexed page number -> raw text) using the
// service's configured size and overlap.
func (s *ChunkingService) ChunkText(pages map[int]string) []types.ChunkDescriptor {
	return s.ChunkTextWithSize(pages, 0, 0)
}

// ChunkTextWithSize splits pages into chunks of at most chunkSize tokens
// with overlap tokens shared between neighbours. Zero values fall back to
// the service configuration. Chunks never span two pages and chunk indexes
// run contiguously from 0 across the whole document.
func (s *ChunkingService) ChunkTextWithSize(pages map[int]string, chunkSize, overlap int) []types.ChunkDescriptor {
	if chunkSize <= 0 {
		chunkSize = s.chunkSize
	}
	if overlap <= 0 {
		overlap = s.chunkOverlap
	}
	splitter := newTextSplitter(chunkSize*charsPerToken, overlap*charsPerToken)

	pageNumbers := make([]int, 0, len(pages))
	for pageNumber := range pages {
		pageNumbers = append(pageNumbers, pageNumber)
	}
	sort.Ints(pageNumbers)

	chunks := make([]types.ChunkDescriptor, 0)
	chunkIndex := 0
	for _, pageNumber := range pageNumbers {
		text := pages[pageNumber]
		if utils.IsBlank(text) {
			continue
		}
		for _, piece := range splitter.Split(utils.NormalizeText(text)) {
			content := strings.TrimSpace(piece)
			if content == "" {
				continue
			}
			chunks = append(chunks, types.ChunkDescriptor{
				Content:    content,
				PageNumber: pageNumber,
				ChunkIndex: chunkIndex,
				WordCount:  utils.WordCount(content),
			})
			chunkIndex++
		}
	}
	return chunks
}

// textSplitter splits recursively on a list of separators, preferring the
// coarsest one present in the text. Lengths are counted in runes.
type textSplitter struct {
	chunkSize    int
	chunkOverlap int
	separators   []string
}

func newTextSplitter(chunkSize, chunkOverlap int) *textSplitter {
	if chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 2
	}
	return &textSplitter{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		separators:   chunkSeparators,
	}
}

func (t *textSplitter) Split(text string) []string {
	return t.split(text, t.separators)
}

func (t *textSplitter) split(text string, separators []string) []string {
	separator := separators[len(separators)-1]
	var next []string
	for i, sep := range separators {
		if sep == "" {
			separator = sep
			break
		}
		if strings.Contains(text, sep) {
			separator = sep
			next = separators[i+1:]
			break
		}
	}

	var (
		out  []string
		good []string
	)
	for _, piece := range splitKeepingSeparator(text, separator) {
		if utf8.RuneCountInString(piece) < t.chunkSize {
			good = append(good, piece)
			continue
		}
		if len(good) > 0 {
			out = append(out, t.merge(good)...)
			good = nil
		}
		if len(next) == 0 {
			out = append(out, piece)
		} else {
			out = append(out, t.split(piece, next)...)
		}
	}
	if len(good) > 0 {
		out = append(out, t.merge(good)...)
	}
	return out
}

// merge packs pieces greedily into windows of at most chunkSize runes. When
// a window is emitted, pieces are dropped from its front until at most
// chunkOverlap runes remain, and those carry over into the next window.
func (t *textSplitter) merge(pieces []string) []string {
	var (
		docs    []string
		current []string
		total   int
	)
	for _, piece := range pieces {
		n := utf8.RuneCountInString(piece)
		if total+n > t.chunkSize && len(current) > 0 {
			if doc := joinPieces(current); doc != "" {
				docs = append(docs, doc)
			}
			for len(current) > 0 && (total > t.chunkOverlap || total+n > t.chunkSize) {
				total -= utf8.RuneCountInString(current[0])
				current = current[1:]
			}
		}
		current = append(current, piece)
		total += n
	}
	if doc := joinPieces(current); doc != "" {
		docs = append(docs, doc)
	}
	return docs
}

func joinPieces(pieces []string) string {
	return strings.TrimSpace(strings.Join(pieces, ""))
}

// splitKeepingSeparator splits text on sep and re-attaches each separator to
// the start of the piece that follows it. An empty sep splits into runes.
func splitKeepingSeparator(text, sep string) []string {
	var pieces []string
	if sep == "" {
		pieces = make([]string, 0, utf8.RuneCountInString(text))
		for _, r := range text {
			pieces = append(pieces, string(r))
		}
		return pieces
	}
	parts := strings.Split(text, sep)
	pieces = make([]string, 0, len(parts))
	for i, part := range parts {
		if i > 0 {
			part = sep + part
		}
		if part != "" {
			pieces = append(pieces, part)
		}
	}
	return pieces
}
