package analytics

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/keilerkonzept/topk"

	"github.com/godilite/cs-dashboard/internal/repository/models"
)

// DefaultTopTerms is the number of terms returned with a corpus.
const DefaultTopTerms = 50

// Corpus is the joined free-text answers of one question.
type Corpus struct {
	Question string      `json:"question"`
	Text     string      `json:"text"`
	Count    int         `json:"count"`
	Empty    bool        `json:"empty"`
	Terms    []TermCount `json:"terms,omitempty"`
}

type TermCount struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

// CommentCorpus joins the non-null answers to a text question with spaces.
func CommentCorpus(table *models.Table, id string) Corpus {
	var texts []string
	if table != nil {
		for _, t := range table.Tickets {
			if s, ok := t.Comment(id); ok {
				texts = append(texts, s)
			}
		}
	}
	return Corpus{
		Question: id,
		Text:     strings.Join(texts, " "),
		Count:    len(texts),
		Empty:    len(texts) == 0,
	}
}

// TopTerms returns the k heaviest terms of text, counted with a top-k
// sketch. Terms are runs of letters and digits of at least two runes.
func TopTerms(text string, k int) []TermCount {
	if k <= 0 {
		k = DefaultTopTerms
	}
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return nil
	}

	sketch := topk.New(k)
	for _, tok := range tokens {
		sketch.Incr(tok)
	}

	items := sketch.SortedSlice()
	out := make([]TermCount, 0, len(items))
	for _, it := range items {
		if it.Count == 0 {
			continue
		}
		out = append(out, TermCount{Term: it.Item, Count: int(it.Count)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Term < out[j].Term
	})
	return out
}

// Tokenize splits text into lower-cased terms for frequency counting.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) < 2 {
			continue
		}
		out = append(out, strings.ToLower(f))
	}
	return out
}
