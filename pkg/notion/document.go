package notion

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
)

// Notion API limits.
const (
	MaxRichTextLen     = 2000
	MaxChildrenPerCall = 100
)

// ChunkText splits text into pieces of at most size runes, preferring to cut
// at a newline inside the window.
func ChunkText(text string, size int) []string {
	if size <= 0 {
		size = MaxRichTextLen
	}
	var chunks []string
	for text != "" {
		if utf8.RuneCountInString(text) <= size {
			chunks = append(chunks, text)
			break
		}
		cut := byteOffset(text, size)
		if nl := strings.LastIndexByte(text[:cut], '\n'); nl > 0 {
			cut = nl + 1
		}
		chunks = append(chunks, text[:cut])
		text = text[cut:]
	}
	return chunks
}

// byteOffset returns the byte index just past the first n runes of s.
func byteOffset(s string, n int) int {
	i := 0
	for pos := range s {
		if i == n {
			return pos
		}
		i++
	}
	return len(s)
}

// ParagraphBlocks converts plain text into paragraph blocks within the
// rich-text length limit.
func ParagraphBlocks(text string) []notionapi.Block {
	chunks := ChunkText(text, MaxRichTextLen)
	blocks := make([]notionapi.Block, 0, len(chunks))
	for _, c := range chunks {
		blocks = append(blocks, &notionapi.ParagraphBlock{
			BasicBlock: notionapi.BasicBlock{
				Object: notionapi.ObjectTypeBlock,
				Type:   notionapi.BlockTypeParagraph,
			},
			Paragraph: notionapi.Paragraph{
				RichText: []notionapi.RichText{{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{Content: c},
				}},
			},
		})
	}
	return blocks
}

// CreateDocument creates a child page of parentID holding text as paragraphs
// and returns the page URL. Blocks past the per-request limit are appended in
// follow-up calls.
func CreateDocument(ctx context.Context, c Client, parentID, title, text string) (string, error) {
	blocks := ParagraphBlocks(text)
	first := blocks
	if len(first) > MaxChildrenPerCall {
		first = blocks[:MaxChildrenPerCall]
	}

	page, err := c.CreatePage(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:   notionapi.ParentTypePageID,
			PageID: notionapi.PageID(parentID),
		},
		Properties: notionapi.Properties{
			"title": &notionapi.TitleProperty{
				Title: []notionapi.RichText{{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{Content: title},
				}},
			},
		},
		Children: first,
	})
	if err != nil {
		return "", eris.Wrap(err, "notion: create document")
	}

	for rest := blocks[len(first):]; len(rest) > 0; {
		n := min(len(rest), MaxChildrenPerCall)
		if err := c.AppendBlockChildren(ctx, string(page.ID), rest[:n]); err != nil {
			return page.URL, eris.Wrap(err, "notion: append document body")
		}
		rest = rest[n:]
	}
	return page.URL, nil
}
