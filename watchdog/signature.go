package watchdog

import (
	"strconv"
	"strings"
)

const signatureSeparator = " || "

// NormalizeText trims, lowercases and collapses whitespace runs to one space.
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Signature builds the payload fingerprint used for duplicate detection.
// Files are compared by metadata only, so a re-encoded upload of the same image
// will not match. An empty result means the post has nothing worth tracking.
func Signature(p Post) string {
	var parts []string

	if txt := NormalizeText(p.Content); txt != "" {
		parts = append(parts, "txt:"+txt)
	}

	if len(p.Attachments) > 0 {
		atts := make([]string, 0, len(p.Attachments))
		for _, a := range p.Attachments {
			atts = append(atts, a.Filename+"|"+strconv.Itoa(a.Size)+"|"+a.ContentType)
		}
		parts = append(parts, "att:"+strings.Join(atts, ","))
	}

	var urls []string
	for _, u := range p.EmbedURLs {
		if u != "" {
			urls = append(urls, u)
		}
	}
	if len(urls) > 0 {
		parts = append(parts, "emb:"+strings.Join(urls, ","))
	}

	return strings.Join(parts, signatureSeparator)
}
