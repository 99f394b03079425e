package library

import "strings"

// Source ids reserved for adult catalogues.
const (
	matureSourceFirst int64 = 6905
	matureSourceLast  int64 = 6913
)

var matureTags = []string{
	"hentai", "adult", "smut", "lewd", "nsfw", "erotica", "pornographic", "mature", "18+",
}

var matureSources = []string{
	"allporncomic", "hentai cafe", "hentai2read", "hentaifox", "hentainexus",
	"manhwahentai.me", "milftoon", "myhentaicomics", "myhentaigallery", "ninehentai",
	"pururin", "simply hentai", "tsumino", "8muses", "hbrowse", "nhentai", "erofus",
	"luscious", "doujins", "multporn", "vcp", "vmp", "hentai",
}

// IsMature reports whether a manga should be treated as adult content, based
// on its source id, its source name or its genre tags.
func IsMature(sourceID int64, sourceName string, genres []string) bool {
	if sourceID >= matureSourceFirst && sourceID <= matureSourceLast {
		return true
	}
	if sourceName != "" && containsAny(sourceName, matureSources) {
		return true
	}
	for _, g := range genres {
		if containsAny(g, matureTags) {
			return true
		}
	}
	return false
}

func containsAny(s string, needles []string) bool {
	s = strings.ToLower(s)
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
