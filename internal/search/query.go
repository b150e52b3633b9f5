package search

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	disallowedChars = regexp.MustCompile(`[^\w\s#@-]`)
	whitespaceRuns  = regexp.MustCompile(`\s+`)
)

// Variants expands a topic into the fixed 8-entry list of search query
// variants, strictly decreasing in specificity:
//
//	1. exact phrase, has:images, lang:en, no retweets
//	2. loose words,  has:images, lang:en, no retweets
//	3. exact phrase, has:images,          no retweets
//	4. loose words,  has:images,          no retweets
//	5. exact phrase, has:media,  lang:en, no retweets
//	6. loose words,  has:media,  lang:en, no retweets
//	7. exact phrase,             lang:en, no retweets
//	8. loose words,              lang:en, no retweets
//
// The caller commits to the first variant that produces any qualifying
// result, so this ordering is load-bearing. Pure and deterministic; a
// blank topic expands to nil.
func Variants(topic string) []string {
	t := strings.TrimSpace(topic)
	if t == "" {
		return nil
	}

	clean := disallowedChars.ReplaceAllString(t, " ")
	clean = strings.TrimSpace(whitespaceRuns.ReplaceAllString(clean, " "))
	if clean == "" {
		return nil
	}

	phrase := clean
	if strings.Contains(clean, " ") {
		phrase = fmt.Sprintf("%q", clean)
	}

	return []string{
		phrase + " has:images lang:en -is:retweet",
		clean + " has:images lang:en -is:retweet",
		phrase + " has:images -is:retweet",
		clean + " has:images -is:retweet",
		phrase + " has:media lang:en -is:retweet",
		clean + " has:media lang:en -is:retweet",
		phrase + " lang:en -is:retweet",
		clean + " lang:en -is:retweet",
	}
}
