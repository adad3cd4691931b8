package util

import "strings"

// TopicSeparator is the path separator used inside logical destination names.
const TopicSeparator = "/"

// ChildTopic appends a single segment to a base destination path. The segment
// is the correlation token on both the request and reply sides, so callers
// must not pass values containing the separator.
func ChildTopic(base, segment string) string {
	return base + TopicSeparator + segment
}

// StripTopicPrefix returns the remainder of topic after base and its
// following separator. The second return value reports whether topic actually
// carried the prefix; a bare match of base with no trailing segment is not
// considered a hit.
func StripTopicPrefix(topic, base string) (string, bool) {
	if base == "" {
		return "", false
	}
	prefix := base + TopicSeparator
	if !strings.HasPrefix(topic, prefix) {
		return "", false
	}
	rest := topic[len(prefix):]
	if rest == "" {
		return "", false
	}
	return rest, true
}

// LastPathSegment returns the final segment of a slash separated path, or the
// supplied fallback when the path is blank. A path without any separator is
// returned unchanged, matching the file-name derivation rule for document
// addresses.
func LastPathSegment(path, fallback string) string {
	if strings.TrimSpace(path) == "" {
		return fallback
	}
	idx := strings.LastIndex(path, TopicSeparator)
	if idx >= 0 && idx < len(path)-1 {
		return path[idx+1:]
	}
	return path
}
