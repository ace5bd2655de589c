package service

import "strings"

// SiteResponse is the decoded JSON body returned by the site generator.
// The shape is not stable across API versions, so it is kept untyped and read through
// ExtractChatID and ExtractSiteURL.
type SiteResponse map[string]interface{}

// chatIDFields lists where the chat id has been seen, in priority order.
var chatIDFields = []string{"id", "chatId", "chat_id"}

// siteURLFields lists where the rendered site URL has been seen, in priority order.
// webUrl is deliberately absent: it points at the generator's chat page, not the site.
var siteURLFields = []string{
	"demo",
	"demoUrl",
	"latestVersion.demoUrl",
	"latestVersion.demo_url",
	"url",
}

// ExtractChatID returns the first non-empty chat id in resp, or fallback.
// Parameters:
//   - resp: decoded site generator response, may be nil.
//   - fallback: chat id supplied by the caller.
//
// Returns:
//   - string: resolved chat id, possibly empty.
func ExtractChatID(resp SiteResponse, fallback string) string {
	if v, ok := firstString(resp, chatIDFields); ok {
		return v
	}
	return strings.TrimSpace(fallback)
}

// ExtractSiteURL returns the first non-empty site URL in resp.
// Parameters:
//   - resp: decoded site generator response, may be nil.
//
// Returns:
//   - string: site URL.
//   - bool: false when no field yields a URL.
func ExtractSiteURL(resp SiteResponse) (string, bool) {
	return firstString(resp, siteURLFields)
}

func firstString(resp SiteResponse, paths []string) (string, bool) {
	for _, p := range paths {
		if v := lookupString(resp, p); v != "" {
			return v, true
		}
	}
	return "", false
}

// lookupString resolves a dotted path to a non-blank string; any other type yields "".
func lookupString(resp SiteResponse, path string) string {
	var cur interface{} = map[string]interface{}(resp)
	for _, key := range strings.Split(path, ".") {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return ""
		}
		cur = m[key]
	}
	s, _ := cur.(string)
	return strings.TrimSpace(s)
}
