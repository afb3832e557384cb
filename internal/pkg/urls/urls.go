// Package urls builds the canonical paths handlers redirect to.
package urls

import (
	"fmt"
	"net/url"
	"strings"
)

func Index() string { return "/" }

func Profile(username string) string {
	return "/profile/" + url.PathEscape(username) + "/"
}

func PostDetail(id uint) string {
	return fmt.Sprintf("/posts/%d/", id)
}

func Category(slug string) string {
	return "/category/" + url.PathEscape(slug) + "/"
}

// Login returns loginURL with next attached as a query parameter.
func Login(loginURL, next string) string {
	if next == "" {
		return loginURL
	}
	sep := "?"
	if strings.Contains(loginURL, "?") {
		sep = "&"
	}
	return loginURL + sep + "next=" + url.QueryEscape(next)
}

// SafeNext reports next when it is a local absolute path, otherwise fallback.
func SafeNext(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return fallback
	}
	u, err := url.Parse(next)
	if err != nil || u.Host != "" || u.Scheme != "" {
		return fallback
	}
	return next
}
