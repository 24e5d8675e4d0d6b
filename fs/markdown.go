package fs

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fwojciec/pagelens"
)

// URLToPath converts a page URL to a relative markdown file path below a
// directory named after the host.
// Example: https://example.com/docs/api/users → example.com/docs/api/users.md
func URLToPath(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", pagelens.Errorf(pagelens.EINVALID, "invalid URL %q", rawURL)
	}
	if u.Host == "" {
		return "", pagelens.Errorf(pagelens.EINVALID, "URL has no host: %q", rawURL)
	}

	p := strings.TrimPrefix(u.Path, "/")
	switch {
	case p == "":
		p = "index.md"
	case strings.HasSuffix(p, "/"):
		p += "index.md"
	default:
		p += ".md"
	}

	host := u.Host
	rel := filepath.Join(host, filepath.FromSlash(p))
	if host == "." || host == ".." || !strings.HasPrefix(rel, host+string(filepath.Separator)) {
		return "", pagelens.Errorf(pagelens.EINVALID, "unsafe URL path %q", rawURL)
	}
	return rel, nil
}

// FormatPage formats a page with YAML frontmatter. The body is the page's
// markdown when present, its text otherwise.
func FormatPage(rec pagelens.PageRecord) string {
	body := rec.Markdown
	if body == "" {
		body = rec.Text
	}
	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("source: ")
	b.WriteString(rec.URL)
	b.WriteString("\ntitle: ")
	b.WriteString(rec.Title)
	b.WriteString("\nscraped: ")
	b.WriteString(rec.ScrapedTime().UTC().Format(time.RFC3339))
	b.WriteString("\n---\n\n")
	b.WriteString(body)
	b.WriteString("\n")
	return b.String()
}

// writeMarkdown writes one file per successful page below dir. Files are
// written to dir.tmp first and moved into place once all succeed.
func writeMarkdown(dir string, pages []pagelens.PageRecord) (string, error) {
	tmp := dir + ".tmp"
	if err := os.RemoveAll(tmp); err != nil {
		return "", pagelens.WrapError(pagelens.EINTERNAL, err, "clear %s", tmp)
	}

	for _, rec := range pages {
		if rec.Failed() {
			continue
		}
		rel, err := URLToPath(rec.URL)
		if err != nil {
			_ = os.RemoveAll(tmp)
			return "", err
		}
		full := filepath.Join(tmp, rel)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			_ = os.RemoveAll(tmp)
			return "", pagelens.WrapError(pagelens.EINTERNAL, err, "create directory for %s", rec.URL)
		}
		if err := os.WriteFile(full, []byte(FormatPage(rec)), 0o644); err != nil {
			_ = os.RemoveAll(tmp)
			return "", pagelens.WrapError(pagelens.EINTERNAL, err, "write %s", full)
		}
	}
	if err := os.MkdirAll(tmp, 0o755); err != nil {
		return "", pagelens.WrapError(pagelens.EINTERNAL, err, "create %s", tmp)
	}

	if err := os.RemoveAll(dir); err != nil {
		return "", pagelens.WrapError(pagelens.EINTERNAL, err, "replace %s", dir)
	}
	if err := os.Rename(tmp, dir); err != nil {
		return "", pagelens.WrapError(pagelens.EINTERNAL, err, "replace %s", dir)
	}
	return dir, nil
}
