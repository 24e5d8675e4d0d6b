package pagelens

// MainContent holds the main content of an HTML page with boilerplate removed.
type MainContent struct {
	// Title is the page title extracted from metadata.
	Title string

	// ContentHTML is the main content as clean HTML.
	ContentHTML string
}

// ContentExtractor extracts main content from HTML pages, removing boilerplate.
type ContentExtractor interface {
	// ExtractContent returns the main content of markup. pageURL is used to
	// resolve relative references and may be empty. Returns EPARSE when no
	// main content can be located.
	ExtractContent(markup string, pageURL string) (*MainContent, error)
}

// Converter converts HTML to Markdown.
type Converter interface {
	// Convert transforms clean HTML (e.g. from a ContentExtractor) into
	// Markdown. Relative links and images are resolved against pageURL
	// when it is non-empty.
	Convert(html string, pageURL string) (string, error)
}
