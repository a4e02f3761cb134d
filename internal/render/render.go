package render

// Markdown renders a markdown document for the terminal using a pooled
// glamour renderer.
func Markdown(content string, opts Options) (string, error) {
	r, err := globalPool.get(opts)
	if err != nil {
		return "", err
	}
	defer globalPool.put(opts, r)

	return r.Render(content)
}
