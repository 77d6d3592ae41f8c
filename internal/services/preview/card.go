package preview

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/ternarybob/tagview/internal/models"
)

// ContentURL builds the /content link for a corpus path
func ContentURL(path string) string {
	parts := strings.Split(strings.ReplaceAll(path, "\\", "/"), "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return "/content/" + strings.Join(parts, "/")
}

// RenderCard renders one result card as an HTML fragment.
// Every value taken from the corpus or a file body is escaped.
func RenderCard(desc models.PreviewDescriptor) string {
	var b strings.Builder

	fmt.Fprintf(&b, `<div class="result-card" data-path="%s" data-type="%s">`,
		EscapeHTML(desc.Path), EscapeHTML(string(desc.Type)))
	fmt.Fprintf(&b, `<div class="result-path">%s</div>`, EscapeHTML(desc.Path))

	switch desc.Type {
	case models.FileTypeImage:
		fmt.Fprintf(&b, `<img class="result-image" src="%s" alt="%s" loading="lazy">`,
			EscapeHTML(ContentURL(desc.Path)), EscapeHTML(desc.Path))
		if desc.ColorHex != "" {
			fmt.Fprintf(&b, `<span class="color-swatch" style="background-color: %s" title="%s"></span>`,
				EscapeHTML(desc.ColorHex), EscapeHTML(desc.ColorName))
		}
	case models.FileTypeModel3D:
		if desc.Placeholder {
			b.WriteString(`<div class="model-placeholder">3D</div>`)
		} else {
			fmt.Fprintf(&b, `<img class="model-thumbnail" src="%s" alt="%s" loading="lazy">`,
				EscapeHTML(ContentURL(desc.Thumbnail)), EscapeHTML(desc.Path))
		}
		fmt.Fprintf(&b, `<button class="view-3d" data-path="%s">View 3D</button>`, EscapeHTML(desc.Path))
	case models.FileTypeText:
		if desc.BodyPending {
			fmt.Fprintf(&b, `<div class="text-body pending">%s</div>`, EscapeHTML(BodyPending))
		} else {
			fmt.Fprintf(&b, `<pre class="text-body">%s</pre>`, EscapeHTML(desc.Body))
		}
	}

	b.WriteString(`<ul class="tags">`)
	for _, entry := range desc.Tags {
		fmt.Fprintf(&b, `<li class="tag"><span class="tag-name">%s</span> <span class="tag-confidence">%s</span></li>`,
			EscapeHTML(entry.Tag), EscapeHTML(entry.Confidence.String()))
	}
	b.WriteString(`</ul>`)

	if desc.Dimensions != "" {
		fmt.Fprintf(&b, `<div class="result-meta">%s</div>`, EscapeHTML(desc.Dimensions))
	}

	b.WriteString(`</div>`)
	return b.String()
}
