package mail

import "strings"

// Template holds the subject and HTML body of the sign-in email. Rendering
// is literal placeholder replacement, not a templating language: the
// placeholder values are inserted verbatim, with no extra escaping.
type Template struct {
	Subject  string
	BodyHTML string
}

// Placeholders recognized by Render.
const (
	PlaceholderUserName = "[user:name]"
	PlaceholderSiteName = "[site:name]"
	PlaceholderLinkURL  = "[magic_link:url]"
)

// DefaultTemplate is used when no template override is configured.
var DefaultTemplate = Template{
	Subject: "Your sign-in link for [site:name]",
	BodyHTML: `<p>Hi [user:name],</p>
<p>Click the link below to sign in to [site:name]:</p>
<p><a href="[magic_link:url]">[magic_link:url]</a></p>
<p>The link works once and expires. If you did not request it, you can ignore this email.</p>`,
}

// RenderData carries the placeholder values for one message.
type RenderData struct {
	UserName string
	SiteName string
	LinkURL  string
}

// Render substitutes the placeholders in s.
func Render(s string, data RenderData) string {
	return strings.NewReplacer(
		PlaceholderUserName, data.UserName,
		PlaceholderSiteName, data.SiteName,
		PlaceholderLinkURL, data.LinkURL,
	).Replace(s)
}
