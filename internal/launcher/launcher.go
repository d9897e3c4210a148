// Package launcher renders the standalone HTML file handed to students: it
// redirects to the hosted course and keeps a manual link as fallback.
package launcher

import (
	"errors"
	"html/template"
	"io"
	"net/url"
)

// FileName is the default name of the generated launcher.
const FileName = "ProLens.html"

var ErrBadURL = errors.New("launcher url must be absolute http(s)")

var page = template.Must(template.New("launcher").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta http-equiv="refresh" content="0; url={{.URL}}">
<title>ProLens</title>
</head>
<body>
<p>Opening ProLens&hellip;</p>
<p>If nothing happens, <a href="{{.URL}}">open the course</a>.</p>
</body>
</html>
`))

// Write renders the launcher page for target to w.
func Write(w io.Writer, target string) error {
	u, err := url.Parse(target)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrBadURL
	}

	return page.Execute(w, struct{ URL string }{URL: u.String()})
}
