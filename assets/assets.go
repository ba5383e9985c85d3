// Package assets embeds the HTML fragments the injector adds to served
// pages.
package assets

import _ "embed"

// Navbar is the shared navigation bar injected after the opening body tag.
// Its script fetches /me to decide which links to show and polls it to
// force a redirect to login once the session dies.
//
//go:embed navbar.html
var Navbar []byte

// LogoutWidget is the floating logout button injected before the closing
// body tag on authenticated pages, when enabled.
//
//go:embed logout.html
var LogoutWidget []byte
