// Package web serves the item navigation of detail pages over HTTP.
//
// A results page posts the list it shows to /api/nav/results. A detail page
// asks /api/nav/controls for the state of its previous and next buttons, and
// the buttons point either straight to the adjacent item or to
// /nav/{previous|next}, which crosses the page boundary and redirects. The
// navigation state of a browser lives in session storage bound by a session
// cookie, or in cookies when no session storage is configured.
package web
