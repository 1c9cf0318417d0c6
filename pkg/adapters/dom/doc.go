/*
Package dom implements the view ports over an HTML document tree parsed with
golang.org/x/net/html.

The runtime keeps the operator page (chrome, screen and report container) as
one live Document. Renderers mutate it through the view types of this package
and the kiosk server serializes it on demand; every access goes through the
document lock.

Markup contract:

  - [data-state], [data-side], [data-state-content], [data-select], [data-reset]
    bind chrome regions.
  - .video-input receives the media source.
  - .a4-document contains the report pages; .a4-page in the report template is
    the page template; page ids are "a4-page-<n>".
  - <template id="delete-btn-template"> holds the page delete control, which
    is marked .btn-a4-delete and toggled with .active.
  - .fill-<key> marks the fill slots of a page.
*/
package dom
