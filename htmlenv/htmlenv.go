// Package htmlenv implements surveys.Environment over a captured page
// snapshot: the page URL, the visitor's User-Agent and the HTML document.
package htmlenv

import (
	"io"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/mileusna/useragent"
	"github.com/pkg/errors"

	"github.com/glimpsehq/glimpse-go/log"
)

// Device types as they appear in survey conditions.
const (
	DeviceDesktop = "Desktop"
	DeviceMobile  = "Mobile"
	DeviceTablet  = "Tablet"
)

type Page struct {
	url    string
	device string
	doc    *goquery.Document
}

// New builds a Page from a snapshot. Any input may be empty: an empty URL or
// an unclassifiable User-Agent stays unknown, a nil body means no element
// ever matches. Conditions over unknown inputs fail closed upstream.
func New(pageURL, userAgent string, body io.Reader) (*Page, error) {
	page := &Page{
		url:    pageURL,
		device: ClassifyDevice(userAgent),
	}

	if body != nil {
		doc, err := goquery.NewDocumentFromReader(body)
		if err != nil {
			return nil, errors.Wrap(err, "htmlenv.parse")
		}
		page.doc = doc
	}
	return page, nil
}

// ClassifyDevice maps a User-Agent string to a survey device type, or ""
// when it cannot tell.
func ClassifyDevice(userAgent string) string {
	if userAgent == "" {
		return ""
	}
	ua := useragent.Parse(userAgent)
	switch {
	case ua.Tablet:
		return DeviceTablet
	case ua.Mobile:
		return DeviceMobile
	case ua.Desktop:
		return DeviceDesktop
	default:
		return ""
	}
}

func (p *Page) CurrentURL() (string, bool) {
	return p.url, p.url != ""
}

func (p *Page) DeviceType() (string, bool) {
	return p.device, p.device != ""
}

// SelectorExists reports whether the CSS selector matches at least one
// element of the snapshot. An invalid selector matches nothing.
func (p *Page) SelectorExists(selector string) bool {
	if p.doc == nil {
		return false
	}
	sel, err := cascadia.Compile(selector)
	if err != nil {
		log.Debugf("htmlenv.selector: %s", err)
		return false
	}
	return p.doc.FindMatcher(sel).Length() > 0
}
