package scraper

import (
	"context"
	"fmt"
	"strings"
)

// Selectors for the racing/<year>/<country> page. The class names encode the
// page's CSS-module hashes.
const (
	circuitImageSel     = "img.w-full.h-full.object-contain"
	circuitHeadKeySel   = "dt.typography-module_body-s-compact-semibold__MeKMi.text-text-3"
	circuitHeadValueSel = `dd.typography-module_desktop-headline-small-bold__4DueK.text-text-5.mt-px-4.lg\:mt-px-12`
	circuitStatKeySel   = "dt.typography-module_body-xs-semibold__Fyfwn.text-text-3"
	circuitStatValueSel = `dd.typography-module_display-l-bold__m1yaJ.text-text-5.mt-px-4.lg\:mt-px-12`
	fastestLapDriverSel = "span.typography-module_body-xs-semibold__Fyfwn.text-text-3"
)

// CircuitInfo scrapes the circuit facts page for a season and country,
// returning a flat label-to-text mapping.
func (s *Scraper) CircuitInfo(ctx context.Context, year int, country string) (map[string]string, error) {
	url := fmt.Sprintf("%s/en/racing/%d/%s", s.baseURL, year, slugify(country))

	doc, err := s.document(ctx, url)
	if err != nil {
		return nil, err
	}

	info := map[string]string{}

	src, ok := doc.Find(circuitImageSel).First().Attr("src")
	if !ok {
		return nil, fmt.Errorf("circuit image not found on %s", url)
	}
	info["circuit img"] = src

	headKey := doc.Find(circuitHeadKeySel).First()
	headValue := doc.Find(circuitHeadValueSel).First()
	if headKey.Length() == 0 || headValue.Length() == 0 {
		return nil, fmt.Errorf("circuit headline stat not found on %s", url)
	}
	info[strings.ToLower(strings.TrimSpace(headKey.Text()))] = strings.ToLower(strings.TrimSpace(headValue.Text()))

	keys := doc.Find(circuitStatKeySel)
	values := doc.Find(circuitStatValueSel)
	n := keys.Length()
	if values.Length() < n {
		n = values.Length()
	}
	for i := 0; i < n; i++ {
		key := strings.ToLower(strings.TrimSpace(keys.Eq(i).Text()))
		info[key] = strings.ToLower(strings.TrimSpace(values.Eq(i).Text()))
	}

	fastest := doc.Find(fastestLapDriverSel).First()
	if fastest.Length() == 0 {
		return nil, fmt.Errorf("fastest lap driver not found on %s", url)
	}
	info["fastest lap driver"] = strings.ToLower(strings.TrimSpace(fastest.Text()))

	return info, nil
}
