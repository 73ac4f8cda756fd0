package scraper

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Selectors for the drivers/<first>-<last> page data grid.
const (
	driverStatItemSel  = "div.DataGrid-module_item__cs9Zd"
	driverStatTitleSel = "dt.DataGrid-module_title__hXN-n.typography-module_body-xs-semibold__Fyfwn"
	driverStatValueSel = "dd.DataGrid-module_description__e-Mnw.typography-module_display-l-bold__m1yaJ.typography-module_lg_display-xl-bold__4nIv1"
)

// DriverStats scrapes a driver's career stat grid, returning a flat
// label-to-text mapping.
func (s *Scraper) DriverStats(ctx context.Context, firstName, lastName string) (map[string]string, error) {
	url := fmt.Sprintf("%s/en/drivers/%s-%s", s.baseURL, slugify(firstName), slugify(lastName))

	doc, err := s.document(ctx, url)
	if err != nil {
		return nil, err
	}

	items := doc.Find(driverStatItemSel)
	if items.Length() == 0 {
		return nil, fmt.Errorf("driver stats grid not found on %s", url)
	}

	stats := map[string]string{}
	var selErr error
	items.EachWithBreak(func(_ int, item *goquery.Selection) bool {
		title := item.Find(driverStatTitleSel).First()
		value := item.Find(driverStatValueSel).First()
		if title.Length() == 0 || value.Length() == 0 {
			selErr = fmt.Errorf("driver stat item missing title or value on %s", url)
			return false
		}
		stats[strings.TrimSpace(title.Text())] = strings.TrimSpace(value.Text())
		return true
	})
	if selErr != nil {
		return nil, selErr
	}

	return stats, nil
}
