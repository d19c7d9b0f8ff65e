package dashboard

import (
	"bytes"
	"fmt"

	"github.com/go-echarts/go-echarts/v2/components"

	"teo-dashboard/internal/models"
)

const defaultPageTitle = "EdgeOne Dashboard"

// renderPage собирает HTML-страницу со всеми графиками представления
func renderPage(site models.SiteConfig, v *View) ([]byte, error) {
	page := components.NewPage()
	page.PageTitle = site.SiteName
	if page.PageTitle == "" {
		page.PageTitle = defaultPageTitle
	}
	page.SetLayout(components.PageFlexLayout)

	for _, s := range v.Sections {
		for _, c := range s.Charts {
			if c.charter != nil {
				page.AddCharts(c.charter)
			}
		}
	}
	for _, c := range v.Top.Charts {
		if c.charter != nil {
			page.AddCharts(c.charter)
		}
	}

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return nil, fmt.Errorf("render dashboard page: %w", err)
	}
	return buf.Bytes(), nil
}
