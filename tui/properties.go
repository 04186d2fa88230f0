package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"raksproperties/catalog"
	"raksproperties/models"
	"raksproperties/services"
)

var (
	locationChoices = []string{services.AnyLocation, "Francistown", "Gaborone", "Maun"}
	typeChoices     = []string{services.AnyType, "House", "Villa", "Lodge", "Commercial", "Land"}
	bedroomChoices  = []int{0, 2, 3, 4, 5}
	maxPriceChoices = []int64{services.DefaultPriceMax, 1000000, 2000000, 3000000}
)

// Properties is the Property Sales view: the catalog listing narrowed by
// PropertyFilter.
type Properties struct {
	catalogs services.CatalogProvider

	locationIdx, typeIdx, bedroomIdx, priceIdx int
	selectedRow                                int
	width, height                              int
}

func NewProperties(catalogs services.CatalogProvider) Properties {
	return Properties{catalogs: catalogs}
}

func (p Properties) SetSize(w, h int) Properties {
	p.width = w
	p.height = h
	return p
}

func (p Properties) Filter() services.PropertyFilter {
	f := services.DefaultPropertyFilter()
	f.Location = locationChoices[p.locationIdx]
	f.PropertyType = typeChoices[p.typeIdx]
	f.MinBedrooms = bedroomChoices[p.bedroomIdx]
	f.PriceMax = maxPriceChoices[p.priceIdx]
	return f
}

func (p Properties) rows() []models.ListingRecord {
	var cat *catalog.Catalog
	if p.catalogs != nil {
		cat = p.catalogs.Current()
	}
	if cat == nil {
		return nil
	}
	return p.Filter().Apply(cat.Properties)
}

func (p Properties) Update(msg tea.Msg) (Properties, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}
	switch key.String() {
	case "l":
		p.locationIdx = (p.locationIdx + 1) % len(locationChoices)
		p.selectedRow = 0
	case "t":
		p.typeIdx = (p.typeIdx + 1) % len(typeChoices)
		p.selectedRow = 0
	case "b":
		p.bedroomIdx = (p.bedroomIdx + 1) % len(bedroomChoices)
		p.selectedRow = 0
	case "p":
		p.priceIdx = (p.priceIdx + 1) % len(maxPriceChoices)
		p.selectedRow = 0
	case "x":
		p.locationIdx, p.typeIdx, p.bedroomIdx, p.priceIdx, p.selectedRow = 0, 0, 0, 0, 0
	case "up", "k":
		if p.selectedRow > 0 {
			p.selectedRow--
		}
	case "down", "j":
		if p.selectedRow < len(p.rows())-1 {
			p.selectedRow++
		}
	}
	return p, nil
}

func (p Properties) View() string {
	rows := p.rows()
	var b strings.Builder

	active := p.Filter().ActiveFilters()
	if len(active) == 0 {
		b.WriteString(Muted.Render("No filters"))
	} else {
		b.WriteString(Muted.Render("Filters: " + strings.Join(active, ", ")))
	}
	b.WriteString("\n\n")

	header := lipgloss.JoinHorizontal(lipgloss.Top,
		TableHeader.Width(36).Render("Title"),
		TableHeader.Width(14).Render("Location"),
		TableHeader.Width(10).Render("Type"),
		TableHeader.Width(6).Render("Beds"),
		TableHeader.Width(16).Render("Price"),
	)
	b.WriteString(header)
	b.WriteString("\n")

	if len(rows) == 0 {
		b.WriteString(Muted.Render("  No properties match these filters"))
		b.WriteString("\n")
	}
	for i, r := range rows {
		beds := "-"
		if r.Bedrooms != nil {
			beds = fmt.Sprintf("%d", *r.Bedrooms)
		}
		line := lipgloss.JoinHorizontal(lipgloss.Top,
			TableCell.Width(36).Render(truncate(r.Title, 34)),
			TableCell.Width(14).Render(r.Location),
			TableCell.Width(10).Render(r.PropertyType),
			TableCell.Width(6).Render(beds),
			TableCell.Width(16).Render(services.FormatBWP(r.Price)),
		)
		if i == p.selectedRow {
			line = TableSelected.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if p.selectedRow < len(rows) {
		b.WriteString("\n")
		b.WriteString(ReplyBorder.Render(rows[p.selectedRow].Description))
	}
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
