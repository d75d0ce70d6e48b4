package service

// NavItem is one navigation destination
type NavItem struct {
	Href   string `json:"href"`
	Label  string `json:"label"`
	Active bool   `json:"active"`
}

var navItems = []NavItem{
	{Href: "/", Label: "Home"},
	{Href: "/dashboard", Label: "Dashboard"},
	{Href: "/inspections", Label: "Inspections"},
	{Href: "/audits", Label: "Audits"},
	{Href: "/reworks", Label: "Reworks"},
	{Href: "/customer-satisfaction", Label: "Customer Satisfaction"},
}

// Navigation returns the destinations with the one whose href equals path
// exactly marked active
func Navigation(path string) []NavItem {
	items := make([]NavItem, len(navItems))
	for i, item := range navItems {
		item.Active = item.Href == path
		items[i] = item
	}
	return items
}

// Feature is a card on the home page
type Feature struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Href        string `json:"href"`
}

// Home is the landing page content
type Home struct {
	Title    string    `json:"title"`
	Intro    string    `json:"intro"`
	Features []Feature `json:"features"`
}

func HomePage() Home {
	return Home{
		Title:    "Construction Quality Tracker",
		Intro:    "Welcome to the comprehensive quality tracking application for your construction projects.",
		Features: HomeFeatures(),
	}
}

// HomeFeatures lists the forms offered from the home page
func HomeFeatures() []Feature {
	return []Feature{
		{Title: "Inspections", Description: "Conduct material and workmanship inspections", Href: "/inspections"},
		{Title: "Audits", Description: "Perform detailed project audits", Href: "/audits"},
		{Title: "Rework Tracking", Description: "Track and manage project reworks", Href: "/reworks"},
		{Title: "Customer Satisfaction", Description: "Gather and analyze customer feedback", Href: "/customer-satisfaction"},
	}
}
